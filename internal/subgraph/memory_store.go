package subgraph

import (
	"context"
	"fmt"
	"slices"
)

// MemoryStore is an in-process Store backed by maps. It serves pre-materialized
// snapshots when no graph database is configured. Immutable after construction.
type MemoryStore struct {
	nodes     map[ID]Node
	rels      map[ID]Relationship
	incidence map[ID][]ID // node id -> incident relationship ids, ascending
}

// NewMemoryStore builds a store from nodes and relationships.
// Every relationship endpoint must be one of the given nodes.
func NewMemoryStore(nodes []Node, rels []Relationship) (*MemoryStore, error) {
	s := &MemoryStore{
		nodes:     make(map[ID]Node, len(nodes)),
		rels:      make(map[ID]Relationship, len(rels)),
		incidence: make(map[ID][]ID),
	}
	for _, n := range nodes {
		s.nodes[n.ID] = n
	}
	for _, r := range rels {
		if err := s.addRelationship(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewMemoryStoreFromPayload builds a store from a serialized snapshot
func NewMemoryStoreFromPayload(p Payload) (*MemoryStore, error) {
	nodes, rels := p.Graph()
	return NewMemoryStore(nodes, rels)
}

func (s *MemoryStore) addRelationship(r Relationship) error {
	if _, ok := s.nodes[r.StartNodeID]; !ok {
		return fmt.Errorf("relationship %d references unknown start node %d", r.ID, r.StartNodeID)
	}
	if _, ok := s.nodes[r.EndNodeID]; !ok {
		return fmt.Errorf("relationship %d references unknown end node %d", r.ID, r.EndNodeID)
	}
	if _, ok := s.rels[r.ID]; ok {
		return fmt.Errorf("duplicate relationship id %d", r.ID)
	}
	s.rels[r.ID] = r
	s.indexIncidence(r.StartNodeID, r.ID)
	if r.EndNodeID != r.StartNodeID {
		s.indexIncidence(r.EndNodeID, r.ID)
	}
	return nil
}

func (s *MemoryStore) indexIncidence(nodeID, relID ID) {
	ids := s.incidence[nodeID]
	i, _ := slices.BinarySearch(ids, relID)
	s.incidence[nodeID] = slices.Insert(ids, i, relID)
}

// NodesByID implements Store
func (s *MemoryStore) NodesByID(ctx context.Context, ids []ID) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(ids))
	for _, id := range uniqueSorted(ids) {
		if n, ok := s.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// RelationshipsByID implements Store
func (s *MemoryStore) RelationshipsByID(ctx context.Context, ids []ID) ([]Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Relationship, 0, len(ids))
	for _, id := range uniqueSorted(ids) {
		if r, ok := s.rels[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Neighbors implements Store
func (s *MemoryStore) Neighbors(ctx context.Context, nodeID ID, exclude []ID, limit int) (Neighborhood, error) {
	if err := ctx.Err(); err != nil {
		return Neighborhood{}, err
	}
	skip := make(map[ID]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	var hood Neighborhood
	seen := make(map[ID]bool)
	for _, relID := range s.incidence[nodeID] {
		if len(hood.Relationships) >= limit {
			break
		}
		if skip[relID] {
			continue
		}
		r := s.rels[relID]
		hood.Relationships = append(hood.Relationships, r)

		other := r.Other(nodeID)
		if !seen[other] {
			seen[other] = true
			hood.Nodes = append(hood.Nodes, s.nodes[other])
		}
	}
	return hood, nil
}

// Labels implements LabelCatalog
func (s *MemoryStore) Labels(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var labels []string
	for _, n := range s.nodes {
		labels = append(labels, n.Labels...)
	}
	slices.Sort(labels)
	return slices.Compact(labels), nil
}

// HealthCheck implements HealthChecker
func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

// Counts returns the number of stored nodes and relationships
func (s *MemoryStore) Counts() (nodes, relationships int) {
	return len(s.nodes), len(s.rels)
}
