package subgraph

import (
	"fmt"
	"reflect"
	"slices"
)

// ID is the store-assigned identity of a node or relationship.
// Never reused within a store lifetime.
type ID int64

// Node is a read-only projection of a stored node
type Node struct {
	ID         ID
	Labels     []string
	Properties map[string]any
}

// Relationship is a read-only projection of a stored, directed relationship
type Relationship struct {
	ID          ID
	Type        string
	StartNodeID ID
	EndNodeID   ID
	Properties  map[string]any
}

// Touches reports whether the relationship starts or ends at nodeID
func (r Relationship) Touches(nodeID ID) bool {
	return r.StartNodeID == nodeID || r.EndNodeID == nodeID
}

// Other returns the endpoint opposite to nodeID
func (r Relationship) Other(nodeID ID) ID {
	if r.StartNodeID == nodeID {
		return r.EndNodeID
	}
	return r.StartNodeID
}

// Subgraph is an id-deduplicated set of nodes and relationships kept in insertion order.
//
// Invariant: every relationship's endpoints are members of the node set. AddRelationship
// enforces it, so a Subgraph built through its methods is always valid.
//
// Property maps are shared between copies and must be treated as read-only.
type Subgraph struct {
	nodes     []Node
	nodeIndex map[ID]int
	rels      []Relationship
	relIndex  map[ID]int
}

// New creates an empty subgraph
func New() *Subgraph {
	return &Subgraph{
		nodeIndex: make(map[ID]int),
		relIndex:  make(map[ID]int),
	}
}

// AddNode inserts a node unless one with the same id is present.
// Returns false when the existing node was kept.
func (s *Subgraph) AddNode(n Node) bool {
	if _, ok := s.nodeIndex[n.ID]; ok {
		return false
	}
	s.nodeIndex[n.ID] = len(s.nodes)
	s.nodes = append(s.nodes, n)
	return true
}

// AddRelationship inserts a relationship whose endpoints are both present.
// Returns an error if an endpoint is missing; returns false, nil if the id is already present.
func (s *Subgraph) AddRelationship(r Relationship) (bool, error) {
	if !s.HasNode(r.StartNodeID) || !s.HasNode(r.EndNodeID) {
		return false, fmt.Errorf("relationship %d has an endpoint outside the subgraph (%d -> %d)",
			r.ID, r.StartNodeID, r.EndNodeID)
	}
	if _, ok := s.relIndex[r.ID]; ok {
		return false, nil
	}
	s.relIndex[r.ID] = len(s.rels)
	s.rels = append(s.rels, r)
	return true, nil
}

// HasNode reports whether the node id is a member of the subgraph
func (s *Subgraph) HasNode(id ID) bool {
	_, ok := s.nodeIndex[id]
	return ok
}

// HasRelationship reports whether the relationship id is a member of the subgraph
func (s *Subgraph) HasRelationship(id ID) bool {
	_, ok := s.relIndex[id]
	return ok
}

// Node returns the node with the given id
func (s *Subgraph) Node(id ID) (Node, bool) {
	i, ok := s.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return s.nodes[i], true
}

// Relationship returns the relationship with the given id
func (s *Subgraph) Relationship(id ID) (Relationship, bool) {
	i, ok := s.relIndex[id]
	if !ok {
		return Relationship{}, false
	}
	return s.rels[i], true
}

// Nodes returns the nodes in insertion order
func (s *Subgraph) Nodes() []Node {
	return slices.Clone(s.nodes)
}

// Relationships returns the relationships in insertion order
func (s *Subgraph) Relationships() []Relationship {
	return slices.Clone(s.rels)
}

// NodeIDs returns node ids in insertion order
func (s *Subgraph) NodeIDs() []ID {
	ids := make([]ID, len(s.nodes))
	for i, n := range s.nodes {
		ids[i] = n.ID
	}
	return ids
}

// RelationshipIDs returns relationship ids in insertion order
func (s *Subgraph) RelationshipIDs() []ID {
	ids := make([]ID, len(s.rels))
	for i, r := range s.rels {
		ids[i] = r.ID
	}
	return ids
}

// NodeCount returns the number of nodes
func (s *Subgraph) NodeCount() int {
	if s == nil {
		return 0
	}
	return len(s.nodes)
}

// RelationshipCount returns the number of relationships
func (s *Subgraph) RelationshipCount() int {
	if s == nil {
		return 0
	}
	return len(s.rels)
}

// IsEmpty reports whether the subgraph has no nodes (and therefore no relationships)
func (s *Subgraph) IsEmpty() bool {
	return len(s.nodes) == 0
}

// Clone returns an independent copy. Mutating the copy never affects s.
func (s *Subgraph) Clone() *Subgraph {
	out := &Subgraph{
		nodes:     slices.Clone(s.nodes),
		nodeIndex: make(map[ID]int, len(s.nodeIndex)),
		rels:      slices.Clone(s.rels),
		relIndex:  make(map[ID]int, len(s.relIndex)),
	}
	for id, i := range s.nodeIndex {
		out.nodeIndex[id] = i
	}
	for id, i := range s.relIndex {
		out.relIndex[id] = i
	}
	return out
}

// Validate checks the endpoint-presence invariant
func (s *Subgraph) Validate() error {
	for _, r := range s.rels {
		if !s.HasNode(r.StartNodeID) {
			return fmt.Errorf("relationship %d: start node %d missing", r.ID, r.StartNodeID)
		}
		if !s.HasNode(r.EndNodeID) {
			return fmt.Errorf("relationship %d: end node %d missing", r.ID, r.EndNodeID)
		}
	}
	return nil
}

// Equal reports whether both subgraphs hold the same nodes and relationships,
// regardless of insertion order
func (s *Subgraph) Equal(other *Subgraph) bool {
	if other == nil {
		return false
	}
	if len(s.nodes) != len(other.nodes) || len(s.rels) != len(other.rels) {
		return false
	}
	for _, n := range s.nodes {
		o, ok := other.Node(n.ID)
		if !ok || !reflect.DeepEqual(n, o) {
			return false
		}
	}
	for _, r := range s.rels {
		o, ok := other.Relationship(r.ID)
		if !ok || !reflect.DeepEqual(r, o) {
			return false
		}
	}
	return true
}

// Contains reports whether every node and relationship of other is also in s
func (s *Subgraph) Contains(other *Subgraph) bool {
	for _, n := range other.nodes {
		if !s.HasNode(n.ID) {
			return false
		}
	}
	for _, r := range other.rels {
		if !s.HasRelationship(r.ID) {
			return false
		}
	}
	return true
}

// uniqueSorted returns the distinct ids in ascending order
func uniqueSorted(ids []ID) []ID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
