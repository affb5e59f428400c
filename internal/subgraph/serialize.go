package subgraph

import (
	"fmt"
	"slices"
)

// KeySource says where a node's display group is read from
type KeySource string

const (
	// KeySourceLabel groups nodes by label
	KeySourceLabel KeySource = "label"
	// KeySourceProperty groups nodes by the value of one property
	KeySourceProperty KeySource = "property"
)

// DefaultFallbackProperty is the grouping property used when labels do not discriminate
const DefaultFallbackProperty = "county"

// EntityKey is the attribute used for display grouping. It is never used for identity.
type EntityKey struct {
	Source   KeySource `json:"source" yaml:"source"`
	Property string    `json:"property,omitempty" yaml:"property,omitempty"`
}

// LabelKey returns the label-based key
func LabelKey() EntityKey {
	return EntityKey{Source: KeySourceLabel}
}

// PropertyKey returns a key reading the named property
func PropertyKey(property string) EntityKey {
	return EntityKey{Source: KeySourceProperty, Property: property}
}

// String returns "label" or the property name
func (k EntityKey) String() string {
	if k.Source == KeySourceProperty {
		return k.Property
	}
	return string(KeySourceLabel)
}

// Group derives the display group of n. Missing attributes yield "".
func (k EntityKey) Group(n Node) string {
	switch k.Source {
	case KeySourceLabel:
		if len(n.Labels) == 0 {
			return ""
		}
		return slices.Min(n.Labels)
	case KeySourceProperty:
		v, ok := n.Properties[k.Property]
		if !ok || v == nil {
			return ""
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// Payload is the wire form of a subgraph
type Payload struct {
	Nodes         []NodePayload         `json:"nodes"`
	Relationships []RelationshipPayload `json:"relationships"`
}

// NodePayload is the wire form of a node
type NodePayload struct {
	ID         ID             `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
	Group      string         `json:"group"`
}

// RelationshipPayload is the wire form of a relationship
type RelationshipPayload struct {
	ID         ID             `json:"id"`
	Type       string         `json:"type"`
	Source     ID             `json:"source"`
	Target     ID             `json:"target"`
	Properties map[string]any `json:"properties"`
}

// Serialize converts sg into its wire form, grouping nodes by key.
// Output preserves the subgraph's insertion order.
func Serialize(sg *Subgraph, key EntityKey) Payload {
	p := Payload{
		Nodes:         make([]NodePayload, 0, sg.NodeCount()),
		Relationships: make([]RelationshipPayload, 0, sg.RelationshipCount()),
	}
	if sg == nil {
		return p
	}

	for _, n := range sg.nodes {
		labels := n.Labels
		if labels == nil {
			labels = []string{}
		}
		p.Nodes = append(p.Nodes, NodePayload{
			ID:         n.ID,
			Labels:     labels,
			Properties: nonNilProps(n.Properties),
			Group:      key.Group(n),
		})
	}
	for _, r := range sg.rels {
		p.Relationships = append(p.Relationships, RelationshipPayload{
			ID:         r.ID,
			Type:       r.Type,
			Source:     r.StartNodeID,
			Target:     r.EndNodeID,
			Properties: nonNilProps(r.Properties),
		})
	}
	return p
}

// Graph rebuilds nodes and relationships from a payload, e.g. a stored snapshot.
// Group values are derived data and are dropped.
func (p Payload) Graph() ([]Node, []Relationship) {
	nodes := make([]Node, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		nodes = append(nodes, Node{ID: n.ID, Labels: n.Labels, Properties: n.Properties})
	}
	rels := make([]Relationship, 0, len(p.Relationships))
	for _, r := range p.Relationships {
		rels = append(rels, Relationship{
			ID:          r.ID,
			Type:        r.Type,
			StartNodeID: r.Source,
			EndNodeID:   r.Target,
			Properties:  r.Properties,
		})
	}
	return nodes, rels
}

func nonNilProps(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}
	return props
}
