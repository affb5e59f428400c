package subgraph

import "context"

// Store is the read contract the projection engine needs from the backing graph store.
// Implementations run each call in a read transaction and never write.
//
// Ids that do not exist are omitted from results rather than reported as errors.
// Results are ordered by ascending id.
type Store interface {
	// NodesByID returns the stored nodes whose id is in ids
	NodesByID(ctx context.Context, ids []ID) ([]Node, error)

	// RelationshipsByID returns the stored relationships whose id is in ids
	RelationshipsByID(ctx context.Context, ids []ID) ([]Relationship, error)

	// Neighbors returns up to limit relationships incident to nodeID (either direction)
	// whose id is not in exclude, ordered by relationship id, plus the node at each
	// relationship's other endpoint
	Neighbors(ctx context.Context, nodeID ID, exclude []ID, limit int) (Neighborhood, error)
}

// LabelCatalog exposes the distinct node labels in use. Consulted once at startup.
type LabelCatalog interface {
	Labels(ctx context.Context) ([]string, error)
}

// HealthChecker is implemented by stores that can verify connectivity
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Neighborhood is the result of a neighbor query
type Neighborhood struct {
	Relationships []Relationship
	Nodes         []Node
}
