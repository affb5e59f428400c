package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// RoutingMode defines read/write routing for cluster deployments
//
// In Neo4j clusters (Causal Cluster or Aura):
// - READ queries route to read replicas (reduces load on leader)
// - WRITE queries route to leader (only leader can write)
//
// graphscope never writes to the store, so every call site uses RoutingRead.
// For local single-node deployments, routing has no effect.
type RoutingMode string

const (
	// RoutingRead routes to read replicas (for queries)
	RoutingRead RoutingMode = "read"

	// RoutingWrite routes to cluster leader (for writes)
	RoutingWrite RoutingMode = "write"
)

// ExecuteWithRouting executes an eager query with explicit routing
//
// Example usage:
//
//	result, err := ExecuteWithRouting(ctx, driver, query, params, RoutingRead, "neo4j")
func ExecuteWithRouting(
	ctx context.Context,
	driver neo4j.DriverWithContext,
	query string,
	params map[string]any,
	mode RoutingMode,
	database string,
) (*neo4j.EagerResult, error) {
	options := []neo4j.ExecuteQueryConfigurationOption{
		neo4j.ExecuteQueryWithDatabase(database),
	}

	switch mode {
	case RoutingRead:
		options = append(options, neo4j.ExecuteQueryWithReadersRouting())
	case RoutingWrite:
		options = append(options, neo4j.ExecuteQueryWithWritersRouting())
	}

	return neo4j.ExecuteQuery(ctx, driver, query, params,
		neo4j.EagerResultTransformer,
		options...)
}

// SessionWithRouting creates a session with explicit routing
// Use this when you need managed transactions with timeout and metadata
//
// Example usage:
//
//	session := SessionWithRouting(ctx, driver, RoutingRead, "neo4j")
//	defer session.Close(ctx)
//
//	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
//	  // ... run queries
//	}, txConfig.AsNeo4jConfig()...)
func SessionWithRouting(
	ctx context.Context,
	driver neo4j.DriverWithContext,
	mode RoutingMode,
	database string,
) neo4j.SessionWithContext {
	config := neo4j.SessionConfig{
		DatabaseName: database,
	}

	switch mode {
	case RoutingRead:
		config.AccessMode = neo4j.AccessModeRead
	case RoutingWrite:
		config.AccessMode = neo4j.AccessModeWrite
	}

	return driver.NewSession(ctx, config)
}
