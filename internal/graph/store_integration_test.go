package graph

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/graphscope/internal/subgraph"
)

// Runs against a live database when NEO4J_URI is set, e.g.
//
//	NEO4J_URI=bolt://localhost:7687 NEO4J_USER=neo4j NEO4J_PASSWORD=secret go test ./internal/graph/
func newIntegrationStore(t *testing.T) *Neo4jStore {
	t.Helper()
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set, skipping Neo4j integration test")
	}

	cfg := DefaultClientConfig()
	cfg.URI = uri
	cfg.User = os.Getenv("NEO4J_USER")
	cfg.Password = os.Getenv("NEO4J_PASSWORD")
	if db := os.Getenv("NEO4J_DATABASE"); db != "" {
		cfg.Database = db
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewClientWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close(context.Background()) })

	return NewNeo4jStore(client)
}

func TestNeo4jStore_Integration(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	require.NoError(t, store.HealthCheck(ctx))

	labels, err := store.Labels(ctx)
	require.NoError(t, err)
	assert.IsNonDecreasing(t, labels)

	nodes, err := store.NodesByID(ctx, []subgraph.ID{-1})
	require.NoError(t, err)
	assert.Empty(t, nodes, "unknown ids are omitted, not errors")

	var first *subgraph.Node
	err = store.Export(ctx, 10, func(n subgraph.Node) error {
		if first == nil {
			first = &n
		}
		return nil
	}, func(subgraph.Relationship) error { return nil })
	require.NoError(t, err)
	if first == nil {
		t.Skip("database is empty")
	}

	engine := subgraph.NewEngine(store, subgraph.DefaultOptions())
	sg, err := engine.Select(ctx, []subgraph.ID{first.ID}, nil)
	require.NoError(t, err)
	require.NoError(t, sg.Validate())
	assert.True(t, sg.HasNode(first.ID))

	expanded, err := engine.ExpandNode(ctx, sg, first.ID, 3)
	require.NoError(t, err)
	require.NoError(t, expanded.Validate())
	assert.LessOrEqual(t, expanded.RelationshipCount(), 3)
	assert.True(t, expanded.Contains(sg))
}
