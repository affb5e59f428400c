package graph

import (
	"fmt"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"

	"github.com/rohankatakam/graphscope/internal/subgraph"
)

type fiscalYear int

func (f fiscalYear) String() string { return fmt.Sprintf("FY%02d", int(f)%100) }

func TestNodeFromDB(t *testing.T) {
	updated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := nodeFromDB(neo4j.Node{
		Id:     42,
		Labels: []string{"County"},
		Props: map[string]any{
			"name":    "Kent",
			"pop":     int64(120000),
			"updated": updated,
			"tags":    []any{"rural", fiscalYear(2024)},
			"budget":  map[string]any{"year": fiscalYear(2023), "total": 1.5},
		},
	})

	assert.Equal(t, subgraph.ID(42), n.ID)
	assert.Equal(t, []string{"County"}, n.Labels)
	assert.Equal(t, "Kent", n.Properties["name"])
	assert.Equal(t, int64(120000), n.Properties["pop"])
	assert.Equal(t, "2024-03-01T12:00:00Z", n.Properties["updated"])
	assert.Equal(t, []any{"rural", "FY24"}, n.Properties["tags"])
	assert.Equal(t, map[string]any{"year": "FY23", "total": 1.5}, n.Properties["budget"])
}

func TestRelationshipFromDB(t *testing.T) {
	r := relationshipFromDB(neo4j.Relationship{
		Id:      9,
		StartId: 1,
		EndId:   2,
		Type:    "FUNDS",
		Props:   nil,
	})

	assert.Equal(t, subgraph.Relationship{
		ID:          9,
		Type:        "FUNDS",
		StartNodeID: 1,
		EndNodeID:   2,
		Properties:  map[string]any{},
	}, r)
}

func TestTransactionConfig(t *testing.T) {
	for _, op := range []string{"node_lookup", "relationship_lookup", "neighbor_query", "schema_introspection", "snapshot_export", "health_check"} {
		cfg := GetConfigForOperation(op)
		assert.Positive(t, cfg.Timeout, op)
		assert.Equal(t, op, cfg.Metadata["operation"])
		assert.Len(t, cfg.AsNeo4jConfig(), 2, op)
	}

	unknown := GetConfigForOperation("mystery")
	assert.Equal(t, 60*time.Second, unknown.Timeout)

	base := GetConfigForOperation("snapshot_export")
	tagged := base.WithCustomMetadata("phase", "nodes")
	assert.Equal(t, "nodes", tagged.Metadata["phase"])
	_, leaked := base.Metadata["phase"]
	assert.False(t, leaked, "custom metadata must not modify the base config")
}
