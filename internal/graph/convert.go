package graph

import (
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/rohankatakam/graphscope/internal/subgraph"
)

// nodeFromDB converts a driver node into the engine's node type
func nodeFromDB(n neo4j.Node) subgraph.Node {
	labels := make([]string, len(n.Labels))
	copy(labels, n.Labels)
	return subgraph.Node{
		ID:         subgraph.ID(n.Id),
		Labels:     labels,
		Properties: normalizeProps(n.Props),
	}
}

// relationshipFromDB converts a driver relationship into the engine's relationship type
func relationshipFromDB(r neo4j.Relationship) subgraph.Relationship {
	return subgraph.Relationship{
		ID:          subgraph.ID(r.Id),
		Type:        r.Type,
		StartNodeID: subgraph.ID(r.StartId),
		EndNodeID:   subgraph.ID(r.EndId),
		Properties:  normalizeProps(r.Props),
	}
}

func normalizeProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = normalizeValue(v)
	}
	return out
}

// normalizeValue maps driver property values onto JSON-friendly values.
// Temporal and spatial types become their string forms.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil, bool, int64, float64, string:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte:
		return val
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		return normalizeProps(val)
	case fmt.Stringer:
		return val.String()
	default:
		return val
	}
}
