package subgraph

import (
	"time"

	"github.com/rohankatakam/graphscope/internal/metrics"
)

// DeleteNode returns a copy of current without nodeID and without every relationship
// that starts or ends at it. Deleting an absent node returns an equal copy, so the
// operation is idempotent. current is never modified and the store is never written.
func DeleteNode(current *Subgraph, nodeID ID) *Subgraph {
	start := time.Now()

	if current == nil {
		current = New()
	}
	if !current.HasNode(nodeID) {
		out := current.Clone()
		metrics.ObserveProjection("delete", start, out.NodeCount(), nil)
		return out
	}

	out := New()
	for _, n := range current.nodes {
		if n.ID != nodeID {
			out.AddNode(n)
		}
	}
	for _, r := range current.rels {
		if r.Touches(nodeID) {
			continue
		}
		// Endpoints were present in current and only nodeID was removed
		out.relIndex[r.ID] = len(out.rels)
		out.rels = append(out.rels, r)
	}

	metrics.ObserveProjection("delete", start, out.NodeCount(), nil)
	return out
}
