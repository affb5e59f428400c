package subgraph

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/graphscope/internal/errors"
	"github.com/rohankatakam/graphscope/internal/metrics"
)

// DefaultExpandLimit is used when a caller omits the expansion limit
const DefaultExpandLimit = 5

// Options configures the projection engine
type Options struct {
	// DefaultExpandLimit applies when an expansion request carries no limit
	DefaultExpandLimit int
	// MaxExpandLimit clamps caller-supplied limits (0 = no clamp)
	MaxExpandLimit int
}

// DefaultOptions returns the engine defaults
func DefaultOptions() Options {
	return Options{
		DefaultExpandLimit: DefaultExpandLimit,
		MaxExpandLimit:     100,
	}
}

// Engine computes subgraph projections against a Store.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

// NewEngine creates a projection engine over store
func NewEngine(store Store, opts Options) *Engine {
	if opts.DefaultExpandLimit < 0 {
		opts.DefaultExpandLimit = DefaultExpandLimit
	}
	return &Engine{
		store:  store,
		opts:   opts,
		logger: slog.Default().With("component", "subgraph"),
	}
}

// Options returns the engine configuration
func (e *Engine) Options() Options {
	return e.opts
}

// ExpandLimit resolves the limit for an expansion request.
// nil selects the configured default; negative limits are malformed.
func (e *Engine) ExpandLimit(requested *int) (int, error) {
	if requested == nil {
		return e.opts.DefaultExpandLimit, nil
	}
	limit := *requested
	if limit < 0 {
		return 0, errors.MalformedRequestf("expansion limit must be >= 0, got %d", limit)
	}
	if e.opts.MaxExpandLimit > 0 && limit > e.opts.MaxExpandLimit {
		e.logger.Debug("clamping expansion limit", "requested", limit, "max", e.opts.MaxExpandLimit)
		limit = e.opts.MaxExpandLimit
	}
	return limit, nil
}

// Select computes the induced subgraph for the given node and relationship ids.
//
// Unknown ids are omitted. Endpoints of the selected relationships are pulled in even
// when not requested. The result depends only on the id sets, not their order.
func (e *Engine) Select(ctx context.Context, nodeIDs, relationshipIDs []ID) (sg *Subgraph, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProjection("select", start, sg.NodeCount(), err) }()

	nodeIDs = uniqueSorted(nodeIDs)
	relationshipIDs = uniqueSorted(relationshipIDs)

	if len(nodeIDs) == 0 && len(relationshipIDs) == 0 {
		return New(), nil
	}

	var nodes []Node
	var rels []Relationship

	// Node and relationship lookups are independent reads
	g, gctx := errgroup.WithContext(ctx)
	if len(nodeIDs) > 0 {
		g.Go(func() error {
			found, err := e.store.NodesByID(gctx, nodeIDs)
			if err != nil {
				return err
			}
			nodes = found
			return nil
		})
	}
	if len(relationshipIDs) > 0 {
		g.Go(func() error {
			found, err := e.store.RelationshipsByID(gctx, relationshipIDs)
			if err != nil {
				return err
			}
			rels = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeFailure(err, "select: store lookup failed")
	}

	present := make(map[ID]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}

	var missing []ID
	for _, r := range rels {
		for _, endpoint := range []ID{r.StartNodeID, r.EndNodeID} {
			if !present[endpoint] {
				missing = append(missing, endpoint)
			}
		}
	}
	if len(missing) > 0 {
		endpoints, err := e.store.NodesByID(ctx, uniqueSorted(missing))
		if err != nil {
			return nil, storeFailure(err, "select: endpoint lookup failed")
		}
		nodes = append(nodes, endpoints...)
	}

	slices.SortFunc(nodes, func(a, b Node) int { return compareID(a.ID, b.ID) })
	slices.SortFunc(rels, func(a, b Relationship) int { return compareID(a.ID, b.ID) })

	sg = New()
	for _, n := range nodes {
		sg.AddNode(n)
	}
	for _, r := range rels {
		if _, err := sg.AddRelationship(r); err != nil {
			// Endpoint vanished between reads; dropping keeps the subgraph valid
			e.logger.Debug("dropping relationship with unresolved endpoint", "relationship", r.ID, "error", err)
		}
	}

	e.logger.Debug("subgraph selected",
		"requested_nodes", len(nodeIDs),
		"requested_relationships", len(relationshipIDs),
		"nodes", sg.NodeCount(),
		"relationships", sg.RelationshipCount())

	return sg, nil
}

// ExpandNode merges up to limit new relationships incident to nodeID, together with
// their neighbor nodes, into a copy of current.
//
// The limit counts only relationships not already in current. Existing nodes and
// relationships win over fetched copies. If nodeID is not in current, an equal copy
// of current is returned without consulting the store.
func (e *Engine) ExpandNode(ctx context.Context, current *Subgraph, nodeID ID, limit int) (sg *Subgraph, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProjection("expand", start, sg.NodeCount(), err) }()

	if limit < 0 {
		return nil, errors.MalformedRequestf("expansion limit must be >= 0, got %d", limit)
	}
	if current == nil {
		current = New()
	}

	out := current.Clone()
	if !current.HasNode(nodeID) || limit == 0 {
		metrics.ExpansionAdded.Observe(0)
		return out, nil
	}

	hood, err := e.store.Neighbors(ctx, nodeID, current.RelationshipIDs(), limit)
	if err != nil {
		return nil, storeFailure(err, "expand: neighbor query failed")
	}

	neighbors := make(map[ID]Node, len(hood.Nodes))
	for _, n := range hood.Nodes {
		neighbors[n.ID] = n
	}

	rels := slices.Clone(hood.Relationships)
	slices.SortFunc(rels, func(a, b Relationship) int { return compareID(a.ID, b.ID) })

	added := 0
	for _, r := range rels {
		if added >= limit {
			break
		}
		if out.HasRelationship(r.ID) || !r.Touches(nodeID) {
			continue
		}

		other := r.Other(nodeID)
		if !out.HasNode(other) {
			n, ok := neighbors[other]
			if !ok {
				e.logger.Debug("neighbor node missing from result", "relationship", r.ID, "node", other)
				continue
			}
			out.AddNode(n)
		}

		if _, err := out.AddRelationship(r); err != nil {
			return nil, errors.InternalErrorf("expand: %v", err)
		}
		added++
	}

	metrics.ExpansionAdded.Observe(float64(added))
	e.logger.Debug("node expanded", "node", nodeID, "limit", limit, "added_relationships", added)

	return out, nil
}

// storeFailure classifies a store error as StoreUnavailable unless it already carries a type
func storeFailure(err error, message string) error {
	var typed *errors.Error
	if errors.As(err, &typed) {
		return err
	}
	return errors.StoreUnavailable(err, message)
}

func compareID(a, b ID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
