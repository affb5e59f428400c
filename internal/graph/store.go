package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/rohankatakam/graphscope/internal/errors"
	"github.com/rohankatakam/graphscope/internal/subgraph"
)

// Neo4jStore serves the projection engine from a live Neo4j database.
// Every call runs in a managed read transaction with the operation's
// timeout and metadata. Nothing is ever written.
type Neo4jStore struct {
	client  *Client
	monitor *TimeoutMonitor
	logger  *slog.Logger
}

var (
	_ subgraph.Store         = (*Neo4jStore)(nil)
	_ subgraph.LabelCatalog  = (*Neo4jStore)(nil)
	_ subgraph.HealthChecker = (*Neo4jStore)(nil)
)

// NewNeo4jStore creates a store on top of a connected client
func NewNeo4jStore(client *Client) *Neo4jStore {
	return &Neo4jStore{
		client:  client,
		monitor: NewTimeoutMonitor(),
		logger:  slog.Default().With("component", "neo4j_store"),
	}
}

// Client returns the underlying client
func (s *Neo4jStore) Client() *Client {
	return s.client
}

// readRecords runs one query in a read transaction and collects all records
func (s *Neo4jStore) readRecords(ctx context.Context, operation, query string, params map[string]any) ([]*neo4j.Record, error) {
	txConfig := GetConfigForOperation(operation)

	var records []*neo4j.Record
	err := s.monitor.MonitorWithContext(ctx, operation, txConfig.Timeout, func(ctx context.Context) error {
		session := SessionWithRouting(ctx, s.client.Driver(), RoutingRead, s.client.Database())
		defer session.Close(ctx)

		out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, query, params)
			if err != nil {
				return nil, err
			}
			return result.Collect(ctx)
		}, txConfig.AsNeo4jConfig()...)
		if err != nil {
			return err
		}
		records, _ = out.([]*neo4j.Record)
		return nil
	})
	if err != nil {
		return nil, errors.StoreUnavailablef(err, "%s failed", operation)
	}
	return records, nil
}

// NodesByID implements subgraph.Store
func (s *Neo4jStore) NodesByID(ctx context.Context, ids []subgraph.ID) ([]subgraph.Node, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	builder := NewCypherBuilder()
	query := builder.BuildNodesByID(toInt64s(ids))

	records, err := s.readRecords(ctx, "node_lookup", query, builder.Params())
	if err != nil {
		return nil, err
	}

	nodes := make([]subgraph.Node, 0, len(records))
	for _, record := range records {
		n, err := nodeFromRecord(record, "n")
		if err != nil {
			return nil, errors.StoreUnavailable(err, "node_lookup returned an unexpected record")
		}
		nodes = append(nodes, n)
	}

	s.logger.Debug("nodes fetched", "requested", len(ids), "found", len(nodes))
	return nodes, nil
}

// RelationshipsByID implements subgraph.Store
func (s *Neo4jStore) RelationshipsByID(ctx context.Context, ids []subgraph.ID) ([]subgraph.Relationship, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	builder := NewCypherBuilder()
	query := builder.BuildRelationshipsByID(toInt64s(ids))

	records, err := s.readRecords(ctx, "relationship_lookup", query, builder.Params())
	if err != nil {
		return nil, err
	}

	rels := make([]subgraph.Relationship, 0, len(records))
	for _, record := range records {
		r, err := relationshipFromRecord(record, "r")
		if err != nil {
			return nil, errors.StoreUnavailable(err, "relationship_lookup returned an unexpected record")
		}
		rels = append(rels, r)
	}

	s.logger.Debug("relationships fetched", "requested", len(ids), "found", len(rels))
	return rels, nil
}

// Neighbors implements subgraph.Store
func (s *Neo4jStore) Neighbors(ctx context.Context, nodeID subgraph.ID, exclude []subgraph.ID, limit int) (subgraph.Neighborhood, error) {
	var hood subgraph.Neighborhood
	if limit == 0 {
		return hood, nil
	}

	builder := NewCypherBuilder()
	query, err := builder.BuildNeighbors(int64(nodeID), toInt64s(exclude), limit)
	if err != nil {
		return hood, errors.MalformedRequest(err.Error())
	}

	records, err := s.readRecords(ctx, "neighbor_query", query, builder.Params())
	if err != nil {
		return hood, err
	}

	seen := make(map[subgraph.ID]bool)
	for _, record := range records {
		r, err := relationshipFromRecord(record, "r")
		if err != nil {
			return subgraph.Neighborhood{}, errors.StoreUnavailable(err, "neighbor_query returned an unexpected record")
		}
		m, err := nodeFromRecord(record, "m")
		if err != nil {
			return subgraph.Neighborhood{}, errors.StoreUnavailable(err, "neighbor_query returned an unexpected record")
		}
		hood.Relationships = append(hood.Relationships, r)
		if !seen[m.ID] {
			seen[m.ID] = true
			hood.Nodes = append(hood.Nodes, m)
		}
	}

	s.logger.Debug("neighbors fetched", "node_id", nodeID, "excluded", len(exclude), "relationships", len(hood.Relationships))
	return hood, nil
}

// Labels implements subgraph.LabelCatalog
func (s *Neo4jStore) Labels(ctx context.Context) ([]string, error) {
	return s.readStrings(ctx, labelCatalogQuery, "label")
}

// RelationshipTypes lists the relationship types known to the database
func (s *Neo4jStore) RelationshipTypes(ctx context.Context) ([]string, error) {
	return s.readStrings(ctx, relationshipTypesQuery, "relationshipType")
}

func (s *Neo4jStore) readStrings(ctx context.Context, query, key string) ([]string, error) {
	records, err := s.readRecords(ctx, "schema_introspection", query, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(records))
	for _, record := range records {
		v, _, err := neo4j.GetRecordValue[string](record, key)
		if err != nil {
			return nil, errors.StoreUnavailablef(err, "schema_introspection returned no %s", key)
		}
		out = append(out, v)
	}
	return out, nil
}

// CountByLabel counts nodes per label. Labels that are not plain identifiers are skipped.
func (s *Neo4jStore) CountByLabel(ctx context.Context, labels []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(labels))
	for _, label := range labels {
		query, err := NewCypherBuilder().BuildCountByLabel(label)
		if err != nil {
			s.logger.Warn("skipping label count", "label", label, "error", err)
			continue
		}
		n, err := s.readCount(ctx, query)
		if err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, nil
}

// CountByRelationshipType counts relationships per type
func (s *Neo4jStore) CountByRelationshipType(ctx context.Context, types []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(types))
	for _, relType := range types {
		query, err := NewCypherBuilder().BuildCountByRelationshipType(relType)
		if err != nil {
			s.logger.Warn("skipping relationship type count", "type", relType, "error", err)
			continue
		}
		n, err := s.readCount(ctx, query)
		if err != nil {
			return nil, err
		}
		counts[relType] = n
	}
	return counts, nil
}

func (s *Neo4jStore) readCount(ctx context.Context, query string) (int64, error) {
	records, err := s.readRecords(ctx, "schema_introspection", query, nil)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	n, _, err := neo4j.GetRecordValue[int64](records[0], "count")
	if err != nil {
		return 0, errors.StoreUnavailable(err, "count query returned an unexpected record")
	}
	return n, nil
}

// HealthCheck implements subgraph.HealthChecker
func (s *Neo4jStore) HealthCheck(ctx context.Context) error {
	if err := s.client.HealthCheck(ctx); err != nil {
		return errors.StoreUnavailable(err, "graph store unreachable")
	}
	return nil
}

// Export streams every node, then every relationship, in ascending id order.
// Records are pulled lazily so the whole graph is never held by the driver at once.
func (s *Neo4jStore) Export(
	ctx context.Context,
	fetchSize int,
	onNode func(subgraph.Node) error,
	onRelationship func(subgraph.Relationship) error,
) error {
	txConfig := GetConfigForOperation("snapshot_export")
	if fetchSize <= 0 {
		fetchSize = DefaultFetchSizeConfig().LargeQueryFetchSize
	}

	return s.monitor.MonitorWithContext(ctx, "snapshot_export", txConfig.Timeout, func(ctx context.Context) error {
		nodes, err := s.stream(ctx, exportNodesQuery, fetchSize, txConfig.WithCustomMetadata("phase", "nodes"), func(record *neo4j.Record) error {
			n, err := nodeFromRecord(record, "n")
			if err != nil {
				return err
			}
			return onNode(n)
		})
		if err != nil {
			return errors.StoreUnavailable(err, "node export failed")
		}

		rels, err := s.stream(ctx, exportRelsQuery, fetchSize, txConfig.WithCustomMetadata("phase", "relationships"), func(record *neo4j.Record) error {
			r, err := relationshipFromRecord(record, "r")
			if err != nil {
				return err
			}
			return onRelationship(r)
		})
		if err != nil {
			return errors.StoreUnavailable(err, "relationship export failed")
		}

		s.logger.Info("graph exported", "nodes", nodes, "relationships", rels)
		return nil
	})
}

func (s *Neo4jStore) stream(ctx context.Context, query string, fetchSize int, txConfig TransactionConfig, fn func(*neo4j.Record) error) (int, error) {
	iter, err := ExecuteQueryLazy(ctx, s.client.Driver(), query, nil, s.client.Database(), fetchSize, txConfig)
	if err != nil {
		return 0, err
	}
	defer iter.Close(ctx)

	count := 0
	for iter.Next() {
		if err := fn(iter.Record()); err != nil {
			return count, err
		}
		count++
	}
	return count, iter.Err()
}

func nodeFromRecord(record *neo4j.Record, key string) (subgraph.Node, error) {
	n, isNil, err := neo4j.GetRecordValue[neo4j.Node](record, key)
	if err != nil {
		return subgraph.Node{}, err
	}
	if isNil {
		return subgraph.Node{}, fmt.Errorf("record key %q is null", key)
	}
	return nodeFromDB(n), nil
}

func relationshipFromRecord(record *neo4j.Record, key string) (subgraph.Relationship, error) {
	r, isNil, err := neo4j.GetRecordValue[neo4j.Relationship](record, key)
	if err != nil {
		return subgraph.Relationship{}, err
	}
	if isNil {
		return subgraph.Relationship{}, fmt.Errorf("record key %q is null", key)
	}
	return relationshipFromDB(r), nil
}

func toInt64s(ids []subgraph.ID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
