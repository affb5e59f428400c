package main

import (
	"context"
	"fmt"

	"github.com/rohankatakam/graphscope/internal/graph"
	"github.com/rohankatakam/graphscope/internal/identity"
	"github.com/rohankatakam/graphscope/internal/snapshot"
	"github.com/rohankatakam/graphscope/internal/subgraph"
	"github.com/rohankatakam/graphscope/internal/tables"
)

// backend is the graph store the projectors read, plus what it can report about itself
type backend struct {
	store   subgraph.Store
	catalog subgraph.LabelCatalog
	health  subgraph.HealthChecker
	client  *graph.Client // nil unless backed by Neo4j
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// connectNeo4j opens a client using the neo4j config section
func connectNeo4j(ctx context.Context) (*graph.Client, error) {
	clientCfg := graph.DefaultClientConfig()
	clientCfg.URI = cfg.Neo4j.URI
	clientCfg.User = cfg.Neo4j.User
	clientCfg.Password = cfg.Neo4j.Password
	clientCfg.Database = cfg.Neo4j.Database
	clientCfg.MaxConnectionPoolSize = cfg.Neo4j.MaxPoolSize
	if cfg.Neo4j.AcquisitionTimeout > 0 {
		clientCfg.ConnectionAcquisitionTimeout = cfg.Neo4j.AcquisitionTimeout
	}
	return graph.NewClientWithConfig(ctx, clientCfg)
}

// openSnapshots returns the configured snapshot source, or nil when none is configured.
// bbolt wins over the local directory when both are set.
func openSnapshots(readOnly bool) (snapshot.Source, func(), error) {
	switch {
	case cfg.Data.BoltPath != "":
		store, err := snapshot.OpenBolt(cfg.Data.BoltPath, readOnly)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case cfg.Data.LocalPath != "":
		return snapshot.NewFileStore(cfg.Data.LocalPath, cfg.Data.GraphFile, cfg.Data.TablesFile), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

// openBackend connects the store selected by store.backend
func openBackend(ctx context.Context, snapshots snapshot.Source) (*backend, error) {
	switch cfg.Store.Backend {
	case "snapshot":
		if snapshots == nil {
			return nil, fmt.Errorf("store.backend=snapshot needs data.local_path or data.bolt_path")
		}
		store, err := snapshot.LoadMemoryStore(ctx, snapshots)
		if err != nil {
			return nil, err
		}
		nodes, rels := store.Counts()
		logger.WithField("nodes", nodes).WithField("relationships", rels).Info("Loaded graph snapshot")
		return &backend{store: store, catalog: store, health: store}, nil

	default:
		client, err := connectNeo4j(ctx)
		if err != nil {
			return nil, err
		}
		store := graph.NewNeo4jStore(client)
		return &backend{
			store:   store,
			catalog: store,
			health:  store,
			client:  client,
			closers: []func(){func() { client.Close(context.Background()) }},
		}, nil
	}
}

// resolveKey decides the grouping key once. Failure is fatal to startup.
func resolveKey(ctx context.Context, catalog subgraph.LabelCatalog) (subgraph.EntityKey, error) {
	mode, err := identity.ParseMode(cfg.Identity.Mode)
	if err != nil {
		return subgraph.EntityKey{}, err
	}
	key, err := identity.Resolve(ctx, catalog, identity.Options{
		Mode:             mode,
		FallbackProperty: cfg.Identity.FallbackProperty,
	})
	if err != nil {
		return subgraph.EntityKey{}, err
	}
	logger.WithField("key", key.String()).WithField("mode", string(mode)).Info("Resolved entity identifier key")
	return key, nil
}

// openTables returns the configured table source; nil when there is nothing to serve
func openTables(snapshots snapshot.Source) (tables.Source, func(), error) {
	switch cfg.Tables.Source {
	case "sql":
		src, err := tables.NewSQLSource(tables.SQLOptions{
			Driver:   cfg.Tables.Driver,
			DSN:      cfg.Tables.DSN,
			Tables:   cfg.Tables.Names,
			RowLimit: cfg.Tables.RowLimit,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { src.Close() }, nil
	default:
		if snapshots == nil {
			return nil, func() {}, nil
		}
		return tables.NewJSONSource(snapshots, logger), func() {}, nil
	}
}

func engineOptions() subgraph.Options {
	return subgraph.Options{
		DefaultExpandLimit: cfg.Expand.DefaultLimit,
		MaxExpandLimit:     cfg.Expand.MaxLimit,
	}
}
