package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/graphscope/internal/config"
	"github.com/rohankatakam/graphscope/internal/snapshot"
	"github.com/rohankatakam/graphscope/internal/subgraph"
)

func setupSnapshotConfig(t *testing.T) {
	t.Helper()
	logger = logrus.New()
	logger.SetOutput(io.Discard)

	cfg = config.Default()
	cfg.Store.Backend = "snapshot"
	cfg.Data.LocalPath = t.TempDir()

	sg := subgraph.New()
	sg.AddNode(subgraph.Node{ID: 1, Labels: []string{"County"}, Properties: map[string]any{"county": "Benton"}})
	sg.AddNode(subgraph.Node{ID: 2, Labels: []string{"County"}, Properties: map[string]any{"county": "Linn"}})
	_, err := sg.AddRelationship(subgraph.Relationship{ID: 10, Type: "BORDERS", StartNodeID: 1, EndNodeID: 2})
	require.NoError(t, err)

	files := snapshot.NewFileStore(cfg.Data.LocalPath, cfg.Data.GraphFile, cfg.Data.TablesFile)
	require.NoError(t, snapshot.WritePayload(context.Background(), subgraph.Serialize(sg, subgraph.LabelKey()), files))
}

func TestOpenBackend_Snapshot(t *testing.T) {
	setupSnapshotConfig(t)
	ctx := context.Background()

	snapshots, closeSnapshots, err := openSnapshots(true)
	require.NoError(t, err)
	defer closeSnapshots()
	require.NotNil(t, snapshots)

	be, err := openBackend(ctx, snapshots)
	require.NoError(t, err)
	defer be.Close()
	assert.Nil(t, be.client)

	// a single label falls back to the property key
	key, err := resolveKey(ctx, be.catalog)
	require.NoError(t, err)
	assert.Equal(t, subgraph.PropertyKey("county"), key)

	engine := subgraph.NewEngine(be.store, engineOptions())
	sg, err := engine.Select(ctx, nil, []subgraph.ID{10})
	require.NoError(t, err)
	assert.Equal(t, 2, sg.NodeCount())
}

func TestOpenBackend_SnapshotWithoutData(t *testing.T) {
	setupSnapshotConfig(t)
	cfg.Data.LocalPath = ""

	snapshots, _, err := openSnapshots(true)
	require.NoError(t, err)
	assert.Nil(t, snapshots)

	_, err = openBackend(context.Background(), snapshots)
	assert.Error(t, err)
}

func TestOpenSnapshots_BoltPreferred(t *testing.T) {
	setupSnapshotConfig(t)
	cfg.Data.BoltPath = filepath.Join(t.TempDir(), "snapshots.db")

	snapshots, closeSnapshots, err := openSnapshots(false)
	require.NoError(t, err)
	defer closeSnapshots()

	_, ok := snapshots.(*snapshot.BoltStore)
	assert.True(t, ok)
}

func TestOpenTables(t *testing.T) {
	setupSnapshotConfig(t)

	src, closeTables, err := openTables(nil)
	require.NoError(t, err)
	defer closeTables()
	assert.Nil(t, src)

	cfg.Tables.Source = "sql"
	cfg.Tables.Driver = "sqlite3"
	cfg.Tables.DSN = ":memory:"
	cfg.Tables.Names = []string{"funding"}
	src, closeTables, err = openTables(nil)
	require.NoError(t, err)
	defer closeTables()
	assert.NotNil(t, src)
}

func TestResolveKey_ExplicitMode(t *testing.T) {
	setupSnapshotConfig(t)
	cfg.Identity.Mode = "label"

	// explicit modes never read the catalog
	key, err := resolveKey(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, subgraph.LabelKey(), key)
}
