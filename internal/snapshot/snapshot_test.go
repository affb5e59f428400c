package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/graphscope/internal/errors"
	"github.com/rohankatakam/graphscope/internal/subgraph"
)

func samplePayload() subgraph.Payload {
	sg := subgraph.New()
	sg.AddNode(subgraph.Node{ID: 1, Labels: []string{"County"}, Properties: map[string]any{"county": "Kent", "pop": int64(120000)}})
	sg.AddNode(subgraph.Node{ID: 2, Labels: []string{"Program"}, Properties: map[string]any{"share": 0.25}})
	sg.AddRelationship(subgraph.Relationship{ID: 10, Type: "FUNDS", StartNodeID: 2, EndNodeID: 1})
	return subgraph.Serialize(sg, subgraph.LabelKey())
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := NewFileStore(dir, "", "")

	require.NoError(t, WritePayload(ctx, samplePayload(), fs))
	assert.FileExists(t, filepath.Join(dir, DefaultGraphFile))

	p, err := LoadPayload(ctx, fs)
	require.NoError(t, err)
	require.Len(t, p.Nodes, 2)
	assert.Equal(t, int64(120000), p.Nodes[0].Properties["pop"], "integers survive as int64")
	assert.Equal(t, 0.25, p.Nodes[1].Properties["share"])

	store, err := LoadMemoryStore(ctx, fs)
	require.NoError(t, err)
	nodes, rels := store.Counts()
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 1, rels)
}

func TestFileStore_Missing(t *testing.T) {
	fs := NewFileStore(t.TempDir(), "graph.json", "tables.json")

	_, err := fs.Read(context.Background(), TablesKey)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestLoadPayload_Invalid(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultGraphFile), []byte(`{"nodes": 7}`), 0644))

	_, err := LoadPayload(ctx, NewFileStore(dir, "", ""))
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeFileSystem, errors.GetType(err))
}

func TestLoadMemoryStore_DanglingRelationship(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	data := `{"nodes":[{"id":1,"labels":["A"],"properties":{}}],
	          "relationships":[{"id":5,"type":"R","source":1,"target":99,"properties":{}}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultGraphFile), []byte(data), 0644))

	_, err := LoadMemoryStore(ctx, NewFileStore(dir, "", ""))
	assert.Error(t, err)
}

func TestBoltStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")

	db, err := OpenBolt(path, false)
	require.NoError(t, err)

	_, err = db.Read(ctx, GraphKey)
	assert.True(t, errors.Is(err, errors.ErrNotFound), "empty database has no bucket")

	require.NoError(t, WritePayload(ctx, samplePayload(), db))
	require.NoError(t, db.Write(ctx, TablesKey, []byte(`[]`)))

	keys, err := db.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{GraphKey, TablesKey}, keys)
	require.NoError(t, db.Close())

	ro, err := OpenBolt(path, true)
	require.NoError(t, err)
	defer ro.Close()

	store, err := LoadMemoryStore(ctx, ro)
	require.NoError(t, err)
	labels, err := store.Labels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"County", "Program"}, labels)
}
