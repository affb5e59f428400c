// Package snapshot stores pre-materialized blobs: the graph snapshot served by
// getGraphData and the table catalog served by getTableData.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rohankatakam/graphscope/internal/errors"
	"github.com/rohankatakam/graphscope/internal/subgraph"
)

// Well-known blob keys
const (
	GraphKey  = "graph"
	TablesKey = "tables"
)

// Source reads a blob by key. A missing blob is a NotFound error.
type Source interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

// Writer stores a blob under key, replacing any previous value
type Writer interface {
	Write(ctx context.Context, key string, data []byte) error
}

// LoadPayload decodes the graph snapshot
func LoadPayload(ctx context.Context, src Source) (subgraph.Payload, error) {
	var p subgraph.Payload
	data, err := src.Read(ctx, GraphKey)
	if err != nil {
		return p, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return p, errors.FileSystemError(err, "graph snapshot is not a serialized subgraph")
	}
	for _, n := range p.Nodes {
		normalizeNumbers(n.Properties)
	}
	for _, r := range p.Relationships {
		normalizeNumbers(r.Properties)
	}
	return p, nil
}

// LoadMemoryStore builds an in-memory graph store from the graph snapshot
func LoadMemoryStore(ctx context.Context, src Source) (*subgraph.MemoryStore, error) {
	p, err := LoadPayload(ctx, src)
	if err != nil {
		return nil, err
	}
	store, err := subgraph.NewMemoryStoreFromPayload(p)
	if err != nil {
		return nil, errors.FileSystemError(err, "graph snapshot is inconsistent")
	}
	return store, nil
}

// WritePayload encodes p as the graph snapshot on every writer
func WritePayload(ctx context.Context, p subgraph.Payload, writers ...Writer) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode graph snapshot: %w", err)
	}
	for _, w := range writers {
		if err := w.Write(ctx, GraphKey, data); err != nil {
			return err
		}
	}
	return nil
}

// normalizeNumbers turns json.Number values back into int64 where exact, float64 otherwise,
// so properties read from a snapshot compare equal to those read from the store
func normalizeNumbers(props map[string]any) {
	for k, v := range props {
		props[k] = normalizeNumber(v)
	}
}

func normalizeNumber(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case []any:
		for i := range val {
			val[i] = normalizeNumber(val[i])
		}
		return val
	case map[string]any:
		normalizeNumbers(val)
		return val
	default:
		return v
	}
}
