// Package tables serves the tabular reference data shown next to the graph.
package tables

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/graphscope/internal/errors"
	"github.com/rohankatakam/graphscope/internal/snapshot"
)

// Entry is one table: its rows and its column description
type Entry struct {
	TableData any `json:"tableData"`
	TableInfo any `json:"tableInfo"`
}

// Catalog is the getTableData response body. Sheet lists table names in source order.
type Catalog struct {
	Data  map[string]Entry `json:"data"`
	Sheet []string         `json:"sheet"`
}

// NewCatalog returns an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{Data: map[string]Entry{}, Sheet: []string{}}
}

// Add appends a table. A repeated name replaces the earlier data and keeps its sheet position.
func (c *Catalog) Add(name string, entry Entry) bool {
	_, exists := c.Data[name]
	c.Data[name] = entry
	if !exists {
		c.Sheet = append(c.Sheet, name)
	}
	return !exists
}

// Source produces the table catalog
type Source interface {
	Catalog(ctx context.Context) (*Catalog, error)
}

// rawTable is one element of the table list file
type rawTable struct {
	Name string          `json:"table_name"`
	Data json.RawMessage `json:"table_data"`
	Info json.RawMessage `json:"table_info"`
}

// JSONSource reshapes a table list blob ([{table_name, table_data, table_info}, ...]).
// Table contents are passed through verbatim.
type JSONSource struct {
	src    snapshot.Source
	logger *logrus.Logger
}

// NewJSONSource reads the table list from the snapshot source's tables blob
func NewJSONSource(src snapshot.Source, logger *logrus.Logger) *JSONSource {
	return &JSONSource{src: src, logger: logger}
}

// Catalog implements Source
func (s *JSONSource) Catalog(ctx context.Context) (*Catalog, error) {
	data, err := s.src.Read(ctx, snapshot.TablesKey)
	if err != nil {
		return nil, err
	}

	var raw []rawTable
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.FileSystemError(err, "table list is not a JSON array of tables")
	}

	catalog := NewCatalog()
	for i, t := range raw {
		if t.Name == "" {
			return nil, errors.New(errors.ErrorTypeFileSystem, errors.SeverityHigh, fmt.Sprintf("table %d has no table_name", i))
		}
		if !catalog.Add(t.Name, Entry{TableData: rawOrNull(t.Data), TableInfo: rawOrNull(t.Info)}) {
			s.logger.WithField("table", t.Name).Warn("duplicate table name, keeping the last definition")
		}
	}
	return catalog, nil
}

func rawOrNull(m json.RawMessage) json.RawMessage {
	if len(m) == 0 {
		return json.RawMessage("null")
	}
	return m
}
