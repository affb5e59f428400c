package tables

import (
	"context"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/graphscope/internal/errors"
)

// DefaultRowLimit caps rows read per table
const DefaultRowLimit = 10000

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// Column describes one column of a SQL table
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable *bool  `json:"nullable,omitempty"`
}

// SQLSource reads each configured table with SELECT * and presents the rows as
// tableData and the column list as tableInfo
type SQLSource struct {
	db       *sqlx.DB
	tables   []string
	rowLimit int
	logger   *logrus.Logger
}

// SQLOptions configures a SQLSource
type SQLOptions struct {
	// Driver is one of sqlite3, postgres (lib/pq) or pgx
	Driver   string
	DSN      string
	Tables   []string
	RowLimit int
}

// NewSQLSource connects and validates the table list
func NewSQLSource(opts SQLOptions, logger *logrus.Logger) (*SQLSource, error) {
	switch opts.Driver {
	case "sqlite3", "postgres", "pgx":
	default:
		return nil, errors.ConfigErrorf("unsupported tables driver %q (want sqlite3, postgres or pgx)", opts.Driver)
	}
	for _, t := range opts.Tables {
		if !tableNamePattern.MatchString(t) {
			return nil, errors.ConfigErrorf("invalid table name %q", t)
		}
	}

	db, err := sqlx.Connect(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", opts.Driver, err)
	}

	if opts.Driver != "sqlite3" {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return newSQLSource(db, opts.Tables, opts.RowLimit, logger), nil
}

func newSQLSource(db *sqlx.DB, tables []string, rowLimit int, logger *logrus.Logger) *SQLSource {
	if rowLimit <= 0 {
		rowLimit = DefaultRowLimit
	}
	return &SQLSource{db: db, tables: tables, rowLimit: rowLimit, logger: logger}
}

// Close closes the database connection
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// Catalog implements Source
func (s *SQLSource) Catalog(ctx context.Context) (*Catalog, error) {
	catalog := NewCatalog()
	for _, table := range s.tables {
		entry, err := s.readTable(ctx, table)
		if err != nil {
			return nil, err
		}
		catalog.Add(table, entry)
	}
	return catalog, nil
}

func (s *SQLSource) readTable(ctx context.Context, table string) (Entry, error) {
	// table names are validated identifiers; the limit is bound
	query := s.db.Rebind(fmt.Sprintf("SELECT * FROM %s LIMIT ?", table))
	rows, err := s.db.QueryxContext(ctx, query, s.rowLimit)
	if err != nil {
		return Entry{}, fmt.Errorf("query table %s: %w", table, err)
	}
	defer rows.Close()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return Entry{}, fmt.Errorf("describe table %s: %w", table, err)
	}
	info := make([]Column, 0, len(columnTypes))
	for _, ct := range columnTypes {
		col := Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
		if nullable, ok := ct.Nullable(); ok {
			col.Nullable = &nullable
		}
		info = append(info, col)
	}

	data := []map[string]any{}
	for rows.Next() {
		row := make(map[string]any, len(columnTypes))
		if err := rows.MapScan(row); err != nil {
			return Entry{}, fmt.Errorf("scan table %s: %w", table, err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, fmt.Errorf("read table %s: %w", table, err)
	}

	s.logger.WithFields(logrus.Fields{
		"table":   table,
		"rows":    len(data),
		"columns": len(info),
	}).Debug("table loaded")

	return Entry{TableData: data, TableInfo: info}, nil
}
