package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// LazyQueryIterator provides lazy iteration over query results
//
// Eager:
//
//	result := neo4j.ExecuteQuery(...) // loads ALL records into memory
//
// Lazy:
//
//	iter := ExecuteQueryLazy(...)
//	for iter.Next() {
//	  record := iter.Record() // only the current batch in memory
//	}
//
// Snapshot export walks the whole graph this way.
type LazyQueryIterator struct {
	result  neo4j.ResultWithContext
	session neo4j.SessionWithContext
	ctx     context.Context
}

// Next advances to the next record
func (l *LazyQueryIterator) Next() bool {
	return l.result.Next(l.ctx)
}

// Record returns the current record
// Must call Next() first to advance to a record
func (l *LazyQueryIterator) Record() *neo4j.Record {
	return l.result.Record()
}

// Collect reads remaining records into a slice (up to limit)
func (l *LazyQueryIterator) Collect(limit int) ([]*neo4j.Record, error) {
	records := make([]*neo4j.Record, 0, limit)

	for len(records) < limit && l.Next() {
		records = append(records, l.result.Record())
	}

	if err := l.result.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Close consumes remaining results and closes the session
// IMPORTANT: Always defer Close() after creating an iterator
func (l *LazyQueryIterator) Close(ctx context.Context) (neo4j.ResultSummary, error) {
	defer l.session.Close(ctx)
	return l.result.Consume(ctx)
}

// Err returns any error that occurred during iteration
func (l *LazyQueryIterator) Err() error {
	return l.result.Err()
}

// ExecuteQueryLazy runs a read query in an auto-commit transaction and returns
// a lazy iterator. fetchSize controls how many records are buffered at once.
//
// IMPORTANT: Caller must call Close() on the iterator to free session resources
func ExecuteQueryLazy(
	ctx context.Context,
	driver neo4j.DriverWithContext,
	query string,
	params map[string]any,
	database string,
	fetchSize int,
	txConfig TransactionConfig,
) (*LazyQueryIterator, error) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: database,
		AccessMode:   neo4j.AccessModeRead,
		FetchSize:    fetchSize,
	})

	// session.Run rather than ExecuteRead: the iterator outlives this call
	result, err := session.Run(ctx, query, params, txConfig.AsNeo4jConfig()...)
	if err != nil {
		session.Close(ctx)
		return nil, fmt.Errorf("lazy query failed: %w", err)
	}

	return &LazyQueryIterator{
		result:  result,
		session: session,
		ctx:     ctx,
	}, nil
}

// FetchSizeConfig controls how many records are fetched at a time
type FetchSizeConfig struct {
	SmallQueryFetchSize  int // Default: 100
	MediumQueryFetchSize int // Default: 500
	LargeQueryFetchSize  int // Default: 1000
}

// DefaultFetchSizeConfig returns recommended fetch sizes
func DefaultFetchSizeConfig() FetchSizeConfig {
	return FetchSizeConfig{
		SmallQueryFetchSize:  100,
		MediumQueryFetchSize: 500,
		LargeQueryFetchSize:  1000,
	}
}
