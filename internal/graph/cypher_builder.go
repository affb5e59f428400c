package graph

import (
	"fmt"
	"regexp"
)

// Fixed read queries. Export queries order by id so snapshots are reproducible.
const (
	labelCatalogQuery      = `CALL db.labels() YIELD label RETURN label ORDER BY label`
	relationshipTypesQuery = `CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType ORDER BY relationshipType`
	exportNodesQuery       = `MATCH (n) RETURN n ORDER BY id(n)`
	exportRelsQuery        = `MATCH ()-[r]->() RETURN r ORDER BY id(r)`
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// CypherBuilder builds safe, parameterized Cypher queries
// Security: every value is passed as a parameter; identifiers are validated
type CypherBuilder struct {
	params  map[string]any
	counter int
}

// NewCypherBuilder creates a query builder
func NewCypherBuilder() *CypherBuilder {
	return &CypherBuilder{
		params:  make(map[string]any),
		counter: 0,
	}
}

// AddParam adds a parameter and returns its placeholder
func (b *CypherBuilder) AddParam(value any) string {
	paramName := fmt.Sprintf("p%d", b.counter)
	b.counter++
	b.params[paramName] = value
	return "$" + paramName
}

// Params returns all parameters for the query
func (b *CypherBuilder) Params() map[string]any {
	return b.params
}

// BuildNodesByID matches nodes by internal id. Unknown ids produce no row.
func (b *CypherBuilder) BuildNodesByID(ids []int64) string {
	return fmt.Sprintf("MATCH (n) WHERE id(n) IN %s RETURN n ORDER BY id(n)", b.AddParam(ids))
}

// BuildRelationshipsByID matches relationships by internal id
func (b *CypherBuilder) BuildRelationshipsByID(ids []int64) string {
	return fmt.Sprintf("MATCH ()-[r]->() WHERE id(r) IN %s RETURN r ORDER BY id(r)", b.AddParam(ids))
}

// BuildNeighbors returns the relationships incident to a node in either direction,
// together with the endpoint on the other side, skipping excluded relationship ids.
// Rows are ordered by relationship id and capped by LIMIT, so the cap counts only
// relationships the caller does not already hold.
func (b *CypherBuilder) BuildNeighbors(nodeID int64, exclude []int64, limit int) (string, error) {
	if limit < 0 {
		return "", fmt.Errorf("invalid neighbor limit: %d (must be >= 0)", limit)
	}
	if exclude == nil {
		exclude = []int64{}
	}
	nodeParam := b.AddParam(nodeID)
	excludeParam := b.AddParam(exclude)
	limitParam := b.AddParam(int64(limit))

	return fmt.Sprintf(
		"MATCH (n)-[r]-(m) WHERE id(n) = %s AND NOT id(r) IN %s "+
			"WITH DISTINCT r, m ORDER BY id(r) LIMIT %s RETURN r, m",
		nodeParam, excludeParam, limitParam,
	), nil
}

// BuildCountByLabel counts nodes carrying one label
func (b *CypherBuilder) BuildCountByLabel(label string) (string, error) {
	if !isValidIdentifier(label) {
		return "", fmt.Errorf("invalid node label: %s (must be alphanumeric + underscore)", label)
	}
	return fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS count", label), nil
}

// BuildCountByRelationshipType counts relationships of one type
func (b *CypherBuilder) BuildCountByRelationshipType(relType string) (string, error) {
	if !isValidIdentifier(relType) {
		return "", fmt.Errorf("invalid relationship type: %s (must be alphanumeric + underscore)", relType)
	}
	return fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r) AS count", relType), nil
}

// isValidIdentifier validates that a string can be safely used as a Cypher identifier
// Only allows alphanumeric characters and underscores (prevents injection)
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	return identifierPattern.MatchString(s)
}
