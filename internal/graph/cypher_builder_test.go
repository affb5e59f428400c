package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCypherBuilder_LookupQueries(t *testing.T) {
	b := NewCypherBuilder()
	nodes := b.BuildNodesByID([]int64{1, 2})
	rels := b.BuildRelationshipsByID([]int64{7})

	assert.Equal(t, "MATCH (n) WHERE id(n) IN $p0 RETURN n ORDER BY id(n)", nodes)
	assert.Equal(t, "MATCH ()-[r]->() WHERE id(r) IN $p1 RETURN r ORDER BY id(r)", rels)
	assert.Equal(t, map[string]any{"p0": []int64{1, 2}, "p1": []int64{7}}, b.Params())
}

func TestCypherBuilder_BuildNeighbors(t *testing.T) {
	b := NewCypherBuilder()
	query, err := b.BuildNeighbors(3, nil, 5)
	require.NoError(t, err)

	assert.Contains(t, query, "id(n) = $p0")
	assert.Contains(t, query, "NOT id(r) IN $p1")
	assert.Contains(t, query, "ORDER BY id(r) LIMIT $p2")
	assert.Equal(t, int64(3), b.Params()["p0"])
	assert.Equal(t, []int64{}, b.Params()["p1"], "nil exclude list must still be a list parameter")
	assert.Equal(t, int64(5), b.Params()["p2"])

	_, err = NewCypherBuilder().BuildNeighbors(3, nil, -1)
	assert.Error(t, err)
}

func TestCypherBuilder_Counts(t *testing.T) {
	query, err := NewCypherBuilder().BuildCountByLabel("County")
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:County) RETURN count(n) AS count", query)

	query, err = NewCypherBuilder().BuildCountByRelationshipType("FUNDS")
	require.NoError(t, err)
	assert.Equal(t, "MATCH ()-[r:FUNDS]->() RETURN count(r) AS count", query)

	_, err = NewCypherBuilder().BuildCountByLabel("County) DETACH DELETE n //")
	assert.Error(t, err)
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"County", true},
		{"_private", true},
		{"Program2024", true},
		{"", false},
		{"2024Program", false},
		{"has space", false},
		{"a-b", false},
		{"x`y", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidIdentifier(tt.input), tt.input)
	}
}
