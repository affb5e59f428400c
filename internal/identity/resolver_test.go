package identity

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/graphscope/internal/errors"
	"github.com/rohankatakam/graphscope/internal/subgraph"
)

type stubCatalog struct {
	labels []string
	err    error
	calls  int
}

func (s *stubCatalog) Labels(ctx context.Context) ([]string, error) {
	s.calls++
	return s.labels, s.err
}

func TestResolve_Auto(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   subgraph.EntityKey
	}{
		{"several labels group by label", []string{"County", "Program"}, subgraph.LabelKey()},
		{"single label falls back to property", []string{"County"}, subgraph.PropertyKey("county")},
		{"duplicate labels count once", []string{"County", "County"}, subgraph.PropertyKey("county")},
		{"no labels falls back to property", nil, subgraph.PropertyKey("county")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &stubCatalog{labels: tt.labels}
			key, err := Resolve(context.Background(), catalog, Options{Mode: ModeAuto})
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
			assert.Equal(t, 1, catalog.calls)
		})
	}
}

func TestResolve_ExplicitModesSkipCatalog(t *testing.T) {
	catalog := &stubCatalog{err: fmt.Errorf("unreachable")}

	key, err := Resolve(context.Background(), catalog, Options{Mode: ModeLabel})
	require.NoError(t, err)
	assert.Equal(t, subgraph.LabelKey(), key)

	key, err = Resolve(context.Background(), catalog, Options{Mode: ModeProperty, FallbackProperty: "region"})
	require.NoError(t, err)
	assert.Equal(t, subgraph.PropertyKey("region"), key)

	assert.Zero(t, catalog.calls)
}

func TestResolve_Failures(t *testing.T) {
	t.Run("catalog error", func(t *testing.T) {
		_, err := Resolve(context.Background(), &stubCatalog{err: fmt.Errorf("connection refused")}, Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrSchemaResolution))
		assert.True(t, errors.IsFatal(err))
	})

	t.Run("missing catalog in auto mode", func(t *testing.T) {
		_, err := Resolve(context.Background(), nil, Options{Mode: ModeAuto})
		assert.True(t, errors.Is(err, errors.ErrSchemaResolution))
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := Resolve(context.Background(), &stubCatalog{}, Options{Mode: "guess"})
		assert.True(t, errors.Is(err, errors.ErrSchemaResolution))
	})
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeAuto, "AUTO": ModeAuto, " label ": ModeLabel, "property": ModeProperty} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("labels")
	assert.Error(t, err)
}
