package retrieval

import (
	"context"
	"testing"

	"github.com/poiesic/retrievit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTool struct {
	name string
	hits []core.RawCandidate
}

func (t *staticTool) Name() string { return t.name }

func (t *staticTool) Invoke(_ context.Context, _ string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
	out := make([]core.RawCandidate, 0, len(t.hits))
	for _, hit := range t.hits {
		if MatchesFilter(hit.Metadata, filter) {
			out = append(out, hit)
		}
		if len(out) == topN {
			break
		}
	}
	return out, nil
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	t.Run("register and get", func(t *testing.T) {
		tool := &staticTool{name: "vector_search"}
		require.NoError(t, registry.Register(tool))

		got, err := registry.Get("vector_search")
		require.NoError(t, err)
		assert.Equal(t, tool, got)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		err := registry.Register(&staticTool{name: "vector_search"})
		assert.ErrorIs(t, err, ErrDuplicateTool)
	})

	t.Run("missing tool", func(t *testing.T) {
		_, err := registry.Get("pdf_live")
		assert.ErrorIs(t, err, ErrToolNotFound)
	})

	t.Run("nil tool", func(t *testing.T) {
		assert.ErrorIs(t, registry.Register(nil), ErrNilTool)
		assert.ErrorIs(t, registry.Register(&staticTool{}), ErrNilTool)
	})

	t.Run("names sorted", func(t *testing.T) {
		require.NoError(t, registry.Register(&staticTool{name: "knowledge_graph"}))
		assert.Equal(t, []string{"knowledge_graph", "vector_search"}, registry.Names())
	})
}

func TestMatchesFilter(t *testing.T) {
	metadata := map[string]string{"section": "efficacy_results", "year": "2025"}

	t.Run("empty filter matches", func(t *testing.T) {
		assert.True(t, MatchesFilter(metadata, nil))
		assert.True(t, MatchesFilter(nil, nil))
	})

	t.Run("matching value", func(t *testing.T) {
		filter := map[string][]string{"section": {"safety_profile", "efficacy_results"}}
		assert.True(t, MatchesFilter(metadata, filter))
	})

	t.Run("wrong value", func(t *testing.T) {
		filter := map[string][]string{"section": {"cost_effectiveness"}}
		assert.False(t, MatchesFilter(metadata, filter))
	})

	t.Run("missing key", func(t *testing.T) {
		filter := map[string][]string{"sponsor": {"theramex"}}
		assert.False(t, MatchesFilter(metadata, filter))
	})

	t.Run("all keys must match", func(t *testing.T) {
		filter := map[string][]string{
			"section": {"efficacy_results"},
			"year":    {"2024"},
		}
		assert.False(t, MatchesFilter(metadata, filter))
	})
}
