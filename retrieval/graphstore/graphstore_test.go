package graphstore

import (
	"context"
	"testing"

	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/storage"
	"github.com/poiesic/retrievit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTool(t *testing.T) (*Tool, storage.GraphRepository, func()) {
	t.Helper()
	docRepo, graphRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	tool, err := New(graphRepo)
	require.NoError(t, err)

	cleanup := func() {
		graphRepo.Close()
		docRepo.Close()
		backend.Close()
	}
	return tool, graphRepo, cleanup
}

func seedGraph(t *testing.T, graph storage.GraphRepository) {
	t.Helper()
	ctx := context.Background()

	entities, err := graph.AddEntities(ctx,
		&core.Entity{Name: "abaloparatide", Type: "drug"},
		&core.Entity{Name: "osteoporosis", Type: "condition"},
		&core.Entity{Name: "theramex", Type: "organization"},
	)
	require.NoError(t, err)

	err = graph.AddTriples(ctx,
		&core.Triple{Subject: entities[0].Id, Relation: "TREATS", Object: entities[1].Id},
		&core.Triple{Subject: entities[2].Id, Relation: "MARKETS", Object: entities[0].Id},
	)
	require.NoError(t, err)
}

func TestToolName(t *testing.T) {
	tool, _, cleanup := newTestTool(t)
	defer cleanup()
	assert.Equal(t, "knowledge_graph", tool.Name())
}

func TestInvokeMatchesEntities(t *testing.T) {
	tool, graph, cleanup := newTestTool(t)
	defer cleanup()
	seedGraph(t, graph)

	candidates, err := tool.Invoke(context.Background(),
		"what does abaloparatide treat", nil, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	for _, candidate := range candidates {
		assert.Equal(t, core.SourceGraph, candidate.Kind)
		assert.NotEmpty(t, candidate.Fields["subject"])
		assert.NotEmpty(t, candidate.Fields["relation"])
		assert.NotEmpty(t, candidate.Fields["object"])
	}
	assert.Contains(t, []string{candidates[0].Content, candidates[1].Content},
		"abaloparatide TREATS osteoporosis")
}

func TestInvokeScoreIsMatchedKeywordFraction(t *testing.T) {
	tool, graph, cleanup := newTestTool(t)
	defer cleanup()
	seedGraph(t, graph)

	// Keywords after filtering: does, abaloparatide, treat -> 1 of 3 match
	candidates, err := tool.Invoke(context.Background(),
		"does abaloparatide treat", nil, 10)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.InDelta(t, 1.0/3.0, candidates[0].Score, 0.001)

	// Two of two keywords match entity names
	candidates, err = tool.Invoke(context.Background(),
		"abaloparatide osteoporosis", nil, 10)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.InDelta(t, 1.0, candidates[0].Score, 0.001)
}

func TestInvokeNoEntityMatch(t *testing.T) {
	tool, graph, cleanup := newTestTool(t)
	defer cleanup()
	seedGraph(t, graph)

	candidates, err := tool.Invoke(context.Background(),
		"unrelated manufacturing question", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestInvokeStopWordsOnly(t *testing.T) {
	tool, _, cleanup := newTestTool(t)
	defer cleanup()

	candidates, err := tool.Invoke(context.Background(), "the and of", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestInvokeDeduplicatesSharedTriples(t *testing.T) {
	tool, graph, cleanup := newTestTool(t)
	defer cleanup()
	seedGraph(t, graph)

	// Both endpoint entities match, but the shared edge appears once
	candidates, err := tool.Invoke(context.Background(),
		"abaloparatide osteoporosis theramex", nil, 10)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestInvokeFieldFilter(t *testing.T) {
	tool, graph, cleanup := newTestTool(t)
	defer cleanup()
	seedGraph(t, graph)

	candidates, err := tool.Invoke(context.Background(),
		"abaloparatide", map[string][]string{"relation": {"TREATS"}}, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "TREATS", candidates[0].Fields["relation"])
}

func TestInvokeHonorsTopN(t *testing.T) {
	tool, graph, cleanup := newTestTool(t)
	defer cleanup()
	seedGraph(t, graph)

	candidates, err := tool.Invoke(context.Background(), "abaloparatide", nil, 1)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}
