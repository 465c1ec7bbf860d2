package langchain

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/retrievit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// stubStore implements vectorstores.VectorStore for tests.
type stubStore struct {
	docs []schema.Document
	err  error
}

func (s *stubStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	return nil, nil
}

func (s *stubStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.docs) > numDocuments {
		return s.docs[:numDocuments], nil
	}
	return s.docs, nil
}

func TestInvokeConvertsDocuments(t *testing.T) {
	store := &stubStore{docs: []schema.Document{
		{
			PageContent: "dosing guidance for adults",
			Score:       0.92,
			Metadata:    map[string]any{"section": "dosing", "page": 12},
		},
	}}
	tool, err := New("external_vectors", store)
	require.NoError(t, err)
	assert.Equal(t, "external_vectors", tool.Name())

	candidates, err := tool.Invoke(context.Background(), "dosing", nil, 5)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, core.SourceVector, candidates[0].Kind)
	assert.Equal(t, "dosing guidance for adults", candidates[0].Content)
	assert.InDelta(t, 0.92, candidates[0].Score, 0.001)
	assert.Equal(t, "dosing", candidates[0].Metadata["section"])
	assert.Equal(t, "12", candidates[0].Metadata["page"])
}

func TestInvokeAppliesFilterLocally(t *testing.T) {
	store := &stubStore{docs: []schema.Document{
		{PageContent: "keep", Metadata: map[string]any{"section": "dosing"}},
		{PageContent: "drop", Metadata: map[string]any{"section": "other"}},
	}}
	tool, err := New("external_vectors", store)
	require.NoError(t, err)

	candidates, err := tool.Invoke(context.Background(), "q",
		map[string][]string{"section": {"dosing"}}, 5)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "keep", candidates[0].Content)
}

func TestInvokePropagatesStoreError(t *testing.T) {
	wantErr := errors.New("store unreachable")
	tool, err := New("external_vectors", &stubStore{err: wantErr})
	require.NoError(t, err)

	_, err = tool.Invoke(context.Background(), "q", nil, 5)
	assert.ErrorIs(t, err, wantErr)
}

func TestNewValidation(t *testing.T) {
	_, err := New("", &stubStore{})
	assert.Error(t, err)

	_, err = New("name", nil)
	assert.Error(t, err)

	_, err = New("name", &stubStore{}, WithScoreThreshold(1.5))
	assert.Error(t, err)
}
