package mock

import (
	"context"
	"strings"
)

// MockReranker is a test double for ai.Reranker.
type MockReranker struct {
	// ScoreBatchFunc is called by ScoreBatch if set.
	// If nil, scores by naive word overlap with the query.
	ScoreBatchFunc func(ctx context.Context, query string, passages []string) ([]float32, error)

	callCount int
}

// NewMockReranker creates a mock reranker with default behavior.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// ScoreBatch scores each passage by the fraction of query words it contains.
// Deterministic and aligned by index, which is all fusion relies on.
func (m *MockReranker) ScoreBatch(ctx context.Context, query string, passages []string) ([]float32, error) {
	m.callCount++

	if m.ScoreBatchFunc != nil {
		return m.ScoreBatchFunc(ctx, query, passages)
	}

	queryWords := strings.Fields(strings.ToLower(query))
	scores := make([]float32, len(passages))
	if len(queryWords) == 0 {
		return scores, nil
	}

	for i, passage := range passages {
		lowered := strings.ToLower(passage)
		matched := 0
		for _, word := range queryWords {
			if strings.Contains(lowered, word) {
				matched++
			}
		}
		scores[i] = float32(matched) / float32(len(queryWords))
	}
	return scores, nil
}

// CallCount returns the number of times ScoreBatch was called.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.ScoreBatchFunc = nil
}
