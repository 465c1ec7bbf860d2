package mock

import "context"

// MockQueryRewriter is a test double for ai.QueryRewriter.
type MockQueryRewriter struct {
	// RewriteFunc is called by Rewrite if set.
	// If nil, returns the query unchanged as the sole variant.
	RewriteFunc func(ctx context.Context, query string, history []string) ([]string, error)

	callCount int
}

// NewMockQueryRewriter creates a mock query rewriter with default behavior.
func NewMockQueryRewriter() *MockQueryRewriter {
	return &MockQueryRewriter{}
}

// Rewrite returns the original query as the only variant.
func (m *MockQueryRewriter) Rewrite(ctx context.Context, query string, history []string) ([]string, error) {
	m.callCount++

	if m.RewriteFunc != nil {
		return m.RewriteFunc(ctx, query, history)
	}
	return []string{query}, nil
}

// CallCount returns the number of times Rewrite was called.
func (m *MockQueryRewriter) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockQueryRewriter) Reset() {
	m.callCount = 0
	m.RewriteFunc = nil
}
