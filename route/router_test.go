package route

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool is a scriptable retrieval.Tool for router tests.
type fakeTool struct {
	name       string
	invokeFunc func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error)
	calls      atomic.Int64
}

func (f *fakeTool) Name() string { return f.name }

func (f *fakeTool) Invoke(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
	f.calls.Add(1)
	if f.invokeFunc != nil {
		return f.invokeFunc(ctx, query, filter, topN)
	}
	return []core.RawCandidate{{Kind: core.SourceVector, Content: f.name + ": " + query, Score: 0.5}}, nil
}

func newTestRouter(t *testing.T, tools []*fakeTool, opts ...Option) *Router {
	t.Helper()
	registry := retrieval.NewRegistry()
	for _, tool := range tools {
		require.NoError(t, registry.Register(tool))
	}
	opts = append([]Option{WithRetryBaseDelay(time.Millisecond)}, opts...)
	router, err := NewRouter(registry, opts...)
	require.NoError(t, err)
	t.Cleanup(router.Release)
	return router
}

func specsFor(tools ...string) core.ExecutionPlan {
	plan := make(core.ExecutionPlan, len(tools))
	for i, tool := range tools {
		plan[i] = core.ToolSpec{Tool: tool, Weight: 0.5}
	}
	return plan
}

func TestExecutePreservesPlanOrder(t *testing.T) {
	alpha := &fakeTool{name: "alpha"}
	beta := &fakeTool{name: "beta"}
	slow := &fakeTool{name: "slow", invokeFunc: func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
		time.Sleep(20 * time.Millisecond)
		return []core.RawCandidate{{Content: "late", Score: 0.1}}, nil
	}}
	router := newTestRouter(t, []*fakeTool{alpha, beta, slow})

	results := router.Execute(context.Background(), specsFor("slow", "alpha", "beta"), []string{"q"})

	require.Len(t, results, 3)
	assert.Equal(t, "slow", results[0].ToolName)
	assert.Equal(t, "alpha", results[1].ToolName)
	assert.Equal(t, "beta", results[2].ToolName)
	for _, result := range results {
		assert.Equal(t, core.ToolStatusOK, result.Status)
	}
}

func TestExecuteOneCallPerToolVariantPair(t *testing.T) {
	alpha := &fakeTool{name: "alpha"}
	beta := &fakeTool{name: "beta"}
	router := newTestRouter(t, []*fakeTool{alpha, beta})

	variants := []string{"first variant", "second variant", "third variant"}
	results := router.Execute(context.Background(), specsFor("alpha", "beta"), variants)

	require.Len(t, results, 2)
	assert.EqualValues(t, 3, alpha.calls.Load())
	assert.EqualValues(t, 3, beta.calls.Load())
	// Candidates from every variant pool into one slot
	assert.Len(t, results[0].Raw, 3)
}

func TestExecutePassesMetadataHintsAsFilter(t *testing.T) {
	var gotFilter map[string][]string
	tool := &fakeTool{name: "alpha", invokeFunc: func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
		gotFilter = filter
		return nil, nil
	}}
	router := newTestRouter(t, []*fakeTool{tool})

	hints := map[string][]string{"section": {"efficacy_results"}}
	plan := core.ExecutionPlan{{Tool: "alpha", Weight: 1.0, MetadataHints: hints}}
	router.Execute(context.Background(), plan, []string{"q"})

	assert.Equal(t, hints, gotFilter)
}

func TestExecuteEmptyStatus(t *testing.T) {
	tool := &fakeTool{name: "alpha", invokeFunc: func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
		return nil, nil
	}}
	router := newTestRouter(t, []*fakeTool{tool})

	results := router.Execute(context.Background(), specsFor("alpha"), []string{"q"})
	require.Len(t, results, 1)
	assert.Equal(t, core.ToolStatusEmpty, results[0].Status)
}

func TestExecuteRetriesOnceThenSucceeds(t *testing.T) {
	tool := &fakeTool{name: "alpha"}
	tool.invokeFunc = func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
		if tool.calls.Load() == 1 {
			return nil, errors.New("transient")
		}
		return []core.RawCandidate{{Content: "recovered", Score: 0.7}}, nil
	}
	router := newTestRouter(t, []*fakeTool{tool})

	results := router.Execute(context.Background(), specsFor("alpha"), []string{"q"})
	require.Len(t, results, 1)
	assert.Equal(t, core.ToolStatusOK, results[0].Status)
	assert.EqualValues(t, 2, tool.calls.Load())
}

func TestExecuteErrorAfterRetryExhaustion(t *testing.T) {
	tool := &fakeTool{name: "alpha", invokeFunc: func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
		return nil, errors.New("backend down")
	}}
	router := newTestRouter(t, []*fakeTool{tool})

	results := router.Execute(context.Background(), specsFor("alpha"), []string{"q"})
	require.Len(t, results, 1)
	assert.Equal(t, core.ToolStatusError, results[0].Status)
	assert.Contains(t, results[0].ErrDetail, "backend down")
	assert.EqualValues(t, 2, tool.calls.Load(), "one initial attempt plus one retry")
}

func TestExecutePerCallTimeout(t *testing.T) {
	tool := &fakeTool{name: "alpha", invokeFunc: func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	router := newTestRouter(t, []*fakeTool{tool}, WithCallTimeout(20*time.Millisecond))

	results := router.Execute(context.Background(), specsFor("alpha"), []string{"q"})
	require.Len(t, results, 1)
	assert.Equal(t, core.ToolStatusTimeout, results[0].Status)
}

func TestExecuteSlowToolDoesNotBlockSiblings(t *testing.T) {
	fast := &fakeTool{name: "fast"}
	stuck := &fakeTool{name: "stuck", invokeFunc: func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	router := newTestRouter(t, []*fakeTool{fast, stuck}, WithCallTimeout(20*time.Millisecond))

	results := router.Execute(context.Background(), specsFor("stuck", "fast"), []string{"q"})
	require.Len(t, results, 2)
	assert.Equal(t, core.ToolStatusTimeout, results[0].Status)
	assert.Equal(t, core.ToolStatusOK, results[1].Status)
}

func TestExecuteOuterDeadlineMarksPendingTimeout(t *testing.T) {
	// Ignores cancellation, so only the outer deadline can unblock the request
	stubborn := &fakeTool{name: "stubborn", invokeFunc: func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
		time.Sleep(300 * time.Millisecond)
		return nil, nil
	}}
	fast := &fakeTool{name: "fast"}
	router := newTestRouter(t, []*fakeTool{stubborn, fast}, WithCallTimeout(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	results := router.Execute(ctx, specsFor("stubborn", "fast"), []string{"q"})
	assert.Less(t, time.Since(start), 250*time.Millisecond)

	require.Len(t, results, 2)
	assert.Equal(t, "stubborn", results[0].ToolName)
	assert.Equal(t, core.ToolStatusTimeout, results[0].Status)
}

func TestExecuteUnregisteredTool(t *testing.T) {
	router := newTestRouter(t, []*fakeTool{{name: "alpha"}})

	results := router.Execute(context.Background(), specsFor("alpha", "ghost"), []string{"q"})
	require.Len(t, results, 2)
	assert.Equal(t, core.ToolStatusOK, results[0].Status)
	assert.Equal(t, core.ToolStatusError, results[1].Status)
}

func TestExecuteAllFailuresStillFullLength(t *testing.T) {
	broken := &fakeTool{name: "broken", invokeFunc: func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
		return nil, errors.New("down")
	}}
	router := newTestRouter(t, []*fakeTool{broken})

	results := router.Execute(context.Background(), specsFor("broken", "ghost", "broken"), []string{"a", "b"})
	assert.Len(t, results, 3)
}

func TestNewRouterValidation(t *testing.T) {
	_, err := NewRouter(nil)
	assert.ErrorIs(t, err, ErrRegistryRequired)

	registry := retrieval.NewRegistry()
	_, err = NewRouter(registry, WithCallTimeout(0))
	assert.Error(t, err)
	_, err = NewRouter(registry, WithTopN(0))
	assert.Error(t, err)
}

func TestRetryWithBackoffInvalidAttempts(t *testing.T) {
	err := retryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}
