// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package route

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/retrieval"
)

const (
	defaultCallTimeout    = 10 * time.Second
	defaultRetryBaseDelay = 250 * time.Millisecond
	defaultTopN           = 10

	// one initial attempt plus one retry
	callAttempts = 2
)

// Router executes an execution plan against the tool registry. It issues one
// retrieval call per (tool, query-variant) pair, bounded by a shared worker
// pool, pools candidates per tool, and absorbs per-call failures into tool
// statuses instead of raising them.
type Router struct {
	registry       *retrieval.Registry
	pool           *ants.Pool
	callTimeout    time.Duration
	retryBaseDelay time.Duration
	topN           int
	logger         *slog.Logger
}

// Option configures a Router.
type Option func(*Router) error

// WithPoolSize sets the worker pool size bounding concurrent tool calls.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Router) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithCallTimeout sets the per-call deadline for one tool invocation.
func WithCallTimeout(timeout time.Duration) Option {
	return func(r *Router) error {
		if timeout <= 0 {
			return errors.New("call timeout must be positive")
		}
		r.callTimeout = timeout
		return nil
	}
}

// WithRetryBaseDelay sets the initial backoff delay before the single retry.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(r *Router) error {
		if delay <= 0 {
			return errors.New("retry base delay must be positive")
		}
		r.retryBaseDelay = delay
		return nil
	}
}

// WithTopN sets how many candidates each tool call may return.
func WithTopN(topN int) Option {
	return func(r *Router) error {
		if topN < 1 {
			return errors.New("topN must be positive")
		}
		r.topN = topN
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRouter creates a router over the given registry.
func NewRouter(registry *retrieval.Registry, opts ...Option) (*Router, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}

	poolSize := runtime.NumCPU()
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	router := &Router{
		registry:       registry,
		pool:           pool,
		callTimeout:    defaultCallTimeout,
		retryBaseDelay: defaultRetryBaseDelay,
		topN:           defaultTopN,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(router); optErr != nil {
			router.Release()
			return nil, optErr
		}
	}
	return router, nil
}

// Release releases the worker pool.
// The router should not be used after calling Release.
func (r *Router) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

type slotResult struct {
	index  int
	result core.ToolResult
}

// Execute runs the plan against the registered tools. It always returns
// exactly one ToolResult per plan entry, in plan order, regardless of
// individual failures. When ctx expires before every slot completes, slots
// still pending are marked timeout and whatever arrived is returned.
func (r *Router) Execute(ctx context.Context, plan core.ExecutionPlan, variants []string) []core.ToolResult {
	results := make([]core.ToolResult, len(plan))
	completed := make(chan slotResult, len(plan))

	launched := 0
	for i, spec := range plan {
		tool, err := r.registry.Get(spec.Tool)
		if err != nil {
			r.logger.Warn("planned tool not registered", "tool", spec.Tool)
			results[i] = core.ToolResult{
				ToolName:  spec.Tool,
				Status:    core.ToolStatusError,
				ErrDetail: err.Error(),
			}
			continue
		}

		launched++
		go func(index int, spec core.ToolSpec, tool retrieval.Tool) {
			completed <- slotResult{
				index:  index,
				result: r.invokeSlot(ctx, spec, tool, variants),
			}
		}(i, spec, tool)
	}

	for received := 0; received < launched; received++ {
		select {
		case slot := <-completed:
			results[slot.index] = slot.result
		case <-ctx.Done():
			// Proceed with what arrived; pending slots become timeouts
			for i := range results {
				if results[i].Status == 0 {
					results[i] = core.ToolResult{
						ToolName:  plan[i].Tool,
						Status:    core.ToolStatusTimeout,
						ErrDetail: "request deadline reached",
					}
				}
			}
			return results
		}
	}
	return results
}

// invokeSlot runs every query variant against one tool and pools the results.
// Candidates from any variant make the slot usable; otherwise a timeout on
// every failed call reports timeout, any other failure reports error, and a
// clean zero-hit run reports empty.
func (r *Router) invokeSlot(ctx context.Context, spec core.ToolSpec, tool retrieval.Tool, variants []string) core.ToolResult {
	var (
		mu       sync.Mutex
		pooled   []core.RawCandidate
		failures []error
	)

	var wg sync.WaitGroup
	for _, variant := range variants {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			raw, err := r.invokeOnce(ctx, spec, tool, variant)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			pooled = append(pooled, raw...)
		}
		if err := r.pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			failures = append(failures, err)
			mu.Unlock()
		}
	}
	wg.Wait()

	result := core.ToolResult{ToolName: spec.Tool}
	switch {
	case len(pooled) > 0:
		result.Status = core.ToolStatusOK
		result.Raw = pooled
	case len(failures) > 0:
		result.Status = core.ToolStatusError
		if allTimeouts(failures) {
			result.Status = core.ToolStatusTimeout
		}
		result.ErrDetail = errors.Join(failures...).Error()
	default:
		result.Status = core.ToolStatusEmpty
	}
	return result
}

// invokeOnce performs one tool call with its own deadline and a single retry.
func (r *Router) invokeOnce(ctx context.Context, spec core.ToolSpec, tool retrieval.Tool, variant string) ([]core.RawCandidate, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	var raw []core.RawCandidate
	err := retryWithBackoff(callCtx, func() error {
		var callErr error
		raw, callErr = tool.Invoke(callCtx, variant, spec.MetadataHints, r.topN)
		return callErr
	}, callAttempts, r.retryBaseDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, core.ErrToolTimeout
		}
		r.logger.Debug("tool call failed after retry",
			"tool", spec.Tool, "error", err)
		return nil, fmt.Errorf("%w: %w", core.ErrToolUnavailable, err)
	}
	return raw, nil
}

// allTimeouts reports whether every failure was a deadline expiry.
func allTimeouts(failures []error) bool {
	for _, err := range failures {
		if !errors.Is(err, core.ErrToolTimeout) && !errors.Is(err, context.DeadlineExceeded) {
			return false
		}
	}
	return len(failures) > 0
}
