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


package orchestrate

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/fuse"
	"github.com/poiesic/retrievit/plan"
	"github.com/poiesic/retrievit/route"
)

// state tracks a request through the fallback state machine.
type state int

const (
	statePlanned state = iota + 1
	stateExecuted
	stateFused
	stateEscalated
	stateTerminal
)

func (s state) String() string {
	switch s {
	case statePlanned:
		return "planned"
	case stateExecuted:
		return "executed"
	case stateFused:
		return "fused"
	case stateEscalated:
		return "escalated"
	case stateTerminal:
		return "terminal"
	default:
		return "initial"
	}
}

// Coordinator runs the whole retrieval pipeline for one query: concurrent
// classification and rewriting, planning, routed execution, fusion, and a
// single escalation to the default persona when the specialized plan yields
// no usable evidence.
type Coordinator struct {
	provider ai.AIProvider
	planner  *plan.Planner
	router   *route.Router
	engine   *fuse.Engine
	monitor  Monitor
	logger   *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithMonitor installs an observer for pipeline stages.
// Default is a no-op monitor.
func WithMonitor(monitor Monitor) Option {
	return func(c *Coordinator) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		c.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a coordinator over the pipeline components.
func NewCoordinator(provider ai.AIProvider, planner *plan.Planner, router *route.Router, engine *fuse.Engine, opts ...Option) (*Coordinator, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if planner == nil {
		return nil, ErrPlannerRequired
	}
	if router == nil {
		return nil, ErrRouterRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}

	coordinator := &Coordinator{
		provider: provider,
		planner:  planner,
		router:   router,
		engine:   engine,
		monitor:  &noopMonitor{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(coordinator); err != nil {
			return nil, err
		}
	}
	return coordinator, nil
}

// Request carries the inputs for one retrieval.
type Request struct {
	// Query is the raw user question.
	Query string
	// PersonaHint skips persona classification when it names a known persona.
	PersonaHint core.Persona
	// History holds prior conversation turns for reference resolution.
	History []string
}

// Retrieve runs the pipeline and returns ranked evidence. When neither the
// specialized plan nor the escalated default plan produce candidates, it
// returns a *core.NoEvidenceError carrying the accumulated tool outcomes so
// callers can tell "nothing relevant" apart from "sources degraded".
func (c *Coordinator) Retrieve(ctx context.Context, req Request) (*core.Evidence, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	c.monitor.Start(query)

	persona, meta, variants := c.interpret(ctx, query, req)
	c.monitor.AfterClassification(persona, meta)
	c.monitor.AfterRewrite(variants)

	attempt := c.attempt(ctx, query, persona, meta, variants)
	current := stateFused

	evidence := &core.Evidence{
		Items:           attempt.candidates,
		DegradedRanking: attempt.degraded,
		ToolOutcomes:    attempt.outcomes,
	}

	if evidence.Empty() {
		if persona == core.PersonaDefault {
			// No broader plan exists, nothing left to escalate to
			current = stateTerminal
		} else {
			c.monitor.Escalating("specialized plan produced no usable evidence")
			current = stateEscalated
			c.logger.Info("escalating to default persona", "state", current.String(),
				"persona", string(persona), "query", query)

			retry := c.attempt(ctx, query, core.PersonaDefault, meta, variants)
			evidence.Items = retry.candidates
			evidence.DegradedRanking = retry.degraded
			evidence.Escalated = true
			evidence.ToolOutcomes = append(evidence.ToolOutcomes, retry.outcomes...)

			current = stateFused
			if evidence.Empty() {
				current = stateTerminal
			}
		}
	}

	if current == stateTerminal {
		err := &core.NoEvidenceError{Outcomes: evidence.ToolOutcomes}
		c.logger.Info("retrieval terminal, no evidence found",
			"query", query, "escalated", evidence.Escalated)
		c.monitor.Finish(nil, err)
		return nil, err
	}

	c.monitor.Finish(evidence, nil)
	return evidence, nil
}

// interpret runs persona classification, intent classification and query
// rewriting concurrently. The three calls are independent; each absorbs its
// own failure into a safe fallback.
func (c *Coordinator) interpret(ctx context.Context, query string, req Request) (core.Persona, *core.QueryMetadata, []string) {
	persona := core.PersonaDefault
	meta := &core.QueryMetadata{Intent: core.IntentUnknown}
	variants := []string{query}

	var wg sync.WaitGroup

	if core.KnownPersona(req.PersonaHint) {
		persona = req.PersonaHint
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			classified, err := c.provider.PersonaClassifier().ClassifyPersona(ctx, query)
			if err != nil {
				c.logger.Warn("persona classification failed, using default", "error", err)
				return
			}
			persona = classified
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		classified, err := c.provider.QueryClassifier().ClassifyQuery(ctx, query)
		if err != nil {
			c.logger.Warn("query classification failed, using unknown intent", "error", err)
			return
		}
		meta = classified
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		rewritten, err := c.provider.QueryRewriter().Rewrite(ctx, query, req.History)
		if err != nil || len(rewritten) == 0 {
			c.logger.Warn("query rewrite failed, using original query", "error", err)
			return
		}
		variants = rewritten
	}()

	wg.Wait()
	return persona, meta, variants
}

type attemptResult struct {
	candidates []*core.Candidate
	degraded   bool
	outcomes   []core.ToolOutcome
}

// attempt runs plan, execute and fuse once for the given persona.
func (c *Coordinator) attempt(ctx context.Context, query string, persona core.Persona, meta *core.QueryMetadata, variants []string) attemptResult {
	current := statePlanned
	executionPlan := c.planner.Plan(persona, meta)
	c.monitor.AfterPlan(persona, executionPlan)
	c.logger.Debug("plan built", "state", current.String(),
		"persona", string(persona), "tools", len(executionPlan))

	results := c.router.Execute(ctx, executionPlan, variants)
	current = stateExecuted
	outcomes := make([]core.ToolOutcome, len(results))
	for i, result := range results {
		outcomes[i] = core.ToolOutcome{ToolName: result.ToolName, Status: result.Status}
		c.monitor.AfterToolResult(result)
	}
	c.logger.Debug("execution complete", "state", current.String(),
		"results", len(results))

	candidates, degraded := c.engine.Fuse(ctx, query, results)
	current = stateFused
	c.monitor.AfterFusion(candidates, degraded)
	c.logger.Debug("fusion complete", "state", current.String(),
		"candidates", len(candidates), "degraded", degraded)

	return attemptResult{candidates: candidates, degraded: degraded, outcomes: outcomes}
}
