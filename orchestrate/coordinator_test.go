package orchestrate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/retrievit/ai/mock"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/fuse"
	"github.com/poiesic/retrievit/plan"
	"github.com/poiesic/retrievit/retrieval"
	"github.com/poiesic/retrievit/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTableYAML = `
clinical_analyst:
  - tool: specialized_tool
    weight: 1.0
default:
  - tool: broad_tool
    weight: 1.0
  - tool: specialized_tool
    weight: 0.5
`

// scriptedTool is a configurable retrieval.Tool for coordinator tests.
type scriptedTool struct {
	name string

	mu      sync.Mutex
	queries []string
	invoke  func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error)
}

func (s *scriptedTool) Name() string { return s.name }

func (s *scriptedTool) Invoke(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if s.invoke != nil {
		return s.invoke(ctx, query, filter, topN)
	}
	return []core.RawCandidate{{Kind: core.SourceVector, Content: s.name + " hit", Score: 0.5}}, nil
}

type fixture struct {
	coordinator *Coordinator
	provider    *mock.MockProvider
	specialized *scriptedTool
	broad       *scriptedTool
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	table, err := plan.ParseTable([]byte(testTableYAML))
	require.NoError(t, err)
	store, err := plan.NewStore(table)
	require.NoError(t, err)
	planner, err := plan.NewPlanner(store)
	require.NoError(t, err)

	specialized := &scriptedTool{name: "specialized_tool"}
	broad := &scriptedTool{name: "broad_tool"}
	registry := retrieval.NewRegistry()
	require.NoError(t, registry.Register(specialized))
	require.NoError(t, registry.Register(broad))

	router, err := route.NewRouter(registry,
		route.WithRetryBaseDelay(time.Millisecond),
		route.WithCallTimeout(time.Second))
	require.NoError(t, err)
	t.Cleanup(router.Release)

	provider := mock.NewMockProvider().(*mock.MockProvider)
	engine, err := fuse.NewEngine(provider.Reranker())
	require.NoError(t, err)

	coordinator, err := NewCoordinator(provider, planner, router, engine, opts...)
	require.NoError(t, err)

	return &fixture{
		coordinator: coordinator,
		provider:    provider,
		specialized: specialized,
		broad:       broad,
	}
}

func failingInvoke(err error) func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
	return func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
		return nil, err
	}
}

func TestRetrieveHappyPath(t *testing.T) {
	f := newFixture(t)

	evidence, err := f.coordinator.Retrieve(context.Background(), Request{
		Query: "What were the trial efficacy outcomes?",
	})
	require.NoError(t, err)
	require.NotNil(t, evidence)

	assert.False(t, evidence.Empty())
	assert.False(t, evidence.Escalated)
	require.Len(t, evidence.ToolOutcomes, 1, "clinical persona plans one tool")
	assert.Equal(t, "specialized_tool", evidence.ToolOutcomes[0].ToolName)
	assert.Equal(t, core.ToolStatusOK, evidence.ToolOutcomes[0].Status)
}

func TestRetrievePersonaHintSkipsClassification(t *testing.T) {
	f := newFixture(t)

	_, err := f.coordinator.Retrieve(context.Background(), Request{
		Query:       "plain question",
		PersonaHint: core.PersonaClinicalAnalyst,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.provider.GetMockPersonaClassifier().CallCount())

	// An unknown hint still goes through classification
	f2 := newFixture(t)
	_, err = f2.coordinator.Retrieve(context.Background(), Request{
		Query:       "plain question",
		PersonaHint: core.Persona("bogus"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f2.provider.GetMockPersonaClassifier().CallCount())
}

func TestRetrieveUsesRewrittenVariants(t *testing.T) {
	f := newFixture(t)
	f.provider.GetMockQueryRewriter().RewriteFunc = func(ctx context.Context, query string, history []string) ([]string, error) {
		return []string{"variant one", "variant two"}, nil
	}

	_, err := f.coordinator.Retrieve(context.Background(), Request{
		Query:       "What about the trial?",
		PersonaHint: core.PersonaClinicalAnalyst,
		History:     []string{"Tell me about the ACTIVE trial."},
	})
	require.NoError(t, err)

	f.specialized.mu.Lock()
	defer f.specialized.mu.Unlock()
	assert.ElementsMatch(t, []string{"variant one", "variant two"}, f.specialized.queries)
}

func TestRetrieveClassifierFailuresFallBack(t *testing.T) {
	f := newFixture(t)
	f.provider.GetMockPersonaClassifier().ClassifyPersonaFunc = func(ctx context.Context, query string) (core.Persona, error) {
		return "", errors.New("model down")
	}
	f.provider.GetMockQueryClassifier().ClassifyQueryFunc = func(ctx context.Context, query string) (*core.QueryMetadata, error) {
		return nil, errors.New("model down")
	}
	f.provider.GetMockQueryRewriter().RewriteFunc = func(ctx context.Context, query string, history []string) ([]string, error) {
		return nil, errors.New("model down")
	}

	evidence, err := f.coordinator.Retrieve(context.Background(), Request{Query: "anything"})
	require.NoError(t, err)
	assert.False(t, evidence.Empty(), "boundary failures degrade to defaults, not errors")
	// Default persona plan carries both tools
	assert.Len(t, evidence.ToolOutcomes, 2)
}

func TestRetrieveEscalatesOnEmptySpecializedPlan(t *testing.T) {
	f := newFixture(t)
	f.specialized.invoke = failingInvoke(errors.New("index offline"))

	evidence, err := f.coordinator.Retrieve(context.Background(), Request{
		Query:       "efficacy data",
		PersonaHint: core.PersonaClinicalAnalyst,
	})
	require.NoError(t, err)

	assert.True(t, evidence.Escalated)
	assert.False(t, evidence.Empty())
	// Outcomes accumulate across both attempts: 1 specialized + 2 default
	require.Len(t, evidence.ToolOutcomes, 3)
	assert.Equal(t, core.ToolStatusError, evidence.ToolOutcomes[0].Status)
}

func TestRetrieveTerminalNoEvidence(t *testing.T) {
	f := newFixture(t)
	f.specialized.invoke = failingInvoke(errors.New("offline"))
	f.broad.invoke = func(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
		return nil, nil
	}

	evidence, err := f.coordinator.Retrieve(context.Background(), Request{
		Query:       "efficacy data",
		PersonaHint: core.PersonaClinicalAnalyst,
	})
	assert.Nil(t, evidence)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNoEvidence)

	var noEvidence *core.NoEvidenceError
	require.ErrorAs(t, err, &noEvidence)
	assert.Len(t, noEvidence.Outcomes, 3, "terminal error carries outcomes from both attempts")
}

func TestRetrieveSingleEscalationBound(t *testing.T) {
	f := newFixture(t)
	failure := failingInvoke(errors.New("offline"))
	f.specialized.invoke = failure
	f.broad.invoke = failure

	_, err := f.coordinator.Retrieve(context.Background(), Request{
		Query:       "efficacy data",
		PersonaHint: core.PersonaClinicalAnalyst,
	})
	require.ErrorIs(t, err, core.ErrNoEvidence)

	// 1 specialized slot + 2 default slots, each with 1 call + 1 retry
	f.specialized.mu.Lock()
	specializedCalls := len(f.specialized.queries)
	f.specialized.mu.Unlock()
	f.broad.mu.Lock()
	broadCalls := len(f.broad.queries)
	f.broad.mu.Unlock()
	assert.Equal(t, 4, specializedCalls, "specialized tool appears in both plans")
	assert.Equal(t, 2, broadCalls)
}

func TestRetrieveDefaultPersonaGoesStraightToTerminal(t *testing.T) {
	f := newFixture(t)
	failure := failingInvoke(errors.New("offline"))
	f.specialized.invoke = failure
	f.broad.invoke = failure

	_, err := f.coordinator.Retrieve(context.Background(), Request{
		Query:       "anything at all",
		PersonaHint: core.PersonaDefault,
	})
	require.ErrorIs(t, err, core.ErrNoEvidence)

	var noEvidence *core.NoEvidenceError
	require.ErrorAs(t, err, &noEvidence)
	assert.Len(t, noEvidence.Outcomes, 2, "no escalation attempt from the default persona")
}

func TestRetrieveDegradedRankingFlag(t *testing.T) {
	f := newFixture(t)
	f.provider.GetMockReranker().ScoreBatchFunc = func(ctx context.Context, query string, passages []string) ([]float32, error) {
		return nil, core.ErrScoringUnavailable
	}

	evidence, err := f.coordinator.Retrieve(context.Background(), Request{
		Query:       "trial efficacy",
		PersonaHint: core.PersonaClinicalAnalyst,
	})
	require.NoError(t, err)
	assert.True(t, evidence.DegradedRanking)
	assert.False(t, evidence.Empty())
}

func TestRetrieveEmptyQuery(t *testing.T) {
	f := newFixture(t)
	_, err := f.coordinator.Retrieve(context.Background(), Request{Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

// recordingMonitor captures hook invocations for assertions.
type recordingMonitor struct {
	mu     sync.Mutex
	stages []string
}

func (r *recordingMonitor) record(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *recordingMonitor) Start(string)                                        { r.record("start") }
func (r *recordingMonitor) AfterClassification(core.Persona, *core.QueryMetadata) { r.record("classify") }
func (r *recordingMonitor) AfterRewrite([]string)                               { r.record("rewrite") }
func (r *recordingMonitor) AfterPlan(core.Persona, core.ExecutionPlan)          { r.record("plan") }
func (r *recordingMonitor) AfterToolResult(core.ToolResult)                     { r.record("tool") }
func (r *recordingMonitor) AfterFusion([]*core.Candidate, bool)                 { r.record("fuse") }
func (r *recordingMonitor) Escalating(string)                                   { r.record("escalate") }
func (r *recordingMonitor) Finish(*core.Evidence, error)                        { r.record("finish") }

func TestRetrieveMonitorHooks(t *testing.T) {
	monitor := &recordingMonitor{}
	f := newFixture(t, WithMonitor(monitor))

	_, err := f.coordinator.Retrieve(context.Background(), Request{
		Query:       "trial efficacy",
		PersonaHint: core.PersonaClinicalAnalyst,
	})
	require.NoError(t, err)

	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	assert.Equal(t, []string{"start", "classify", "rewrite", "plan", "tool", "fuse", "finish"},
		monitor.stages)
}

func TestNewCoordinatorValidation(t *testing.T) {
	f := newFixture(t)

	_, err := NewCoordinator(nil, f.coordinator.planner, f.coordinator.router, f.coordinator.engine)
	assert.ErrorIs(t, err, ErrProviderRequired)
	_, err = NewCoordinator(f.provider, nil, f.coordinator.router, f.coordinator.engine)
	assert.ErrorIs(t, err, ErrPlannerRequired)
	_, err = NewCoordinator(f.provider, f.coordinator.planner, nil, f.coordinator.engine)
	assert.ErrorIs(t, err, ErrRouterRequired)
	_, err = NewCoordinator(f.provider, f.coordinator.planner, f.coordinator.router, nil)
	assert.ErrorIs(t, err, ErrEngineRequired)
}
