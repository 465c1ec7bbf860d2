package retrievit

import (
	"context"
	"testing"

	"github.com/poiesic/retrievit/ai/mock"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTableYAML = `
clinical_analyst:
  - tool: vector_search
    weight: 1.0
  - tool: knowledge_graph
    weight: 0.6
default:
  - tool: vector_search
    weight: 1.0
  - tool: knowledge_graph
    weight: 0.8
`

func openTestSystem(t *testing.T) *Orchestrator {
	t.Helper()
	table, err := plan.ParseTable([]byte(testTableYAML))
	require.NoError(t, err)

	system, err := Open("", table,
		WithInMemory(),
		WithProvider(mock.NewMockProvider()),
		WithEvidenceSize(5),
	)
	require.NoError(t, err)
	t.Cleanup(func() { system.Close() })
	return system
}

func seedCorpus(t *testing.T, system *Orchestrator) {
	t.Helper()
	docs := []*SeedDocument{
		{
			Text:     "Abaloparatide significantly reduced vertebral fracture risk in the trial.",
			Metadata: map[string]string{"section": "efficacy_results"},
			Entities: []SeedEntity{
				{Name: "abaloparatide", Type: "drug"},
				{Name: "osteoporosis", Type: "condition"},
			},
			Triples: []SeedTriple{
				{
					Subject: "abaloparatide", SubjectType: "drug",
					Relation: "TREATS",
					Object:   "osteoporosis", ObjectType: "condition",
				},
			},
		},
		{
			Text:     "The most common side effects were dizziness and nausea.",
			Metadata: map[string]string{"section": "safety_profile"},
		},
	}
	require.NoError(t, system.Ingest(context.Background(), docs...))
}

func TestOpenRegistersEmbeddedTools(t *testing.T) {
	system := openTestSystem(t)
	assert.Equal(t, []string{"knowledge_graph", "vector_search"}, system.ToolNames())
}

func TestRetrieveEndToEnd(t *testing.T) {
	system := openTestSystem(t)
	seedCorpus(t, system)

	evidence, err := system.Retrieve(context.Background(),
		"Did abaloparatide reduce vertebral fracture risk?")
	require.NoError(t, err)
	require.False(t, evidence.Empty())

	assert.Contains(t, evidence.Items[0].Text, "fracture risk")
	assert.False(t, evidence.Escalated)
	assert.Len(t, evidence.ToolOutcomes, 2)
}

func TestRetrieveGraphEvidence(t *testing.T) {
	system := openTestSystem(t)
	seedCorpus(t, system)

	evidence, err := system.Retrieve(context.Background(),
		"abaloparatide osteoporosis relationship",
		WithPersonaHint(core.PersonaClinicalAnalyst))
	require.NoError(t, err)
	require.False(t, evidence.Empty())

	var fromGraph bool
	for _, item := range evidence.Items {
		for _, tool := range item.SourceTools {
			if tool == "knowledge_graph" {
				fromGraph = true
			}
		}
	}
	assert.True(t, fromGraph, "graph triple should surface as evidence")
}

func TestRetrieveNoEvidenceOnEmptyStores(t *testing.T) {
	system := openTestSystem(t)

	_, err := system.Retrieve(context.Background(), "anything at all")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNoEvidence)

	var noEvidence *core.NoEvidenceError
	require.ErrorAs(t, err, &noEvidence)
	for _, outcome := range noEvidence.Outcomes {
		assert.Equal(t, core.ToolStatusEmpty, outcome.Status)
	}
}

func TestReloadTable(t *testing.T) {
	system := openTestSystem(t)
	seedCorpus(t, system)

	narrowed, err := plan.ParseTable([]byte(`
default:
  - tool: knowledge_graph
    weight: 1.0
`))
	require.NoError(t, err)
	require.NoError(t, system.ReloadTable(narrowed))

	evidence, err := system.Retrieve(context.Background(), "abaloparatide")
	require.NoError(t, err)
	require.Len(t, evidence.ToolOutcomes, 1)
	assert.Equal(t, "knowledge_graph", evidence.ToolOutcomes[0].ToolName)
}

func TestIngestValidation(t *testing.T) {
	system := openTestSystem(t)
	err := system.Ingest(context.Background(), &SeedDocument{Text: ""})
	assert.ErrorIs(t, err, core.ErrEmptyContent)
}
