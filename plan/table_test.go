package plan

import (
	"testing"

	"github.com/poiesic/retrievit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTableYAML = `
clinical_analyst:
  - tool: vector_search
    weight: 1.0
    metadata_hints:
      section: [efficacy_results, safety_profile]
    intents: [specific_fact_lookup, general_qa]
  - tool: knowledge_graph
    weight: 0.6
default:
  - tool: vector_search
    weight: 1.0
  - tool: knowledge_graph
    weight: 0.8
`

func TestParseTable(t *testing.T) {
	table, err := ParseTable([]byte(validTableYAML))
	require.NoError(t, err)

	specs := table.Specs(core.PersonaClinicalAnalyst)
	require.Len(t, specs, 2)
	assert.Equal(t, "vector_search", specs[0].Tool)
	assert.Equal(t, 1.0, specs[0].Weight)
	assert.Equal(t, []string{"efficacy_results", "safety_profile"},
		specs[0].MetadataHints["section"])
	assert.Equal(t, []core.Intent{core.IntentFactLookup, core.IntentGeneralQA},
		specs[0].Intents)

	assert.Len(t, table.Specs(core.PersonaDefault), 2)
	assert.Nil(t, table.Specs(core.PersonaHealthEconomist))
}

func TestParseTableErrors(t *testing.T) {
	t.Run("missing default", func(t *testing.T) {
		_, err := ParseTable([]byte(`
clinical_analyst:
  - tool: vector_search
    weight: 0.5
`))
		assert.ErrorIs(t, err, ErrMissingDefault)
	})

	t.Run("empty default", func(t *testing.T) {
		_, err := ParseTable([]byte("default: []\n"))
		assert.ErrorIs(t, err, ErrMissingDefault)
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := ParseTable([]byte(""))
		assert.ErrorIs(t, err, ErrEmptyTable)
	})

	t.Run("invalid weight", func(t *testing.T) {
		_, err := ParseTable([]byte(`
default:
  - tool: vector_search
    weight: 1.5
`))
		assert.Error(t, err)
	})

	t.Run("unknown intent", func(t *testing.T) {
		_, err := ParseTable([]byte(`
default:
  - tool: vector_search
    weight: 0.5
    intents: [nonsense]
`))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := ParseTable([]byte("default: [unclosed"))
		assert.Error(t, err)
	})
}

func TestStoreSwap(t *testing.T) {
	first, err := ParseTable([]byte(validTableYAML))
	require.NoError(t, err)

	store, err := NewStore(first)
	require.NoError(t, err)
	assert.Same(t, first, store.Load())

	second, err := ParseTable([]byte(`
default:
  - tool: knowledge_graph
    weight: 0.9
`))
	require.NoError(t, err)

	require.NoError(t, store.Swap(second))
	assert.Same(t, second, store.Load())

	assert.ErrorIs(t, store.Swap(nil), ErrEmptyTable)
}

func TestNewStoreNil(t *testing.T) {
	_, err := NewStore(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)
}
