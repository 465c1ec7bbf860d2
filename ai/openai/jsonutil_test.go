package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanModelJSON(t *testing.T) {
	t.Run("passes clean JSON through", func(t *testing.T) {
		in := `{"intent":"general_qa","keywords":["drug"],"graph_suitable":false}`
		assert.Equal(t, in, cleanModelJSON(in))
	})

	t.Run("strips code fences", func(t *testing.T) {
		in := "```json\n{\"scores\":[0.5,0.9]}\n```"
		out := cleanModelJSON(in)
		var parsed map[string][]float64
		require.NoError(t, json.Unmarshal([]byte(out), &parsed))
		assert.Equal(t, []float64{0.5, 0.9}, parsed["scores"])
	})

	t.Run("clamps to outer object", func(t *testing.T) {
		in := "Sure, here is the JSON:\n{\"variants\":[\"q\"]}\nHope that helps!"
		out := cleanModelJSON(in)
		var parsed map[string][]string
		require.NoError(t, json.Unmarshal([]byte(out), &parsed))
		assert.Equal(t, []string{"q"}, parsed["variants"])
	})

	t.Run("removes trailing commas", func(t *testing.T) {
		in := `{"keywords": ["a", "b",], "themes": [],}`
		out := cleanModelJSON(in)
		var parsed map[string][]string
		require.NoError(t, json.Unmarshal([]byte(out), &parsed))
		assert.Equal(t, []string{"a", "b"}, parsed["keywords"])
	})

	t.Run("keeps commas inside strings", func(t *testing.T) {
		in := `{"text": "a, b, c"}`
		out := cleanModelJSON(in)
		var parsed map[string]string
		require.NoError(t, json.Unmarshal([]byte(out), &parsed))
		assert.Equal(t, "a, b, c", parsed["text"])
	})

	t.Run("trailing comma before newline and brace", func(t *testing.T) {
		in := "{\"scores\": [0.1, 0.2,\n]}"
		out := cleanModelJSON(in)
		var parsed map[string][]float64
		require.NoError(t, json.Unmarshal([]byte(out), &parsed))
		assert.Len(t, parsed["scores"], 2)
	})
}
