package openai

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// QueryClassifier implements ai.QueryClassifier using OpenAI-compatible chat APIs.
type QueryClassifier struct {
	client llms.Model
	logger *slog.Logger
}

// queryAnalysis is the wrapper structure for the LLM's JSON response.
type queryAnalysis struct {
	Intent        string   `json:"intent"`
	Keywords      []string `json:"keywords"`
	GraphSuitable bool     `json:"graph_suitable"`
	Themes        []string `json:"themes"`
}

// newQueryClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newQueryClassifier(config *ai.Config) (*QueryClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &QueryClassifier{
		client: client,
		logger: slog.Default().With("component", "openai-query-classifier"),
	}, nil
}

// NewQueryClassifier creates a new query classifier using the provided configuration.
//
// Returns ai.QueryClassifier interface to enforce abstraction.
func NewQueryClassifier(config *ai.Config) (ai.QueryClassifier, error) {
	return newQueryClassifier(config)
}

// ClassifyQuery interprets the query into intent, keywords, graph suitability
// and themes using an LLM in JSON mode.
func (c *QueryClassifier) ClassifyQuery(ctx context.Context, query string) (*core.QueryMetadata, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildQueryClassificationPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(query)},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result queryAnalysis
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			c.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}
		if len(response.Choices) < 1 {
			c.logger.Debug("no choices returned from model")
			return &core.QueryMetadata{Intent: core.IntentUnknown}, nil
		}

		responseText := cleanModelJSON(response.Choices[0].Content)
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			c.logger.Warn("error parsing classifier response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		c.logger.Error("failed to parse classifier response after retries", "err", lastErr)
		return nil, lastErr
	}

	intent := core.Intent(result.Intent)
	if !core.KnownIntent(intent) {
		c.logger.Warn("classifier returned an unknown intent", "intent", result.Intent)
		intent = core.IntentUnknown
	}

	meta := &core.QueryMetadata{
		Intent:        intent,
		Keywords:      result.Keywords,
		GraphSuitable: result.GraphSuitable,
		Themes:        result.Themes,
	}
	c.logger.Debug("classified query",
		"intent", meta.Intent,
		"keywords", len(meta.Keywords),
		"graphSuitable", meta.GraphSuitable)
	return meta, nil
}
