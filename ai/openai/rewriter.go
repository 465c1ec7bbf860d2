package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/retrievit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// QueryRewriter implements ai.QueryRewriter using OpenAI-compatible chat APIs.
type QueryRewriter struct {
	client      llms.Model
	maxVariants int
	logger      *slog.Logger
}

// rewriteResult is the wrapper structure for the LLM's JSON response.
type rewriteResult struct {
	Variants []string `json:"variants"`
}

// newQueryRewriter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newQueryRewriter(config *ai.Config) (*QueryRewriter, error) {
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

	return &QueryRewriter{
		client:      client,
		maxVariants: config.MaxVariants,
		logger:      slog.Default().With("component", "openai-rewriter"),
	}, nil
}

// NewQueryRewriter creates a new query rewriter using the provided configuration.
//
// Returns ai.QueryRewriter interface to enforce abstraction.
func NewQueryRewriter(config *ai.Config) (ai.QueryRewriter, error) {
	return newQueryRewriter(config)
}

// Rewrite resolves conversational references and returns standalone query
// variants. A rewrite that fails never fails the request: the original query
// comes back as the sole variant.
func (r *QueryRewriter) Rewrite(ctx context.Context, query string, history []string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return []string{query}, nil
	}
	if len(history) == 0 {
		// Nothing to resolve against; the original query is already standalone.
		return []string{query}, nil
	}

	prompt := buildRewritePrompt(query, history, r.maxVariants)
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	response, err := r.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		r.logger.Error("query rewrite call failed, using original query", "err", err)
		return []string{query}, nil
	}
	if len(response.Choices) < 1 {
		return []string{query}, nil
	}

	var result rewriteResult
	responseText := cleanModelJSON(response.Choices[0].Content)
	if err := json.Unmarshal([]byte(responseText), &result); err != nil {
		r.logger.Warn("error parsing rewrite response, using original query",
			"response", responseText, "err", err)
		return []string{query}, nil
	}

	variants := make([]string, 0, len(result.Variants))
	for _, v := range result.Variants {
		v = strings.TrimSpace(v)
		if v != "" {
			variants = append(variants, v)
		}
		if len(variants) >= r.maxVariants {
			break
		}
	}
	if len(variants) == 0 {
		r.logger.Warn("query rewrite produced no variants, using original query")
		return []string{query}, nil
	}

	r.logger.Debug("rewrote query", "original", query, "variants", len(variants))
	return variants, nil
}
