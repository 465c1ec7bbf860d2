package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Reranker implements ai.Reranker using OpenAI-compatible chat APIs.
// It scores a whole candidate batch in one call.
type Reranker struct {
	client llms.Model
	logger *slog.Logger
}

// rerankResult is the wrapper structure for the LLM's JSON response.
type rerankResult struct {
	Scores []float32 `json:"scores"`
}

// newReranker is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newReranker(config *ai.Config) (*Reranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.RerankModel),
	)
	if err != nil {
		return nil, err
	}

	return &Reranker{
		client: client,
		logger: slog.Default().With("component", "openai-reranker"),
	}, nil
}

// NewReranker creates a new reranker using the provided configuration.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewReranker(config *ai.Config) (ai.Reranker, error) {
	return newReranker(config)
}

// ScoreBatch scores every passage against the query in a single model call.
// Failures wrap core.ErrScoringUnavailable so fusion can degrade gracefully.
func (r *Reranker) ScoreBatch(ctx context.Context, query string, passages []string) ([]float32, error) {
	if len(passages) == 0 {
		return []float32{}, nil
	}

	prompt := buildRerankPrompt(query, passages)
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result rerankResult
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := r.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			r.logger.Error("rerank call failed", "attempt", attempt+1, "err", err)
			return nil, fmt.Errorf("%w: %w", core.ErrScoringUnavailable, err)
		}
		if len(response.Choices) < 1 {
			return nil, fmt.Errorf("%w: model returned no choices", core.ErrScoringUnavailable)
		}

		responseText := cleanModelJSON(response.Choices[0].Content)
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			r.logger.Warn("error parsing rerank response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}
		if len(result.Scores) != len(passages) {
			lastErr = fmt.Errorf("got %d scores for %d passages", len(result.Scores), len(passages))
			r.logger.Warn("rerank score count mismatch", "attempt", attempt+1, "err", lastErr)
			continue
		}

		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrScoringUnavailable, lastErr)
	}

	// Clamp to [0,1]; small models occasionally drift outside the schema bounds.
	for i, score := range result.Scores {
		if score < 0 {
			result.Scores[i] = 0
		} else if score > 1 {
			result.Scores[i] = 1
		}
	}

	r.logger.Debug("scored batch", "passages", len(passages))
	return result.Scores, nil
}
