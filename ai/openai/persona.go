package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// PersonaClassifier implements ai.PersonaClassifier using OpenAI-compatible chat APIs.
type PersonaClassifier struct {
	client llms.Model
	logger *slog.Logger
}

// newPersonaClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newPersonaClassifier(config *ai.Config) (*PersonaClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &PersonaClassifier{
		client: client,
		logger: slog.Default().With("component", "openai-persona-classifier"),
	}, nil
}

// NewPersonaClassifier creates a new persona classifier using the provided configuration.
//
// Returns ai.PersonaClassifier interface to enforce abstraction.
func NewPersonaClassifier(config *ai.Config) (ai.PersonaClassifier, error) {
	return newPersonaClassifier(config)
}

// ClassifyPersona maps the query to one persona from the closed set.
// Anything the model returns outside the set maps to core.PersonaDefault.
func (c *PersonaClassifier) ClassifyPersona(ctx context.Context, query string) (core.Persona, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildPersonaPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(query)},
		},
	}

	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		c.logger.Error("persona classification call failed", "err", err)
		return core.PersonaDefault, err
	}
	if len(response.Choices) < 1 {
		c.logger.Warn("persona classifier returned no choices")
		return core.PersonaDefault, nil
	}

	key := strings.Trim(strings.TrimSpace(response.Choices[0].Content), "`'\".")
	persona := core.Persona(key)
	if !core.KnownPersona(persona) {
		c.logger.Warn("persona classifier returned an invalid key", "key", key)
		return core.PersonaDefault, nil
	}

	c.logger.Debug("classified persona", "persona", persona)
	return persona, nil
}
