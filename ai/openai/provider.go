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


package openai

import (
	"log/slog"

	"github.com/poiesic/retrievit/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It manages the classifier, rewriter, reranker and embedder instances.
type Provider struct {
	config    *ai.Config
	persona   *PersonaClassifier
	query     *QueryClassifier
	rewriter  *QueryRewriter
	reranker  *Reranker
	embedder  *Embedder
	logger    *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	persona, err := newPersonaClassifier(config)
	if err != nil {
		return nil, err
	}

	query, err := newQueryClassifier(config)
	if err != nil {
		return nil, err
	}

	rewriter, err := newQueryRewriter(config)
	if err != nil {
		return nil, err
	}

	reranker, err := newReranker(config)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:   config,
		persona:  persona,
		query:    query,
		rewriter: rewriter,
		reranker: reranker,
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-provider"),
	}, nil
}

// PersonaClassifier returns the persona classification service.
func (p *Provider) PersonaClassifier() ai.PersonaClassifier {
	return p.persona
}

// QueryClassifier returns the query intent classification service.
func (p *Provider) QueryClassifier() ai.QueryClassifier {
	return p.query
}

// QueryRewriter returns the query rewriting service.
func (p *Provider) QueryRewriter() ai.QueryRewriter {
	return p.rewriter
}

// Reranker returns the candidate scoring service.
func (p *Provider) Reranker() ai.Reranker {
	return p.reranker
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
