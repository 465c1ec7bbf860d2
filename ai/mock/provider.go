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


package mock

import "github.com/poiesic/retrievit/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock service instances.
type MockProvider struct {
	persona  *MockPersonaClassifier
	query    *MockQueryClassifier
	rewriter *MockQueryRewriter
	reranker *MockReranker
	embedder *MockEmbedder
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use the GetMockX methods to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		persona:  NewMockPersonaClassifier(),
		query:    NewMockQueryClassifier(),
		rewriter: NewMockQueryRewriter(),
		reranker: NewMockReranker(),
		embedder: NewMockEmbedder(),
	}
}

// PersonaClassifier returns the mock persona classifier.
func (p *MockProvider) PersonaClassifier() ai.PersonaClassifier {
	return p.persona
}

// QueryClassifier returns the mock query classifier.
func (p *MockProvider) QueryClassifier() ai.QueryClassifier {
	return p.query
}

// QueryRewriter returns the mock query rewriter.
func (p *MockProvider) QueryRewriter() ai.QueryRewriter {
	return p.rewriter
}

// Reranker returns the mock reranker.
func (p *MockProvider) Reranker() ai.Reranker {
	return p.reranker
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockPersonaClassifier returns the underlying mock for test assertions.
func (p *MockProvider) GetMockPersonaClassifier() *MockPersonaClassifier {
	return p.persona
}

// GetMockQueryClassifier returns the underlying mock for test assertions.
func (p *MockProvider) GetMockQueryClassifier() *MockQueryClassifier {
	return p.query
}

// GetMockQueryRewriter returns the underlying mock for test assertions.
func (p *MockProvider) GetMockQueryRewriter() *MockQueryRewriter {
	return p.rewriter
}

// GetMockReranker returns the underlying mock for test assertions.
func (p *MockProvider) GetMockReranker() *MockReranker {
	return p.reranker
}

// GetMockEmbedder returns the underlying mock for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}
