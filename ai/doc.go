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


// Package ai provides abstractions for the model calls the retrieval pipeline
// depends on.
//
// The pipeline treats every model as a black box behind a narrow interface:
//
//   - PersonaClassifier: query text -> persona tag
//   - QueryClassifier: query text -> structured query metadata
//   - QueryRewriter: conversational query -> standalone query variants
//   - Reranker: (query, passages) -> aligned relevance scores
//   - Embedder: text -> embedding vectors
//   - AIProvider: aggregates the services for initialization and lifecycle
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors in ai/openai return interface types to enforce
// abstraction; mock constructors return concrete types so tests can inject
// behavior and assert call counts.
//
// # Usage Example
//
//	cfg := ai.DefaultConfig()
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	persona, err := provider.PersonaClassifier().ClassifyPersona(ctx, "What does Abaloparatide cost?")
package ai
