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


// Package langchain adapts a langchaingo vector store to the retrieval Tool
// contract so external stores (pgvector, weaviate, chroma and friends) can
// participate in execution plans alongside the embedded tools.
package langchain

import (
	"context"
	"fmt"

	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/retrieval"
	"github.com/tmc/langchaingo/vectorstores"
)

// Tool wraps a langchaingo vector store as a retrieval tool.
type Tool struct {
	name           string
	store          vectorstores.VectorStore
	scoreThreshold float32
}

var _ retrieval.Tool = (*Tool)(nil)

// Option configures a Tool.
type Option func(*Tool) error

// WithScoreThreshold sets the similarity floor passed to the store.
func WithScoreThreshold(threshold float32) Option {
	return func(t *Tool) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("score threshold %f out of range [0, 1]", threshold)
		}
		t.scoreThreshold = threshold
		return nil
	}
}

// New creates a tool named name over the given vector store.
func New(name string, store vectorstores.VectorStore, opts ...Option) (*Tool, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name required")
	}
	if store == nil {
		return nil, fmt.Errorf("%s: vector store required", name)
	}
	tool := &Tool{name: name, store: store}
	for _, opt := range opts {
		if err := opt(tool); err != nil {
			return nil, err
		}
	}
	return tool, nil
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return t.name
}

// Invoke runs a similarity search against the wrapped store. The metadata
// filter is applied locally after the search since filter support varies
// between store backends.
func (t *Tool) Invoke(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
	var searchOpts []vectorstores.Option
	if t.scoreThreshold > 0 {
		searchOpts = append(searchOpts, vectorstores.WithScoreThreshold(t.scoreThreshold))
	}

	docs, err := t.store.SimilaritySearch(ctx, query, topN, searchOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s similarity search: %w", t.name, err)
	}

	candidates := make([]core.RawCandidate, 0, len(docs))
	for _, doc := range docs {
		metadata := flattenMetadata(doc.Metadata)
		if !retrieval.MatchesFilter(metadata, filter) {
			continue
		}
		candidates = append(candidates, core.RawCandidate{
			Kind:     core.SourceVector,
			Content:  doc.PageContent,
			Score:    doc.Score,
			Metadata: metadata,
		})
	}
	return candidates, nil
}

// flattenMetadata renders langchaingo document metadata as strings.
func flattenMetadata(metadata map[string]any) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	flat := make(map[string]string, len(metadata))
	for key, value := range metadata {
		switch v := value.(type) {
		case string:
			flat[key] = v
		default:
			flat[key] = fmt.Sprintf("%v", v)
		}
	}
	return flat
}
