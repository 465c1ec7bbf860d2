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


// Package docstore provides the vector search retrieval tool backed by the
// embedded document repository.
package docstore

import (
	"context"
	"fmt"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/retrieval"
	"github.com/poiesic/retrievit/storage"
)

// ToolName is the stable name this tool registers under.
const ToolName = "vector_search"

const defaultMinSimilarity = 0.3

// Tool performs semantic similarity search over the document corpus. The
// query is embedded and matched against stored document vectors.
type Tool struct {
	docs          storage.DocumentRepository
	embedder      ai.Embedder
	minSimilarity float32
}

var _ retrieval.Tool = (*Tool)(nil)

// Option configures a Tool.
type Option func(*Tool) error

// WithMinSimilarity sets the similarity floor below which matches are dropped.
func WithMinSimilarity(min float32) Option {
	return func(t *Tool) error {
		if min < -1 || min > 1 {
			return fmt.Errorf("min similarity %f out of range [-1, 1]", min)
		}
		t.minSimilarity = min
		return nil
	}
}

// New creates a vector search tool over the given repository and embedder.
func New(docs storage.DocumentRepository, embedder ai.Embedder, opts ...Option) (*Tool, error) {
	if docs == nil {
		return nil, fmt.Errorf("%s: %w", ToolName, retrieval.ErrBackendRequired)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%s: %w", ToolName, retrieval.ErrEmbedderRequired)
	}
	tool := &Tool{
		docs:          docs,
		embedder:      embedder,
		minSimilarity: defaultMinSimilarity,
	}
	for _, opt := range opts {
		if err := opt(tool); err != nil {
			return nil, err
		}
	}
	return tool, nil
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return ToolName
}

// Invoke embeds the query and returns the most similar documents as raw
// candidates. A zero-hit search returns an empty slice and nil error.
func (t *Tool) Invoke(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
	vector, err := t.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := t.docs.FindSimilar(ctx, vector, t.minSimilarity, topN, filter)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	candidates := make([]core.RawCandidate, 0, len(matches))
	for _, match := range matches {
		candidates = append(candidates, core.RawCandidate{
			Kind:     core.SourceVector,
			Content:  match.Document.Text,
			Score:    match.Score,
			Metadata: match.Document.Metadata,
		})
	}
	return candidates, nil
}
