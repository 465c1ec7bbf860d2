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


package fuse

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
)

const defaultEvidenceSize = 10

// Engine normalizes heterogeneous tool result batches into a single ranked,
// deduplicated candidate list. Scores are min-max normalized within each
// source batch, duplicates collapse by content hash keeping the maximum
// score, and the surviving set is reranked in one batch call.
type Engine struct {
	reranker ai.Reranker
	k        int
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithEvidenceSize sets the maximum length K of the fused candidate list.
func WithEvidenceSize(k int) Option {
	return func(e *Engine) error {
		if k < 1 {
			return errors.New("evidence size must be positive")
		}
		e.k = k
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a fusion engine using the given reranker.
func NewEngine(reranker ai.Reranker, opts ...Option) (*Engine, error) {
	if reranker == nil {
		return nil, ErrRerankerRequired
	}
	engine := &Engine{
		reranker: reranker,
		k:        defaultEvidenceSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(engine); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// Fuse merges the tool results for one request into the final candidate list.
// The returned degraded flag is set when the reranker was unavailable and
// ordering fell back to normalized source scores. Fusion is deterministic:
// identical inputs yield identical ordering.
func (e *Engine) Fuse(ctx context.Context, query string, results []core.ToolResult) ([]*core.Candidate, bool) {
	candidates := e.collect(results)
	if len(candidates) == 0 {
		return nil, false
	}

	degraded := e.rerank(ctx, query, candidates)
	e.order(candidates, degraded)

	if len(candidates) > e.k {
		candidates = candidates[:e.k]
	}
	return candidates, degraded
}

// collect normalizes every usable batch and deduplicates by content hash.
// Duplicates keep the maximum normalized score, record every contributing
// tool and the earliest plan index.
func (e *Engine) collect(results []core.ToolResult) []*core.Candidate {
	var ordered []*core.Candidate
	byID := make(map[core.ID]*core.Candidate)

	for planIndex, result := range results {
		if !result.Status.Usable() {
			continue
		}
		scores := normalizeBatch(result.Raw)
		for i, raw := range result.Raw {
			id := core.IDFromContent(raw.Content)
			if existing, ok := byID[id]; ok {
				if scores[i] > existing.SourceScore {
					existing.SourceScore = scores[i]
				}
				if !containsTool(existing.SourceTools, result.ToolName) {
					existing.SourceTools = append(existing.SourceTools, result.ToolName)
				}
				continue
			}
			candidate := &core.Candidate{
				Id:          id,
				Text:        raw.Content,
				SourceTools: []string{result.ToolName},
				SourceScore: scores[i],
				PlanIndex:   planIndex,
				Metadata:    candidateMetadata(raw),
			}
			byID[id] = candidate
			ordered = append(ordered, candidate)
		}
	}
	return ordered
}

// rerank scores the deduplicated set in one batch call. A failed call leaves
// rerank scores unset and reports a degraded ranking.
func (e *Engine) rerank(ctx context.Context, query string, candidates []*core.Candidate) bool {
	texts := make([]string, len(candidates))
	for i, candidate := range candidates {
		texts[i] = candidate.Text
	}

	scores, err := e.reranker.ScoreBatch(ctx, query, texts)
	if err != nil || len(scores) != len(candidates) {
		e.logger.Warn("rerank unavailable, falling back to source scores", "error", err)
		return true
	}
	for i, candidate := range candidates {
		candidate.RerankScore = scores[i]
	}
	return false
}

// order sorts descending by the effective ranking key with deterministic
// tie-breaks: source score, then earliest plan index, then content hash.
func (e *Engine) order(candidates []*core.Candidate, degraded bool) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !degraded && a.RerankScore != b.RerankScore {
			return a.RerankScore > b.RerankScore
		}
		if a.SourceScore != b.SourceScore {
			return a.SourceScore > b.SourceScore
		}
		if a.PlanIndex != b.PlanIndex {
			return a.PlanIndex < b.PlanIndex
		}
		return a.Id < b.Id
	})
}

// normalizeBatch min-max normalizes native scores within one source batch.
// A constant batch (all scores equal, including a single hit) maps to 1.0 so
// a source's only result is never zeroed out by its own normalization.
func normalizeBatch(raw []core.RawCandidate) []float32 {
	scores := make([]float32, len(raw))
	if len(raw) == 0 {
		return scores
	}

	min, max := raw[0].Score, raw[0].Score
	for _, candidate := range raw[1:] {
		if candidate.Score < min {
			min = candidate.Score
		}
		if candidate.Score > max {
			max = candidate.Score
		}
	}

	if max == min {
		for i := range scores {
			scores[i] = 1.0
		}
		return scores
	}
	for i, candidate := range raw {
		scores[i] = (candidate.Score - min) / (max - min)
	}
	return scores
}

// candidateMetadata merges raw metadata and structured graph fields into the
// candidate's metadata without mutating either source map.
func candidateMetadata(raw core.RawCandidate) map[string]string {
	if len(raw.Metadata) == 0 && len(raw.Fields) == 0 {
		return nil
	}
	merged := make(map[string]string, len(raw.Metadata)+len(raw.Fields))
	for key, value := range raw.Metadata {
		merged[key] = value
	}
	for key, value := range raw.Fields {
		merged[key] = value
	}
	return merged
}

// containsTool reports whether name is already recorded.
func containsTool(tools []string, name string) bool {
	for _, tool := range tools {
		if tool == name {
			return true
		}
	}
	return false
}
