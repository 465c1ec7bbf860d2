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


// Package graphstore provides the knowledge graph retrieval tool. Query
// keywords are matched against entity names and the triples around matched
// entities are returned as factual statements.
package graphstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/retrieval"
	"github.com/poiesic/retrievit/storage"
)

// ToolName is the stable name this tool registers under.
const ToolName = "knowledge_graph"

// Tool performs entity-anchored retrieval over the knowledge graph.
type Tool struct {
	graph storage.GraphRepository
}

var _ retrieval.Tool = (*Tool)(nil)

// New creates a knowledge graph tool over the given repository.
func New(graph storage.GraphRepository) (*Tool, error) {
	if graph == nil {
		return nil, fmt.Errorf("%s: %w", ToolName, retrieval.ErrBackendRequired)
	}
	return &Tool{graph: graph}, nil
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return ToolName
}

// Invoke tokenizes the query into keywords, matches them against entity
// names, and returns the triples around every matched entity. Every candidate
// from one invocation shares a score equal to the fraction of query keywords
// that matched at least one entity. The filter is applied against the triple
// fields (subject, relation, object).
func (t *Tool) Invoke(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error) {
	keywords := tokenizeAndFilter(query)
	if len(keywords) == 0 {
		return nil, nil
	}

	matched := 0
	entityIDs := make([]core.ID, 0, len(keywords))
	seenEntities := make(map[core.ID]bool)
	for _, keyword := range keywords {
		entities, err := t.graph.FindEntitiesByName(ctx, keyword)
		if err != nil {
			return nil, fmt.Errorf("entity lookup %q: %w", keyword, err)
		}
		if len(entities) > 0 {
			matched++
		}
		for _, entity := range entities {
			if !seenEntities[entity.Id] {
				seenEntities[entity.Id] = true
				entityIDs = append(entityIDs, entity.Id)
			}
		}
	}
	if matched == 0 {
		return nil, nil
	}
	score := float32(matched) / float32(len(keywords))

	var candidates []core.RawCandidate
	seenTriples := make(map[string]bool)
	for _, entityID := range entityIDs {
		triples, err := t.graph.GetTriples(ctx, entityID)
		if err != nil {
			return nil, fmt.Errorf("triple lookup: %w", err)
		}
		for _, triple := range triples {
			dedupKey := strconv.FormatUint(uint64(triple.Subject), 10) + "|" +
				triple.Relation + "|" +
				strconv.FormatUint(uint64(triple.Object), 10)
			if seenTriples[dedupKey] {
				continue
			}
			seenTriples[dedupKey] = true

			candidate, err := t.renderTriple(ctx, triple, score)
			if err != nil {
				return nil, err
			}
			if !retrieval.MatchesFilter(candidate.Fields, filter) {
				continue
			}
			candidates = append(candidates, candidate)
			if topN > 0 && len(candidates) >= topN {
				return candidates, nil
			}
		}
	}
	return candidates, nil
}

// renderTriple resolves endpoint names and builds the candidate statement.
func (t *Tool) renderTriple(ctx context.Context, triple *core.Triple, score float32) (core.RawCandidate, error) {
	subject, err := t.graph.GetEntity(ctx, triple.Subject)
	if err != nil {
		return core.RawCandidate{}, fmt.Errorf("resolving subject: %w", err)
	}
	object, err := t.graph.GetEntity(ctx, triple.Object)
	if err != nil {
		return core.RawCandidate{}, fmt.Errorf("resolving object: %w", err)
	}

	return core.RawCandidate{
		Kind:    core.SourceGraph,
		Content: fmt.Sprintf("%s %s %s", subject.Name, triple.Relation, object.Name),
		Score:   score,
		Fields: map[string]string{
			"subject":  subject.Name,
			"relation": triple.Relation,
			"object":   object.Name,
		},
	}, nil
}
