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


package retrievit

import (
	"context"
	"fmt"

	"github.com/poiesic/retrievit/core"
)

// SeedEntity declares a knowledge-graph node referenced by a seed document.
type SeedEntity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// SeedTriple declares a directed edge between two declared entities.
type SeedTriple struct {
	Subject     string `json:"subject"`
	SubjectType string `json:"subject_type"`
	Relation    string `json:"relation"`
	Object      string `json:"object"`
	ObjectType  string `json:"object_type"`
}

// SeedDocument is one corpus passage plus its graph annotations, as consumed
// by Ingest and by the CLI seed command's JSON-lines format.
type SeedDocument struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Entities []SeedEntity      `json:"entities,omitempty"`
	Triples  []SeedTriple      `json:"triples,omitempty"`
}

// Ingest embeds and stores seed documents in the document store and loads
// their declared entities and triples into the knowledge graph. Triples
// record the originating document for provenance.
func (o *Orchestrator) Ingest(ctx context.Context, docs ...*SeedDocument) error {
	for i, seed := range docs {
		if seed.Text == "" {
			return fmt.Errorf("seed document %d: %w", i, core.ErrEmptyContent)
		}

		vector, err := o.provider.Embedder().EmbedText(ctx, seed.Text)
		if err != nil {
			return fmt.Errorf("embedding seed document %d: %w", i, err)
		}

		stored, err := o.docRepo.AddDocuments(ctx, &core.Document{
			Text:     seed.Text,
			Vector:   vector,
			Metadata: seed.Metadata,
		})
		if err != nil {
			return fmt.Errorf("storing seed document %d: %w", i, err)
		}
		docID := stored[0].Id

		if len(seed.Entities) > 0 {
			entities := make([]*core.Entity, len(seed.Entities))
			for j, entity := range seed.Entities {
				entities[j] = &core.Entity{Name: entity.Name, Type: entity.Type}
			}
			if _, err := o.graphRepo.AddEntities(ctx, entities...); err != nil {
				return fmt.Errorf("storing entities for seed document %d: %w", i, err)
			}
		}

		if len(seed.Triples) > 0 {
			triples := make([]*core.Triple, len(seed.Triples))
			for j, triple := range seed.Triples {
				triples[j] = &core.Triple{
					Subject:  core.EntityID(triple.Subject, triple.SubjectType),
					Relation: triple.Relation,
					Object:   core.EntityID(triple.Object, triple.ObjectType),
					Doc:      docID,
				}
			}
			if err := o.graphRepo.AddTriples(ctx, triples...); err != nil {
				return fmt.Errorf("storing triples for seed document %d: %w", i, err)
			}
		}
	}
	return nil
}
