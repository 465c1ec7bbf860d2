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


package plan

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/poiesic/retrievit/core"
	"gopkg.in/yaml.v3"
)

// Table maps personas to their ordered tool spec lists. A table is immutable
// after construction and safely shared across concurrent requests.
type Table struct {
	entries map[core.Persona][]core.ToolSpec
}

// toolEntry is the YAML shape of one configured tool.
type toolEntry struct {
	Tool          string              `yaml:"tool"`
	Weight        float64             `yaml:"weight"`
	MetadataHints map[string][]string `yaml:"metadata_hints"`
	Intents       []string            `yaml:"intents"`
}

// ParseTable parses a persona table from YAML and validates it.
// The table must carry a non-empty default entry; a table that would fail
// lookup at request time fails here instead.
func ParseTable(data []byte) (*Table, error) {
	var raw map[string][]toolEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing persona table: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyTable
	}

	entries := make(map[core.Persona][]core.ToolSpec, len(raw))
	for persona, tools := range raw {
		specs := make([]core.ToolSpec, 0, len(tools))
		for i, tool := range tools {
			intents := make([]core.Intent, 0, len(tool.Intents))
			for _, intent := range tool.Intents {
				intents = append(intents, core.Intent(intent))
			}
			spec := core.ToolSpec{
				Tool:          tool.Tool,
				Weight:        tool.Weight,
				MetadataHints: tool.MetadataHints,
				Intents:       intents,
			}
			if err := core.ValidateToolSpec(spec); err != nil {
				return nil, fmt.Errorf("persona %q entry %d: %w", persona, i, err)
			}
			specs = append(specs, spec)
		}
		entries[core.Persona(persona)] = specs
	}

	if len(entries[core.PersonaDefault]) == 0 {
		return nil, ErrMissingDefault
	}

	return &Table{entries: entries}, nil
}

// LoadTable reads and parses a persona table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading persona table: %w", err)
	}
	return ParseTable(data)
}

// Specs returns the tool spec list for a persona in configuration order, or
// nil when the persona has no entry.
func (t *Table) Specs(persona core.Persona) []core.ToolSpec {
	return t.entries[persona]
}

// Personas returns the personas the table carries entries for.
func (t *Table) Personas() []core.Persona {
	personas := make([]core.Persona, 0, len(t.entries))
	for persona := range t.entries {
		personas = append(personas, persona)
	}
	return personas
}

// Store holds the active persona table and supports atomic reload. In-flight
// requests keep using the table they loaded; a swap never patches in place.
type Store struct {
	table atomic.Pointer[Table]
}

// NewStore creates a store seeded with the given table.
func NewStore(table *Table) (*Store, error) {
	if table == nil {
		return nil, ErrEmptyTable
	}
	store := &Store{}
	store.table.Store(table)
	return store, nil
}

// Load returns the active table.
func (s *Store) Load() *Table {
	return s.table.Load()
}

// Swap atomically replaces the active table.
func (s *Store) Swap(table *Table) error {
	if table == nil {
		return ErrEmptyTable
	}
	s.table.Store(table)
	return nil
}
