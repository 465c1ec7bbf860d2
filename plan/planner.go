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
	"log/slog"
	"sort"

	"github.com/poiesic/retrievit/core"
)

// Planner turns a classified persona and query metadata into an ordered
// execution plan. Planning is pure table lookup plus filtering and sorting;
// it never fails and never returns an empty plan.
type Planner struct {
	store  *Store
	logger *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner) error

// WithLogger sets the logger used for planning decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) error {
		p.logger = logger
		return nil
	}
}

// NewPlanner creates a planner over the given table store.
func NewPlanner(store *Store, opts ...Option) (*Planner, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	planner := &Planner{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(planner); err != nil {
			return nil, err
		}
	}
	return planner, nil
}

// Plan builds the execution plan for one request. An unrecognized persona or
// a persona without a table entry falls back to the default entry. Tool specs
// carrying an intent restriction that excludes the query's intent are dropped;
// when filtering would empty the plan, the unfiltered spec list is used so the
// plan is never empty. The result is sorted descending by weight with
// configuration order as the tie-break, and is owned by the caller.
func (p *Planner) Plan(persona core.Persona, meta *core.QueryMetadata) core.ExecutionPlan {
	table := p.store.Load()

	specs := table.Specs(persona)
	if len(specs) == 0 {
		if persona != core.PersonaDefault {
			p.logger.Debug("persona has no plan entry, using default",
				"persona", string(persona))
		}
		persona = core.PersonaDefault
		specs = table.Specs(core.PersonaDefault)
	}

	intent := core.IntentUnknown
	if meta != nil {
		intent = meta.Intent
	}

	filtered := make([]core.ToolSpec, 0, len(specs))
	for _, spec := range specs {
		if spec.AllowsIntent(intent) {
			filtered = append(filtered, spec)
		}
	}
	if len(filtered) == 0 {
		// Intent restrictions may not leave the request without any source
		p.logger.Debug("intent filtering emptied plan, keeping full spec list",
			"persona", string(persona), "intent", string(intent))
		filtered = filtered[:0]
		filtered = append(filtered, specs...)
	}

	ordered := make(core.ExecutionPlan, len(filtered))
	copy(ordered, filtered)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Weight > ordered[j].Weight
	})
	return ordered
}
