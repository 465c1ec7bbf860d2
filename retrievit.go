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


// Package retrievit is a persona-weighted multi-source retrieval orchestrator.
// A query is classified into a persona and an intent, rewritten into retrieval
// variants, planned into a weighted tool sequence, executed concurrently
// against the configured retrieval sources, and fused into one ranked,
// deduplicated evidence list for answer synthesis.
package retrievit

import (
	"context"
	"log/slog"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/ai/openai"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/fuse"
	"github.com/poiesic/retrievit/orchestrate"
	"github.com/poiesic/retrievit/plan"
	"github.com/poiesic/retrievit/retrieval"
	"github.com/poiesic/retrievit/retrieval/docstore"
	"github.com/poiesic/retrievit/retrieval/graphstore"
	"github.com/poiesic/retrievit/route"
	"github.com/poiesic/retrievit/storage"
	"github.com/poiesic/retrievit/storage/badger"
)

// Orchestrator owns the full retrieval system: embedded stores, model
// provider, tool registry, persona table and the pipeline components.
type Orchestrator struct {
	backend     *badger.Backend
	docRepo     storage.DocumentRepository
	graphRepo   storage.GraphRepository
	provider    ai.AIProvider
	registry    *retrieval.Registry
	store       *plan.Store
	router      *route.Router
	coordinator *orchestrate.Coordinator
	logger      *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*orchestratorOptions)

type orchestratorOptions struct {
	aiConfig     *ai.Config
	provider     ai.AIProvider
	inMemory     bool
	monitor      orchestrate.Monitor
	evidenceSize int
	extraTools   []retrieval.Tool
}

// WithAIConfig sets the model endpoint configuration used to build the
// default provider.
func WithAIConfig(config *ai.Config) OrchestratorOption {
	return func(o *orchestratorOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a prebuilt AI provider instead of constructing one
// from config. The orchestrator takes ownership and closes it.
func WithProvider(provider ai.AIProvider) OrchestratorOption {
	return func(o *orchestratorOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all storage in memory. Intended for tests and demos.
func WithInMemory() OrchestratorOption {
	return func(o *orchestratorOptions) {
		o.inMemory = true
	}
}

// WithMonitor installs a pipeline observer.
func WithMonitor(monitor orchestrate.Monitor) OrchestratorOption {
	return func(o *orchestratorOptions) {
		o.monitor = monitor
	}
}

// WithEvidenceSize caps the fused evidence list length.
func WithEvidenceSize(k int) OrchestratorOption {
	return func(o *orchestratorOptions) {
		o.evidenceSize = k
	}
}

// WithTools registers additional retrieval tools (external stores and the
// like) alongside the embedded vector and graph tools.
func WithTools(tools ...retrieval.Tool) OrchestratorOption {
	return func(o *orchestratorOptions) {
		o.extraTools = append(o.extraTools, tools...)
	}
}

// Open builds the whole retrieval system from a storage directory and a
// validated persona table.
func Open(dataPath string, table *plan.Table, opts ...OrchestratorOption) (*Orchestrator, error) {
	options := &orchestratorOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(dataPath, options.inMemory)
	if err != nil {
		return nil, err
	}

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	graphRepo, err := badger.NewGraphRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			graphRepo.Close()
			docRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	o := &Orchestrator{
		backend:   backend,
		docRepo:   docRepo,
		graphRepo: graphRepo,
		provider:  provider,
		logger:    slog.Default(),
	}

	if err := o.assemble(table, options); err != nil {
		o.Close()
		return nil, err
	}
	return o, nil
}

// assemble wires the registry, planner, router, fusion engine and coordinator.
func (o *Orchestrator) assemble(table *plan.Table, options *orchestratorOptions) error {
	vectorTool, err := docstore.New(o.docRepo, o.provider.Embedder())
	if err != nil {
		return err
	}
	graphTool, err := graphstore.New(o.graphRepo)
	if err != nil {
		return err
	}

	o.registry = retrieval.NewRegistry()
	if err := o.registry.Register(vectorTool); err != nil {
		return err
	}
	if err := o.registry.Register(graphTool); err != nil {
		return err
	}
	for _, tool := range options.extraTools {
		if err := o.registry.Register(tool); err != nil {
			return err
		}
	}

	o.store, err = plan.NewStore(table)
	if err != nil {
		return err
	}
	planner, err := plan.NewPlanner(o.store)
	if err != nil {
		return err
	}

	o.router, err = route.NewRouter(o.registry)
	if err != nil {
		return err
	}

	var engineOpts []fuse.Option
	if options.evidenceSize > 0 {
		engineOpts = append(engineOpts, fuse.WithEvidenceSize(options.evidenceSize))
	}
	engine, err := fuse.NewEngine(o.provider.Reranker(), engineOpts...)
	if err != nil {
		return err
	}

	var coordinatorOpts []orchestrate.Option
	if options.monitor != nil {
		coordinatorOpts = append(coordinatorOpts, orchestrate.WithMonitor(options.monitor))
	}
	o.coordinator, err = orchestrate.NewCoordinator(o.provider, planner, o.router, engine, coordinatorOpts...)
	return err
}

// RetrieveOption adjusts a single retrieval request.
type RetrieveOption func(*orchestrate.Request)

// WithPersonaHint pins the request's persona, skipping classification when
// the hint names a known persona.
func WithPersonaHint(persona core.Persona) RetrieveOption {
	return func(r *orchestrate.Request) {
		r.PersonaHint = persona
	}
}

// WithHistory supplies prior conversation turns for reference resolution.
func WithHistory(history []string) RetrieveOption {
	return func(r *orchestrate.Request) {
		r.History = history
	}
}

// Retrieve answers a query with ranked evidence. On a terminal no-evidence
// outcome the returned error is a *core.NoEvidenceError.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, opts ...RetrieveOption) (*core.Evidence, error) {
	request := orchestrate.Request{Query: query}
	for _, opt := range opts {
		opt(&request)
	}
	return o.coordinator.Retrieve(ctx, request)
}

// ReloadTable atomically swaps in a new persona table. In-flight requests
// keep the table they started with.
func (o *Orchestrator) ReloadTable(table *plan.Table) error {
	return o.store.Swap(table)
}

// DocumentRepository exposes the embedded document store.
func (o *Orchestrator) DocumentRepository() storage.DocumentRepository {
	return o.docRepo
}

// GraphRepository exposes the embedded knowledge graph.
func (o *Orchestrator) GraphRepository() storage.GraphRepository {
	return o.graphRepo
}

// ToolNames returns the registered retrieval tool names.
func (o *Orchestrator) ToolNames() []string {
	return o.registry.Names()
}

// Close releases every owned resource.
func (o *Orchestrator) Close() error {
	if o.router != nil {
		o.router.Release()
	}
	if o.provider != nil {
		if err := o.provider.Close(); err != nil {
			o.logger.Error("error closing AI provider", "err", err)
		}
	}
	if o.graphRepo != nil {
		if err := o.graphRepo.Close(); err != nil {
			o.logger.Error("error closing graph repository", "err", err)
			return err
		}
	}
	if o.docRepo != nil {
		if err := o.docRepo.Close(); err != nil {
			o.logger.Error("error closing document repository", "err", err)
			return err
		}
	}
	if err := o.backend.Close(); err != nil {
		o.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
