package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is derived from content hashing so identical passages collapse to one ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Whitespace runs are collapsed before hashing so trivially reformatted copies of the
// same passage produce identical IDs.
func IDFromContent(text string) ID {
	normalized := strings.Join(strings.Fields(text), " ")
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(normalized))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Persona is an inferred user-role category driving retrieval-source preference.
type Persona string

const (
	// PersonaClinicalAnalyst focuses on trial data, efficacy and safety.
	PersonaClinicalAnalyst Persona = "clinical_analyst"
	// PersonaHealthEconomist focuses on cost-effectiveness and market access.
	PersonaHealthEconomist Persona = "health_economist"
	// PersonaRegulatorySpecialist focuses on submissions, sponsors and pathways.
	PersonaRegulatorySpecialist Persona = "regulatory_specialist"
	// PersonaDefault is the broad fallback persona. A plan table must always
	// carry an entry for it.
	PersonaDefault Persona = "default"
)

// Personas lists the closed set of personas the classifier may return.
var Personas = []Persona{
	PersonaClinicalAnalyst,
	PersonaHealthEconomist,
	PersonaRegulatorySpecialist,
	PersonaDefault,
}

// KnownPersona reports whether p is in the closed persona set.
func KnownPersona(p Persona) bool {
	for _, known := range Personas {
		if p == known {
			return true
		}
	}
	return false
}

// Intent categorizes what kind of answer a query is after.
type Intent string

const (
	IntentFactLookup  Intent = "specific_fact_lookup"
	IntentSummary     Intent = "simple_summary"
	IntentComparative Intent = "comparative_analysis"
	IntentGeneralQA   Intent = "general_qa"
	IntentUnknown     Intent = "unknown"
)

// Intents lists the closed set of query intents.
var Intents = []Intent{
	IntentFactLookup,
	IntentSummary,
	IntentComparative,
	IntentGeneralQA,
	IntentUnknown,
}

// KnownIntent reports whether i is in the closed intent set.
func KnownIntent(i Intent) bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// QueryMetadata is the structured interpretation of a raw query produced by the
// intent classifier. Keywords seed graph traversal, Themes feed metadata filters.
type QueryMetadata struct {
	Intent        Intent
	Keywords      []string
	GraphSuitable bool
	Themes        []string
}

// SourceKind tags the shape of a RawCandidate payload.
type SourceKind int

const (
	// SourceVector marks a hit from a vector similarity index.
	SourceVector SourceKind = iota + 1
	// SourceGraph marks a record from a knowledge-graph traversal.
	SourceGraph
)

// RawCandidate is the source-specific retrieval payload before fusion.
// Vector hits carry a native similarity Score; graph records carry structured
// Fields instead. Only the fusion normalization step consumes this union;
// everything downstream is source-agnostic.
type RawCandidate struct {
	Kind     SourceKind
	Content  string
	Score    float32           // native score, meaningful only within one batch
	Fields   map[string]string // structured path fields for graph records
	Metadata map[string]string
}

// ToolStatus classifies the outcome of one planned tool invocation.
type ToolStatus int

const (
	ToolStatusOK ToolStatus = iota + 1
	ToolStatusTimeout
	ToolStatusError
	ToolStatusEmpty
)

// String returns the wire name of the status.
func (s ToolStatus) String() string {
	switch s {
	case ToolStatusOK:
		return "ok"
	case ToolStatusTimeout:
		return "timeout"
	case ToolStatusError:
		return "error"
	case ToolStatusEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Usable reports whether the invocation produced candidates fusion can consume.
func (s ToolStatus) Usable() bool {
	return s == ToolStatusOK
}

// ToolResult holds the pooled outcome of one planned tool across all query
// variants. Exactly one ToolResult exists per plan entry, in plan order.
type ToolResult struct {
	ToolName  string
	Status    ToolStatus
	Raw       []RawCandidate
	ErrDetail string
}

// ToolOutcome is the status summary surfaced with final evidence.
type ToolOutcome struct {
	ToolName string
	Status   ToolStatus
}

// ToolSpec is one configured retrieval tool for a persona: the tool name, its
// weight in (0,1], optional metadata filter hints and an optional intent
// restriction. Specs are loaded once and shared read-only across requests.
type ToolSpec struct {
	Tool          string
	Weight        float64
	MetadataHints map[string][]string
	Intents       []Intent
}

// AllowsIntent reports whether the spec is applicable to the given intent.
// An empty restriction list allows every intent.
func (s ToolSpec) AllowsIntent(intent Intent) bool {
	if len(s.Intents) == 0 {
		return true
	}
	for _, allowed := range s.Intents {
		if allowed == intent {
			return true
		}
	}
	return false
}

// ExecutionPlan is the ordered, weighted tool sequence chosen for one request.
// It is owned by the request and discarded when the request completes.
type ExecutionPlan []ToolSpec

// Candidate is the normalized, source-agnostic evidence unit after fusion.
type Candidate struct {
	Id          ID
	Text        string
	SourceTools []string // every tool that surfaced this passage
	SourceScore float32  // max normalized score across duplicates, in [0,1]
	RerankScore float32
	PlanIndex   int // earliest contributing tool's position in the plan
	Metadata    map[string]string
}

// Document is a stored corpus passage in the embedded retrieval stores.
type Document struct {
	Id         ID
	Text       string
	Vector     []float32 // embedding for semantic search
	Metadata   map[string]string
	InsertedAt time.Time
}

// Entity is a knowledge-graph node identified by its (type, name) tuple.
type Entity struct {
	Id   ID
	Name string
	Type string
}

// Tuple returns a string representation of the entity as "(Type,Name)".
// This is used for generating deterministic IDs.
func (e *Entity) Tuple() string {
	return "(" + e.Type + "," + e.Name + ")"
}

// EntityID computes the deterministic ID for an entity tuple. Names are
// matched case-insensitively, so the name is lowercased before hashing.
func EntityID(name, entityType string) ID {
	name = strings.ToLower(strings.TrimSpace(name))
	return IDFromContent("(" + entityType + "," + name + ")")
}

// Triple is a directed knowledge-graph edge with document provenance.
type Triple struct {
	Subject  ID
	Relation string
	Object   ID
	Doc      ID // document the triple was extracted from; zero when unknown
}

// DocumentMatch is a document hit from vector similarity search.
type DocumentMatch struct {
	Document *Document
	Score    float32
}

// Evidence is the final ranked, deduplicated candidate list together with the
// degradation signals the synthesis collaborator needs to calibrate confidence.
type Evidence struct {
	Items []*Candidate
	// DegradedRanking is set when the reranker was unavailable and ordering
	// fell back to normalized source scores.
	DegradedRanking bool
	// Escalated is set when the evidence came from the default-persona retry.
	Escalated bool
	// ToolOutcomes lists every attempted tool with its status, in plan order.
	// Escalated requests accumulate outcomes from both attempts.
	ToolOutcomes []ToolOutcome
}

// Empty reports whether the evidence carries no candidates.
func (e *Evidence) Empty() bool {
	return e == nil || len(e.Items) == 0
}
