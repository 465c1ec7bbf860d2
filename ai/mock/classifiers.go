package mock

import (
	"context"
	"strings"

	"github.com/poiesic/retrievit/core"
)

// MockPersonaClassifier is a test double for ai.PersonaClassifier.
// It allows custom behavior injection via function fields.
type MockPersonaClassifier struct {
	// ClassifyPersonaFunc is called by ClassifyPersona if set.
	// If nil, uses simple keyword heuristics.
	ClassifyPersonaFunc func(ctx context.Context, query string) (core.Persona, error)

	callCount int
}

// NewMockPersonaClassifier creates a mock persona classifier with default behavior.
func NewMockPersonaClassifier() *MockPersonaClassifier {
	return &MockPersonaClassifier{}
}

// ClassifyPersona classifies by keyword heuristics mirroring the production
// prompt's keyword lists.
func (m *MockPersonaClassifier) ClassifyPersona(ctx context.Context, query string) (core.Persona, error) {
	m.callCount++

	if m.ClassifyPersonaFunc != nil {
		return m.ClassifyPersonaFunc(ctx, query)
	}

	lowered := strings.ToLower(query)
	switch {
	case containsAny(lowered, "cost", "price", "economic", "budget", "value"):
		return core.PersonaHealthEconomist, nil
	case containsAny(lowered, "trial", "efficacy", "dosage", "patients", "side effects", "treat"):
		return core.PersonaClinicalAnalyst, nil
	case containsAny(lowered, "sponsor", "submission", "listing", "agenda", "guideline"):
		return core.PersonaRegulatorySpecialist, nil
	default:
		return core.PersonaDefault, nil
	}
}

// CallCount returns the number of times ClassifyPersona was called.
func (m *MockPersonaClassifier) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockPersonaClassifier) Reset() {
	m.callCount = 0
	m.ClassifyPersonaFunc = nil
}

// MockQueryClassifier is a test double for ai.QueryClassifier.
type MockQueryClassifier struct {
	// ClassifyQueryFunc is called by ClassifyQuery if set.
	ClassifyQueryFunc func(ctx context.Context, query string) (*core.QueryMetadata, error)

	callCount int
}

// NewMockQueryClassifier creates a mock query classifier with default behavior.
func NewMockQueryClassifier() *MockQueryClassifier {
	return &MockQueryClassifier{}
}

// ClassifyQuery returns general_qa metadata with the query's words as keywords.
func (m *MockQueryClassifier) ClassifyQuery(ctx context.Context, query string) (*core.QueryMetadata, error) {
	m.callCount++

	if m.ClassifyQueryFunc != nil {
		return m.ClassifyQueryFunc(ctx, query)
	}

	words := strings.Fields(strings.ToLower(query))
	keywords := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if len(word) > 3 {
			keywords = append(keywords, word)
		}
	}

	return &core.QueryMetadata{
		Intent:        core.IntentGeneralQA,
		Keywords:      keywords,
		GraphSuitable: len(keywords) > 0,
	}, nil
}

// CallCount returns the number of times ClassifyQuery was called.
func (m *MockQueryClassifier) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockQueryClassifier) Reset() {
	m.callCount = 0
	m.ClassifyQueryFunc = nil
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
