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


package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy for the retrieval pipeline.
var (
	// ErrToolTimeout indicates a tool call exceeded its deadline.
	ErrToolTimeout = errors.New("tool call timed out")

	// ErrToolUnavailable indicates a tool call failed after retry exhaustion.
	ErrToolUnavailable = errors.New("tool unavailable")

	// ErrScoringUnavailable indicates the reranker could not score candidates.
	// Fusion degrades to source-score ordering rather than failing.
	ErrScoringUnavailable = errors.New("scoring unavailable")

	// ErrNoEvidence is the terminal outcome after the escalated plan also
	// produced nothing usable. Returned wrapped in a NoEvidenceError.
	ErrNoEvidence = errors.New("no evidence found")

	// ErrInvalidToolSpec indicates a ToolSpec failed validation.
	ErrInvalidToolSpec = errors.New("invalid tool spec")

	// ErrEmptyContent indicates a candidate with no text content.
	ErrEmptyContent = errors.New("content cannot be empty")
)

// NoEvidenceError is the structured terminal result: the pipeline searched,
// escalated once, and still found nothing. Outcomes let callers distinguish
// "searched and found nothing" from "retrieval subsystem degraded".
type NoEvidenceError struct {
	Outcomes []ToolOutcome
}

// Error implements the error interface.
func (e *NoEvidenceError) Error() string {
	if len(e.Outcomes) == 0 {
		return ErrNoEvidence.Error()
	}
	parts := make([]string, len(e.Outcomes))
	for i, o := range e.Outcomes {
		parts[i] = fmt.Sprintf("%s=%s", o.ToolName, o.Status)
	}
	return fmt.Sprintf("%s (%s)", ErrNoEvidence, strings.Join(parts, ", "))
}

// Unwrap lets errors.Is(err, ErrNoEvidence) match.
func (e *NoEvidenceError) Unwrap() error {
	return ErrNoEvidence
}

// Degraded reports whether any tool failed outright, i.e. the empty result may
// reflect subsystem unavailability rather than a legitimate zero-hit search.
func (e *NoEvidenceError) Degraded() bool {
	for _, o := range e.Outcomes {
		if o.Status == ToolStatusTimeout || o.Status == ToolStatusError {
			return true
		}
	}
	return false
}
