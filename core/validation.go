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
	"fmt"
	"strings"
)

// ValidateToolSpec checks a configured ToolSpec for structural validity.
// Weight must be in (0,1] and the tool name must be non-empty. Intent
// restrictions, when present, must use known intent labels.
func ValidateToolSpec(spec ToolSpec) error {
	if strings.TrimSpace(spec.Tool) == "" {
		return fmt.Errorf("%w: tool name is empty", ErrInvalidToolSpec)
	}
	if spec.Weight <= 0 || spec.Weight > 1 {
		return fmt.Errorf("%w: tool %q weight %v outside (0,1]", ErrInvalidToolSpec, spec.Tool, spec.Weight)
	}
	for _, intent := range spec.Intents {
		if !KnownIntent(intent) {
			return fmt.Errorf("%w: tool %q restricts to unknown intent %q", ErrInvalidToolSpec, spec.Tool, intent)
		}
	}
	for key, values := range spec.MetadataHints {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: tool %q has a metadata hint with an empty key", ErrInvalidToolSpec, spec.Tool)
		}
		if len(values) == 0 {
			return fmt.Errorf("%w: tool %q metadata hint %q has no allowed values", ErrInvalidToolSpec, spec.Tool, key)
		}
	}
	return nil
}

// ValidateRawCandidate checks that a retrieved payload carries usable content.
func ValidateRawCandidate(raw RawCandidate) error {
	if strings.TrimSpace(raw.Content) == "" {
		return ErrEmptyContent
	}
	if raw.Kind != SourceVector && raw.Kind != SourceGraph {
		return fmt.Errorf("unknown source kind %d", raw.Kind)
	}
	return nil
}
