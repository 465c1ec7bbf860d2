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


package openai

import "strings"

// cleanModelJSON strips markdown code fences and leading/trailing prose around
// the outermost JSON object, then repairs trailing commas. Local models in JSON
// mode still occasionally wrap output or leave a dangling comma.
func cleanModelJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	// Clamp to the outermost object when the model added prose around it.
	if start := strings.IndexByte(s, '{'); start > 0 {
		s = s[start:]
	}
	if end := strings.LastIndexByte(s, '}'); end >= 0 && end < len(s)-1 {
		s = s[:end+1]
	}

	return stripTrailingCommas(s)
}

// stripTrailingCommas removes commas that directly precede a closing brace or
// bracket, outside of string literals.
func stripTrailingCommas(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	inString := false
	escaped := false
	pendingComma := false

	for _, r := range s {
		if inString {
			out.WriteRune(r)
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			if pendingComma {
				out.WriteRune(',')
				pendingComma = false
			}
			inString = true
			out.WriteRune(r)
		case ',':
			if pendingComma {
				out.WriteRune(',')
			}
			pendingComma = true
		case '}', ']':
			// Drop the pending comma: it was trailing.
			pendingComma = false
			out.WriteRune(r)
		case ' ', '\t', '\n', '\r':
			if pendingComma {
				continue // decide once we see the next non-space rune
			}
			out.WriteRune(r)
		default:
			if pendingComma {
				out.WriteRune(',')
				pendingComma = false
			}
			out.WriteRune(r)
		}
	}

	if pendingComma {
		out.WriteRune(',')
	}
	return out.String()
}
