package retrieval

import (
	"context"

	"github.com/poiesic/retrievit/core"
)

// Tool is the narrow contract every retrieval source implements.
// Implementations must be thread-safe and support concurrent invocations.
type Tool interface {
	// Name returns the stable tool name used in plan configuration.
	Name() string

	// Invoke runs one retrieval call for a single query variant.
	// filter maps metadata keys to allowed value sets; a candidate must match
	// every key present (empty filter matches everything). Returns up to topN
	// candidates. A zero-hit search returns an empty slice and nil error;
	// errors are reserved for transport and backend failures.
	Invoke(ctx context.Context, query string, filter map[string][]string, topN int) ([]core.RawCandidate, error)
}

// MatchesFilter reports whether candidate metadata satisfies a metadata filter.
// Every filter key must be present in the metadata with one of its allowed
// values; an empty filter matches everything.
func MatchesFilter(metadata map[string]string, filter map[string][]string) bool {
	for key, allowed := range filter {
		value, ok := metadata[key]
		if !ok {
			return false
		}
		matched := false
		for _, candidate := range allowed {
			if candidate == value {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
