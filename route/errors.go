package route

import "errors"

var (
	// ErrRegistryRequired is returned when a router is built without a registry.
	ErrRegistryRequired = errors.New("tool registry required")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
