package ai

import (
	"context"

	"github.com/poiesic/retrievit/core"
)

// PersonaClassifier maps raw query text to one persona from the closed set.
// Implementations must be thread-safe for concurrent use.
type PersonaClassifier interface {
	// ClassifyPersona returns the best-fitting persona for the query.
	// Implementations never surface an unknown-persona error: anything the
	// model returns outside the closed set maps to core.PersonaDefault.
	ClassifyPersona(ctx context.Context, query string) (core.Persona, error)
}

// QueryClassifier maps raw query text to structured query metadata: intent,
// keywords, graph suitability and themes.
// Implementations must be thread-safe for concurrent use.
type QueryClassifier interface {
	// ClassifyQuery interprets the query. On model failure it returns an
	// error; callers fall back to core.IntentUnknown metadata.
	ClassifyQuery(ctx context.Context, query string) (*core.QueryMetadata, error)
}

// QueryRewriter normalizes a conversational query into one or more standalone
// retrieval query variants.
// Implementations must be thread-safe for concurrent use.
type QueryRewriter interface {
	// Rewrite resolves references against the chat history and returns at
	// least one variant. With empty history or on failure the original query
	// is returned unchanged as the sole variant.
	Rewrite(ctx context.Context, query string, history []string) ([]string, error)
}

// Reranker scores candidate passages against a query.
// Implementations must be thread-safe for concurrent use.
type Reranker interface {
	// ScoreBatch scores every passage in one call. The returned slice is
	// aligned by index to the input order and has the same length.
	// Returns an error wrapping core.ErrScoringUnavailable when the scoring
	// backend is down; fusion then degrades to source-score ordering.
	ScoreBatch(ctx context.Context, query string, passages []string) ([]float32, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts in a batch.
	// The returned slice is aligned by index to the input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AIProvider aggregates the model-backed services for convenient initialization
// and lifecycle management. All returned services are safe for concurrent use.
type AIProvider interface {
	PersonaClassifier() PersonaClassifier
	QueryClassifier() QueryClassifier
	QueryRewriter() QueryRewriter
	Reranker() Reranker
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	Close() error
}
