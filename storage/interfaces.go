package storage

import (
	"context"

	"github.com/poiesic/retrievit/core"
)

// DocumentRepository provides operations for the embedded document corpus.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// AddDocuments adds one or more documents to storage.
	// For documents with Id=0, derives the ID from the text content.
	// Sets InsertedAt if not already set.
	// Returns the documents with IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// FindSimilar finds documents similar to the given vector that satisfy the
	// metadata filter. Returns documents with similarity >= minSimilarity, up
	// to limit results, ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, filter map[string][]string) ([]*core.DocumentMatch, error)

	// Close closes the repository and releases resources.
	Close() error
}

// GraphRepository provides operations for the embedded knowledge graph.
// Implementations must be thread-safe and support concurrent access.
type GraphRepository interface {
	// AddEntities adds entities to storage. IDs are content-derived from the
	// (type, name) tuple, so re-adding an existing entity is a no-op upsert.
	AddEntities(ctx context.Context, entities ...*core.Entity) ([]*core.Entity, error)

	// AddTriples adds directed edges between stored entities.
	AddTriples(ctx context.Context, triples ...*core.Triple) error

	// GetEntity retrieves a single entity by ID.
	// Returns ErrNotFound if the entity doesn't exist.
	GetEntity(ctx context.Context, id core.ID) (*core.Entity, error)

	// FindEntitiesByName returns entities whose lowercased name equals name.
	// Multiple entities may share a name across types.
	FindEntitiesByName(ctx context.Context, name string) ([]*core.Entity, error)

	// GetTriples returns every triple where the entity appears as subject or
	// object.
	GetTriples(ctx context.Context, entityID core.ID) ([]*core.Triple, error)

	// Close closes the repository and releases resources.
	Close() error
}
