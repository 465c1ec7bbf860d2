package badger

import (
	"context"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/storage"
)

// GraphRepository implements storage.GraphRepository for BadgerDB.
type GraphRepository struct {
	backend *Backend
}

var _ storage.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository creates a new GraphRepository.
func NewGraphRepository(backend *Backend) (*GraphRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &GraphRepository{backend: backend}, nil
}

// Close releases resources. GraphRepository has no resources to release.
func (r *GraphRepository) Close() error {
	return nil
}

// AddEntities adds entities to storage. IDs are derived from the (type, name)
// tuple, so re-adding an existing entity overwrites it in place.
func (r *GraphRepository) AddEntities(ctx context.Context, entities ...*core.Entity) ([]*core.Entity, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entity := range entities {
			entity.Name = strings.ToLower(strings.TrimSpace(entity.Name))
			if entity.Id == 0 {
				entity.Id = core.IDFromContent(entity.Tuple())
			}

			key := makeEntityKey(entity.Id)
			if err := tx.Set(key, storage.MarshalEntity(entity)); err != nil {
				return err
			}

			nameKey := makeEntityNameKey(entity.Name, entity.Id)
			if err := tx.Set(nameKey, storage.MarshalID(entity.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entities, err
}

// AddTriples adds directed edges between stored entities. Each triple is
// indexed under both endpoints.
func (r *GraphRepository) AddTriples(ctx context.Context, triples ...*core.Triple) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, triple := range triples {
			value := storage.MarshalTriple(triple)

			subjectKey := makeTripleIndexKey(tripleSubjectPrefix, triple.Subject, triple)
			if err := tx.Set(subjectKey, value); err != nil {
				return err
			}

			objectKey := makeTripleIndexKey(tripleObjectPrefix, triple.Object, triple)
			if err := tx.Set(objectKey, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEntity retrieves a single entity by ID.
func (r *GraphRepository) GetEntity(ctx context.Context, id core.ID) (*core.Entity, error) {
	var result *core.Entity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntityKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalEntity(val)
			return err
		})
	}, false)
	return result, err
}

// FindEntitiesByName returns entities whose lowercased name equals name.
func (r *GraphRepository) FindEntitiesByName(ctx context.Context, name string) ([]*core.Entity, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var ids []core.ID

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialEntityNameKey(name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	results := make([]*core.Entity, 0, len(ids))
	for _, id := range ids {
		entity, err := r.GetEntity(ctx, id)
		if err != nil {
			if err == storage.ErrNotFound {
				continue
			}
			return nil, err
		}
		results = append(results, entity)
	}
	return results, nil
}

// GetTriples returns every triple where the entity appears as subject or
// object.
func (r *GraphRepository) GetTriples(ctx context.Context, entityID core.ID) ([]*core.Triple, error) {
	var results []*core.Triple
	seen := make(map[string]bool)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, prefix := range []string{tripleSubjectPrefix, tripleObjectPrefix} {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = makePartialTripleIndexKey(prefix, entityID)
			iter := tx.NewIterator(opts)

			for iter.Rewind(); iter.Valid(); iter.Next() {
				var triple *core.Triple
				err := iter.Item().Value(func(val []byte) error {
					var err error
					triple, err = storage.UnmarshalTriple(val)
					return err
				})
				if err != nil {
					iter.Close()
					return err
				}
				// Self-loops appear under both prefixes
				dedupKey := string(storage.MarshalTriple(triple))
				if seen[dedupKey] {
					continue
				}
				seen[dedupKey] = true
				results = append(results, triple)
			}
			iter.Close()
		}
		return nil
	}, false)

	return results, err
}
