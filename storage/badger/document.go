package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a document repository on the backend.
//
// Returns storage.DocumentRepository to enforce abstraction.
func NewDocumentRepository(backend *Backend) (storage.DocumentRepository, error) {
	return newDocumentRepository(backend)
}

func newDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	return &DocumentRepository{backend: backend}, nil
}

// Close is a no-op; the repository owns no resources beyond the backend.
func (r *DocumentRepository) Close() error {
	return nil
}

// PutDocument inserts or replaces a document record. The content-hash
// index always points at the stored record, so dedup lookups and the
// record itself can never disagree.
func (r *DocumentRepository) PutDocument(ctx context.Context, doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(doc.Id)

		// Drop the old hash index entry if the hash changed.
		old, err := r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if old != nil && old.ContentHash != doc.ContentHash {
			if err := tx.Delete(makeHashKey(old.ContentHash)); err != nil {
				return err
			}
		}

		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		if err := tx.Set(makeHashKey(doc.ContentHash), storage.MarshalID(doc.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindByContentHash looks up a document through the dedup index.
func (r *DocumentRepository) FindByContentHash(ctx context.Context, contentHash string) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeHashKey(contentHash))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		var docID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			docID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readDocument(tx, makeDocumentKey(docID))
		if err != nil {
			return err
		}
		if result == nil {
			// Dangling index entry; treat as absent.
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListDocuments returns documents passing the filter, newest first.
func (r *DocumentRepository) ListDocuments(ctx context.Context, filter storage.DocumentFilter) ([]*core.Document, error) {
	if filter.Offset < 0 {
		return nil, storage.ErrInvalidQuery
	}

	var all []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc == nil || !filter.Matches(doc) {
				continue
			}
			all = append(all, doc)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(all, func(a, b *core.Document) int {
		switch {
		case a.CreatedAt.After(b.CreatedAt):
			return -1
		case a.CreatedAt.Before(b.CreatedAt):
			return 1
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})

	if filter.Offset >= len(all) {
		return nil, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

// DeleteDocument removes the record and its hash index entry.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(makeHashKey(doc.ContentHash)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// TouchAccess bumps ReferenceCount and sets LastAccessedAt.
func (r *DocumentRepository) TouchAccess(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		doc.ReferenceCount++
		doc.LastAccessedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// RecoverInterrupted marks documents stuck in non-terminal states as
// failed. Runs once at startup, before any uploads are accepted.
func (r *DocumentRepository) RecoverInterrupted(ctx context.Context) ([]core.ID, error) {
	var recovered []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc == nil || doc.State.Terminal() {
				continue
			}

			doc.State = core.StateFailed
			if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
				return err
			}
			recovered = append(recovered, doc.Id)
		}
		iter.Close()
		if len(recovered) == 0 {
			return nil
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	if len(recovered) > 0 {
		r.backend.logger.Warn("recovered interrupted documents", "count", len(recovered))
	}
	return recovered, nil
}

// CollectionStats summarizes the stored corpus.
func (r *DocumentRepository) CollectionStats(ctx context.Context) (*storage.CollectionStats, error) {
	stats := &storage.CollectionStats{
		ByState: make(map[core.LifecycleState]int),
		ByType:  make(map[core.DocumentType]int),
	}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc == nil {
				continue
			}
			stats.DocumentCount++
			stats.TotalBytes += doc.FileSize
			stats.ByState[doc.State]++
			stats.ByType[doc.DocumentType]++
		}

		chunkOpts := badger.DefaultIteratorOptions
		chunkOpts.Prefix = []byte(chunkRecordPrefix + ":")
		chunkOpts.PrefetchValues = false
		chunkIter := tx.NewIterator(chunkOpts)
		defer chunkIter.Close()
		for chunkIter.Rewind(); chunkIter.Valid(); chunkIter.Next() {
			stats.ChunkCount++
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// readDocument reads and unmarshals a document, returning nil when the
// key does not exist.
func (r *DocumentRepository) readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	return doc, err
}
