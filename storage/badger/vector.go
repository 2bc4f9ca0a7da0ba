// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

// VectorIndex implements storage.VectorIndex for BadgerDB. Chunks live
// under per-document key prefixes; similarity is the dot product of
// unit vectors. The scan is linear over the allowed documents' chunks,
// which is the same tradeoff the rest of the corpus-sized store makes:
// no auxiliary index to corrupt, and deletes are a prefix drop.
type VectorIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a vector index on the backend.
//
// Returns storage.VectorIndex to enforce abstraction.
func NewVectorIndex(backend *Backend) (storage.VectorIndex, error) {
	return &VectorIndex{backend: backend}, nil
}

// Close is a no-op; the index owns no resources beyond the backend.
func (v *VectorIndex) Close() error {
	return nil
}

// IndexChunks writes all chunks of a document in one transaction,
// replacing any previous chunks. Chunks become readable before the
// document is marked indexed; visibility is gated by the document
// record, not by chunk presence.
func (v *VectorIndex) IndexChunks(ctx context.Context, docID core.ID, chunks []*core.Chunk) error {
	for _, chunk := range chunks {
		if chunk.DocumentId != docID {
			return fmt.Errorf("%w: chunk %d belongs to document %d", core.ErrInvalidChunk, chunk.Index, chunk.DocumentId)
		}
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}
	return v.backend.WithTx(func(tx *badger.Txn) error {
		if err := v.deleteChunksTx(tx, docID); err != nil {
			return err
		}
		for _, chunk := range chunks {
			key := makeChunkKey(docID, chunk.Index)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Search scans the chunks of the allowed documents and returns hits
// with similarity >= minSimilarity, highest first, up to limit.
func (v *VectorIndex) Search(ctx context.Context, vector []float32, allowed map[core.ID]struct{}, minSimilarity float32, limit int) ([]*storage.ChunkHit, error) {
	if len(allowed) == 0 {
		return nil, nil
	}

	var hits []*storage.ChunkHit
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		for docID := range allowed {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = makeChunkPrefix(docID)
			iter := tx.NewIterator(opts)

			for iter.Rewind(); iter.Valid(); iter.Next() {
				var chunk *core.Chunk
				err := iter.Item().Value(func(val []byte) error {
					var err error
					chunk, err = storage.UnmarshalChunk(val)
					return err
				})
				if err != nil {
					iter.Close()
					return fmt.Errorf("%w: %v", core.ErrIndexCorruption, err)
				}
				if chunk == nil || len(chunk.Vector) == 0 {
					continue
				}
				if len(chunk.Vector) != len(vector) {
					// Different scheme; the caller's pre-filter should
					// have excluded this document.
					continue
				}

				score := core.DotProduct(vector, chunk.Vector)
				if score >= minSimilarity {
					hits = append(hits, &storage.ChunkHit{
						DocumentId: chunk.DocumentId,
						ChunkIndex: chunk.Index,
						Text:       chunk.Text,
						Score:      score,
					})
				}
			}
			iter.Close()
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(hits, func(a, b *storage.ChunkHit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		case a.DocumentId < b.DocumentId:
			return -1
		case a.DocumentId > b.DocumentId:
			return 1
		}
		return a.ChunkIndex - b.ChunkIndex
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// GetChunks returns all chunks of a document in index order.
func (v *VectorIndex) GetChunks(ctx context.Context, docID core.ID) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(docID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("%w: %v", core.ErrIndexCorruption, err)
			}
			if chunk != nil {
				chunks = append(chunks, chunk)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// DeleteChunks removes every chunk of a document.
func (v *VectorIndex) DeleteChunks(ctx context.Context, docID core.ID) error {
	return v.backend.WithTx(func(tx *badger.Txn) error {
		if err := v.deleteChunksTx(tx, docID); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// deleteChunksTx removes a document's chunks within a transaction.
func (v *VectorIndex) deleteChunksTx(tx *badger.Txn, docID core.ID) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeChunkPrefix(docID)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
