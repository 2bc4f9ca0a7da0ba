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

package reembed

import (
	"context"

	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

const (
	// DefaultBatchSize is the default number of documents per batch
	DefaultBatchSize = 100
)

// DocumentIterator iterates over migratable documents in batches: those
// indexed under the fallback scheme.
type DocumentIterator struct {
	repo      storage.DocumentRepository
	batchSize int
}

// NewDocumentIterator creates a new document iterator.
// batchSize: number of documents per batch (must be > 0)
func NewDocumentIterator(repo storage.DocumentRepository, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DocumentIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// Candidates returns every indexed fallback-scheme document.
func (it *DocumentIterator) Candidates(ctx context.Context) ([]*core.Document, error) {
	docs, err := it.repo.ListDocuments(ctx, storage.DocumentFilter{
		States: []core.LifecycleState{core.StateIndexed},
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]*core.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Indexed() && doc.Scheme == core.SchemeFallback {
			candidates = append(candidates, doc)
		}
	}
	return candidates, nil
}

// ForEach iterates over all migratable documents, calling fn for each
// batch. Iteration stops on first error from fn or when all documents
// are processed. Context cancellation is checked between batches.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	docs, err := it.Candidates(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	for i := 0; i < len(docs); i += it.batchSize {
		end := i + it.batchSize
		if end > len(docs) {
			end = len(docs)
		}

		if err := fn(docs[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
