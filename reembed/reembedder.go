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
	"fmt"
	"io"
	"time"

	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

// Config holds configuration for the migration operation.
type Config struct {
	// BatchSize is the number of documents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder migrates every fallback-embedded document to provider
// vectors, typically after an embedding provider becomes available for
// a corpus ingested offline.
type Reembedder struct {
	repo      storage.DocumentRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *DocumentIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.DocumentRepository, index storage.VectorIndex, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if repo == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		repo:      repo,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, index, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewDocumentIterator(repo, config.BatchSize),
	}, nil
}

// Run executes the migration. Every indexed fallback-scheme document
// is re-embedded with the provider embedder. Progress is reported to
// the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	candidates, err := r.iterator.Candidates(ctx)
	if err != nil {
		return fmt.Errorf("failed to query documents: %w", err)
	}

	total := len(candidates)
	if total == 0 {
		fmt.Fprintf(r.progress, "No fallback-embedded documents found (0 documents)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting migration of %d documents (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(docs []*core.Document) error {
		if err := r.processor.Process(ctx, docs); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		processed += len(docs)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Migration complete. Processed %d documents in %v (%.1f documents/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
