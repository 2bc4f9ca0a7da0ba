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
	"time"

	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/ingestion"
	"github.com/poiesic/docmind/storage"
)

// BatchProcessor migrates batches of documents from fallback-scheme
// vectors to provider vectors. Each document is re-embedded and its
// chunks replaced in one index transaction; the scheme flips on the
// record only after the chunks are written, so a crash leaves the
// document consistently on one scheme or the other.
type BatchProcessor struct {
	repo           storage.DocumentRepository
	index          storage.VectorIndex
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.DocumentRepository, index storage.VectorIndex, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		index:          index,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		retryMaxDelay:  8 * retryBaseDelay,
	}
}

// Process re-embeds a batch of documents with the provider embedder.
// Vectors are normalized after embedding for cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) error {
	for _, doc := range docs {
		if err := bp.processDocument(ctx, doc); err != nil {
			return fmt.Errorf("document %d: %w", doc.Id, err)
		}
	}
	return nil
}

func (bp *BatchProcessor) processDocument(ctx context.Context, doc *core.Document) error {
	chunks, err := bp.index.GetChunks(ctx, doc.Id)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var vectors [][]float32
	err = ingestion.RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay, bp.retryMaxDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(vectors))
	}

	for i := range chunks {
		chunks[i].Vector = core.NormalizeVector(vectors[i])
	}

	if err := bp.index.IndexChunks(ctx, doc.Id, chunks); err != nil {
		return err
	}

	doc.Scheme = core.SchemeProvider
	return bp.repo.PutDocument(ctx, doc)
}
