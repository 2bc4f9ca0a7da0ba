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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/docmind/analysis"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/extract"
	"github.com/poiesic/docmind/security"
	"github.com/poiesic/docmind/storage"
)

// Pipeline orchestrates document ingestion: security scan, text
// extraction, analysis and embedding in parallel, then staged indexing.
// Chunks are written before the document is marked indexed, so a crash
// can leave orphan chunks but never a searchable document without its
// chunks.
type Pipeline struct {
	documents  storage.DocumentRepository
	index      storage.VectorIndex
	scanner    *security.Scanner
	extractors *extract.Registry
	engine     *analysis.Engine
	embedder   *EmbeddingService
	chunker    *Chunker
	pool       *ants.Pool
	locks      *hashLocks
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for asynchronous work.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithScanner overrides the security scanner.
func WithScanner(scanner *security.Scanner) Option {
	return func(p *Pipeline) error {
		if scanner != nil {
			p.scanner = scanner
		}
		return nil
	}
}

// WithChunker overrides the chunker.
func WithChunker(chunker *Chunker) Option {
	return func(p *Pipeline) error {
		if chunker != nil {
			p.chunker = chunker
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline. engine and embedder carry
// their own fallbacks, so neither blocks ingestion when degraded.
func NewPipeline(
	documents storage.DocumentRepository,
	index storage.VectorIndex,
	engine *analysis.Engine,
	embedder *EmbeddingService,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documents:  documents,
		index:      index,
		scanner:    security.NewScanner(),
		extractors: extract.NewRegistry(),
		engine:     engine,
		embedder:   embedder,
		chunker:    NewChunker(DefaultChunkSize, DefaultChunkOverlap),
		pool:       pool,
		locks:      newHashLocks(),
		logger:     slog.Default().With("component", "ingestion"),
	}
	if p.engine == nil {
		p.engine = analysis.NewEngine()
	}
	if p.embedder == nil {
		p.embedder = NewEmbeddingService(nil, nil)
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Upload ingests raw file bytes. Byte-identical re-uploads return the
// existing document without reprocessing. Rejection during scan or
// extraction persists nothing.
func (p *Pipeline) Upload(ctx context.Context, raw []byte, filename string, meta *core.UploadMetadata) (*core.Document, error) {
	verdict, err := p.scanner.Scan(raw, filename, int64(len(raw)))
	if err != nil {
		return nil, err
	}

	// One upload per content hash at a time; concurrent identical
	// uploads serialize and the second sees the dedup hit.
	unlock := p.locks.lock(verdict.ContentHash)
	defer unlock()

	existing, err := p.documents.FindByContentHash(ctx, verdict.ContentHash)
	switch {
	case err == nil && !existing.Deleted && existing.State != core.StateFailed:
		p.logger.Debug("duplicate upload", "id", existing.Id, "filename", verdict.SanitizedFilename)
		return existing, nil
	case err == nil:
		// Interrupted delete or a failed earlier run; clear the remains
		// and re-ingest.
		if err := p.index.DeleteChunks(ctx, existing.Id); err != nil {
			return nil, err
		}
		if err := p.documents.DeleteDocument(ctx, existing.Id); err != nil {
			return nil, err
		}
	case err != storage.ErrNotFound:
		return nil, err
	}

	extracted, err := p.extractors.Extract(verdict.Format, raw)
	if err != nil {
		return nil, err
	}

	doc := p.newDocument(raw, verdict, meta)
	doc.Filename, err = p.uniqueFilename(ctx, doc.Id, verdict)
	if err != nil {
		return nil, err
	}
	doc.ExtractedText = extracted.Text
	doc.State = core.StateAnalyzing
	if err := p.documents.PutDocument(ctx, doc); err != nil {
		return nil, err
	}

	if err := p.process(ctx, doc, extracted.Breaks); err != nil {
		doc.State = core.StateFailed
		if putErr := p.documents.PutDocument(ctx, doc); putErr != nil {
			p.logger.Error("failed to record failed state", "id", doc.Id, "err", putErr)
		}
		return nil, fmt.Errorf("processing failed for %s: %w", doc.Filename, err)
	}
	return doc, nil
}

// WithContentLock runs fn while holding the per-content-hash lock that
// serializes ingestion of that content. Deletion uses it so removing a
// document never races an in-flight upload of the same bytes.
func (p *Pipeline) WithContentLock(hash string, fn func() error) error {
	unlock := p.locks.lock(hash)
	defer unlock()
	return fn()
}

// process runs analysis and embedding in parallel, then indexes the
// chunks and marks the document indexed.
func (p *Pipeline) process(ctx context.Context, doc *core.Document, breaks []int) error {
	var (
		result *core.AnalysisResult
		chunks []*core.Chunk
		scheme core.EmbeddingScheme
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = p.engine.Analyze(gctx, doc.ExtractedText)
		return err
	})
	g.Go(func() error {
		chunks = p.chunker.ChunkText(doc.Id, doc.ExtractedText, breaks)
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, s, err := p.embedder.EmbedTexts(gctx, texts)
		if err != nil {
			return err
		}
		for i, c := range chunks {
			c.Vector = vectors[i]
		}
		scheme = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	p.applyAnalysis(doc, result)
	doc.Scheme = scheme
	doc.Degraded = result.Degraded || scheme == core.SchemeFallback
	doc.State = core.StateEmbedding
	if err := p.documents.PutDocument(ctx, doc); err != nil {
		return err
	}

	if err := p.index.IndexChunks(ctx, doc.Id, chunks); err != nil {
		return err
	}

	doc.State = core.StateIndexed
	doc.ProcessedAt = time.Now().UTC()
	doc.EmbeddingRef = fmt.Sprintf("chunks/%016x", uint64(doc.Id))
	if err := p.documents.PutDocument(ctx, doc); err != nil {
		return err
	}

	p.logger.Info("document indexed",
		"id", doc.Id,
		"filename", doc.Filename,
		"type", doc.DocumentType.String(),
		"chunks", len(chunks),
		"scheme", doc.Scheme.String(),
		"degraded", doc.Degraded)
	return nil
}

// Reanalyze re-runs analysis on a stored document asynchronously.
// Failures are logged, not returned.
func (p *Pipeline) Reanalyze(id core.ID) error {
	return p.pool.Submit(func() {
		ctx := context.Background()
		doc, err := p.documents.GetDocument(ctx, id)
		if err != nil {
			p.logger.Error("reanalyze: load failed", "id", id, "err", err)
			return
		}
		if doc.ExtractedText == "" || doc.Deleted {
			return
		}

		result, err := p.engine.Analyze(ctx, doc.ExtractedText)
		if err != nil {
			p.logger.Error("reanalyze: analysis failed", "id", id, "err", err)
			return
		}
		p.applyAnalysis(doc, result)
		doc.Degraded = result.Degraded || doc.Scheme == core.SchemeFallback
		if err := p.documents.PutDocument(ctx, doc); err != nil {
			p.logger.Error("reanalyze: store failed", "id", id, "err", err)
		}
	})
}

// applyAnalysis copies analysis output onto the document. A caller
// type hint wins over the classifier.
func (p *Pipeline) applyAnalysis(doc *core.Document, result *core.AnalysisResult) {
	doc.Summary = result.ExecutiveSummary
	doc.DetailedSummary = result.DetailedSummary
	doc.KeyInsights = result.KeyInsights
	if doc.TypeConfidence == 0 && doc.DocumentType == core.DocumentTypeUnclassified {
		doc.DocumentType = result.Category
		doc.TypeConfidence = result.Confidence
	}
}

// newDocument builds the initial record from a scan verdict and caller
// metadata.
func (p *Pipeline) newDocument(raw []byte, verdict *security.Verdict, meta *core.UploadMetadata) *core.Document {
	if meta == nil {
		meta = &core.UploadMetadata{}
	}
	doc := &core.Document{
		Id:               core.IDFromContent(raw),
		Filename:         verdict.SanitizedFilename,
		FileType:         verdict.Format,
		FileSize:         int64(len(raw)),
		ContentHash:      verdict.ContentHash,
		SensitivityLevel: meta.SensitivityLevel,
		State:            core.StateUploaded,
		Title:            meta.Title,
		Description:      meta.Description,
		Author:           meta.Author,
		Department:       meta.Department,
		Tags:             meta.Tags,
		CreatedAt:        time.Now().UTC(),
	}
	if meta.HasTypeHint {
		doc.DocumentType = meta.DocumentType
		doc.TypeConfidence = 1.0
	}
	return doc
}

// uniqueFilename returns the sanitized filename, hash-suffixed when a
// different live document already carries the same name. Distinct
// contents uploaded under one name stay tellable apart.
func (p *Pipeline) uniqueFilename(ctx context.Context, id core.ID, verdict *security.Verdict) (string, error) {
	docs, err := p.documents.ListDocuments(ctx, storage.DocumentFilter{})
	if err != nil {
		return "", err
	}
	for _, other := range docs {
		if other.Deleted || other.Id == id {
			continue
		}
		if other.Filename == verdict.SanitizedFilename {
			return security.DisambiguateFilename(verdict.SanitizedFilename, verdict.ContentHash), nil
		}
	}
	return verdict.SanitizedFilename, nil
}

// Release releases the worker pool. The pipeline must not be used
// after Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// hashLocks hands out one mutex per content hash. Entries are removed
// when the last holder unlocks.
type hashLocks struct {
	mu    sync.Mutex
	locks map[string]*hashLock
}

type hashLock struct {
	mu   sync.Mutex
	refs int
}

func newHashLocks() *hashLocks {
	return &hashLocks{locks: make(map[string]*hashLock)}
}

func (h *hashLocks) lock(hash string) (unlock func()) {
	h.mu.Lock()
	l, ok := h.locks[hash]
	if !ok {
		l = &hashLock{}
		h.locks[hash] = l
	}
	l.refs++
	h.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		h.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(h.locks, hash)
		}
		h.mu.Unlock()
	}
}
