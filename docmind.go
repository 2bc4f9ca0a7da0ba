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

package docmind

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/ai/openai"
	"github.com/poiesic/docmind/analysis"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/ingestion"
	"github.com/poiesic/docmind/reembed"
	"github.com/poiesic/docmind/search"
	"github.com/poiesic/docmind/storage"
	"github.com/poiesic/docmind/storage/badger"
)

// Store is the document intelligence store: upload files, search them
// semantically, and pull query-relevant context out of single
// documents. All state lives in one badger database at the configured
// path.
type Store struct {
	backend   *badger.Backend
	documents storage.DocumentRepository
	index     storage.VectorIndex
	provider  ai.AIProvider
	pipeline  *ingestion.Pipeline
	searcher  *search.Searcher
	embedder  *ingestion.EmbeddingService
	logger    *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	aiConfig        *ai.Config
	disableProvider bool
	inMemory        bool
	pipelineOpts    []ingestion.Option
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) StoreOption {
	return func(o *storeOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithoutProvider disables the AI provider entirely. Analysis and
// embedding run on the deterministic local implementations.
func WithoutProvider() StoreOption {
	return func(o *storeOptions) {
		o.disableProvider = true
	}
}

// WithInMemory keeps all data in memory. Intended for tests.
func WithInMemory() StoreOption {
	return func(o *storeOptions) {
		o.inMemory = true
	}
}

// WithPipelineOptions forwards options to the ingestion pipeline.
func WithPipelineOptions(opts ...ingestion.Option) StoreOption {
	return func(o *storeOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// New opens a store at filePath, recovering any documents a previous
// run left mid-pipeline and finishing any interrupted deletes.
func New(filePath string, opts ...StoreOption) (*Store, error) {
	options := &storeOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	index, err := badger.NewVectorIndex(backend)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	var provider ai.AIProvider
	var primaryAnalyzer ai.DocumentAnalyzer
	var providerEmbedder ai.Embedder
	if !options.disableProvider {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			index.Close()
			documents.Close()
			backend.Close()
			return nil, err
		}
		primaryAnalyzer = provider.Analyzer()
		providerEmbedder = provider.Embedder()
	}

	engine := analysis.NewEngine(analysis.WithPrimary(primaryAnalyzer))
	embedder := ingestion.NewEmbeddingService(providerEmbedder, nil)

	pipeline, err := ingestion.NewPipeline(documents, index, engine, embedder, options.pipelineOpts...)
	if err != nil {
		closeAll(provider, index, documents, backend)
		return nil, err
	}

	searcher, err := search.NewSearcher(documents, index, embedder)
	if err != nil {
		pipeline.Release()
		closeAll(provider, index, documents, backend)
		return nil, err
	}

	s := &Store{
		backend:   backend,
		documents: documents,
		index:     index,
		provider:  provider,
		pipeline:  pipeline,
		searcher:  searcher,
		embedder:  embedder,
		logger:    slog.Default().With("component", "docmind"),
	}

	if err := s.recover(context.Background()); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// recover finishes work a previous run left behind: non-terminal
// documents become failed, and tombstoned documents lose their chunks
// and records.
func (s *Store) recover(ctx context.Context) error {
	if _, err := s.documents.RecoverInterrupted(ctx); err != nil {
		return err
	}

	docs, err := s.documents.ListDocuments(ctx, storage.DocumentFilter{})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if !doc.Deleted {
			continue
		}
		s.logger.Warn("finishing interrupted delete", "id", doc.Id)
		if err := s.index.DeleteChunks(ctx, doc.Id); err != nil {
			return err
		}
		if err := s.documents.DeleteDocument(ctx, doc.Id); err != nil {
			return err
		}
	}
	return nil
}

// Upload ingests raw file bytes and returns the indexed document.
// Byte-identical re-uploads return the existing document.
func (s *Store) Upload(ctx context.Context, raw []byte, filename string, meta *core.UploadMetadata) (*core.Document, error) {
	return s.pipeline.Upload(ctx, raw, filename, meta)
}

// Search ranks stored documents against a natural-language query.
func (s *Store) Search(ctx context.Context, query search.Query) ([]*core.SearchResult, error) {
	return s.searcher.Search(ctx, query)
}

// SearchWithMonitor is Search with observation hooks.
func (s *Store) SearchWithMonitor(ctx context.Context, query search.Query, monitor search.SearchMonitor) ([]*core.SearchResult, error) {
	return s.searcher.SearchWithMonitor(ctx, query, monitor)
}

// GetContext returns the most relevant chunks of one document for a
// query.
func (s *Store) GetContext(ctx context.Context, id core.ID, query string, maxChunks int) ([]*core.DocumentContext, error) {
	return s.searcher.GetContext(ctx, id, query, maxChunks)
}

// Get retrieves a document by ID. Tombstoned documents read as absent.
func (s *Store) Get(ctx context.Context, id core.ID) (*core.Document, error) {
	doc, err := s.documents.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Deleted {
		return nil, storage.ErrNotFound
	}
	return doc, nil
}

// List returns documents passing the filter, newest first.
func (s *Store) List(ctx context.Context, filter storage.DocumentFilter) ([]*core.Document, error) {
	docs, err := s.documents.ListDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	visible := docs[:0]
	for _, doc := range docs {
		if !doc.Deleted {
			visible = append(visible, doc)
		}
	}
	return visible, nil
}

// Delete removes a document, its chunks, and its dedup index entry.
// The record is tombstoned first so a crash mid-delete never leaves a
// searchable half-deleted document.
func (s *Store) Delete(ctx context.Context, id core.ID) error {
	doc, err := s.documents.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	// Same per-content lock as ingestion, so a delete never races an
	// in-flight upload of identical bytes.
	return s.pipeline.WithContentLock(doc.ContentHash, func() error {
		doc.Deleted = true
		if err := s.documents.PutDocument(ctx, doc); err != nil {
			return err
		}
		if err := s.index.DeleteChunks(ctx, id); err != nil {
			return err
		}
		return s.documents.DeleteDocument(ctx, id)
	})
}

// Reanalyze re-runs analysis on a stored document asynchronously.
func (s *Store) Reanalyze(id core.ID) error {
	return s.pipeline.Reanalyze(id)
}

// Stats summarizes the stored corpus.
func (s *Store) Stats(ctx context.Context) (*storage.CollectionStats, error) {
	return s.documents.CollectionStats(ctx)
}

// MigrateEmbeddings re-embeds every fallback-scheme document with the
// provider embedder, writing progress to w. Requires a configured
// provider.
func (s *Store) MigrateEmbeddings(ctx context.Context, w io.Writer) error {
	if s.provider == nil {
		return reembed.ErrEmbedderRequired
	}
	reembedder, err := reembed.NewReembedder(s.documents, s.index, s.provider.Embedder(), nil, w)
	if err != nil {
		return err
	}
	return reembedder.Run(ctx)
}

// DocumentRepository exposes the underlying repository.
func (s *Store) DocumentRepository() storage.DocumentRepository {
	return s.documents
}

// VectorIndex exposes the underlying vector index.
func (s *Store) VectorIndex() storage.VectorIndex {
	return s.index
}

// Close releases the pipeline, the AI provider, and the storage
// backend. The store must not be used after Close.
func (s *Store) Close() error {
	s.pipeline.Release()
	return closeAll(s.provider, s.index, s.documents, s.backend)
}

func closeAll(provider ai.AIProvider, index storage.VectorIndex, documents storage.DocumentRepository, backend *badger.Backend) error {
	if provider != nil {
		if err := provider.Close(); err != nil {
			slog.Default().Error("error closing AI provider", "err", err)
		}
	}
	if index != nil {
		if err := index.Close(); err != nil {
			return err
		}
	}
	if documents != nil {
		if err := documents.Close(); err != nil {
			return err
		}
	}
	if backend != nil {
		return backend.Close()
	}
	return nil
}
