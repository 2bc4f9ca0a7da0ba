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

package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

const (
	// DefaultMinSimilarity is the default similarity threshold.
	DefaultMinSimilarity = 0.60

	// DefaultMaxHits is the default result cap.
	DefaultMaxHits = 10

	// MaxContextChunks bounds GetContext output.
	MaxContextChunks = 20

	// chunkFanout is how many chunk hits are gathered per document slot
	// before grouping.
	chunkFanout = 4

	// verbatimBoost is added when every query word appears in the
	// document text. The combined score is clamped to 1.
	verbatimBoost = 0.3
)

// QueryEmbedder embeds query text under a specific scheme. A provider
// failure on the query path is terminal for that scheme; the search
// degrades rather than waits out retries.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string, scheme core.EmbeddingScheme) ([]float32, error)
}

// Searcher ranks documents against natural-language queries. Vectors
// from different embedding schemes are never compared: each scheme's
// documents are scored against a query vector produced under the same
// scheme.
type Searcher struct {
	documents storage.DocumentRepository
	index     storage.VectorIndex
	embedder  QueryEmbedder
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	documents storage.DocumentRepository,
	index storage.VectorIndex,
	embedder QueryEmbedder,
	opts ...Option,
) (*Searcher, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		documents: documents,
		index:     index,
		embedder:  embedder,
		logger:    slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Query holds search parameters. The zero value searches the whole
// corpus with default threshold and cap.
type Query struct {
	Text          string
	Filter        storage.DocumentFilter
	MinSimilarity float32 // 0 means DefaultMinSimilarity
	MaxHits       int     // 0 means DefaultMaxHits
}

// Search finds documents relevant to the query, ranked by relevance.
func (s *Searcher) Search(ctx context.Context, query Query) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, nil)
}

// SearchWithMonitor is Search with observation hooks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query Query, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query.Text) == "" {
		return nil, ErrEmptyQuery
	}
	minSimilarity := query.MinSimilarity
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	maxHits := query.MaxHits
	if maxHits <= 0 {
		maxHits = DefaultMaxHits
	}

	monitor.Start(query.Text)

	// Chunk retrieval reaches below the threshold by the boost margin;
	// the threshold itself applies to the final document score, after
	// any verbatim boost. Filtering at the full threshold here would
	// drop documents the boost should rescue.
	retrievalFloor := minSimilarity - verbatimBoost
	if retrievalFloor < 0 {
		retrievalFloor = 0
	}

	candidates, err := s.candidates(ctx, query.Filter)
	if err != nil {
		return nil, err
	}

	// Score each scheme's documents with a query vector from the same
	// scheme. A scheme whose query embedding fails is skipped; its
	// documents are simply unreachable for this search.
	hitsByDoc := make(map[core.ID][]*storage.ChunkHit)
	for scheme, docs := range candidates.byScheme {
		ids := make([]core.ID, 0, len(docs))
		for id := range docs {
			ids = append(ids, id)
		}
		monitor.AfterCandidateSelection(scheme, ids)

		vector, err := s.embedder.EmbedQuery(ctx, query.Text, scheme)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("query embedding unavailable for scheme",
				"scheme", scheme.String(), "err", err)
			monitor.SchemeUnavailable(scheme, err)
			continue
		}

		hits, err := s.index.Search(ctx, vector, docs, retrievalFloor, maxHits*chunkFanout)
		if err != nil {
			return nil, err
		}
		monitor.AfterVectorSearch(scheme, len(hits))
		for _, hit := range hits {
			hitsByDoc[hit.DocumentId] = append(hitsByDoc[hit.DocumentId], hit)
		}
	}

	if len(hitsByDoc) == 0 {
		monitor.Finish(nil)
		return []*core.SearchResult{}, nil
	}

	results := make([]*core.SearchResult, 0, len(hitsByDoc))
	for id, hits := range hitsByDoc {
		doc := candidates.docs[id]
		if doc == nil {
			continue
		}

		// Hits arrive sorted per scheme; keep best-first within the doc.
		sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

		score := hits[0].Score
		if containsAllQueryWords(doc.ExtractedText, query.Text) {
			score += verbatimBoost
			monitor.VerbatimHit(id)
		}
		if score > 1 {
			score = 1
		}
		if score < minSimilarity {
			continue
		}

		excerpts := make([]string, 0, len(hits))
		for _, hit := range hits {
			excerpts = append(excerpts, hit.Text)
		}

		results = append(results, &core.SearchResult{
			Document: doc,
			Score:    score,
			Excerpts: excerpts,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ProcessedAt.After(results[j].Document.ProcessedAt)
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}

	for _, result := range results {
		if err := s.documents.TouchAccess(ctx, result.Document.Id); err != nil {
			s.logger.Warn("failed to record access", "id", result.Document.Id, "err", err)
		}
	}

	monitor.Finish(results)
	return results, nil
}

// GetContext returns the most relevant chunks of a single document for
// a query, capped at MaxContextChunks.
func (s *Searcher) GetContext(ctx context.Context, docID core.ID, queryText string, maxChunks int) ([]*core.DocumentContext, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, ErrEmptyQuery
	}
	if maxChunks <= 0 || maxChunks > MaxContextChunks {
		maxChunks = MaxContextChunks
	}

	doc, err := s.documents.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !doc.Indexed() {
		return nil, ErrDocumentNotIndexed
	}

	vector, err := s.embedder.EmbedQuery(ctx, queryText, doc.Scheme)
	if err != nil {
		return nil, err
	}

	allowed := map[core.ID]struct{}{docID: {}}
	hits, err := s.index.Search(ctx, vector, allowed, 0, maxChunks)
	if err != nil {
		return nil, err
	}

	contexts := make([]*core.DocumentContext, 0, len(hits))
	for _, hit := range hits {
		contexts = append(contexts, &core.DocumentContext{
			DocumentId: hit.DocumentId,
			ChunkIndex: hit.ChunkIndex,
			Text:       hit.Text,
			Score:      hit.Score,
		})
	}

	if len(contexts) > 0 {
		if err := s.documents.TouchAccess(ctx, docID); err != nil {
			s.logger.Warn("failed to record access", "id", docID, "err", err)
		}
	}
	return contexts, nil
}

// candidateSet is the searchable corpus slice for one query, grouped
// by embedding scheme.
type candidateSet struct {
	docs     map[core.ID]*core.Document
	byScheme map[core.EmbeddingScheme]map[core.ID]struct{}
}

// candidates lists indexed documents passing the filter and groups
// them by scheme.
func (s *Searcher) candidates(ctx context.Context, filter storage.DocumentFilter) (*candidateSet, error) {
	// Pagination belongs to listing, not scoring.
	filter.Offset = 0
	filter.Limit = 0

	docs, err := s.documents.ListDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	set := &candidateSet{
		docs:     make(map[core.ID]*core.Document),
		byScheme: make(map[core.EmbeddingScheme]map[core.ID]struct{}),
	}
	for _, doc := range docs {
		if !doc.Indexed() {
			continue
		}
		set.docs[doc.Id] = doc
		group := set.byScheme[doc.Scheme]
		if group == nil {
			group = make(map[core.ID]struct{})
			set.byScheme[doc.Scheme] = group
		}
		group[doc.Id] = struct{}{}
	}
	return set, nil
}
