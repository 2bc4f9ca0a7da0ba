package storage

import (
	"context"

	"github.com/poiesic/docmind/core"
)

// DocumentFilter narrows ListDocuments results. Zero-value fields do
// not filter. Offset/Limit paginate after filtering; Limit <= 0 means
// no limit.
type DocumentFilter struct {
	Types       []core.DocumentType
	Sensitivity []core.SensitivityLevel
	Department  string
	States      []core.LifecycleState
	Offset      int
	Limit       int
}

// Matches reports whether a document passes the filter.
func (f *DocumentFilter) Matches(doc *core.Document) bool {
	if len(f.Types) > 0 && !containsType(f.Types, doc.DocumentType) {
		return false
	}
	if len(f.Sensitivity) > 0 && !containsSensitivity(f.Sensitivity, doc.SensitivityLevel) {
		return false
	}
	if f.Department != "" && f.Department != doc.Department {
		return false
	}
	if len(f.States) > 0 && !containsState(f.States, doc.State) {
		return false
	}
	return true
}

func containsType(ts []core.DocumentType, t core.DocumentType) bool {
	for _, v := range ts {
		if v == t {
			return true
		}
	}
	return false
}

func containsSensitivity(ls []core.SensitivityLevel, l core.SensitivityLevel) bool {
	for _, v := range ls {
		if v == l {
			return true
		}
	}
	return false
}

func containsState(ss []core.LifecycleState, s core.LifecycleState) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// CollectionStats summarizes the stored corpus.
type CollectionStats struct {
	DocumentCount int
	ChunkCount    int
	TotalBytes    int64
	ByState       map[core.LifecycleState]int
	ByType        map[core.DocumentType]int
}

// ChunkHit is a scored chunk returned by vector search.
type ChunkHit struct {
	DocumentId core.ID
	ChunkIndex int
	Text       string
	Score      float32
}

// DocumentRepository provides operations for managing document records
// and the content-hash dedup index.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// PutDocument inserts or replaces a document record and keeps the
	// content-hash index in step.
	PutDocument(ctx context.Context, doc *core.Document) error

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// FindByContentHash looks up a document through the dedup index.
	// Returns ErrNotFound when no document carries the hash.
	FindByContentHash(ctx context.Context, contentHash string) (*core.Document, error)

	// ListDocuments returns documents passing the filter, ordered by
	// creation time descending, paginated by filter Offset/Limit.
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]*core.Document, error)

	// DeleteDocument removes the record and its hash index entry in one
	// transaction. Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// TouchAccess records an access: bumps ReferenceCount and sets
	// LastAccessedAt.
	TouchAccess(ctx context.Context, id core.ID) error

	// RecoverInterrupted marks every document stuck in a non-terminal
	// lifecycle state as failed and returns the affected IDs. Called
	// once after opening the store.
	RecoverInterrupted(ctx context.Context) ([]core.ID, error)

	// CollectionStats summarizes the stored corpus.
	CollectionStats(ctx context.Context) (*CollectionStats, error)

	// Close releases repository resources.
	Close() error
}

// VectorIndex provides chunk storage and similarity search.
// Implementations must be thread-safe and support concurrent access.
type VectorIndex interface {
	// IndexChunks writes all chunks of a document in one transaction,
	// replacing any previous chunks for the document.
	IndexChunks(ctx context.Context, docID core.ID, chunks []*core.Chunk) error

	// Search scans chunks of the allowed documents and returns hits
	// with similarity >= minSimilarity, highest first, up to limit.
	// Callers must restrict allowed to documents of a single embedding
	// scheme; vectors of different schemes are not comparable.
	Search(ctx context.Context, vector []float32, allowed map[core.ID]struct{}, minSimilarity float32, limit int) ([]*ChunkHit, error)

	// GetChunks returns all chunks of a document in index order.
	GetChunks(ctx context.Context, docID core.ID) ([]*core.Chunk, error)

	// DeleteChunks removes every chunk of a document.
	DeleteChunks(ctx context.Context, docID core.ID) error

	// Close releases index resources.
	Close() error
}
