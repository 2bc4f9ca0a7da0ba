package ai

import (
	"context"

	"github.com/poiesic/docmind/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// DocumentAnalyzer produces summaries, a classification, entities,
// sentiment and statistics for extracted document text.
// Implementations must be thread-safe for concurrent use.
type DocumentAnalyzer interface {
	// AnalyzeDocument analyzes extracted text and returns the full
	// analysis result. Implementations decide how much of the text
	// they consider; long documents may be truncated internally.
	// Returns an error if the analysis cannot be produced at all.
	AnalyzeDocument(ctx context.Context, text string) (*core.AnalysisResult, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// DocumentAnalyzer instances, ensuring they share configuration and
// resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Analyzer returns the document analysis service.
	// The returned DocumentAnalyzer is safe for concurrent use.
	Analyzer() DocumentAnalyzer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
