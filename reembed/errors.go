package reembed

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrVectorIndexRequired is returned when a vector index is not provided.
	ErrVectorIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when a provider embedder is not provided.
	ErrEmbedderRequired = errors.New("provider embedder required")
)
