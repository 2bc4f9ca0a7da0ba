package ai

import "errors"

var (
	// ErrEmbedderNotConfigured is returned when an operation needs a
	// provider embedder and none was configured.
	ErrEmbedderNotConfigured = errors.New("embedder not configured")
)
