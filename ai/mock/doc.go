// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder,
// ai.DocumentAnalyzer, and ai.AIProvider for use in unit tests. The
// mocks allow tests to run without external AI service dependencies
// and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vec, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockAnalyzer: Returns a canned analysis with real text statistics
//   - MockProvider: Aggregates mock embedder and analyzer
package mock
