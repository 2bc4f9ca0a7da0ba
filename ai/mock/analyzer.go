package mock

import (
	"context"

	"github.com/poiesic/docmind/core"
)

// MockAnalyzer is a test double for ai.DocumentAnalyzer.
// It allows custom behavior injection via function fields.
type MockAnalyzer struct {
	// AnalyzeDocumentFunc is called by AnalyzeDocument if set.
	// If nil, uses default canned behavior.
	AnalyzeDocumentFunc func(ctx context.Context, text string) (*core.AnalysisResult, error)

	callCount int
}

// NewMockAnalyzer creates a mock analyzer with default canned behavior.
// Returns concrete type to allow test assertions.
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

// AnalyzeDocument returns a plausible fixed analysis unless a custom
// function is injected. Stats are computed from the real text so tests
// exercising counts keep working.
func (m *MockAnalyzer) AnalyzeDocument(ctx context.Context, text string) (*core.AnalysisResult, error) {
	m.callCount++

	if m.AnalyzeDocumentFunc != nil {
		return m.AnalyzeDocumentFunc(ctx, text)
	}

	return &core.AnalysisResult{
		ExecutiveSummary: "Mock executive summary.",
		DetailedSummary:  "Mock detailed summary covering the document in one paragraph.",
		KeyPoints:        []string{"Mock key point."},
		KeyInsights:      []string{"Mock key insight."},
		Category:         core.DocumentTypeUnclassified,
		Confidence:       0.5,
		Sentiment:        core.Sentiment{Polarity: 0, Magnitude: 0},
		Stats:            core.ComputeStats(text),
	}, nil
}

// CallCount returns the number of times AnalyzeDocument was called.
func (m *MockAnalyzer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockAnalyzer) Reset() {
	m.callCount = 0
	m.AnalyzeDocumentFunc = nil
}
