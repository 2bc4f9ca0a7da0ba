package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docmind/ai/mock"
	"github.com/poiesic/docmind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnginePrimarySucceeds(t *testing.T) {
	primary := mock.NewMockAnalyzer()
	primary.AnalyzeDocumentFunc = func(ctx context.Context, text string) (*core.AnalysisResult, error) {
		return &core.AnalysisResult{
			ExecutiveSummary: "Revenue grew.",
			Category:         core.DocumentTypeFinancial,
			Confidence:       0.9,
		}, nil
	}

	e := NewEngine(WithPrimary(primary))
	assert.False(t, e.Degraded())

	result, err := e.Analyze(context.Background(), "Q4 revenue grew 12%.")
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, core.DocumentTypeFinancial, result.Category)
	assert.Equal(t, 1, primary.CallCount())
}

func TestEngineFallsBackOnPrimaryError(t *testing.T) {
	primary := mock.NewMockAnalyzer()
	primary.AnalyzeDocumentFunc = func(ctx context.Context, text string) (*core.AnalysisResult, error) {
		return nil, errors.New("connection refused")
	}

	e := NewEngine(WithPrimary(primary))
	result, err := e.Analyze(context.Background(), "Q4 revenue grew 12% on strong enterprise sales. Profit and investment both improved.")
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, core.DocumentTypeFinancial, result.Category)
	assert.NotEmpty(t, result.ExecutiveSummary)
}

func TestEngineWithoutPrimaryIsDegraded(t *testing.T) {
	e := NewEngine()
	assert.True(t, e.Degraded())

	result, err := e.Analyze(context.Background(), "The contract and agreement require compliance with the regulation.")
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, core.DocumentTypeLegal, result.Category)
}

func TestEngineDegradedDeterminism(t *testing.T) {
	e := NewEngine()
	text := "Revenue and profit improved. The budget for investment grew."

	first, err := e.Analyze(context.Background(), text)
	require.NoError(t, err)
	second, err := e.Analyze(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngineBothFailStoresEmptyAnalysis(t *testing.T) {
	boom := errors.New("boom")
	primary := mock.NewMockAnalyzer()
	primary.AnalyzeDocumentFunc = func(ctx context.Context, text string) (*core.AnalysisResult, error) {
		return nil, boom
	}
	failing := mock.NewMockAnalyzer()
	failing.AnalyzeDocumentFunc = func(ctx context.Context, text string) (*core.AnalysisResult, error) {
		return nil, boom
	}

	e := NewEngine(WithPrimary(primary), WithFallback(failing))
	result, err := e.Analyze(context.Background(), "some text here")
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Empty(t, result.ExecutiveSummary)
	assert.Equal(t, core.DocumentTypeUnclassified, result.Category)
	assert.Equal(t, 3, result.Stats.WordCount)
}

func TestEngineHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine()
	_, err := e.Analyze(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}
