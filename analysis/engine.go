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

package analysis

import (
	"context"
	"log/slog"

	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/ai/fallback"
	"github.com/poiesic/docmind/core"
)

// Engine runs document analysis with graceful degradation. The primary
// analyzer (an LLM behind an OpenAI-compatible API) is tried first;
// when it is absent or fails, the deterministic fallback analyzer runs
// instead and the result is marked degraded. Analysis never blocks
// ingestion: if both analyzers fail the engine returns an empty result
// rather than an error, so the document still reaches the index.
type Engine struct {
	primary  ai.DocumentAnalyzer
	fallback ai.DocumentAnalyzer
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPrimary sets the primary analyzer. Without one the engine goes
// straight to the fallback and every result is degraded.
func WithPrimary(analyzer ai.DocumentAnalyzer) Option {
	return func(e *Engine) {
		e.primary = analyzer
	}
}

// WithFallback overrides the deterministic fallback analyzer.
// Mainly useful in tests.
func WithFallback(analyzer ai.DocumentAnalyzer) Option {
	return func(e *Engine) {
		e.fallback = analyzer
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.With("component", "analysis")
	}
}

// NewEngine builds an analysis engine. By default there is no primary
// analyzer and the deterministic fallback handles everything.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		fallback: fallback.NewAnalyzer(),
		logger:   slog.Default().With("component", "analysis"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Degraded reports whether the engine has no primary analyzer and will
// mark every result degraded.
func (e *Engine) Degraded() bool {
	return e.primary == nil
}

// Analyze runs the strategy chain on extracted text. The returned
// result is never nil unless the context is canceled.
func (e *Engine) Analyze(ctx context.Context, text string) (*core.AnalysisResult, error) {
	if e.primary != nil {
		result, err := e.primary.AnalyzeDocument(ctx, text)
		if err == nil && result != nil {
			result.Degraded = false
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("primary analyzer failed, degrading to rule-based analysis", "err", err)
	}

	result, err := e.fallback.AnalyzeDocument(ctx, text)
	if err == nil && result != nil {
		result.Degraded = true
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Both strategies failed. Index the document anyway with an empty
	// analysis so upload never fails on the analysis stage.
	e.logger.Warn("all analyzers failed, storing empty analysis", "err", err)
	return &core.AnalysisResult{
		Category: core.DocumentTypeUnclassified,
		Stats:    core.ComputeStats(text),
		Degraded: true,
	}, nil
}
