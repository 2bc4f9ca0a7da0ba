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

package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/ai/fallback"
	"github.com/poiesic/docmind/core"
)

const (
	embedMaxAttempts = 3
	embedBaseDelay   = time.Second
	embedMaxDelay    = 8 * time.Second
)

// EmbeddingService produces chunk vectors, preferring the configured
// provider and falling back to the deterministic local embedder when
// the provider is absent or keeps failing. The scheme that produced
// the vectors is reported alongside them; a document's chunks always
// share one scheme.
type EmbeddingService struct {
	provider ai.Embedder // nil when no provider is configured
	fallback ai.Embedder
	logger   *slog.Logger
}

// NewEmbeddingService creates an embedding service. provider may be
// nil.
func NewEmbeddingService(provider ai.Embedder, logger *slog.Logger) *EmbeddingService {
	if logger == nil {
		logger = slog.Default().With("component", "ingestion.embedding")
	}
	return &EmbeddingService{
		provider: provider,
		fallback: fallback.NewEmbedder(),
		logger:   logger,
	}
}

// EmbedTexts embeds all texts under a single scheme. The provider gets
// three attempts with exponential backoff; only after the last failure
// does the local embedder take over. Vectors are unit-normalized.
func (s *EmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, core.EmbeddingScheme, error) {
	if len(texts) == 0 {
		return nil, core.SchemeNone, nil
	}

	if s.provider != nil {
		var vectors [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var err error
			vectors, err = s.provider.EmbedTexts(ctx, texts)
			return err
		}, embedMaxAttempts, embedBaseDelay, embedMaxDelay)
		if err == nil {
			for i, v := range vectors {
				vectors[i] = core.NormalizeVector(v)
			}
			return vectors, core.SchemeProvider, nil
		}
		if ctx.Err() != nil {
			return nil, core.SchemeNone, ctx.Err()
		}
		s.logger.Warn("embedding provider unavailable, using fallback", "err", err)
	}

	vectors, err := s.fallback.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, core.SchemeNone, err
	}
	return vectors, core.SchemeFallback, nil
}

// EmbedQuery embeds a single query text under the requested scheme,
// with a single provider attempt. The search path cannot afford retry
// delays; an unavailable provider means the query cannot be scored
// against provider-embedded documents.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string, scheme core.EmbeddingScheme) ([]float32, error) {
	switch scheme {
	case core.SchemeProvider:
		if s.provider == nil {
			return nil, ai.ErrEmbedderNotConfigured
		}
		vector, err := s.provider.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		return core.NormalizeVector(vector), nil
	case core.SchemeFallback:
		return s.fallback.EmbedText(ctx, text)
	default:
		return nil, ai.ErrEmbedderNotConfigured
	}
}

// HasProvider reports whether a provider embedder is configured.
func (s *EmbeddingService) HasProvider() bool {
	return s.provider != nil
}
