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

package fallback

import (
	"context"
	"hash/fnv"
	"log/slog"
	"regexp"
	"strings"

	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/core"
)

// Dimensions is the fixed width of fallback vectors. Vectors of this
// scheme are only ever compared with each other, never with provider
// vectors.
const Dimensions = 256

// Embedder implements ai.Embedder with feature-hashed bags of words.
// The same text always produces the same unit vector, with no corpus
// state and no network access. Texts sharing vocabulary land in the
// same buckets, so cosine similarity still ranks related chunks above
// unrelated ones.
type Embedder struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	logger       *slog.Logger
}

// NewEmbedder creates the deterministic local embedder.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder() ai.Embedder {
	return newEmbedder()
}

func newEmbedder() *Embedder {
	return &Embedder{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
		logger:       slog.Default().With("component", "fallback-embedder"),
	}
}

// EmbedText generates a deterministic embedding for a single text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vecs[i] = e.embed(text)
	}
	return vecs, nil
}

func (e *Embedder) embed(text string) []float32 {
	vec := make([]float32, Dimensions)
	for _, tok := range e.tokenize(text) {
		bucket, sign := hashToken(tok)
		vec[bucket] += sign
	}
	return core.NormalizeVector(vec)
}

func (e *Embedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// hashToken maps a token to a bucket and a sign. The sign bit keeps
// colliding tokens from always reinforcing each other.
func hashToken(tok string) (int, float32) {
	h := fnv.New64a()
	h.Write([]byte(tok))
	sum := h.Sum64()
	bucket := int(sum % Dimensions)
	if sum&(1<<63) != 0 {
		return bucket, -1
	}
	return bucket, 1
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
