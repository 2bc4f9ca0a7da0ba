package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// defaultMockDimensions is the vector width of the built-in
// deterministic behavior.
const defaultMockDimensions = 384

// MockEmbedder is a test double for ai.Embedder. Function fields
// override the built-in deterministic behavior when set.
type MockEmbedder struct {
	EmbedTextFunc  func(ctx context.Context, text string) ([]float32, error)
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder returns the concrete type so tests can inspect it.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return hashVector(text, defaultMockDimensions), nil
}

func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++
	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = hashVector(text, defaultMockDimensions)
	}
	return vecs, nil
}

// CallCount returns how many times any embed method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// hashVector derives a unit vector from the text's FNV hash, so equal
// texts always embed identically.
func hashVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	state := h.Sum32()

	vec := make([]float32, dim)
	var sum float64
	for i := range vec {
		state = state*1664525 + 1013904223 // LCG step
		vec[i] = float32(state%1000) / 1000.0
		sum += float64(vec[i]) * float64(vec[i])
	}
	if sum > 0 {
		inv := float32(1.0 / math.Sqrt(sum))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}
