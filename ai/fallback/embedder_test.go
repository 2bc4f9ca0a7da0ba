package fallback

import (
	"context"
	"testing"

	"github.com/poiesic/docmind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedderDeterminism(t *testing.T) {
	e := newEmbedder()
	ctx := context.Background()

	a, err := e.EmbedText(ctx, "Q4 revenue grew 12% year over year")
	require.NoError(t, err)
	b, err := e.EmbedText(ctx, "Q4 revenue grew 12% year over year")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, Dimensions)
	assert.InDelta(t, 1.0, float64(core.DotProduct(a, a)), 1e-5)
}

func TestEmbedderSimilarityOrdering(t *testing.T) {
	e := newEmbedder()
	ctx := context.Background()

	doc, err := e.EmbedText(ctx, "quarterly revenue and profit figures for the enterprise segment")
	require.NoError(t, err)
	related, err := e.EmbedText(ctx, "revenue and profit for the quarter")
	require.NoError(t, err)
	unrelated, err := e.EmbedText(ctx, "penguins huddle tightly against antarctic storms")
	require.NoError(t, err)

	assert.Greater(t, core.DotProduct(doc, related), core.DotProduct(doc, unrelated))
}

func TestEmbedTextsBatch(t *testing.T) {
	e := newEmbedder()
	vecs, err := e.EmbedTexts(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.NotEqual(t, vecs[0], vecs[1])

	single, err := e.EmbedText(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, single, vecs[0])
}

func TestEmbedderEmptyText(t *testing.T) {
	e := newEmbedder()
	vec, err := e.EmbedText(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, vec, Dimensions)
	assert.Zero(t, core.DotProduct(vec, vec))
}
