package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

func newTestIndex(t *testing.T) storage.VectorIndex {
	t.Helper()
	_, index, backend, err := NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return index
}

func unitChunks(docID core.ID, vectors ...[]float32) []*core.Chunk {
	chunks := make([]*core.Chunk, len(vectors))
	offset := 0
	for i, v := range vectors {
		text := "chunk text"
		chunks[i] = &core.Chunk{
			DocumentId:  docID,
			Index:       i,
			Text:        text,
			StartOffset: offset,
			EndOffset:   offset + len(text),
			Vector:      core.NormalizeVector(v),
		}
		offset += len(text)
	}
	return chunks
}

func allowSet(ids ...core.ID) map[core.ID]struct{} {
	m := make(map[core.ID]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func TestVectorIndex_IndexAndGet(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	docID := core.ID(1)
	chunks := unitChunks(docID, []float32{1, 0, 0}, []float32{0, 1, 0}, []float32{0, 0, 1})
	require.NoError(t, index.IndexChunks(ctx, docID, chunks))

	got, err := index.GetChunks(ctx, docID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, docID, c.DocumentId)
	}
}

func TestVectorIndex_IndexReplacesPrevious(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	docID := core.ID(2)
	require.NoError(t, index.IndexChunks(ctx, docID,
		unitChunks(docID, []float32{1, 0}, []float32{0, 1}, []float32{1, 1})))
	require.NoError(t, index.IndexChunks(ctx, docID,
		unitChunks(docID, []float32{1, 0})))

	got, err := index.GetChunks(ctx, docID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestVectorIndex_IndexRejectsForeignChunk(t *testing.T) {
	index := newTestIndex(t)

	chunks := unitChunks(core.ID(7), []float32{1, 0})
	err := index.IndexChunks(context.Background(), core.ID(8), chunks)
	assert.ErrorIs(t, err, core.ErrInvalidChunk)
}

func TestVectorIndex_Search(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	docA := core.ID(10)
	docB := core.ID(11)
	require.NoError(t, index.IndexChunks(ctx, docA,
		unitChunks(docA, []float32{1, 0, 0}, []float32{0.9, 0.1, 0})))
	require.NoError(t, index.IndexChunks(ctx, docB,
		unitChunks(docB, []float32{0, 1, 0})))

	query := core.NormalizeVector([]float32{1, 0, 0})

	hits, err := index.Search(ctx, query, allowSet(docA, docB), 0.5, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, docA, hits[0].DocumentId)
	assert.Equal(t, docA, hits[1].DocumentId)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestVectorIndex_SearchHonorsAllowed(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	docA := core.ID(20)
	docB := core.ID(21)
	require.NoError(t, index.IndexChunks(ctx, docA, unitChunks(docA, []float32{1, 0})))
	require.NoError(t, index.IndexChunks(ctx, docB, unitChunks(docB, []float32{1, 0})))

	query := core.NormalizeVector([]float32{1, 0})

	hits, err := index.Search(ctx, query, allowSet(docB), 0.5, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, docB, hits[0].DocumentId)

	hits, err = index.Search(ctx, query, nil, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorIndex_SearchSkipsMismatchedDimensions(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	// A document embedded under a different scheme has a different
	// vector width; its chunks never score.
	docID := core.ID(30)
	require.NoError(t, index.IndexChunks(ctx, docID, unitChunks(docID, []float32{1, 0, 0, 0})))

	query := core.NormalizeVector([]float32{1, 0})
	hits, err := index.Search(ctx, query, allowSet(docID), 0.0, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorIndex_SearchLimit(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	docID := core.ID(40)
	require.NoError(t, index.IndexChunks(ctx, docID,
		unitChunks(docID, []float32{1, 0}, []float32{0.9, 0.1}, []float32{0.8, 0.2})))

	query := core.NormalizeVector([]float32{1, 0})
	hits, err := index.Search(ctx, query, allowSet(docID), 0.5, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestVectorIndex_DeleteChunks(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	docA := core.ID(50)
	docB := core.ID(51)
	require.NoError(t, index.IndexChunks(ctx, docA,
		unitChunks(docA, []float32{1, 0}, []float32{0, 1})))
	require.NoError(t, index.IndexChunks(ctx, docB, unitChunks(docB, []float32{1, 0})))

	require.NoError(t, index.DeleteChunks(ctx, docA))

	got, err := index.GetChunks(ctx, docA)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Sibling documents keep their chunks.
	got, err = index.GetChunks(ctx, docB)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Deleting an absent document is a no-op.
	assert.NoError(t, index.DeleteChunks(ctx, docA))
}
