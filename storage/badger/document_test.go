package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

func newTestRepo(t *testing.T) storage.DocumentRepository {
	t.Helper()
	repo, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return repo
}

func testDocument(content string) *core.Document {
	raw := []byte(content)
	return &core.Document{
		Id:          core.IDFromContent(raw),
		Filename:    "report.txt",
		FileType:    "txt",
		FileSize:    int64(len(raw)),
		ContentHash: core.HashContent(raw),
		State:       core.StateUploaded,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestDocumentRepository_PutGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := testDocument("quarterly results")
	doc.Summary = "Revenue grew."
	doc.DocumentType = core.DocumentTypeFinancial
	doc.Tags = []string{"q4", "finance"}

	require.NoError(t, repo.PutDocument(ctx, doc))

	got, err := repo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, doc.Id, got.Id)
	assert.Equal(t, "report.txt", got.Filename)
	assert.Equal(t, "Revenue grew.", got.Summary)
	assert.Equal(t, core.DocumentTypeFinancial, got.DocumentType)
	assert.Equal(t, []string{"q4", "finance"}, got.Tags)
}

func TestDocumentRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetDocument(context.Background(), core.ID(42))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentRepository_PutInvalid(t *testing.T) {
	repo := newTestRepo(t)

	doc := testDocument("x")
	doc.Filename = ""
	err := repo.PutDocument(context.Background(), doc)
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}

func TestDocumentRepository_FindByContentHash(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := testDocument("dedup me")
	require.NoError(t, repo.PutDocument(ctx, doc))

	found, err := repo.FindByContentHash(ctx, doc.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, doc.Id, found.Id)

	_, err = repo.FindByContentHash(ctx, core.HashContent([]byte("other")))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentRepository_ListFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		doc := testDocument(fmt.Sprintf("doc %d", i))
		doc.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		doc.State = core.StateIndexed
		if i%2 == 0 {
			doc.DocumentType = core.DocumentTypeFinancial
			doc.Department = "finance"
		} else {
			doc.DocumentType = core.DocumentTypeTechnical
			doc.Department = "engineering"
		}
		require.NoError(t, repo.PutDocument(ctx, doc))
	}

	all, err := repo.ListDocuments(ctx, storage.DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "expected newest first")
	}

	financial, err := repo.ListDocuments(ctx, storage.DocumentFilter{
		Types: []core.DocumentType{core.DocumentTypeFinancial},
	})
	require.NoError(t, err)
	assert.Len(t, financial, 3)

	eng, err := repo.ListDocuments(ctx, storage.DocumentFilter{Department: "engineering"})
	require.NoError(t, err)
	assert.Len(t, eng, 2)

	none, err := repo.ListDocuments(ctx, storage.DocumentFilter{
		States: []core.LifecycleState{core.StateFailed},
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDocumentRepository_ListPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		doc := testDocument(fmt.Sprintf("page %d", i))
		doc.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.PutDocument(ctx, doc))
	}

	first, err := repo.ListDocuments(ctx, storage.DocumentFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := repo.ListDocuments(ctx, storage.DocumentFilter{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.NotEqual(t, first[0].Id, second[0].Id)

	tail, err := repo.ListDocuments(ctx, storage.DocumentFilter{Offset: 4, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, tail, 1)

	past, err := repo.ListDocuments(ctx, storage.DocumentFilter{Offset: 99})
	require.NoError(t, err)
	assert.Empty(t, past)

	_, err = repo.ListDocuments(ctx, storage.DocumentFilter{Offset: -1})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestDocumentRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := testDocument("delete me")
	require.NoError(t, repo.PutDocument(ctx, doc))
	require.NoError(t, repo.DeleteDocument(ctx, doc.Id))

	_, err := repo.GetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Hash index entry goes with the record.
	_, err = repo.FindByContentHash(ctx, doc.ContentHash)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteDocument(ctx, doc.Id), storage.ErrNotFound)
}

func TestDocumentRepository_TouchAccess(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := testDocument("touch me")
	require.NoError(t, repo.PutDocument(ctx, doc))

	require.NoError(t, repo.TouchAccess(ctx, doc.Id))
	require.NoError(t, repo.TouchAccess(ctx, doc.Id))

	got, err := repo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ReferenceCount)
	assert.False(t, got.LastAccessedAt.IsZero())

	assert.ErrorIs(t, repo.TouchAccess(ctx, core.ID(99)), storage.ErrNotFound)
}

func TestDocumentRepository_RecoverInterrupted(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stuck := testDocument("stuck mid-pipeline")
	stuck.State = core.StateEmbedding
	require.NoError(t, repo.PutDocument(ctx, stuck))

	done := testDocument("fully indexed")
	done.State = core.StateIndexed
	done.ProcessedAt = time.Now().UTC()
	require.NoError(t, repo.PutDocument(ctx, done))

	recovered, err := repo.RecoverInterrupted(ctx)
	require.NoError(t, err)
	require.Len(t, recovered, 1)
	assert.Equal(t, stuck.Id, recovered[0])

	got, err := repo.GetDocument(ctx, stuck.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StateFailed, got.State)

	got, err = repo.GetDocument(ctx, done.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StateIndexed, got.State)
}

func TestDocumentRepository_CollectionStats(t *testing.T) {
	repo, index, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	doc := testDocument("statistics sample")
	doc.State = core.StateIndexed
	doc.DocumentType = core.DocumentTypeTechnical
	require.NoError(t, repo.PutDocument(ctx, doc))

	chunks := []*core.Chunk{
		{DocumentId: doc.Id, Index: 0, Text: "statistics", StartOffset: 0, EndOffset: 10, Vector: []float32{1, 0}},
		{DocumentId: doc.Id, Index: 1, Text: "sample", StartOffset: 11, EndOffset: 17, Vector: []float32{0, 1}},
	}
	require.NoError(t, index.IndexChunks(ctx, doc.Id, chunks))

	stats, err := repo.CollectionStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocumentCount)
	assert.Equal(t, 2, stats.ChunkCount)
	assert.Equal(t, doc.FileSize, stats.TotalBytes)
	assert.Equal(t, 1, stats.ByState[core.StateIndexed])
	assert.Equal(t, 1, stats.ByType[core.DocumentTypeTechnical])
}
