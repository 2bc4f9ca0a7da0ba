package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docmind/ai/mock"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
	storagebadger "github.com/poiesic/docmind/storage/badger"
)

const financialMemo = `Quarterly Review

Q4 revenue grew 12% against a reduced cost base, and profit margins
improved across every region. The budget for next year assumes the
same investment pace. Overall an excellent and successful quarter.

Acme Corp will present the earnings call on January 15, 2025, led by
John Smith. Total revenue reached $4.2 million.`

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, storage.DocumentRepository, storage.VectorIndex) {
	t.Helper()
	repo, index, backend, err := storagebadger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	pipeline, err := NewPipeline(repo, index, nil, nil, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline, repo, index
}

func TestPipeline_RequiresStores(t *testing.T) {
	repo, index, backend, err := storagebadger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewPipeline(nil, index, nil, nil)
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, err = NewPipeline(repo, nil, nil, nil)
	assert.ErrorIs(t, err, ErrVectorIndexRequired)
}

func TestPipeline_UploadIndexesDocument(t *testing.T) {
	pipeline, repo, index := newTestPipeline(t)
	ctx := context.Background()

	doc, err := pipeline.Upload(ctx, []byte(financialMemo), "q4_review.txt", nil)
	require.NoError(t, err)

	assert.Equal(t, core.StateIndexed, doc.State)
	assert.True(t, doc.Indexed())
	assert.Equal(t, "txt", doc.FileType)
	assert.Equal(t, "q4_review.txt", doc.Filename)
	assert.Equal(t, core.DocumentTypeFinancial, doc.DocumentType)
	assert.NotEmpty(t, doc.Summary)
	assert.False(t, doc.ProcessedAt.IsZero())
	assert.Equal(t, core.SchemeFallback, doc.Scheme)
	assert.True(t, doc.Degraded)

	stored, err := repo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, doc.State, stored.State)

	chunks, err := index.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Len(t, c.Vector, 256)
	}
}

func TestPipeline_UploadWithProviderEmbedder(t *testing.T) {
	repo, index, backend, err := storagebadger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	embedder := NewEmbeddingService(mock.NewMockEmbedder(), nil)
	pipeline, err := NewPipeline(repo, index, nil, embedder)
	require.NoError(t, err)
	defer pipeline.Release()

	doc, err := pipeline.Upload(context.Background(), []byte(financialMemo), "memo.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, core.SchemeProvider, doc.Scheme)
}

func TestPipeline_UploadDeduplicates(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t)
	ctx := context.Background()

	first, err := pipeline.Upload(ctx, []byte(financialMemo), "original.txt", nil)
	require.NoError(t, err)

	second, err := pipeline.Upload(ctx, []byte(financialMemo), "copy_with_other_name.txt", nil)
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, "original.txt", second.Filename, "dedup returns the existing record")
}

func TestPipeline_FilenameCollisionDisambiguated(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t)
	ctx := context.Background()

	first, err := pipeline.Upload(ctx, []byte(financialMemo), "report.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, "report.txt", first.Filename)

	// Different content under the same declared name gets a hash
	// suffix so the two stay tellable apart.
	second, err := pipeline.Upload(ctx, []byte(financialMemo+"\nAmended figures follow.\n"), "report.txt", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.Id, second.Id)
	assert.NotEqual(t, first.Filename, second.Filename)
	assert.Equal(t, "report_"+second.ContentHash[:8]+".txt", second.Filename)
}

func TestPipeline_ConcurrentIdenticalUploads(t *testing.T) {
	pipeline, repo, _ := newTestPipeline(t)
	ctx := context.Background()

	const n = 8
	ids := make([]core.ID, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := pipeline.Upload(ctx, []byte(financialMemo), "memo.txt", nil)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = doc.Id
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}
	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}

	all, err := repo.ListDocuments(ctx, storage.DocumentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPipeline_RejectedUploadPersistsNothing(t *testing.T) {
	pipeline, repo, _ := newTestPipeline(t)
	ctx := context.Background()

	mz := append([]byte{'M', 'Z'}, make([]byte, 100)...)
	_, err := pipeline.Upload(ctx, mz, "innocent.txt", nil)
	require.ErrorIs(t, err, core.ErrMaliciousContent)

	_, err = pipeline.Upload(ctx, nil, "empty.txt", nil)
	require.ErrorIs(t, err, core.ErrEmptyFile)

	all, err := repo.ListDocuments(ctx, storage.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPipeline_TypeHintSkipsClassification(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t)

	meta := &core.UploadMetadata{
		DocumentType: core.DocumentTypeLegal,
		HasTypeHint:  true,
		Title:        "Master Services Agreement",
		Department:   "legal",
		Tags:         []string{"msa"},
	}
	doc, err := pipeline.Upload(context.Background(), []byte(financialMemo), "msa.txt", meta)
	require.NoError(t, err)

	assert.Equal(t, core.DocumentTypeLegal, doc.DocumentType)
	assert.Equal(t, float32(1.0), doc.TypeConfidence)
	assert.Equal(t, "Master Services Agreement", doc.Title)
	assert.Equal(t, "legal", doc.Department)
}

func TestPipeline_UploadAfterInterruptedDelete(t *testing.T) {
	pipeline, repo, _ := newTestPipeline(t)
	ctx := context.Background()

	doc, err := pipeline.Upload(ctx, []byte(financialMemo), "memo.txt", nil)
	require.NoError(t, err)

	// Simulate a delete that crashed after the tombstone write.
	doc.Deleted = true
	require.NoError(t, repo.PutDocument(ctx, doc))

	again, err := pipeline.Upload(ctx, []byte(financialMemo), "memo.txt", nil)
	require.NoError(t, err)
	assert.False(t, again.Deleted)
	assert.Equal(t, core.StateIndexed, again.State)
}

func TestPipeline_EmbeddingErrorFailsUpload(t *testing.T) {
	repo, index, backend, err := storagebadger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	broken := mock.NewMockEmbedder()
	broken.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider down")
	}
	// Provider errors fall back, so a failing provider alone cannot
	// fail the upload; the document still indexes under the fallback
	// scheme.
	embedder := NewEmbeddingService(broken, nil)
	pipeline, err := NewPipeline(repo, index, nil, embedder,
		WithChunker(NewChunker(200, 40)))
	require.NoError(t, err)
	defer pipeline.Release()

	doc, err := pipeline.Upload(context.Background(), []byte(financialMemo), "memo.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, core.SchemeFallback, doc.Scheme)
	assert.True(t, doc.Degraded)
}

func TestPipeline_Reanalyze(t *testing.T) {
	pipeline, repo, _ := newTestPipeline(t)
	ctx := context.Background()

	doc, err := pipeline.Upload(ctx, []byte(financialMemo), "memo.txt", nil)
	require.NoError(t, err)

	// Blank the summary, then ask for re-analysis.
	doc.Summary = ""
	require.NoError(t, repo.PutDocument(ctx, doc))
	require.NoError(t, pipeline.Reanalyze(doc.Id))

	require.Eventually(t, func() bool {
		got, err := repo.GetDocument(ctx, doc.Id)
		return err == nil && got.Summary != ""
	}, 5*time.Second, 10*time.Millisecond)
}
