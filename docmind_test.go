package docmind

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/search"
	"github.com/poiesic/docmind/storage"
)

const quarterlyReport = `Quarterly Report

Q4 revenue grew 12% year over year while profit margins improved and
budget discipline held across departments. An excellent result and a
strong foundation for further growth.

Acme Corp reported total earnings of $4.2 million. John Smith will
lead the investor briefing on January 15, 2025.`

const runbook = `Deployment Runbook

The rollout process uses a staged workflow: canary first, then the
remaining production clusters. Operations should monitor throughput
and efficiency dashboards during each procedure step.`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New("", WithoutProvider(), WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_UploadAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Upload(ctx, []byte(quarterlyReport), "q4_report.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, core.StateIndexed, doc.State)
	assert.Equal(t, core.DocumentTypeFinancial, doc.DocumentType)
	assert.NotEmpty(t, doc.Summary)

	got, err := store.Get(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, doc.Id, got.Id)
	assert.Equal(t, "q4_report.txt", got.Filename)
}

func TestStore_SearchFindsRelevantDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	financial, err := store.Upload(ctx, []byte(quarterlyReport), "q4_report.txt", nil)
	require.NoError(t, err)
	_, err = store.Upload(ctx, []byte(runbook), "runbook.txt", nil)
	require.NoError(t, err)

	results, err := store.Search(ctx, search.Query{
		Text:          "Q4 revenue profit margins",
		MinSimilarity: 0.1,
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, financial.Id, results[0].Document.Id)
	assert.NotEmpty(t, results[0].Excerpts)
}

func TestStore_SearchWithDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	financial, err := store.Upload(ctx, []byte(quarterlyReport), "q4_report.txt", nil)
	require.NoError(t, err)
	_, err = store.Upload(ctx, []byte(runbook), "runbook.txt", nil)
	require.NoError(t, err)

	// Zero-value query knobs: default threshold and cap.
	results, err := store.Search(ctx, search.Query{Text: "Q4 revenue grew 12% year over year"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, financial.Id, results[0].Document.Id)
	assert.LessOrEqual(t, results[0].Score, float32(1.0))
}

func TestStore_GetContext(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Upload(ctx, []byte(runbook), "runbook.txt", nil)
	require.NoError(t, err)

	contexts, err := store.GetContext(ctx, doc.Id, "canary rollout process", 5)
	require.NoError(t, err)
	require.NotEmpty(t, contexts)
	for _, c := range contexts {
		assert.Equal(t, doc.Id, c.DocumentId)
	}
}

func TestStore_UploadDeduplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Upload(ctx, []byte(quarterlyReport), "a.txt", nil)
	require.NoError(t, err)
	second, err := store.Upload(ctx, []byte(quarterlyReport), "b.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)

	docs, err := store.List(ctx, storage.DocumentFilter{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestStore_RejectsMaliciousUpload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	elf := append([]byte{0x7f, 'E', 'L', 'F'}, make([]byte, 64)...)
	_, err := store.Upload(ctx, elf, "totally_a_report.txt", nil)
	assert.ErrorIs(t, err, core.ErrMaliciousContent)

	docs, err := store.List(ctx, storage.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStore_DeleteRemovesEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Upload(ctx, []byte(quarterlyReport), "q4_report.txt", nil)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, doc.Id))

	_, err = store.Get(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	chunks, err := store.VectorIndex().GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	results, err := store.Search(ctx, search.Query{Text: "Q4 revenue", MinSimilarity: 0.05})
	require.NoError(t, err)
	assert.Empty(t, results)

	// The content hash is free again.
	again, err := store.Upload(ctx, []byte(quarterlyReport), "q4_report.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, core.StateIndexed, again.State)
}

func TestStore_DeleteMissing(t *testing.T) {
	store := newTestStore(t)
	assert.ErrorIs(t, store.Delete(context.Background(), core.ID(1234)), storage.ErrNotFound)
}

func TestStore_ListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upload(ctx, []byte(quarterlyReport), "q4_report.txt", &core.UploadMetadata{Department: "finance"})
	require.NoError(t, err)
	_, err = store.Upload(ctx, []byte(runbook), "runbook.txt", &core.UploadMetadata{Department: "operations"})
	require.NoError(t, err)

	finance, err := store.List(ctx, storage.DocumentFilter{Department: "finance"})
	require.NoError(t, err)
	require.Len(t, finance, 1)
	assert.Equal(t, "q4_report.txt", finance[0].Filename)
}

func TestStore_Stats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upload(ctx, []byte(quarterlyReport), "q4_report.txt", nil)
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocumentCount)
	assert.Greater(t, stats.ChunkCount, 0)
	assert.Equal(t, 1, stats.ByState[core.StateIndexed])
}

func TestStore_MigrateWithoutProvider(t *testing.T) {
	store := newTestStore(t)
	err := store.MigrateEmbeddings(context.Background(), discardWriter{})
	assert.Error(t, err)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
