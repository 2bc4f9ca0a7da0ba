package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent([]byte("quarterly report"))
		id2 := IDFromContent([]byte("quarterly report"))
		assert.Equal(t, id1, id2)
	})

	t.Run("different content different id", func(t *testing.T) {
		id1 := IDFromContent([]byte("quarterly report"))
		id2 := IDFromContent([]byte("annual report"))
		assert.NotEqual(t, id1, id2)
	})
}

func TestHashContent(t *testing.T) {
	h1 := HashContent([]byte("some bytes"))
	h2 := HashContent([]byte("some bytes"))
	h3 := HashContent([]byte("other bytes"))

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // 32 bytes hex encoded
}

func TestDocumentTypeRoundTrip(t *testing.T) {
	for _, dt := range []DocumentType{
		DocumentTypeUnclassified,
		DocumentTypeFinancial,
		DocumentTypeTechnical,
		DocumentTypeStrategic,
		DocumentTypeLegal,
		DocumentTypeOperational,
	} {
		assert.Equal(t, dt, ParseDocumentType(dt.String()))
	}
	assert.Equal(t, DocumentTypeUnclassified, ParseDocumentType("bogus"))
}

func TestSensitivityLevelRoundTrip(t *testing.T) {
	for _, sl := range []SensitivityLevel{
		SensitivityPublic,
		SensitivityInternal,
		SensitivityConfidential,
		SensitivityRestricted,
	} {
		assert.Equal(t, sl, ParseSensitivityLevel(sl.String()))
	}
	assert.Equal(t, SensitivityInternal, ParseSensitivityLevel("bogus"))
}

func TestLifecycleStateTerminal(t *testing.T) {
	assert.True(t, StateIndexed.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateUploaded.Terminal())
	assert.False(t, StateEmbedding.Terminal())
}

func TestDocumentIndexed(t *testing.T) {
	doc := &Document{State: StateIndexed, ProcessedAt: time.Now().UTC()}
	assert.True(t, doc.Indexed())

	t.Run("not indexed without processed_at", func(t *testing.T) {
		d := &Document{State: StateIndexed}
		assert.False(t, d.Indexed())
	})

	t.Run("not indexed when tombstoned", func(t *testing.T) {
		d := &Document{State: StateIndexed, ProcessedAt: time.Now().UTC(), Deleted: true}
		assert.False(t, d.Indexed())
	})

	t.Run("not indexed mid pipeline", func(t *testing.T) {
		d := &Document{State: StateEmbedding, ProcessedAt: time.Now().UTC()}
		assert.False(t, d.Indexed())
	})
}
