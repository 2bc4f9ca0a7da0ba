package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := &Document{Filename: "report.pdf", ContentHash: "abc123"}
		assert.NoError(t, ValidateDocument(doc))
	})

	t.Run("nil document", func(t *testing.T) {
		err := ValidateDocument(nil)
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("missing filename", func(t *testing.T) {
		err := ValidateDocument(&Document{ContentHash: "abc123"})
		assert.ErrorIs(t, err, ErrEmptyFilename)
	})

	t.Run("missing content hash", func(t *testing.T) {
		err := ValidateDocument(&Document{Filename: "report.pdf"})
		assert.ErrorIs(t, err, ErrEmptyContentHash)
	})
}

func TestValidateChunk(t *testing.T) {
	t.Run("valid chunk", func(t *testing.T) {
		c := &Chunk{Text: "hello", StartOffset: 10, EndOffset: 15}
		assert.NoError(t, ValidateChunk(c))
	})

	t.Run("offset length mismatch", func(t *testing.T) {
		c := &Chunk{Text: "hello", StartOffset: 0, EndOffset: 3}
		assert.ErrorIs(t, ValidateChunk(c), ErrChunkOffsets)
	})

	t.Run("negative index", func(t *testing.T) {
		c := &Chunk{Text: "hello", Index: -1, StartOffset: 0, EndOffset: 5}
		assert.ErrorIs(t, ValidateChunk(c), ErrInvalidChunk)
	})

	t.Run("empty text", func(t *testing.T) {
		assert.ErrorIs(t, ValidateChunk(&Chunk{}), ErrInvalidChunk)
	})
}

func TestValidateChunkCoverage(t *testing.T) {
	text := "0123456789abcdefghij"

	t.Run("full coverage with overlap", func(t *testing.T) {
		chunks := []Chunk{
			{Index: 0, Text: text[0:8], StartOffset: 0, EndOffset: 8},
			{Index: 1, Text: text[6:14], StartOffset: 6, EndOffset: 14},
			{Index: 2, Text: text[12:20], StartOffset: 12, EndOffset: 20},
		}
		assert.NoError(t, ValidateChunkCoverage(text, chunks))
	})

	t.Run("gap detected", func(t *testing.T) {
		chunks := []Chunk{
			{Index: 0, Text: text[0:8], StartOffset: 0, EndOffset: 8},
			{Index: 1, Text: text[10:20], StartOffset: 10, EndOffset: 20},
		}
		assert.ErrorIs(t, ValidateChunkCoverage(text, chunks), ErrChunkCoverage)
	})

	t.Run("incomplete tail", func(t *testing.T) {
		chunks := []Chunk{
			{Index: 0, Text: text[0:8], StartOffset: 0, EndOffset: 8},
		}
		assert.ErrorIs(t, ValidateChunkCoverage(text, chunks), ErrChunkCoverage)
	})

	t.Run("empty text empty chunks", func(t *testing.T) {
		require.NoError(t, ValidateChunkCoverage("", nil))
	})

	t.Run("non dense indices", func(t *testing.T) {
		chunks := []Chunk{
			{Index: 0, Text: text[0:10], StartOffset: 0, EndOffset: 10},
			{Index: 2, Text: text[10:20], StartOffset: 10, EndOffset: 20},
		}
		assert.ErrorIs(t, ValidateChunkCoverage(text, chunks), ErrChunkCoverage)
	})
}
