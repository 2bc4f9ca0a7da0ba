package security

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/poiesic/docmind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestScannerScan(t *testing.T) {
	scanner := NewScanner()

	t.Run("accepts plain text", func(t *testing.T) {
		verdict, err := scanner.Scan([]byte("hello, quarterly report"), "notes.txt", 23)
		require.NoError(t, err)
		assert.Equal(t, "txt", verdict.Format)
		assert.Equal(t, "notes.txt", verdict.SanitizedFilename)
		assert.NotEmpty(t, verdict.ContentHash)
	})

	t.Run("accepts csv by extension", func(t *testing.T) {
		verdict, err := scanner.Scan([]byte("a,b,c\n1,2,3\n"), "data.csv", 12)
		require.NoError(t, err)
		assert.Equal(t, "csv", verdict.Format)
	})

	t.Run("accepts pdf signature", func(t *testing.T) {
		raw := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\ncontent")
		verdict, err := scanner.Scan(raw, "report.pdf", int64(len(raw)))
		require.NoError(t, err)
		assert.Equal(t, "pdf", verdict.Format)
	})

	t.Run("detects docx from zip entries", func(t *testing.T) {
		raw := buildZip(t, map[string]string{
			"[Content_Types].xml":   "<Types/>",
			"word/document.xml":     "<w:document/>",
			"word/_rels/.rels":      "",
			"docProps/core.xml":     "",
		})
		verdict, err := scanner.Scan(raw, "renamed.bin.docx", int64(len(raw)))
		require.NoError(t, err)
		assert.Equal(t, "docx", verdict.Format)
	})

	t.Run("rejects executable with spoofed extension", func(t *testing.T) {
		raw := append([]byte{0x4D, 0x5A}, bytes.Repeat([]byte{0x00}, 64)...)
		_, err := scanner.Scan(raw, "invoice.pdf", int64(len(raw)))
		assert.ErrorIs(t, err, core.ErrMaliciousContent)
	})

	t.Run("rejects elf binary", func(t *testing.T) {
		raw := append([]byte{0x7F, 0x45, 0x4C, 0x46}, bytes.Repeat([]byte{0x01}, 32)...)
		_, err := scanner.Scan(raw, "report.txt", int64(len(raw)))
		assert.ErrorIs(t, err, core.ErrMaliciousContent)
	})

	t.Run("rejects macro enabled docx", func(t *testing.T) {
		raw := buildZip(t, map[string]string{
			"word/document.xml":   "<w:document/>",
			"word/vbaProject.bin": "macro bytes",
		})
		_, err := scanner.Scan(raw, "macros.docx", int64(len(raw)))
		assert.ErrorIs(t, err, core.ErrMaliciousContent)
	})

	t.Run("rejects script content in text", func(t *testing.T) {
		raw := []byte("totally innocent\n<script>alert(1)</script>\n")
		_, err := scanner.Scan(raw, "innocent.txt", int64(len(raw)))
		assert.ErrorIs(t, err, core.ErrMaliciousContent)
	})

	t.Run("rejects script content deep in a large file", func(t *testing.T) {
		padding := bytes.Repeat([]byte("region,revenue\n"), 1<<17)
		raw := append(padding, []byte("<script>alert(1)</script>\n")...)
		_, err := scanner.Scan(raw, "huge.csv", int64(len(raw)))
		assert.ErrorIs(t, err, core.ErrMaliciousContent)
	})

	t.Run("rejects oversize by declared size", func(t *testing.T) {
		_, err := scanner.Scan([]byte("small"), "big.txt", DefaultMaxFileSize+1)
		assert.ErrorIs(t, err, core.ErrOversizeFile)
	})

	t.Run("rejects empty file", func(t *testing.T) {
		_, err := scanner.Scan(nil, "empty.txt", 0)
		assert.ErrorIs(t, err, core.ErrEmptyFile)
	})

	t.Run("rejects unknown binary format", func(t *testing.T) {
		raw := []byte{0x00, 0x01, 0x02, 0x03, 0xFF}
		_, err := scanner.Scan(raw, "mystery.dat", int64(len(raw)))
		assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	})

	t.Run("custom size limit", func(t *testing.T) {
		small := NewScanner(WithMaxFileSize(4))
		_, err := small.Scan([]byte("hello"), "notes.txt", 5)
		assert.ErrorIs(t, err, core.ErrOversizeFile)
	})
}

func TestSanitizeFilename(t *testing.T) {
	hash := strings.Repeat("ab", 32)

	t.Run("strips traversal", func(t *testing.T) {
		assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd", hash))
	})

	t.Run("strips windows paths", func(t *testing.T) {
		assert.Equal(t, "report.docx", SanitizeFilename(`C:\Users\x\report.docx`, hash))
	})

	t.Run("replaces dangerous characters", func(t *testing.T) {
		assert.Equal(t, "a_b_c.txt", SanitizeFilename(`a<b>c.txt`, hash))
	})

	t.Run("drops control characters", func(t *testing.T) {
		assert.Equal(t, "name.txt", SanitizeFilename("na\x00me\x1b.txt", hash))
	})

	t.Run("empty falls back to hash name", func(t *testing.T) {
		assert.Equal(t, "document_abababab", SanitizeFilename("...", hash))
	})
}

func TestDisambiguateFilename(t *testing.T) {
	hash := strings.Repeat("cd", 32)
	assert.Equal(t, "report_cdcdcdcd.pdf", DisambiguateFilename("report.pdf", hash))
	assert.Equal(t, "notes_cdcdcdcd", DisambiguateFilename("notes", hash))
}
