package security

import (
	"path"
	"strings"
)

// SanitizeFilename produces a storage-safe filename from untrusted input.
// Path separators, traversal sequences, and control characters are
// stripped. An empty result falls back to a name derived from the
// content hash, which also disambiguates collisions.
func SanitizeFilename(filename, contentHash string) string {
	// Keep only the final path element against both separator styles.
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = path.Base(filename)

	var b strings.Builder
	for _, r := range filename {
		switch {
		case r < 0x20 || r == 0x7F:
			// drop control characters
		case strings.ContainsRune(`<>:"|?*/`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	sanitized := strings.Trim(b.String(), " .")
	if sanitized == "" || sanitized == "_" {
		sanitized = "document_" + shortHash(contentHash)
	}
	return sanitized
}

// DisambiguateFilename appends a short content-hash suffix, keeping the
// extension. Used when two distinct uploads sanitize to the same name.
func DisambiguateFilename(sanitized, contentHash string) string {
	ext := path.Ext(sanitized)
	stem := strings.TrimSuffix(sanitized, ext)
	return stem + "_" + shortHash(contentHash) + ext
}

func shortHash(contentHash string) string {
	if len(contentHash) > 8 {
		return contentHash[:8]
	}
	return contentHash
}
