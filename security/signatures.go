package security

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/docmind/core"
)

// Byte-level signatures for native executables. Uploads starting with any
// of these are rejected regardless of extension.
var executableSignatures = []struct {
	name string
	sig  []byte
}{
	{"PE", []byte{0x4D, 0x5A}},
	{"ELF", []byte{0x7F, 0x45, 0x4C, 0x46}},
	{"Mach-O", []byte{0xCA, 0xFE, 0xBA, 0xBE}},
	{"Mach-O", []byte{0xFE, 0xED, 0xFA, 0xCE}},
	{"Mach-O", []byte{0xFE, 0xED, 0xFA, 0xCF}},
	{"Mach-O", []byte{0xCF, 0xFA, 0xED, 0xFE}},
	{"Mach-O", []byte{0xCE, 0xFA, 0xED, 0xFE}},
}

var (
	pdfSignature = []byte("%PDF")
	zipSignature = []byte{0x50, 0x4B, 0x03, 0x04}
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Script patterns scanned in texty uploads. Compiled once.
var scriptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?is)<iframe[^>]*>`),
	regexp.MustCompile(`(?is)<object[^>]*>`),
	regexp.MustCompile(`(?is)<embed[^>]*>`),
}

// matchExecutableSignature returns the name of the matched executable
// format, or "" if the bytes do not look like a native executable.
func matchExecutableSignature(raw []byte) string {
	for _, s := range executableSignatures {
		if bytes.HasPrefix(raw, s.sig) {
			return s.name
		}
	}
	return ""
}

// matchScriptPattern returns the first matched script pattern, or "".
// The whole buffer is scanned; scan is the only gate, so a payload in
// the tail of a large file must not slip through.
func matchScriptPattern(raw []byte) string {
	text := string(raw)
	for _, p := range scriptPatterns {
		if p.MatchString(text) {
			return p.String()
		}
	}
	return ""
}

// DetectFormat determines the true file format from byte signatures.
// The declared extension only disambiguates container formats that share
// a signature (docx/xlsx inside zip, doc/xls inside OLE) when the
// container itself is inconclusive.
func DetectFormat(raw []byte, declaredFilename string) (string, error) {
	switch {
	case bytes.HasPrefix(raw, pdfSignature):
		return "pdf", nil
	case bytes.HasPrefix(raw, zipSignature):
		return detectZipFormat(raw, declaredFilename)
	case bytes.HasPrefix(raw, oleSignature):
		return detectOLEFormat(declaredFilename)
	}

	if looksLikeText(raw) {
		if strings.EqualFold(path.Ext(declaredFilename), ".csv") {
			return "csv", nil
		}
		return "txt", nil
	}

	return "", fmt.Errorf("%w: unrecognized signature", core.ErrUnsupportedFormat)
}

// detectZipFormat inspects the zip central directory to tell DOCX from
// XLSX. A zip that is neither is not an allowed format.
func detectZipFormat(raw []byte, declaredFilename string) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: corrupt zip container", core.ErrUnsupportedFormat)
	}
	for _, f := range r.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return "docx", nil
		case strings.HasPrefix(f.Name, "xl/"):
			return "xlsx", nil
		}
	}
	// Office containers always carry word/ or xl/; fall back to the
	// extension only for a bare [Content_Types].xml skeleton.
	switch strings.ToLower(path.Ext(declaredFilename)) {
	case ".docx":
		return "docx", nil
	case ".xlsx":
		return "xlsx", nil
	}
	return "", fmt.Errorf("%w: zip is not an office document", core.ErrUnsupportedFormat)
}

// detectOLEFormat maps a legacy OLE compound file to doc or xls using
// the declared extension. Both are allowed formats.
func detectOLEFormat(declaredFilename string) (string, error) {
	switch strings.ToLower(path.Ext(declaredFilename)) {
	case ".xls":
		return "xls", nil
	case ".doc":
		return "doc", nil
	default:
		// OLE without a recognizable extension defaults to doc; the
		// extractor decides whether anything can be salvaged.
		return "doc", nil
	}
}

// hasEmbeddedMacros reports whether an office zip container carries a
// VBA project. Macro-enabled documents are rejected outright.
func hasEmbeddedMacros(raw []byte) bool {
	r, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return false
	}
	for _, f := range r.File {
		name := strings.ToLower(f.Name)
		if strings.HasSuffix(name, "vbaproject.bin") || strings.Contains(name, "macros") {
			return true
		}
	}
	return false
}

// looksLikeText reports whether the leading window decodes as UTF-8
// without NUL bytes.
func looksLikeText(raw []byte) bool {
	window := raw
	if len(window) > 1024 {
		window = window[:1024]
	}
	if bytes.IndexByte(window, 0x00) >= 0 {
		return false
	}
	return utf8.Valid(window) || allLatin1Printable(window)
}

func allLatin1Printable(window []byte) bool {
	for _, b := range window {
		if b < 0x09 || (b > 0x0D && b < 0x20) {
			return false
		}
	}
	return true
}
