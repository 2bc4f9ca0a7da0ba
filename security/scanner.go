// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package security

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/docmind/core"
)

const (
	// DefaultMaxFileSize is the default upload size limit (50 MB).
	DefaultMaxFileSize = 50 * 1024 * 1024
)

// Verdict is the outcome of a successful scan.
type Verdict struct {
	// Format is the detected file format: pdf, docx, doc, xlsx, xls, txt, csv.
	// Detection is byte-signature based; the declared extension is only a
	// tie-breaker for ambiguous container formats.
	Format string

	// SanitizedFilename is safe for storage: no path separators, no
	// control characters, no traversal sequences.
	SanitizedFilename string

	// ContentHash is the BLAKE2b-256 hash of the raw bytes.
	ContentHash string
}

// Scanner validates uploaded bytes before anything else touches them.
// It is pure validation: nothing is persisted on rejection.
type Scanner struct {
	maxFileSize int64
	logger      *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxFileSize overrides the upload size limit.
func WithMaxFileSize(max int64) Option {
	return func(s *Scanner) {
		if max > 0 {
			s.maxFileSize = max
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner creates a scanner with the default limits.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		maxFileSize: DefaultMaxFileSize,
		logger:      slog.Default().With("component", "security-scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan validates raw upload bytes against size limits, the allowed format
// set, and executable/script signatures. Rejections are logged for audit.
func (s *Scanner) Scan(raw []byte, declaredFilename string, declaredSize int64) (*Verdict, error) {
	if len(raw) == 0 {
		return nil, core.ErrEmptyFile
	}
	if declaredFilename == "" {
		return nil, core.ErrInvalidFilename
	}
	if declaredSize > s.maxFileSize || int64(len(raw)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", core.ErrOversizeFile, max(declaredSize, int64(len(raw))), s.maxFileSize)
	}

	if sig := matchExecutableSignature(raw); sig != "" {
		s.logger.Warn("rejected executable upload", "filename", declaredFilename, "signature", sig)
		return nil, fmt.Errorf("%w: executable signature %s", core.ErrMaliciousContent, sig)
	}

	format, err := DetectFormat(raw, declaredFilename)
	if err != nil {
		return nil, err
	}

	// Containers may smuggle macros past the signature check.
	switch format {
	case "docx", "xlsx":
		if hasEmbeddedMacros(raw) {
			s.logger.Warn("rejected document with embedded macros", "filename", declaredFilename, "format", format)
			return nil, fmt.Errorf("%w: embedded macros", core.ErrMaliciousContent)
		}
	case "txt", "csv":
		if pattern := matchScriptPattern(raw); pattern != "" {
			s.logger.Warn("rejected text upload with script content", "filename", declaredFilename, "pattern", pattern)
			return nil, fmt.Errorf("%w: script content (%s)", core.ErrMaliciousContent, pattern)
		}
	}

	hash := core.HashContent(raw)
	return &Verdict{
		Format:            format,
		SanitizedFilename: SanitizeFilename(declaredFilename, hash),
		ContentHash:       hash,
	}, nil
}
