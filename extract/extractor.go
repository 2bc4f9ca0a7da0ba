// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package extract

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/docmind/core"
)

// Result is the outcome of a successful extraction. Breaks are byte
// offsets into Text where a new page, sheet or record begins, so
// chunking can prefer those boundaries. Warnings carry non-fatal
// problems, for example pages that yielded no text.
type Result struct {
	Text     string
	Breaks   []int
	Warnings []string
}

// Extractor turns a raw file of one format into plain text.
type Extractor interface {
	Extract(raw []byte) (*Result, error)
}

// Registry dispatches extraction by detected format.
type Registry struct {
	extractors map[string]Extractor
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used by the registry and the extractors
// it constructs.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry builds a registry covering every allowed format.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "extract")
	r.extractors = map[string]Extractor{
		"pdf":  &pdfExtractor{logger: r.logger},
		"docx": &docxExtractor{},
		"doc":  &legacyDocExtractor{},
		"xlsx": &xlsxExtractor{},
		"xls":  &legacyXLSExtractor{logger: r.logger},
		"csv":  &csvExtractor{},
		"txt":  &txtExtractor{},
	}
	return r
}

// Extract runs the extractor registered for format and rejects results
// with no usable text.
func (r *Registry) Extract(format string, raw []byte) (*Result, error) {
	ex, ok := r.extractors[format]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %q", core.ErrUnsupportedFormat, format)
	}
	res, err := ex.Extract(raw)
	if err != nil {
		return nil, err
	}
	res.Text = normalizeText(res.Text)
	res.Breaks = sanitizeBreaks(res.Text, res.Breaks)
	if strings.TrimSpace(res.Text) == "" {
		return nil, fmt.Errorf("%w: %s document contains no extractable text", core.ErrExtractionFailed, format)
	}
	for _, w := range res.Warnings {
		r.logger.Warn("extraction warning", "format", format, "warning", w)
	}
	return res, nil
}

// normalizeText canonicalizes line endings and collapses runs of more
// than two blank lines. Offsets computed downstream are relative to
// the normalized text.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for strings.Contains(text, "\n\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n\n", "\n\n\n")
	}
	return strings.TrimRight(text, "\n ") + "\n"
}

// sanitizeBreaks keeps only offsets that still land on a line start
// inside the normalized text, sorted and deduplicated. Normalization
// can shift or swallow offsets the extractor recorded.
func sanitizeBreaks(text string, breaks []int) []int {
	if len(breaks) == 0 {
		return nil
	}
	sort.Ints(breaks)
	out := breaks[:0]
	prev := -1
	for _, b := range breaks {
		if b <= 0 || b >= len(text) || b == prev {
			continue
		}
		if text[b-1] != '\n' {
			continue
		}
		out = append(out, b)
		prev = b
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
