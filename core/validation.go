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


package core

import (
	"fmt"
	"sort"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Filename must not be empty
//   - ContentHash must not be empty
//
// NOT validated (populated by the pipeline):
//   - ExtractedText, Summary, KeyInsights (set after extraction/analysis)
//   - EmbeddingRef, Scheme (set after embedding)
//   - ProcessedAt (zero until indexed)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilename)
	}
	if doc.ContentHash == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContentHash)
	}
	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Index must be non-negative
//   - EndOffset must exceed StartOffset and match the text length
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if chunk.Text == "" {
		return fmt.Errorf("%w: text is empty", ErrInvalidChunk)
	}
	if chunk.Index < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidChunk, chunk.Index)
	}
	if chunk.StartOffset < 0 || chunk.EndOffset <= chunk.StartOffset {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrChunkOffsets)
	}
	if chunk.EndOffset-chunk.StartOffset != len(chunk.Text) {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrChunkOffsets)
	}
	return nil
}

// ValidateChunkCoverage verifies that the union of chunk spans covers the
// whole text with no gaps, and that chunk indices are unique and dense.
// Adjacent chunks may overlap; the final chunk must end at len(text).
func ValidateChunkCoverage(text string, chunks []Chunk) error {
	if len(chunks) == 0 {
		if len(text) == 0 {
			return nil
		}
		return fmt.Errorf("%w: no chunks for %d bytes of text", ErrChunkCoverage, len(text))
	}

	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	for i, c := range sorted {
		if c.Index != i {
			return fmt.Errorf("%w: chunk indices not dense at %d", ErrChunkCoverage, c.Index)
		}
	}

	if sorted[0].StartOffset != 0 {
		return fmt.Errorf("%w: first chunk starts at %d", ErrChunkCoverage, sorted[0].StartOffset)
	}
	covered := sorted[0].EndOffset
	for _, c := range sorted[1:] {
		if c.StartOffset > covered {
			return fmt.Errorf("%w: gap at offset %d", ErrChunkCoverage, covered)
		}
		if c.EndOffset > covered {
			covered = c.EndOffset
		}
	}
	if covered != len(text) {
		return fmt.Errorf("%w: covered %d of %d bytes", ErrChunkCoverage, covered, len(text))
	}
	return nil
}
