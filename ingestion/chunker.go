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

package ingestion

import (
	"sort"
	"unicode/utf8"

	"github.com/poiesic/docmind/core"
)

const (
	// DefaultChunkSize is the target chunk window in bytes.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is how far consecutive chunks overlap.
	DefaultChunkOverlap = 200
)

// Chunker splits extracted text into overlapping windows for embedding.
// Windows prefer to end on a sentence or word boundary so that an
// embedding never sees half a word. The union of chunk spans covers the
// whole text.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker. Non-positive size or overlap fall back
// to the defaults; overlap is clamped below size.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{size: size, overlap: overlap}
}

// ChunkText splits text into chunks attributed to docID. Offsets are
// byte offsets into text. breaks are extraction boundaries (page,
// sheet or record starts); a window ending near one snaps to it so a
// chunk does not straddle, say, a spreadsheet row. Returns nil for
// empty text.
func (c *Chunker) ChunkText(docID core.ID, text string, breaks []int) []*core.Chunk {
	if len(text) == 0 {
		return nil
	}

	var chunks []*core.Chunk
	start := 0
	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.breakPoint(text, start, end, breaks)
		}

		chunks = append(chunks, &core.Chunk{
			DocumentId:  docID,
			Index:       len(chunks),
			Text:        text[start:end],
			StartOffset: start,
			EndOffset:   end,
		})

		if end == len(text) {
			break
		}

		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		// Never begin a chunk mid-rune.
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}
	return chunks
}

// breakPoint chooses where to end a window that would otherwise cut at
// limit. It prefers a recorded extraction boundary, then a sentence
// end, then a word boundary, searching back no further than the
// overlap; failing all three it backs up to the nearest rune boundary.
func (c *Chunker) breakPoint(text string, start, limit int, breaks []int) int {
	floor := limit - c.overlap
	if floor < start+1 {
		floor = start + 1
	}

	// Largest recorded boundary in (floor, limit].
	if i := sort.SearchInts(breaks, limit+1); i > 0 && breaks[i-1] > floor {
		return breaks[i-1]
	}

	for i := limit; i > floor; i-- {
		if isSentenceEnd(text, i) {
			return i
		}
	}
	for i := limit; i > floor; i-- {
		if text[i-1] == ' ' || text[i-1] == '\n' || text[i-1] == '\t' {
			return i
		}
	}
	for limit > start+1 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return limit
}

// isSentenceEnd reports whether position i in text immediately follows
// a sentence terminator and whitespace.
func isSentenceEnd(text string, i int) bool {
	if i < 2 || i >= len(text) {
		return false
	}
	prev := text[i-1]
	if prev != ' ' && prev != '\n' {
		return false
	}
	switch text[i-2] {
	case '.', '!', '?':
		return true
	}
	return false
}
