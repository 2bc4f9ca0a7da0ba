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

import "errors"

// Validation errors. Surfaced to the caller; never retried.
var (
	// ErrUnsupportedFormat indicates the detected file type is not in the allowed set.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrOversizeFile indicates the file exceeds the configured maximum size.
	ErrOversizeFile = errors.New("file exceeds maximum size")

	// ErrEmptyFile indicates a zero-length upload.
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidFilename indicates a missing or unusable filename.
	ErrInvalidFilename = errors.New("invalid filename")
)

// Security errors. Surfaced and logged for audit; never retried.
var (
	// ErrMaliciousContent indicates executable signatures or embedded
	// script content were found during the security scan.
	ErrMaliciousContent = errors.New("malicious content detected")
)

// Pipeline errors.
var (
	// ErrExtractionFailed indicates zero usable content could be extracted.
	// The document is not persisted.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrIndexCorruption indicates the vector index is unreadable or
	// inconsistent for a document. Fails the specific call only.
	ErrIndexCorruption = errors.New("vector index corrupted")

	// ErrAnalysisUnavailable indicates the analysis service produced no
	// usable result. Processing continues degraded.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
)

// Domain validation errors.
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyContentHash indicates the ContentHash field is empty.
	ErrEmptyContentHash = errors.New("content hash cannot be empty")

	// ErrEmptyFilename indicates the Filename field is empty.
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// ErrChunkOffsets indicates chunk offsets are inconsistent with its text.
	ErrChunkOffsets = errors.New("chunk offsets do not match text")

	// ErrChunkCoverage indicates a document's chunks do not cover its text.
	ErrChunkCoverage = errors.New("chunks do not cover extracted text")
)
