package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Document IDs are derived from content hashes so that byte-identical
// uploads map to the same identity.
type ID uint64

// IDFromContent generates a deterministic ID from content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// HashContent computes the full BLAKE2b-256 content hash as a hex string.
// Used for deduplication and filename disambiguation.
func HashContent(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentType classifies a document by its dominant subject matter.
type DocumentType int

const (
	DocumentTypeUnclassified DocumentType = iota
	DocumentTypeFinancial
	DocumentTypeTechnical
	DocumentTypeStrategic
	DocumentTypeLegal
	DocumentTypeOperational
)

var documentTypeNames = map[DocumentType]string{
	DocumentTypeUnclassified: "unclassified",
	DocumentTypeFinancial:    "financial",
	DocumentTypeTechnical:    "technical",
	DocumentTypeStrategic:    "strategic",
	DocumentTypeLegal:        "legal",
	DocumentTypeOperational:  "operational",
}

func (t DocumentType) String() string {
	if name, ok := documentTypeNames[t]; ok {
		return name
	}
	return "unclassified"
}

// ParseDocumentType maps a string to a DocumentType.
// Unknown strings map to DocumentTypeUnclassified.
func ParseDocumentType(s string) DocumentType {
	for t, name := range documentTypeNames {
		if name == s {
			return t
		}
	}
	return DocumentTypeUnclassified
}

// SensitivityLevel is a classification tag controlling which search
// filters a document is eligible for.
type SensitivityLevel int

const (
	SensitivityPublic SensitivityLevel = iota
	SensitivityInternal
	SensitivityConfidential
	SensitivityRestricted
)

var sensitivityNames = map[SensitivityLevel]string{
	SensitivityPublic:       "public",
	SensitivityInternal:     "internal",
	SensitivityConfidential: "confidential",
	SensitivityRestricted:   "restricted",
}

func (l SensitivityLevel) String() string {
	if name, ok := sensitivityNames[l]; ok {
		return name
	}
	return "internal"
}

// ParseSensitivityLevel maps a string to a SensitivityLevel.
// Unknown strings map to SensitivityInternal.
func ParseSensitivityLevel(s string) SensitivityLevel {
	for l, name := range sensitivityNames {
		if name == s {
			return l
		}
	}
	return SensitivityInternal
}

// LifecycleState tracks a document through the ingestion pipeline.
// Indexed and Failed are terminal. A document left in a non-terminal
// state after a restart must never be treated as Indexed.
type LifecycleState int

const (
	StateUploaded LifecycleState = iota
	StateScanning
	StateExtracting
	StateAnalyzing
	StateEmbedding
	StateIndexed
	StateFailed
)

var lifecycleNames = map[LifecycleState]string{
	StateUploaded:   "uploaded",
	StateScanning:   "scanning",
	StateExtracting: "extracting",
	StateAnalyzing:  "analyzing",
	StateEmbedding:  "embedding",
	StateIndexed:    "indexed",
	StateFailed:     "failed",
}

func (s LifecycleState) String() string {
	if name, ok := lifecycleNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the state is a pipeline end state.
func (s LifecycleState) Terminal() bool {
	return s == StateIndexed || s == StateFailed
}

// EmbeddingScheme identifies which scheme produced a document's vectors.
// Vectors from different schemes are never compared within one search.
type EmbeddingScheme int

const (
	SchemeNone EmbeddingScheme = iota
	SchemeProvider
	SchemeFallback
)

func (s EmbeddingScheme) String() string {
	switch s {
	case SchemeProvider:
		return "provider"
	case SchemeFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Document is the stored representation of an ingested file.
// Created on successful security scan and enriched by analysis and
// embedding. Deletion is two-phase: the record is first marked Deleted
// (hiding it from search), then the chunks and the record itself are
// removed, so a crash mid-delete never leaves a searchable half-deleted
// document.
type Document struct {
	Id               ID
	Filename         string // sanitized
	FileType         string // detected format: pdf, docx, doc, xlsx, xls, txt, csv
	FileSize         int64
	ContentHash      string // BLAKE2b-256 of raw bytes, dedup identity
	ExtractedText    string
	Summary          string // executive summary
	DetailedSummary  string
	KeyInsights      []string
	DocumentType     DocumentType
	TypeConfidence   float32
	SensitivityLevel SensitivityLevel
	State            LifecycleState
	Scheme           EmbeddingScheme // scheme that produced this document's chunk vectors
	Degraded         bool            // analysis or embedding fell back
	EmbeddingRef     string          // opaque handle into the vector index
	Title            string
	Description      string
	Author           string
	Department       string
	Tags             []string
	CreatedAt        time.Time
	ProcessedAt      time.Time // zero until the document is fully indexed
	LastAccessedAt   time.Time
	ReferenceCount   int
	Deleted          bool
}

// Indexed reports whether the document is visible to search.
// A document with ProcessedAt unset has no embeddings and must not
// appear in search results.
func (d *Document) Indexed() bool {
	return d.State == StateIndexed && !d.ProcessedAt.IsZero() && !d.Deleted
}

// Chunk is a contiguous, overlapping window of a document's extracted
// text, the unit of embedding and retrieval. A chunk belongs to exactly
// one document; Index is 0-based and unique within the document.
type Chunk struct {
	DocumentId  ID
	Index       int
	Text        string
	StartOffset int // byte offset into ExtractedText, inclusive
	EndOffset   int // byte offset into ExtractedText, exclusive
	Vector      []float32
}

// SearchResult pairs a document with its relevance to a query.
// Excerpts are matching chunk texts ordered by descending score.
type SearchResult struct {
	Document *Document
	Score    float32
	Excerpts []string
}

// DocumentContext is a relevance-ranked excerpt from one document.
type DocumentContext struct {
	DocumentId ID
	ChunkIndex int
	Text       string
	Score      float32
}

// EntitySet groups extracted entities by kind.
type EntitySet struct {
	People        []string
	Organizations []string
	Dates         []string
	Amounts       []string
	Technologies  []string
}

// Sentiment holds a polarity in [-1,1] and a magnitude in [0,1].
type Sentiment struct {
	Polarity  float32
	Magnitude float32
}

// DocumentStats holds basic text statistics computed during analysis.
type DocumentStats struct {
	WordCount          int
	SentenceCount      int
	ReadingTimeMinutes int
}

// AnalysisResult is the transient output of the analysis engine. Only
// the fields copied onto Document are persisted.
type AnalysisResult struct {
	ExecutiveSummary string // at most 2 sentences
	DetailedSummary  string // at most 1 paragraph
	KeyPoints        []string
	KeyInsights      []string
	Category         DocumentType
	Confidence       float32
	Entities         EntitySet
	Sentiment        Sentiment
	Stats            DocumentStats
	Degraded         bool
}

// UploadMetadata is caller-supplied metadata accompanying an upload.
// DocumentType acts as a hint; analysis classifies only when HasTypeHint
// is false.
type UploadMetadata struct {
	Title            string
	Description      string
	Tags             []string
	Author           string
	Department       string
	DocumentType     DocumentType
	HasTypeHint      bool
	SensitivityLevel SensitivityLevel
}
