package core

import (
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for stored records. Field order is part of the storage
// format; append new fields at the end only.

var (
	IDMUS       = idMUS{}
	DocumentMUS = documentMUS{}
	ChunkMUS    = chunkMUS{}
)

var (
	_ mus.Serializer[ID]       = IDMUS
	_ mus.Serializer[Document] = DocumentMUS
	_ mus.Serializer[Chunk]    = ChunkMUS
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// timeMUS stores timestamps as UnixMicro. The zero time is stored as 0
// and restored as the zero time.
type timeMUS struct{}

func (timeMUS) Marshal(t time.Time, bs []byte) int {
	var us int64
	if !t.IsZero() {
		us = t.UnixMicro()
	}
	return varint.Int64.Marshal(us, bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || us == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func (timeMUS) Size(t time.Time) int {
	var us int64
	if !t.IsZero() {
		us = t.UnixMicro()
	}
	return varint.Int64.Size(us)
}

func (timeMUS) Skip(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

// stringsMUS serializes a []string as a length prefix plus elements.
type stringsMUS struct{}

func (stringsMUS) Marshal(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return
}

func (stringsMUS) Unmarshal(bs []byte) (v []string, n int, err error) {
	var length int
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 {
		err = fmt.Errorf("negative slice length %d", length)
		return
	}
	if length == 0 {
		return
	}
	v = make([]string, length)
	for i := range v {
		var (
			s string
			m int
		)
		s, m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return
		}
		v[i] = s
	}
	return
}

func (stringsMUS) Size(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return
}

func (stringsMUS) Skip(bs []byte) (n int, err error) {
	var length int
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	for i := 0; i < length; i++ {
		var m int
		m, err = ord.String.Skip(bs[n:])
		n += m
		if err != nil {
			return
		}
	}
	return
}

// vectorMUS serializes a []float32 as a length prefix plus IEEE-754 bits.
type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	var length int
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 {
		err = fmt.Errorf("negative vector length %d", length)
		return
	}
	if length == 0 {
		return
	}
	v = make([]float32, length)
	for i := range v {
		var (
			bits uint32
			m    int
		)
		bits, m, err = varint.Uint32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return
		}
		v[i] = math.Float32frombits(bits)
	}
	return
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return
}

func (vectorMUS) Skip(bs []byte) (n int, err error) {
	var length int
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	for i := 0; i < length; i++ {
		var m int
		m, err = varint.Uint32.Skip(bs[n:])
		n += m
		if err != nil {
			return
		}
	}
	return
}

var (
	timeSer    = timeMUS{}
	stringsSer = stringsMUS{}
	vectorSer  = vectorMUS{}
)

type documentMUS struct{}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = IDMUS.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.Filename, bs[n:])
	n += ord.String.Marshal(d.FileType, bs[n:])
	n += varint.Int64.Marshal(d.FileSize, bs[n:])
	n += ord.String.Marshal(d.ContentHash, bs[n:])
	n += ord.String.Marshal(d.ExtractedText, bs[n:])
	n += ord.String.Marshal(d.Summary, bs[n:])
	n += ord.String.Marshal(d.DetailedSummary, bs[n:])
	n += stringsSer.Marshal(d.KeyInsights, bs[n:])
	n += varint.Int.Marshal(int(d.DocumentType), bs[n:])
	n += varint.Uint32.Marshal(math.Float32bits(d.TypeConfidence), bs[n:])
	n += varint.Int.Marshal(int(d.SensitivityLevel), bs[n:])
	n += varint.Int.Marshal(int(d.State), bs[n:])
	n += varint.Int.Marshal(int(d.Scheme), bs[n:])
	n += ord.Bool.Marshal(d.Degraded, bs[n:])
	n += ord.String.Marshal(d.EmbeddingRef, bs[n:])
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.Description, bs[n:])
	n += ord.String.Marshal(d.Author, bs[n:])
	n += ord.String.Marshal(d.Department, bs[n:])
	n += stringsSer.Marshal(d.Tags, bs[n:])
	n += timeSer.Marshal(d.CreatedAt, bs[n:])
	n += timeSer.Marshal(d.ProcessedAt, bs[n:])
	n += timeSer.Marshal(d.LastAccessedAt, bs[n:])
	n += varint.Int.Marshal(d.ReferenceCount, bs[n:])
	n += ord.Bool.Marshal(d.Deleted, bs[n:])
	return
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var m int
	if d.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if d.Filename, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.FileType, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.FileSize, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.ContentHash, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.ExtractedText, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.Summary, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.DetailedSummary, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.KeyInsights, m, err = stringsSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	var v int
	if v, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	d.DocumentType = DocumentType(v)
	n += m
	var bits uint32
	if bits, m, err = varint.Uint32.Unmarshal(bs[n:]); err != nil {
		return
	}
	d.TypeConfidence = math.Float32frombits(bits)
	n += m
	if v, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	d.SensitivityLevel = SensitivityLevel(v)
	n += m
	if v, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	d.State = LifecycleState(v)
	n += m
	if v, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	d.Scheme = EmbeddingScheme(v)
	n += m
	if d.Degraded, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.EmbeddingRef, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.Title, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.Description, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.Author, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.Department, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.Tags, m, err = stringsSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.CreatedAt, m, err = timeSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.ProcessedAt, m, err = timeSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.LastAccessedAt, m, err = timeSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.ReferenceCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if d.Deleted, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (documentMUS) Size(d Document) (size int) {
	size = IDMUS.Size(d.Id)
	size += ord.String.Size(d.Filename)
	size += ord.String.Size(d.FileType)
	size += varint.Int64.Size(d.FileSize)
	size += ord.String.Size(d.ContentHash)
	size += ord.String.Size(d.ExtractedText)
	size += ord.String.Size(d.Summary)
	size += ord.String.Size(d.DetailedSummary)
	size += stringsSer.Size(d.KeyInsights)
	size += varint.Int.Size(int(d.DocumentType))
	size += varint.Uint32.Size(math.Float32bits(d.TypeConfidence))
	size += varint.Int.Size(int(d.SensitivityLevel))
	size += varint.Int.Size(int(d.State))
	size += varint.Int.Size(int(d.Scheme))
	size += ord.Bool.Size(d.Degraded)
	size += ord.String.Size(d.EmbeddingRef)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(d.Description)
	size += ord.String.Size(d.Author)
	size += ord.String.Size(d.Department)
	size += stringsSer.Size(d.Tags)
	size += timeSer.Size(d.CreatedAt)
	size += timeSer.Size(d.ProcessedAt)
	size += timeSer.Size(d.LastAccessedAt)
	size += varint.Int.Size(d.ReferenceCount)
	size += ord.Bool.Size(d.Deleted)
	return
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.DocumentId, bs)
	n += varint.Int.Marshal(c.Index, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += varint.Int.Marshal(c.StartOffset, bs[n:])
	n += varint.Int.Marshal(c.EndOffset, bs[n:])
	n += vectorSer.Marshal(c.Vector, bs[n:])
	return
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var m int
	if c.DocumentId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.Index, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.StartOffset, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.EndOffset, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Vector, m, err = vectorSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = IDMUS.Size(c.DocumentId)
	size += varint.Int.Size(c.Index)
	size += ord.String.Size(c.Text)
	size += varint.Int.Size(c.StartOffset)
	size += varint.Int.Size(c.EndOffset)
	size += vectorSer.Size(c.Vector)
	return
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
