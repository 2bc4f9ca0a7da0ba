package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/docmind/core"
)

// Key prefixes for different data types
const (
	documentRecordPrefix = "docrec"
	documentHashPrefix   = "dochash"
	chunkRecordPrefix    = "chunk"
)

// makeDocumentKey generates a key for a document record by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentRecordPrefix, id))
}

// makeHashKey generates a key for the content-hash dedup index.
func makeHashKey(contentHash string) []byte {
	return []byte(documentHashPrefix + ":" + contentHash)
}

// makeChunkKey generates a composite key for a chunk.
// Format: prefix:docID:index, both BigEndian so lexicographic order is
// document order.
func makeChunkKey(docID core.ID, index int) []byte {
	prefix := chunkRecordPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makeChunkPrefix generates the key prefix covering every chunk of a
// document.
func makeChunkPrefix(docID core.ID) []byte {
	prefix := chunkRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}
