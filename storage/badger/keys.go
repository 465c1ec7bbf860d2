package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/retrievit/core"
)

// Key prefixes for different record types
const (
	documentPrefix      = "docrec"
	entityPrefix        = "entrec"
	entityNamePrefix    = "entnam"
	tripleSubjectPrefix = "trisub"
	tripleObjectPrefix  = "triobj"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeEntityKey generates a key for an entity by ID.
func makeEntityKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", entityPrefix, id))
}

// makeEntityNameKey generates a composite key for the name index.
// Format: prefix:name:entityID
func makeEntityNameKey(name string, id core.ID) []byte {
	prefix := entityNamePrefix + ":" + name + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// BigEndian so lexicographic sort matches numeric order
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialEntityNameKey generates a partial key for name index scans.
func makePartialEntityNameKey(name string) []byte {
	return []byte(entityNamePrefix + ":" + name + ":")
}

// makeTripleIndexKey generates a composite index key anchoring a triple at one
// of its endpoints. The full triple is encoded in the key so each edge is
// stored exactly once per endpoint.
// Format: prefix:anchorID:subject:object:relation
func makeTripleIndexKey(prefix string, anchor core.ID, triple *core.Triple) []byte {
	head := prefix + ":"
	buf := make([]byte, len(head)+24+len(triple.Relation))
	offset := copy(buf, head)
	binary.BigEndian.PutUint64(buf[offset:], uint64(anchor))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(triple.Subject))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(triple.Object))
	offset += 8
	copy(buf[offset:], triple.Relation)
	return buf
}

// makePartialTripleIndexKey generates a partial key for endpoint scans.
func makePartialTripleIndexKey(prefix string, anchor core.ID) []byte {
	head := prefix + ":"
	buf := make([]byte, len(head)+8)
	offset := copy(buf, head)
	binary.BigEndian.PutUint64(buf[offset:], uint64(anchor))
	return buf
}
