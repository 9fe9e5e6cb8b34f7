// Package dictfile reads and writes dictionaries in the DICT binary format.
//
// Layout, all integers little-endian:
//
//	[4]        magic "DICT"
//	[4]        format version
//	[W]        record count
//	[W]        word string length
//	[len]      word string (UTF-8)
//	[count]    records of RecordSize bytes:
//	             [W] offset  [W] length  [13] packed letter counts
//
// W is WordSize, the width of the platform's native unsigned integer. Files
// are only portable between hosts that agree on it.
package dictfile

import (
	"encoding/binary"
	"errors"
	"math/bits"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/letters"
)

const (
	Magic           = "DICT"
	Version  uint32 = 1
	WordSize        = bits.UintSize / 8

	// HeaderSize covers magic, version, record count and string length.
	HeaderSize = 4 + 4 + 2*WordSize
	// RecordSize is the fixed stride of one serialized record.
	RecordSize = 2*WordSize + letters.Size
)

// ErrFormat reports input that is not a well-formed dictionary file.
var ErrFormat = errors.New("wrong dictionary format")

func putWord(b []byte, v uint64) {
	if WordSize == 8 {
		binary.LittleEndian.PutUint64(b, v)
		return
	}
	binary.LittleEndian.PutUint32(b, uint32(v))
}

func getWord(b []byte) uint64 {
	if WordSize == 8 {
		return binary.LittleEndian.Uint64(b)
	}
	return uint64(binary.LittleEndian.Uint32(b))
}
