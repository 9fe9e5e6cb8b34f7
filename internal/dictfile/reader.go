package dictfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"unicode/utf8"

	"golang.org/x/exp/mmap"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/letters"
)

// decodeChunk is the number of records decoded by one goroutine.
const decodeChunk = 4096

// Read parses a dictionary from r. Malformed or truncated input yields an
// error wrapping ErrFormat; failures of r itself are returned wrapped but
// otherwise untouched. The returned Dictionary has no duplicate history.
func Read(r io.Reader) (*dictionary.Dictionary, error) {
	header := make([]byte, HeaderSize)
	if err := readFull(r, header); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if string(header[0:4]) != Magic {
		return nil, fmt.Errorf("bad magic bytes %q: %w", header[0:4], ErrFormat)
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != Version {
		return nil, fmt.Errorf("unsupported version %d: %w", v, ErrFormat)
	}
	count := getWord(header[8 : 8+WordSize])
	strLen := getWord(header[8+WordSize : HeaderSize])
	if strLen > math.MaxInt || count > math.MaxInt/RecordSize {
		return nil, fmt.Errorf("declared sizes out of range: %w", ErrFormat)
	}

	text, err := readN(r, int64(strLen))
	if err != nil {
		return nil, fmt.Errorf("reading word string: %w", err)
	}
	if !utf8.Valid(text) {
		return nil, fmt.Errorf("word string is not valid UTF-8: %w", ErrFormat)
	}

	raw, err := readN(r, int64(count)*RecordSize)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	records, err := decodeRecords(raw, int(count), len(text))
	if err != nil {
		return nil, err
	}
	return dictionary.FromParts(string(text), records), nil
}

// decodeRecords parses fixed-stride records in parallel. Each record is
// independent, so chunks share nothing but the input slice.
func decodeRecords(raw []byte, count, textLen int) ([]dictionary.Record, error) {
	records := make([]dictionary.Record, count)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for lo := 0; lo < count; lo += decodeChunk {
		lo := lo
		hi := min(lo+decodeChunk, count)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				rec := raw[i*RecordSize : (i+1)*RecordSize]
				offset := getWord(rec[0:WordSize])
				length := getWord(rec[WordSize : 2*WordSize])
				if offset > uint64(textLen) || length > uint64(textLen)-offset {
					return fmt.Errorf("record %d span [%d,+%d) exceeds word string of %d bytes: %w",
						i, offset, length, textLen, ErrFormat)
				}
				var packed [letters.Size]byte
				copy(packed[:], rec[2*WordSize:])
				records[i] = dictionary.Record{
					Span:   dictionary.Span{Offset: int(offset), Length: int(length)},
					Counts: letters.FromBytes(packed),
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// Open memory-maps the dictionary file at path and decodes it.
func Open(path string) (*dictionary.Dictionary, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary file: %w", err)
	}
	defer ra.Close()
	return Read(io.NewSectionReader(ra, 0, int64(ra.Len())))
}

func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return truncation(err)
	}
	return nil
}

// readN reads exactly n bytes. The buffer grows with the data actually
// received so a corrupt length cannot force a huge allocation up front.
func readN(r io.Reader, n int64) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(min(n, 1<<20)))
	copied, err := io.CopyN(&buf, r, n)
	if err != nil {
		return nil, truncation(err)
	}
	if copied != n {
		return nil, fmt.Errorf("short read: %w", ErrFormat)
	}
	return buf.Bytes(), nil
}

func truncation(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("unexpected end of data: %w", ErrFormat)
	}
	return err
}
