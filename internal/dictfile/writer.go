package dictfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictionary"
)

// Write serialises d to w and returns the number of bytes written.
func Write(w io.Writer, d *dictionary.Dictionary) (int64, error) {
	bw := bufio.NewWriter(w)
	records := d.Records()

	header := make([]byte, HeaderSize)
	copy(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:8], Version)
	putWord(header[8:8+WordSize], uint64(len(records)))
	putWord(header[8+WordSize:HeaderSize], uint64(d.TextLen()))

	var written int64
	n, err := bw.Write(header)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("writing header: %w", err)
	}
	n, err = bw.WriteString(d.Text())
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("writing word string: %w", err)
	}

	rec := make([]byte, RecordSize)
	for _, r := range records {
		putWord(rec[0:WordSize], uint64(r.Span.Offset))
		putWord(rec[WordSize:2*WordSize], uint64(r.Span.Length))
		counts := r.Counts.Bytes()
		copy(rec[2*WordSize:], counts[:])
		n, err = bw.Write(rec)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("writing record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("flushing dictionary: %w", err)
	}
	return written, nil
}

// WriteFile atomically writes d to path. It writes to a .tmp file first and
// renames it on success.
func WriteFile(path string, d *dictionary.Dictionary) (int64, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("creating dictionary directory: %w", err)
		}
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("creating temp dictionary file: %w", err)
	}
	defer f.Close()

	n, err := Write(f, d)
	if err != nil {
		os.Remove(tmpPath)
		return n, err
	}
	if err := f.Sync(); err != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("syncing dictionary file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmpPath, path); err != nil {
		return n, fmt.Errorf("renaming dictionary file: %w", err)
	}
	return n, nil
}
