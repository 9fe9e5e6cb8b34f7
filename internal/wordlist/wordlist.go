// Package wordlist builds dictionaries from line-delimited word lists and
// from database queries. The first word that cannot be encoded aborts the
// build.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictionary"
)

// maxLineSize bounds a single line of a word list.
const maxLineSize = 1 << 20

// Stats summarises a build.
type Stats struct {
	Lines      int `json:"lines"`
	Words      int `json:"words"`
	Duplicates int `json:"duplicates"`
}

// LineError reports the word that stopped a build.
type LineError struct {
	Line int
	Word string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (%q): %s", e.Line, e.Word, e.Err.Error())
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Build reads one word per line from r. A trailing carriage return is
// stripped; every other byte, including surrounding spaces, is part of the
// word.
func Build(r io.Reader) (*dictionary.Dictionary, Stats, error) {
	d := dictionary.New()
	var stats Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		stats.Lines++
		word := strings.TrimSuffix(scanner.Text(), "\r")
		if err := add(d, word, &stats); err != nil {
			return nil, stats, &LineError{Line: stats.Lines, Word: word, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("reading word list: %w", err)
	}
	return d, stats, nil
}

// BuildFile is Build over the file at path.
func BuildFile(path string) (*dictionary.Dictionary, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("opening word list: %w", err)
	}
	defer f.Close()
	return Build(f)
}

func add(d *dictionary.Dictionary, word string, stats *Stats) error {
	before := d.Len()
	if err := d.Insert(word); err != nil {
		return err
	}
	if d.Len() == before {
		stats.Duplicates++
	} else {
		stats.Words++
	}
	return nil
}
