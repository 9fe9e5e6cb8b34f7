// Package dictionary holds the deduplicated word list searched by the
// puzzle solver. All words share one backing text; each word is addressed
// by its (offset, length) span and paired with its letter counts.
//
// A Dictionary has no internal locking. Build it from a single goroutine,
// then share it read-only between any number of scanners.
package dictionary

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/letters"
)

// Span addresses one word inside the backing text.
type Span struct {
	Offset int
	Length int
}

// End returns the offset one past the last byte of the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

// Record maps a span of the backing text to the letter counts of the word it
// addresses.
type Record struct {
	Span   Span
	Counts letters.CountSet
}

// Entry is a word together with its letter counts.
type Entry struct {
	Word   string
	Counts letters.CountSet
}

// Dictionary must not be copied after first use.
type Dictionary struct {
	text    strings.Builder
	records []Record
	seen    map[string]struct{}
}

func New() *Dictionary {
	return &Dictionary{
		seen: make(map[string]struct{}),
	}
}

// FromParts assembles a Dictionary from already-encoded data, typically read
// back from disk. Spans must lie within text. The duplicate check starts out
// empty: words inserted afterwards are only compared with other words
// inserted afterwards.
func FromParts(text string, records []Record) *Dictionary {
	d := &Dictionary{
		records: records,
		seen:    make(map[string]struct{}),
	}
	d.text.WriteString(text)
	return d
}

// Insert adds word unless this Dictionary has already seen it. A word that
// fails to encode leaves the Dictionary unchanged and the encoding error is
// returned as is.
func (d *Dictionary) Insert(word string) error {
	if _, exists := d.seen[word]; exists {
		return nil
	}
	counts, err := letters.Encode(word)
	if err != nil {
		return err
	}
	span := Span{Offset: d.text.Len(), Length: len(word)}
	d.text.WriteString(word)
	d.records = append(d.records, Record{Span: span, Counts: counts})
	d.seen[word] = struct{}{}
	return nil
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	return len(d.records)
}

// Has reports whether word went through Insert on this instance. Words
// loaded through FromParts are not tracked.
func (d *Dictionary) Has(word string) bool {
	_, ok := d.seen[word]
	return ok
}

// Text returns the concatenation of all words in insertion order. It does
// not copy.
func (d *Dictionary) Text() string {
	return d.text.String()
}

// TextLen returns the length of the backing text in bytes.
func (d *Dictionary) TextLen() int {
	return d.text.Len()
}

// Records exposes the span to counts records. Callers must not modify the
// returned slice.
func (d *Dictionary) Records() []Record {
	return d.records
}

// Each calls fn once for every entry.
func (d *Dictionary) Each(fn func(Entry)) {
	text := d.text.String()
	for _, r := range d.records {
		fn(Entry{Word: text[r.Span.Offset:r.Span.End()], Counts: r.Counts})
	}
}

// Words returns every word, in storage order.
func (d *Dictionary) Words() []string {
	words := make([]string, 0, len(d.records))
	d.Each(func(e Entry) {
		words = append(words, e.Word)
	})
	return words
}
