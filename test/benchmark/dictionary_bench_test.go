package benchmark

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictfile"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/letters"
)

// BenchmarkDictionaryInsert measures per-word insert throughput.
func BenchmarkDictionaryInsert(b *testing.B) {
	words := randomWords(10000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := dictionary.New()
		for _, w := range words {
			_ = d.Insert(w)
		}
	}
}

// BenchmarkScan measures a full containment scan over 100 000 words at
// several worker counts.
func BenchmarkScan(b *testing.B) {
	d := buildDictionary(b, 100000)
	have, _ := letters.Encode("etaoinshrdlu")
	keep := func(e dictionary.Entry) bool { return have.Contains(e.Counts) }

	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers-%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				d.Scan(workers, keep)
			}
		})
	}
}

// BenchmarkWrite measures encoding a 100 000 word dictionary.
func BenchmarkWrite(b *testing.B) {
	d := buildDictionary(b, 100000)
	var buf bytes.Buffer
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if _, err := dictfile.Write(&buf, d); err != nil {
			b.Fatal(err)
		}
	}
	b.SetBytes(int64(buf.Len()))
}

// BenchmarkRead measures decoding a 100 000 word dictionary.
func BenchmarkRead(b *testing.B) {
	d := buildDictionary(b, 100000)
	var buf bytes.Buffer
	if _, err := dictfile.Write(&buf, d); err != nil {
		b.Fatal(err)
	}
	data := buf.Bytes()
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := dictfile.Read(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}
