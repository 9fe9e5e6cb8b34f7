// Package benchmark contains Go benchmarks for letter encoding, dictionary
// construction and scanning, the dictionary file codec, and the search
// pipeline, measuring throughput and allocation behaviour.
package benchmark

import (
	"math/rand"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictionary"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// randomWords returns n distinct lower-case words of 3 to 12 letters drawn
// from a fixed seed so runs are comparable.
func randomWords(n int) []string {
	rng := rand.New(rand.NewSource(42))
	seen := make(map[string]struct{}, n)
	words := make([]string, 0, n)
	for len(words) < n {
		b := make([]byte, 3+rng.Intn(10))
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		w := string(b)
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}

func buildDictionary(b *testing.B, n int) *dictionary.Dictionary {
	b.Helper()
	d := dictionary.New()
	for _, w := range randomWords(n) {
		if err := d.Insert(w); err != nil {
			b.Fatal(err)
		}
	}
	return d
}
