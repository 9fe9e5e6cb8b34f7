package benchmark

import (
	"context"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/search/executor"
)

// BenchmarkExecute measures the complete search pipeline: encode the query,
// scan, filter by length and sort.
func BenchmarkExecute(b *testing.B) {
	exec := executor.New(buildDictionary(b, 100000), 0, nil)
	q := executor.Query{Letters: "etaoinshrdlucmfw", MinLength: executor.DefaultMinLength}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := exec.Execute(ctx, q); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkExecuteParallel measures concurrent searches sharing one
// dictionary.
func BenchmarkExecuteParallel(b *testing.B) {
	exec := executor.New(buildDictionary(b, 100000), 1, nil)
	q := executor.Query{Letters: "etaoinshrdlucmfw", MinLength: executor.DefaultMinLength}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			if _, err := exec.Execute(ctx, q); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
