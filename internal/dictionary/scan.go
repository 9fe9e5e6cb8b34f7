package dictionary

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps tiny dictionaries from being split across many goroutines.
const minChunk = 1024

// Scan evaluates keep against every entry across up to workers goroutines
// and returns the entries it accepted. workers <= 0 means GOMAXPROCS. The
// order of the result is unspecified; keep must be safe for concurrent use.
func (d *Dictionary) Scan(workers int, keep func(Entry) bool) []Entry {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := len(d.records)
	if n == 0 {
		return nil
	}
	chunk := (n + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}
	text := d.text.String()
	parts := make([][]Entry, (n+chunk-1)/chunk)

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range parts {
		i := i
		lo := i * chunk
		hi := min(lo+chunk, n)
		g.Go(func() error {
			var found []Entry
			for _, r := range d.records[lo:hi] {
				e := Entry{Word: text[r.Span.Offset:r.Span.End()], Counts: r.Counts}
				if keep(e) {
					found = append(found, e)
				}
			}
			parts[i] = found
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	result := make([]Entry, 0, total)
	for _, p := range parts {
		result = append(result, p...)
	}
	return result
}
