// Package executor runs letter searches against a loaded dictionary: every
// word whose letters are covered by the query letters, filtered by length and
// sorted byte-wise.
package executor

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/letters"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/tracing"
)

// DefaultMinLength is the shortest word returned when the caller does not
// say otherwise.
const DefaultMinLength = 3

// Query describes one search. MaxLength of zero means no upper bound.
type Query struct {
	Letters   string `json:"letters"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length,omitempty"`
}

// Validate rejects inconsistent length bounds.
func (q Query) Validate() error {
	if q.MinLength < 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "min length %d is negative", q.MinLength)
	}
	if q.MaxLength < 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "max length %d is negative", q.MaxLength)
	}
	if q.MaxLength != 0 && q.MaxLength < q.MinLength {
		return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"max length %d is below min length %d", q.MaxLength, q.MinLength)
	}
	return nil
}

func (q Query) fits(word string) bool {
	n := len(word)
	return n >= q.MinLength && (q.MaxLength == 0 || n <= q.MaxLength)
}

type Result struct {
	Letters string   `json:"letters"`
	Words   []string `json:"words"`
	Total   int      `json:"total"`
}

type Executor struct {
	dict    *dictionary.Dictionary
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New returns an Executor over dict. workers <= 0 scans with GOMAXPROCS
// goroutines; m may be nil.
func New(dict *dictionary.Dictionary, workers int, m *metrics.Metrics) *Executor {
	return &Executor{
		dict:    dict,
		workers: workers,
		metrics: m,
		logger:  slog.Default().With("component", "search-executor"),
	}
}

// Dictionary returns the dictionary being searched.
func (e *Executor) Dictionary() *dictionary.Dictionary {
	return e.dict
}

// Execute returns the words of the dictionary that can be spelled from
// q.Letters. Letter encoding errors come back as 400 AppErrors that still
// match the letters sentinels with errors.Is.
func (e *Executor) Execute(ctx context.Context, q Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		e.count("invalid")
		return nil, err
	}
	have, err := letters.Encode(q.Letters)
	if err != nil {
		e.count("invalid")
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err, http.StatusBadRequest, "encoding query letters")
	}
	if err := ctx.Err(); err != nil {
		e.count("error")
		return nil, err
	}

	_, span := tracing.StartChild(ctx, "scan")
	defer span.End()
	start := time.Now()
	found := e.dict.Scan(e.workers, func(entry dictionary.Entry) bool {
		return q.fits(entry.Word) && have.Contains(entry.Counts)
	})
	words := make([]string, len(found))
	for i, entry := range found {
		words[i] = entry.Word
	}
	slices.Sort(words)

	if len(words) == 0 {
		e.count("zero_result")
	} else {
		e.count("hit")
	}
	if e.metrics != nil {
		e.metrics.SearchResultsCount.Observe(float64(len(words)))
	}
	span.SetAttr("entries", e.dict.Len())
	span.SetAttr("results", len(words))
	e.logger.Debug("search executed",
		"letters", q.Letters,
		"min_length", q.MinLength,
		"max_length", q.MaxLength,
		"results", len(words),
		"elapsed", time.Since(start),
	)
	return &Result{
		Letters: q.Letters,
		Words:   words,
		Total:   len(words),
	}, nil
}

func (e *Executor) count(resultType string) {
	if e.metrics != nil {
		e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	}
}
