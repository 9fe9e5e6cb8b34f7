package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/search/cache"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/search/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/tracing"
)

type SearchExecutor interface {
	Execute(ctx context.Context, q executor.Query) (*executor.Result, error)
}

// DictionaryInfo describes the dictionary being served.
type DictionaryInfo struct {
	Path      string    `json:"path"`
	Words     int       `json:"words"`
	TextBytes int       `json:"text_bytes"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// Options tune request parsing. Zero values take defaults.
type Options struct {
	DefaultMinLength int
	MaxLetters       int
}

type Handler struct {
	executor  SearchExecutor
	cache     *cache.QueryCache
	collector *analytics.Collector
	info      DictionaryInfo
	opts      Options
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New builds a Handler. queryCache, collector and m may be nil.
func New(exec SearchExecutor, info DictionaryInfo, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, opts Options) *Handler {
	if opts.DefaultMinLength <= 0 {
		opts.DefaultMinLength = executor.DefaultMinLength
	}
	if opts.MaxLetters <= 0 {
		opts.MaxLetters = 64
	}
	return &Handler{
		executor:  exec,
		cache:     queryCache,
		collector: collector,
		info:      info,
		opts:      opts,
		metrics:   m,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/dictionary", h.Dictionary)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracing.Start(r.Context(), "search", middleware.GetRequestID(r.Context()))
	log := logger.FromContext(ctx)
	defer func() {
		span.End()
		span.Log(ctx, log)
	}()

	q, err := h.parseQuery(r)
	if err != nil {
		h.track(ctx, q, nil, false, start, err)
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var result *executor.Result
	cacheHit := false
	cacheStatus := "disabled"
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, q, func() (*executor.Result, error) {
			return h.executor.Execute(ctx, q)
		})
		cacheStatus = "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
	} else {
		result, err = h.executor.Execute(ctx, q)
	}

	if err != nil {
		h.track(ctx, q, nil, false, start, err)
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Error("search execution failed", "letters", q.Letters, "error", err)
			h.writeError(w, status, "search failed")
			return
		}
		h.writeError(w, status, err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	}
	log.Info("search completed",
		"letters", q.Letters,
		"min_length", q.MinLength,
		"max_length", q.MaxLength,
		"total", result.Total,
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.track(ctx, q, result, cacheHit, start, nil)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Dictionary(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.info)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) parseQuery(r *http.Request) (executor.Query, error) {
	params := r.URL.Query()
	q := executor.Query{
		Letters:   params.Get("letters"),
		MinLength: h.opts.DefaultMinLength,
	}
	if q.Letters == "" {
		return q, fmt.Errorf("query parameter 'letters' is required")
	}
	if len(q.Letters) > h.opts.MaxLetters {
		return q, fmt.Errorf("letters must be at most %d characters", h.opts.MaxLetters)
	}
	if v := params.Get("min"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, fmt.Errorf("min must be a non-negative integer")
		}
		q.MinLength = n
	}
	if v := params.Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, fmt.Errorf("max must be a positive integer")
		}
		q.MaxLength = n
	}
	return q, nil
}

func (h *Handler) track(ctx context.Context, q executor.Query, result *executor.Result, cacheHit bool, start time.Time, err error) {
	if h.collector == nil {
		return
	}
	event := analytics.SearchEvent{
		Type:      analytics.EventSearch,
		Letters:   q.Letters,
		MinLength: q.MinLength,
		MaxLength: q.MaxLength,
		LatencyMs: time.Since(start).Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(ctx),
	}
	switch {
	case err != nil:
		event.Type = analytics.EventRejected
		event.Error = err.Error()
	case result.Total == 0:
		event.Type = analytics.EventZeroResult
	default:
		event.Total = result.Total
	}
	h.collector.Track(event)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
