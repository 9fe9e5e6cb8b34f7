package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/search/cache"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/search/executor"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/kafka"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.data))
	s.data = map[string][]byte{}
	return n, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []analytics.SearchEvent
}

func (p *capturePublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range events {
		p.events = append(p.events, e.Value.(analytics.SearchEvent))
	}
	return nil
}

type failingExecutor struct{}

func (failingExecutor) Execute(context.Context, executor.Query) (*executor.Result, error) {
	return nil, errors.New("disk on fire")
}

func newExecutor(t *testing.T) *executor.Executor {
	t.Helper()
	d := dictionary.New()
	for _, w := range []string{"hello", "world", "held", "he", "hole"} {
		require.NoError(t, d.Insert(w))
	}
	return executor.New(d, 0, nil)
}

func serve(h *Handler, method, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestSearch(t *testing.T) {
	h := New(newExecutor(t), DictionaryInfo{}, nil, nil, nil, Options{})

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"defaults", "/api/v1/search?letters=hello", []string{"hello", "hole"}},
		{"min", "/api/v1/search?letters=hello&min=2", []string{"he", "hello", "hole"}},
		{"max", "/api/v1/search?letters=hello&min=2&max=4", []string{"he", "hole"}},
		{"upper case", "/api/v1/search?letters=HELLOWORLD", []string{"held", "hello", "hole", "world"}},
		{"no matches", "/api/v1/search?letters=xyz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			result := decode[executor.Result](t, rec)
			assert.Equal(t, tt.want, result.Words)
			assert.Equal(t, len(tt.want), result.Total)
		})
	}
}

func TestSearch_BadRequest(t *testing.T) {
	h := New(newExecutor(t), DictionaryInfo{}, nil, nil, nil, Options{MaxLetters: 8})

	tests := []struct {
		name    string
		target  string
		message string
	}{
		{"missing letters", "/api/v1/search", "letters"},
		{"too many letters", "/api/v1/search?letters=abcdefghi", "at most 8"},
		{"bad min", "/api/v1/search?letters=abc&min=x", "min"},
		{"negative min", "/api/v1/search?letters=abc&min=-1", "min"},
		{"bad max", "/api/v1/search?letters=abc&max=0", "max"},
		{"max below min", "/api/v1/search?letters=abc&min=5&max=4", "below min"},
		{"digit", "/api/v1/search?letters=ab1", "other than letters"},
		{"non-ascii", "/api/v1/search?letters=caf%C3%A9", "non-ASCII"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, http.MethodGet, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[map[string]string](t, rec)
			assert.Contains(t, body["error"], tt.message)
		})
	}
}

func TestSearch_ExecutorFailure(t *testing.T) {
	h := New(failingExecutor{}, DictionaryInfo{}, nil, nil, nil, Options{})

	rec := serve(h, http.MethodGet, "/api/v1/search?letters=abc")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"search failed"}`, rec.Body.String())
}

func TestSearch_Cached(t *testing.T) {
	qc := cache.New(&memStore{data: map[string][]byte{}}, time.Minute, nil)
	h := New(newExecutor(t), DictionaryInfo{}, qc, nil, nil, Options{})

	first := serve(h, http.MethodGet, "/api/v1/search?letters=hello")
	require.Equal(t, http.StatusOK, first.Code)
	second := serve(h, http.MethodGet, "/api/v1/search?letters=OLLEH")
	require.Equal(t, http.StatusOK, second.Code)

	result := decode[executor.Result](t, second)
	assert.Equal(t, "OLLEH", result.Letters)
	assert.Equal(t, []string{"hello", "hole"}, result.Words)

	stats := decode[map[string]any](t, serve(h, http.MethodGet, "/api/v1/cache/stats"))
	assert.Equal(t, 1.0, stats["hits"])
	assert.Equal(t, 1.0, stats["misses"])
	assert.Equal(t, "50.0%", stats["hit_rate"])

	rec := serve(h, http.MethodPost, "/api/v1/cache/invalidate")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "invalidated", body["status"])
	assert.Equal(t, 1.0, body["keys_deleted"])
}

func TestCacheDisabled(t *testing.T) {
	h := New(newExecutor(t), DictionaryInfo{}, nil, nil, nil, Options{})

	rec := serve(h, http.MethodGet, "/api/v1/cache/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"disabled"}`, rec.Body.String())

	rec = serve(h, http.MethodPost, "/api/v1/cache/invalidate")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDictionary(t *testing.T) {
	loaded := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h := New(newExecutor(t), DictionaryInfo{Path: "default.dict", Words: 4, TextBytes: 16, LoadedAt: loaded}, nil, nil, nil, Options{})

	rec := serve(h, http.MethodGet, "/api/v1/dictionary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"path":"default.dict","words":4,"text_bytes":16,"loaded_at":"2026-01-02T03:04:05Z"}`,
		rec.Body.String())
}

func TestSearch_TracksEvents(t *testing.T) {
	pub := &capturePublisher{}
	collector := analytics.NewCollector(pub, 100, 100, time.Hour, nil)
	collector.Start(context.Background())
	h := New(newExecutor(t), DictionaryInfo{}, nil, collector, nil, Options{})

	serve(h, http.MethodGet, "/api/v1/search?letters=hello")
	serve(h, http.MethodGet, "/api/v1/search?letters=xyz")
	serve(h, http.MethodGet, "/api/v1/search?letters=x1")
	collector.Close()

	require.Len(t, pub.events, 3)
	assert.Equal(t, analytics.EventSearch, pub.events[0].Type)
	assert.Equal(t, 2, pub.events[0].Total)
	assert.Equal(t, analytics.EventZeroResult, pub.events[1].Type)
	assert.Equal(t, analytics.EventRejected, pub.events[2].Type)
	assert.True(t, strings.Contains(pub.events[2].Error, "other than letters"))
}

func TestMethodNotAllowed(t *testing.T) {
	h := New(newExecutor(t), DictionaryInfo{}, nil, nil, nil, Options{})
	rec := serve(h, http.MethodPost, "/api/v1/search?letters=abc")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
