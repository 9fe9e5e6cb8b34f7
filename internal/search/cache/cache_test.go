package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/search/executor"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/resilience"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, s.failGet
	}
	v, ok := s.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

func TestKey(t *testing.T) {
	base := Key(executor.Query{Letters: "hello", MinLength: 3})

	assert.True(t, strings.HasPrefix(base, keyPrefix))
	assert.Equal(t, base, Key(executor.Query{Letters: "OLLEH", MinLength: 3}), "order and case do not matter")
	assert.Equal(t, base, Key(executor.Query{Letters: "lHeLo", MinLength: 3}))
	assert.NotEqual(t, base, Key(executor.Query{Letters: "hello", MinLength: 4}))
	assert.NotEqual(t, base, Key(executor.Query{Letters: "hello", MinLength: 3, MaxLength: 5}))
	assert.NotEqual(t, base, Key(executor.Query{Letters: "helo", MinLength: 3}))
	assert.NotEqual(t,
		Key(executor.Query{Letters: "IT"}),
		Key(executor.Query{Letters: "ıt"}),
		"non-ASCII input is never folded onto a valid key")
}

func TestGetOrCompute(t *testing.T) {
	store := newMemStore()
	m := metrics.New(prometheus.NewRegistry())
	c := New(store, time.Minute, m)
	ctx := context.Background()

	calls := 0
	compute := func() (*executor.Result, error) {
		calls++
		return &executor.Result{Letters: "hello", Words: []string{"hello", "hole"}, Total: 2}, nil
	}

	result, hit, err := c.GetOrCompute(ctx, executor.Query{Letters: "hello", MinLength: 3}, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"hello", "hole"}, result.Words)

	result, hit, err = c.GetOrCompute(ctx, executor.Query{Letters: "OHELL", MinLength: 3}, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "OHELL", result.Letters, "letters echo the caller's query")
	assert.Equal(t, []string{"hello", "hole"}, result.Words)
	assert.Equal(t, 1, calls)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, time.Minute, store.ttls[Key(executor.Query{Letters: "hello", MinLength: 3})])
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, nil)
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute(context.Background(), executor.Query{Letters: "x1"}, func() (*executor.Result, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.data)
}

func TestGetOrCompute_StoreDown(t *testing.T) {
	store := newMemStore()
	store.failGet = errors.New("connection refused")
	c := New(store, time.Minute, nil)

	result, hit, err := c.GetOrCompute(context.Background(), executor.Query{Letters: "abc"}, func() (*executor.Result, error) {
		return &executor.Result{Words: []string{"cab"}, Total: 1}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"cab"}, result.Words)
}

func TestGetOrCompute_Singleflight(t *testing.T) {
	c := New(newMemStore(), time.Minute, nil)
	release := make(chan struct{})
	var calls atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.GetOrCompute(context.Background(), executor.Query{Letters: "stone"}, func() (*executor.Result, error) {
				calls.Add(1)
				<-release
				return &executor.Result{Words: []string{"notes"}, Total: 1}, nil
			})
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	store.data["other:key"] = []byte("x")
	c := New(store, time.Minute, nil)
	ctx := context.Background()

	c.Set(ctx, executor.Query{Letters: "abc"}, &executor.Result{})
	c.Set(ctx, executor.Query{Letters: "def"}, &executor.Result{})

	deleted, err := c.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Contains(t, store.data, "other:key")

	_, ok := c.Get(ctx, executor.Query{Letters: "abc"})
	assert.False(t, ok)
}

type countingStore struct {
	*memStore
	gets int
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.gets++
	return s.memStore.Get(ctx, key)
}

func TestWithBreaker(t *testing.T) {
	inner := &countingStore{memStore: newMemStore()}
	b := resilience.NewBreaker("redis", resilience.BreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour})
	store := WithBreaker(inner, b)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Get(ctx, "search:missing")
		assert.True(t, pkgredis.IsNilError(err), "misses pass through")
	}
	assert.Equal(t, resilience.StateClosed, b.State(), "misses are not failures")

	inner.failGet = errors.New("connection refused")
	for i := 0; i < 2; i++ {
		_, err := store.Get(ctx, "search:k")
		assert.EqualError(t, err, "connection refused")
	}
	assert.Equal(t, resilience.StateOpen, b.State())

	before := inner.gets
	_, err := store.Get(ctx, "search:k")
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, inner.gets, "open breaker skips the backend")

	c := New(store, time.Minute, nil)
	result, hit, err := c.GetOrCompute(ctx, executor.Query{Letters: "abc"}, func() (*executor.Result, error) {
		return &executor.Result{Words: []string{"cab"}, Total: 1}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"cab"}, result.Words)
}
