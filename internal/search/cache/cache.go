// Package cache memoises search results in Redis. Queries that differ only in
// letter order or letter case share one entry, and concurrent misses for the
// same entry run the search once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/search/executor"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/tracing"
)

const keyPrefix = "search:"

// Store is the subset of the Redis client the cache uses. Get reports a
// missing key with an error for which pkgredis.IsNilError is true.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache writing entries with the given TTL. m may be nil.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Get looks q up. Any store or decoding failure counts as a miss.
func (c *QueryCache) Get(ctx context.Context, q executor.Query) (*executor.Result, bool) {
	key := Key(q)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result executor.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hit()
	result.Letters = q.Letters
	return &result, true
}

// Set stores result under q's key. Failures are logged, not returned.
func (c *QueryCache) Set(ctx context.Context, q executor.Query, result *executor.Result) {
	key := Key(q)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for q, or runs compute and caches
// its result. Concurrent callers missing on the same key share one compute.
// The boolean reports a cache hit. Errors from compute are never cached.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	q executor.Query,
	compute func() (*executor.Result, error),
) (*executor.Result, bool, error) {
	_, span := tracing.StartChild(ctx, "cache")
	defer span.End()
	if result, ok := c.Get(ctx, q); ok {
		span.SetAttr("hit", true)
		return result, true, nil
	}
	span.SetAttr("hit", false)
	val, err, _ := c.group.Do(Key(q), func() (any, error) {
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, q, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	shared := *val.(*executor.Result)
	shared.Letters = q.Letters
	return &shared, false, nil
}

// Invalidate deletes every cached search.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Key returns the cache key for q. Letters are compared as a multiset with
// ASCII case folded; any other byte is kept verbatim so that invalid input
// never shares a key with valid input.
func Key(q executor.Query) string {
	return fmt.Sprintf("%s%x", keyPrefix, sha256.Sum256([]byte(canonical(q))))
}

func canonical(q executor.Query) string {
	b := []byte(q.Letters)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	slices.Sort(b)
	return fmt.Sprintf("%s:min=%d:max=%d", b, q.MinLength, q.MaxLength)
}
