package cache

import (
	"context"
	"time"

	pkgredis "github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/resilience"
)

// guardedStore runs every call through a circuit breaker. A missing key is
// a normal answer and does not count as a failure.
type guardedStore struct {
	store   Store
	breaker *resilience.Breaker
}

// WithBreaker wraps store with b.
func WithBreaker(store Store, b *resilience.Breaker) Store {
	return &guardedStore{store: store, breaker: b}
}

func (s *guardedStore) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value  []byte
		getErr error
	)
	err := s.breaker.Do(func() error {
		value, getErr = s.store.Get(ctx, key)
		if pkgredis.IsNilError(getErr) {
			return nil
		}
		return getErr
	})
	if err != nil {
		return nil, err
	}
	return value, getErr
}

func (s *guardedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.breaker.Do(func() error {
		return s.store.Set(ctx, key, value, ttl)
	})
}

func (s *guardedStore) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	var deleted int64
	err := s.breaker.Do(func() error {
		var err error
		deleted, err = s.store.FlushByPattern(ctx, pattern)
		return err
	})
	return deleted, err
}
