package cache

import (
	"context"
	"time"

	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

// Guard wraps store in breaker so that an unreachable backend turns cache
// lookups into immediate misses. A missing key is not a failure.
func Guard(store Store, breaker *resilience.Breaker) Store {
	return &guardedStore{store: store, breaker: breaker}
}

type guardedStore struct {
	store   Store
	breaker *resilience.Breaker
}

func (g *guardedStore) Get(ctx context.Context, key string) (string, error) {
	var (
		value string
		miss  error
	)
	err := g.breaker.Do(func() error {
		var err error
		value, err = g.store.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			miss = err
			return nil
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return value, miss
}

func (g *guardedStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return g.breaker.Do(func() error {
		return g.store.Set(ctx, key, value, ttl)
	})
}

func (g *guardedStore) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	var n int64
	err := g.breaker.Do(func() error {
		var err error
		n, err = g.store.FlushByPattern(ctx, pattern)
		return err
	})
	return n, err
}
