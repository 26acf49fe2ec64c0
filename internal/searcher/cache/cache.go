// Package cache keeps top-document results in Redis. Keys carry an index
// generation that is bumped on every mutation, so a result computed before
// a document was added or removed is never served afterwards.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

const keyPrefix = "search:"

// Store is the key-value backend. *pkgredis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	store      Store
	ttl        time.Duration
	generation atomic.Uint64
	group      singleflight.Group
	metrics    *metrics.Metrics
	logger     *slog.Logger
	hits       atomic.Int64
	misses     atomic.Int64
}

func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Get looks up a cached result. Backend errors count as misses.
func (c *QueryCache) Get(ctx context.Context, q *parser.Query, status document.Status, limit int) ([]document.Document, bool) {
	key := c.buildKey(q, status, limit)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		switch {
		case pkgredis.IsNilError(err):
		case errors.Is(err, resilience.ErrCircuitOpen):
			c.logger.Debug("cache bypassed", "key", key, "error", err)
		default:
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.recordLookup(false)
		return nil, false
	}
	var docs []document.Document
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordLookup(false)
		return nil, false
	}
	c.recordLookup(true)
	c.logger.Debug("cache hit", "query", q.RawQuery, "key", key)
	return docs, true
}

func (c *QueryCache) Set(ctx context.Context, q *parser.Query, status document.Status, limit int, docs []document.Document) {
	key := c.buildKey(q, status, limit)
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute serves a cached result or runs compute once for all
// concurrent callers asking for the same key. The bool reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	q *parser.Query,
	status document.Status,
	limit int,
	compute func() ([]document.Document, error),
) ([]document.Document, bool, error) {
	if docs, ok := c.Get(ctx, q, status, limit); ok {
		return docs, true, nil
	}
	key := c.buildKey(q, status, limit)
	val, err, _ := c.group.Do(key, func() (any, error) {
		docs, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, q, status, limit, docs)
		return docs, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]document.Document), false, nil
}

// Invalidate retires every cached result. The generation bump takes effect
// immediately; deleting the old keys is best effort.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	old := c.generation.Add(1) - 1
	pattern := fmt.Sprintf("%s%d:*", keyPrefix, old)
	deleted, err := c.store.FlushByPattern(ctx, pattern)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Debug("cache invalidated", "generation", old+1, "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) recordLookup(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	c.metrics.CacheLookup(hit)
}

// buildKey hashes the parsed query, so word order, duplicates and stop
// words in the raw text do not produce distinct keys. Execution mode is
// not part of the key because it never changes the result.
func (c *QueryCache) buildKey(q *parser.Query, status document.Status, limit int) string {
	var b strings.Builder
	b.WriteString(strings.Join(q.Plus, " "))
	b.WriteByte('|')
	b.WriteString(strings.Join(q.Minus, " "))
	b.WriteByte('|')
	b.WriteString(status.String())
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(limit))
	sum := xxhash.Sum64String(b.String())
	return fmt.Sprintf("%s%d:%016x", keyPrefix, c.generation.Load(), sum)
}
