package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
	fail bool
	gets int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.fail {
		return "", errors.New("connection reset")
	}
	v, ok := m.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(value.([]byte))
	return nil
}

func (m *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func parse(t *testing.T, raw string) *parser.Query {
	t.Helper()
	sw, _ := index.ParseStopWords("and")
	q, err := parser.Parse(raw, sw)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

var sample = []document.Document{{ID: 2, Relevance: 0.35, Rating: 2}, {ID: 5, Relevance: 0.22, Rating: 1}}

func TestGetOrComputeCachesParsedQuery(t *testing.T) {
	c := New(newMemStore(), time.Minute, nil)
	ctx := context.Background()
	var calls atomic.Int32
	compute := func() ([]document.Document, error) {
		calls.Add(1)
		return sample, nil
	}

	got, hit, err := c.GetOrCompute(ctx, parse(t, "funny curly"), document.StatusActual, 5, compute)
	if err != nil || hit {
		t.Fatalf("first call hit=%v err=%v", hit, err)
	}
	if diff := cmp.Diff(sample, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	got, hit, err = c.GetOrCompute(ctx, parse(t, "curly and funny funny"), document.StatusActual, 5, compute)
	if err != nil || !hit {
		t.Fatalf("equivalent query hit=%v err=%v", hit, err)
	}
	if diff := cmp.Diff(sample, got); diff != "" {
		t.Errorf("cached result mismatch (-want +got):\n%s", diff)
	}
	if calls.Load() != 1 {
		t.Errorf("compute ran %d times, want 1", calls.Load())
	}

	if _, hit, _ := c.GetOrCompute(ctx, parse(t, "curly funny"), document.StatusBanned, 5, compute); hit {
		t.Error("different status served from cache")
	}
	if _, hit, _ := c.GetOrCompute(ctx, parse(t, "curly funny"), document.StatusActual, 3, compute); hit {
		t.Error("different limit served from cache")
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 3 {
		t.Errorf("hits=%d misses=%d", hits, misses)
	}
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, nil)
	ctx := context.Background()
	q := parse(t, "cat")
	c.Set(ctx, q, document.StatusActual, 5, sample)

	if err := c.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, q, document.StatusActual, 5); ok {
		t.Error("result served after invalidation")
	}
	if len(store.data) != 0 {
		t.Errorf("old generation keys left: %v", store.data)
	}
}

func TestComputeErrorNotCached(t *testing.T) {
	c := New(newMemStore(), time.Minute, nil)
	ctx := context.Background()
	boom := errors.New("boom")
	if _, _, err := c.GetOrCompute(ctx, parse(t, "x"), document.StatusActual, 5, func() ([]document.Document, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := c.Get(ctx, parse(t, "x"), document.StatusActual, 5); ok {
		t.Error("error result was cached")
	}
}

func TestBackendErrorIsMiss(t *testing.T) {
	store := newMemStore()
	store.fail = true
	c := New(store, time.Minute, nil)
	docs, hit, err := c.GetOrCompute(context.Background(), parse(t, "x"), document.StatusActual, 5, func() ([]document.Document, error) {
		return sample, nil
	})
	if err != nil || hit || len(docs) != 2 {
		t.Errorf("docs=%v hit=%v err=%v", docs, hit, err)
	}
}

func TestGuardedStoreTripsOnBackendErrors(t *testing.T) {
	store := newMemStore()
	breaker := resilience.NewBreaker("redis", resilience.BreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour})
	c := New(Guard(store, breaker), time.Minute, nil)
	ctx := context.Background()
	q := parse(t, "cat")

	for range 3 {
		if _, ok := c.Get(ctx, q, document.StatusActual, 5); ok {
			t.Fatal("hit on empty store")
		}
	}
	if breaker.State() != resilience.StateClosed {
		t.Fatalf("missing keys tripped the breaker: %s", breaker.State())
	}

	store.fail = true
	before := store.gets
	for range 4 {
		c.Get(ctx, q, document.StatusActual, 5)
	}
	if got := store.gets - before; got != 2 {
		t.Errorf("backend called %d times, want 2 before the circuit opened", got)
	}
	if _, err := Guard(store, breaker).FlushByPattern(ctx, "search:*"); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("flush err = %v, want circuit open", err)
	}
	if _, misses := c.Stats(); misses != 7 {
		t.Errorf("misses = %d, want 7", misses)
	}
}
