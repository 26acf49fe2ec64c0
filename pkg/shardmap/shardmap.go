// Package shardmap provides a map striped across a fixed number of
// independently locked shards. Operations on keys that land in different
// shards never contend, which makes it suitable as a scratch accumulator
// for parallel scoring.
package shardmap

import (
	"cmp"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps a key onto an unsigned integer; the owning shard is
// hash(key) mod shard count.
type Hasher[K any] func(K) uint64

// Integer is the set of key types accepted by IntHasher.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// IntHasher uses the key itself, so non-negative keys are distributed by a
// plain modulus.
func IntHasher[K Integer]() Hasher[K] {
	return func(k K) uint64 { return uint64(k) }
}

// StringHasher hashes string keys with xxhash.
func StringHasher[K ~string]() Hasher[K] {
	return func(k K) uint64 { return xxhash.Sum64String(string(k)) }
}

type shard[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]*V
}

// Map is a sharded concurrent map. The zero value is not usable; call New.
type Map[K cmp.Ordered, V any] struct {
	shards []shard[K, V]
	hash   Hasher[K]
}

// Entry is one key/value pair of a Snapshot.
type Entry[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// New creates a Map with shardCount shards (at least one).
func New[K cmp.Ordered, V any](shardCount int, hash Hasher[K]) *Map[K, V] {
	if shardCount < 1 {
		shardCount = 1
	}
	m := &Map[K, V]{
		shards: make([]shard[K, V], shardCount),
		hash:   hash,
	}
	for i := range m.shards {
		m.shards[i].items = make(map[K]*V)
	}
	return m
}

// ShardCount returns the number of shards fixed at construction.
func (m *Map[K, V]) ShardCount() int {
	return len(m.shards)
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	return &m.shards[m.hash(key)%uint64(len(m.shards))]
}

// Access is an exclusive handle on one slot of the map. The owning shard
// stays locked until Release is called, so every read-modify-write done
// through Value is atomic with respect to other users of that shard.
type Access[V any] struct {
	Value *V
	mu    *sync.Mutex
}

// Release unlocks the shard. Calling it more than once is a no-op.
func (a *Access[V]) Release() {
	if a.mu == nil {
		return
	}
	mu := a.mu
	a.mu = nil
	a.Value = nil
	mu.Unlock()
}

// Access locks the shard owning key and returns a handle to its slot,
// inserting a zero value if the key is absent. Callers must Release the
// handle, typically with defer.
func (m *Map[K, V]) Access(key K) *Access[V] {
	s := m.shardFor(key)
	s.mu.Lock()
	v, ok := s.items[key]
	if !ok {
		v = new(V)
		s.items[key] = v
	}
	return &Access[V]{Value: v, mu: &s.mu}
}

// Update runs fn on the slot for key while holding the shard lock. The lock
// is released on every exit path, including a panic in fn.
func (m *Map[K, V]) Update(key K, fn func(v *V)) {
	a := m.Access(key)
	defer a.Release()
	fn(a.Value)
}

// Count returns 1 if key is present and 0 otherwise.
func (m *Map[K, V]) Count(key K) int {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return 1
	}
	return 0
}

// Erase removes key and returns the number of entries removed (0 or 1).
func (m *Map[K, V]) Erase(key K) int {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		return 0
	}
	delete(s.items, key)
	return 1
}

// Len sums the shard sizes, locking one shard at a time.
func (m *Map[K, V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		n += len(s.items)
		s.mu.Unlock()
	}
	return n
}

// Snapshot copies every entry into a slice ordered by key. Shards are
// locked one at a time, so the result is consistent per shard but not a
// single point-in-time view across shards.
func (m *Map[K, V]) Snapshot() []Entry[K, V] {
	entries := make([]Entry[K, V], 0)
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k, v := range s.items {
			entries = append(entries, Entry[K, V]{Key: k, Value: *v})
		}
		s.mu.Unlock()
	}
	slices.SortFunc(entries, func(a, b Entry[K, V]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return entries
}
