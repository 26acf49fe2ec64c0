package shardmap

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUpdateIsAtomicUnderContention(t *testing.T) {
	m := New[int, float64](8, IntHasher[int]())
	const workers, perWorker = 16, 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				m.Update(i%20, func(v *float64) { *v += 1 })
			}
		}()
	}
	wg.Wait()

	for _, e := range m.Snapshot() {
		if want := float64(workers * perWorker / 20); e.Value != want {
			t.Errorf("key %d = %v, want %v", e.Key, e.Value, want)
		}
	}
	if m.Len() != 20 {
		t.Errorf("Len() = %d, want 20", m.Len())
	}
}

func TestAccessInsertsZeroAndReleases(t *testing.T) {
	m := New[int, int](4, IntHasher[int]())

	a := m.Access(7)
	if *a.Value != 0 {
		t.Fatalf("new slot = %d, want 0", *a.Value)
	}
	*a.Value += 3
	a.Release()
	a.Release()

	// Would deadlock if the shard were still held.
	m.Update(7, func(v *int) { *v *= 2 })

	got := m.Snapshot()
	want := []Entry[int, int]{{Key: 7, Value: 6}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateReleasesOnPanic(t *testing.T) {
	m := New[int, int](1, IntHasher[int]())
	func() {
		defer func() { _ = recover() }()
		m.Update(1, func(v *int) { panic("scoring failed") })
	}()
	if m.Count(1) != 1 {
		t.Error("expected slot to exist after panicking update")
	}
}

func TestCountAndErase(t *testing.T) {
	m := New[int, float64](3, IntHasher[int]())
	for _, k := range []int{1, 4, 7, 2} {
		m.Update(k, func(v *float64) { *v = float64(k) })
	}

	if m.Count(4) != 1 || m.Count(5) != 0 {
		t.Errorf("Count mismatch: Count(4)=%d Count(5)=%d", m.Count(4), m.Count(5))
	}
	if n := m.Erase(4); n != 1 {
		t.Errorf("Erase(4) = %d, want 1", n)
	}
	if n := m.Erase(4); n != 0 {
		t.Errorf("second Erase(4) = %d, want 0", n)
	}

	want := []Entry[int, float64]{{1, 1}, {2, 2}, {7, 7}}
	if diff := cmp.Diff(want, m.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
}

func TestStringKeys(t *testing.T) {
	m := New[string, int](16, StringHasher[string]())
	for _, w := range []string{"rat", "pet", "rat", "curly", "rat"} {
		m.Update(w, func(v *int) { *v++ })
	}
	want := []Entry[string, int]{{"curly", 1}, {"pet", 1}, {"rat", 3}}
	if diff := cmp.Diff(want, m.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewClampsShardCount(t *testing.T) {
	if got := New[int, int](0, IntHasher[int]()).ShardCount(); got != 1 {
		t.Errorf("ShardCount() = %d, want 1", got)
	}
}

func BenchmarkUpdateParallel(b *testing.B) {
	m := New[int, float64](4096, IntHasher[int]())
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Update(i%10000, func(v *float64) { *v += 0.5 })
			i++
		}
	})
}
