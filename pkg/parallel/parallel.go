// Package parallel selects, per call, whether a loop runs on the calling
// goroutine or fans out across GOMAXPROCS workers. Either way the call
// returns only after every iteration has finished.
package parallel

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Mode is an execution policy passed explicitly at each call site.
type Mode int

const (
	Sequential Mode = iota
	Parallel
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "seq"/"sequential"/"" and "par"/"parallel".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "seq", "sequential":
		return Sequential, nil
	case "par", "parallel":
		return Parallel, nil
	default:
		return Sequential, fmt.Errorf("unknown execution mode %q", s)
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Workers is the fan-out width used in Parallel mode.
func Workers() int {
	return runtime.GOMAXPROCS(0)
}

// ForEach calls fn for every item. In Parallel mode the calls run
// concurrently, so fn must be safe for that.
func ForEach[T any](mode Mode, items []T, fn func(T)) {
	if mode != Parallel || len(items) < 2 {
		for _, item := range items {
			fn(item)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(Workers())
	for _, item := range items {
		g.Go(func() error {
			fn(item)
			return nil
		})
	}
	_ = g.Wait()
}

// ForEachIndex is ForEach over the indices of items, letting fn write
// results into a slot owned by that index.
func ForEachIndex[T any](mode Mode, items []T, fn func(i int, item T)) {
	if mode != Parallel || len(items) < 2 {
		for i, item := range items {
			fn(i, item)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(Workers())
	for i, item := range items {
		g.Go(func() error {
			fn(i, item)
			return nil
		})
	}
	_ = g.Wait()
}

// ForEachChunk splits [0, n) into contiguous ranges, one per worker in
// Parallel mode, and calls fn on each range.
func ForEachChunk(mode Mode, n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := Workers()
	if mode != Parallel || n < 2 || workers < 2 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}
	size := (n + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

// Map transforms items with fn and keeps the input order in the output. The
// first error returned by fn is reported; in Parallel mode the remaining
// iterations still run to completion.
func Map[T, R any](mode Mode, items []T, fn func(T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	if mode != Parallel || len(items) < 2 {
		for i, item := range items {
			r, err := fn(item)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	var g errgroup.Group
	g.SetLimit(Workers())
	for i, item := range items {
		g.Go(func() error {
			r, err := fn(item)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
