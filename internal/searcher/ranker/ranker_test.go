package ranker

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
)

var pets = []string{
	"funny pet nasty rat",
	"funny pet curly hair",
	"funny pet not very nasty rat",
	"pet rat rat rat",
	"nasty rat curly hair",
}

func petIndex() *index.MemoryIndex {
	idx := index.NewMemoryIndex()
	for i, text := range pets {
		idx.Insert(i+1, strings.Fields(text), document.StatusActual, i)
	}
	return idx
}

func mustParse(t testing.TB, q string) *parser.Query {
	t.Helper()
	pq, err := parser.Parse(q, nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", q, err)
	}
	return pq
}

func ids(docs []document.Document) []int {
	out := make([]int, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestFindAllScores(t *testing.T) {
	idx := petIndex()
	docs := FindAll(idx, mustParse(t, "curly funny"), document.ByStatus(document.StatusActual), parallel.Sequential, 16)

	curly := math.Log(5.0 / 2)
	funny := math.Log(5.0 / 3)
	want := map[int]float64{
		1: 0.25 * funny,
		2: 0.25*curly + 0.25*funny,
		3: funny / 6,
		5: 0.25 * curly,
	}
	if len(docs) != len(want) {
		t.Fatalf("got %d documents, want %d: %v", len(docs), len(want), docs)
	}
	for _, d := range docs {
		if math.Abs(d.Relevance-want[d.ID]) > 1e-12 {
			t.Errorf("doc %d relevance = %v, want %v", d.ID, d.Relevance, want[d.ID])
		}
		if d.Rating != d.ID-1 {
			t.Errorf("doc %d rating = %d, want %d", d.ID, d.Rating, d.ID-1)
		}
	}
	if diff := cmp.Diff([]int{2, 5, 1, 3}, ids(Top(docs, 0))); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAllExcludedTermDominates(t *testing.T) {
	idx := petIndex()
	for _, mode := range []parallel.Mode{parallel.Sequential, parallel.Parallel} {
		docs := Top(FindAll(idx, mustParse(t, "curly funny -not"), document.ByStatus(document.StatusActual), mode, 4), 0)
		if diff := cmp.Diff([]int{2, 5, 1}, ids(docs)); diff != "" {
			t.Errorf("%s: order mismatch (-want +got):\n%s", mode, diff)
		}
	}
}

func TestFindAllPredicate(t *testing.T) {
	idx := index.NewMemoryIndex()
	idx.Insert(1, []string{"cat"}, document.StatusActual, 1)
	idx.Insert(2, []string{"cat"}, document.StatusBanned, 9)
	idx.Insert(3, []string{"dog"}, document.StatusActual, 3)

	banned := FindAll(idx, mustParse(t, "cat"), document.ByStatus(document.StatusBanned), parallel.Sequential, 0)
	if diff := cmp.Diff([]int{2}, ids(banned)); diff != "" {
		t.Errorf("banned mismatch (-want +got):\n%s", diff)
	}

	even := func(id int, _ document.Status, _ int) bool { return id%2 == 0 }
	if got := FindAll(idx, mustParse(t, "cat dog"), even, parallel.Parallel, 0); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("even filter = %v", got)
	}
}

func TestFindAllUnknownTerms(t *testing.T) {
	idx := petIndex()
	if got := FindAll(idx, mustParse(t, "zebra -lion"), document.ByStatus(document.StatusActual), parallel.Parallel, 0); len(got) != 0 {
		t.Errorf("FindAll = %v, want none", got)
	}
}

func TestSortToleranceTieBreak(t *testing.T) {
	docs := []document.Document{
		{ID: 1, Relevance: 0.5, Rating: 1},
		{ID: 2, Relevance: 0.5 + 5e-7, Rating: 7},
		{ID: 3, Relevance: 0.9, Rating: -2},
		{ID: 4, Relevance: 0.5 - 2e-6, Rating: 100},
	}
	Sort(docs)
	if diff := cmp.Diff([]int{3, 2, 1, 4}, ids(docs)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestTopTruncates(t *testing.T) {
	docs := make([]document.Document, 8)
	for i := range docs {
		docs[i] = document.Document{ID: i, Relevance: float64(i)}
	}
	got := Top(docs, 3)
	if diff := cmp.Diff([]int{7, 6, 5}, ids(got)); diff != "" {
		t.Errorf("Top mismatch (-want +got):\n%s", diff)
	}
}

func randomIndex(r *rand.Rand, docs, words int) *index.MemoryIndex {
	dict := make([]string, words)
	for i := range dict {
		dict[i] = fmt.Sprintf("w%d", i)
	}
	idx := index.NewMemoryIndex()
	for id := range docs {
		terms := make([]string, 1+r.IntN(20))
		for i := range terms {
			terms[i] = dict[r.IntN(len(dict))]
		}
		status := document.Status(r.IntN(2))
		idx.Insert(id, terms, status, r.IntN(20)-10)
	}
	return idx
}

func TestSequentialAndParallelAgree(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))
	idx := randomIndex(r, 2000, 300)
	pred := document.ByStatus(document.StatusActual)

	for i := range 50 {
		var b strings.Builder
		for j := range 6 {
			if j > 0 {
				b.WriteByte(' ')
			}
			if r.IntN(5) == 0 {
				b.WriteByte('-')
			}
			fmt.Fprintf(&b, "w%d", r.IntN(320))
		}
		q := mustParse(t, b.String())
		seq := Top(FindAll(idx, q, pred, parallel.Sequential, 64), 5)
		par := Top(FindAll(idx, q, pred, parallel.Parallel, 64), 5)
		if diff := cmp.Diff(seq, par); diff != "" {
			t.Errorf("query %d %q: sequential and parallel differ (-seq +par):\n%s", i, b.String(), diff)
		}
	}
}

func BenchmarkFindAll(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	idx := randomIndex(r, 10000, 1000)
	q := mustParse(b, "w1 w2 w3 w4 w5 w6 w7 w8 -w9")
	pred := document.ByStatus(document.StatusActual)
	for _, mode := range []parallel.Mode{parallel.Sequential, parallel.Parallel} {
		b.Run(mode.String(), func(b *testing.B) {
			for b.Loop() {
				Top(FindAll(idx, q, pred, mode, DefaultShards), 5)
			}
		})
	}
}
