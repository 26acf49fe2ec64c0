package searchserver

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
)

var petTexts = []string{
	"funny pet and nasty rat",
	"funny pet with curly hair",
	"funny pet and not very nasty rat",
	"pet with rat and rat and rat",
	"nasty rat with curly hair",
}

func newPetServer(t *testing.T) *SearchServer {
	t.Helper()
	s, err := New([]string{"and", "with"}, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i, text := range petTexts {
		if err := s.AddDocument(i+1, text, document.StatusActual, []int{1, 2}); err != nil {
			t.Fatalf("AddDocument(%d): %v", i+1, err)
		}
	}
	return s
}

func ids(docs []document.Document) []int {
	out := make([]int, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestNewRejectsControlCharacters(t *testing.T) {
	if _, err := New([]string{"ok", "b\x03d"}, Options{}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("New err = %v, want invalid argument", err)
	}
	if _, err := NewFromText("ok b\x1fd", Options{}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("NewFromText err = %v, want invalid argument", err)
	}
	s, err := NewFromText("  in the  ", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"in", "the"}, s.StopWords()); diff != "" {
		t.Errorf("StopWords mismatch (-want +got):\n%s", diff)
	}
}

func TestAddDocumentCountAndFrequencies(t *testing.T) {
	s := newPetServer(t)
	before := s.DocumentCount()
	if err := s.AddDocument(10, "big grey cat and big dog", document.StatusIrrelevant, nil); err != nil {
		t.Fatal(err)
	}
	if s.DocumentCount() != before+1 {
		t.Errorf("DocumentCount = %d, want %d", s.DocumentCount(), before+1)
	}
	freqs := s.WordFrequencies(10)
	sum := 0.0
	for _, f := range freqs {
		sum += f
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("frequencies sum to %v", sum)
	}
	if _, ok := freqs["and"]; ok {
		t.Error("stop word recorded in frequencies")
	}
}

func TestAddDocumentRejected(t *testing.T) {
	s := newPetServer(t)
	for _, id := range []int{-1, 3} {
		err := s.AddDocument(id, "new text", document.StatusActual, nil)
		if !errors.Is(err, apperrors.ErrInvalidArgument) {
			t.Errorf("AddDocument(%d) err = %v, want invalid argument", id, err)
		}
	}
	if s.DocumentCount() != len(petTexts) {
		t.Errorf("DocumentCount = %d, want %d", s.DocumentCount(), len(petTexts))
	}
}

func TestCurlyFunnyScenario(t *testing.T) {
	s := newPetServer(t)
	for _, mode := range []parallel.Mode{parallel.Sequential, parallel.Parallel} {
		t.Run(mode.String(), func(t *testing.T) {
			docs, err := s.FindTopDocumentsByStatus("curly and funny", document.StatusActual, mode)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff([]int{2, 5, 1, 3}, ids(docs)); diff != "" {
				t.Errorf("ranking mismatch (-want +got):\n%s", diff)
			}

			docs, err = s.FindTopDocumentsByStatus("curly and funny -not", document.StatusActual, mode)
			if err != nil {
				t.Fatal(err)
			}
			if slices.Contains(ids(docs), 3) {
				t.Errorf("document with excluded term returned: %v", docs)
			}

			match, err := s.MatchDocument("curly and funny -not", 3, mode)
			if err != nil {
				t.Fatal(err)
			}
			if len(match.Terms) != 0 || match.Status != document.StatusActual {
				t.Errorf("MatchDocument = %+v, want no terms and ACTUAL", match)
			}
		})
	}
}

func TestSequentialMatchesParallel(t *testing.T) {
	s := newPetServer(t)
	for _, q := range []string{"rat", "pet -curly", "nasty hair funny", "very -very"} {
		seq, err := s.FindTopDocuments(q, document.ByStatus(document.StatusActual), parallel.Sequential)
		if err != nil {
			t.Fatal(err)
		}
		par, err := s.FindTopDocuments(q, document.ByStatus(document.StatusActual), parallel.Parallel)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(seq, par); diff != "" {
			t.Errorf("%q: (-seq +par):\n%s", q, diff)
		}
	}
}

func TestResultCapBoundary(t *testing.T) {
	s := newPetServer(t)
	if prev := s.SetResultCap(0); prev != 5 {
		t.Errorf("SetResultCap(0) = %d", prev)
	}
	if prev := s.SetResultCap(-5); prev != 5 {
		t.Errorf("SetResultCap(-5) = %d", prev)
	}
	s.SetResultCap(3)
	docs, err := s.FindActual("pet rat curly hair")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) > 3 {
		t.Errorf("got %d documents with cap 3", len(docs))
	}
}

func TestRemoveDocumentIdempotent(t *testing.T) {
	s := newPetServer(t)
	before := s.WordFrequencies(5)

	if !s.RemoveDocument(1, parallel.Parallel) {
		t.Fatal("RemoveDocument(1) = false")
	}
	if s.RemoveDocument(1, parallel.Parallel) {
		t.Error("second RemoveDocument(1) = true")
	}
	if s.RemoveDocument(99, parallel.Sequential) {
		t.Error("RemoveDocument(99) = true for unknown id")
	}
	if diff := cmp.Diff(before, s.WordFrequencies(5), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("other document changed (-before +after):\n%s", diff)
	}
	if got := slices.Collect(s.DocumentIDs()); !slices.Equal(got, []int{2, 3, 4, 5}) {
		t.Errorf("DocumentIDs = %v", got)
	}
	docs, _ := s.FindActual("nasty")
	if slices.Contains(ids(docs), 1) {
		t.Error("removed document still searchable")
	}
}

func TestWordFrequenciesUnknownIsEmpty(t *testing.T) {
	s := newPetServer(t)
	freqs := s.WordFrequencies(404)
	if freqs == nil || len(freqs) != 0 {
		t.Errorf("WordFrequencies(404) = %v", freqs)
	}
	freqs["x"] = 1
	if len(s.WordFrequencies(404)) != 0 {
		t.Error("mutating the empty result leaked into the server")
	}
}

func TestDocumentIDsRestartable(t *testing.T) {
	s := newPetServer(t)
	seq := s.DocumentIDs()
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) || !slices.IsSorted(first) {
		t.Errorf("first=%v second=%v", first, second)
	}
	for id := range seq {
		if id == 2 {
			break
		}
	}
}

func TestStats(t *testing.T) {
	s := newPetServer(t)
	st := s.Stats()
	if st.Documents != 5 || st.StopWords != 2 {
		t.Errorf("Stats = %+v", st)
	}
}
