package main

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func smallWorkload(seed uint64) workload {
	return generateWorkload(workloadConfig{
		Seed:          seed,
		DictionaryLen: 50,
		MaxWordLen:    6,
		Documents:     40,
		DocumentWords: 12,
		Queries:       25,
		QueryWords:    4,
		MinusProb:     0.2,
	})
}

func TestGenerateWorkloadIsReproducible(t *testing.T) {
	a, b := smallWorkload(7), smallWorkload(7)
	if diff := cmp.Diff(a.queries, b.queries); diff != "" {
		t.Errorf("queries differ for the same seed:\n%s", diff)
	}
	if !slices.Equal(a.documents, b.documents) {
		t.Error("documents differ for the same seed")
	}
	if slices.Equal(a.documents, smallWorkload(8).documents) {
		t.Error("different seeds produced the same documents")
	}
	if !slices.IsSorted(a.dictionary) {
		t.Error("dictionary not sorted")
	}
	for _, q := range a.queries {
		for word := range strings.FieldsSeq(q) {
			if strings.HasPrefix(word, "--") || word == "-" {
				t.Fatalf("malformed query word %q in %q", word, q)
			}
		}
	}
}

func TestCompareModesAgree(t *testing.T) {
	results, err := compareModes(smallWorkload(3))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	seq, par := results[0], results[1]
	if seq.Returned != par.Returned || seq.TotalRelevance != par.TotalRelevance {
		t.Errorf("sequential %+v and parallel %+v disagree", seq, par)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, 1}, {50, 5}, {90, 9}, {99, 10}, {100, 10},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if percentile(nil, 50) != 0 {
		t.Error("percentile of empty slice")
	}
}
