package main

import (
	"math/rand/v2"
	"slices"
	"strings"
)

// workload is a reproducible set of documents and queries drawn from a
// random dictionary.
type workload struct {
	dictionary []string
	documents  []string
	queries    []string
}

type workloadConfig struct {
	Seed          uint64
	DictionaryLen int
	MaxWordLen    int
	Documents     int
	DocumentWords int
	Queries       int
	QueryWords    int
	MinusProb     float64
}

func generateWorkload(cfg workloadConfig) workload {
	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	dict := generateDictionary(r, cfg.DictionaryLen, cfg.MaxWordLen)
	w := workload{
		dictionary: dict,
		documents:  make([]string, cfg.Documents),
		queries:    make([]string, cfg.Queries),
	}
	for i := range w.documents {
		w.documents[i] = generateQuery(r, dict, cfg.DocumentWords, 0)
	}
	for i := range w.queries {
		w.queries[i] = generateQuery(r, dict, cfg.QueryWords, cfg.MinusProb)
	}
	return w
}

// generateDictionary returns up to n distinct lowercase words, sorted.
func generateDictionary(r *rand.Rand, n, maxLen int) []string {
	words := make([]string, 0, n)
	for range n {
		length := 1 + r.IntN(maxLen)
		var b strings.Builder
		for range length {
			b.WriteByte(byte('a' + r.IntN(26)))
		}
		words = append(words, b.String())
	}
	slices.Sort(words)
	return slices.Compact(words)
}

func generateQuery(r *rand.Rand, dict []string, words int, minusProb float64) string {
	parts := make([]string, words)
	for i := range parts {
		word := dict[r.IntN(len(dict))]
		if minusProb > 0 && r.Float64() < minusProb {
			word = "-" + word
		}
		parts[i] = word
	}
	return strings.Join(parts, " ")
}
