// Package ranker scores documents against a parsed query with TF-IDF and
// orders the results.
package ranker

import (
	"cmp"
	"maps"
	"math"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/shardmap"
)

// RelevanceTolerance is the largest relevance difference still treated as
// a tie.
const RelevanceTolerance = 1e-6

// DefaultShards is the accumulator shard count used when none is given.
const DefaultShards = 4096

// FindAll returns every document that matches a required term of q,
// passes pred and contains no excluded term, ordered by document id.
//
// Required terms are applied one after another in query order and each
// term's postings are fanned out across workers in Parallel mode. Every
// document therefore receives its additions in the same order in both
// modes and the relevance values are bit-identical.
func FindAll(idx *index.MemoryIndex, q *parser.Query, pred document.Predicate, mode parallel.Mode, shards int) []document.Document {
	if shards < 1 {
		shards = DefaultShards
	}
	acc := shardmap.New[int, float64](shards, shardmap.IntHasher[int]())

	var ids []int
	for _, term := range q.Plus {
		postings, ok := idx.Postings(term)
		if !ok {
			continue
		}
		idf := idx.InverseDocumentFreq(term)
		ids = slices.AppendSeq(ids[:0], maps.Keys(postings))
		parallel.ForEachChunk(mode, len(ids), func(lo, hi int) {
			for _, id := range ids[lo:hi] {
				data, ok := idx.Document(id)
				if !ok || !pred(id, data.Status, data.Rating) {
					continue
				}
				acc.Update(id, func(rel *float64) {
					*rel += postings[id] * idf
				})
			}
		})
	}

	parallel.ForEach(mode, q.Minus, func(term string) {
		postings, ok := idx.Postings(term)
		if !ok {
			return
		}
		for id := range postings {
			acc.Erase(id)
		}
	})

	entries := acc.Snapshot()
	docs := make([]document.Document, 0, len(entries))
	for _, e := range entries {
		data, _ := idx.Document(e.Key)
		docs = append(docs, document.Document{
			ID:        e.Key,
			Relevance: e.Value,
			Rating:    data.Rating,
		})
	}
	return docs
}

// Compare orders by descending relevance. Relevances closer than
// RelevanceTolerance count as equal and fall back to descending rating.
func Compare(a, b document.Document) int {
	if math.Abs(a.Relevance-b.Relevance) < RelevanceTolerance {
		return cmp.Compare(b.Rating, a.Rating)
	}
	if a.Relevance > b.Relevance {
		return -1
	}
	return 1
}

// Sort orders docs in place with Compare. The sort is stable, so input in
// id order always produces the same output.
func Sort(docs []document.Document) {
	slices.SortStableFunc(docs, Compare)
}

// Top sorts docs and truncates them to limit entries. limit < 1 keeps all.
func Top(docs []document.Document, limit int) []document.Document {
	Sort(docs)
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs
}
