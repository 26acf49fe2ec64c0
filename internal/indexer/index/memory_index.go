// Package index holds the in-memory inverted index and document store: for
// every term the documents containing it with their normalized term
// frequency, and for every document its rating, status and term
// frequencies.
//
// MemoryIndex is not synchronized. Mutations must not overlap with each
// other or with reads; see indexer.Engine.
package index

import (
	"iter"
	"maps"
	"math"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
)

type MemoryIndex struct {
	vocab    *Vocabulary
	postings map[string]Postings
	docs     map[int]*DocumentData
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		vocab:    NewVocabulary(),
		postings: make(map[string]Postings),
		docs:     make(map[int]*DocumentData),
	}
}

// Insert records a document made of terms. The caller has already rejected
// bad ids and text. Each occurrence contributes 1/len(terms) to the term's
// frequency, so a document's frequencies sum to 1.
func (m *MemoryIndex) Insert(id int, terms []string, status document.Status, rating int) {
	freqs := make(map[string]float64)
	if len(terms) > 0 {
		inc := 1.0 / float64(len(terms))
		for _, t := range terms {
			term := m.vocab.Intern(t)
			p, ok := m.postings[term]
			if !ok {
				p = make(Postings)
				m.postings[term] = p
			}
			p[id] += inc
			freqs[term] += inc
		}
	}
	m.docs[id] = &DocumentData{
		Rating:      rating,
		Status:      status,
		Frequencies: freqs,
	}
}

// Remove deletes id from the document store and then from every posting
// list it appears in. Emptied terms are dropped afterwards in a separate
// sequential pass so the postings table is never restructured while
// workers are erasing from it. Returns false if id was unknown.
func (m *MemoryIndex) Remove(id int, mode parallel.Mode) bool {
	data, ok := m.docs[id]
	if !ok {
		return false
	}
	delete(m.docs, id)

	lists := make([]Postings, 0, len(data.Frequencies))
	terms := make([]string, 0, len(data.Frequencies))
	for term := range data.Frequencies {
		if p, ok := m.postings[term]; ok {
			lists = append(lists, p)
			terms = append(terms, term)
		}
	}
	parallel.ForEach(mode, lists, func(p Postings) {
		delete(p, id)
	})

	for _, term := range terms {
		if len(m.postings[term]) == 0 {
			delete(m.postings, term)
		}
	}
	return true
}

func (m *MemoryIndex) Contains(id int) bool {
	_, ok := m.docs[id]
	return ok
}

// Document returns the stored data for id. The frequency map is shared and
// must not be modified.
func (m *MemoryIndex) Document(id int) (*DocumentData, bool) {
	d, ok := m.docs[id]
	return d, ok
}

// Postings returns the posting list for term. The map is shared and must
// not be modified.
func (m *MemoryIndex) Postings(term string) (Postings, bool) {
	p, ok := m.postings[term]
	return p, ok
}

// HasPosting reports whether term is indexed for document id.
func (m *MemoryIndex) HasPosting(term string, id int) bool {
	p, ok := m.postings[term]
	if !ok {
		return false
	}
	_, ok = p[id]
	return ok
}

// InverseDocumentFreq is ln(N / df) against the current document count. It
// is recomputed on every call because N changes with every mutation.
// Returns 0 for an unindexed term.
func (m *MemoryIndex) InverseDocumentFreq(term string) float64 {
	p, ok := m.postings[term]
	if !ok || len(p) == 0 {
		return 0
	}
	return math.Log(float64(len(m.docs)) / float64(len(p)))
}

// WordFrequencies returns a copy of the document's term frequencies, or an
// empty map for an unknown id.
func (m *MemoryIndex) WordFrequencies(id int) map[string]float64 {
	d, ok := m.docs[id]
	if !ok {
		return map[string]float64{}
	}
	return maps.Clone(d.Frequencies)
}

func (m *MemoryIndex) DocCount() int {
	return len(m.docs)
}

func (m *MemoryIndex) TermCount() int {
	return len(m.postings)
}

// VocabularySize counts every term ever interned, including terms whose
// postings have since been dropped.
func (m *MemoryIndex) VocabularySize() int {
	return m.vocab.Len()
}

// IDs yields document ids in ascending order. The ids are captured when
// iteration starts, so every range over the sequence sees a fresh view.
func (m *MemoryIndex) IDs() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, id := range slices.Sorted(maps.Keys(m.docs)) {
			if !yield(id) {
				return
			}
		}
	}
}

// TopTerms lists the n terms with the most documents, ties broken by term.
func (m *MemoryIndex) TopTerms(n int) []TermEntry {
	entries := make([]TermEntry, 0, len(m.postings))
	for term, p := range m.postings {
		entries = append(entries, TermEntry{Term: term, DocCount: len(p)})
	}
	slices.SortFunc(entries, func(a, b TermEntry) int {
		if a.DocCount != b.DocCount {
			return b.DocCount - a.DocCount
		}
		if a.Term < b.Term {
			return -1
		}
		if a.Term > b.Term {
			return 1
		}
		return 0
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
