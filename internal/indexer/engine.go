// Package indexer owns document ingestion and removal. Engine validates
// input, strips stop words and keeps the inverted index and document store
// in step with each other.
//
// Engine performs no locking of its own: AddDocument and RemoveDocument
// must not run concurrently with each other or with any search over the
// same Engine. The service layer serializes access with a RWMutex.
package indexer

import (
	"iter"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
)

type Engine struct {
	memIndex  *index.MemoryIndex
	stopWords *index.StopWords
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Stats summarizes the size of the index.
type Stats struct {
	Documents  int               `json:"documents"`
	Terms      int               `json:"terms"`
	Vocabulary int               `json:"vocabulary"`
	StopWords  int               `json:"stop_words"`
	TopTerms   []index.TermEntry `json:"top_terms"`
}

const statsTopTerms = 10

// NewEngine creates an empty engine. m may be nil.
func NewEngine(stopWords *index.StopWords, m *metrics.Metrics) *Engine {
	if stopWords == nil {
		stopWords, _ = index.NewStopWords(nil)
	}
	return &Engine{
		memIndex:  index.NewMemoryIndex(),
		stopWords: stopWords,
		metrics:   m,
		logger:    slog.Default().With("component", "indexer"),
	}
}

// AddDocument indexes text under id. Every check runs before the index is
// touched: a negative or already used id, or text with control bytes, is an
// invalid argument and leaves the engine unchanged.
func (e *Engine) AddDocument(id int, text string, status document.Status, ratings []int) error {
	if id < 0 {
		e.metrics.DocumentRejected("negative_id")
		return apperrors.InvalidArgumentf("document id %d is negative", id)
	}
	if e.memIndex.Contains(id) {
		e.metrics.DocumentRejected("duplicate_id")
		return apperrors.InvalidArgumentf("document id %d already exists", id)
	}
	terms, invalid := e.SplitNoStop(text)
	if invalid {
		e.metrics.DocumentRejected("invalid_characters")
		return apperrors.InvalidArgumentf("document %d contains invalid characters", id)
	}

	rating := AverageRating(ratings)
	e.memIndex.Insert(id, terms, status, rating)

	e.metrics.DocumentIndexed(e.memIndex.DocCount(), e.memIndex.TermCount())
	e.logger.Debug("document indexed",
		"doc_id", id,
		"status", status,
		"rating", rating,
		"term_count", len(terms),
	)
	return nil
}

// RemoveDocument drops id from the index. An unknown id is a no-op and
// reports false.
func (e *Engine) RemoveDocument(id int, mode parallel.Mode) bool {
	if !e.memIndex.Remove(id, mode) {
		e.logger.Debug("remove skipped, unknown document", "doc_id", id)
		return false
	}
	e.metrics.DocumentRemoved(e.memIndex.DocCount(), e.memIndex.TermCount())
	e.logger.Debug("document removed",
		"doc_id", id,
		"mode", mode,
		"remaining", e.memIndex.DocCount(),
	)
	return true
}

// SplitNoStop tokenizes text and drops stop words. The flag reports control
// bytes in text.
func (e *Engine) SplitNoStop(text string) ([]string, bool) {
	words, invalid := tokenizer.Split(text)
	kept := words[:0]
	for _, w := range words {
		if !e.stopWords.IsStopWord(w) {
			kept = append(kept, w)
		}
	}
	return kept, invalid
}

// AverageRating is the mean of ratings truncated toward zero, or 0 when
// there are none.
func AverageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}

// WordFrequencies returns the term frequencies of id, or an empty map.
func (e *Engine) WordFrequencies(id int) map[string]float64 {
	return e.memIndex.WordFrequencies(id)
}

func (e *Engine) DocumentCount() int {
	return e.memIndex.DocCount()
}

// DocumentIDs yields stored ids in ascending order.
func (e *Engine) DocumentIDs() iter.Seq[int] {
	return e.memIndex.IDs()
}

func (e *Engine) StopWords() *index.StopWords {
	return e.stopWords
}

// Index exposes the underlying index to the search side.
func (e *Engine) Index() *index.MemoryIndex {
	return e.memIndex
}

func (e *Engine) Stats() Stats {
	return Stats{
		Documents:  e.memIndex.DocCount(),
		Terms:      e.memIndex.TermCount(),
		Vocabulary: e.memIndex.VocabularySize(),
		StopWords:  e.stopWords.Len(),
		TopTerms:   e.memIndex.TopTerms(statsTopTerms),
	}
}
