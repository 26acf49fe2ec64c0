// Package searchserver is the public face of the search engine. It ties
// the indexer, which owns the inverted index and document store, to the
// query executor and forwards every operation to the right one.
//
// A SearchServer follows single-writer discipline: AddDocument,
// RemoveDocument and SetResultCap must not overlap with any other call.
// Searches and matches may run concurrently with each other.
package searchserver

import (
	"iter"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
)

// Options tunes a SearchServer. The zero value gives a result cap of 5,
// the default accumulator shard count and no metrics.
type Options struct {
	MaxResults        int
	AccumulatorShards int
	Metrics           *metrics.Metrics
}

type SearchServer struct {
	engine   *indexer.Engine
	executor *executor.Executor
}

// New creates an empty server. A stop word with a control character is an
// invalid argument.
func New(stopWords []string, opts Options) (*SearchServer, error) {
	sw, err := index.NewStopWords(stopWords)
	if err != nil {
		return nil, err
	}
	return newServer(sw, opts), nil
}

// NewFromText is New with stop words given as space-separated text.
func NewFromText(stopWords string, opts Options) (*SearchServer, error) {
	sw, err := index.ParseStopWords(stopWords)
	if err != nil {
		return nil, err
	}
	return newServer(sw, opts), nil
}

func newServer(sw *index.StopWords, opts Options) *SearchServer {
	engine := indexer.NewEngine(sw, opts.Metrics)
	return &SearchServer{
		engine: engine,
		executor: executor.New(engine, executor.Config{
			MaxResults:        opts.MaxResults,
			AccumulatorShards: opts.AccumulatorShards,
		}, opts.Metrics),
	}
}

func (s *SearchServer) AddDocument(id int, text string, status document.Status, ratings []int) error {
	return s.engine.AddDocument(id, text, status, ratings)
}

// RemoveDocument reports whether id was present.
func (s *SearchServer) RemoveDocument(id int, mode parallel.Mode) bool {
	return s.engine.RemoveDocument(id, mode)
}

// ParseQuery parses raw against the server's stop words without running it.
func (s *SearchServer) ParseQuery(raw string) (*parser.Query, error) {
	return s.executor.Parse(raw)
}

func (s *SearchServer) FindTopDocuments(raw string, pred document.Predicate, mode parallel.Mode) ([]document.Document, error) {
	return s.executor.FindTopDocuments(raw, pred, mode)
}

func (s *SearchServer) FindTopDocumentsByStatus(raw string, status document.Status, mode parallel.Mode) ([]document.Document, error) {
	return s.executor.FindTopDocumentsByStatus(raw, status, mode)
}

// FindActual searches ACTUAL documents sequentially.
func (s *SearchServer) FindActual(raw string) ([]document.Document, error) {
	return s.executor.FindActual(raw)
}

func (s *SearchServer) MatchDocument(raw string, id int, mode parallel.Mode) (executor.MatchResult, error) {
	return s.executor.MatchDocument(raw, id, mode)
}

func (s *SearchServer) ProcessQueries(queries []string) ([][]document.Document, error) {
	return s.executor.ProcessQueries(queries)
}

func (s *SearchServer) ProcessQueriesJoined(queries []string) ([]document.Document, error) {
	return s.executor.ProcessQueriesJoined(queries)
}

// WordFrequencies returns a copy of the term frequencies of id. An unknown
// id yields an empty map.
func (s *SearchServer) WordFrequencies(id int) map[string]float64 {
	return s.engine.WordFrequencies(id)
}

func (s *SearchServer) DocumentCount() int {
	return s.engine.DocumentCount()
}

// DocumentIDs yields the stored ids in ascending order.
func (s *SearchServer) DocumentIDs() iter.Seq[int] {
	return s.engine.DocumentIDs()
}

func (s *SearchServer) ResultCap() int {
	return s.executor.ResultCap()
}

// SetResultCap returns the previous cap. n < 1 leaves the cap unchanged.
func (s *SearchServer) SetResultCap(n int) int {
	return s.executor.SetResultCap(n)
}

func (s *SearchServer) StopWords() []string {
	return s.engine.StopWords().Words()
}

func (s *SearchServer) Stats() indexer.Stats {
	return s.engine.Stats()
}
