package executor

import (
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
)

// DefaultResultCap is the number of documents a search returns until
// SetResultCap changes it.
const DefaultResultCap = 5

type Config struct {
	MaxResults        int
	AccumulatorShards int
}

// MatchResult lists the required query terms found in one document.
type MatchResult struct {
	Terms  []string        `json:"terms"`
	Status document.Status `json:"status"`
}

type Executor struct {
	engine    *indexer.Engine
	resultCap atomic.Int64
	shards    int
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates an executor over engine. Zero config fields take their
// defaults; m may be nil.
func New(engine *indexer.Engine, cfg Config, m *metrics.Metrics) *Executor {
	if cfg.MaxResults < 1 {
		cfg.MaxResults = DefaultResultCap
	}
	if cfg.AccumulatorShards < 1 {
		cfg.AccumulatorShards = ranker.DefaultShards
	}
	e := &Executor{
		engine:  engine,
		shards:  cfg.AccumulatorShards,
		metrics: m,
		logger:  slog.Default().With("component", "query-executor"),
	}
	e.resultCap.Store(int64(cfg.MaxResults))
	return e
}

func (e *Executor) ResultCap() int {
	return int(e.resultCap.Load())
}

// SetResultCap replaces the cap and returns the previous one. Values below
// 1 are ignored.
func (e *Executor) SetResultCap(n int) int {
	if n < 1 {
		return e.ResultCap()
	}
	prev := int(e.resultCap.Swap(int64(n)))
	if prev != n {
		e.logger.Info("result cap changed", "previous", prev, "current", n)
	}
	return prev
}

// Parse parses raw against the engine's stop words.
func (e *Executor) Parse(raw string) (*parser.Query, error) {
	return parser.Parse(raw, e.engine.StopWords())
}

// FindTopDocuments returns at most ResultCap documents matching raw and
// accepted by pred, best first.
func (e *Executor) FindTopDocuments(raw string, pred document.Predicate, mode parallel.Mode) ([]document.Document, error) {
	start := time.Now()
	q, err := e.Parse(raw)
	if err != nil {
		e.metrics.SearchCompleted(mode.String(), 0, 0, err)
		return nil, err
	}

	docs := ranker.Top(ranker.FindAll(e.engine.Index(), q, pred, mode, e.shards), e.ResultCap())

	elapsed := time.Since(start)
	e.metrics.SearchCompleted(mode.String(), elapsed, len(docs), nil)
	e.logger.Debug("query executed",
		"query", raw,
		"plus", q.Plus,
		"minus", q.Minus,
		"mode", mode,
		"results", len(docs),
		"duration_ms", elapsed.Milliseconds(),
	)
	return docs, nil
}

func (e *Executor) FindTopDocumentsByStatus(raw string, status document.Status, mode parallel.Mode) ([]document.Document, error) {
	return e.FindTopDocuments(raw, document.ByStatus(status), mode)
}

// FindActual searches documents with status ACTUAL sequentially.
func (e *Executor) FindActual(raw string) ([]document.Document, error) {
	return e.FindTopDocumentsByStatus(raw, document.StatusActual, parallel.Sequential)
}

// MatchDocument reports which required terms of raw occur in document id.
// If any excluded term occurs the term list is empty, but the status is
// still returned. The query is parsed before id is looked up.
func (e *Executor) MatchDocument(raw string, id int, mode parallel.Mode) (MatchResult, error) {
	q, err := e.Parse(raw)
	if err != nil {
		e.metrics.MatchCompleted("error")
		return MatchResult{}, err
	}
	idx := e.engine.Index()
	data, ok := idx.Document(id)
	if !ok {
		e.metrics.MatchCompleted("not_found")
		return MatchResult{}, apperrors.NotFoundf("document %d not found", id)
	}

	var excluded atomic.Bool
	parallel.ForEach(mode, q.Minus, func(term string) {
		if idx.HasPosting(term, id) {
			excluded.Store(true)
		}
	})
	if excluded.Load() {
		e.metrics.MatchCompleted("excluded")
		return MatchResult{Terms: []string{}, Status: data.Status}, nil
	}

	present := make([]bool, len(q.Plus))
	parallel.ForEachIndex(mode, q.Plus, func(i int, term string) {
		present[i] = idx.HasPosting(term, id)
	})
	terms := make([]string, 0, len(q.Plus))
	for i, term := range q.Plus {
		if present[i] {
			terms = append(terms, term)
		}
	}
	e.metrics.MatchCompleted("matched")
	return MatchResult{Terms: slices.Clip(terms), Status: data.Status}, nil
}
