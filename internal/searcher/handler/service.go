package handler

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searchserver"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
)

// Service guards one SearchServer for concurrent callers. Mutations take
// the write lock and retire the result cache before releasing it;
// searches, matches and reads share the read lock. Cached results are
// stored while the read lock is still held, so a result can never be
// cached under a generation newer than the index it was computed from.
type Service struct {
	mu        sync.RWMutex
	server    *searchserver.SearchServer
	cache     *cache.QueryCache
	collector *analytics.Collector
	queue     *analytics.RequestQueue
	logger    *slog.Logger
}

// SearchResult is one served query.
type SearchResult struct {
	Documents []document.Document
	CacheHit  bool
}

// ServiceStats describes the index and the recent request window.
type ServiceStats struct {
	indexer.Stats
	ResultCap        int   `json:"result_cap"`
	WindowSize       int   `json:"window_size"`
	WindowRequests   int   `json:"window_requests"`
	NoResultRequests int   `json:"no_result_requests"`
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
}

// NewService wraps server. queryCache and collector may be nil; window is
// the request-queue size.
func NewService(server *searchserver.SearchServer, queryCache *cache.QueryCache, collector *analytics.Collector, window int) *Service {
	return &Service{
		server:    server,
		cache:     queryCache,
		collector: collector,
		queue:     analytics.NewRequestQueue(server, window),
		logger:    logger.WithComponent("search-service"),
	}
}

func (s *Service) AddDocument(ctx context.Context, id int, text string, status document.Status, ratings []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.server.AddDocument(id, text, status, ratings); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.collector.Track(analytics.IndexEvent{
		Type:       analytics.EventIndexDocument,
		DocumentID: id,
		TermCount:  len(s.server.WordFrequencies(id)),
		Timestamp:  time.Now().UTC(),
	})
	return nil
}

func (s *Service) RemoveDocument(ctx context.Context, id int, mode parallel.Mode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.server.RemoveDocument(id, mode) {
		return false
	}
	s.invalidate(ctx)
	s.collector.Track(analytics.IndexEvent{
		Type:       analytics.EventRemoveDocument,
		DocumentID: id,
		Timestamp:  time.Now().UTC(),
	})
	return true
}

// Search runs a top-documents query for status, through the cache when one
// is configured, and records it in the request window.
func (s *Service) Search(ctx context.Context, raw string, status document.Status, mode parallel.Mode) (SearchResult, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	s.mu.RLock()
	res, err := s.search(ctx, raw, status, mode)
	s.mu.RUnlock()

	latency := time.Since(start)
	event := analytics.SearchEvent{
		Type:      analytics.EventSearch,
		Query:     raw,
		Status:    status.String(),
		Mode:      mode.String(),
		LatencyMs: latency.Milliseconds(),
		Timestamp: time.Now().UTC(),
		RequestID: logger.RequestID(ctx),
	}
	if err != nil {
		event.Failed = true
		s.collector.Track(event)
		return SearchResult{}, err
	}
	s.queue.Record(len(res.Documents))
	event.Returned = len(res.Documents)
	event.CacheHit = res.CacheHit
	s.collector.Track(event)

	log.Info("search completed",
		"query", raw,
		"status", status,
		"mode", mode,
		"returned", len(res.Documents),
		"cache_hit", res.CacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	return res, nil
}

func (s *Service) search(ctx context.Context, raw string, status document.Status, mode parallel.Mode) (SearchResult, error) {
	if s.cache == nil {
		docs, err := s.server.FindTopDocumentsByStatus(raw, status, mode)
		return SearchResult{Documents: docs}, err
	}
	q, err := s.server.ParseQuery(raw)
	if err != nil {
		return SearchResult{}, err
	}
	docs, hit, err := s.cache.GetOrCompute(ctx, q, status, s.server.ResultCap(), func() ([]document.Document, error) {
		return s.server.FindTopDocumentsByStatus(raw, status, mode)
	})
	return SearchResult{Documents: docs, CacheHit: hit}, err
}

// Batch runs ProcessQueries; the i-th result belongs to queries[i].
func (s *Service) Batch(queries []string) ([][]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server.ProcessQueries(queries)
}

func (s *Service) Match(raw string, id int, mode parallel.Mode) (executor.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server.MatchDocument(raw, id, mode)
}

func (s *Service) DocumentIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(s.server.DocumentIDs())
}

func (s *Service) WordFrequencies(id int) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server.WordFrequencies(id)
}

// SetResultCap returns the previous and the current cap.
func (s *Service) SetResultCap(n int) (previous, current int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous = s.server.SetResultCap(n)
	return previous, s.server.ResultCap()
}

func (s *Service) Stats() ServiceStats {
	s.mu.RLock()
	st := s.server.Stats()
	resultCap := s.server.ResultCap()
	s.mu.RUnlock()

	stats := ServiceStats{
		Stats:            st,
		ResultCap:        resultCap,
		WindowSize:       s.queue.Window(),
		WindowRequests:   s.queue.Len(),
		NoResultRequests: s.queue.NoResultRequests(),
	}
	if s.cache != nil {
		stats.CacheHits, stats.CacheMisses = s.cache.Stats()
	}
	return stats
}

// DocumentCount is used by the readiness check.
func (s *Service) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server.DocumentCount()
}

// invalidate must be called with the write lock held.
func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", "error", err)
	}
}
