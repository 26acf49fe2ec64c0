package analytics

import (
	"sync"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
)

// MinutesInDay is the default request window: one request per minute for a
// day.
const MinutesInDay = 1440

// Finder runs top-document searches. *searchserver.SearchServer satisfies
// it.
type Finder interface {
	FindTopDocuments(raw string, pred document.Predicate, mode parallel.Mode) ([]document.Document, error)
}

// RequestQueue forwards searches to a Finder and remembers, for the most
// recent window requests, whether each one returned nothing. A failed
// search is not recorded.
type RequestQueue struct {
	finder Finder

	mu       sync.Mutex
	empty    []bool
	next     int
	size     int
	noResult int
}

// NewRequestQueue creates a queue over finder. window < 1 means
// MinutesInDay.
func NewRequestQueue(finder Finder, window int) *RequestQueue {
	if window < 1 {
		window = MinutesInDay
	}
	return &RequestQueue{
		finder: finder,
		empty:  make([]bool, window),
	}
}

func (q *RequestQueue) AddFindRequest(raw string, pred document.Predicate, mode parallel.Mode) ([]document.Document, error) {
	docs, err := q.finder.FindTopDocuments(raw, pred, mode)
	if err != nil {
		return nil, err
	}
	q.Record(len(docs))
	return docs, nil
}

func (q *RequestQueue) AddFindRequestByStatus(raw string, status document.Status, mode parallel.Mode) ([]document.Document, error) {
	return q.AddFindRequest(raw, document.ByStatus(status), mode)
}

// AddActualRequest searches ACTUAL documents sequentially.
func (q *RequestQueue) AddActualRequest(raw string) ([]document.Document, error) {
	return q.AddFindRequestByStatus(raw, document.StatusActual, parallel.Sequential)
}

// Record adds a request that returned results documents, evicting the
// oldest request once the window is full.
func (q *RequestQueue) Record(results int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.empty) {
		if q.empty[q.next] {
			q.noResult--
		}
	} else {
		q.size++
	}
	q.empty[q.next] = results == 0
	if results == 0 {
		q.noResult++
	}
	q.next = (q.next + 1) % len(q.empty)
}

// NoResultRequests counts windowed requests that returned no documents.
func (q *RequestQueue) NoResultRequests() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.noResult
}

// Len is the number of requests currently in the window.
func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *RequestQueue) Window() int {
	return len(q.empty)
}
