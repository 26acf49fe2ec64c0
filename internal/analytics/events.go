package analytics

import "time"

type EventType string

const (
	EventSearch         EventType = "search"
	EventIndexDocument  EventType = "index_document"
	EventRemoveDocument EventType = "remove_document"
)

// SearchEvent describes one served top-documents query.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Status    string    `json:"status"`
	Mode      string    `json:"mode"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Failed    bool      `json:"failed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// IndexEvent describes one document added to or removed from the index.
type IndexEvent struct {
	Type       EventType `json:"type"`
	DocumentID int       `json:"document_id"`
	TermCount  int       `json:"term_count"`
	Timestamp  time.Time `json:"timestamp"`
}

type envelope struct {
	Type EventType `json:"type"`
}
