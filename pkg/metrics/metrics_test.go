package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.DocumentIndexed(1, 1)
	m.DocumentRemoved(0, 0)
	m.DocumentRejected("negative_id")
	m.SearchCompleted("parallel", time.Millisecond, 3, nil)
	m.MatchCompleted("matched")
	m.CacheLookup(true)
	m.IngestEvent("add", "ok")
}

func TestRecording(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.DocumentIndexed(3, 10)
	m.DocumentIndexed(4, 12)
	m.DocumentRemoved(3, 11)
	m.DocumentRejected("duplicate_id")
	m.SearchCompleted("sequential", time.Millisecond, 0, nil)
	m.SearchCompleted("parallel", time.Millisecond, 2, nil)
	m.SearchCompleted("parallel", 0, 0, errors.New("double minus"))
	m.CacheLookup(false)

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"docs indexed", m.DocsIndexedTotal, 2},
		{"docs removed", m.DocsRemovedTotal, 1},
		{"index documents", m.IndexDocuments, 3},
		{"index terms", m.IndexTerms, 11},
		{"rejected duplicate", m.DocsRejectedTotal.WithLabelValues("duplicate_id"), 1},
		{"zero result", m.SearchQueriesTotal.WithLabelValues("sequential", "zero_result"), 1},
		{"parallel hit", m.SearchQueriesTotal.WithLabelValues("parallel", "hit"), 1},
		{"parallel error", m.SearchQueriesTotal.WithLabelValues("parallel", "error"), 1},
		{"cache miss", m.CacheMissesTotal, 1},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(c.c); got != c.want {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}
}
