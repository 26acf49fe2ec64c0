package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func ping(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestRunAggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   Status
	}{
		{"empty", nil, StatusUp},
		{"all up", map[string]Check{
			"index": IndexCheck(func() int { return 3 }),
			"redis": PingCheck(ping(nil), false),
		}, StatusUp},
		{"optional down", map[string]Check{
			"index": IndexCheck(func() int { return 0 }),
			"redis": PingCheck(ping(errors.New("refused")), false),
		}, StatusDegraded},
		{"required down", map[string]Check{
			"redis":    PingCheck(ping(errors.New("refused")), false),
			"postgres": PingCheck(ping(errors.New("refused")), true),
		}, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for name, check := range tt.checks {
				c.Register(name, check)
			}
			report := c.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("status = %s, want %s", report.Status, tt.want)
			}
			if len(report.Components) != len(tt.checks) {
				t.Errorf("components = %d, want %d", len(report.Components), len(tt.checks))
			}
		})
	}
}

func TestIndexCheckMessage(t *testing.T) {
	got := IndexCheck(func() int { return 7 })(context.Background())
	if got.Status != StatusUp || got.Message != "7 documents indexed" {
		t.Errorf("IndexCheck = %+v", got)
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("redis", PingCheck(ping(errors.New("timeout")), false))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("degraded status code = %d, want 200", rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Components["redis"].Message != "timeout" {
		t.Errorf("redis component = %+v", report.Components["redis"])
	}

	c.Register("postgres", PingCheck(ping(errors.New("refused")), true))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("down status code = %d, want 503", rec.Code)
	}
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d", rec.Code)
	}
}
