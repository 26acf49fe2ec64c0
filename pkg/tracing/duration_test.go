package tracing

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLogDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	stop := LogDuration(logger, "remove_document", "doc_id", 5)
	stop()

	out := buf.String()
	for _, want := range []string{"op=remove_document", "duration_ms=", "doc_id=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestMeasure(t *testing.T) {
	d := Measure(func() { time.Sleep(2 * time.Millisecond) })
	if d < 2*time.Millisecond {
		t.Errorf("Measure() = %v, want >= 2ms", d)
	}
}
