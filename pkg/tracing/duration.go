// Package tracing provides scoped timing helpers that report the wall-clock
// duration of an operation through slog.
package tracing

import (
	"log/slog"
	"time"
)

// LogDuration starts a timer for op and returns the function that stops it.
// Intended use is `defer tracing.LogDuration(logger, "op")()`.
func LogDuration(logger *slog.Logger, op string, attrs ...any) func() {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		logger.Info("operation finished",
			append([]any{"op", op, "duration_ms", elapsed.Milliseconds()}, attrs...)...,
		)
	}
}

// Measure runs fn and returns how long it took.
func Measure(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}
