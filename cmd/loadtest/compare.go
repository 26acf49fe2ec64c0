package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searchserver"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/tracing"
)

type modeResult struct {
	Mode           parallel.Mode
	Elapsed        time.Duration
	TotalRelevance float64
	Returned       int
}

// compareModes indexes w and runs every query in both execution modes.
func compareModes(w workload) ([]modeResult, error) {
	server, err := searchserver.New(nil, searchserver.Options{})
	if err != nil {
		return nil, err
	}

	indexing := tracing.LogDuration(slog.Default(), "index", "documents", len(w.documents))
	for i, text := range w.documents {
		if err := server.AddDocument(i, text, document.StatusActual, []int{1, 2, 3}); err != nil {
			return nil, fmt.Errorf("indexing document %d: %w", i, err)
		}
	}
	indexing()

	results := make([]modeResult, 0, 2)
	for _, mode := range []parallel.Mode{parallel.Sequential, parallel.Parallel} {
		res := modeResult{Mode: mode}
		var runErr error
		res.Elapsed = tracing.Measure(func() {
			for _, q := range w.queries {
				docs, err := server.FindTopDocumentsByStatus(q, document.StatusActual, mode)
				if err != nil {
					runErr = fmt.Errorf("query %q: %w", q, err)
					return
				}
				for _, d := range docs {
					res.TotalRelevance += d.Relevance
				}
				res.Returned += len(docs)
			}
		})
		if runErr != nil {
			return nil, runErr
		}
		results = append(results, res)
	}
	return results, nil
}

func printComparison(results []modeResult) {
	fmt.Println("=== Sequential vs Parallel ===")
	for _, r := range results {
		fmt.Printf("%-10s  time: %-12s  returned: %-6d  total relevance: %.6f\n",
			r.Mode, r.Elapsed.Round(time.Microsecond), r.Returned, r.TotalRelevance)
	}
	if len(results) == 2 && results[1].Elapsed > 0 {
		fmt.Printf("speedup:    %.2fx\n", float64(results[0].Elapsed)/float64(results[1].Elapsed))
	}
}
