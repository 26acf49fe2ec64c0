// Command loadtest generates a reproducible random workload and either
// compares sequential and parallel execution in process, or, with -url,
// seeds a running search service and drives its search endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	seed := flag.Uint64("seed", 42, "random seed")
	dictLen := flag.Int("dict", 1000, "dictionary size")
	maxWordLen := flag.Int("word-len", 10, "maximum word length")
	docs := flag.Int("docs", 10000, "number of documents")
	docWords := flag.Int("doc-words", 70, "words per document")
	queries := flag.Int("queries", 2000, "number of queries")
	queryWords := flag.Int("query-words", 7, "words per query")
	minusProb := flag.Float64("minus-prob", 0.1, "probability of a query word being excluded")
	baseURL := flag.String("url", "", "base URL of a running search service; empty compares modes in process")
	concurrency := flag.Int("concurrency", 10, "number of concurrent HTTP workers")
	duration := flag.Duration("duration", 30*time.Second, "HTTP test duration")
	mode := flag.String("mode", "parallel", "execution mode requested from the service")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "text")

	if *dictLen < 1 || *maxWordLen < 1 || *docWords < 1 || *queryWords < 1 || *queries < 1 {
		fmt.Fprintln(os.Stderr, "dict, word-len, doc-words, query-words and queries must be positive")
		os.Exit(2)
	}

	w := generateWorkload(workloadConfig{
		Seed:          *seed,
		DictionaryLen: *dictLen,
		MaxWordLen:    *maxWordLen,
		Documents:     *docs,
		DocumentWords: *docWords,
		Queries:       *queries,
		QueryWords:    *queryWords,
		MinusProb:     *minusProb,
	})
	fmt.Println("=== Search Server Load Test ===")
	fmt.Printf("Seed:        %d\n", *seed)
	fmt.Printf("Dictionary:  %d words\n", len(w.dictionary))
	fmt.Printf("Documents:   %d x %d words\n", len(w.documents), *docWords)
	fmt.Printf("Queries:     %d x %d words\n", len(w.queries), *queryWords)
	fmt.Println()

	if *baseURL == "" {
		results, err := compareModes(w)
		if err != nil {
			slog.Error("comparison failed", "error", err)
			os.Exit(1)
		}
		printComparison(results)
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	added, rejected, err := seedDocuments(ctx, client, *baseURL, w.documents)
	cancel()
	if err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded:      %d added, %d rejected\n", added, rejected)
	fmt.Printf("Target:      %s\n", *baseURL)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Printf("Duration:    %s\n", *duration)
	fmt.Println()

	stats := runLoadTest(httpConfig{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		Duration:    *duration,
		Mode:        *mode,
		Queries:     w.queries,
	})
	if !printReport(stats, *duration) {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}
