package executor

import (
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
)

// ProcessQueries runs FindActual for every query concurrently. The i-th
// result belongs to queries[i]. The first failing query fails the batch.
func (e *Executor) ProcessQueries(queries []string) ([][]document.Document, error) {
	return parallel.Map(parallel.Parallel, queries, e.FindActual)
}

// ProcessQueriesJoined is ProcessQueries flattened in query order.
func (e *Executor) ProcessQueriesJoined(queries []string) ([]document.Document, error) {
	batches, err := e.ProcessQueries(queries)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, b := range batches {
		n += len(b)
	}
	joined := make([]document.Document, 0, n)
	for _, b := range batches {
		joined = append(joined, b...)
	}
	return joined, nil
}
