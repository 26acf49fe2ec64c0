package index

import "github.com/Adithya-Monish-Kumar-K/search-server/internal/document"

// Postings maps a document id to the normalized frequency of one term in
// that document.
type Postings map[int]float64

// DocumentData is what the document store keeps per document.
type DocumentData struct {
	Rating      int
	Status      document.Status
	Frequencies map[string]float64
}

// TermEntry pairs a term with the number of documents containing it.
type TermEntry struct {
	Term     string `json:"term"`
	DocCount int    `json:"doc_count"`
}
