// Package document defines the status of an indexed document and the
// scored record returned by searches.
package document

import (
	"fmt"
	"strings"
)

type Status int

const (
	StatusActual Status = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

var statusNames = [...]string{"ACTUAL", "IRRELEVANT", "BANNED", "REMOVED"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

func ParseStatus(s string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return StatusActual, nil
	}
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return StatusActual, fmt.Errorf("unknown document status %q", s)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Document is one ranked search hit.
type Document struct {
	ID        int     `json:"id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

func (d Document) String() string {
	return fmt.Sprintf("{ document_id = %d, relevance = %g, rating = %d }", d.ID, d.Relevance, d.Rating)
}

// Predicate decides whether a candidate document may appear in results.
type Predicate func(id int, status Status, rating int) bool

// ByStatus accepts documents whose status equals want.
func ByStatus(want Status) Predicate {
	return func(_ int, status Status, _ int) bool {
		return status == want
	}
}
