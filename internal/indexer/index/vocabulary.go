package index

import (
	"slices"
	"strings"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Vocabulary interns every distinct term once. All index structures key on
// the interned string so that a term's backing bytes are shared instead of
// copied per document.
type Vocabulary struct {
	mu    sync.RWMutex
	terms map[string]string
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{terms: make(map[string]string)}
}

// Intern returns the canonical copy of term, storing it on first sight.
func (v *Vocabulary) Intern(term string) string {
	v.mu.RLock()
	canonical, ok := v.terms[term]
	v.mu.RUnlock()
	if ok {
		return canonical
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if canonical, ok := v.terms[term]; ok {
		return canonical
	}
	// Detach from the caller's buffer, which may be a slice of a large text.
	canonical = strings.Clone(term)
	v.terms[canonical] = canonical
	return canonical
}

func (v *Vocabulary) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.terms)
}

// StopWords is an immutable set of terms that are neither indexed nor
// queried.
type StopWords struct {
	words map[string]struct{}
}

// NewStopWords builds the set from explicit words. Empty strings are
// skipped; a word containing a control byte is an invalid argument.
func NewStopWords(words []string) (*StopWords, error) {
	sw := &StopWords{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if tokenizer.ContainsInvalid(w) {
			return nil, apperrors.InvalidArgumentf("stop word %q contains invalid characters", w)
		}
		if w == "" {
			continue
		}
		sw.words[w] = struct{}{}
	}
	return sw, nil
}

// ParseStopWords builds the set from space-delimited text.
func ParseStopWords(text string) (*StopWords, error) {
	words, _ := tokenizer.Split(text)
	return NewStopWords(words)
}

func (s *StopWords) IsStopWord(term string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[term]
	return ok
}

// Words returns the stop words in ascending order.
func (s *StopWords) Words() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

func (s *StopWords) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}
