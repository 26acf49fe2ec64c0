// Package parser turns raw query text into required and excluded term sets.
package parser

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

var (
	ErrInvalidSymbols   = errors.New("query contains invalid symbols")
	ErrNoTextAfterMinus = errors.New("no text after minus")
	ErrDoubleMinus      = errors.New("double minus")
)

// Query is a parsed query. Plus and Minus are sorted and hold each term at
// most once; stop words never appear in either.
type Query struct {
	Plus     []string
	Minus    []string
	RawQuery string
}

// IsEmpty reports whether the query has no required terms.
func (q *Query) IsEmpty() bool {
	return len(q.Plus) == 0
}

func (q *Query) String() string {
	var b strings.Builder
	for i, t := range q.Plus {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t)
	}
	for _, t := range q.Minus {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('-')
		b.WriteString(t)
	}
	return b.String()
}

// Parse stops at the first malformed word and returns no query in that
// case. Errors match both apperrors.ErrInvalidArgument and one of this
// package's sentinels.
func Parse(text string, stopWords *index.StopWords) (*Query, error) {
	words, invalid := tokenizer.Split(text)
	if invalid {
		return nil, invalidQuery(ErrInvalidSymbols, text)
	}

	q := &Query{RawQuery: text}
	for _, word := range words {
		term, minus, err := parseWord(word)
		if err != nil {
			return nil, invalidQuery(err, word)
		}
		if stopWords.IsStopWord(term) {
			continue
		}
		if minus {
			q.Minus = append(q.Minus, term)
		} else {
			q.Plus = append(q.Plus, term)
		}
	}

	slices.Sort(q.Plus)
	q.Plus = slices.Compact(q.Plus)
	slices.Sort(q.Minus)
	q.Minus = slices.Compact(q.Minus)
	return q, nil
}

func parseWord(word string) (term string, minus bool, err error) {
	if word[0] != '-' {
		return word, false, nil
	}
	if len(word) == 1 {
		return "", true, ErrNoTextAfterMinus
	}
	if word[1] == '-' {
		return "", true, ErrDoubleMinus
	}
	return word[1:], true, nil
}

func invalidQuery(cause error, near string) error {
	return apperrors.Wrap(apperrors.ErrInvalidArgument, http.StatusBadRequest,
		fmt.Errorf("%w in %q", cause, near))
}
