package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func stopWords(t *testing.T, text string) *index.StopWords {
	t.Helper()
	sw, err := index.ParseStopWords(text)
	if err != nil {
		t.Fatalf("ParseStopWords: %v", err)
	}
	return sw
}

func TestParse(t *testing.T) {
	sw := stopWords(t, "and with")
	tests := []struct {
		name  string
		query string
		plus  []string
		minus []string
	}{
		{"empty", "", nil, nil},
		{"plain terms", "funny curly", []string{"curly", "funny"}, nil},
		{"stop words dropped", "curly and funny", []string{"curly", "funny"}, nil},
		{"minus term", "curly and funny -not", []string{"curly", "funny"}, []string{"not"}},
		{"minus stop word dropped", "cat -with", []string{"cat"}, nil},
		{"duplicates collapse", "rat rat -dog -dog rat", []string{"rat"}, []string{"dog"}},
		{"inner minus kept", "well-known", []string{"well-known"}, nil},
		{"extra spaces", "  cat   dog ", []string{"cat", "dog"}, nil},
		{"utf8 allowed", "кот -пёс", []string{"кот"}, []string{"пёс"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.query, sw)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.query, err)
			}
			if diff := cmp.Diff(tt.plus, q.Plus, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("plus mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.minus, q.Minus, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("minus mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	sw := stopWords(t, "and")
	tests := []struct {
		name  string
		query string
		want  error
	}{
		{"lone minus", "cat -", ErrNoTextAfterMinus},
		{"double minus", "cat --dog", ErrDoubleMinus},
		{"control byte", "cat d\x01og", ErrInvalidSymbols},
		{"invalid beats earlier malformed word", "-- cat\x1f", ErrInvalidSymbols},
		{"first violation wins", "--a -", ErrDoubleMinus},
		{"double minus stop word still fails", "--and", ErrDoubleMinus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.query, sw)
			if q != nil {
				t.Errorf("Parse returned a partial query %+v", q)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Errorf("err = %v, want it to match ErrInvalidArgument", err)
			}
			if code := apperrors.HTTPStatusCode(err); code != 400 {
				t.Errorf("status = %d, want 400", code)
			}
		})
	}
}

func TestQueryString(t *testing.T) {
	q, err := Parse("b a -d -c", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := q.String(), "a b -c -d"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
