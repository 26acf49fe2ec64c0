// Package tokenizer splits raw document and query text into terms. The space
// byte is the only delimiter and empty tokens are dropped. Any byte below
// InvalidSymbolMargin marks the text as malformed.
package tokenizer

// InvalidSymbolMargin is the lowest byte value accepted inside text. The
// ASCII control range falls below it.
const InvalidSymbolMargin = 32

// Split returns the space-delimited terms of text in order, and whether text
// contains a byte in the control range. Splitting always completes so that
// callers can decide how to treat the flag.
func Split(text string) (terms []string, invalid bool) {
	terms = make([]string, 0, len(text)/4+1)
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < InvalidSymbolMargin {
			invalid = true
		}
		if c == ' ' {
			if i > start {
				terms = append(terms, text[start:i])
			}
			start = i + 1
		}
	}
	if start < len(text) {
		terms = append(terms, text[start:])
	}
	return terms, invalid
}

// ContainsInvalid reports whether s has any byte in the control range.
func ContainsInvalid(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < InvalidSymbolMargin {
			return true
		}
	}
	return false
}
