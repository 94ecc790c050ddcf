// Package parser turns informal Indonesian chat text into canonical amounts,
// vocabulary spans and dates.
package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text, folds compatibility characters and collapses
// whitespace. Punctuation is dropped except separators inside numbers
// ("1.5", "50,000", "25/12"), which the amount and date rules depend on.
func Normalize(text string) string {
	s := norm.NFKC.String(text)
	s = cases.Lower(language.Indonesian).String(s)

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == ',' || r == '/':
			if i > 0 && i < len(runes)-1 && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
				b.WriteRune(r)
			} else {
				b.WriteRune(' ')
			}
		case r == '%':
			b.WriteString(" persen ")
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// token is a whitespace-delimited word with its byte offsets in the normalized text.
type token struct {
	text  string
	start int
	end   int
}

func tokenize(s string) []token {
	var tokens []token
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				tokens = append(tokens, token{text: s[start:i], start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: s[start:], start: start, end: len(s)})
	}
	return tokens
}
