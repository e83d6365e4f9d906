package models

import (
	"strings"
	"unicode"
)

// NormalizeName lowercases a name, strips punctuation and collapses
// whitespace. Matching always runs on normalized names so "O'Brien,
// Pat " and "pat obrien" compare sensibly.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
