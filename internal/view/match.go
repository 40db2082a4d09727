package view

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes s for case- and diacritic-insensitive comparison:
// "Café" and "CAFE" fold to the same string.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Matcher tests categories against a folded search term.
type Matcher struct {
	term   string
	folded string
}

// NewMatcher returns a Matcher for term.
func NewMatcher(term string) Matcher {
	return Matcher{term: term, folded: Fold(term)}
}

// Term returns the search term as given.
func (m Matcher) Term() string {
	return m.term
}

// Match reports whether category contains the term, ignoring case and diacritics.
// A term that folds to nothing, such as a lone combining mark, matches nothing.
func (m Matcher) Match(category string) bool {
	if m.folded == "" {
		return false
	}
	return strings.Contains(Fold(category), m.folded)
}
