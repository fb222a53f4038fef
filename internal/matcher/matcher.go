// Package matcher decides whether a player's guess names a recipe ingredient.
//
// Matching is deliberately lenient: plural forms and substrings in either
// direction count, so "chocolate" finds "chocolate chips". The cost is the
// occasional false positive on short names ("egg" also finds "eggplant").
package matcher

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize trims, NFC-normalizes and lowercases s.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// Casers carry state, so each call gets its own.
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// Matches reports whether guess names ingredient. Empty operands never match.
func Matches(guess, ingredient string) bool {
	g := Normalize(guess)
	i := Normalize(ingredient)
	if g == "" || i == "" {
		return false
	}

	if g == i {
		return true
	}

	if strings.HasSuffix(g, "s") && strings.TrimSuffix(g, "s") == i {
		return true
	}
	if strings.HasSuffix(i, "s") && strings.TrimSuffix(i, "s") == g {
		return true
	}

	return strings.Contains(i, g) || strings.Contains(g, i)
}

// FirstMatch returns the index of the first candidate matched by guess, or -1.
// Candidates are scanned in order, so ties go to the earliest one.
func FirstMatch(guess string, candidates []string) int {
	for idx, candidate := range candidates {
		if Matches(guess, candidate) {
			return idx
		}
	}
	return -1
}
