// Package hint picks which ingredient to disclose next and how much of it.
//
// Disclosure is progressive: every hint reveals one more leading character of
// the first ingredient that is neither found nor already fully spelled out.
package hint

import (
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	models "github.com/CodeAndHammer/foodle/internal/models"
)

type Hint struct {
	Ingredient string `json:"-"`
	Revealed   int    `json:"revealed"`
	Prefix     string `json:"prefix"`
}

// Next computes the next disclosure for s without mutating it.
// It returns false when every remaining ingredient is fully disclosed.
func Next(s *models.Session) (Hint, bool) {
	if s == nil || s.Recipe == nil {
		return Hint{}, false
	}
	for _, ingredient := range s.Recipe.Ingredients {
		if slices.Contains(s.Correct, ingredient) {
			continue
		}
		if FullyDisclosed(s, ingredient) {
			continue
		}
		revealed := s.HintProgress[ingredient] + 1
		return Hint{
			Ingredient: ingredient,
			Revealed:   revealed,
			Prefix:     DisplayPrefix(ingredient, revealed),
		}, true
	}
	return Hint{}, false
}

// Apply records h in the session's hint progress.
func Apply(s *models.Session, h Hint) {
	if s.HintProgress == nil {
		s.HintProgress = make(map[string]int)
	}
	if h.Revealed > s.HintProgress[h.Ingredient] {
		s.HintProgress[h.Ingredient] = h.Revealed
	}
}

// DisplayPrefix returns the first n runes of ingredient, uppercased.
func DisplayPrefix(ingredient string, n int) string {
	runes := []rune(ingredient)
	if n <= 0 {
		return ""
	}
	if n > len(runes) {
		n = len(runes)
	}
	return cases.Upper(language.Und).String(string(runes[:n]))
}

// FullyDisclosed reports whether hints have spelled out the whole ingredient.
func FullyDisclosed(s *models.Session, ingredient string) bool {
	return s.HintProgress[ingredient] >= len([]rune(ingredient))
}
