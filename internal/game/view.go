package game

import (
	"slices"
	"time"

	hint "github.com/CodeAndHammer/foodle/internal/hint"
	models "github.com/CodeAndHammer/foodle/internal/models"
)

// View projects s for presentation. While the session is playing, names of
// ingredients not yet found are withheld; only hint prefixes are shown.
func View(s *models.Session, site string, now time.Time) models.SessionView {
	if s == nil {
		return models.SessionView{}
	}
	v := models.SessionView{
		PuzzleKey:         s.PuzzleKey,
		Practice:          s.Practice,
		Status:            s.Status,
		FoundCount:        len(s.Correct),
		Slots:             []models.SlotView{},
		Guesses:           make([]models.GuessView, 0, len(s.Guessed)),
		IncorrectAttempts: s.IncorrectAttempts,
		MaxAttempts:       s.MaxAttempts,
		HintsUsed:         s.HintsUsed,
		MaxHints:          s.MaxHints,
	}
	if s.Recipe == nil {
		return v
	}

	terminal := s.Status.Terminal()
	v.IngredientCount = len(s.Recipe.Ingredients)
	v.Recipe = models.RecipeView{
		Name:       s.Recipe.Name,
		Icon:       s.Recipe.Icon,
		Category:   s.Recipe.Category,
		Difficulty: s.Recipe.Difficulty,
	}
	if terminal {
		v.Recipe.Description = s.Recipe.Description
		v.Recipe.Instructions = s.Recipe.Instructions
		v.Recipe.ImageURL = s.Recipe.ImageURL
		v.Recipe.CookTimeMinutes = s.Recipe.CookTimeMinutes
		v.Recipe.Servings = s.Recipe.Servings
		v.ShareText = ShareText(s, site)
		v.TimeSpentSeconds = int(TimeSpent(s).Seconds())
	} else {
		v.TimeSpentSeconds = int(now.Sub(s.StartedAt).Seconds())
	}

	for idx, ingredient := range s.Recipe.Ingredients {
		found := slices.Contains(s.Correct, ingredient)
		slot := models.SlotView{Index: idx, Found: found}
		if found || terminal {
			slot.Name = ingredient
		}
		if shown := s.HintProgress[ingredient]; shown > 0 {
			slot.HintRevealed = min(shown, len([]rune(ingredient)))
			if !found {
				slot.HintPrefix = hint.DisplayPrefix(ingredient, shown)
			}
		}
		v.Slots = append(v.Slots, slot)
	}

	for _, g := range s.Guessed {
		_, hit := s.Credits[g]
		v.Guesses = append(v.Guesses, models.GuessView{Text: g, Correct: hit})
	}
	return v
}
