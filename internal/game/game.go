package game

import (
	"context"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"

	constants "github.com/CodeAndHammer/foodle/internal/constants"
	hint "github.com/CodeAndHammer/foodle/internal/hint"
	matcher "github.com/CodeAndHammer/foodle/internal/matcher"
	models "github.com/CodeAndHammer/foodle/internal/models"
	util "github.com/CodeAndHammer/foodle/internal/util"
)

type Limits struct {
	MaxAttempts int
	MaxHints    int
}

func DefaultLimits() Limits {
	return Limits{MaxAttempts: constants.DefaultMaxAttempts, MaxHints: constants.DefaultMaxHints}
}

type GuessOutcome struct {
	Kind       string `json:"kind"`
	Guess      string `json:"guess,omitempty"`
	Ingredient string `json:"ingredient,omitempty"`
	Terminal   bool   `json:"terminal"`
}

type HintOutcome struct {
	Kind   string     `json:"kind"`
	Hint   *hint.Hint `json:"hint,omitempty"`
	Slot   int        `json:"slot"`
	Charge bool       `json:"charged"`
}

func NewSession(recipe *models.Recipe, puzzleKey, ownerID string, limits Limits, now time.Time) *models.Session {
	if limits.MaxAttempts <= 0 {
		limits.MaxAttempts = constants.DefaultMaxAttempts
	}
	if limits.MaxHints < 0 {
		limits.MaxHints = 0
	}
	return &models.Session{
		PuzzleKey:      puzzleKey,
		OwnerID:        ownerID,
		Recipe:         recipe,
		Guessed:        []string{},
		Correct:        []string{},
		MaxAttempts:    limits.MaxAttempts,
		MaxHints:       limits.MaxHints,
		HintProgress:   map[string]int{},
		Credits:        map[string]string{},
		Status:         models.StatusPlaying,
		StartedAt:      now,
		LastAccessTime: now,
	}
}

// SubmitGuess applies one raw guess. Out-of-turn, empty and repeated guesses
// leave the session untouched and report OutcomeIgnored or OutcomeDuplicate.
func SubmitGuess(ctx context.Context, s *models.Session, raw string, now time.Time) GuessOutcome {
	if s == nil || s.Recipe == nil || s.Status != models.StatusPlaying {
		return GuessOutcome{Kind: constants.OutcomeIgnored}
	}

	guess := matcher.Normalize(raw)
	if guess == "" || utf8.RuneCountInString(guess) > constants.MaxGuessRunes {
		return GuessOutcome{Kind: constants.OutcomeIgnored}
	}
	if slices.Contains(s.Guessed, guess) {
		return GuessOutcome{Kind: constants.OutcomeDuplicate, Guess: guess}
	}

	s.LastAccessTime = now
	remaining := lo.Filter(s.Recipe.Ingredients, func(ingredient string, _ int) bool {
		return !slices.Contains(s.Correct, ingredient)
	})

	if idx := matcher.FirstMatch(guess, remaining); idx >= 0 {
		ingredient := remaining[idx]
		s.Correct = append(s.Correct, ingredient)
		s.Guessed = append(s.Guessed, guess)
		if s.Credits == nil {
			s.Credits = map[string]string{}
		}
		s.Credits[guess] = ingredient
		util.LogInfoCtx(ctx, "Guess %q found ingredient %d/%d for %s", guess, len(s.Correct), len(s.Recipe.Ingredients), s.PuzzleKey)

		if len(s.Correct) == len(s.Recipe.Ingredients) {
			finish(s, models.StatusWon, now)
			util.LogInfoCtx(ctx, "Player won %s (%s) with %d incorrect attempts", s.PuzzleKey, s.Recipe.Name, s.IncorrectAttempts)
		}
		return GuessOutcome{Kind: constants.OutcomeCorrect, Guess: guess, Ingredient: ingredient, Terminal: s.Status.Terminal()}
	}

	s.Guessed = append(s.Guessed, guess)
	s.IncorrectAttempts++
	util.LogInfoCtx(ctx, "Guess %q missed (attempt %d/%d) for %s", guess, s.IncorrectAttempts, s.MaxAttempts, s.PuzzleKey)

	if s.IncorrectAttempts >= s.MaxAttempts {
		s.IncorrectAttempts = s.MaxAttempts
		finish(s, models.StatusLost, now)
		util.LogInfoCtx(ctx, "Player lost %s. Recipe was: %s", s.PuzzleKey, s.Recipe.Name)
	}
	return GuessOutcome{Kind: constants.OutcomeIncorrect, Guess: guess, Terminal: s.Status.Terminal()}
}

func finish(s *models.Session, status models.Status, now time.Time) {
	s.Status = status
	ended := now
	s.EndedAt = &ended
}

// UseHint discloses one more character when a charge and a candidate exist.
// No hint produced means no charge spent.
func UseHint(ctx context.Context, s *models.Session, now time.Time) HintOutcome {
	if s == nil || s.Recipe == nil || s.Status != models.StatusPlaying || s.HintsUsed >= s.MaxHints {
		return HintOutcome{Kind: constants.OutcomeIgnored, Slot: -1}
	}
	h, ok := hint.Next(s)
	if !ok {
		util.LogInfoCtx(ctx, "No hint left to disclose for %s", s.PuzzleKey)
		return HintOutcome{Kind: constants.OutcomeNoHint, Slot: -1}
	}
	hint.Apply(s, h)
	s.HintsUsed++
	s.LastAccessTime = now
	util.LogInfoCtx(ctx, "Hint %d/%d used for %s", s.HintsUsed, s.MaxHints, s.PuzzleKey)
	return HintOutcome{
		Kind:   constants.OutcomeHint,
		Hint:   &h,
		Slot:   slices.Index(s.Recipe.Ingredients, h.Ingredient),
		Charge: true,
	}
}

// GrantHints raises the hint allowance after an external reward event.
func GrantHints(s *models.Session, n int) int {
	if s == nil || n <= 0 || s.Status != models.StatusPlaying {
		return 0
	}
	n = min(n, constants.MaxBonusHints)
	s.MaxHints += n
	return n
}

// Reconstruct rebuilds the terminal session for a day whose result is
// already recorded, so a finished day can never be replayed.
func Reconstruct(recipe *models.Recipe, puzzleKey, ownerID string, limits Limits, result models.GameResult) *models.Session {
	s := NewSession(recipe, puzzleKey, ownerID, limits, result.CreatedAt.Add(-result.TimeSpent))
	all := append([]string(nil), recipe.Ingredients...)
	s.Guessed = all
	s.HintsUsed = result.HintsUsed
	if s.HintsUsed > s.MaxHints {
		s.MaxHints = s.HintsUsed
	}
	if result.Won {
		s.Correct = append([]string(nil), all...)
		s.IncorrectAttempts = min(result.Attempts, s.MaxAttempts)
		for _, ingredient := range all {
			s.Credits[ingredient] = ingredient
		}
		finish(s, models.StatusWon, result.CreatedAt)
	} else {
		s.IncorrectAttempts = s.MaxAttempts
		finish(s, models.StatusLost, result.CreatedAt)
	}
	s.LastAccessTime = result.CreatedAt
	return s
}

func TimeSpent(s *models.Session) time.Duration {
	if s == nil || s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

func Result(s *models.Session, playerID, id string, now time.Time) models.GameResult {
	return models.GameResult{
		ID:         id,
		PlayerID:   playerID,
		RecipeID:   s.Recipe.ID,
		RecipeName: s.Recipe.Name,
		PuzzleKey:  s.PuzzleKey,
		Attempts:   s.IncorrectAttempts,
		HintsUsed:  s.HintsUsed,
		TimeSpent:  TimeSpent(s),
		Won:        s.Status == models.StatusWon,
		CreatedAt:  now,
	}
}

func ShareText(s *models.Session, site string) string {
	if s == nil || s.Recipe == nil || !s.Status.Terminal() {
		return ""
	}
	mark := "❌"
	if s.Status == models.StatusWon {
		mark = "✅"
	}
	if site == "" {
		site = constants.DefaultSiteURL
	}
	return fmt.Sprintf("FOODLE %s %d/%d\n%s\n\n%s", mark, s.IncorrectAttempts, s.MaxAttempts, s.Recipe.Name, site)
}
