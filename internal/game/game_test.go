package game

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	constants "github.com/CodeAndHammer/foodle/internal/constants"
	models "github.com/CodeAndHammer/foodle/internal/models"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func bakingRecipe() *models.Recipe {
	return &models.Recipe{
		ID:          "cake",
		Name:        "Simple Cake",
		Icon:        "🍰",
		Ingredients: []string{"flour", "sugar", "egg"},
		Difficulty:  constants.DifficultyEasy,
		Category:    "Dessert",
		Description: "A plain sponge",
	}
}

func newTestSession() *models.Session {
	return NewSession(bakingRecipe(), "2025-03-10", "guest-1", Limits{MaxAttempts: 5, MaxHints: 3}, t0)
}

func ctx() context.Context {
	return context.Background()
}

func TestNewSession(t *testing.T) {
	s := newTestSession()
	assert.Equal(t, models.StatusPlaying, s.Status)
	assert.Equal(t, 5, s.MaxAttempts)
	assert.Equal(t, 3, s.MaxHints)
	assert.Empty(t, s.Guessed)
	assert.Empty(t, s.Correct)
	assert.NotNil(t, s.HintProgress)
	assert.Nil(t, s.EndedAt)
	assert.Equal(t, t0, s.StartedAt)

	s = NewSession(bakingRecipe(), "k", "o", Limits{}, t0)
	assert.Equal(t, constants.DefaultMaxAttempts, s.MaxAttempts)
	assert.Equal(t, 0, s.MaxHints)
}

func TestSubmitGuess_WinScenario(t *testing.T) {
	s := newTestSession()

	out := SubmitGuess(ctx(), s, "flour", t0.Add(time.Minute))
	assert.Equal(t, constants.OutcomeCorrect, out.Kind)
	assert.Equal(t, []string{"flour"}, s.Correct)
	assert.Equal(t, 0, s.IncorrectAttempts)

	out = SubmitGuess(ctx(), s, "butter", t0.Add(2*time.Minute))
	assert.Equal(t, constants.OutcomeIncorrect, out.Kind)
	assert.Equal(t, 1, s.IncorrectAttempts)

	out = SubmitGuess(ctx(), s, "Eggs", t0.Add(3*time.Minute))
	assert.Equal(t, constants.OutcomeCorrect, out.Kind)
	assert.Equal(t, "egg", out.Ingredient)
	assert.Equal(t, []string{"flour", "egg"}, s.Correct)
	assert.Equal(t, models.StatusPlaying, s.Status)

	out = SubmitGuess(ctx(), s, "sugar", t0.Add(4*time.Minute))
	assert.True(t, out.Terminal)
	assert.Equal(t, models.StatusWon, s.Status)
	assert.ElementsMatch(t, []string{"flour", "sugar", "egg"}, s.Correct)
	require.NotNil(t, s.EndedAt)
	assert.Equal(t, t0.Add(4*time.Minute), *s.EndedAt)
	assert.Equal(t, []string{"flour", "butter", "eggs", "sugar"}, s.Guessed)
	assert.Equal(t, 4*time.Minute, TimeSpent(s))
}

func TestSubmitGuess_LossScenario(t *testing.T) {
	s := newTestSession()
	for i, g := range []string{"salt", "pepper", "rice", "beef", "cocoa"} {
		SubmitGuess(ctx(), s, g, t0.Add(time.Duration(i+1)*time.Minute))
	}
	assert.Equal(t, models.StatusLost, s.Status)
	assert.Equal(t, 5, s.IncorrectAttempts)
	require.NotNil(t, s.EndedAt)
	assert.Equal(t, t0.Add(5*time.Minute), *s.EndedAt)
}

func TestSubmitGuess_TerminalIsFinal(t *testing.T) {
	s := newTestSession()
	for _, g := range []string{"flour", "sugar", "egg"} {
		SubmitGuess(ctx(), s, g, t0)
	}
	require.Equal(t, models.StatusWon, s.Status)
	before := s.Clone()

	out := SubmitGuess(ctx(), s, "butter", t0.Add(time.Hour))
	assert.Equal(t, constants.OutcomeIgnored, out.Kind)
	assert.Equal(t, before, s)
}

func TestSubmitGuess_DuplicateIsIdempotent(t *testing.T) {
	for _, first := range []string{"butter", "flour"} {
		s := newTestSession()
		SubmitGuess(ctx(), s, first, t0)
		after := s.Clone()

		out := SubmitGuess(ctx(), s, "  "+first+" ", t0.Add(time.Minute))
		assert.Equal(t, constants.OutcomeDuplicate, out.Kind)
		assert.Equal(t, after, s, "repeat of %q changed state", first)
	}
}

func TestSubmitGuess_IgnoredInputs(t *testing.T) {
	s := newTestSession()
	for _, raw := range []string{"", "   ", string(make([]rune, constants.MaxGuessRunes+1))} {
		out := SubmitGuess(ctx(), s, raw, t0)
		assert.Equal(t, constants.OutcomeIgnored, out.Kind)
	}
	assert.Empty(t, s.Guessed)
	assert.Equal(t, 0, s.IncorrectAttempts)

	noRecipe := &models.Session{Status: models.StatusPlaying}
	assert.Equal(t, constants.OutcomeIgnored, SubmitGuess(ctx(), noRecipe, "flour", t0).Kind)
	assert.Equal(t, constants.OutcomeIgnored, SubmitGuess(ctx(), nil, "flour", t0).Kind)
}

func TestSubmitGuess_FirstMatchWins(t *testing.T) {
	r := &models.Recipe{ID: "c", Name: "Cookies", Ingredients: []string{"chocolate chips", "dark chocolate", "butter"}}
	s := NewSession(r, "k", "o", DefaultLimits(), t0)

	out := SubmitGuess(ctx(), s, "chocolate", t0)
	assert.Equal(t, "chocolate chips", out.Ingredient)

	out = SubmitGuess(ctx(), s, "dark chocolate", t0)
	assert.Equal(t, "dark chocolate", out.Ingredient)
}

func TestSubmitGuess_FoundIngredientNotCreditedTwice(t *testing.T) {
	s := newTestSession()
	SubmitGuess(ctx(), s, "egg", t0)
	out := SubmitGuess(ctx(), s, "eggs", t0)
	assert.Equal(t, constants.OutcomeIncorrect, out.Kind)
	assert.Equal(t, []string{"egg"}, s.Correct)
	assert.Equal(t, 1, s.IncorrectAttempts)
}

func TestInvariants_RandomPlay(t *testing.T) {
	guesses := []string{"flour", "salt", "eggs", "oil", "flour", "rice", "", "sugar", "beef", "cocoa"}
	s := newTestSession()
	for _, g := range guesses {
		SubmitGuess(ctx(), s, g, t0)
		assert.LessOrEqual(t, s.IncorrectAttempts, s.MaxAttempts)
		assert.Equal(t, len(s.Correct) == len(s.Recipe.Ingredients), s.Status == models.StatusWon)
		if s.IncorrectAttempts == s.MaxAttempts && s.Status != models.StatusWon {
			assert.Equal(t, models.StatusLost, s.Status)
		}
		for _, c := range s.Correct {
			assert.Contains(t, s.Recipe.Ingredients, c)
		}
	}
}

func TestUseHint(t *testing.T) {
	s := newTestSession()

	out := UseHint(ctx(), s, t0)
	require.Equal(t, constants.OutcomeHint, out.Kind)
	assert.Equal(t, "F", out.Hint.Prefix)
	assert.Equal(t, 0, out.Slot)
	assert.Equal(t, 1, s.HintsUsed)
	assert.Equal(t, 1, s.HintProgress["flour"])

	UseHint(ctx(), s, t0)
	UseHint(ctx(), s, t0)
	assert.Equal(t, 3, s.HintsUsed)
	assert.Equal(t, 3, s.HintProgress["flour"])

	out = UseHint(ctx(), s, t0)
	assert.Equal(t, constants.OutcomeIgnored, out.Kind)
	assert.Equal(t, 3, s.HintsUsed)
}

func TestUseHint_ChargeConservedWhenNothingLeft(t *testing.T) {
	s := NewSession(&models.Recipe{ID: "e", Name: "Egg", Ingredients: []string{"egg"}}, "k", "o", Limits{MaxAttempts: 5, MaxHints: 10}, t0)
	for range 3 {
		require.Equal(t, constants.OutcomeHint, UseHint(ctx(), s, t0).Kind)
	}
	out := UseHint(ctx(), s, t0)
	assert.Equal(t, constants.OutcomeNoHint, out.Kind)
	assert.False(t, out.Charge)
	assert.Equal(t, 3, s.HintsUsed)
}

func TestUseHint_SkipsFound(t *testing.T) {
	s := newTestSession()
	SubmitGuess(ctx(), s, "flour", t0)
	out := UseHint(ctx(), s, t0)
	assert.Equal(t, 1, out.Slot)
	assert.Equal(t, "S", out.Hint.Prefix)
}

func TestUseHint_TerminalIgnored(t *testing.T) {
	s := newTestSession()
	for _, g := range []string{"a1", "a2", "a3", "a4", "a5"} {
		SubmitGuess(ctx(), s, g, t0)
	}
	require.Equal(t, models.StatusLost, s.Status)
	assert.Equal(t, constants.OutcomeIgnored, UseHint(ctx(), s, t0).Kind)
	assert.Equal(t, 0, s.HintsUsed)
}

func TestGrantHints(t *testing.T) {
	s := newTestSession()
	for range 3 {
		UseHint(ctx(), s, t0)
	}
	assert.Equal(t, constants.OutcomeIgnored, UseHint(ctx(), s, t0).Kind)

	assert.Equal(t, 1, GrantHints(s, 1))
	assert.Equal(t, 4, s.MaxHints)
	assert.Equal(t, constants.OutcomeHint, UseHint(ctx(), s, t0).Kind)

	assert.Equal(t, constants.MaxBonusHints, GrantHints(s, 100))
	assert.Equal(t, 0, GrantHints(s, 0))
	assert.Equal(t, 0, GrantHints(nil, 1))
}

func TestReconstruct(t *testing.T) {
	created := t0.Add(10 * time.Minute)
	won := Reconstruct(bakingRecipe(), "2025-03-10", "p1", DefaultLimits(), models.GameResult{
		Won: true, Attempts: 2, HintsUsed: 1, TimeSpent: 5 * time.Minute, CreatedAt: created,
	})
	assert.Equal(t, models.StatusWon, won.Status)
	assert.Equal(t, []string{"flour", "sugar", "egg"}, won.Correct)
	assert.Equal(t, []string{"flour", "sugar", "egg"}, won.Guessed)
	assert.Equal(t, 2, won.IncorrectAttempts)
	assert.Equal(t, 5*time.Minute, TimeSpent(won))
	assert.Equal(t, constants.OutcomeIgnored, SubmitGuess(ctx(), won, "butter", created).Kind)

	lost := Reconstruct(bakingRecipe(), "2025-03-10", "p1", DefaultLimits(), models.GameResult{CreatedAt: created})
	assert.Equal(t, models.StatusLost, lost.Status)
	assert.Empty(t, lost.Correct)
	assert.Equal(t, lost.MaxAttempts, lost.IncorrectAttempts)
}

func TestResult(t *testing.T) {
	s := newTestSession()
	for _, g := range []string{"flour", "salt", "sugar", "egg"} {
		SubmitGuess(ctx(), s, g, t0.Add(90*time.Second))
	}
	r := Result(s, "p1", "res-1", t0.Add(2*time.Minute))
	assert.Equal(t, "cake", r.RecipeID)
	assert.Equal(t, "Simple Cake", r.RecipeName)
	assert.Equal(t, 1, r.Attempts)
	assert.True(t, r.Won)
	assert.Equal(t, 90*time.Second, r.TimeSpent)
}

func TestShareText_Golden(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))

	won := newTestSession()
	for _, guess := range []string{"flour", "milk", "sugar", "oil", "eggs"} {
		SubmitGuess(ctx(), won, guess, t0)
	}
	g.Assert(t, "share_won", []byte(ShareText(won, "")))

	lost := newTestSession()
	for _, guess := range []string{"salt", "pepper", "rice", "beef", "cocoa"} {
		SubmitGuess(ctx(), lost, guess, t0)
	}
	g.Assert(t, "share_lost", []byte(ShareText(lost, "example.com")))

	assert.Empty(t, ShareText(newTestSession(), ""))
}

func TestView_HidesUnfoundIngredients(t *testing.T) {
	s := newTestSession()
	SubmitGuess(ctx(), s, "sugar", t0)
	UseHint(ctx(), s, t0)
	UseHint(ctx(), s, t0)

	v := View(s, "", t0.Add(30*time.Second))
	assert.Equal(t, 3, v.IngredientCount)
	assert.Equal(t, 1, v.FoundCount)
	assert.Equal(t, "", v.Slots[0].Name)
	assert.Equal(t, "FL", v.Slots[0].HintPrefix)
	assert.Equal(t, "sugar", v.Slots[1].Name)
	assert.Equal(t, "", v.Slots[2].Name)
	assert.Empty(t, v.ShareText)
	assert.Empty(t, v.Recipe.Description)
	assert.Equal(t, 30, v.TimeSpentSeconds)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "flour")
	assert.NotContains(t, string(raw), `"egg"`)
}

func TestView_RevealsEverythingWhenOver(t *testing.T) {
	s := newTestSession()
	for _, g := range []string{"salt", "pepper", "rice", "beef", "cocoa"} {
		SubmitGuess(ctx(), s, g, t0)
	}
	v := View(s, "", t0)
	for i, slot := range v.Slots {
		assert.Equal(t, s.Recipe.Ingredients[i], slot.Name)
		assert.False(t, slot.Found)
	}
	assert.Equal(t, "A plain sponge", v.Recipe.Description)
	assert.NotEmpty(t, v.ShareText)
}

func TestView_Golden(t *testing.T) {
	s := newTestSession()
	SubmitGuess(ctx(), s, "Flour", t0)
	SubmitGuess(ctx(), s, "butter", t0)
	UseHint(ctx(), s, t0)

	raw, err := json.MarshalIndent(View(s, "", t0.Add(time.Minute)), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, "view_playing", raw)
}
