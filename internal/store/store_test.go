package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	constants "github.com/CodeAndHammer/foodle/internal/constants"
	game "github.com/CodeAndHammer/foodle/internal/game"
	models "github.com/CodeAndHammer/foodle/internal/models"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func cakeRecipe() models.Recipe {
	return models.Recipe{
		ID:          "cake",
		Name:        "Simple Cake",
		Icon:        "🍰",
		Ingredients: []string{"flour", "sugar", "egg"},
		Difficulty:  constants.DifficultyEasy,
		Category:    "Dessert",
	}
}

func playingSession(owner, key string) *models.Session {
	r := cakeRecipe()
	s := game.NewSession(&r, key, owner, game.DefaultLimits(), t0)
	game.SubmitGuess(context.Background(), s, "flour", t0.Add(time.Minute))
	game.SubmitGuess(context.Background(), s, "butter", t0.Add(2*time.Minute))
	return s
}

// runSessionContract exercises the behavior every backend shares.
func runSessionContract(t *testing.T, st SessionStore) {
	ctx := context.Background()

	t.Run("missing slot loads nil", func(t *testing.T) {
		got, err := st.Load(ctx, "nobody", "2025-03-10")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("save then load twice", func(t *testing.T) {
		s := playingSession("owner-1", "2025-03-10")
		require.NoError(t, st.Save(ctx, s))

		first, err := st.Load(ctx, "owner-1", "2025-03-10")
		require.NoError(t, err)
		second, err := st.Load(ctx, "owner-1", "2025-03-10")
		require.NoError(t, err)

		require.NotNil(t, first)
		assert.Equal(t, first, second)
		assert.Equal(t, s.Correct, first.Correct)
		assert.Equal(t, s.Guessed, first.Guessed)
		assert.Equal(t, 1, first.IncorrectAttempts)

		// Callers never share state with the store.
		first.Correct = append(first.Correct, "sugar")
		third, err := st.Load(ctx, "owner-1", "2025-03-10")
		require.NoError(t, err)
		assert.Equal(t, []string{"flour"}, third.Correct)
	})

	t.Run("missing owner is rejected", func(t *testing.T) {
		s := playingSession("", "2025-03-10")
		assert.ErrorIs(t, st.Save(ctx, s), ErrMissingOwner)
		assert.ErrorIs(t, st.Save(ctx, nil), ErrMissingOwner)
	})
}

func runGuestContract(t *testing.T, st SessionStore) {
	ctx := context.Background()

	t.Run("stale puzzle key reads as empty", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, playingSession("guest-1", "2025-03-09")))

		got, err := st.Load(ctx, "guest-1", "2025-03-10")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("one slot per guest", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, playingSession("guest-2", "2025-03-09")))
		require.NoError(t, st.Save(ctx, playingSession("guest-2", "2025-03-10")))

		old, err := st.Load(ctx, "guest-2", "2025-03-09")
		require.NoError(t, err)
		assert.Nil(t, old)
		current, err := st.Load(ctx, "guest-2", "2025-03-10")
		require.NoError(t, err)
		assert.NotNil(t, current)
	})

	t.Run("results and stats are not kept", func(t *testing.T) {
		require.NoError(t, st.AppendResult(ctx, "guest-1", models.GameResult{RecipeID: "cake"}))
		require.NoError(t, st.AppendResult(ctx, "guest-1", models.GameResult{RecipeID: "cake"}))
		require.NoError(t, st.SaveStats(ctx, "guest-1", models.PlayerStats{GamesPlayed: 1}))

		stats, err := st.LoadStats(ctx, "guest-1")
		require.NoError(t, err)
		assert.Nil(t, stats)
	})
}
