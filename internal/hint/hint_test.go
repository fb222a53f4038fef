package hint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/CodeAndHammer/foodle/internal/models"
)

func newSession(ingredients ...string) *models.Session {
	return &models.Session{
		Recipe:       &models.Recipe{ID: "r1", Name: "Test", Ingredients: ingredients},
		HintProgress: map[string]int{},
		Status:       models.StatusPlaying,
	}
}

func TestNext_StartsWithFirstIngredient(t *testing.T) {
	s := newSession("flour", "sugar")

	h, ok := Next(s)
	require.True(t, ok)
	assert.Equal(t, "flour", h.Ingredient)
	assert.Equal(t, 1, h.Revealed)
	assert.Equal(t, "F", h.Prefix)
	assert.Empty(t, s.HintProgress, "Next must not mutate the session")
}

func TestNext_ProgressesOneCharacterAtATime(t *testing.T) {
	s := newSession("egg", "milk")

	var prefixes []string
	for {
		h, ok := Next(s)
		if !ok {
			break
		}
		Apply(s, h)
		prefixes = append(prefixes, h.Prefix)
	}
	assert.Equal(t, []string{"E", "EG", "EGG", "M", "MI", "MIL", "MILK"}, prefixes)
	assert.True(t, FullyDisclosed(s, "egg"))
	assert.True(t, FullyDisclosed(s, "milk"))
}

func TestNext_SkipsFoundIngredients(t *testing.T) {
	s := newSession("flour", "sugar")
	s.Correct = []string{"flour"}

	h, ok := Next(s)
	require.True(t, ok)
	assert.Equal(t, "sugar", h.Ingredient)
	assert.Equal(t, "S", h.Prefix)
}

func TestNext_NoneWhenEverythingDisclosedOrFound(t *testing.T) {
	s := newSession("egg", "oil")
	s.Correct = []string{"oil"}
	s.HintProgress["egg"] = 3

	_, ok := Next(s)
	assert.False(t, ok)
}

func TestNext_NilRecipe(t *testing.T) {
	_, ok := Next(&models.Session{})
	assert.False(t, ok)
	_, ok = Next(nil)
	assert.False(t, ok)
}

func TestNext_MultiByteIngredient(t *testing.T) {
	s := newSession("jalapeño")
	s.HintProgress["jalapeño"] = 6

	h, ok := Next(s)
	require.True(t, ok)
	assert.Equal(t, 7, h.Revealed)
	assert.Equal(t, "JALAPEÑ", h.Prefix)
}

func TestApply_NeverLowersProgress(t *testing.T) {
	s := newSession("flour")
	s.HintProgress["flour"] = 3
	Apply(s, Hint{Ingredient: "flour", Revealed: 2})
	assert.Equal(t, 3, s.HintProgress["flour"])

	s.HintProgress = nil
	Apply(s, Hint{Ingredient: "flour", Revealed: 1})
	assert.Equal(t, 1, s.HintProgress["flour"])
}

func TestDisplayPrefix(t *testing.T) {
	assert.Equal(t, "", DisplayPrefix("olive oil", 0))
	assert.Equal(t, "OLIVE ", DisplayPrefix("olive oil", 6))
	assert.Equal(t, "OLIVE OIL", DisplayPrefix("olive oil", 40))
}
