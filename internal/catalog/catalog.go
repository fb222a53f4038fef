// Package catalog loads recipes and binds them to puzzle days.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	matcher "github.com/CodeAndHammer/foodle/internal/matcher"
	models "github.com/CodeAndHammer/foodle/internal/models"
)

var (
	ErrEmptyCatalog = errors.New("recipe catalog is empty")
	// ErrExhausted means every recipe has already been bound to a day.
	ErrExhausted  = errors.New("every recipe has been used")
	ErrInvalidKey = errors.New("invalid puzzle key")
)

var validate = validator.New()

// Repository is the recipe storage the rotator works against.
type Repository interface {
	Recipes(ctx context.Context) ([]models.Recipe, error)
	BoundRecipe(ctx context.Context, puzzleKey string) (*models.Recipe, error)
	// BindDay binds the recipe to the day and marks it consumed. If the day
	// is already bound the existing recipe is returned instead.
	BindDay(ctx context.Context, puzzleKey, recipeID string) (*models.Recipe, error)
	UpsertRecipes(ctx context.Context, recipes []models.Recipe) (int, error)
}

// LoadFile reads a YAML recipe file, validates every entry and returns the
// recipes with canonical ingredient lists.
func LoadFile(path string) ([]models.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipes file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]models.Recipe, error) {
	var doc models.RecipeCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse recipes: %w", err)
	}
	if len(doc.Recipes) == 0 {
		return nil, ErrEmptyCatalog
	}

	recipes := make([]models.Recipe, 0, len(doc.Recipes))
	seen := make(map[string]struct{}, len(doc.Recipes))
	for i, r := range doc.Recipes {
		r = Canonicalize(r)
		if err := Validate(r); err != nil {
			return nil, fmt.Errorf("recipe %d (%q): %w", i, r.ID, err)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("recipe %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = struct{}{}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// Canonicalize normalizes ingredient names the same way guesses are
// normalized, dropping blanks and repeats while keeping the first order.
func Canonicalize(r models.Recipe) models.Recipe {
	ingredients := lo.Map(r.Ingredients, func(ingredient string, _ int) string {
		return matcher.Normalize(ingredient)
	})
	r.Ingredients = lo.Uniq(lo.Compact(ingredients))
	return r
}

func Validate(r models.Recipe) error {
	return validate.Struct(r)
}
