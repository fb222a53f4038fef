package catalog

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/samber/lo"

	models "github.com/CodeAndHammer/foodle/internal/models"
	schedule "github.com/CodeAndHammer/foodle/internal/schedule"
	util "github.com/CodeAndHammer/foodle/internal/util"
)

// Rotator hands out the recipe of the day, binding a fresh one the first time
// a day is asked for.
type Rotator struct {
	repo Repository
	mu   sync.Mutex
}

func NewRotator(repo Repository) *Rotator {
	return &Rotator{repo: repo}
}

// Recipe returns the recipe bound to puzzleKey, binding a random unconsumed
// recipe when the day is new. It returns ErrEmptyCatalog or ErrExhausted when
// nothing can be bound.
func (r *Rotator) Recipe(ctx context.Context, puzzleKey string) (*models.Recipe, error) {
	if !schedule.ValidKey(puzzleKey) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, puzzleKey)
	}
	bound, err := r.repo.BoundRecipe(ctx, puzzleKey)
	if err != nil {
		return nil, err
	}
	if bound != nil {
		return bound, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another request may have bound the day while we waited.
	if bound, err = r.repo.BoundRecipe(ctx, puzzleKey); err != nil || bound != nil {
		return bound, err
	}

	recipes, err := r.repo.Recipes(ctx)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, ErrEmptyCatalog
	}
	available := lo.Filter(recipes, func(recipe models.Recipe, _ int) bool {
		return !recipe.Consumed
	})
	if len(available) == 0 {
		util.LogWarnCtx(ctx, "All %d recipes consumed, nothing left to bind for %s", len(recipes), puzzleKey)
		return nil, ErrExhausted
	}

	picked := pick(ctx, available)
	bound, err = r.repo.BindDay(ctx, puzzleKey, picked.ID)
	if err != nil {
		return nil, fmt.Errorf("bind recipe for %s: %w", puzzleKey, err)
	}
	util.LogInfoCtx(ctx, "Bound recipe %s (%s) to %s, %d left unused", bound.ID, bound.Name, puzzleKey, len(available)-1)
	return bound, nil
}

// Random picks any recipe for practice play, optionally limited to one
// difficulty. Consumed recipes are allowed.
func (r *Rotator) Random(ctx context.Context, difficulty string) (*models.Recipe, error) {
	recipes, err := r.repo.Recipes(ctx)
	if err != nil {
		return nil, err
	}
	if difficulty != "" {
		recipes = lo.Filter(recipes, func(recipe models.Recipe, _ int) bool {
			return recipe.Difficulty == difficulty
		})
	}
	if len(recipes) == 0 {
		return nil, ErrEmptyCatalog
	}
	picked := pick(ctx, recipes)
	return &picked, nil
}

func pick(ctx context.Context, recipes []models.Recipe) models.Recipe {
	select {
	case <-ctx.Done():
		util.LogWarnCtx(ctx, "Recipe pick cancelled: %v", ctx.Err())
		return recipes[0]
	default:
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(recipes))))
	if err != nil {
		util.LogWarnCtx(ctx, "Error generating random number: %v, using fallback", err)
		return recipes[0]
	}
	return recipes[n.Int64()]
}

// EnsureSeeded loads recipes into an empty repository.
func EnsureSeeded(ctx context.Context, repo Repository, recipes []models.Recipe) (int, error) {
	existing, err := repo.Recipes(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	n, err := repo.UpsertRecipes(ctx, recipes)
	if err != nil {
		return 0, fmt.Errorf("seed recipes: %w", err)
	}
	util.LogInfo("Seeded %d recipe%s", n, util.Plural(n))
	return n, nil
}
