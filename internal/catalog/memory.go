package catalog

import (
	"context"
	"slices"
	"sync"

	models "github.com/CodeAndHammer/foodle/internal/models"
)

// MemoryRepository is an in-process Repository for tests. Servers use the
// sqlite store.
type MemoryRepository struct {
	mu      sync.Mutex
	recipes []models.Recipe
	days    map[string]string
}

func NewMemoryRepository(recipes []models.Recipe) *MemoryRepository {
	m := &MemoryRepository{days: make(map[string]string)}
	m.UpsertRecipes(context.Background(), recipes)
	return m
}

func (m *MemoryRepository) Recipes(context.Context) ([]models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Recipe, len(m.recipes))
	for i, r := range m.recipes {
		r.Ingredients = slices.Clone(r.Ingredients)
		out[i] = r
	}
	return out, nil
}

func (m *MemoryRepository) BoundRecipe(_ context.Context, puzzleKey string) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.boundLocked(puzzleKey), nil
}

func (m *MemoryRepository) boundLocked(puzzleKey string) *models.Recipe {
	id, ok := m.days[puzzleKey]
	if !ok {
		return nil
	}
	idx := m.indexLocked(id)
	if idx < 0 {
		return nil
	}
	r := m.recipes[idx]
	r.Ingredients = slices.Clone(r.Ingredients)
	return &r
}

func (m *MemoryRepository) indexLocked(id string) int {
	return slices.IndexFunc(m.recipes, func(r models.Recipe) bool { return r.ID == id })
}

func (m *MemoryRepository) BindDay(_ context.Context, puzzleKey, recipeID string) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bound := m.boundLocked(puzzleKey); bound != nil {
		return bound, nil
	}
	idx := m.indexLocked(recipeID)
	if idx < 0 || m.recipes[idx].Consumed {
		return nil, ErrExhausted
	}
	m.days[puzzleKey] = recipeID
	m.recipes[idx].Consumed = true
	return m.boundLocked(puzzleKey), nil
}

func (m *MemoryRepository) UpsertRecipes(_ context.Context, recipes []models.Recipe) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	written := 0
	for _, r := range recipes {
		r.Ingredients = slices.Clone(r.Ingredients)
		idx := m.indexLocked(r.ID)
		switch {
		case idx < 0:
			r.Consumed = false
			m.recipes = append(m.recipes, r)
		case m.recipes[idx].Consumed:
			continue
		default:
			m.recipes[idx] = r
		}
		written++
	}
	return written, nil
}
