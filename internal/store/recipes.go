package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	models "github.com/CodeAndHammer/foodle/internal/models"
)

// ErrRecipeBound is returned when a recipe is already bound to another day.
var ErrRecipeBound = errors.New("recipe already bound to a puzzle day")

const recipeColumns = `r.id, r.name, r.icon, r.ingredients, r.difficulty, r.category,
	r.description, r.instructions, r.image_url, r.cook_time, r.servings, r.consumed`

func scanRecipe(row interface{ Scan(...any) error }) (models.Recipe, error) {
	var (
		r           models.Recipe
		ingredients string
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Icon, &ingredients, &r.Difficulty, &r.Category,
		&r.Description, &r.Instructions, &r.ImageURL, &r.CookTimeMinutes, &r.Servings, &r.Consumed); err != nil {
		return models.Recipe{}, err
	}
	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return models.Recipe{}, fmt.Errorf("decode ingredients for %s: %w", r.ID, err)
	}
	return r, nil
}

// UpsertRecipes inserts or refreshes catalog entries. Recipes already bound
// to a puzzle day are left untouched.
func (s *SQLiteStore) UpsertRecipes(ctx context.Context, recipes []models.Recipe) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recipes
			(id, name, icon, ingredients, difficulty, category, description, instructions,
			 image_url, cook_time, servings, consumed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			ingredients = excluded.ingredients,
			difficulty = excluded.difficulty,
			category = excluded.category,
			description = excluded.description,
			instructions = excluded.instructions,
			image_url = excluded.image_url,
			cook_time = excluded.cook_time,
			servings = excluded.servings
		WHERE recipes.id NOT IN (SELECT recipe_id FROM puzzle_days)`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	written := 0
	created := formatTime(s.now())
	for _, r := range recipes {
		ingredients, err := json.Marshal(r.Ingredients)
		if err != nil {
			return 0, fmt.Errorf("encode ingredients for %s: %w", r.ID, err)
		}
		res, err := stmt.ExecContext(ctx, r.ID, r.Name, r.Icon, string(ingredients), r.Difficulty, r.Category,
			r.Description, r.Instructions, r.ImageURL, r.CookTimeMinutes, r.Servings, created)
		if err != nil {
			return 0, fmt.Errorf("upsert recipe %s: %w", r.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			written++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit recipes: %w", err)
	}
	return written, nil
}

// Recipes returns the whole catalog ordered by id.
func (s *SQLiteStore) Recipes(ctx context.Context) ([]models.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recipeColumns+` FROM recipes r ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

// BoundRecipe returns the recipe bound to puzzleKey, or nil when the day has
// not been bound yet.
func (s *SQLiteStore) BoundRecipe(ctx context.Context, puzzleKey string) (*models.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recipeColumns+`
		FROM puzzle_days d JOIN recipes r ON r.id = d.recipe_id
		WHERE d.puzzle_key = ?`, puzzleKey)
	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query bound recipe: %w", err)
	}
	return &r, nil
}

// BindDay binds recipeID to puzzleKey and marks it consumed. When another
// caller bound the day first, the existing binding wins and is returned.
func (s *SQLiteStore) BindDay(ctx context.Context, puzzleKey, recipeID string) (*models.Recipe, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO puzzle_days (puzzle_key, recipe_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		puzzleKey, recipeID)
	if err != nil {
		return nil, fmt.Errorf("bind day %s: %w", puzzleKey, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE recipes SET consumed = 1 WHERE id = ?`, recipeID); err != nil {
			return nil, fmt.Errorf("mark recipe consumed: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit binding: %w", err)
	}

	bound, err := s.BoundRecipe(ctx, puzzleKey)
	if err != nil {
		return nil, err
	}
	if bound == nil {
		return nil, fmt.Errorf("bind day %s to %s: %w", puzzleKey, recipeID, ErrRecipeBound)
	}
	return bound, nil
}

// PuzzleDays lists every binding, most recent day first.
func (s *SQLiteStore) PuzzleDays(ctx context.Context) ([]models.PuzzleDay, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT puzzle_key, recipe_id FROM puzzle_days ORDER BY puzzle_key DESC`)
	if err != nil {
		return nil, fmt.Errorf("query puzzle days: %w", err)
	}
	defer rows.Close()

	var days []models.PuzzleDay
	for rows.Next() {
		var d models.PuzzleDay
		if err := rows.Scan(&d.Key, &d.RecipeID); err != nil {
			return nil, fmt.Errorf("scan puzzle day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
