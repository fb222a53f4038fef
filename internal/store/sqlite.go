package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	game "github.com/CodeAndHammer/foodle/internal/game"
	models "github.com/CodeAndHammer/foodle/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - initial schema
// 1 - index on game_results(player_id, created_at)
const currentSchemaVersion = 1

// SQLiteStore keeps authenticated players' sessions, results and stats, and
// doubles as the recipe catalog repository.
type SQLiteStore struct {
	db     *sql.DB
	limits game.Limits
	now    func() time.Time
}

// OpenSQLite creates or opens the database at path and applies the schema.
// limits are used when a finished day has to be rebuilt from its result.
func OpenSQLite(path string, limits game.Limits) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteStore{db: db, limits: limits, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < 1 {
		// schema.sql already carries the index; older files may not.
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_game_results_player ON game_results(player_id, created_at)`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Load returns the player's session for puzzleKey. When a result for the
// day's recipe already exists the session comes back terminal, so a finished
// day cannot be replayed from another device or after the live row was lost.
func (s *SQLiteStore) Load(ctx context.Context, playerID, puzzleKey string) (*models.Session, error) {
	saved, err := s.loadSessionRow(ctx, playerID, puzzleKey)
	if err != nil {
		return nil, err
	}
	if saved != nil && saved.Status.Terminal() {
		return saved, nil
	}

	recipe, err := s.BoundRecipe(ctx, puzzleKey)
	if err != nil {
		return nil, err
	}
	if recipe != nil {
		result, err := s.resultFor(ctx, playerID, recipe.ID)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return game.Reconstruct(recipe, puzzleKey, playerID, s.limits, *result), nil
		}
	}
	return saved, nil
}

func (s *SQLiteStore) loadSessionRow(ctx context.Context, playerID, puzzleKey string) (*models.Session, error) {
	var state string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM sessions WHERE player_id = ? AND puzzle_key = ?`,
		playerID, puzzleKey).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(state), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess *models.Session) error {
	if err := validateForSave(sess); err != nil {
		return err
	}
	state, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (player_id, puzzle_key, state, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(player_id, puzzle_key) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at`,
		sess.OwnerID, sess.PuzzleKey, string(state), formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendResult(ctx context.Context, playerID string, r models.GameResult) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO game_results
			(id, player_id, recipe_id, recipe_name, puzzle_key, attempts, hints_used, time_spent_ms, won, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(player_id, recipe_id) DO NOTHING`,
		r.ID, playerID, r.RecipeID, r.RecipeName, r.PuzzleKey, r.Attempts, r.HintsUsed,
		r.TimeSpent.Milliseconds(), r.Won, formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	if n == 0 {
		return ErrDuplicateResult
	}
	return nil
}

const resultColumns = `id, player_id, recipe_id, recipe_name, puzzle_key, attempts, hints_used, time_spent_ms, won, created_at`

func scanResult(row interface{ Scan(...any) error }) (models.GameResult, error) {
	var (
		r         models.GameResult
		spentMs   int64
		createdAt string
	)
	if err := row.Scan(&r.ID, &r.PlayerID, &r.RecipeID, &r.RecipeName, &r.PuzzleKey,
		&r.Attempts, &r.HintsUsed, &spentMs, &r.Won, &createdAt); err != nil {
		return models.GameResult{}, err
	}
	r.TimeSpent = time.Duration(spentMs) * time.Millisecond
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

func (s *SQLiteStore) resultFor(ctx context.Context, playerID, recipeID string) (*models.GameResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM game_results WHERE player_id = ? AND recipe_id = ?`,
		playerID, recipeID)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query result: %w", err)
	}
	return &r, nil
}

// Results lists a player's results, newest first.
func (s *SQLiteStore) Results(ctx context.Context, playerID string, wonOnly bool) ([]models.GameResult, error) {
	query := `SELECT ` + resultColumns + ` FROM game_results WHERE player_id = ?`
	if wonOnly {
		query += ` AND won = 1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []models.GameResult{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) LoadStats(ctx context.Context, playerID string) (*models.PlayerStats, error) {
	var st models.PlayerStats
	err := s.db.QueryRowContext(ctx, `
		SELECT games_played, games_won, current_streak, best_streak, last_played
		FROM player_stats WHERE player_id = ?`, playerID).
		Scan(&st.GamesPlayed, &st.GamesWon, &st.CurrentStreak, &st.BestStreak, &st.LastPlayedDay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return &st, nil
}

func (s *SQLiteStore) SaveStats(ctx context.Context, playerID string, st models.PlayerStats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_stats (player_id, games_played, games_won, current_streak, best_streak, last_played)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			games_played = excluded.games_played,
			games_won = excluded.games_won,
			current_streak = excluded.current_streak,
			best_streak = excluded.best_streak,
			last_played = excluded.last_played`,
		playerID, st.GamesPlayed, st.GamesWon, st.CurrentStreak, st.BestStreak, st.LastPlayedDay)
	if err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}
