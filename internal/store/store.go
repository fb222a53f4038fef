// Package store persists sessions, results and player stats.
//
// Two families of backend share the SessionStore contract: guest stores keep
// a single ephemeral slot per guest (memory or badger), and the sqlite store
// keeps authenticated players' sessions, append-only results and stats. The
// game engine never knows which one it is talking to.
package store

import (
	"context"
	"errors"

	models "github.com/CodeAndHammer/foodle/internal/models"
)

var (
	// ErrDuplicateResult is returned by AppendResult when the player already
	// has a result for the recipe. Stats must not be folded again.
	ErrDuplicateResult = errors.New("game result already recorded")

	ErrMissingOwner = errors.New("session has no owner")
)

type SessionStore interface {
	// Load returns the owner's session for puzzleKey, or nil when there is none.
	Load(ctx context.Context, ownerID, puzzleKey string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	AppendResult(ctx context.Context, playerID string, result models.GameResult) error
	// LoadStats returns nil when the player has never completed a game.
	LoadStats(ctx context.Context, playerID string) (*models.PlayerStats, error)
	SaveStats(ctx context.Context, playerID string, stats models.PlayerStats) error
}

func validateForSave(s *models.Session) error {
	if s == nil || s.OwnerID == "" {
		return ErrMissingOwner
	}
	return nil
}
