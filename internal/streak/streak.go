package streak

import (
	models "github.com/CodeAndHammer/foodle/internal/models"
	schedule "github.com/CodeAndHammer/foodle/internal/schedule"
)

// Apply folds one completed puzzle day into a player's stats. It must run at
// most once per (player, puzzle day); callers guard that through the
// duplicate-result check in the store.
func Apply(prev *models.PlayerStats, won bool, today string) models.PlayerStats {
	if prev == nil {
		next := models.PlayerStats{GamesPlayed: 1, LastPlayedDay: today}
		if won {
			next.GamesWon = 1
			next.CurrentStreak = 1
		}
		next.BestStreak = next.CurrentStreak
		return next
	}

	next := *prev
	next.GamesPlayed++
	next.LastPlayedDay = today

	if !won {
		next.CurrentStreak = 0
		return next
	}

	next.GamesWon++
	days, err := schedule.DaysBetween(prev.LastPlayedDay, today)
	switch {
	case err != nil:
		next.CurrentStreak = 1
	case days == 1:
		next.CurrentStreak = prev.CurrentStreak + 1
	case days == 0:
		// already played today
	default:
		next.CurrentStreak = 1
	}
	next.BestStreak = max(next.BestStreak, next.CurrentStreak)
	return next
}
