package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"

	models "github.com/CodeAndHammer/foodle/internal/models"
)

func TestApply_FirstGame(t *testing.T) {
	won := Apply(nil, true, "2025-03-10")
	assert.Equal(t, models.PlayerStats{
		GamesPlayed:   1,
		GamesWon:      1,
		CurrentStreak: 1,
		BestStreak:    1,
		LastPlayedDay: "2025-03-10",
	}, won)

	lost := Apply(nil, false, "2025-03-10")
	assert.Equal(t, models.PlayerStats{
		GamesPlayed:   1,
		LastPlayedDay: "2025-03-10",
	}, lost)
}

func TestApply_Streaks(t *testing.T) {
	prev := &models.PlayerStats{
		GamesPlayed:   10,
		GamesWon:      8,
		CurrentStreak: 5,
		BestStreak:    7,
		LastPlayedDay: "2025-03-10",
	}

	cases := []struct {
		name        string
		won         bool
		today       string
		wantCurrent int
		wantBest    int
		wantWon     int
	}{
		{"win next day extends", true, "2025-03-11", 6, 7, 9},
		{"win after gap resets to one", true, "2025-03-13", 1, 7, 9},
		{"win same day holds", true, "2025-03-10", 5, 7, 9},
		{"loss resets", false, "2025-03-11", 0, 7, 8},
		{"loss after gap resets", false, "2025-03-20", 0, 7, 8},
		{"win with unreadable last day", true, "not-a-date", 1, 7, 9},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Apply(prev, c.won, c.today)
			assert.Equal(t, c.wantCurrent, got.CurrentStreak)
			assert.Equal(t, c.wantBest, got.BestStreak)
			assert.Equal(t, c.wantWon, got.GamesWon)
			assert.Equal(t, 11, got.GamesPlayed)
			assert.Equal(t, c.today, got.LastPlayedDay)
		})
	}
	assert.Equal(t, 5, prev.CurrentStreak, "Apply must not mutate its input")
}

func TestApply_BestStreakFollowsCurrent(t *testing.T) {
	stats := Apply(nil, true, "2025-03-01")
	for _, day := range []string{"2025-03-02", "2025-03-03", "2025-03-04"} {
		stats = Apply(&stats, true, day)
	}
	assert.Equal(t, 4, stats.CurrentStreak)
	assert.Equal(t, 4, stats.BestStreak)

	stats = Apply(&stats, false, "2025-03-05")
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 4, stats.BestStreak)

	stats = Apply(&stats, true, "2025-03-06")
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 4, stats.BestStreak)
	assert.Equal(t, 6, stats.GamesPlayed)
	assert.Equal(t, 5, stats.GamesWon)
}

func TestPlayerStats_WinRate(t *testing.T) {
	assert.Equal(t, 0, models.PlayerStats{}.WinRate())
	assert.Equal(t, 90, models.PlayerStats{GamesPlayed: 42, GamesWon: 38}.WinRate())
	assert.Equal(t, 100, models.PlayerStats{GamesPlayed: 3, GamesWon: 3}.WinRate())
}
