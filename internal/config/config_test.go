package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	constants "github.com/CodeAndHammer/foodle/internal/constants"
)

var configEnv = []string{
	"PORT", "GIN_MODE", "ENV", "DB_PATH", "RECIPES_FILE", "GUEST_BACKEND", "BADGER_PATH",
	"ROLLOVER_HOUR", "UTC_OFFSET_MINUTES", "MAX_ATTEMPTS", "MAX_HINTS", "SITE_URL",
	"COOKIE_MAX_AGE", "SESSION_TTL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"RATE_LIMITER_TTL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsProduction)
	assert.Equal(t, "development", cfg.Mode())
	assert.Equal(t, "foodle.db", cfg.DBPath)
	assert.Equal(t, GuestBackendMemory, cfg.GuestBackend)
	assert.Equal(t, constants.DefaultRolloverHour, cfg.RolloverHour)
	assert.Equal(t, constants.DefaultUTCOffsetMinutes, cfg.UTCOffsetMinutes)
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, constants.DefaultMaxHints, cfg.MaxHints)
	assert.Equal(t, constants.DefaultSiteURL, cfg.SiteURL)
	assert.Equal(t, 3*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.RateLimitRPS)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("GUEST_BACKEND", "Badger")
	t.Setenv("ROLLOVER_HOUR", "0")
	t.Setenv("UTC_OFFSET_MINUTES", "330")
	t.Setenv("MAX_ATTEMPTS", "6")
	t.Setenv("MAX_HINTS", "0")
	t.Setenv("SESSION_TTL", "30m")

	cfg := FromEnv()
	assert.True(t, cfg.IsProduction)
	assert.Equal(t, "production", cfg.Mode())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, GuestBackendBadger, cfg.GuestBackend)
	assert.Equal(t, 0, cfg.RolloverHour)
	assert.Equal(t, 330, cfg.UTCOffsetMinutes)
	assert.Equal(t, 6, cfg.MaxAttempts)
	assert.Equal(t, 0, cfg.MaxHints)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestFromEnv_InvalidFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("GIN_MODE", "release")
	t.Setenv("GUEST_BACKEND", "redis")
	t.Setenv("ROLLOVER_HOUR", "24")
	t.Setenv("UTC_OFFSET_MINUTES", "9999")
	t.Setenv("MAX_ATTEMPTS", "0")
	t.Setenv("MAX_HINTS", "-1")
	t.Setenv("RATE_LIMIT_BURST", "lots")

	cfg := FromEnv()
	assert.True(t, cfg.IsProduction)
	assert.Equal(t, GuestBackendMemory, cfg.GuestBackend)
	assert.Equal(t, constants.DefaultRolloverHour, cfg.RolloverHour)
	assert.Equal(t, constants.DefaultUTCOffsetMinutes, cfg.UTCOffsetMinutes)
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, constants.DefaultMaxHints, cfg.MaxHints)
	assert.Equal(t, 10, cfg.RateLimitBurst)
}
