package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	constants "github.com/CodeAndHammer/foodle/internal/constants"
	util "github.com/CodeAndHammer/foodle/internal/util"
)

const (
	GuestBackendMemory = "memory"
	GuestBackendBadger = "badger"
)

type Config struct {
	Port         string
	IsProduction bool

	DBPath       string
	RecipesFile  string
	GuestBackend string
	BadgerPath   string

	RolloverHour     int
	UTCOffsetMinutes int
	MaxAttempts      int
	MaxHints         int
	SiteURL          string

	CookieMaxAge   time.Duration
	SessionTTL     time.Duration
	RateLimitRPS   int
	RateLimitBurst int
	RateLimiterTTL time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		util.LogInfo("Loaded environment from .env")
	}
	return FromEnv()
}

func FromEnv() Config {
	cfg := Config{
		Port:         util.GetEnvString("PORT", "8080"),
		IsProduction: os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production",

		DBPath:       util.GetEnvString("DB_PATH", "foodle.db"),
		RecipesFile:  util.GetEnvString("RECIPES_FILE", ""),
		GuestBackend: strings.ToLower(util.GetEnvString("GUEST_BACKEND", GuestBackendMemory)),
		BadgerPath:   util.GetEnvString("BADGER_PATH", "data/guests"),

		RolloverHour:     util.GetEnvInt("ROLLOVER_HOUR", constants.DefaultRolloverHour),
		UTCOffsetMinutes: util.GetEnvInt("UTC_OFFSET_MINUTES", constants.DefaultUTCOffsetMinutes),
		MaxAttempts:      util.GetEnvInt("MAX_ATTEMPTS", constants.DefaultMaxAttempts),
		MaxHints:         util.GetEnvInt("MAX_HINTS", constants.DefaultMaxHints),
		SiteURL:          util.GetEnvString("SITE_URL", constants.DefaultSiteURL),

		CookieMaxAge:   util.GetEnvDuration("COOKIE_MAX_AGE", 24*time.Hour),
		SessionTTL:     util.GetEnvDuration("SESSION_TTL", 3*time.Hour),
		RateLimitRPS:   util.GetEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: util.GetEnvInt("RATE_LIMIT_BURST", 10),
		RateLimiterTTL: util.GetEnvDuration("RATE_LIMITER_TTL", time.Hour),
	}

	if cfg.RolloverHour < 0 || cfg.RolloverHour > 23 {
		util.LogWarn("ROLLOVER_HOUR %d out of range, using default %d", cfg.RolloverHour, constants.DefaultRolloverHour)
		cfg.RolloverHour = constants.DefaultRolloverHour
	}
	if cfg.UTCOffsetMinutes < -14*60 || cfg.UTCOffsetMinutes > 14*60 {
		util.LogWarn("UTC_OFFSET_MINUTES %d out of range, using default %d", cfg.UTCOffsetMinutes, constants.DefaultUTCOffsetMinutes)
		cfg.UTCOffsetMinutes = constants.DefaultUTCOffsetMinutes
	}
	if cfg.MaxAttempts <= 0 {
		util.LogWarn("MAX_ATTEMPTS must be positive, using default %d", constants.DefaultMaxAttempts)
		cfg.MaxAttempts = constants.DefaultMaxAttempts
	}
	if cfg.MaxHints < 0 {
		util.LogWarn("MAX_HINTS must not be negative, using default %d", constants.DefaultMaxHints)
		cfg.MaxHints = constants.DefaultMaxHints
	}
	if cfg.GuestBackend != GuestBackendMemory && cfg.GuestBackend != GuestBackendBadger {
		util.LogWarn("Unknown GUEST_BACKEND %q, using %s", cfg.GuestBackend, GuestBackendMemory)
		cfg.GuestBackend = GuestBackendMemory
	}
	return cfg
}

func (c Config) Mode() string {
	if c.IsProduction {
		return "production"
	}
	return "development"
}
