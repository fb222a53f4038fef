package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	config "github.com/CodeAndHammer/foodle/internal/config"
	metrics "github.com/CodeAndHammer/foodle/internal/metrics"
	session "github.com/CodeAndHammer/foodle/internal/session"
	store "github.com/CodeAndHammer/foodle/internal/store"
	util "github.com/CodeAndHammer/foodle/internal/util"
)

type rateLimiterEntry struct {
	Limiter    *rate.Limiter
	LastAccess time.Time
}

type App struct {
	Config   config.Config
	Sessions *session.Service
	Metrics  *metrics.Recorder
	Players  *store.SQLiteStore
	Guests   store.SessionStore
	// GuestMemory is set when guests live in process and need sweeping.
	GuestMemory  *store.MemoryStore
	LimiterMap   map[string]*rateLimiterEntry
	LimiterMutex sync.RWMutex
	StartTime    time.Time
	closers      []func() error
}

func (app *App) limiterCount() int {
	app.LimiterMutex.RLock()
	defer app.LimiterMutex.RUnlock()
	return len(app.LimiterMap)
}

func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			util.LogWarn("Error during shutdown: %v", err)
		}
	}
}
