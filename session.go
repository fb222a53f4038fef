package main

import (
	"context"
	"time"

	util "github.com/CodeAndHammer/foodle/internal/util"
)

const (
	sessionCleanupInterval = 10 * time.Minute
	limiterCleanupInterval = 30 * time.Minute
)

// startCleanupRoutines sweeps idle live sessions, rate limiters and, for the
// in-process guest backend, abandoned guest slots until ctx is done.
func (app *App) startCleanupRoutines(ctx context.Context) {
	app.Sessions.StartSessionCleanup(ctx, sessionCleanupInterval)
	if app.GuestMemory != nil {
		app.GuestMemory.StartCleanup(ctx, sessionCleanupInterval)
	}

	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				app.cleanupStaleRateLimiters()
			}
		}
	}()

	util.LogInfo("Started cleanup routines for sessions and rate limiters")
}
