package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	catalog "github.com/CodeAndHammer/foodle/internal/catalog"
	config "github.com/CodeAndHammer/foodle/internal/config"
	constants "github.com/CodeAndHammer/foodle/internal/constants"
	handlers "github.com/CodeAndHammer/foodle/internal/handlers"
	metrics "github.com/CodeAndHammer/foodle/internal/metrics"
	schedule "github.com/CodeAndHammer/foodle/internal/schedule"
	session "github.com/CodeAndHammer/foodle/internal/session"
	store "github.com/CodeAndHammer/foodle/internal/store"
	util "github.com/CodeAndHammer/foodle/internal/util"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		util.LogFatal("%v", err)
	}
}

// newApp opens the stores, makes sure the catalog has recipes and builds
// the session service.
func newApp(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{
		Config:     cfg,
		Metrics:    metrics.New(),
		LimiterMap: make(map[string]*rateLimiterEntry),
		StartTime:  time.Now(),
	}

	players, err := openCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Players = players
	app.closers = append(app.closers, players.Close)
	util.LogInfo("Opened player database at %s", cfg.DBPath)

	switch cfg.GuestBackend {
	case config.GuestBackendBadger:
		guests, err := store.OpenBadger(store.BadgerConfig{Path: cfg.BadgerPath, TTL: cfg.SessionTTL})
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Guests = guests
		app.closers = append(app.closers, guests.Close)
		util.LogInfo("Guest sessions stored in badger at %s", cfg.BadgerPath)
	default:
		app.GuestMemory = store.NewMemoryStore(cfg.SessionTTL, nil)
		app.Guests = app.GuestMemory
		util.LogInfo("Guest sessions kept in memory")
	}

	app.Sessions = session.NewService(session.Options{
		Guests:     app.Guests,
		Players:    players,
		History:    players,
		Recipes:    catalog.NewRotator(players),
		Resolver:   schedule.NewResolver(cfg.RolloverHour, cfg.UTCOffsetMinutes, nil),
		Metrics:    app.Metrics,
		Limits:     limitsFor(cfg),
		SiteURL:    cfg.SiteURL,
		SessionTTL: cfg.SessionTTL,
	})
	return app, nil
}

// seedCatalog loads the recipes file when one is configured, and otherwise
// fills an empty catalog with the built-in recipes.
func seedCatalog(ctx context.Context, repo catalog.Repository, path string) error {
	if path == "" {
		_, err := catalog.EnsureSeeded(ctx, repo, catalog.DefaultRecipes())
		return err
	}
	if !util.FileExists(path) {
		return errors.New("recipes file not found: " + path)
	}
	recipes, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}
	n, err := repo.UpsertRecipes(ctx, recipes)
	if err != nil {
		return err
	}
	util.LogInfo("Loaded %d recipe%s from %s (%d written)", len(recipes), util.Plural(len(recipes)), path, n)
	return nil
}

func (app *App) newRouter() *gin.Engine {
	if app.Config.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(noStoreMiddleware())

	router.Use(app.csrfMiddleware())
	router.Use(app.validateCSRFMiddleware())

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedPaths([]string{constants.RouteCountdown})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		util.LogWarn("Failed to set trusted proxies: %v", err)
	}

	handlers.RegisterRoutes(router, &handlers.App{
		Sessions:     app.Sessions,
		Metrics:      app.Metrics,
		IsProduction: app.Config.IsProduction,
		StartTime:    app.StartTime,
		CookieMaxAge: app.Config.CookieMaxAge,
		LimiterCount: app.limiterCount,
		Ping:         app.Players.Ping,
	}, app.rateLimitMiddleware())

	return router
}

func (app *App) startServer(router *gin.Engine) error {
	srv := &http.Server{
		Addr:              ":" + app.Config.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		util.LogInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			util.LogWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	util.LogInfo("Server starting on http://localhost:%s", app.Config.Port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-idleConnsClosed
	util.LogInfo("Server shutdown complete")
	return nil
}
