package handlers

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	constants "github.com/CodeAndHammer/foodle/internal/constants"
	metrics "github.com/CodeAndHammer/foodle/internal/metrics"
	session "github.com/CodeAndHammer/foodle/internal/session"
	util "github.com/CodeAndHammer/foodle/internal/util"
)

const identityKey = "identity"

// App carries what the handlers need from the running server.
type App struct {
	Sessions          *session.Service
	Metrics           *metrics.Recorder
	IsProduction      bool
	StartTime         time.Time
	CookieMaxAge      time.Duration
	CountdownInterval time.Duration
	// LimiterCount and Ping are optional hooks used by the health check.
	LimiterCount func() int
	Ping         func(ctx context.Context) error
}

type guessRequest struct {
	Guess string `json:"guess" binding:"max=256"`
}

type bonusRequest struct {
	Count int `json:"count" binding:"gte=0,lte=100"`
}

type practiceRequest struct {
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// RegisterRoutes wires the JSON API. limit, when set, guards every mutating
// route.
func RegisterRoutes(router gin.IRouter, app *App, limit gin.HandlerFunc) {
	handle := func(fn func(*App, *gin.Context)) gin.HandlerFunc {
		return func(c *gin.Context) { fn(app, c) }
	}
	withIdentity := IdentityMiddleware(app)
	post := func(route string, fn func(*App, *gin.Context)) {
		if limit != nil {
			router.POST(route, limit, withIdentity, handle(fn))
			return
		}
		router.POST(route, withIdentity, handle(fn))
	}

	router.GET(constants.RouteToday, withIdentity, handle(TodayHandler))
	post(constants.RouteGuess, GuessHandler)
	post(constants.RouteHint, HintHandler)
	post(constants.RouteBonusHint, BonusHintHandler)
	post(constants.RoutePractice, PracticeHandler)
	post(constants.RoutePracticeGuess, PracticeGuessHandler)
	post(constants.RoutePracticeHint, PracticeHintHandler)
	router.GET(constants.RouteStats, withIdentity, handle(StatsHandler))
	router.GET(constants.RouteCookbook, withIdentity, handle(CookbookHandler))
	router.GET(constants.RouteCountdown, handle(CountdownHandler))
	router.GET(constants.RouteHealthz, handle(HealthzHandler))
	router.GET(constants.RouteMetrics, gin.WrapH(app.Metrics.Handler()))
}

// IdentityMiddleware resolves who is playing. A player id set by the
// upstream auth proxy wins; everyone else gets a guest cookie.
func IdentityMiddleware(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := session.Identity{PlayerID: strings.TrimSpace(c.GetHeader(constants.PlayerIDHeader))}
		guestID, err := c.Cookie(constants.GuestCookieName)
		if err != nil || len(guestID) < 10 {
			guestID = uuid.NewString()
			if !id.Authenticated() {
				c.SetSameSite(http.SameSiteStrictMode)
				c.SetCookie(constants.GuestCookieName, guestID, int(app.CookieMaxAge.Seconds()), "/", "", app.IsProduction, true)
				util.LogInfoCtx(c.Request.Context(), "Created new guest: %s", guestID)
			}
		}
		id.GuestID = guestID
		c.Set(identityKey, id)
		c.Next()
	}
}

func identity(c *gin.Context) session.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(session.Identity)
	return id
}

func respond(c *gin.Context, res session.Result, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNoPuzzleAvailable):
		c.JSON(http.StatusOK, gin.H{"status": constants.ErrorCodeNotPlaying})
	case errors.Is(err, session.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": constants.ErrorCodeNotAuthenticated})
	case errors.Is(err, session.ErrNoPracticeSession):
		c.JSON(http.StatusConflict, gin.H{"error": constants.ErrorCodeNoPractice})
	case errors.Is(err, session.ErrNoIdentity):
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrorCodeBadRequest})
	default:
		util.LogWarnCtx(c.Request.Context(), "Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": constants.ErrorCodeInternal})
	}
}

func badRequest(c *gin.Context, err error) {
	util.LogWarnCtx(c.Request.Context(), "Rejected request body: %v", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrorCodeBadRequest})
}

// bindOptional binds a JSON body when one was sent.
func bindOptional(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}

func TodayHandler(app *App, c *gin.Context) {
	res, err := app.Sessions.Today(c.Request.Context(), identity(c))
	respond(c, res, err)
}

func GuessHandler(app *App, c *gin.Context) {
	var req guessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := app.Sessions.Guess(c.Request.Context(), identity(c), req.Guess)
	respond(c, res, err)
}

func HintHandler(app *App, c *gin.Context) {
	res, err := app.Sessions.Hint(c.Request.Context(), identity(c))
	respond(c, res, err)
}

func BonusHintHandler(app *App, c *gin.Context) {
	var req bonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := app.Sessions.GrantHints(c.Request.Context(), identity(c), req.Count)
	respond(c, res, err)
}

func PracticeHandler(app *App, c *gin.Context) {
	var req practiceRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := app.Sessions.StartPractice(c.Request.Context(), identity(c), req.Difficulty)
	respond(c, res, err)
}

func PracticeGuessHandler(app *App, c *gin.Context) {
	var req guessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := app.Sessions.PracticeGuess(c.Request.Context(), identity(c), req.Guess)
	respond(c, res, err)
}

func PracticeHintHandler(app *App, c *gin.Context) {
	res, err := app.Sessions.PracticeHint(c.Request.Context(), identity(c))
	respond(c, res, err)
}

func StatsHandler(app *App, c *gin.Context) {
	stats, err := app.Sessions.Stats(c.Request.Context(), identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func CookbookHandler(app *App, c *gin.Context) {
	results, err := app.Sessions.Cookbook(c.Request.Context(), identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": results, "count": len(results)})
}

type countdownEvent struct {
	PuzzleKey string `json:"puzzleKey"`
	Remaining string `json:"remaining"`
	Seconds   int    `json:"seconds"`
}

// CountdownHandler streams the time left until the next puzzle as
// server-sent events until the client goes away.
func CountdownHandler(app *App, c *gin.Context) {
	interval := app.CountdownInterval
	if interval <= 0 {
		interval = time.Second
	}
	ctx := c.Request.Context()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for {
		key, remaining := app.Sessions.Countdown()
		c.SSEvent("countdown", countdownEvent{
			PuzzleKey: key,
			Remaining: util.FormatCountdown(remaining),
			Seconds:   int(remaining.Seconds()),
		})
		c.Writer.Flush()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func HealthzHandler(app *App, c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(app.StartTime)
	limiterCount := 0
	if app.LimiterCount != nil {
		limiterCount = app.LimiterCount()
	}
	puzzleKey, remaining := app.Sessions.Countdown()

	status, code := "ok", http.StatusOK
	if app.Ping != nil {
		if err := app.Ping(c.Request.Context()); err != nil {
			util.LogWarnCtx(c.Request.Context(), "Health check ping failed: %v", err)
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":          status,
		"env":             map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"puzzle_key":      puzzleKey,
		"next_puzzle_in":  util.FormatCountdown(remaining),
		"active_sessions": app.Sessions.Len(),
		"active_limiters": limiterCount,
		"memory_alloc_mb": m.Alloc / 1024 / 1024,
		"memory_sys_mb":   m.Sys / 1024 / 1024,
		"memory_gc_count": m.NumGC,
		"uptime":          util.FormatUptime(uptime),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
