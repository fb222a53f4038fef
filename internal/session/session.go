// Package session runs puzzle sessions on behalf of players and guests.
//
// The Service keeps live sessions in memory, one per owner and puzzle day,
// and treats that copy as the source of truth for the duration of a command.
// Every change is written through to the owner's store; a failed write is
// reported as a warning and play continues from memory.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	catalog "github.com/CodeAndHammer/foodle/internal/catalog"
	constants "github.com/CodeAndHammer/foodle/internal/constants"
	game "github.com/CodeAndHammer/foodle/internal/game"
	metrics "github.com/CodeAndHammer/foodle/internal/metrics"
	models "github.com/CodeAndHammer/foodle/internal/models"
	schedule "github.com/CodeAndHammer/foodle/internal/schedule"
	store "github.com/CodeAndHammer/foodle/internal/store"
	streak "github.com/CodeAndHammer/foodle/internal/streak"
	util "github.com/CodeAndHammer/foodle/internal/util"
)

var (
	ErrNoPuzzleAvailable = errors.New("no puzzle available")
	ErrNotAuthenticated  = errors.New("player is not authenticated")
	ErrNoPracticeSession = errors.New("no practice session in progress")
	ErrNoIdentity        = errors.New("request carries no player or guest id")
)

// Identity says who is playing. PlayerID is set for authenticated players;
// otherwise GuestID identifies an anonymous browser.
type Identity struct {
	PlayerID string
	GuestID  string
}

func (id Identity) Authenticated() bool {
	return id.PlayerID != ""
}

func (id Identity) OwnerID() string {
	if id.Authenticated() {
		return id.PlayerID
	}
	return id.GuestID
}

func (id Identity) cacheKey(scope string) string {
	if id.Authenticated() {
		return scope + "/player/" + id.PlayerID
	}
	return scope + "/guest/" + id.GuestID
}

// RecipeSource supplies the recipe of the day and practice recipes.
type RecipeSource interface {
	Recipe(ctx context.Context, puzzleKey string) (*models.Recipe, error)
	Random(ctx context.Context, difficulty string) (*models.Recipe, error)
}

// ResultHistory lists a player's recorded results.
type ResultHistory interface {
	Results(ctx context.Context, playerID string, wonOnly bool) ([]models.GameResult, error)
}

type Options struct {
	Guests   store.SessionStore
	Players  store.SessionStore
	History  ResultHistory
	Recipes  RecipeSource
	Resolver *schedule.Resolver
	Metrics  *metrics.Recorder
	Limits   game.Limits
	SiteURL  string
	// SessionTTL bounds how long an idle live session stays cached.
	SessionTTL time.Duration
}

type Service struct {
	guests   store.SessionStore
	players  store.SessionStore
	history  ResultHistory
	recipes  RecipeSource
	resolver *schedule.Resolver
	metrics  *metrics.Recorder
	limits   game.Limits
	siteURL  string
	ttl      time.Duration
	newID    func() string

	mu   sync.RWMutex
	live map[string]*liveEntry
}

type liveEntry struct {
	mu         sync.Mutex
	session    *models.Session
	lastAccess time.Time
}

// Result is what every command hands back to the presentation layer.
type Result struct {
	Session  models.SessionView `json:"session"`
	Outcome  string             `json:"outcome"`
	Guess    *game.GuessOutcome `json:"guess,omitempty"`
	Hint     *game.HintOutcome  `json:"hint,omitempty"`
	Granted  int                `json:"granted,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
}

// Stats is a player's stats with the derived win rate.
type Stats struct {
	models.PlayerStats
	WinRate int `json:"winRate"`
}

func NewService(opts Options) *Service {
	if opts.Resolver == nil {
		opts.Resolver = schedule.NewResolver(constants.DefaultRolloverHour, constants.DefaultUTCOffsetMinutes, nil)
	}
	if opts.Limits.MaxAttempts <= 0 {
		opts.Limits = game.DefaultLimits()
	}
	return &Service{
		guests:   opts.Guests,
		players:  opts.Players,
		history:  opts.History,
		recipes:  opts.Recipes,
		resolver: opts.Resolver,
		metrics:  opts.Metrics,
		limits:   opts.Limits,
		siteURL:  opts.SiteURL,
		ttl:      opts.SessionTTL,
		newID:    uuid.NewString,
		live:     make(map[string]*liveEntry),
	}
}

func (s *Service) storeFor(id Identity) store.SessionStore {
	if id.Authenticated() {
		return s.players
	}
	return s.guests
}

func (s *Service) now() time.Time {
	return s.resolver.Now()
}

func (s *Service) entry(key string) *liveEntry {
	s.mu.RLock()
	e, ok := s.live[key]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.live[key]; !ok {
		e = &liveEntry{lastAccess: s.now()}
		s.live[key] = e
	}
	return e
}

func (s *Service) lookup(key string) (*liveEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.live[key]
	return e, ok
}

type command func(e *liveEntry, warnings *[]string) Result

// withDaily runs fn on the owner's session for the live puzzle day, loading
// or creating it first.
func (s *Service) withDaily(ctx context.Context, id Identity, fn command) (Result, error) {
	if id.OwnerID() == "" {
		return Result{}, ErrNoIdentity
	}
	key := s.resolver.Today()
	e := s.entry(id.cacheKey("daily/" + key))

	e.mu.Lock()
	defer e.mu.Unlock()

	var warnings []string
	if e.session == nil {
		sess, detached, err := s.openDaily(ctx, id, key, &warnings)
		if err != nil {
			return Result{}, err
		}
		if detached {
			return Result{Session: s.view(sess), Outcome: constants.OutcomeIgnored, Warnings: warnings}, nil
		}
		e.session = sess
	}
	e.lastAccess = s.now()

	res := fn(e, &warnings)
	res.Warnings = append(res.Warnings, warnings...)
	return res, nil
}

// openDaily loads or creates the owner's session for key. When the store
// cannot be read the session is detached: a fresh view is returned but it is
// neither saved nor cached, so stored progress is never overwritten and the
// next request retries the load.
func (s *Service) openDaily(ctx context.Context, id Identity, key string, warnings *[]string) (*models.Session, bool, error) {
	st := s.storeFor(id)
	sess, loadErr := st.Load(ctx, id.OwnerID(), key)
	if loadErr != nil {
		s.persistenceFailed(ctx, "load", loadErr, warnings)
		sess = nil
	}
	if sess != nil && sess.Recipe != nil {
		util.LogInfoCtx(ctx, "Loaded stored session for %s on %s (%s)", id.OwnerID(), key, sess.Status)
		return sess, false, nil
	}

	recipe, err := s.recipes.Recipe(ctx, key)
	if errors.Is(err, catalog.ErrEmptyCatalog) || errors.Is(err, catalog.ErrExhausted) || (err == nil && recipe == nil) {
		util.LogWarnCtx(ctx, "No recipe available for %s: %v", key, err)
		return nil, false, ErrNoPuzzleAvailable
	}
	if err != nil {
		return nil, false, fmt.Errorf("resolve recipe for %s: %w", key, err)
	}

	sess = game.NewSession(recipe, key, id.OwnerID(), s.limits, s.now())
	if loadErr != nil {
		util.LogWarnCtx(ctx, "Serving detached session for %s on %s until storage recovers", id.OwnerID(), key)
		return sess, true, nil
	}
	util.LogInfoCtx(ctx, "Created new session for %s on %s", id.OwnerID(), key)
	s.save(ctx, st, sess, warnings)
	return sess, false, nil
}

func (s *Service) save(ctx context.Context, st store.SessionStore, sess *models.Session, warnings *[]string) {
	if err := st.Save(ctx, sess); err != nil {
		s.persistenceFailed(ctx, "save", err, warnings)
	}
}

func (s *Service) persistenceFailed(ctx context.Context, operation string, err error, warnings *[]string) {
	util.LogWarnCtx(ctx, "Persistence %s failed: %v", operation, err)
	s.metrics.RecordPersistenceFailure(operation)
	warning := constants.WarningPersistenceFailed
	switch operation {
	case "append_result":
		warning = constants.WarningResultAppendFailed
	case "save_stats":
		warning = constants.WarningStatsUpdateFailed
	}
	*warnings = append(*warnings, warning)
}

func (s *Service) view(sess *models.Session) models.SessionView {
	return game.View(sess, s.siteURL, s.now())
}

// Today returns the owner's session for the live puzzle day.
func (s *Service) Today(ctx context.Context, id Identity) (Result, error) {
	return s.withDaily(ctx, id, func(e *liveEntry, _ *[]string) Result {
		return Result{Session: s.view(e.session), Outcome: constants.OutcomeLoaded}
	})
}

func (s *Service) Guess(ctx context.Context, id Identity, raw string) (Result, error) {
	return s.withDaily(ctx, id, func(e *liveEntry, warnings *[]string) Result {
		out := game.SubmitGuess(ctx, e.session, raw, s.now())
		s.metrics.RecordGuess(out.Kind, false)
		if out.Kind == constants.OutcomeCorrect || out.Kind == constants.OutcomeIncorrect {
			s.save(ctx, s.storeFor(id), e.session, warnings)
		}
		if out.Terminal {
			s.complete(ctx, id, e.session, warnings)
		}
		return Result{Session: s.view(e.session), Outcome: out.Kind, Guess: &out}
	})
}

func (s *Service) Hint(ctx context.Context, id Identity) (Result, error) {
	return s.withDaily(ctx, id, func(e *liveEntry, warnings *[]string) Result {
		out := game.UseHint(ctx, e.session, s.now())
		if out.Charge {
			s.metrics.RecordHint(false)
			s.save(ctx, s.storeFor(id), e.session, warnings)
		}
		return Result{Session: s.view(e.session), Outcome: out.Kind, Hint: &out}
	})
}

// GrantHints raises today's hint allowance after a reward event.
func (s *Service) GrantHints(ctx context.Context, id Identity, n int) (Result, error) {
	return s.withDaily(ctx, id, func(e *liveEntry, warnings *[]string) Result {
		granted := game.GrantHints(e.session, n)
		outcome := constants.OutcomeIgnored
		if granted > 0 {
			outcome = constants.OutcomeBonus
			s.metrics.RecordBonusHints(granted)
			s.save(ctx, s.storeFor(id), e.session, warnings)
			util.LogInfoCtx(ctx, "Granted %d bonus hint%s to %s", granted, util.Plural(granted), id.OwnerID())
		}
		return Result{Session: s.view(e.session), Outcome: outcome, Granted: granted}
	})
}

// complete records a finished daily session. Guests only count in metrics;
// players get a result row and, the first time only, a stats update.
func (s *Service) complete(ctx context.Context, id Identity, sess *models.Session, warnings *[]string) {
	s.metrics.RecordCompleted(string(sess.Status), false)
	if !id.Authenticated() {
		return
	}

	now := s.now()
	result := game.Result(sess, id.PlayerID, s.newID(), now)
	err := s.players.AppendResult(ctx, id.PlayerID, result)
	switch {
	case errors.Is(err, store.ErrDuplicateResult):
		util.LogInfoCtx(ctx, "Result for %s on %s already recorded, stats unchanged", id.PlayerID, sess.PuzzleKey)
		return
	case err != nil:
		s.persistenceFailed(ctx, "append_result", err, warnings)
		return
	}

	prev, err := s.players.LoadStats(ctx, id.PlayerID)
	if err != nil {
		s.persistenceFailed(ctx, "save_stats", err, warnings)
		return
	}
	next := streak.Apply(prev, sess.Status == models.StatusWon, sess.PuzzleKey)
	if err := s.players.SaveStats(ctx, id.PlayerID, next); err != nil {
		s.persistenceFailed(ctx, "save_stats", err, warnings)
		return
	}
	util.LogInfoCtx(ctx, "Stats for %s: played %d, streak %d (best %d)", id.PlayerID, next.GamesPlayed, next.CurrentStreak, next.BestStreak)
}

// StartPractice begins an unscored session on a random recipe, replacing any
// practice session the owner already had. Practice never touches the stores.
func (s *Service) StartPractice(ctx context.Context, id Identity, difficulty string) (Result, error) {
	if id.OwnerID() == "" {
		return Result{}, ErrNoIdentity
	}
	recipe, err := s.recipes.Random(ctx, difficulty)
	if errors.Is(err, catalog.ErrEmptyCatalog) {
		return Result{}, ErrNoPuzzleAvailable
	}
	if err != nil {
		return Result{}, fmt.Errorf("pick practice recipe: %w", err)
	}

	now := s.now()
	sess := game.NewSession(recipe, "practice", id.OwnerID(), s.limits, now)
	sess.Practice = true

	e := s.entry(id.cacheKey("practice"))
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = sess
	e.lastAccess = now
	util.LogInfoCtx(ctx, "Started practice session for %s", id.OwnerID())
	return Result{Session: s.view(sess), Outcome: constants.OutcomeLoaded}, nil
}

func (s *Service) withPractice(id Identity, fn func(sess *models.Session) Result) (Result, error) {
	e, ok := s.lookup(id.cacheKey("practice"))
	if !ok {
		return Result{}, ErrNoPracticeSession
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return Result{}, ErrNoPracticeSession
	}
	e.lastAccess = s.now()
	return fn(e.session), nil
}

func (s *Service) PracticeGuess(ctx context.Context, id Identity, raw string) (Result, error) {
	return s.withPractice(id, func(sess *models.Session) Result {
		out := game.SubmitGuess(ctx, sess, raw, s.now())
		s.metrics.RecordGuess(out.Kind, true)
		if out.Terminal {
			s.metrics.RecordCompleted(string(sess.Status), true)
		}
		return Result{Session: s.view(sess), Outcome: out.Kind, Guess: &out}
	})
}

func (s *Service) PracticeHint(ctx context.Context, id Identity) (Result, error) {
	return s.withPractice(id, func(sess *models.Session) Result {
		out := game.UseHint(ctx, sess, s.now())
		if out.Charge {
			s.metrics.RecordHint(true)
		}
		return Result{Session: s.view(sess), Outcome: out.Kind, Hint: &out}
	})
}

func (s *Service) Stats(ctx context.Context, id Identity) (Stats, error) {
	if !id.Authenticated() {
		return Stats{}, ErrNotAuthenticated
	}
	prev, err := s.players.LoadStats(ctx, id.PlayerID)
	if err != nil {
		return Stats{}, fmt.Errorf("load stats: %w", err)
	}
	var st models.PlayerStats
	if prev != nil {
		st = *prev
	}
	return Stats{PlayerStats: st, WinRate: st.WinRate()}, nil
}

// Cookbook lists the recipes a player has won, newest first.
func (s *Service) Cookbook(ctx context.Context, id Identity) ([]models.GameResult, error) {
	if !id.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if s.history == nil {
		return []models.GameResult{}, nil
	}
	results, err := s.history.Results(ctx, id.PlayerID, true)
	if err != nil {
		return nil, fmt.Errorf("load cookbook: %w", err)
	}
	return results, nil
}

// Countdown reports the live puzzle key and the time left until rollover.
func (s *Service) Countdown() (string, time.Duration) {
	now := s.now()
	return s.resolver.KeyAt(now), s.resolver.TimeRemaining(now)
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.live)
}

// CleanupExpired drops live sessions idle for longer than the TTL. Entries
// busy with a command are skipped.
func (s *Service) CleanupExpired() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	expiredCount := 0
	for key, e := range s.live {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastAccess.Before(cutoff) {
			delete(s.live, key)
			expiredCount++
		}
		e.mu.Unlock()
	}

	if expiredCount > 0 {
		util.LogInfo("Cleaned up %d expired sessions", expiredCount)
	}
	return expiredCount
}

func (s *Service) StartSessionCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired()
			}
		}
	}()
	util.LogInfo("Started session cleanup goroutine")
}
