package constants

const (
	DefaultMaxAttempts      = 5
	DefaultMaxHints         = 3
	MaxGuessRunes           = 64
	MaxBonusHints           = 3
	DefaultRolloverHour     = 4
	DefaultUTCOffsetMinutes = -300
)

const (
	OutcomeIgnored   = "ignored"
	OutcomeDuplicate = "duplicate"
	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"
	OutcomeHint      = "hint"
	OutcomeNoHint    = "no_hint"
	OutcomeLoaded    = "loaded"
	OutcomeBonus     = "bonus"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const (
	GuestCookieName = "guest_id"
	PlayerIDHeader  = "X-Player-ID"
	CSRFCookieName  = "csrf_token"
	CSRFHeaderName  = "X-CSRF-Token"
	RequestIDHeader = "X-Request-Id"
	PuzzleKeyLayout = "2006-01-02"
	DefaultSiteURL  = "foodle-game.com"
)

const (
	RouteToday         = "/api/today"
	RouteGuess         = "/api/guess"
	RouteHint          = "/api/hint"
	RouteBonusHint     = "/api/hint/bonus"
	RoutePractice      = "/api/practice"
	RoutePracticeGuess = "/api/practice/guess"
	RoutePracticeHint  = "/api/practice/hint"
	RouteStats         = "/api/stats"
	RouteCookbook      = "/api/cookbook"
	RouteCountdown     = "/api/countdown"
	RouteHealthz       = "/healthz"
	RouteMetrics       = "/metrics"
)

const (
	ErrorCodeNotPlaying       = "not_playing"
	ErrorCodeNotAuthenticated = "not_authenticated"
	ErrorCodeBadRequest       = "bad_request"
	ErrorCodeNoPractice       = "no_practice_session"
	ErrorCodeInternal         = "internal_error"
)

const (
	WarningPersistenceFailed  = "persistence_failed"
	WarningResultAppendFailed = "result_append_failed"
	WarningStatsUpdateFailed  = "stats_update_failed"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
)
