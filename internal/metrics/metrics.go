// Package metrics exposes game counters to Prometheus.
//
// A Recorder owns its registry so tests and multiple servers never collide
// on the global default registry. A nil *Recorder is valid and records
// nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "foodle"
	subsystem = "game"
)

type Recorder struct {
	registry *prometheus.Registry

	// GuessesTotal counts processed guesses.
	// Labels: outcome (correct, incorrect, duplicate, ignored), mode (daily, practice)
	GuessesTotal *prometheus.CounterVec

	// GamesCompletedTotal counts terminal transitions.
	// Labels: status (won, lost), mode
	GamesCompletedTotal *prometheus.CounterVec

	// HintsUsedTotal counts hint charges spent.
	// Labels: mode
	HintsUsedTotal *prometheus.CounterVec

	BonusHintsTotal prometheus.Counter

	// PersistenceFailuresTotal counts store errors that gameplay survived.
	// Labels: operation (load, save, append_result, save_stats)
	PersistenceFailuresTotal *prometheus.CounterVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		GuessesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "guesses_total",
				Help:      "Total number of guesses processed",
			},
			[]string{"outcome", "mode"},
		),
		GamesCompletedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "completed_total",
				Help:      "Total number of games that reached a terminal state",
			},
			[]string{"status", "mode"},
		),
		HintsUsedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "hints_used_total",
				Help:      "Total number of hint charges spent",
			},
			[]string{"mode"},
		),
		BonusHintsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bonus_hints_total",
				Help:      "Total number of hint charges granted by reward events",
			},
		),
		PersistenceFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "failures_total",
				Help:      "Total number of persistence errors absorbed during play",
			},
			[]string{"operation"},
		),
	}
}

func mode(practice bool) string {
	if practice {
		return "practice"
	}
	return "daily"
}

func (r *Recorder) RecordGuess(outcome string, practice bool) {
	if r == nil {
		return
	}
	r.GuessesTotal.WithLabelValues(outcome, mode(practice)).Inc()
}

func (r *Recorder) RecordCompleted(status string, practice bool) {
	if r == nil {
		return
	}
	r.GamesCompletedTotal.WithLabelValues(status, mode(practice)).Inc()
}

func (r *Recorder) RecordHint(practice bool) {
	if r == nil {
		return
	}
	r.HintsUsedTotal.WithLabelValues(mode(practice)).Inc()
}

func (r *Recorder) RecordBonusHints(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.BonusHintsTotal.Add(float64(n))
}

func (r *Recorder) RecordPersistenceFailure(operation string) {
	if r == nil {
		return
	}
	r.PersistenceFailuresTotal.WithLabelValues(operation).Inc()
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
