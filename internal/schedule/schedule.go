// Package schedule works out which puzzle day is live.
//
// A puzzle day starts at a fixed local hour in one canonical fixed-offset
// zone, so every player sees the same recipe at the same moment. DST is
// ignored: the offset is a single region's standard time.
package schedule

import (
	"fmt"
	"time"

	constants "github.com/CodeAndHammer/foodle/internal/constants"
)

type Clock func() time.Time

type Resolver struct {
	RolloverHour     int
	UTCOffsetMinutes int
	Clock            Clock
}

func NewResolver(rolloverHour, utcOffsetMinutes int, clock Clock) *Resolver {
	if clock == nil {
		clock = time.Now
	}
	return &Resolver{
		RolloverHour:     rolloverHour,
		UTCOffsetMinutes: utcOffsetMinutes,
		Clock:            clock,
	}
}

func zone(utcOffsetMinutes int) *time.Location {
	return time.FixedZone("puzzle", utcOffsetMinutes*60)
}

// CurrentPuzzleKey returns the puzzle day for now as YYYY-MM-DD. Before the
// rollover hour the previous calendar day is still live.
func CurrentPuzzleKey(now time.Time, rolloverHourLocal, utcOffsetMinutes int) string {
	local := now.In(zone(utcOffsetMinutes))
	if local.Hour() < rolloverHourLocal {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format(constants.PuzzleKeyLayout)
}

// NextRollover returns the instant the puzzle day after now begins.
func NextRollover(now time.Time, rolloverHourLocal, utcOffsetMinutes int) time.Time {
	loc := zone(utcOffsetMinutes)
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), rolloverHourLocal, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// DaysBetween returns the whole days from one puzzle key to another.
func DaysBetween(from, to string) (int, error) {
	a, err := time.Parse(constants.PuzzleKeyLayout, from)
	if err != nil {
		return 0, fmt.Errorf("parse puzzle key %q: %w", from, err)
	}
	b, err := time.Parse(constants.PuzzleKeyLayout, to)
	if err != nil {
		return 0, fmt.Errorf("parse puzzle key %q: %w", to, err)
	}
	return int(b.Sub(a) / (24 * time.Hour)), nil
}

// ValidKey reports whether key is a well-formed puzzle key.
func ValidKey(key string) bool {
	_, err := time.Parse(constants.PuzzleKeyLayout, key)
	return err == nil
}

func (r *Resolver) Now() time.Time {
	return r.Clock()
}

func (r *Resolver) KeyAt(t time.Time) string {
	return CurrentPuzzleKey(t, r.RolloverHour, r.UTCOffsetMinutes)
}

func (r *Resolver) Today() string {
	return r.KeyAt(r.Clock())
}

func (r *Resolver) NextRollover(now time.Time) time.Time {
	return NextRollover(now, r.RolloverHour, r.UTCOffsetMinutes)
}

// TimeRemaining is the countdown shown until the next puzzle. Display only.
func (r *Resolver) TimeRemaining(now time.Time) time.Duration {
	return r.NextRollover(now).Sub(now)
}
