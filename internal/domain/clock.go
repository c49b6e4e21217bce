package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// ElapsedDays returns the days between ref's origin time and now.
func ElapsedDays(ref EventRecord) float64 {
	return float64(clock.Since(ref.OriginTime)) / float64(24*time.Hour)
}

// WindowComplete reports whether every instant of w relative to ref is
// already in the past, i.e. the catalog for w can no longer grow.
func WindowComplete(ref EventRecord, w Window) bool {
	_, end := w.TimeBounds(ref.OriginTime)
	return !end.After(clock.Now())
}
