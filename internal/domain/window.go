package domain

import (
	"errors"
	"time"
)

const millisPerDay = 86_400_000

// Window bounds a catalog query in time (days relative to a reference event)
// and depth (kilometers).
type Window struct {
	MinDays    float64
	MaxDays    float64
	MinDepthKm float64
	MaxDepthKm float64
}

// Validate rejects inverted ranges.
func (w Window) Validate() error {
	if w.MinDays > w.MaxDays {
		return errors.New("window min days exceeds max days")
	}
	if w.MinDepthKm > w.MaxDepthKm {
		return errors.New("window min depth exceeds max depth")
	}
	return nil
}

// TimeBounds converts the day offsets into absolute UTC instants relative to
// ref. Each offset is scaled to milliseconds and truncated toward zero.
func (w Window) TimeBounds(ref time.Time) (start, end time.Time) {
	return offsetDays(ref, w.MinDays), offsetDays(ref, w.MaxDays)
}

func offsetDays(ref time.Time, days float64) time.Time {
	return time.UnixMilli(ref.UnixMilli() + int64(days*millisPerDay)).UTC()
}
