package domain

import "time"

// Hypocenter is the location of an earthquake origin.
type Hypocenter struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	DepthKm float64 `json:"depth_km"`
}

// EventRecord is one decoded catalog event. Records are built once by the
// decoder and passed by value; nothing mutates them afterwards.
type EventRecord struct {
	ID         string     `json:"id"`
	OriginTime time.Time  `json:"origin_time"`
	Hypocenter Hypocenter `json:"hypocenter"`
	Magnitude  float64    `json:"magnitude"`
}

// IsZero reports whether r is the zero record.
func (r EventRecord) IsZero() bool {
	return r.ID == "" && r.OriginTime.IsZero()
}
