package domain

// DropReason explains why an event element produced no record.
type DropReason string

const (
	DropNoOrigin     DropReason = "no_origin"
	DropNoMagnitude  DropReason = "no_magnitude"
	DropBadTime      DropReason = "bad_time"
	DropBadLatitude  DropReason = "bad_latitude"
	DropBadLongitude DropReason = "bad_longitude"
	DropBadDepth     DropReason = "bad_depth"
	DropBadMagnitude DropReason = "bad_magnitude"
)

// DecodeStats summarizes one decode pass so callers can tell an empty
// catalog apart from one whose events were all dropped.
type DecodeStats struct {
	Attempted int                `json:"attempted"`
	Decoded   int                `json:"decoded"`
	Dropped   map[DropReason]int `json:"dropped,omitempty"`
}

// Drop records one dropped event.
func (s *DecodeStats) Drop(reason DropReason) {
	if s.Dropped == nil {
		s.Dropped = make(map[DropReason]int)
	}
	s.Dropped[reason]++
}

// DroppedTotal is the number of events that produced no record.
func (s DecodeStats) DroppedTotal() int {
	n := 0
	for _, c := range s.Dropped {
		n += c
	}
	return n
}
