package model

import "time"

// Event is a calendar entry with a concrete start and end.
type Event struct {
	Start    time.Time
	End      time.Time
	ID       string
	UserID   string
	Title    string
	Location string
}

// Overlaps reports whether two events share any time.
func (e *Event) Overlaps(other *Event) bool {
	return e.Start.Before(other.End) && other.Start.Before(e.End)
}

// EventConflict is a detected pair of overlapping events.
type EventConflict struct {
	OverlapStart time.Time
	OverlapEnd   time.Time
	EventID      string
	OtherEventID string
}
