package reglog

import "time"

// Filter selects events when scanning a trace back. The zero Filter
// matches everything; every field that is set must match.
type Filter struct {
	// SessionID matches the session UUID exactly.
	SessionID string

	// Layout matches the register layout name.
	Layout string

	// Direction, Layer and Category match the corresponding event
	// field when non-nil.
	Direction *Direction
	Layer     *Layer
	Category  *Category

	// TimeStart and TimeEnd bound the timestamp, start inclusive and
	// end exclusive.
	TimeStart *time.Time
	TimeEnd   *time.Time
}

func (f *Filter) matches(event Event) bool {
	switch {
	case f.SessionID != "" && event.SessionID != f.SessionID:
		return false
	case f.Layout != "" && event.Layout != f.Layout:
		return false
	case f.Direction != nil && event.Direction != *f.Direction:
		return false
	case f.Layer != nil && event.Layer != *f.Layer:
		return false
	case f.Category != nil && event.Category != *f.Category:
		return false
	case f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart):
		return false
	case f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	}
	return true
}
