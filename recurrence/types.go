package recurrence

import (
	"time"
)

// DateLayout is the calendar-date key format used to match occurrences
// against materialized instances.
const DateLayout = "2006-01-02"

// Occurrence is a single generated date/time implied by a rule, before it is
// matched against anything persisted.
type Occurrence struct {
	Start time.Time
	End   time.Time

	// InstanceDate is the calendar date of Start in the rule's timezone,
	// formatted with DateLayout. It is the reconciliation key.
	InstanceDate string
}

// Window bounds a generation run. Both ends are inclusive; comparison is on
// occurrence start times.
type Window struct {
	Start time.Time
	End   time.Time
}

// Bounded reports whether the window has a finite upper bound.
func (w Window) Bounded() bool {
	return !w.End.IsZero()
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	return !w.Bounded() || !t.After(w.End)
}
