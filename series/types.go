package series

import (
	"time"

	"github.com/townbeat/eventseries/recurrence"
)

// Status is an instance's review-workflow state. Transitions are owned by
// the surrounding application; this package only reads the values that
// affect scheduling (cancelled instances stay retired, everything else is
// live).
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusPublished     Status = "published"
	StatusRejected      Status = "rejected"
	StatusCancelled     Status = "cancelled"
	StatusPostponed     Status = "postponed"
)

// Series groups event instances under one title, venue and price.
type Series struct {
	ID          string
	Title       string
	Description string
	Venue       string
	Price       string

	// StartDate anchors generation: the first occurrence is the first
	// pattern match on or after this date.
	StartDate time.Time

	// Timezone is the IANA zone the recurrence rule is declared in.
	Timezone string

	// TotalSessions is nil for open-ended series.
	TotalSessions *int
}

// SessionsRemaining derives how many sessions are still ahead of the given
// date. It is recomputed from the instance list every time, never stored;
// today is passed in so the computation stays clock-free. The second return
// is false for open-ended series.
func (s Series) SessionsRemaining(instances []EventInstance, today time.Time) (int, bool) {
	if s.TotalSessions == nil {
		return 0, false
	}
	todayKey := today.Format(recurrence.DateLayout)
	elapsed := 0
	for _, inst := range instances {
		if inst.Status == StatusCancelled {
			continue
		}
		if inst.InstanceDate < todayKey {
			elapsed++
		}
	}
	remaining := *s.TotalSessions - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// EventInstance is one persisted, identifiable occurrence of a series, or a
// standalone event when SeriesID is empty.
type EventInstance struct {
	ID       string
	SeriesID string

	// InstanceDate is the calendar date key ("2006-01-02") used for
	// reconciliation. Never match on SeriesSequence.
	InstanceDate string

	Start time.Time
	End   time.Time

	// SeriesSequence is the 1-based display position ("Session 3 of 6").
	// Assigned by Renumber, stable across regeneration, zero for cancelled
	// and standalone instances.
	SeriesSequence int

	Status Status

	// IsManualOverride marks an instance whose date or time was hand-edited.
	// It claims its date: the reconciler neither retires it nor creates a
	// generated occurrence on top of it.
	IsManualOverride bool
}

// Diff is the reconciler's classification of what the persistence layer
// should do. The core never writes anything itself.
type Diff struct {
	ToCreate  []recurrence.Occurrence
	ToRetire  []EventInstance
	Unchanged []EventInstance
}

// Empty reports whether applying the diff would be a no-op.
func (d Diff) Empty() bool {
	return len(d.ToCreate) == 0 && len(d.ToRetire) == 0
}
