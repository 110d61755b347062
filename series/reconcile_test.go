package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townbeat/eventseries/recurrence"
)

func occ(date string, hour int) recurrence.Occurrence {
	d, _ := time.Parse(recurrence.DateLayout, date)
	start := time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
	return recurrence.Occurrence{
		Start:        start,
		End:          start.Add(2 * time.Hour),
		InstanceDate: date,
	}
}

func inst(id, date string, status Status, override bool) EventInstance {
	d, _ := time.Parse(recurrence.DateLayout, date)
	start := time.Date(d.Year(), d.Month(), d.Day(), 18, 0, 0, 0, time.UTC)
	return EventInstance{
		ID:               id,
		SeriesID:         "s1",
		InstanceDate:     date,
		Start:            start,
		End:              start.Add(2 * time.Hour),
		Status:           status,
		IsManualOverride: override,
	}
}

func TestReconcile_EmptyInputs(t *testing.T) {
	diff := Reconcile(nil, nil)
	assert.True(t, diff.Empty())
	assert.Empty(t, diff.ToCreate)
	assert.Empty(t, diff.ToRetire)
	assert.Empty(t, diff.Unchanged)
}

func TestReconcile_AllNew(t *testing.T) {
	occurrences := []recurrence.Occurrence{
		occ("2025-03-04", 18),
		occ("2025-03-11", 18),
	}

	diff := Reconcile(occurrences, nil)
	require.Len(t, diff.ToCreate, 2)
	assert.Empty(t, diff.ToRetire)
	assert.Empty(t, diff.Unchanged)
}

func TestReconcile_MatchByDateNotTimestamp(t *testing.T) {
	// The stored instance starts at 18:00, the fresh occurrence at 19:00;
	// same date means no churn.
	occurrences := []recurrence.Occurrence{occ("2025-03-04", 19)}
	existing := []EventInstance{inst("a", "2025-03-04", StatusPublished, false)}

	diff := Reconcile(occurrences, existing)
	assert.Empty(t, diff.ToCreate)
	assert.Empty(t, diff.ToRetire)
	require.Len(t, diff.Unchanged, 1)
	assert.Equal(t, "a", diff.Unchanged[0].ID)
}

func TestReconcile_OverrideSupremacy(t *testing.T) {
	// The organizer moved the March 4 session to 7pm; the rule still implies
	// 6pm on that date. The override claims the date: nothing is created,
	// nothing retired.
	moved := inst("a", "2025-03-04", StatusPublished, true)
	moved.Start = moved.Start.Add(time.Hour)
	moved.End = moved.End.Add(time.Hour)

	occurrences := []recurrence.Occurrence{occ("2025-03-04", 18)}

	diff := Reconcile(occurrences, []EventInstance{moved})
	assert.Empty(t, diff.ToCreate, "the occurrence must not double-book the override's date")
	assert.Empty(t, diff.ToRetire)
	require.Len(t, diff.Unchanged, 1)
	assert.Equal(t, "a", diff.Unchanged[0].ID)
}

func TestReconcile_OverrideNeverRetired(t *testing.T) {
	// Rule no longer implies the override's date at all.
	override := inst("a", "2025-03-04", StatusPublished, true)
	regular := inst("b", "2025-03-11", StatusPublished, false)

	diff := Reconcile(nil, []EventInstance{override, regular})
	assert.Empty(t, diff.ToCreate)
	require.Len(t, diff.ToRetire, 1)
	assert.Equal(t, "b", diff.ToRetire[0].ID)
	require.Len(t, diff.Unchanged, 1)
	assert.Equal(t, "a", diff.Unchanged[0].ID)
}

func TestReconcile_ShortenedRuleRetires(t *testing.T) {
	// end_date moved earlier than an already-published instance.
	occurrences := []recurrence.Occurrence{
		occ("2025-03-04", 18),
		occ("2025-03-11", 18),
	}
	existing := []EventInstance{
		inst("a", "2025-03-04", StatusPublished, false),
		inst("b", "2025-03-11", StatusPublished, false),
		inst("c", "2025-03-18", StatusPublished, false),
	}

	diff := Reconcile(occurrences, existing)
	assert.Empty(t, diff.ToCreate)
	require.Len(t, diff.ToRetire, 1)
	assert.Equal(t, "c", diff.ToRetire[0].ID)
	assert.Len(t, diff.Unchanged, 2)
}

func TestReconcile_CancelledDateStaysCancelled(t *testing.T) {
	// One session was cancelled by the review workflow; regeneration must
	// not resurrect it.
	occurrences := []recurrence.Occurrence{
		occ("2025-03-04", 18),
		occ("2025-03-11", 18),
	}
	existing := []EventInstance{
		inst("a", "2025-03-04", StatusCancelled, false),
	}

	diff := Reconcile(occurrences, existing)
	require.Len(t, diff.ToCreate, 1)
	assert.Equal(t, "2025-03-11", diff.ToCreate[0].InstanceDate)
	assert.Empty(t, diff.ToRetire)
	require.Len(t, diff.Unchanged, 1)
	assert.Equal(t, "a", diff.Unchanged[0].ID)
}

func TestReconcile_MixedDiff(t *testing.T) {
	occurrences := []recurrence.Occurrence{
		occ("2025-03-04", 18),
		occ("2025-03-11", 18),
		occ("2025-03-18", 18),
	}
	existing := []EventInstance{
		inst("keep", "2025-03-04", StatusPublished, false),
		inst("drop", "2025-02-25", StatusPublished, false),
		inst("override", "2025-03-11", StatusPublished, true),
	}

	diff := Reconcile(occurrences, existing)

	require.Len(t, diff.ToCreate, 1)
	assert.Equal(t, "2025-03-18", diff.ToCreate[0].InstanceDate)

	require.Len(t, diff.ToRetire, 1)
	assert.Equal(t, "drop", diff.ToRetire[0].ID)

	require.Len(t, diff.Unchanged, 2)
	assert.False(t, diff.Empty())
}

func TestReconcile_Deterministic(t *testing.T) {
	occurrences := []recurrence.Occurrence{
		occ("2025-03-18", 18),
		occ("2025-03-04", 18),
		occ("2025-03-11", 18),
	}
	existing := []EventInstance{
		inst("b", "2025-02-25", StatusPublished, false),
		inst("a", "2025-02-18", StatusPublished, false),
	}

	first := Reconcile(occurrences, existing)
	second := Reconcile(occurrences, existing)
	assert.Equal(t, first, second)

	// Output ordering is by date regardless of input order.
	assert.Equal(t, "2025-03-04", first.ToCreate[0].InstanceDate)
	assert.Equal(t, "a", first.ToRetire[0].ID)
}
