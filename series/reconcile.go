package series

import (
	"sort"

	"github.com/townbeat/eventseries/recurrence"
)

// Reconcile diffs freshly generated occurrences against the instances already
// materialized for the series. Matching is by calendar date, never by exact
// timestamp or sequence number.
//
// Manual overrides win over regeneration: an override claims its date, so the
// generated occurrence for that date is suppressed rather than double-booked,
// and the override itself is never retired even when the rule no longer
// implies its date. Instances that are already cancelled likewise stay in
// Unchanged; retiring them again would only churn the persistence layer.
//
// Reconcile is pure and deterministic: output slices are sorted by date, so
// identical inputs produce byte-identical diffs.
func Reconcile(occurrences []recurrence.Occurrence, existing []EventInstance) Diff {
	var diff Diff

	generated := make(map[string]bool, len(occurrences))
	for _, occ := range occurrences {
		generated[occ.InstanceDate] = true
	}

	// Dates that already carry an instance, whether a regular match or an
	// override claim. Occurrences on these dates must not be recreated.
	taken := make(map[string]bool, len(existing))

	for _, inst := range existing {
		switch {
		case inst.IsManualOverride:
			taken[inst.InstanceDate] = true
			diff.Unchanged = append(diff.Unchanged, inst)
		case inst.Status == StatusCancelled:
			// A cancelled instance is a deliberate exception; regeneration
			// must not resurrect its date.
			taken[inst.InstanceDate] = true
			diff.Unchanged = append(diff.Unchanged, inst)
		case generated[inst.InstanceDate]:
			taken[inst.InstanceDate] = true
			diff.Unchanged = append(diff.Unchanged, inst)
		default:
			diff.ToRetire = append(diff.ToRetire, inst)
		}
	}

	for _, occ := range occurrences {
		if !taken[occ.InstanceDate] {
			diff.ToCreate = append(diff.ToCreate, occ)
			taken[occ.InstanceDate] = true
		}
	}

	sort.Slice(diff.ToCreate, func(i, j int) bool {
		return diff.ToCreate[i].Start.Before(diff.ToCreate[j].Start)
	})
	sortInstances(diff.ToRetire)
	sortInstances(diff.Unchanged)
	return diff
}

func sortInstances(instances []EventInstance) {
	sort.Slice(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
		if a.InstanceDate != b.InstanceDate {
			return a.InstanceDate < b.InstanceDate
		}
		return a.ID < b.ID
	})
}
