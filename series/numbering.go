package series

import (
	"sort"
)

// Renumber assigns 1-based session numbers to a series' instances in
// chronological order. Cancelled instances keep no number; inserting a makeup
// session between two existing ones shifts everything after it.
//
// Renumber is idempotent and does not mutate its input: the returned slice is
// a fresh copy, sorted by instance date. Sequence numbers are display
// derivations only and must never serve as storage keys or matching keys.
func Renumber(instances []EventInstance) []EventInstance {
	out := make([]EventInstance, len(instances))
	copy(out, instances)

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.InstanceDate != b.InstanceDate {
			return a.InstanceDate < b.InstanceDate
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.ID < b.ID
	})

	seq := 0
	for i := range out {
		if out[i].Status == StatusCancelled {
			out[i].SeriesSequence = 0
			continue
		}
		seq++
		out[i].SeriesSequence = seq
	}
	return out
}
