package schedule

import "github.com/medrota/shiftswap/internal/model"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. This predicate is the single source of truth for
// double booking: shifts that merely touch at a boundary do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd model.TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// ConflictsWith reports whether a candidate [start, end) window collides with
// an existing entry. Next-day rollover is folded into the entry's effective
// end; both windows are evaluated on the entry's date.
func ConflictsWith(e model.ScheduleEntry, start, end model.TimeOfDay) bool {
	return Overlaps(e.Start, e.EffectiveEnd(), start, end)
}

// FilterConflicts narrows entries down to those overlapping [start, end).
func FilterConflicts(entries []model.ScheduleEntry, start, end model.TimeOfDay) []model.ScheduleEntry {
	out := []model.ScheduleEntry{}
	for _, e := range entries {
		if ConflictsWith(e, start, end) {
			out = append(out, e)
		}
	}
	return out
}
