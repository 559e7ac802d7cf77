package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medrota/shiftswap/internal/model"
)

func at(hhmm string) model.TimeOfDay {
	t, err := model.ParseTimeOfDay(hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlapsHalfOpen(t *testing.T) {
	// existing shift 09:00-17:00
	a, b := at("09:00"), at("17:00")

	assert.True(t, Overlaps(a, b, at("16:00"), at("18:00")), "partial overlap at tail")
	assert.True(t, Overlaps(a, b, at("08:00"), at("10:00")), "partial overlap at head")
	assert.True(t, Overlaps(a, b, at("10:00"), at("12:00")), "fully contained")
	assert.True(t, Overlaps(a, b, at("08:00"), at("18:00")), "fully containing")

	// half-open boundaries touch without conflict
	assert.False(t, Overlaps(a, b, at("17:00"), at("18:00")), "starts at existing end")
	assert.False(t, Overlaps(a, b, at("08:00"), at("09:00")), "ends at existing start")

	// symmetry
	assert.Equal(t,
		Overlaps(a, b, at("16:00"), at("18:00")),
		Overlaps(at("16:00"), at("18:00"), a, b))
}

func TestConflictsWithNextDayRollover(t *testing.T) {
	night := model.ScheduleEntry{Start: at("23:00"), End: at("07:00"), EndNextDay: true}

	assert.True(t, ConflictsWith(night, at("23:30"), at("23:45")))
	assert.False(t, ConflictsWith(night, at("08:00"), at("12:00")))
}

func TestFilterConflicts(t *testing.T) {
	entries := []model.ScheduleEntry{
		{ID: 1, Start: at("09:00"), End: at("17:00")},
		{ID: 2, Start: at("17:00"), End: at("22:00")},
	}
	hits := FilterConflicts(entries, at("16:00"), at("18:00"))
	if assert.Len(t, hits, 2) {
		assert.Equal(t, 1, hits[0].ID)
		assert.Equal(t, 2, hits[1].ID)
	}

	assert.Empty(t, FilterConflicts(entries, at("22:00"), at("23:00")))
}
