package model

import "time"

// ShiftType is the closed set of shift categories.
type ShiftType string

const (
	ShiftMorning   ShiftType = "morning"
	ShiftAfternoon ShiftType = "afternoon"
	ShiftNight     ShiftType = "night"
	ShiftFull      ShiftType = "full"
	ShiftOther     ShiftType = "other"
)

var allShiftTypes = map[ShiftType]bool{
	ShiftMorning:   true,
	ShiftAfternoon: true,
	ShiftNight:     true,
	ShiftFull:      true,
	ShiftOther:     true,
}

func ValidShiftType(t ShiftType) bool { return allShiftTypes[t] }

// ScheduleEntry is one worker's assignment to a shift on a specific date.
type ScheduleEntry struct {
	ID         int       `db:"id" json:"id"`
	WorkerID   int       `db:"worker_id" json:"worker_id"`
	Date       time.Time `db:"shift_date" json:"date"`
	Start      TimeOfDay `db:"start_min" json:"start"`
	End        TimeOfDay `db:"end_min" json:"end"`
	EndNextDay bool      `db:"end_next_day" json:"end_next_day"`
	Type       ShiftType `db:"shift_type" json:"shift_type"`
	Available  bool      `db:"available" json:"available"`
	Exchanged  bool      `db:"exchanged" json:"exchanged"`
	Note       string    `db:"note" json:"note,omitempty"`
	Role       Role      `db:"role" json:"role"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// EffectiveEnd is the end time used for validation and overlap checks. A
// shift that rolls into the next day reads as its clock end plus 24h; the
// entry itself stays on a single date row.
func (e *ScheduleEntry) EffectiveEnd() TimeOfDay {
	if e.EndNextDay {
		return e.End + MinutesPerDay
	}
	return e.End
}
