package schedule

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medrota/shiftswap/internal/apperr"
	"github.com/medrota/shiftswap/internal/cache"
	"github.com/medrota/shiftswap/internal/db"
	"github.com/medrota/shiftswap/internal/model"
)

const maxNoteLength = 500

// Manager owns the schedule entry lifecycle: validated writes plus the
// availability and conflict queries the exchange workflow builds on.
type Manager struct {
	store       db.Store
	marketplace *cache.Marketplace
}

func NewManager(store db.Store, marketplace *cache.Marketplace) *Manager {
	return &Manager{store: store, marketplace: marketplace}
}

// CreateEntryInput carries caller-supplied fields for a new entry. Start and
// End are pointers so "missing" and "00:00" stay distinguishable.
type CreateEntryInput struct {
	WorkerID   int
	Date       time.Time
	Start      *model.TimeOfDay
	End        *model.TimeOfDay
	EndNextDay bool
	Type       model.ShiftType
	Available  bool
	Note       string
}

// Create validates and persists a new entry published under requestedRole.
// Conflict checking is deliberately not part of this path; callers opt in
// through FindConflicts.
func (m *Manager) Create(in CreateEntryInput, requestedRole string) (model.ScheduleEntry, error) {
	if in.Date.IsZero() {
		return model.ScheduleEntry{}, apperr.Validation("date is required")
	}
	if in.Start == nil || in.End == nil {
		return model.ScheduleEntry{}, apperr.Validation("start and end times are required")
	}
	entry := model.ScheduleEntry{
		WorkerID:   in.WorkerID,
		Date:       normalizeDate(in.Date),
		Start:      *in.Start,
		End:        *in.End,
		EndNextDay: in.EndNextDay,
		Type:       in.Type,
		Available:  in.Available,
		Note:       in.Note,
	}
	if entry.EffectiveEnd() <= entry.Start {
		return model.ScheduleEntry{}, apperr.Validation("end time must be after start time")
	}
	if entry.Type == "" {
		entry.Type = model.ShiftOther
	}
	if !model.ValidShiftType(entry.Type) {
		return model.ScheduleEntry{}, apperr.Validation("unknown shift type %q", entry.Type)
	}
	if len(entry.Note) > maxNoteLength {
		return model.ScheduleEntry{}, apperr.Validation("note exceeds %d characters", maxNoteLength)
	}

	role, err := model.ParseRole(requestedRole)
	if err != nil {
		return model.ScheduleEntry{}, apperr.Validation("invalid role: allowed roles are doctor, nurse, assistant")
	}
	if !role.ExchangeEligible() {
		return model.ScheduleEntry{}, apperr.Validation("role %s is not allowed: allowed roles are doctor, nurse, assistant", role)
	}
	entry.Role = role

	if _, err := m.store.GetUserByID(entry.WorkerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ScheduleEntry{}, apperr.NotFound("worker %d not found", entry.WorkerID)
		}
		return model.ScheduleEntry{}, err
	}

	created, err := m.store.CreateScheduleEntry(entry)
	if err != nil {
		return model.ScheduleEntry{}, err
	}
	m.marketplace.InvalidateDate(context.Background(), created.Date)
	log.Info().Int("entry_id", created.ID).Int("worker_id", created.WorkerID).Msg("schedule entry created")
	return created, nil
}

// UpdateEntryInput carries the caller-editable fields of an existing entry.
// Ownership and id are not mutable through this path.
type UpdateEntryInput struct {
	Date       time.Time
	Start      *model.TimeOfDay
	End        *model.TimeOfDay
	EndNextDay bool
	Type       model.ShiftType
	Available  bool
	Note       string
}

func (m *Manager) Update(entryID int, in UpdateEntryInput) (model.ScheduleEntry, error) {
	stored, err := m.Get(entryID)
	if err != nil {
		return model.ScheduleEntry{}, err
	}
	if in.Date.IsZero() {
		return model.ScheduleEntry{}, apperr.Validation("date is required")
	}
	if in.Start == nil || in.End == nil {
		return model.ScheduleEntry{}, apperr.Validation("start and end times are required")
	}
	if len(in.Note) > maxNoteLength {
		return model.ScheduleEntry{}, apperr.Validation("note exceeds %d characters", maxNoteLength)
	}
	if in.Type != "" && !model.ValidShiftType(in.Type) {
		return model.ScheduleEntry{}, apperr.Validation("unknown shift type %q", in.Type)
	}

	previousDate := stored.Date
	stored.Date = normalizeDate(in.Date)
	stored.Start = *in.Start
	stored.End = *in.End
	stored.EndNextDay = in.EndNextDay
	if in.Type != "" {
		stored.Type = in.Type
	}
	stored.Available = in.Available
	stored.Note = in.Note
	if stored.EffectiveEnd() <= stored.Start {
		return model.ScheduleEntry{}, apperr.Validation("end time must be after start time")
	}

	if err := m.store.UpdateScheduleEntry(stored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ScheduleEntry{}, apperr.NotFound("schedule entry %d not found", entryID)
		}
		return model.ScheduleEntry{}, err
	}
	m.marketplace.InvalidateDate(context.Background(), previousDate)
	m.marketplace.InvalidateDate(context.Background(), stored.Date)
	return m.Get(entryID)
}

func (m *Manager) Delete(entryID int) error {
	stored, err := m.Get(entryID)
	if err != nil {
		return err
	}
	if err := m.store.DeleteScheduleEntry(entryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("schedule entry %d not found", entryID)
		}
		return err
	}
	m.marketplace.InvalidateDate(context.Background(), stored.Date)
	return nil
}

// SetAvailability flips the marketplace flag on an entry.
func (m *Manager) SetAvailability(entryID int, available bool) (model.ScheduleEntry, error) {
	stored, err := m.Get(entryID)
	if err != nil {
		return model.ScheduleEntry{}, err
	}
	stored.Available = available
	if err := m.store.UpdateScheduleEntry(stored); err != nil {
		return model.ScheduleEntry{}, err
	}
	m.marketplace.InvalidateDate(context.Background(), stored.Date)
	return m.Get(entryID)
}

func (m *Manager) Get(entryID int) (model.ScheduleEntry, error) {
	entry, err := m.store.GetScheduleEntry(entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ScheduleEntry{}, apperr.NotFound("schedule entry %d not found", entryID)
		}
		return model.ScheduleEntry{}, err
	}
	return entry, nil
}

// VerifyOwner fails with Forbidden unless the entry currently belongs to
// workerID. Every mutating endpoint other than creation calls this first.
func (m *Manager) VerifyOwner(entryID, workerID int) error {
	entry, err := m.Get(entryID)
	if err != nil {
		return err
	}
	if entry.WorkerID != workerID {
		return apperr.Forbidden("schedule entry %d does not belong to worker %d", entryID, workerID)
	}
	return nil
}

// FindConflicts returns the worker's entries on date whose [start, end)
// windows overlap the candidate window.
func (m *Manager) FindConflicts(workerID int, date time.Time, start, end model.TimeOfDay) ([]model.ScheduleEntry, error) {
	if end <= start {
		return nil, apperr.Validation("end time must be after start time")
	}
	entries, err := m.store.ListEntriesByWorkerAndDate(workerID, normalizeDate(date))
	if err != nil {
		return nil, err
	}
	return FilterConflicts(entries, start, end), nil
}

func (m *Manager) EntriesForWorker(workerID int) ([]model.ScheduleEntry, error) {
	if _, err := m.resolveWorker(workerID); err != nil {
		return nil, err
	}
	return m.store.ListEntriesByWorker(workerID)
}

func (m *Manager) EntriesForWorkerInRange(workerID int, from, to time.Time) ([]model.ScheduleEntry, error) {
	if to.Before(from) {
		return nil, apperr.Validation("end date cannot be before start date")
	}
	if _, err := m.resolveWorker(workerID); err != nil {
		return nil, err
	}
	return m.store.ListEntriesByWorkerAndDateRange(workerID, normalizeDate(from), normalizeDate(to))
}

func (m *Manager) EntriesForDate(date time.Time) ([]model.ScheduleEntry, error) {
	return m.store.ListEntriesByDate(normalizeDate(date))
}

func (m *Manager) EntriesInRange(from, to time.Time) ([]model.ScheduleEntry, error) {
	if to.Before(from) {
		return nil, apperr.Validation("end date cannot be before start date")
	}
	return m.store.ListEntriesByDateRange(normalizeDate(from), normalizeDate(to))
}

// AvailableForWorker lists the marketplace from a worker's point of view:
// everyone else's available entries, optionally bounded by a date range.
func (m *Manager) AvailableForWorker(workerID int, from, to *time.Time) ([]model.ScheduleEntry, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperr.Validation("end date cannot be before start date")
	}
	var lo, hi *time.Time
	if from != nil && to != nil {
		l, h := normalizeDate(*from), normalizeDate(*to)
		lo, hi = &l, &h
	}
	return m.store.ListAvailableEntries(workerID, lo, hi)
}

// AvailableByRoleAndDate populates the exchange marketplace for one role and
// day. Owners whose role set contains only the fallback role always match.
func (m *Manager) AvailableByRoleAndDate(requestedRole string, date time.Time) ([]model.ScheduleEntry, error) {
	if requestedRole == "" {
		return nil, apperr.Validation("role is required")
	}
	role, err := model.ParseRole(requestedRole)
	if err != nil {
		return nil, apperr.Validation("invalid role %q", requestedRole)
	}
	day := normalizeDate(date)

	ctx := context.Background()
	if cached, ok := m.marketplace.Get(ctx, role, day); ok {
		return cached, nil
	}
	entries, err := m.store.ListAvailableEntriesByRoleAndDate(role, day)
	if err != nil {
		return nil, err
	}
	m.marketplace.Set(ctx, role, day, entries)
	return entries, nil
}

func (m *Manager) resolveWorker(workerID int) (*model.User, error) {
	u, err := m.store.GetUserByID(workerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("worker %d not found", workerID)
		}
		return nil, err
	}
	return u, nil
}

func normalizeDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
