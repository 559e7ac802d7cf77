package db

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/medrota/shiftswap/internal/model"
)

const scheduleColumns = `
	id, worker_id, shift_date, start_min, end_min, end_next_day,
	shift_type, available, exchanged, note, role, created_at, updated_at`

func (s *pgStore) CreateScheduleEntry(e model.ScheduleEntry) (model.ScheduleEntry, error) {
	var out model.ScheduleEntry
	query := `
	INSERT INTO schedule_entries
	  (worker_id, shift_date, start_min, end_min, end_next_day,
	   shift_type, available, exchanged, note, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $9, now(), now())
	RETURNING` + scheduleColumns + `;`
	err := sqlx.Get(s.ext, &out, query,
		e.WorkerID, e.Date, e.Start, e.End, e.EndNextDay,
		e.Type, e.Available, e.Note, e.Role)
	if err != nil {
		log.Error().Err(err).Int("worker_id", e.WorkerID).Msg("CreateScheduleEntry failed")
		return model.ScheduleEntry{}, err
	}
	return out, nil
}

func (s *pgStore) GetScheduleEntry(id int) (model.ScheduleEntry, error) {
	return s.getScheduleEntry(id, false)
}

func (s *pgStore) GetScheduleEntryForUpdate(id int) (model.ScheduleEntry, error) {
	return s.getScheduleEntry(id, true)
}

func (s *pgStore) getScheduleEntry(id int, forUpdate bool) (model.ScheduleEntry, error) {
	query := `SELECT` + scheduleColumns + ` FROM schedule_entries WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var e model.ScheduleEntry
	if err := sqlx.Get(s.ext, &e, query+`;`, id); err != nil {
		return model.ScheduleEntry{}, err
	}
	return e, nil
}

// UpdateScheduleEntry rewrites the caller-editable fields. Ownership and id
// never change through this path.
func (s *pgStore) UpdateScheduleEntry(e model.ScheduleEntry) error {
	query := `
	UPDATE schedule_entries
	SET shift_date = $2,
	    start_min = $3,
	    end_min = $4,
	    end_next_day = $5,
	    shift_type = $6,
	    available = $7,
	    note = $8,
	    updated_at = now()
	WHERE id = $1;`
	res, err := s.ext.Exec(query, e.ID, e.Date, e.Start, e.End, e.EndNextDay, e.Type, e.Available, e.Note)
	if err != nil {
		log.Error().Err(err).Int("entry_id", e.ID).Msg("UpdateScheduleEntry failed")
		return err
	}
	return requireRow(res)
}

func (s *pgStore) UpdateScheduleOwner(entryID, newOwnerID int) error {
	query := `
	UPDATE schedule_entries
	SET worker_id = $2,
	    exchanged = true,
	    updated_at = now()
	WHERE id = $1;`
	res, err := s.ext.Exec(query, entryID, newOwnerID)
	if err != nil {
		log.Error().Err(err).Int("entry_id", entryID).Msg("UpdateScheduleOwner failed")
		return err
	}
	return requireRow(res)
}

func (s *pgStore) DeleteScheduleEntry(id int) error {
	res, err := s.ext.Exec(`DELETE FROM schedule_entries WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("entry_id", id).Msg("DeleteScheduleEntry failed")
		return err
	}
	return requireRow(res)
}

func (s *pgStore) ListEntriesByWorker(workerID int) ([]model.ScheduleEntry, error) {
	return s.selectEntries(`
	SELECT`+scheduleColumns+`
	  FROM schedule_entries
	 WHERE worker_id = $1
	 ORDER BY shift_date, start_min;`, workerID)
}

func (s *pgStore) ListEntriesByWorkerAndDate(workerID int, date time.Time) ([]model.ScheduleEntry, error) {
	return s.selectEntries(`
	SELECT`+scheduleColumns+`
	  FROM schedule_entries
	 WHERE worker_id = $1 AND shift_date = $2
	 ORDER BY start_min;`, workerID, date)
}

func (s *pgStore) ListEntriesByWorkerAndDateRange(workerID int, from, to time.Time) ([]model.ScheduleEntry, error) {
	return s.selectEntries(`
	SELECT`+scheduleColumns+`
	  FROM schedule_entries
	 WHERE worker_id = $1 AND shift_date BETWEEN $2 AND $3
	 ORDER BY shift_date, start_min;`, workerID, from, to)
}

func (s *pgStore) ListEntriesByDate(date time.Time) ([]model.ScheduleEntry, error) {
	return s.selectEntries(`
	SELECT`+scheduleColumns+`
	  FROM schedule_entries
	 WHERE shift_date = $1
	 ORDER BY start_min;`, date)
}

func (s *pgStore) ListEntriesByDateRange(from, to time.Time) ([]model.ScheduleEntry, error) {
	return s.selectEntries(`
	SELECT`+scheduleColumns+`
	  FROM schedule_entries
	 WHERE shift_date BETWEEN $1 AND $2
	 ORDER BY shift_date, start_min;`, from, to)
}

// ListAvailableEntries returns the marketplace excluding the caller's own
// entries, optionally bounded to a date range.
func (s *pgStore) ListAvailableEntries(excludeWorkerID int, from, to *time.Time) ([]model.ScheduleEntry, error) {
	if from != nil && to != nil {
		return s.selectEntries(`
		SELECT`+scheduleColumns+`
		  FROM schedule_entries
		 WHERE available = true AND worker_id <> $1 AND shift_date BETWEEN $2 AND $3
		 ORDER BY shift_date, start_min;`, excludeWorkerID, *from, *to)
	}
	return s.selectEntries(`
	SELECT`+scheduleColumns+`
	  FROM schedule_entries
	 WHERE available = true AND worker_id <> $1
	 ORDER BY shift_date, start_min;`, excludeWorkerID)
}

// ListAvailableEntriesByRoleAndDate matches the owner's role set against the
// requested role; workers carrying only the fallback role always match.
func (s *pgStore) ListAvailableEntriesByRoleAndDate(role model.Role, date time.Time) ([]model.ScheduleEntry, error) {
	return s.selectEntries(`
	SELECT e.id, e.worker_id, e.shift_date, e.start_min, e.end_min, e.end_next_day,
	       e.shift_type, e.available, e.exchanged, e.note, e.role, e.created_at, e.updated_at
	  FROM schedule_entries e
	  JOIN users u ON u.id = e.worker_id
	 WHERE e.available = true
	   AND e.shift_date = $2
	   AND (u.roles @> ARRAY[$1]::text[] OR u.roles @> ARRAY['user']::text[])
	 ORDER BY e.start_min;`, string(role), date)
}

func (s *pgStore) selectEntries(query string, args ...any) ([]model.ScheduleEntry, error) {
	out := []model.ScheduleEntry{}
	if err := sqlx.Select(s.ext, &out, query, args...); err != nil {
		log.Error().Err(err).Msg("schedule entry query failed")
		return nil, err
	}
	return out, nil
}
