// exposes a Store interface that is passed to services w/ param requirements
package db

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medrota/shiftswap/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string, roles []model.Role) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// schedule entry functions
	CreateScheduleEntry(e model.ScheduleEntry) (model.ScheduleEntry, error)
	GetScheduleEntry(id int) (model.ScheduleEntry, error)
	// GetScheduleEntryForUpdate takes a row lock when called inside WithTx.
	GetScheduleEntryForUpdate(id int) (model.ScheduleEntry, error)
	UpdateScheduleEntry(e model.ScheduleEntry) error
	// UpdateScheduleOwner reassigns ownership and marks the entry exchanged;
	// the only write path allowed to touch worker_id after creation.
	UpdateScheduleOwner(entryID, newOwnerID int) error
	DeleteScheduleEntry(id int) error
	ListEntriesByWorker(workerID int) ([]model.ScheduleEntry, error)
	ListEntriesByWorkerAndDate(workerID int, date time.Time) ([]model.ScheduleEntry, error)
	ListEntriesByWorkerAndDateRange(workerID int, from, to time.Time) ([]model.ScheduleEntry, error)
	ListEntriesByDate(date time.Time) ([]model.ScheduleEntry, error)
	ListEntriesByDateRange(from, to time.Time) ([]model.ScheduleEntry, error)
	ListAvailableEntries(excludeWorkerID int, from, to *time.Time) ([]model.ScheduleEntry, error)
	ListAvailableEntriesByRoleAndDate(role model.Role, date time.Time) ([]model.ScheduleEntry, error)

	// exchange request functions
	CreateExchangeRequest(r model.ExchangeRequest) (model.ExchangeRequest, error)
	GetExchangeRequest(id int) (model.ExchangeRequest, error)
	GetExchangeRequestForUpdate(id int) (model.ExchangeRequest, error)
	UpdateExchangeRequestState(id int, state model.RequestState, respondedAt time.Time) error
	ListRequestsByRequester(workerID int) ([]model.ExchangeRequest, error)
	ListRequestsByRecipient(workerID int) ([]model.ExchangeRequest, error)
	ListRequestsByState(state model.RequestState) ([]model.ExchangeRequest, error)
	ListRequestsByRequesterAndState(workerID int, state model.RequestState) ([]model.ExchangeRequest, error)
	ListRequestsByRecipientAndState(workerID int, state model.RequestState) ([]model.ExchangeRequest, error)
	ListRequestsByRequesterCreatedAfter(workerID int, after time.Time) ([]model.ExchangeRequest, error)
	ListRequestsByEntry(entryID int) ([]model.ExchangeRequest, error)

	// WithTx runs fn against a transactional view of the store. All reads via
	// the ForUpdate getters hold their row locks until fn returns; fn's writes
	// are applied atomically or not at all.
	WithTx(fn func(Store) error) error
}

type pgStore struct {
	db  *sqlx.DB
	ext sqlx.Ext
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(database *sqlx.DB) Store {
	if database == nil {
		database = DB
	}
	return &pgStore{db: database, ext: database}
}

func (s *pgStore) WithTx(fn func(Store) error) error {
	if s.db == nil {
		// already inside a transaction
		return fn(s)
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	txStore := &pgStore{ext: tx}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// requireRow turns a zero-row update/delete into sql.ErrNoRows so services
// can report NotFound.
func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
