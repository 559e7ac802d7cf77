package db

import (
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/medrota/shiftswap/internal/model"
)

// MemStore is an in-memory Store used by tests and local development. A single
// mutex makes every operation, and every WithTx body, linearizable; WithTx
// works on a clone so a failed body leaves no partial writes behind.
type MemStore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	users    map[int]model.User
	entries  map[int]model.ScheduleEntry
	requests map[int]model.ExchangeRequest

	nextUserID    int
	nextEntryID   int
	nextRequestID int
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{state: memState{
		users:         map[int]model.User{},
		entries:       map[int]model.ScheduleEntry{},
		requests:      map[int]model.ExchangeRequest{},
		nextUserID:    1,
		nextEntryID:   1,
		nextRequestID: 1,
	}}
}

func (s memState) clone() memState {
	out := s
	out.users = make(map[int]model.User, len(s.users))
	for k, v := range s.users {
		out.users[k] = v
	}
	out.entries = make(map[int]model.ScheduleEntry, len(s.entries))
	for k, v := range s.entries {
		out.entries[k] = v
	}
	out.requests = make(map[int]model.ExchangeRequest, len(s.requests))
	for k, v := range s.requests {
		out.requests[k] = v
	}
	return out
}

func (m *MemStore) WithTx(fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := m.state.clone()
	if err := fn(&memTx{state: &clone}); err != nil {
		return err
	}
	m.state = clone
	return nil
}

// run executes fn against the live state under the store mutex.
func (m *MemStore) run(fn func(*memTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{state: &m.state})
}

// memTx is the unlocked view handed to WithTx bodies. Nested WithTx reuses
// the already-held lock.
type memTx struct {
	state *memState
}

var _ Store = (*memTx)(nil)

func (t *memTx) WithTx(fn func(Store) error) error { return fn(t) }

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dateIn(d, from, to time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	lo := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	hi := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(lo) && !day.After(hi)
}

// user functions

func (t *memTx) CreateUser(email, hashedPassword string, name *string, roles []model.Role) (int, error) {
	if len(roles) == 0 {
		roles = []model.Role{model.RoleUser}
	}
	roleStrings := make([]string, 0, len(roles))
	for _, r := range roles {
		roleStrings = append(roleStrings, string(r))
	}
	id := t.state.nextUserID
	t.state.nextUserID++
	now := time.Now()
	t.state.users[id] = model.User{
		ID:             id,
		Email:          email,
		HashedPassword: hashedPassword,
		Name:           name,
		Roles:          roleStrings,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return id, nil
}

func (t *memTx) GetUserByEmail(email string) (*model.User, error) {
	for _, u := range t.state.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *memTx) GetUserByID(id int) (*model.User, error) {
	u, ok := t.state.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (t *memTx) UpdateUserProfile(id int, email string, name *string) error {
	u, ok := t.state.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Email = email
	u.Name = name
	u.UpdatedAt = time.Now()
	t.state.users[id] = u
	return nil
}

// schedule entry functions

func (t *memTx) CreateScheduleEntry(e model.ScheduleEntry) (model.ScheduleEntry, error) {
	e.ID = t.state.nextEntryID
	t.state.nextEntryID++
	e.Exchanged = false
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	t.state.entries[e.ID] = e
	return e, nil
}

func (t *memTx) GetScheduleEntry(id int) (model.ScheduleEntry, error) {
	e, ok := t.state.entries[id]
	if !ok {
		return model.ScheduleEntry{}, sql.ErrNoRows
	}
	return e, nil
}

func (t *memTx) GetScheduleEntryForUpdate(id int) (model.ScheduleEntry, error) {
	return t.GetScheduleEntry(id)
}

func (t *memTx) UpdateScheduleEntry(e model.ScheduleEntry) error {
	stored, ok := t.state.entries[e.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Date = e.Date
	stored.Start = e.Start
	stored.End = e.End
	stored.EndNextDay = e.EndNextDay
	stored.Type = e.Type
	stored.Available = e.Available
	stored.Note = e.Note
	stored.UpdatedAt = time.Now()
	t.state.entries[e.ID] = stored
	return nil
}

func (t *memTx) UpdateScheduleOwner(entryID, newOwnerID int) error {
	stored, ok := t.state.entries[entryID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.WorkerID = newOwnerID
	stored.Exchanged = true
	stored.UpdatedAt = time.Now()
	t.state.entries[entryID] = stored
	return nil
}

func (t *memTx) DeleteScheduleEntry(id int) error {
	if _, ok := t.state.entries[id]; !ok {
		return sql.ErrNoRows
	}
	delete(t.state.entries, id)
	return nil
}

func (t *memTx) filterEntries(keep func(model.ScheduleEntry) bool) []model.ScheduleEntry {
	out := []model.ScheduleEntry{}
	for _, e := range t.state.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !sameDate(out[i].Date, out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (t *memTx) ListEntriesByWorker(workerID int) ([]model.ScheduleEntry, error) {
	return t.filterEntries(func(e model.ScheduleEntry) bool {
		return e.WorkerID == workerID
	}), nil
}

func (t *memTx) ListEntriesByWorkerAndDate(workerID int, date time.Time) ([]model.ScheduleEntry, error) {
	return t.filterEntries(func(e model.ScheduleEntry) bool {
		return e.WorkerID == workerID && sameDate(e.Date, date)
	}), nil
}

func (t *memTx) ListEntriesByWorkerAndDateRange(workerID int, from, to time.Time) ([]model.ScheduleEntry, error) {
	return t.filterEntries(func(e model.ScheduleEntry) bool {
		return e.WorkerID == workerID && dateIn(e.Date, from, to)
	}), nil
}

func (t *memTx) ListEntriesByDate(date time.Time) ([]model.ScheduleEntry, error) {
	return t.filterEntries(func(e model.ScheduleEntry) bool {
		return sameDate(e.Date, date)
	}), nil
}

func (t *memTx) ListEntriesByDateRange(from, to time.Time) ([]model.ScheduleEntry, error) {
	return t.filterEntries(func(e model.ScheduleEntry) bool {
		return dateIn(e.Date, from, to)
	}), nil
}

func (t *memTx) ListAvailableEntries(excludeWorkerID int, from, to *time.Time) ([]model.ScheduleEntry, error) {
	return t.filterEntries(func(e model.ScheduleEntry) bool {
		if !e.Available || e.WorkerID == excludeWorkerID {
			return false
		}
		if from != nil && to != nil {
			return dateIn(e.Date, *from, *to)
		}
		return true
	}), nil
}

func (t *memTx) ListAvailableEntriesByRoleAndDate(role model.Role, date time.Time) ([]model.ScheduleEntry, error) {
	return t.filterEntries(func(e model.ScheduleEntry) bool {
		if !e.Available || !sameDate(e.Date, date) {
			return false
		}
		owner, ok := t.state.users[e.WorkerID]
		if !ok {
			return false
		}
		return owner.HasRole(role) || owner.HasRole(model.RoleUser)
	}), nil
}

// exchange request functions

func (t *memTx) CreateExchangeRequest(r model.ExchangeRequest) (model.ExchangeRequest, error) {
	r.ID = t.state.nextRequestID
	t.state.nextRequestID++
	r.CreatedAt = time.Now()
	r.RespondedAt = nil
	t.state.requests[r.ID] = r
	return r, nil
}

func (t *memTx) GetExchangeRequest(id int) (model.ExchangeRequest, error) {
	r, ok := t.state.requests[id]
	if !ok {
		return model.ExchangeRequest{}, sql.ErrNoRows
	}
	return r, nil
}

func (t *memTx) GetExchangeRequestForUpdate(id int) (model.ExchangeRequest, error) {
	return t.GetExchangeRequest(id)
}

func (t *memTx) UpdateExchangeRequestState(id int, state model.RequestState, respondedAt time.Time) error {
	r, ok := t.state.requests[id]
	if !ok || r.State != model.StatePending {
		return sql.ErrNoRows
	}
	r.State = state
	r.RespondedAt = &respondedAt
	t.state.requests[id] = r
	return nil
}

func (t *memTx) filterRequests(keep func(model.ExchangeRequest) bool) []model.ExchangeRequest {
	out := []model.ExchangeRequest{}
	for _, r := range t.state.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (t *memTx) ListRequestsByRequester(workerID int) ([]model.ExchangeRequest, error) {
	return t.filterRequests(func(r model.ExchangeRequest) bool {
		return r.RequesterID == workerID
	}), nil
}

func (t *memTx) ListRequestsByRecipient(workerID int) ([]model.ExchangeRequest, error) {
	return t.filterRequests(func(r model.ExchangeRequest) bool {
		return r.RecipientID != nil && *r.RecipientID == workerID
	}), nil
}

func (t *memTx) ListRequestsByState(state model.RequestState) ([]model.ExchangeRequest, error) {
	return t.filterRequests(func(r model.ExchangeRequest) bool {
		return r.State == state
	}), nil
}

func (t *memTx) ListRequestsByRequesterAndState(workerID int, state model.RequestState) ([]model.ExchangeRequest, error) {
	return t.filterRequests(func(r model.ExchangeRequest) bool {
		return r.RequesterID == workerID && r.State == state
	}), nil
}

func (t *memTx) ListRequestsByRecipientAndState(workerID int, state model.RequestState) ([]model.ExchangeRequest, error) {
	return t.filterRequests(func(r model.ExchangeRequest) bool {
		return r.RecipientID != nil && *r.RecipientID == workerID && r.State == state
	}), nil
}

func (t *memTx) ListRequestsByRequesterCreatedAfter(workerID int, after time.Time) ([]model.ExchangeRequest, error) {
	return t.filterRequests(func(r model.ExchangeRequest) bool {
		return r.RequesterID == workerID && !r.CreatedAt.Before(after)
	}), nil
}

func (t *memTx) ListRequestsByEntry(entryID int) ([]model.ExchangeRequest, error) {
	return t.filterRequests(func(r model.ExchangeRequest) bool {
		return r.OriginID == entryID || (r.DestinationID != nil && *r.DestinationID == entryID)
	}), nil
}

// Locking wrappers. Every standalone call takes the store mutex for its
// duration, matching the per-statement atomicity of the Postgres store.

func (m *MemStore) CreateUser(email, hashedPassword string, name *string, roles []model.Role) (id int, err error) {
	err = m.run(func(t *memTx) error { id, err = t.CreateUser(email, hashedPassword, name, roles); return err })
	return
}

func (m *MemStore) GetUserByEmail(email string) (u *model.User, err error) {
	err = m.run(func(t *memTx) error { u, err = t.GetUserByEmail(email); return err })
	return
}

func (m *MemStore) GetUserByID(id int) (u *model.User, err error) {
	err = m.run(func(t *memTx) error { u, err = t.GetUserByID(id); return err })
	return
}

func (m *MemStore) UpdateUserProfile(id int, email string, name *string) error {
	return m.run(func(t *memTx) error { return t.UpdateUserProfile(id, email, name) })
}

func (m *MemStore) CreateScheduleEntry(e model.ScheduleEntry) (out model.ScheduleEntry, err error) {
	err = m.run(func(t *memTx) error { out, err = t.CreateScheduleEntry(e); return err })
	return
}

func (m *MemStore) GetScheduleEntry(id int) (e model.ScheduleEntry, err error) {
	err = m.run(func(t *memTx) error { e, err = t.GetScheduleEntry(id); return err })
	return
}

func (m *MemStore) GetScheduleEntryForUpdate(id int) (e model.ScheduleEntry, err error) {
	err = m.run(func(t *memTx) error { e, err = t.GetScheduleEntryForUpdate(id); return err })
	return
}

func (m *MemStore) UpdateScheduleEntry(e model.ScheduleEntry) error {
	return m.run(func(t *memTx) error { return t.UpdateScheduleEntry(e) })
}

func (m *MemStore) UpdateScheduleOwner(entryID, newOwnerID int) error {
	return m.run(func(t *memTx) error { return t.UpdateScheduleOwner(entryID, newOwnerID) })
}

func (m *MemStore) DeleteScheduleEntry(id int) error {
	return m.run(func(t *memTx) error { return t.DeleteScheduleEntry(id) })
}

func (m *MemStore) ListEntriesByWorker(workerID int) (out []model.ScheduleEntry, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListEntriesByWorker(workerID); return err })
	return
}

func (m *MemStore) ListEntriesByWorkerAndDate(workerID int, date time.Time) (out []model.ScheduleEntry, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListEntriesByWorkerAndDate(workerID, date); return err })
	return
}

func (m *MemStore) ListEntriesByWorkerAndDateRange(workerID int, from, to time.Time) (out []model.ScheduleEntry, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListEntriesByWorkerAndDateRange(workerID, from, to); return err })
	return
}

func (m *MemStore) ListEntriesByDate(date time.Time) (out []model.ScheduleEntry, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListEntriesByDate(date); return err })
	return
}

func (m *MemStore) ListEntriesByDateRange(from, to time.Time) (out []model.ScheduleEntry, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListEntriesByDateRange(from, to); return err })
	return
}

func (m *MemStore) ListAvailableEntries(excludeWorkerID int, from, to *time.Time) (out []model.ScheduleEntry, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListAvailableEntries(excludeWorkerID, from, to); return err })
	return
}

func (m *MemStore) ListAvailableEntriesByRoleAndDate(role model.Role, date time.Time) (out []model.ScheduleEntry, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListAvailableEntriesByRoleAndDate(role, date); return err })
	return
}

func (m *MemStore) CreateExchangeRequest(r model.ExchangeRequest) (out model.ExchangeRequest, err error) {
	err = m.run(func(t *memTx) error { out, err = t.CreateExchangeRequest(r); return err })
	return
}

func (m *MemStore) GetExchangeRequest(id int) (r model.ExchangeRequest, err error) {
	err = m.run(func(t *memTx) error { r, err = t.GetExchangeRequest(id); return err })
	return
}

func (m *MemStore) GetExchangeRequestForUpdate(id int) (r model.ExchangeRequest, err error) {
	err = m.run(func(t *memTx) error { r, err = t.GetExchangeRequestForUpdate(id); return err })
	return
}

func (m *MemStore) UpdateExchangeRequestState(id int, state model.RequestState, respondedAt time.Time) error {
	return m.run(func(t *memTx) error { return t.UpdateExchangeRequestState(id, state, respondedAt) })
}

func (m *MemStore) ListRequestsByRequester(workerID int) (out []model.ExchangeRequest, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListRequestsByRequester(workerID); return err })
	return
}

func (m *MemStore) ListRequestsByRecipient(workerID int) (out []model.ExchangeRequest, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListRequestsByRecipient(workerID); return err })
	return
}

func (m *MemStore) ListRequestsByState(state model.RequestState) (out []model.ExchangeRequest, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListRequestsByState(state); return err })
	return
}

func (m *MemStore) ListRequestsByRequesterAndState(workerID int, state model.RequestState) (out []model.ExchangeRequest, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListRequestsByRequesterAndState(workerID, state); return err })
	return
}

func (m *MemStore) ListRequestsByRecipientAndState(workerID int, state model.RequestState) (out []model.ExchangeRequest, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListRequestsByRecipientAndState(workerID, state); return err })
	return
}

func (m *MemStore) ListRequestsByRequesterCreatedAfter(workerID int, after time.Time) (out []model.ExchangeRequest, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListRequestsByRequesterCreatedAfter(workerID, after); return err })
	return
}

func (m *MemStore) ListRequestsByEntry(entryID int) (out []model.ExchangeRequest, err error) {
	err = m.run(func(t *memTx) error { out, err = t.ListRequestsByEntry(entryID); return err })
	return
}
