package exchange

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrota/shiftswap/internal/apperr"
	"github.com/medrota/shiftswap/internal/db"
	"github.com/medrota/shiftswap/internal/model"
	"github.com/medrota/shiftswap/internal/schedule"
)

type fixture struct {
	workflow  *Workflow
	store     *db.MemStore
	schedules *schedule.Manager

	requester   int
	recipient   int
	origin      model.ScheduleEntry
	destination model.ScheduleEntry
}

// newFixture seeds two nurses with one entry each: the requester's shift on
// June 10 and the recipient's available shift on June 11.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := db.NewMemStore()
	schedules := schedule.NewManager(store, nil)
	f := &fixture{
		workflow:  NewWorkflow(store, schedules, nil, nil),
		store:     store,
		schedules: schedules,
	}

	var err error
	f.requester, err = store.CreateUser("requester@example.com", "hashed", nil, []model.Role{model.RoleNurse})
	require.NoError(t, err)
	f.recipient, err = store.CreateUser("recipient@example.com", "hashed", nil, []model.Role{model.RoleNurse})
	require.NoError(t, err)

	f.origin = f.seedEntry(t, f.requester, 10, false)
	f.destination = f.seedEntry(t, f.recipient, 11, true)
	return f
}

func (f *fixture) seedEntry(t *testing.T, workerID, day int, available bool) model.ScheduleEntry {
	t.Helper()
	start, end := model.TimeOfDay(9*60), model.TimeOfDay(17*60)
	entry, err := f.schedules.Create(schedule.CreateEntryInput{
		WorkerID:  workerID,
		Date:      time.Date(2024, time.June, day, 0, 0, 0, 0, time.UTC),
		Start:     &start,
		End:       &end,
		Type:      model.ShiftMorning,
		Available: available,
	}, "nurse")
	require.NoError(t, err)
	return entry
}

func (f *fixture) createRequest(t *testing.T) model.ExchangeRequest {
	t.Helper()
	req, err := f.workflow.Create(f.requester, f.origin.ID, &f.destination.ID, "swap?")
	require.NoError(t, err)
	return req
}

func TestCreateRequest(t *testing.T) {
	f := newFixture(t)

	req := f.createRequest(t)
	assert.Equal(t, model.StatePending, req.State)
	assert.Equal(t, f.requester, req.RequesterID)
	require.NotNil(t, req.RecipientID)
	assert.Equal(t, f.recipient, *req.RecipientID, "recipient derived from destination owner")
	assert.Nil(t, req.RespondedAt)
}

func TestCreateOpenRequest(t *testing.T) {
	f := newFixture(t)

	req, err := f.workflow.Create(f.requester, f.origin.ID, nil, "anyone interested?")
	require.NoError(t, err)
	assert.Nil(t, req.RecipientID)
	assert.Nil(t, req.DestinationID)
}

func TestCreateRequestErrors(t *testing.T) {
	f := newFixture(t)

	t.Run("origin not found", func(t *testing.T) {
		_, err := f.workflow.Create(f.requester, 999, &f.destination.ID, "")
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("origin owned by someone else", func(t *testing.T) {
		_, err := f.workflow.Create(f.recipient, f.origin.ID, &f.destination.ID, "")
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("destination not found", func(t *testing.T) {
		missing := 999
		_, err := f.workflow.Create(f.requester, f.origin.ID, &missing, "")
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("destination not available", func(t *testing.T) {
		hidden := f.seedEntry(t, f.recipient, 12, false)
		_, err := f.workflow.Create(f.requester, f.origin.ID, &hidden.ID, "")
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})
}

func TestRespondReject(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t)

	updated, err := f.workflow.Respond(req.ID, f.recipient, false)
	require.NoError(t, err)
	assert.Equal(t, model.StateRejected, updated.State)
	assert.NotNil(t, updated.RespondedAt)

	// a rejection never moves entries
	origin, err := f.schedules.Get(f.origin.ID)
	require.NoError(t, err)
	assert.Equal(t, f.requester, origin.WorkerID)
	assert.False(t, origin.Exchanged)
}

func TestRespondAcceptSwapsOwners(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t)

	updated, err := f.workflow.Respond(req.ID, f.recipient, true)
	require.NoError(t, err)
	assert.Equal(t, model.StateAccepted, updated.State)
	assert.NotNil(t, updated.RespondedAt)

	origin, err := f.schedules.Get(f.origin.ID)
	require.NoError(t, err)
	destination, err := f.schedules.Get(f.destination.ID)
	require.NoError(t, err)

	assert.Equal(t, f.recipient, origin.WorkerID)
	assert.Equal(t, f.requester, destination.WorkerID)
	assert.True(t, origin.Exchanged)
	assert.True(t, destination.Exchanged)
}

func TestRespondGuards(t *testing.T) {
	t.Run("unknown request", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.workflow.Respond(999, f.recipient, true)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("only the recipient may respond", func(t *testing.T) {
		f := newFixture(t)
		req := f.createRequest(t)
		_, err := f.workflow.Respond(req.ID, f.requester, true)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("terminal state stays settled", func(t *testing.T) {
		f := newFixture(t)
		req := f.createRequest(t)
		_, err := f.workflow.Respond(req.ID, f.recipient, false)
		require.NoError(t, err)

		_, err = f.workflow.Respond(req.ID, f.recipient, true)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))

		stored, err := f.workflow.Get(req.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StateRejected, stored.State)
	})

	t.Run("wrong actor beats wrong state", func(t *testing.T) {
		f := newFixture(t)
		req := f.createRequest(t)
		require.NoError(t, f.workflow.Cancel(req.ID, f.requester))

		_, err := f.workflow.Respond(req.ID, f.requester, true)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("open request cannot be accepted", func(t *testing.T) {
		f := newFixture(t)
		req, err := f.workflow.Create(f.requester, f.origin.ID, nil, "")
		require.NoError(t, err)
		// open requests carry no recipient to accept as
		_, err = f.workflow.Respond(req.ID, f.recipient, true)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})
}

func TestRespondAcceptStaleEntries(t *testing.T) {
	t.Run("origin changed hands", func(t *testing.T) {
		f := newFixture(t)
		req := f.createRequest(t)
		require.NoError(t, f.store.UpdateScheduleOwner(f.origin.ID, f.recipient))

		_, err := f.workflow.Respond(req.ID, f.recipient, true)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))

		// the failed accept leaves the request pending and moves nothing
		stored, err := f.workflow.Get(req.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatePending, stored.State)

		destination, err := f.schedules.Get(f.destination.ID)
		require.NoError(t, err)
		assert.Equal(t, f.recipient, destination.WorkerID)
	})

	t.Run("destination deleted", func(t *testing.T) {
		f := newFixture(t)
		req := f.createRequest(t)
		require.NoError(t, f.schedules.Delete(f.destination.ID))

		_, err := f.workflow.Respond(req.ID, f.recipient, true)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))

		stored, err := f.workflow.Get(req.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatePending, stored.State)

		origin, err := f.schedules.Get(f.origin.ID)
		require.NoError(t, err)
		assert.Equal(t, f.requester, origin.WorkerID)
	})
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t)

	t.Run("only the requester may cancel", func(t *testing.T) {
		err := f.workflow.Cancel(req.ID, f.recipient)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("requester cancels a pending request", func(t *testing.T) {
		require.NoError(t, f.workflow.Cancel(req.ID, f.requester))
		stored, err := f.workflow.Get(req.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StateCancelled, stored.State)
		assert.NotNil(t, stored.RespondedAt)
	})

	t.Run("cancel is not idempotent", func(t *testing.T) {
		err := f.workflow.Cancel(req.ID, f.requester)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("unknown request", func(t *testing.T) {
		err := f.workflow.Cancel(999, f.requester)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestConcurrentResponses(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.workflow.Respond(req.ID, f.recipient, true)
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.IsKind(err, apperr.KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one response settles the request")
	assert.Equal(t, 1, conflicts)

	// a single swap happened
	origin, err := f.schedules.Get(f.origin.ID)
	require.NoError(t, err)
	assert.Equal(t, f.recipient, origin.WorkerID)
}

func TestRequestQueries(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t)

	sent, err := f.workflow.Sent(f.requester)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, req.ID, sent[0].ID)

	received, err := f.workflow.Received(f.recipient)
	require.NoError(t, err)
	require.Len(t, received, 1)

	pending, err := f.workflow.SentByState(f.requester, "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	accepted, err := f.workflow.ReceivedByState(f.recipient, "accepted")
	require.NoError(t, err)
	assert.Empty(t, accepted)

	_, err = f.workflow.ByState("sideways")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	recent, err := f.workflow.SentSince(f.requester, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	forEntry, err := f.workflow.ForEntry(f.origin.ID)
	require.NoError(t, err)
	assert.Len(t, forEntry, 1)
}
