package exchange

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
	"github.com/medrota/shiftswap/internal/notify"
	"github.com/medrota/shiftswap/internal/schedule"
)

// Workflow drives the exchange request state machine: pending requests are
// created by the origin entry's owner, then either answered by the recipient
// or cancelled by the requester. Accepting performs the ownership swap as one
// atomic unit.
type Workflow struct {
	store       db.Store
	schedules   *schedule.Manager
	marketplace *cache.Marketplace
	notifier    *notify.Notifier
}

func NewWorkflow(store db.Store, schedules *schedule.Manager, marketplace *cache.Marketplace, notifier *notify.Notifier) *Workflow {
	return &Workflow{store: store, schedules: schedules, marketplace: marketplace, notifier: notifier}
}

// Create opens a pending request to swap the requester's origin entry. With a
// destination the recipient is derived from that entry's current owner; with
// none the request is an unconditional giveaway offer awaiting a taker.
func (w *Workflow) Create(requesterID, originID int, destinationID *int, message string) (model.ExchangeRequest, error) {
	origin, err := w.schedules.Get(originID)
	if err != nil {
		return model.ExchangeRequest{}, err
	}
	if origin.WorkerID != requesterID {
		return model.ExchangeRequest{}, apperr.Forbidden("origin entry does not belong to the requester")
	}

	request := model.ExchangeRequest{
		RequesterID: requesterID,
		OriginID:    originID,
		Message:     message,
		State:       model.StatePending,
	}
	if destinationID != nil {
		destination, err := w.schedules.Get(*destinationID)
		if err != nil {
			return model.ExchangeRequest{}, err
		}
		if !destination.Available {
			return model.ExchangeRequest{}, apperr.Conflict("destination entry is not available for exchange")
		}
		recipient := destination.WorkerID
		request.RecipientID = &recipient
		request.DestinationID = destinationID
	}

	created, err := w.store.CreateExchangeRequest(request)
	if err != nil {
		return model.ExchangeRequest{}, err
	}
	log.Info().Int("request_id", created.ID).Int("requester_id", requesterID).Msg("exchange request created")
	w.notifier.Publish(notify.EventRequestCreated, created)
	return created, nil
}

// Respond settles a pending request as its recipient. A rejection only moves
// the state; an acceptance re-verifies both entries under row locks and swaps
// their owners, so a request whose entries moved since creation fails with
// Conflict and changes nothing.
func (w *Workflow) Respond(requestID, responderID int, accept bool) (model.ExchangeRequest, error) {
	var originDate, destinationDate time.Time
	err := w.store.WithTx(func(tx db.Store) error {
		request, err := tx.GetExchangeRequestForUpdate(requestID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("exchange request %d not found", requestID)
			}
			return err
		}
		if request.RecipientID == nil || *request.RecipientID != responderID {
			return apperr.Forbidden("worker %d is not the recipient of this request", responderID)
		}
		if request.State != model.StatePending {
			return apperr.Conflict("request already processed")
		}

		now := time.Now()
		if !accept {
			return settle(tx, requestID, model.StateRejected, now)
		}
		if request.DestinationID == nil {
			return apperr.Conflict("request has no destination entry")
		}

		origin, destination, err := lockEntryPair(tx, request.OriginID, *request.DestinationID)
		if err != nil {
			return err
		}
		if origin.WorkerID != request.RequesterID || destination.WorkerID != *request.RecipientID {
			return apperr.Conflict("entries changed since request was created")
		}

		if err := tx.UpdateScheduleOwner(origin.ID, destination.WorkerID); err != nil {
			return err
		}
		if err := tx.UpdateScheduleOwner(destination.ID, origin.WorkerID); err != nil {
			return err
		}
		originDate, destinationDate = origin.Date, destination.Date
		return settle(tx, requestID, model.StateAccepted, now)
	})
	if err != nil {
		return model.ExchangeRequest{}, err
	}

	updated, getErr := w.store.GetExchangeRequest(requestID)
	if getErr != nil {
		return model.ExchangeRequest{}, getErr
	}
	if accept {
		ctx := context.Background()
		w.marketplace.InvalidateDate(ctx, originDate)
		w.marketplace.InvalidateDate(ctx, destinationDate)
		log.Info().Int("request_id", requestID).Msg("exchange request accepted, owners swapped")
		w.notifier.Publish(notify.EventRequestAccepted, updated)
	} else {
		w.notifier.Publish(notify.EventRequestRejected, updated)
	}
	return updated, nil
}

// Cancel withdraws a pending request as its requester.
func (w *Workflow) Cancel(requestID, actorID int) error {
	err := w.store.WithTx(func(tx db.Store) error {
		request, err := tx.GetExchangeRequestForUpdate(requestID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("exchange request %d not found", requestID)
			}
			return err
		}
		if request.RequesterID != actorID {
			return apperr.Forbidden("worker %d is not the requester of this request", actorID)
		}
		if request.State != model.StatePending {
			return apperr.Conflict("request already processed")
		}
		return settle(tx, requestID, model.StateCancelled, time.Now())
	})
	if err != nil {
		return err
	}
	if cancelled, getErr := w.store.GetExchangeRequest(requestID); getErr == nil {
		w.notifier.Publish(notify.EventRequestCancelled, cancelled)
	}
	return nil
}

// settle moves a pending request into a terminal state. The store refuses the
// write when the row is no longer pending, which surfaces as Conflict.
func settle(tx db.Store, requestID int, state model.RequestState, respondedAt time.Time) error {
	if err := tx.UpdateExchangeRequestState(requestID, state, respondedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Conflict("request already processed")
		}
		return err
	}
	return nil
}

// lockEntryPair re-loads both entries fresh under row locks, in id order so
// two concurrent accepts touching the same pair cannot deadlock. A missing
// entry reads as stale state rather than NotFound: the request referenced it
// when created.
func lockEntryPair(tx db.Store, originID, destinationID int) (origin, destination model.ScheduleEntry, err error) {
	first, second := originID, destinationID
	if second < first {
		first, second = second, first
	}
	load := func(id int) (model.ScheduleEntry, error) {
		e, err := tx.GetScheduleEntryForUpdate(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ScheduleEntry{}, apperr.Conflict("entries changed since request was created")
			}
			return model.ScheduleEntry{}, err
		}
		return e, nil
	}
	a, err := load(first)
	if err != nil {
		return model.ScheduleEntry{}, model.ScheduleEntry{}, err
	}
	b, err := load(second)
	if err != nil {
		return model.ScheduleEntry{}, model.ScheduleEntry{}, err
	}
	if a.ID == originID {
		return a, b, nil
	}
	return b, a, nil
}

// Get loads a single request.
func (w *Workflow) Get(requestID int) (model.ExchangeRequest, error) {
	request, err := w.store.GetExchangeRequest(requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ExchangeRequest{}, apperr.NotFound("exchange request %d not found", requestID)
		}
		return model.ExchangeRequest{}, err
	}
	return request, nil
}

// Sent lists requests the worker opened, newest first.
func (w *Workflow) Sent(workerID int) ([]model.ExchangeRequest, error) {
	return w.store.ListRequestsByRequester(workerID)
}

// Received lists requests addressed to the worker, newest first.
func (w *Workflow) Received(workerID int) ([]model.ExchangeRequest, error) {
	return w.store.ListRequestsByRecipient(workerID)
}

func (w *Workflow) ByState(state string) ([]model.ExchangeRequest, error) {
	parsed, err := model.ParseRequestState(state)
	if err != nil {
		return nil, apperr.Validation("invalid request state %q", state)
	}
	return w.store.ListRequestsByState(parsed)
}

func (w *Workflow) SentByState(workerID int, state string) ([]model.ExchangeRequest, error) {
	parsed, err := model.ParseRequestState(state)
	if err != nil {
		return nil, apperr.Validation("invalid request state %q", state)
	}
	return w.store.ListRequestsByRequesterAndState(workerID, parsed)
}

func (w *Workflow) ReceivedByState(workerID int, state string) ([]model.ExchangeRequest, error) {
	parsed, err := model.ParseRequestState(state)
	if err != nil {
		return nil, apperr.Validation("invalid request state %q", state)
	}
	return w.store.ListRequestsByRecipientAndState(workerID, parsed)
}

// SentSince lists the worker's requests created at or after the given time.
func (w *Workflow) SentSince(workerID int, after time.Time) ([]model.ExchangeRequest, error) {
	return w.store.ListRequestsByRequesterCreatedAfter(workerID, after)
}

// ForEntry lists every request touching the entry as origin or destination.
func (w *Workflow) ForEntry(entryID int) ([]model.ExchangeRequest, error) {
	return w.store.ListRequestsByEntry(entryID)
}
