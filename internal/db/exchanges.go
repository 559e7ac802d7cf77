package db

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/medrota/shiftswap/internal/model"
)

const exchangeColumns = `
	id, requester_id, recipient_id, origin_id, destination_id,
	message, state, created_at, responded_at`

func (s *pgStore) CreateExchangeRequest(r model.ExchangeRequest) (model.ExchangeRequest, error) {
	var out model.ExchangeRequest
	query := `
	INSERT INTO exchange_requests
	  (requester_id, recipient_id, origin_id, destination_id, message, state, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, now())
	RETURNING` + exchangeColumns + `;`
	err := sqlx.Get(s.ext, &out, query,
		r.RequesterID, r.RecipientID, r.OriginID, r.DestinationID, r.Message, r.State)
	if err != nil {
		log.Error().Err(err).Int("requester_id", r.RequesterID).Msg("CreateExchangeRequest failed")
		return model.ExchangeRequest{}, err
	}
	return out, nil
}

func (s *pgStore) GetExchangeRequest(id int) (model.ExchangeRequest, error) {
	return s.getExchangeRequest(id, false)
}

func (s *pgStore) GetExchangeRequestForUpdate(id int) (model.ExchangeRequest, error) {
	return s.getExchangeRequest(id, true)
}

func (s *pgStore) getExchangeRequest(id int, forUpdate bool) (model.ExchangeRequest, error) {
	query := `SELECT` + exchangeColumns + ` FROM exchange_requests WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var r model.ExchangeRequest
	if err := sqlx.Get(s.ext, &r, query+`;`, id); err != nil {
		return model.ExchangeRequest{}, err
	}
	return r, nil
}

// UpdateExchangeRequestState moves a request to a terminal state. The state
// guard in the WHERE clause keeps terminal rows immutable at the storage
// level as well.
func (s *pgStore) UpdateExchangeRequestState(id int, state model.RequestState, respondedAt time.Time) error {
	query := `
	UPDATE exchange_requests
	SET state = $2,
	    responded_at = $3
	WHERE id = $1 AND state = 'pending';`
	res, err := s.ext.Exec(query, id, state, respondedAt)
	if err != nil {
		log.Error().Err(err).Int("request_id", id).Msg("UpdateExchangeRequestState failed")
		return err
	}
	return requireRow(res)
}

func (s *pgStore) ListRequestsByRequester(workerID int) ([]model.ExchangeRequest, error) {
	return s.selectRequests(`
	SELECT`+exchangeColumns+`
	  FROM exchange_requests
	 WHERE requester_id = $1
	 ORDER BY created_at DESC;`, workerID)
}

func (s *pgStore) ListRequestsByRecipient(workerID int) ([]model.ExchangeRequest, error) {
	return s.selectRequests(`
	SELECT`+exchangeColumns+`
	  FROM exchange_requests
	 WHERE recipient_id = $1
	 ORDER BY created_at DESC;`, workerID)
}

func (s *pgStore) ListRequestsByState(state model.RequestState) ([]model.ExchangeRequest, error) {
	return s.selectRequests(`
	SELECT`+exchangeColumns+`
	  FROM exchange_requests
	 WHERE state = $1
	 ORDER BY created_at DESC;`, state)
}

func (s *pgStore) ListRequestsByRequesterAndState(workerID int, state model.RequestState) ([]model.ExchangeRequest, error) {
	return s.selectRequests(`
	SELECT`+exchangeColumns+`
	  FROM exchange_requests
	 WHERE requester_id = $1 AND state = $2
	 ORDER BY created_at DESC;`, workerID, state)
}

func (s *pgStore) ListRequestsByRecipientAndState(workerID int, state model.RequestState) ([]model.ExchangeRequest, error) {
	return s.selectRequests(`
	SELECT`+exchangeColumns+`
	  FROM exchange_requests
	 WHERE recipient_id = $1 AND state = $2
	 ORDER BY created_at DESC;`, workerID, state)
}

func (s *pgStore) ListRequestsByRequesterCreatedAfter(workerID int, after time.Time) ([]model.ExchangeRequest, error) {
	return s.selectRequests(`
	SELECT`+exchangeColumns+`
	  FROM exchange_requests
	 WHERE requester_id = $1 AND created_at >= $2
	 ORDER BY created_at DESC;`, workerID, after)
}

func (s *pgStore) ListRequestsByEntry(entryID int) ([]model.ExchangeRequest, error) {
	return s.selectRequests(`
	SELECT`+exchangeColumns+`
	  FROM exchange_requests
	 WHERE origin_id = $1 OR destination_id = $1
	 ORDER BY created_at DESC;`, entryID)
}

func (s *pgStore) selectRequests(query string, args ...any) ([]model.ExchangeRequest, error) {
	out := []model.ExchangeRequest{}
	if err := sqlx.Select(s.ext, &out, query, args...); err != nil {
		log.Error().Err(err).Msg("exchange request query failed")
		return nil, err
	}
	return out, nil
}
