package model

import (
	"fmt"
	"strings"
	"time"
)

// RequestState is the exchange request lifecycle state. Pending is the only
// non-terminal state; the rest admit no outgoing transitions.
type RequestState string

const (
	StatePending   RequestState = "pending"
	StateAccepted  RequestState = "accepted"
	StateRejected  RequestState = "rejected"
	StateCancelled RequestState = "cancelled"
)

func ParseRequestState(s string) (RequestState, error) {
	st := RequestState(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatePending, StateAccepted, StateRejected, StateCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown request state %q", s)
}

func (s RequestState) Terminal() bool { return s != StatePending }

// ExchangeRequest is a proposal to swap the origin entry for another worker's
// destination entry, or to give the origin up unconditionally when no
// destination is named. Relationships are id references, never embedded rows.
type ExchangeRequest struct {
	ID            int          `db:"id" json:"id"`
	RequesterID   int          `db:"requester_id" json:"requester_id"`
	RecipientID   *int         `db:"recipient_id" json:"recipient_id,omitempty"`
	OriginID      int          `db:"origin_id" json:"origin_id"`
	DestinationID *int         `db:"destination_id" json:"destination_id,omitempty"`
	Message       string       `db:"message" json:"message,omitempty"`
	State         RequestState `db:"state" json:"state"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	RespondedAt   *time.Time   `db:"responded_at" json:"responded_at,omitempty"`
}
