package packets

import (
	"time"

	"github.com/medrota/shiftswap/internal/model"
)

type ShiftResponse struct {
	ID         int    `json:"id"`
	WorkerID   int    `json:"worker_id"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	EndNextDay bool   `json:"end_next_day"`
	ShiftType  string `json:"shift_type"`
	Available  bool   `json:"available"`
	Exchanged  bool   `json:"exchanged"`
	Note       string `json:"note,omitempty"`
	Role       string `json:"role"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func NewShiftResponse(e model.ScheduleEntry) ShiftResponse {
	return ShiftResponse{
		ID:         e.ID,
		WorkerID:   e.WorkerID,
		Date:       e.Date.Format("2006-01-02"),
		Start:      e.Start.String(),
		End:        e.End.String(),
		EndNextDay: e.EndNextDay,
		ShiftType:  string(e.Type),
		Available:  e.Available,
		Exchanged:  e.Exchanged,
		Note:       e.Note,
		Role:       string(e.Role),
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  e.UpdatedAt.Format(time.RFC3339),
	}
}

func NewShiftResponses(entries []model.ScheduleEntry) []ShiftResponse {
	out := make([]ShiftResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewShiftResponse(e))
	}
	return out
}

type ExchangeResponse struct {
	ID            int    `json:"id"`
	RequesterID   int    `json:"requester_id"`
	RecipientID   *int   `json:"recipient_id,omitempty"`
	OriginID      int    `json:"origin_id"`
	DestinationID *int   `json:"destination_id,omitempty"`
	Message       string `json:"message,omitempty"`
	State         string `json:"state"`
	CreatedAt     string `json:"created_at"`
	RespondedAt   string `json:"responded_at,omitempty"`
}

func NewExchangeResponse(r model.ExchangeRequest) ExchangeResponse {
	out := ExchangeResponse{
		ID:            r.ID,
		RequesterID:   r.RequesterID,
		RecipientID:   r.RecipientID,
		OriginID:      r.OriginID,
		DestinationID: r.DestinationID,
		Message:       r.Message,
		State:         string(r.State),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.RespondedAt != nil {
		out.RespondedAt = r.RespondedAt.Format(time.RFC3339)
	}
	return out
}

func NewExchangeResponses(requests []model.ExchangeRequest) []ExchangeResponse {
	out := make([]ExchangeResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, NewExchangeResponse(r))
	}
	return out
}
