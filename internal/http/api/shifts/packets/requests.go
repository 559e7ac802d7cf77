package packets

// body for publishing a new shift entry
type CreateShiftRequest struct {
	Date       string `json:"date" binding:"required"`
	Start      string `json:"start" binding:"required"`
	End        string `json:"end" binding:"required"`
	EndNextDay bool   `json:"end_next_day"`
	ShiftType  string `json:"shift_type"`
	Available  bool   `json:"available"`
	Note       string `json:"note"`
	Role       string `json:"role" binding:"required"`
}

// body for editing an owned shift entry
type UpdateShiftRequest struct {
	Date       string `json:"date" binding:"required"`
	Start      string `json:"start" binding:"required"`
	End        string `json:"end" binding:"required"`
	EndNextDay bool   `json:"end_next_day"`
	ShiftType  string `json:"shift_type"`
	Available  bool   `json:"available"`
	Note       string `json:"note"`
}

// body for opening an exchange request
type CreateExchangeRequest struct {
	OriginID      int    `json:"origin_id" binding:"required"`
	DestinationID *int   `json:"destination_id"`
	Message       string `json:"message"`
}

// body for answering an exchange request
type RespondExchangeRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}
