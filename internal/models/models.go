package models

// CreateReservationRequest - request body for creating a reservation
type CreateReservationRequest struct {
	LocationID    int64   `json:"location_id" binding:"required"`
	CustomerID    *int64  `json:"customer_id"`
	ShiftID       int64   `json:"shift_id" binding:"required"`
	TicketID      int64   `json:"ticket_id" binding:"required"`
	Date          string  `json:"date" binding:"required"` // YYYY-MM-DD
	StartTime     string  `json:"start_time" binding:"required"`
	PartySize     int     `json:"party_size" binding:"required"`
	Channel       string  `json:"channel" binding:"required"`
	TableID       *int64  `json:"table_id"`
	InitialStatus string  `json:"initial_status"`
	GuestNotes    *string `json:"guest_notes"`
	InternalNotes *string `json:"internal_notes"`
	Squeeze       bool    `json:"squeeze"`
}

// CreateReservationResponse - response for a created reservation
type CreateReservationResponse struct {
	ID int64 `json:"id"`
}

// TransitionStatusRequest - request body for a status transition
type TransitionStatusRequest struct {
	ReservationID int64  `json:"reservation_id" binding:"required"`
	NewStatus     string `json:"new_status" binding:"required"`
	Reason        string `json:"reason"`
	IsOverride    bool   `json:"is_override"`
}

// MoveTableRequest - request body for a manual table move, nil table
// unassigns. Strict rejects a conflicting move instead of warning.
type MoveTableRequest struct {
	ReservationID int64  `json:"reservation_id" binding:"required"`
	NewTableID    *int64 `json:"new_table_id"`
	Strict        bool   `json:"strict"`
}

// MoveTableResponse carries the warn-but-allow outcome of a manual move
type MoveTableResponse struct {
	Moved   bool            `json:"moved"`
	Warning *ConflictResult `json:"warning,omitempty"`
}

// AssignmentRequest - shared body of preview and commit assignment calls.
// ReservationID is required for commit, absent for preview.
type AssignmentRequest struct {
	LocationID      int64  `json:"location_id" binding:"required"`
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	PartySize       int    `json:"party_size" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	ShiftID         int64  `json:"shift_id" binding:"required"`
	TicketID        int64  `json:"ticket_id" binding:"required"`
	ReservationID   *int64 `json:"reservation_id"`
	Sequence        uint64 `json:"sequence"` // client preview ordering, echoed back
}

// AssignmentResult - outcome of preview or commit; assigned=false is a
// normal outcome, not an error
type AssignmentResult struct {
	Assigned  bool   `json:"assigned"`
	TableID   *int64 `json:"table_id,omitempty"`
	TableName string `json:"table_name,omitempty"`
	AreaName  string `json:"area_name,omitempty"`
	Sequence  uint64 `json:"sequence,omitempty"`
}

// ConflictResult - outcome of a conflict check
type ConflictResult struct {
	HasConflict   bool   `json:"has_conflict"`
	TableID       int64  `json:"table_id,omitempty"`
	ReservationID int64  `json:"reservation_id,omitempty"`
	StartTime     string `json:"start_time,omitempty"`
	EndTime       string `json:"end_time,omitempty"`
}

// PacingSlotResponse - one slot of the pacing response
type PacingSlotResponse struct {
	Time       string  `json:"time"`
	GuestCount int     `json:"guest_count"`
	Limit      int     `json:"limit"`
	Percent    float64 `json:"percent"`
	Level      string  `json:"level"`
}

// TimelineEntry - a reservation with its computed grid position
type TimelineEntry struct {
	Reservation Reservation `json:"reservation"`
	Left        float64     `json:"left"`
	Width       float64     `json:"width"`
}

// TimelineResponse - the day sheet for one location and date
type TimelineResponse struct {
	Date    string          `json:"date"`
	Entries []TimelineEntry `json:"entries"`
}

// ListReservationsResponseItem - element of the reservation list
type ListReservationsResponseItem struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	PartySize int    `json:"party_size"`
	Status    string `json:"status"`
	TableID   *int64 `json:"table_id"`
	Channel   string `json:"channel"`
}

// ListReservationsResponse - list of reservations
type ListReservationsResponse []ListReservationsResponseItem
