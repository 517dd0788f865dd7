package models

import "time"

// NATS Event Types
const (
	EventReservationCreated    = "reservation.created"
	EventReservationStatus     = "reservation.status_changed"
	EventReservationAssigned   = "reservation.assigned"
	EventReservationUnassigned = "reservation.unassigned"
	EventReservationExpired    = "reservation.option_expired"
)

// ReservationCreatedEvent represents a reservation creation event
type ReservationCreatedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	LocationID    int64     `json:"location_id"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	PartySize     int       `json:"party_size"`
	Channel       string    `json:"channel"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationStatusEvent represents a status transition event
type ReservationStatusEvent struct {
	ReservationID int64     `json:"reservation_id"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	ActorID       *int64    `json:"actor_id"`
	IsOverride    bool      `json:"is_override"`
	Reason        string    `json:"reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationAssignedEvent represents a table assignment event
type ReservationAssignedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	TableID       int64     `json:"table_id"`
	Manual        bool      `json:"manual"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationUnassignedEvent represents a table release event
type ReservationUnassignedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	TableID       int64     `json:"table_id"`
	Reason        string    `json:"reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationExpiredEvent represents an option reservation lapsing
type ReservationExpiredEvent struct {
	ReservationID int64     `json:"reservation_id"`
	ExpiredAt     time.Time `json:"expired_at"`
	Timestamp     time.Time `json:"timestamp"`
}
