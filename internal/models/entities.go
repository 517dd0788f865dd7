package models

import (
	"encoding/json"
	"time"
)

// Reservation statuses
const (
	StatusDraft          = "draft"
	StatusPendingPayment = "pending_payment"
	StatusOption         = "option"
	StatusConfirmed      = "confirmed"
	StatusSeated         = "seated"
	StatusCompleted      = "completed"
	StatusNoShow         = "no_show"
	StatusCancelled      = "cancelled"
)

// Booking channels
const (
	ChannelOperator = "operator"
	ChannelPhone    = "phone"
	ChannelWidget   = "widget"
	ChannelWalkIn   = "walk_in"
	ChannelGoogle   = "google"
	ChannelWhatsApp = "whatsapp"
)

// Area fill-order policies
const (
	FillFirstAvailable = "first_available"
	FillRoundRobin     = "round_robin"
	FillPriority       = "priority"
	FillCustom         = "custom"
)

// Staff roles, ordered by authority
const (
	RoleHost    = "host"
	RoleManager = "manager"
	RoleOwner   = "owner"
)

// IsTerminalStatus reports whether a reservation can no longer leave the given status.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusNoShow || status == StatusCancelled
}

// OccupiesTable reports whether a reservation in the given status still
// holds its table for conflict purposes.
func OccupiesTable(status string) bool {
	return status != StatusCancelled && status != StatusNoShow && status != StatusCompleted
}

// RoleRank maps a staff role to its authority level. Unknown roles rank lowest.
func RoleRank(role string) int {
	switch role {
	case RoleOwner:
		return 3
	case RoleManager:
		return 2
	case RoleHost:
		return 1
	default:
		return 0
	}
}

// Reservation represents a guest's seating request for a date/time/party size
type Reservation struct {
	ID              int64      `json:"id" db:"id"`
	LocationID      int64      `json:"location_id" db:"location_id"`
	CustomerID      *int64     `json:"customer_id" db:"customer_id"` // nil = walk-in
	ShiftID         int64      `json:"shift_id" db:"shift_id"`
	TicketID        int64      `json:"ticket_id" db:"ticket_id"`
	TableID         *int64     `json:"table_id" db:"table_id"` // nil = unassigned
	Date            string     `json:"date" db:"reservation_date"`
	StartTime       string     `json:"start_time" db:"start_time"` // HH:MM
	EndTime         string     `json:"end_time" db:"end_time"`     // HH:MM, start + effective duration
	PartySize       int        `json:"party_size" db:"party_size"`
	Status          string     `json:"status" db:"status"`
	Channel         string     `json:"channel" db:"channel"`
	PaymentStatus   *string    `json:"payment_status" db:"payment_status"`
	NoShowRisk      *float64   `json:"no_show_risk" db:"no_show_risk"` // external input, never computed here
	OptionExpiresAt *time.Time `json:"option_expires_at" db:"option_expires_at"`
	GuestNotes      *string    `json:"guest_notes" db:"guest_notes"`
	InternalNotes   *string    `json:"internal_notes" db:"internal_notes"`
	Squeeze         bool       `json:"squeeze" db:"squeeze"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	CheckedInAt     *time.Time `json:"checked_in_at" db:"checked_in_at"`
	ReconfirmedAt   *time.Time `json:"reconfirmed_at" db:"reconfirmed_at"`
}

// Table represents a physical table inside an area
type Table struct {
	ID             int64  `json:"id" db:"id"`
	AreaID         int64  `json:"area_id" db:"area_id"`
	Name           string `json:"name" db:"name"`
	MinCapacity    int    `json:"min_capacity" db:"min_capacity"`
	MaxCapacity    int    `json:"max_capacity" db:"max_capacity"`
	Active         bool   `json:"active" db:"active"`
	OnlineBookable bool   `json:"online_bookable" db:"online_bookable"`
	Joinable       bool   `json:"joinable" db:"joinable"`
	AssignPriority int    `json:"assign_priority" db:"assign_priority"` // lower = preferred
	SortOrder      int    `json:"sort_order" db:"sort_order"`
}

// Area represents a named seating zone with an ordered set of tables
type Area struct {
	ID         int64   `json:"id" db:"id"`
	LocationID int64   `json:"location_id" db:"location_id"`
	Name       string  `json:"name" db:"name"`
	FillOrder  string  `json:"fill_order" db:"fill_order"`
	Active     bool    `json:"active" db:"active"`
	SortOrder  int     `json:"sort_order" db:"sort_order"`
	Tables     []Table `json:"tables,omitempty"` // Not from DB, filled separately
}

// Shift represents a recurring service window (lunch, dinner, ...)
type Shift struct {
	ID              int64  `json:"id" db:"id"`
	LocationID      int64  `json:"location_id" db:"location_id"`
	Name            string `json:"name" db:"name"`
	StartTime       string `json:"start_time" db:"start_time"` // HH:MM, may wrap past midnight
	EndTime         string `json:"end_time" db:"end_time"`
	DaysOfWeek      string `json:"days_of_week" db:"days_of_week"` // comma-separated 0-6, 0 = Sunday
	ArrivalInterval int    `json:"arrival_interval" db:"arrival_interval"`
	Active          bool   `json:"active" db:"active"`
}

// Ticket represents a bookable experience type with default duration and party bounds
type Ticket struct {
	ID              int64  `json:"id" db:"id"`
	LocationID      int64  `json:"location_id" db:"location_id"`
	Name            string `json:"name" db:"name"`
	DurationMinutes int    `json:"duration_minutes" db:"duration_minutes"`
	BufferMinutes   int    `json:"buffer_minutes" db:"buffer_minutes"`
	MinPartySize    int    `json:"min_party_size" db:"min_party_size"`
	MaxPartySize    int    `json:"max_party_size" db:"max_party_size"`
}

// ShiftTicketOverride carries per-shift overrides of a ticket's defaults,
// keyed by (shift_id, ticket_id). Nil fields fall through to the ticket.
type ShiftTicketOverride struct {
	ID                     int64   `json:"id" db:"id"`
	ShiftID                int64   `json:"shift_id" db:"shift_id"`
	TicketID               int64   `json:"ticket_id" db:"ticket_id"`
	DurationMinutes        *int    `json:"duration_minutes" db:"duration_minutes"`
	MinPartySize           *int    `json:"min_party_size" db:"min_party_size"`
	MaxPartySize           *int    `json:"max_party_size" db:"max_party_size"`
	PacingLimit            *int    `json:"pacing_limit" db:"pacing_limit"`
	AreaIDs                []int64 `json:"area_ids,omitempty"` // restriction, empty = all areas
	SqueezeDurationMinutes *int    `json:"squeeze_duration_minutes" db:"squeeze_duration_minutes"`
}

// User represents a staff member able to act on reservations
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

// Audit actions
const (
	AuditActionCreated      = "created"
	AuditActionStatusChange = "status_change"
	AuditActionFieldUpdate  = "field_update"
)

// AuditLogEntry is one immutable row of the append-only audit ledger.
// Entries are never updated or deleted.
type AuditLogEntry struct {
	ID          int64           `json:"id" db:"id"`
	EntryID     string          `json:"entry_id" db:"entry_id"` // external UUID
	SubjectType string          `json:"subject_type" db:"subject_type"`
	SubjectID   int64           `json:"subject_id" db:"subject_id"`
	ActorID     *int64          `json:"actor_id" db:"actor_id"` // nil = system
	Action      string          `json:"action" db:"action"`
	Changes     json.RawMessage `json:"changes" db:"changes"`
	Metadata    AuditMetadata   `json:"metadata" db:"metadata"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// AuditMetadata is the structured metadata column of an audit entry
type AuditMetadata struct {
	Reason     string `json:"reason,omitempty"`
	IsOverride bool   `json:"is_override,omitempty"`
}
