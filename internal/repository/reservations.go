package repository

import (
	"context"
	"database/sql"
	"time"

	"maitred/internal/database"
	"maitred/internal/models"
)

const reservationColumns = `id, location_id, customer_id, shift_id, ticket_id, table_id,
	       reservation_date::text, start_time, end_time, party_size, status, channel,
	       payment_status, no_show_risk, option_expires_at, guest_notes, internal_notes,
	       squeeze, created_at, updated_at, checked_in_at, reconfirmed_at`

type ReservationRepository struct {
	db *database.DB
}

func NewReservationRepository(db *database.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// BeginTx opens a transaction for a commit-path operation. Assignment
// commits and status transitions run entirely inside one transaction.
func (r *ReservationRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

// LockLocationDateTx serializes commit-path writers for one location+date.
// Concurrent commits against overlapping windows queue here instead of both
// passing conflict validation. The lock is released with the transaction.
func (r *ReservationRepository) LockLocationDateTx(ctx context.Context, tx *sql.Tx, locationID int64, date string) error {
	_, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock($1::int, hashtext($2)::int)`,
		locationID, date)
	return err
}

// CreateTx inserts a reservation inside an existing commit transaction.
func (r *ReservationRepository) CreateTx(ctx context.Context, tx *sql.Tx, res *models.Reservation) error {
	query := `
		INSERT INTO reservations (location_id, customer_id, shift_id, ticket_id, table_id,
		       reservation_date, start_time, end_time, party_size, status, channel,
		       option_expires_at, guest_notes, internal_notes, squeeze, checked_in_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`

	return tx.QueryRowContext(ctx, query,
		res.LocationID,
		res.CustomerID,
		res.ShiftID,
		res.TicketID,
		res.TableID,
		res.Date,
		res.StartTime,
		res.EndTime,
		res.PartySize,
		res.Status,
		res.Channel,
		res.OptionExpiresAt,
		res.GuestNotes,
		res.InternalNotes,
		res.Squeeze,
		res.CheckedInAt,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

// GetByIDTx reads one reservation with a row lock inside a commit
// transaction, so concurrent transitions on the same reservation serialize.
func (r *ReservationRepository) GetByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	res, err := scanReservation(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return res, err
}

// SnapshotForDateTx reads the full reservation set of a location+date inside
// a transaction. Combined with LockLocationDateTx this is the live data that
// commit-time conflict re-validation runs against.
func (r *ReservationRepository) SnapshotForDateTx(ctx context.Context, tx *sql.Tx, locationID int64, date string) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE location_id = $1 AND reservation_date = $2
		ORDER BY id`

	rows, err := tx.QueryContext(ctx, query, locationID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *ReservationRepository) ListByLocationDate(ctx context.Context, locationID int64, date string) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE location_id = $1 AND reservation_date = $2
		ORDER BY start_time, id`

	rows, err := r.db.QueryContext(ctx, query, locationID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

// UpdateTableTx sets or clears the table assignment inside a commit
// transaction.
func (r *ReservationRepository) UpdateTableTx(ctx context.Context, tx *sql.Tx, id int64, tableID *int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE reservations SET table_id = $1, updated_at = NOW() WHERE id = $2`,
		tableID, id)
	return err
}

// ApplyTransitionTx writes the status change, the checked-in stamp and the
// table release as one statement. Partial writes (status updated but table
// not released) cannot happen.
func (r *ReservationRepository) ApplyTransitionTx(ctx context.Context, tx *sql.Tx, id int64, newStatus string, setCheckedIn, releaseTable bool) error {
	query := `UPDATE reservations SET status = $1, updated_at = NOW()`
	if setCheckedIn {
		query += `, checked_in_at = NOW()`
	}
	if releaseTable {
		query += `, table_id = NULL`
	}
	query += ` WHERE id = $2`

	_, err := tx.ExecContext(ctx, query, newStatus, id)
	return err
}

// GetExpiredOptions returns option reservations whose hold lapsed before
// the given moment.
func (r *ReservationRepository) GetExpiredOptions(ctx context.Context, before time.Time) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = 'option' AND option_expires_at IS NOT NULL AND option_expires_at < $1
		ORDER BY option_expires_at`

	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	res := &models.Reservation{}
	err := row.Scan(
		&res.ID,
		&res.LocationID,
		&res.CustomerID,
		&res.ShiftID,
		&res.TicketID,
		&res.TableID,
		&res.Date,
		&res.StartTime,
		&res.EndTime,
		&res.PartySize,
		&res.Status,
		&res.Channel,
		&res.PaymentStatus,
		&res.NoShowRisk,
		&res.OptionExpiresAt,
		&res.GuestNotes,
		&res.InternalNotes,
		&res.Squeeze,
		&res.CreatedAt,
		&res.UpdatedAt,
		&res.CheckedInAt,
		&res.ReconfirmedAt,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func scanReservations(rows *sql.Rows) ([]models.Reservation, error) {
	var reservations []models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}
