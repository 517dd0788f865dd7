package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createAreasTable,
		createTablesTable,
		createShiftsTable,
		createTicketsTable,
		createShiftTicketOverridesTable,
		createReservationsTable,
		createAreaCursorsTable,
		createAuditLogTable,
		createReservationDayIndex,
		createReservationTableIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    user_id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    surname VARCHAR(100) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'host',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (role IN ('host', 'manager', 'owner'))
);`

const createAreasTable = `
CREATE TABLE IF NOT EXISTS areas (
    id SERIAL PRIMARY KEY,
    location_id INTEGER NOT NULL,
    name VARCHAR(100) NOT NULL,
    fill_order VARCHAR(20) NOT NULL DEFAULT 'first_available',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    sort_order INTEGER NOT NULL DEFAULT 0,

    CHECK (fill_order IN ('first_available', 'round_robin', 'priority', 'custom'))
);`

const createTablesTable = `
CREATE TABLE IF NOT EXISTS restaurant_tables (
    id SERIAL PRIMARY KEY,
    area_id INTEGER NOT NULL REFERENCES areas(id) ON DELETE CASCADE,
    name VARCHAR(50) NOT NULL,
    min_capacity INTEGER NOT NULL DEFAULT 1,
    max_capacity INTEGER NOT NULL DEFAULT 2,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    online_bookable BOOLEAN NOT NULL DEFAULT TRUE,
    joinable BOOLEAN NOT NULL DEFAULT FALSE,
    assign_priority INTEGER NOT NULL DEFAULT 100,
    sort_order INTEGER NOT NULL DEFAULT 0,

    CHECK (min_capacity > 0 AND max_capacity >= min_capacity)
);`

const createShiftsTable = `
CREATE TABLE IF NOT EXISTS shifts (
    id SERIAL PRIMARY KEY,
    location_id INTEGER NOT NULL,
    name VARCHAR(100) NOT NULL,
    start_time VARCHAR(5) NOT NULL,
    end_time VARCHAR(5) NOT NULL,
    days_of_week VARCHAR(20) NOT NULL DEFAULT '0,1,2,3,4,5,6',
    arrival_interval INTEGER NOT NULL DEFAULT 15,
    active BOOLEAN NOT NULL DEFAULT TRUE,

    CHECK (arrival_interval IN (15, 30, 60))
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id SERIAL PRIMARY KEY,
    location_id INTEGER NOT NULL,
    name VARCHAR(100) NOT NULL,
    duration_minutes INTEGER NOT NULL DEFAULT 120,
    buffer_minutes INTEGER NOT NULL DEFAULT 0,
    min_party_size INTEGER NOT NULL DEFAULT 1,
    max_party_size INTEGER NOT NULL DEFAULT 12,

    CHECK (duration_minutes > 0)
);`

const createShiftTicketOverridesTable = `
CREATE TABLE IF NOT EXISTS shift_ticket_overrides (
    id SERIAL PRIMARY KEY,
    shift_id INTEGER NOT NULL REFERENCES shifts(id) ON DELETE CASCADE,
    ticket_id INTEGER NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
    duration_minutes INTEGER,
    min_party_size INTEGER,
    max_party_size INTEGER,
    pacing_limit INTEGER,
    area_ids INTEGER[],
    squeeze_duration_minutes INTEGER,

    UNIQUE(shift_id, ticket_id)
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id SERIAL PRIMARY KEY,
    location_id INTEGER NOT NULL,
    customer_id INTEGER,
    shift_id INTEGER NOT NULL REFERENCES shifts(id),
    ticket_id INTEGER NOT NULL REFERENCES tickets(id),
    table_id INTEGER REFERENCES restaurant_tables(id),
    reservation_date DATE NOT NULL,
    start_time VARCHAR(5) NOT NULL,
    end_time VARCHAR(5) NOT NULL,
    party_size INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'draft',
    channel VARCHAR(20) NOT NULL DEFAULT 'operator',
    payment_status VARCHAR(20),
    no_show_risk DOUBLE PRECISION,
    option_expires_at TIMESTAMP,
    guest_notes TEXT,
    internal_notes TEXT,
    squeeze BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    checked_in_at TIMESTAMP,
    reconfirmed_at TIMESTAMP,

    CHECK (party_size > 0),
    CHECK (end_time > start_time),
    CHECK (status IN ('draft', 'pending_payment', 'option', 'confirmed', 'seated', 'completed', 'no_show', 'cancelled')),
    CHECK (channel IN ('operator', 'phone', 'widget', 'walk_in', 'google', 'whatsapp'))
);`

const createAreaCursorsTable = `
CREATE TABLE IF NOT EXISTS area_cursors (
    area_id INTEGER PRIMARY KEY REFERENCES areas(id) ON DELETE CASCADE,
    cursor_position INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createAuditLogTable = `
CREATE TABLE IF NOT EXISTS audit_log (
    id SERIAL PRIMARY KEY,
    entry_id UUID NOT NULL UNIQUE,
    subject_type VARCHAR(50) NOT NULL,
    subject_id INTEGER NOT NULL,
    actor_id INTEGER REFERENCES users(user_id),
    action VARCHAR(30) NOT NULL,
    changes JSONB NOT NULL DEFAULT '{}',
    metadata JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (action IN ('created', 'status_change', 'field_update'))
);`

const createReservationDayIndex = `
CREATE INDEX IF NOT EXISTS reservations_location_date_idx
ON reservations (location_id, reservation_date);`

const createReservationTableIndex = `
CREATE INDEX IF NOT EXISTS reservations_table_date_idx
ON reservations (table_id, reservation_date)
WHERE table_id IS NOT NULL;`
