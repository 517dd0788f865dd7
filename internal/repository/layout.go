package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"maitred/internal/database"
	"maitred/internal/models"
)

// LayoutRepository reads the long-lived seating configuration: areas,
// tables, shifts and tickets. Settings screens own the writes; the engine
// only reads.
type LayoutRepository struct {
	db *database.DB
}

func NewLayoutRepository(db *database.DB) *LayoutRepository {
	return &LayoutRepository{db: db}
}

// AreasWithTables returns the active areas of a location in sort order,
// each carrying its tables in sort order.
func (r *LayoutRepository) AreasWithTables(ctx context.Context, locationID int64) ([]models.Area, error) {
	areaQuery := `
		SELECT id, location_id, name, fill_order, active, sort_order
		FROM areas
		WHERE location_id = $1 AND active = TRUE
		ORDER BY sort_order, id`

	rows, err := r.db.QueryContext(ctx, areaQuery, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []models.Area
	areaIndex := map[int64]int{}
	for rows.Next() {
		var a models.Area
		if err := rows.Scan(&a.ID, &a.LocationID, &a.Name, &a.FillOrder, &a.Active, &a.SortOrder); err != nil {
			return nil, err
		}
		areaIndex[a.ID] = len(areas)
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(areas) == 0 {
		return areas, nil
	}

	tableQuery := `
		SELECT t.id, t.area_id, t.name, t.min_capacity, t.max_capacity, t.active,
		       t.online_bookable, t.joinable, t.assign_priority, t.sort_order
		FROM restaurant_tables t
		JOIN areas a ON a.id = t.area_id
		WHERE a.location_id = $1
		ORDER BY t.sort_order, t.id`

	tableRows, err := r.db.QueryContext(ctx, tableQuery, locationID)
	if err != nil {
		return nil, err
	}
	defer tableRows.Close()

	for tableRows.Next() {
		var t models.Table
		err := tableRows.Scan(&t.ID, &t.AreaID, &t.Name, &t.MinCapacity, &t.MaxCapacity,
			&t.Active, &t.OnlineBookable, &t.Joinable, &t.AssignPriority, &t.SortOrder)
		if err != nil {
			return nil, err
		}
		if i, ok := areaIndex[t.AreaID]; ok {
			areas[i].Tables = append(areas[i].Tables, t)
		}
	}

	return areas, tableRows.Err()
}

func (r *LayoutRepository) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	t := &models.Table{}
	query := `
		SELECT id, area_id, name, min_capacity, max_capacity, active,
		       online_bookable, joinable, assign_priority, sort_order
		FROM restaurant_tables
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.AreaID, &t.Name, &t.MinCapacity, &t.MaxCapacity,
		&t.Active, &t.OnlineBookable, &t.Joinable, &t.AssignPriority, &t.SortOrder)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *LayoutRepository) GetShift(ctx context.Context, id int64) (*models.Shift, error) {
	s := &models.Shift{}
	query := `
		SELECT id, location_id, name, start_time, end_time, days_of_week, arrival_interval, active
		FROM shifts
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.LocationID, &s.Name, &s.StartTime, &s.EndTime,
		&s.DaysOfWeek, &s.ArrivalInterval, &s.Active)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *LayoutRepository) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	t := &models.Ticket{}
	query := `
		SELECT id, location_id, name, duration_minutes, buffer_minutes, min_party_size, max_party_size
		FROM tickets
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.LocationID, &t.Name, &t.DurationMinutes, &t.BufferMinutes,
		&t.MinPartySize, &t.MaxPartySize)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// GetOverride returns the per-shift ticket override keyed by
// (shift_id, ticket_id), nil if the pair has none.
func (r *LayoutRepository) GetOverride(ctx context.Context, shiftID, ticketID int64) (*models.ShiftTicketOverride, error) {
	o := &models.ShiftTicketOverride{}
	query := `
		SELECT id, shift_id, ticket_id, duration_minutes, min_party_size, max_party_size,
		       pacing_limit, area_ids, squeeze_duration_minutes
		FROM shift_ticket_overrides
		WHERE shift_id = $1 AND ticket_id = $2`

	var areaIDs pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, shiftID, ticketID).Scan(
		&o.ID, &o.ShiftID, &o.TicketID, &o.DurationMinutes, &o.MinPartySize,
		&o.MaxPartySize, &o.PacingLimit, &areaIDs, &o.SqueezeDurationMinutes)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	o.AreaIDs = []int64(areaIDs)
	return o, nil
}
