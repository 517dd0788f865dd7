package repository

import (
	"context"
	"database/sql"

	"maitred/internal/database"
)

// CursorRepository persists the per-area round-robin cursor. The cursor
// outlives any single assignment call; previews read it, commits advance it
// inside the commit transaction.
type CursorRepository struct {
	db *database.DB
}

func NewCursorRepository(db *database.DB) *CursorRepository {
	return &CursorRepository{db: db}
}

// ForLocation loads the cursors of every area of a location. Areas without
// a cursor row start at zero.
func (r *CursorRepository) ForLocation(ctx context.Context, locationID int64) (map[int64]int, error) {
	query := `
		SELECT c.area_id, c.cursor_position
		FROM area_cursors c
		JOIN areas a ON a.id = c.area_id
		WHERE a.location_id = $1`

	rows, err := r.db.QueryContext(ctx, query, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cursors := map[int64]int{}
	for rows.Next() {
		var areaID int64
		var pos int
		if err := rows.Scan(&areaID, &pos); err != nil {
			return nil, err
		}
		cursors[areaID] = pos
	}
	return cursors, rows.Err()
}

// AdvanceTx increments an area's cursor inside a commit transaction, so a
// successful round-robin assignment rotates the next call's start index.
func (r *CursorRepository) AdvanceTx(ctx context.Context, tx *sql.Tx, areaID int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO area_cursors (area_id, cursor_position)
		VALUES ($1, 1)
		ON CONFLICT (area_id)
		DO UPDATE SET cursor_position = area_cursors.cursor_position + 1, updated_at = NOW()`,
		areaID)
	return err
}
