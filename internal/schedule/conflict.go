package schedule

import (
	"fmt"

	apperrors "maitred/internal/errors"
	"maitred/internal/models"
	"maitred/internal/timegrid"
)

// FindConflict scans a reservation snapshot for an active reservation on the
// given table whose window overlaps [startTime, endTime). Windows are
// half-open, so a reservation ending exactly when the next begins does not
// conflict. Reservations in cancelled, no_show or completed status no longer
// hold their table and are skipped, as is the excluded reservation id when
// re-assigning.
//
// The first conflicting reservation in snapshot order is returned, nil if
// the window is free.
func FindConflict(reservations []models.Reservation, tableID int64, startTime, endTime string, excludeID *int64) (*models.Reservation, error) {
	startMin, err := timegrid.TimeToMinutes(startTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}
	endMin, err := timegrid.TimeToMinutes(endTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end time: %w", err)
	}

	for i := range reservations {
		r := &reservations[i]
		if r.TableID == nil || *r.TableID != tableID {
			continue
		}
		if !models.OccupiesTable(r.Status) {
			continue
		}
		if excludeID != nil && r.ID == *excludeID {
			continue
		}

		otherStart, err := timegrid.TimeToMinutes(r.StartTime)
		if err != nil {
			return nil, fmt.Errorf("reservation %d has invalid start time: %w", r.ID, err)
		}
		otherEnd, err := timegrid.TimeToMinutes(r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("reservation %d has invalid end time: %w", r.ID, err)
		}

		if startMin < otherEnd && endMin > otherStart {
			return r, nil
		}
	}

	return nil, nil
}

// ConflictError turns a detected conflict into the typed error a strict
// operation fails with. Warn-but-allow paths report the same conflict as a
// warning instead.
func ConflictError(tableID int64, c *models.Reservation) *apperrors.TableConflictError {
	return &apperrors.TableConflictError{
		TableID:       tableID,
		ReservationID: c.ID,
		StartTime:     c.StartTime,
		EndTime:       c.EndTime,
	}
}
