package schedule

import (
	"sort"

	apperrors "maitred/internal/errors"
	"maitred/internal/models"
	"maitred/internal/timegrid"
)

// CursorSource supplies the round-robin start index for an area. The cursor
// outlives a single call; previews read it without advancing so repeated
// previews against an unchanged snapshot stay idempotent. Commits advance it
// inside their transaction.
type CursorSource interface {
	Cursor(areaID int64) int
}

// StaticCursors is a CursorSource backed by a plain map, used for previews
// against a snapshot and in tests.
type StaticCursors map[int64]int

func (s StaticCursors) Cursor(areaID int64) int { return s[areaID] }

// AssignRequest describes one table-selection attempt
type AssignRequest struct {
	PartySize       int
	StartTime       string
	DurationMinutes int
	// AreaIDs restricts candidate areas when the ticket's shift override
	// names some; empty means all active areas of the location.
	AreaIDs []int64
	// ExcludeReservationID is set when re-assigning an existing reservation
	// so its own window does not count as a conflict.
	ExcludeReservationID *int64
}

// Selection is the outcome of an assignment attempt. Assigned=false is a
// normal outcome, not a fault.
type Selection struct {
	Assigned  bool
	TableID   int64
	TableName string
	AreaName  string
}

// EndTime returns the half-open end of the requested window. A window that
// would cross midnight is rejected before any table is considered.
func (r AssignRequest) EndTime() (string, error) {
	end, err := timegrid.WindowEnd(r.StartTime, r.DurationMinutes)
	if err != nil {
		return "", apperrors.Validationf("%v", err)
	}
	return end, nil
}

// Assign picks the first table that fits the party and has no conflicting
// active reservation, walking areas in sort order and tables in each area's
// fill order. Areas and the snapshot are read-only; persistence and
// commit-time re-validation are the caller's concern.
func Assign(areas []models.Area, reservations []models.Reservation, req AssignRequest, cursors CursorSource) (Selection, error) {
	if req.PartySize <= 0 {
		return Selection{}, apperrors.Validationf("party size must be positive, got %d", req.PartySize)
	}
	if req.DurationMinutes <= 0 {
		return Selection{}, apperrors.Validationf("duration must be positive, got %d", req.DurationMinutes)
	}
	endTime, err := req.EndTime()
	if err != nil {
		return Selection{}, err
	}

	for _, area := range orderedAreas(areas, req.AreaIDs) {
		for _, table := range candidateTables(area, req.PartySize, cursors) {
			conflict, err := FindConflict(reservations, table.ID, req.StartTime, endTime, req.ExcludeReservationID)
			if err != nil {
				return Selection{}, err
			}
			if conflict == nil {
				return Selection{
					Assigned:  true,
					TableID:   table.ID,
					TableName: table.Name,
					AreaName:  area.Name,
				}, nil
			}
		}
	}

	return Selection{Assigned: false}, nil
}

// orderedAreas filters to active areas, applies the ticket's area
// restriction and sorts by area sort order.
func orderedAreas(areas []models.Area, allowed []int64) []models.Area {
	allowedSet := map[int64]bool{}
	for _, id := range allowed {
		allowedSet[id] = true
	}

	out := make([]models.Area, 0, len(areas))
	for _, a := range areas {
		if !a.Active {
			continue
		}
		if len(allowedSet) > 0 && !allowedSet[a.ID] {
			continue
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// candidateTables enumerates the active tables of an area that fit the
// party, ordered per the area's fill policy.
func candidateTables(area models.Area, partySize int, cursors CursorSource) []models.Table {
	fitting := make([]models.Table, 0, len(area.Tables))
	for _, t := range area.Tables {
		if !t.Active {
			continue
		}
		if partySize < t.MinCapacity || partySize > t.MaxCapacity {
			continue
		}
		fitting = append(fitting, t)
	}
	if len(fitting) == 0 {
		return fitting
	}

	switch area.FillOrder {
	case models.FillCustom:
		sort.SliceStable(fitting, func(i, j int) bool { return fitting[i].SortOrder < fitting[j].SortOrder })

	case models.FillRoundRobin:
		sort.SliceStable(fitting, func(i, j int) bool { return fitting[i].SortOrder < fitting[j].SortOrder })
		start := cursors.Cursor(area.ID) % len(fitting)
		if start < 0 {
			start += len(fitting)
		}
		rotated := make([]models.Table, 0, len(fitting))
		rotated = append(rotated, fitting[start:]...)
		rotated = append(rotated, fitting[:start]...)
		fitting = rotated

	default: // first_available, priority
		sort.SliceStable(fitting, func(i, j int) bool {
			if fitting[i].AssignPriority != fitting[j].AssignPriority {
				return fitting[i].AssignPriority < fitting[j].AssignPriority
			}
			return fitting[i].SortOrder < fitting[j].SortOrder
		})
	}

	return fitting
}
