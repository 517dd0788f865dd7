package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "maitred/internal/errors"
	"maitred/internal/models"
)

func testAreas() []models.Area {
	return []models.Area{
		{
			ID: 1, Name: "Main Room", FillOrder: models.FillPriority, Active: true, SortOrder: 1,
			Tables: []models.Table{
				{ID: 10, AreaID: 1, Name: "T1", MinCapacity: 2, MaxCapacity: 4, Active: true, AssignPriority: 2, SortOrder: 1},
				{ID: 11, AreaID: 1, Name: "T2", MinCapacity: 2, MaxCapacity: 4, Active: true, AssignPriority: 1, SortOrder: 2},
				{ID: 12, AreaID: 1, Name: "T3", MinCapacity: 5, MaxCapacity: 8, Active: true, AssignPriority: 1, SortOrder: 3},
			},
		},
		{
			ID: 2, Name: "Terrace", FillOrder: models.FillFirstAvailable, Active: true, SortOrder: 2,
			Tables: []models.Table{
				{ID: 20, AreaID: 2, Name: "P1", MinCapacity: 2, MaxCapacity: 6, Active: true, AssignPriority: 1, SortOrder: 1},
			},
		},
	}
}

func TestAssignPicksLowestPriorityFittingTable(t *testing.T) {
	sel, err := Assign(testAreas(), nil, AssignRequest{
		PartySize: 2, StartTime: "19:00", DurationMinutes: 90,
	}, StaticCursors{})
	require.NoError(t, err)
	require.True(t, sel.Assigned)
	assert.Equal(t, int64(11), sel.TableID, "priority 1 beats priority 2")
	assert.Equal(t, "T2", sel.TableName)
	assert.Equal(t, "Main Room", sel.AreaName)
}

func TestAssignSkipsConflictingTables(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(1, 11, "19:00", "21:00", models.StatusConfirmed),
	}

	sel, err := Assign(testAreas(), snapshot, AssignRequest{
		PartySize: 2, StartTime: "19:30", DurationMinutes: 60,
	}, StaticCursors{})
	require.NoError(t, err)
	require.True(t, sel.Assigned)
	assert.Equal(t, int64(10), sel.TableID)
}

func TestAssignCapacityBounds(t *testing.T) {
	// Party of 8 only fits T3
	sel, err := Assign(testAreas(), nil, AssignRequest{
		PartySize: 8, StartTime: "19:00", DurationMinutes: 90,
	}, StaticCursors{})
	require.NoError(t, err)
	require.True(t, sel.Assigned)
	assert.Equal(t, int64(12), sel.TableID)

	// Party of 1 is below every table's minimum
	sel, err = Assign(testAreas(), nil, AssignRequest{
		PartySize: 1, StartTime: "19:00", DurationMinutes: 90,
	}, StaticCursors{})
	require.NoError(t, err)
	assert.False(t, sel.Assigned, "no table fits, normal outcome")
}

func TestAssignNoTableAvailableIsNotAnError(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(1, 10, "19:00", "21:00", models.StatusConfirmed),
		reservation(2, 11, "19:00", "21:00", models.StatusConfirmed),
		reservation(3, 20, "19:00", "21:00", models.StatusConfirmed),
	}

	sel, err := Assign(testAreas(), snapshot, AssignRequest{
		PartySize: 2, StartTime: "19:30", DurationMinutes: 60,
	}, StaticCursors{})
	require.NoError(t, err)
	assert.False(t, sel.Assigned)
	assert.Zero(t, sel.TableID)
}

func TestAssignFallsThroughToNextArea(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(1, 10, "19:00", "21:00", models.StatusConfirmed),
		reservation(2, 11, "19:00", "21:00", models.StatusConfirmed),
	}

	sel, err := Assign(testAreas(), snapshot, AssignRequest{
		PartySize: 2, StartTime: "19:30", DurationMinutes: 60,
	}, StaticCursors{})
	require.NoError(t, err)
	require.True(t, sel.Assigned)
	assert.Equal(t, "Terrace", sel.AreaName)
}

func TestAssignAreaRestriction(t *testing.T) {
	sel, err := Assign(testAreas(), nil, AssignRequest{
		PartySize: 2, StartTime: "19:00", DurationMinutes: 90,
		AreaIDs: []int64{2},
	}, StaticCursors{})
	require.NoError(t, err)
	require.True(t, sel.Assigned)
	assert.Equal(t, int64(20), sel.TableID)
}

func TestAssignIsIdempotentForUnchangedInputs(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(1, 11, "18:00", "20:00", models.StatusSeated),
	}
	req := AssignRequest{PartySize: 3, StartTime: "19:00", DurationMinutes: 90}

	first, err := Assign(testAreas(), snapshot, req, StaticCursors{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Assign(testAreas(), snapshot, req, StaticCursors{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAssignRoundRobinRotatesWithCursor(t *testing.T) {
	areas := []models.Area{
		{
			ID: 1, Name: "Bar", FillOrder: models.FillRoundRobin, Active: true, SortOrder: 1,
			Tables: []models.Table{
				{ID: 10, AreaID: 1, Name: "B1", MinCapacity: 1, MaxCapacity: 4, Active: true, SortOrder: 1},
				{ID: 11, AreaID: 1, Name: "B2", MinCapacity: 1, MaxCapacity: 4, Active: true, SortOrder: 2},
				{ID: 12, AreaID: 1, Name: "B3", MinCapacity: 1, MaxCapacity: 4, Active: true, SortOrder: 3},
			},
		},
	}
	req := AssignRequest{PartySize: 2, StartTime: "19:00", DurationMinutes: 60}

	for cursor, want := range map[int]int64{0: 10, 1: 11, 2: 12, 3: 10} {
		sel, err := Assign(areas, nil, req, StaticCursors{1: cursor})
		require.NoError(t, err)
		require.True(t, sel.Assigned)
		assert.Equal(t, want, sel.TableID, "cursor %d", cursor)
	}
}

func TestAssignCustomOrderUsesSortOrderVerbatim(t *testing.T) {
	areas := []models.Area{
		{
			ID: 1, Name: "Patio", FillOrder: models.FillCustom, Active: true, SortOrder: 1,
			Tables: []models.Table{
				{ID: 10, AreaID: 1, Name: "C1", MinCapacity: 1, MaxCapacity: 4, Active: true, AssignPriority: 1, SortOrder: 5},
				{ID: 11, AreaID: 1, Name: "C2", MinCapacity: 1, MaxCapacity: 4, Active: true, AssignPriority: 9, SortOrder: 1},
			},
		},
	}

	sel, err := Assign(areas, nil, AssignRequest{PartySize: 2, StartTime: "19:00", DurationMinutes: 60}, StaticCursors{})
	require.NoError(t, err)
	require.True(t, sel.Assigned)
	assert.Equal(t, int64(11), sel.TableID, "custom order ignores assign priority")
}

func TestAssignValidation(t *testing.T) {
	_, err := Assign(testAreas(), nil, AssignRequest{PartySize: 0, StartTime: "19:00", DurationMinutes: 60}, StaticCursors{})
	assert.Error(t, err)

	_, err = Assign(testAreas(), nil, AssignRequest{PartySize: 2, StartTime: "19:00", DurationMinutes: 0}, StaticCursors{})
	assert.Error(t, err)
}

func TestAssignRejectsWindowCrossingMidnight(t *testing.T) {
	_, err := Assign(testAreas(), nil, AssignRequest{PartySize: 2, StartTime: "23:00", DurationMinutes: 120}, StaticCursors{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAssignWindowEndingAtClosing(t *testing.T) {
	sel, err := Assign(testAreas(), nil, AssignRequest{PartySize: 2, StartTime: "22:00", DurationMinutes: 120}, StaticCursors{})
	require.NoError(t, err)
	require.True(t, sel.Assigned)
}

func TestAssignSkipsInactive(t *testing.T) {
	areas := testAreas()
	areas[0].Active = false
	areas[1].Tables[0].Active = false

	sel, err := Assign(areas, nil, AssignRequest{PartySize: 2, StartTime: "19:00", DurationMinutes: 60}, StaticCursors{})
	require.NoError(t, err)
	assert.False(t, sel.Assigned)
}
