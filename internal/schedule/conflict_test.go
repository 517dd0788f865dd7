package schedule

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "maitred/internal/errors"
	"maitred/internal/models"
)

func ptr[T any](v T) *T { return &v }

func reservation(id, tableID int64, start, end, status string) models.Reservation {
	return models.Reservation{
		ID:        id,
		TableID:   &tableID,
		StartTime: start,
		EndTime:   end,
		Status:    status,
		PartySize: 2,
	}
}

func TestFindConflictOverlap(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(1, 10, "19:00", "21:00", models.StatusConfirmed),
	}

	c, err := FindConflict(snapshot, 10, "19:30", "20:30", nil)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, int64(1), c.ID)
}

func TestFindConflictTouchingWindows(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(1, 10, "19:00", "20:00", models.StatusConfirmed),
	}

	// 20:00-21:00 touches 19:00-20:00 exactly; half-open windows never conflict
	c, err := FindConflict(snapshot, 10, "20:00", "21:00", nil)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = FindConflict(snapshot, 10, "18:00", "19:00", nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestConflictErrorCarriesConflictingWindow(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(1, 10, "19:00", "21:00", models.StatusConfirmed),
	}

	c, err := FindConflict(snapshot, 10, "19:30", "20:30", nil)
	require.NoError(t, err)
	require.NotNil(t, c)

	confErr := ConflictError(10, c)
	assert.Equal(t, int64(10), confErr.TableID)
	assert.Equal(t, int64(1), confErr.ReservationID)
	assert.Equal(t, "19:00", confErr.StartTime)
	assert.Equal(t, "21:00", confErr.EndTime)

	var typed *apperrors.TableConflictError
	wrapped := fmt.Errorf("move rejected: %w", confErr)
	require.ErrorAs(t, wrapped, &typed)
	assert.Equal(t, confErr, typed)
}

func TestFindConflictWindowEndingAtClosing(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(1, 10, "22:00", "24:00", models.StatusConfirmed),
	}

	c, err := FindConflict(snapshot, 10, "23:00", "24:00", nil)
	require.NoError(t, err)
	require.NotNil(t, c)

	c, err = FindConflict(snapshot, 10, "21:00", "22:00", nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestFindConflictSkipsInactiveStatuses(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(1, 10, "19:00", "21:00", models.StatusCancelled),
		reservation(2, 10, "19:00", "21:00", models.StatusNoShow),
		reservation(3, 10, "19:00", "21:00", models.StatusCompleted),
	}

	c, err := FindConflict(snapshot, 10, "19:30", "20:30", nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestFindConflictIgnoresOtherTables(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(1, 11, "19:00", "21:00", models.StatusConfirmed),
		{ID: 2, TableID: nil, StartTime: "19:00", EndTime: "21:00", Status: models.StatusConfirmed},
	}

	c, err := FindConflict(snapshot, 10, "19:00", "21:00", nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestFindConflictExcludesOwnReservation(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(1, 10, "19:00", "21:00", models.StatusConfirmed),
	}

	// Re-assigning reservation 1 onto its own window is fine
	c, err := FindConflict(snapshot, 10, "19:00", "21:00", ptr(int64(1)))
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestFindConflictReturnsFirstInSnapshotOrder(t *testing.T) {
	snapshot := []models.Reservation{
		reservation(2, 10, "20:00", "22:00", models.StatusSeated),
		reservation(1, 10, "19:00", "21:00", models.StatusConfirmed),
	}

	c, err := FindConflict(snapshot, 10, "19:30", "21:30", nil)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, int64(2), c.ID, "scan order is snapshot order, not earliest window")
}
