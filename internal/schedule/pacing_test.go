package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maitred/internal/models"
)

func pacingReservation(id int64, start, end string, party int, status string) models.Reservation {
	return models.Reservation{ID: id, StartTime: start, EndTime: end, PartySize: party, Status: status}
}

func TestAggregateCountsCoveringGuests(t *testing.T) {
	snapshot := []models.Reservation{
		pacingReservation(1, "19:00", "21:00", 4, models.StatusConfirmed),
		pacingReservation(2, "19:30", "20:30", 2, models.StatusSeated),
		pacingReservation(3, "20:30", "22:00", 6, models.StatusConfirmed),
	}

	slots, err := Aggregate(snapshot, PacingConfig{
		StartTime: "19:00", EndTime: "21:00", SlotMinutes: 30, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, slots, 4)

	assert.Equal(t, 4, slots[0].GuestCount)  // 19:00, only r1
	assert.Equal(t, 6, slots[1].GuestCount)  // 19:30, r1+r2
	assert.Equal(t, 6, slots[2].GuestCount)  // 20:00, r1+r2
	assert.Equal(t, 10, slots[3].GuestCount) // 20:30, r1+r3 (r2 ends half-open)
}

func TestAggregateWrappedShift(t *testing.T) {
	snapshot := []models.Reservation{
		pacingReservation(1, "23:00", "24:00", 4, models.StatusConfirmed),
	}

	slots, err := Aggregate(snapshot, PacingConfig{
		StartTime: "18:00", EndTime: "01:00", SlotMinutes: 30, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, slots, 14) // 18:00 through 00:30

	assert.Equal(t, "18:00", slots[0].Start)
	assert.Equal(t, "23:30", slots[11].Start)
	assert.Equal(t, "00:00", slots[12].Start)
	assert.Equal(t, "00:30", slots[13].Start)

	assert.Equal(t, 4, slots[10].GuestCount) // 23:00
	assert.Equal(t, 4, slots[11].GuestCount) // 23:30
	assert.Equal(t, 0, slots[12].GuestCount) // past midnight, window ended
}

func TestAggregateOverLimitIsAdvisory(t *testing.T) {
	// Three active reservations totalling 12 guests over one slot,
	// limit 10 -> 120% over-limit
	snapshot := []models.Reservation{
		pacingReservation(1, "19:00", "20:00", 4, models.StatusConfirmed),
		pacingReservation(2, "19:00", "20:00", 4, models.StatusConfirmed),
		pacingReservation(3, "19:00", "20:00", 4, models.StatusSeated),
	}

	slots, err := Aggregate(snapshot, PacingConfig{
		StartTime: "19:00", EndTime: "19:15", SlotMinutes: 15, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)

	assert.Equal(t, 12, slots[0].GuestCount)
	assert.InDelta(t, 120.0, slots[0].Percent, 0.01)
	assert.Equal(t, PacingOverLimit, slots[0].Level)
}

func TestAggregateLevels(t *testing.T) {
	cases := []struct {
		guests int
		level  string
	}{
		{7, PacingNominal},    // 70%
		{8, PacingNearLimit},  // 80%
		{10, PacingNearLimit}, // 100%
		{11, PacingOverLimit}, // 110%
		{0, PacingNominal},
	}

	for _, c := range cases {
		snapshot := []models.Reservation{
			pacingReservation(1, "19:00", "20:00", c.guests, models.StatusConfirmed),
		}
		slots, err := Aggregate(snapshot, PacingConfig{
			StartTime: "19:00", EndTime: "19:15", SlotMinutes: 15, Limit: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, c.level, slots[0].Level, "%d guests", c.guests)
	}
}

func TestAggregateSkipsCancelledAndNoShow(t *testing.T) {
	snapshot := []models.Reservation{
		pacingReservation(1, "19:00", "20:00", 4, models.StatusCancelled),
		pacingReservation(2, "19:00", "20:00", 4, models.StatusNoShow),
		pacingReservation(3, "19:00", "20:00", 4, models.StatusCompleted),
	}

	slots, err := Aggregate(snapshot, PacingConfig{
		StartTime: "19:00", EndTime: "19:15", SlotMinutes: 15, Limit: 10,
	})
	require.NoError(t, err)
	// Completed still counts for pacing (guests were in the room);
	// cancelled and no-show never arrived.
	assert.Equal(t, 4, slots[0].GuestCount)
}

func TestAggregateIgnoreLimit(t *testing.T) {
	snapshot := []models.Reservation{
		pacingReservation(1, "19:00", "20:00", 40, models.StatusConfirmed),
	}

	slots, err := Aggregate(snapshot, PacingConfig{
		StartTime: "19:00", EndTime: "19:15", SlotMinutes: 15, Limit: 10, IgnoreLimit: true,
	})
	require.NoError(t, err)
	assert.Equal(t, PacingNominal, slots[0].Level)
	assert.Zero(t, slots[0].Percent)
}
