package timegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeMinutesRoundTrip(t *testing.T) {
	// minutesToTime(timeToMinutes(t)) == t over the whole 24x60 domain
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			s := MinutesToTime(h*60 + m)
			min, err := TimeToMinutes(s)
			require.NoError(t, err)
			assert.Equal(t, h*60+m, min)
			assert.Equal(t, s, MinutesToTime(min))
		}
	}
}

func TestTimeToMinutesRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"25:00", "24:30", "12:60", "noon", ""} {
		_, err := TimeToMinutes(bad)
		assert.Error(t, err, "expected error for %q", bad)
	}
}

func TestTimeToMinutesClosingBoundary(t *testing.T) {
	min, err := TimeToMinutes("24:00")
	require.NoError(t, err)
	assert.Equal(t, MinutesPerDay, min)
	assert.Equal(t, "24:00", MinutesToTime(min))
}

func TestWindowEnd(t *testing.T) {
	end, err := WindowEnd("19:00", 120)
	require.NoError(t, err)
	assert.Equal(t, "21:00", end)

	// ending exactly at midnight is the latest legal window
	end, err = WindowEnd("22:00", 120)
	require.NoError(t, err)
	assert.Equal(t, "24:00", end)

	_, err = WindowEnd("23:00", 120)
	assert.Error(t, err)

	_, err = WindowEnd("27:00", 60)
	assert.Error(t, err)
}

func TestPositionFor(t *testing.T) {
	cfg := Config{StartHour: 17, EndHour: 23, PixelsPerMinute: 2}

	pos, err := PositionFor("19:00", "21:00", cfg)
	require.NoError(t, err)
	assert.Equal(t, 240.0, pos.Left)  // 120 minutes past 17:00, 2 px each
	assert.Equal(t, 240.0, pos.Width) // 120 minute window

	pos, err = PositionFor("17:00", "17:15", cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pos.Left)
	assert.Equal(t, 30.0, pos.Width)
}

func TestSnapMinutes(t *testing.T) {
	assert.Equal(t, 0, SnapMinutes(7))
	assert.Equal(t, 15, SnapMinutes(8))
	assert.Equal(t, 15, SnapMinutes(20))
	assert.Equal(t, 30, SnapMinutes(23))
	assert.Equal(t, 1140, SnapMinutes(1141))
}

func TestProposeResizeSnapsAndKeepsMinDuration(t *testing.T) {
	cfg := Config{StartHour: 17, EndHour: 23, PixelsPerMinute: 2}

	// +37 px = +18.5 min, snaps to +15
	w, err := ProposeResize("19:00", "20:00", 37, cfg)
	require.NoError(t, err)
	assert.Equal(t, "19:00", MinutesToTime(w.Start))
	assert.Equal(t, "20:15", MinutesToTime(w.End))
	assert.Zero(t, w.Start%SnapStep)
	assert.Zero(t, w.End%SnapStep)

	// Shrinking past the minimum clamps to a 15-minute window
	w, err = ProposeResize("19:00", "20:00", -500, cfg)
	require.NoError(t, err)
	assert.Equal(t, "19:15", MinutesToTime(w.End))
	assert.GreaterOrEqual(t, w.End-w.Start, MinDuration)

	// Growing past the grid edge clamps to the edge
	w, err = ProposeResize("22:00", "22:30", 1000, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.EndMinute(), w.End)
}

func TestProposeDragPreservesDurationAndClamps(t *testing.T) {
	cfg := Config{StartHour: 17, EndHour: 23, PixelsPerMinute: 2}

	w, err := ProposeDrag("19:00", "20:30", 60, cfg) // +30 min
	require.NoError(t, err)
	assert.Equal(t, "19:30", MinutesToTime(w.Start))
	assert.Equal(t, "21:00", MinutesToTime(w.End))
	assert.Equal(t, 90, w.End-w.Start)

	// Dragging before opening clamps to the left edge
	w, err = ProposeDrag("17:30", "19:00", -1000, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.StartMinute(), w.Start)
	assert.Equal(t, 90, w.End-w.Start)

	// Dragging past closing clamps to the right edge
	w, err = ProposeDrag("21:00", "22:00", 1000, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.EndMinute(), w.End)
	assert.Equal(t, 60, w.End-w.Start)
}
