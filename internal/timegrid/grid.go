package timegrid

import (
	"fmt"
	"math"
)

// SnapStep is the grid granularity in minutes. Every proposed start and end
// produced by resize/drag snapping lands on a multiple of it.
const SnapStep = 15

// MinDuration is the shortest reservation window a resize may produce.
const MinDuration = 15

// MinutesPerDay bounds every window: reservations end at "24:00" at the
// latest and never cross midnight.
const MinutesPerDay = 24 * 60

// Config describes the visible grid of one day sheet
type Config struct {
	StartHour       int
	EndHour         int
	PixelsPerMinute float64
}

// Position is a reservation block in grid coordinates
type Position struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Window is a candidate time window in minutes from midnight
type Window struct {
	Start int
	End   int
}

// TimeToMinutes converts "HH:MM" to minutes from midnight. "24:00" is
// accepted as the closing boundary so a window may end exactly at midnight.
func TimeToMinutes(t string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(t, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", t, err)
	}
	if hh == 24 && mm == 0 {
		return MinutesPerDay, nil
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("time %q out of range", t)
	}
	return hh*60 + mm, nil
}

// MinutesToTime converts minutes from midnight back to "HH:MM".
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// WindowEnd computes the half-open end of a window starting at start and
// lasting durationMinutes. Windows never cross midnight; ending exactly at
// "24:00" is the latest legal end.
func WindowEnd(start string, durationMinutes int) (string, error) {
	startMin, err := TimeToMinutes(start)
	if err != nil {
		return "", err
	}
	end := startMin + durationMinutes
	if end > MinutesPerDay {
		return "", fmt.Errorf("window %s + %dm crosses midnight", start, durationMinutes)
	}
	return MinutesToTime(end), nil
}

// StartMinute returns the minute offset of the left edge of the grid.
func (c Config) StartMinute() int { return c.StartHour * 60 }

// EndMinute returns the minute offset of the right edge of the grid.
func (c Config) EndMinute() int { return c.EndHour * 60 }

// PositionFor maps a start/end window to a left offset and width in pixels.
func PositionFor(start, end string, cfg Config) (Position, error) {
	startMin, err := TimeToMinutes(start)
	if err != nil {
		return Position{}, err
	}
	endMin, err := TimeToMinutes(end)
	if err != nil {
		return Position{}, err
	}

	return Position{
		Left:  float64(startMin-cfg.StartMinute()) * cfg.PixelsPerMinute,
		Width: float64(endMin-startMin) * cfg.PixelsPerMinute,
	}, nil
}

// SnapMinutes rounds a minute offset to the nearest SnapStep multiple.
func SnapMinutes(m int) int {
	return int(math.Round(float64(m)/SnapStep)) * SnapStep
}

// DeltaToMinutes converts a pixel delta from a pointer interaction into a
// snapped minute delta.
func DeltaToMinutes(deltaPx float64, cfg Config) int {
	if cfg.PixelsPerMinute == 0 {
		return 0
	}
	return SnapMinutes(int(math.Round(deltaPx / cfg.PixelsPerMinute)))
}

// ProposeResize applies a pixel delta to the end edge of a window and
// returns the snapped candidate. The candidate always keeps at least
// MinDuration and never crosses the grid bounds. The caller still has to
// run the candidate through conflict detection before offering it.
func ProposeResize(start, end string, deltaPx float64, cfg Config) (Window, error) {
	startMin, err := TimeToMinutes(start)
	if err != nil {
		return Window{}, err
	}
	endMin, err := TimeToMinutes(end)
	if err != nil {
		return Window{}, err
	}

	newEnd := SnapMinutes(endMin + DeltaToMinutes(deltaPx, cfg))
	if newEnd < startMin+MinDuration {
		newEnd = startMin + MinDuration
	}
	if newEnd > cfg.EndMinute() {
		newEnd = cfg.EndMinute()
	}

	return Window{Start: startMin, End: newEnd}, nil
}

// ProposeDrag shifts a whole window by a pixel delta, preserving the
// original duration, snapping the new start and clamping both edges to the
// grid bounds.
func ProposeDrag(start, end string, deltaPx float64, cfg Config) (Window, error) {
	startMin, err := TimeToMinutes(start)
	if err != nil {
		return Window{}, err
	}
	endMin, err := TimeToMinutes(end)
	if err != nil {
		return Window{}, err
	}

	duration := endMin - startMin
	newStart := SnapMinutes(startMin + DeltaToMinutes(deltaPx, cfg))

	if newStart < cfg.StartMinute() {
		newStart = cfg.StartMinute()
	}
	if newStart+duration > cfg.EndMinute() {
		newStart = cfg.EndMinute() - duration
	}

	return Window{Start: newStart, End: newStart + duration}, nil
}

// Times renders a window back to "HH:MM" strings.
func (w Window) Times() (string, string) {
	return MinutesToTime(w.Start), MinutesToTime(w.End)
}
