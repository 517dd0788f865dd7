package schedule

import (
	"fmt"

	"maitred/internal/models"
	"maitred/internal/timegrid"
)

// Pacing levels for the attention color scale
const (
	PacingNominal   = "nominal"    // <= 70% of limit
	PacingNearLimit = "near_limit" // 71-100%
	PacingOverLimit = "over_limit" // > 100%
)

// DefaultSlotMinutes is the usual pacing slot size.
const DefaultSlotMinutes = 15

// PacingConfig controls the aggregation window and limits
type PacingConfig struct {
	StartTime   string // inclusive, HH:MM
	EndTime     string // exclusive, HH:MM
	SlotMinutes int
	Limit       int  // guests per slot; shift/ticket overrides resolve before this
	IgnoreLimit bool // globally disable the limit comparison
}

// PacingSlot is the guest load of one time slot. The signal is advisory:
// an over-limit slot never blocks reservation creation by itself.
type PacingSlot struct {
	Start      string  `json:"start"`
	GuestCount int     `json:"guest_count"`
	Limit      int     `json:"limit"`
	Percent    float64 `json:"percent"`
	Level      string  `json:"level"`
}

// Aggregate computes, for each slot of the configured window, the number of
// guests whose reservation window covers the slot start, and grades it
// against the limit. Cancelled and no-show reservations do not count.
func Aggregate(reservations []models.Reservation, cfg PacingConfig) ([]PacingSlot, error) {
	if cfg.SlotMinutes <= 0 {
		cfg.SlotMinutes = DefaultSlotMinutes
	}
	startMin, err := timegrid.TimeToMinutes(cfg.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid pacing start: %w", err)
	}
	endMin, err := timegrid.TimeToMinutes(cfg.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid pacing end: %w", err)
	}
	if endMin <= startMin {
		// shift wraps past midnight (e.g. 18:00-01:00)
		endMin += timegrid.MinutesPerDay
	}

	type window struct {
		start, end, guests int
	}
	windows := make([]window, 0, len(reservations))
	for _, r := range reservations {
		if r.Status == models.StatusCancelled || r.Status == models.StatusNoShow {
			continue
		}
		ws, err := timegrid.TimeToMinutes(r.StartTime)
		if err != nil {
			return nil, fmt.Errorf("reservation %d: %w", r.ID, err)
		}
		we, err := timegrid.TimeToMinutes(r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("reservation %d: %w", r.ID, err)
		}
		windows = append(windows, window{start: ws, end: we, guests: r.PartySize})
	}

	var slots []PacingSlot
	for slot := startMin; slot < endMin; slot += cfg.SlotMinutes {
		slotOfDay := slot % timegrid.MinutesPerDay
		count := 0
		for _, w := range windows {
			if w.start <= slotOfDay && slotOfDay < w.end {
				count += w.guests
			}
		}
		slots = append(slots, gradeSlot(slotOfDay, count, cfg))
	}

	return slots, nil
}

func gradeSlot(slotStart, count int, cfg PacingConfig) PacingSlot {
	slot := PacingSlot{
		Start:      timegrid.MinutesToTime(slotStart),
		GuestCount: count,
		Limit:      cfg.Limit,
	}

	if cfg.IgnoreLimit || cfg.Limit <= 0 {
		slot.Level = PacingNominal
		return slot
	}

	slot.Percent = float64(count) / float64(cfg.Limit) * 100
	switch {
	case slot.Percent > 100:
		slot.Level = PacingOverLimit
	case slot.Percent > 70:
		slot.Level = PacingNearLimit
	default:
		slot.Level = PacingNominal
	}
	return slot
}
