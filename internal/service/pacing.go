package service

import (
	"context"
	"fmt"

	apperrors "maitred/internal/errors"
	"maitred/internal/models"
	"maitred/internal/repository"
	"maitred/internal/schedule"
)

type PacingService struct {
	reservationRepo *repository.ReservationRepository
	layoutRepo      *repository.LayoutRepository
	defaults        PacingDefaults
}

func NewPacingService(reservationRepo *repository.ReservationRepository, layoutRepo *repository.LayoutRepository, defaults PacingDefaults) *PacingService {
	return &PacingService{
		reservationRepo: reservationRepo,
		layoutRepo:      layoutRepo,
		defaults:        defaults,
	}
}

// Slots aggregates the guest load of one shift on one date. The limit
// resolves override > default; the result is advisory and never blocks a
// booking.
func (s *PacingService) Slots(ctx context.Context, locationID int64, date string, shiftID, ticketID int64) ([]models.PacingSlotResponse, error) {
	shift, err := s.layoutRepo.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	if shift == nil {
		return nil, fmt.Errorf("%w: shift %d", apperrors.ErrNotFound, shiftID)
	}

	limit := s.defaults.Limit
	if ticketID != 0 {
		override, err := s.layoutRepo.GetOverride(ctx, shiftID, ticketID)
		if err != nil {
			return nil, fmt.Errorf("failed to get shift override: %w", err)
		}
		if override != nil && override.PacingLimit != nil {
			limit = *override.PacingLimit
		}
	}

	reservations, err := s.reservationRepo.ListByLocationDate(ctx, locationID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}

	slots, err := schedule.Aggregate(reservations, schedule.PacingConfig{
		StartTime:   shift.StartTime,
		EndTime:     shift.EndTime,
		SlotMinutes: shift.ArrivalInterval,
		Limit:       limit,
		IgnoreLimit: s.defaults.Disabled,
	})
	if err != nil {
		return nil, err
	}

	result := make([]models.PacingSlotResponse, len(slots))
	for i, slot := range slots {
		result[i] = models.PacingSlotResponse{
			Time:       slot.Start,
			GuestCount: slot.GuestCount,
			Limit:      slot.Limit,
			Percent:    slot.Percent,
			Level:      slot.Level,
		}
	}
	return result, nil
}
