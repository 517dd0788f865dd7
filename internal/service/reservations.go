package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "maitred/internal/errors"
	"maitred/internal/logger"
	"maitred/internal/messaging"
	"maitred/internal/models"
	"maitred/internal/repository"
	"maitred/internal/schedule"
	"maitred/internal/search"
	"maitred/internal/timegrid"
)

type ReservationService struct {
	reservationRepo *repository.ReservationRepository
	layoutRepo      *repository.LayoutRepository
	auditRepo       *repository.AuditRepository
	natsClient      *messaging.NATSClient
	index           *search.ReservationIndex
}

func NewReservationService(reservationRepo *repository.ReservationRepository, layoutRepo *repository.LayoutRepository, auditRepo *repository.AuditRepository, natsClient *messaging.NATSClient, index *search.ReservationIndex) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		layoutRepo:      layoutRepo,
		auditRepo:       auditRepo,
		natsClient:      natsClient,
		index:           index,
	}
}

// effectiveBooking resolves a ticket's duration and party bounds for one
// shift, applying the (shift, ticket) override and the squeeze setting.
type effectiveBooking struct {
	DurationMinutes int
	MinPartySize    int
	MaxPartySize    int
	AreaIDs         []int64
	PacingLimit     *int
}

func (s *ReservationService) resolveBooking(ctx context.Context, shiftID, ticketID int64, squeeze bool) (*effectiveBooking, error) {
	ticket, err := s.layoutRepo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: ticket %d", apperrors.ErrNotFound, ticketID)
	}

	override, err := s.layoutRepo.GetOverride(ctx, shiftID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift override: %w", err)
	}

	eff := &effectiveBooking{
		DurationMinutes: ticket.DurationMinutes + ticket.BufferMinutes,
		MinPartySize:    ticket.MinPartySize,
		MaxPartySize:    ticket.MaxPartySize,
	}

	if override != nil {
		if override.DurationMinutes != nil {
			eff.DurationMinutes = *override.DurationMinutes + ticket.BufferMinutes
		}
		if override.MinPartySize != nil {
			eff.MinPartySize = *override.MinPartySize
		}
		if override.MaxPartySize != nil {
			eff.MaxPartySize = *override.MaxPartySize
		}
		if squeeze && override.SqueezeDurationMinutes != nil {
			eff.DurationMinutes = *override.SqueezeDurationMinutes
		}
		eff.AreaIDs = override.AreaIDs
		eff.PacingLimit = override.PacingLimit
	}

	return eff, nil
}

// Create validates and persists a new reservation. A table may be attached
// directly (operator choice); like every manual assignment the conflict
// check warns but does not block. Failed validation is rejected before any
// persistence and leaves no audit entry.
func (s *ReservationService) Create(ctx context.Context, req *models.CreateReservationRequest, actorID *int64) (*models.CreateReservationResponse, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	eff, err := s.resolveBooking(ctx, req.ShiftID, req.TicketID, req.Squeeze)
	if err != nil {
		return nil, err
	}
	if req.PartySize < eff.MinPartySize || req.PartySize > eff.MaxPartySize {
		return nil, apperrors.Validationf("party size %d outside ticket bounds [%d, %d]",
			req.PartySize, eff.MinPartySize, eff.MaxPartySize)
	}

	endTime, err := timegrid.WindowEnd(req.StartTime, eff.DurationMinutes)
	if err != nil {
		return nil, apperrors.Validationf("%v", err)
	}

	status := req.InitialStatus
	if status == "" {
		status = models.StatusConfirmed
	}
	if !schedule.ValidInitialStatus(status) {
		return nil, apperrors.Validationf("invalid initial status %q", status)
	}

	res := &models.Reservation{
		LocationID:    req.LocationID,
		CustomerID:    req.CustomerID,
		ShiftID:       req.ShiftID,
		TicketID:      req.TicketID,
		TableID:       req.TableID,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       endTime,
		PartySize:     req.PartySize,
		Status:        status,
		Channel:       req.Channel,
		GuestNotes:    req.GuestNotes,
		InternalNotes: req.InternalNotes,
		Squeeze:       req.Squeeze,
	}
	if status == models.StatusSeated {
		now := time.Now()
		res.CheckedInAt = &now
	}
	if status == models.StatusOption {
		expiry := time.Now().Add(24 * time.Hour)
		res.OptionExpiresAt = &expiry
	}

	tx, err := s.reservationRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.reservationRepo.LockLocationDateTx(ctx, tx, req.LocationID, req.Date); err != nil {
		return nil, fmt.Errorf("failed to lock schedule: %w", err)
	}

	if err := s.reservationRepo.CreateTx(ctx, tx, res); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	changes, _ := json.Marshal(map[string]any{
		"status":     res.Status,
		"table_id":   res.TableID,
		"party_size": res.PartySize,
	})
	err = s.auditRepo.InsertTx(ctx, tx, &models.AuditLogEntry{
		SubjectType: "reservation",
		SubjectID:   res.ID,
		ActorID:     actorID,
		Action:      models.AuditActionCreated,
		Changes:     changes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.indexReservation(ctx, res)

	event := models.ReservationCreatedEvent{
		ReservationID: res.ID,
		LocationID:    res.LocationID,
		Date:          res.Date,
		StartTime:     res.StartTime,
		PartySize:     res.PartySize,
		Channel:       res.Channel,
		Timestamp:     time.Now(),
	}
	if err := s.natsClient.Publish(models.EventReservationCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish reservation created event",
			"error", err,
			"reservation_id", res.ID,
			"event_type", models.EventReservationCreated)
	}

	return &models.CreateReservationResponse{ID: res.ID}, nil
}

// TransitionStatus applies one status change through the state machine.
// The status write, the checked-in stamp, the table release and the audit
// entry are one transaction.
func (s *ReservationService) TransitionStatus(ctx context.Context, req *models.TransitionStatusRequest, actor *models.User) error {
	tx, err := s.reservationRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.reservationRepo.GetByIDTx(ctx, tx, req.ReservationID)
	if err != nil {
		return fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return fmt.Errorf("%w: reservation %d", apperrors.ErrNotFound, req.ReservationID)
	}

	actorRole := ""
	var actorID *int64
	if actor != nil {
		actorRole = actor.Role
		actorID = &actor.UserID
	}

	plan, err := schedule.PlanTransition(res, schedule.TransitionRequest{
		Target:     req.NewStatus,
		ActorRole:  actorRole,
		Reason:     req.Reason,
		IsOverride: req.IsOverride,
	})
	if err != nil {
		return err
	}

	if err := s.reservationRepo.ApplyTransitionTx(ctx, tx, res.ID, plan.NewStatus, plan.SetCheckedIn, plan.ReleaseTable); err != nil {
		return fmt.Errorf("failed to apply transition: %w", err)
	}

	changes, _ := json.Marshal(map[string]any{
		"old_status": plan.OldStatus,
		"new_status": plan.NewStatus,
	})
	err = s.auditRepo.InsertTx(ctx, tx, &models.AuditLogEntry{
		SubjectType: "reservation",
		SubjectID:   res.ID,
		ActorID:     actorID,
		Action:      models.AuditActionStatusChange,
		Changes:     changes,
		Metadata: models.AuditMetadata{
			Reason:     plan.Reason,
			IsOverride: plan.IsOverride,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	res.Status = plan.NewStatus
	if plan.ReleaseTable {
		res.TableID = nil
	}
	s.indexReservation(ctx, res)

	event := models.ReservationStatusEvent{
		ReservationID: res.ID,
		OldStatus:     plan.OldStatus,
		NewStatus:     plan.NewStatus,
		ActorID:       actorID,
		IsOverride:    plan.IsOverride,
		Reason:        plan.Reason,
		Timestamp:     time.Now(),
	}
	if err := s.natsClient.Publish(models.EventReservationStatus, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish status change event",
			"error", err,
			"reservation_id", res.ID,
			"event_type", models.EventReservationStatus)
	}

	return nil
}

// MoveTable sets or clears a reservation's table by operator choice. By
// default a conflicting occupancy is surfaced as a warning, not a block: the
// operator override wins. With Strict set the move fails with the conflict
// instead. Unassigning never consults the detector.
func (s *ReservationService) MoveTable(ctx context.Context, req *models.MoveTableRequest, actorID *int64) (*models.MoveTableResponse, error) {
	tx, err := s.reservationRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.reservationRepo.GetByIDTx(ctx, tx, req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: reservation %d", apperrors.ErrNotFound, req.ReservationID)
	}

	resp := &models.MoveTableResponse{Moved: true}

	if req.NewTableID != nil {
		table, err := s.layoutRepo.GetTable(ctx, *req.NewTableID)
		if err != nil {
			return nil, fmt.Errorf("failed to get table: %w", err)
		}
		if table == nil {
			return nil, fmt.Errorf("%w: table %d", apperrors.ErrNotFound, *req.NewTableID)
		}

		if err := s.reservationRepo.LockLocationDateTx(ctx, tx, res.LocationID, res.Date); err != nil {
			return nil, fmt.Errorf("failed to lock schedule: %w", err)
		}
		snapshot, err := s.reservationRepo.SnapshotForDateTx(ctx, tx, res.LocationID, res.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to read schedule: %w", err)
		}

		conflict, err := schedule.FindConflict(snapshot, *req.NewTableID, res.StartTime, res.EndTime, &res.ID)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			if req.Strict {
				return nil, schedule.ConflictError(*req.NewTableID, conflict)
			}
			resp.Warning = &models.ConflictResult{
				HasConflict:   true,
				TableID:       *req.NewTableID,
				ReservationID: conflict.ID,
				StartTime:     conflict.StartTime,
				EndTime:       conflict.EndTime,
			}
		}
	}

	if err := s.reservationRepo.UpdateTableTx(ctx, tx, res.ID, req.NewTableID); err != nil {
		return nil, fmt.Errorf("failed to move table: %w", err)
	}

	changes, _ := json.Marshal(map[string]any{
		"old_table_id": res.TableID,
		"new_table_id": req.NewTableID,
	})
	err = s.auditRepo.InsertTx(ctx, tx, &models.AuditLogEntry{
		SubjectType: "reservation",
		SubjectID:   res.ID,
		ActorID:     actorID,
		Action:      models.AuditActionFieldUpdate,
		Changes:     changes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.publishMove(ctx, res, req.NewTableID)
	return resp, nil
}

func (s *ReservationService) publishMove(ctx context.Context, res *models.Reservation, newTableID *int64) {
	if newTableID != nil {
		event := models.ReservationAssignedEvent{
			ReservationID: res.ID,
			TableID:       *newTableID,
			Manual:        true,
			Timestamp:     time.Now(),
		}
		if err := s.natsClient.Publish(models.EventReservationAssigned, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish assignment event",
				"error", err, "reservation_id", res.ID)
		}
		return
	}

	if res.TableID != nil {
		event := models.ReservationUnassignedEvent{
			ReservationID: res.ID,
			TableID:       *res.TableID,
			Timestamp:     time.Now(),
		}
		if err := s.natsClient.Publish(models.EventReservationUnassigned, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish unassignment event",
				"error", err, "reservation_id", res.ID)
		}
	}
}

// List returns the reservations of one location and date.
func (s *ReservationService) List(ctx context.Context, locationID int64, date string) (models.ListReservationsResponse, error) {
	reservations, err := s.reservationRepo.ListByLocationDate(ctx, locationID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	result := make(models.ListReservationsResponse, len(reservations))
	for i, r := range reservations {
		result[i] = models.ListReservationsResponseItem{
			ID:        r.ID,
			Date:      r.Date,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
			PartySize: r.PartySize,
			Status:    r.Status,
			TableID:   r.TableID,
			Channel:   r.Channel,
		}
	}
	return result, nil
}

// Search queries the Elasticsearch reservation index.
func (s *ReservationService) Search(ctx context.Context, locationID int64, query, date string, page, pageSize int) ([]search.ReservationDoc, error) {
	if s.index == nil {
		return nil, fmt.Errorf("search index is not configured")
	}
	return s.index.Search(ctx, locationID, query, date, page, pageSize)
}

// Timeline renders the day sheet: every reservation of the date with its
// grid position.
func (s *ReservationService) Timeline(ctx context.Context, locationID int64, date string, cfg timegrid.Config) (*models.TimelineResponse, error) {
	reservations, err := s.reservationRepo.ListByLocationDate(ctx, locationID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	resp := &models.TimelineResponse{Date: date, Entries: make([]models.TimelineEntry, 0, len(reservations))}
	for _, r := range reservations {
		pos, err := timegrid.PositionFor(r.StartTime, r.EndTime, cfg)
		if err != nil {
			return nil, fmt.Errorf("reservation %d: %w", r.ID, err)
		}
		resp.Entries = append(resp.Entries, models.TimelineEntry{
			Reservation: r,
			Left:        pos.Left,
			Width:       pos.Width,
		})
	}
	return resp, nil
}

// ExpireOptions cancels option reservations whose hold lapsed. Runs as the
// system actor from the sweeper; option -> cancelled is a normal-path edge.
// The candidate scan is unlocked, so each row is re-checked under FOR UPDATE
// before cancelling — a guest confirming between scan and sweep keeps their
// reservation.
func (s *ReservationService) ExpireOptions(ctx context.Context) (int, error) {
	now := time.Now()
	expired, err := s.reservationRepo.GetExpiredOptions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to get expired options: %w", err)
	}

	count := 0
	for i := range expired {
		cancelled, err := s.expireOption(ctx, expired[i].ID, now)
		if err != nil {
			logger.WithReservation(expired[i].ID).Error("Failed to expire option", "error", err)
			continue
		}
		if !cancelled {
			continue
		}
		count++

		event := models.ReservationExpiredEvent{
			ReservationID: expired[i].ID,
			ExpiredAt:     *expired[i].OptionExpiresAt,
			Timestamp:     time.Now(),
		}
		if err := s.natsClient.Publish(models.EventReservationExpired, event); err != nil {
			logger.WithReservation(expired[i].ID).Error("Failed to publish option expired event", "error", err)
		}
	}
	return count, nil
}

// expireOption cancels one lapsed option. Returns false without writing when
// the locked row is no longer an expired option.
func (s *ReservationService) expireOption(ctx context.Context, id int64, now time.Time) (bool, error) {
	tx, err := s.reservationRepo.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.reservationRepo.GetByIDTx(ctx, tx, id)
	if err != nil {
		return false, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil || !schedule.OptionLapsed(res, now) {
		return false, nil
	}

	plan, err := schedule.PlanTransition(res, schedule.TransitionRequest{
		Target: models.StatusCancelled,
		Reason: "option expired",
	})
	if err != nil {
		return false, err
	}

	if err := s.reservationRepo.ApplyTransitionTx(ctx, tx, res.ID, plan.NewStatus, plan.SetCheckedIn, plan.ReleaseTable); err != nil {
		return false, fmt.Errorf("failed to apply transition: %w", err)
	}

	changes, _ := json.Marshal(map[string]any{
		"old_status": plan.OldStatus,
		"new_status": plan.NewStatus,
	})
	err = s.auditRepo.InsertTx(ctx, tx, &models.AuditLogEntry{
		SubjectType: "reservation",
		SubjectID:   res.ID,
		Action:      models.AuditActionStatusChange,
		Changes:     changes,
		Metadata:    models.AuditMetadata{Reason: plan.Reason},
	})
	if err != nil {
		return false, fmt.Errorf("failed to write audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}

	res.Status = plan.NewStatus
	if plan.ReleaseTable {
		res.TableID = nil
	}
	s.indexReservation(ctx, res)

	event := models.ReservationStatusEvent{
		ReservationID: res.ID,
		OldStatus:     plan.OldStatus,
		NewStatus:     plan.NewStatus,
		Reason:        plan.Reason,
		Timestamp:     time.Now(),
	}
	if err := s.natsClient.Publish(models.EventReservationStatus, event); err != nil {
		logger.WithReservation(res.ID).Error("Failed to publish status change event", "error", err)
	}

	return true, nil
}

// GetAuditLog returns the ledger of one reservation.
func (s *ReservationService) GetAuditLog(ctx context.Context, reservationID int64) ([]models.AuditLogEntry, error) {
	return s.auditRepo.ListBySubject(ctx, "reservation", reservationID)
}

func (s *ReservationService) indexReservation(ctx context.Context, res *models.Reservation) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, res); err != nil {
		logger.WithReservation(res.ID).Error("Failed to index reservation", "error", err)
	}
}

func validateCreate(req *models.CreateReservationRequest) error {
	if req.PartySize <= 0 {
		return apperrors.Validationf("party size must be positive, got %d", req.PartySize)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return apperrors.Validationf("invalid date %q", req.Date)
	}
	switch req.Channel {
	case models.ChannelOperator, models.ChannelPhone, models.ChannelWidget,
		models.ChannelWalkIn, models.ChannelGoogle, models.ChannelWhatsApp:
	default:
		return apperrors.Validationf("unknown channel %q", req.Channel)
	}
	return nil
}
