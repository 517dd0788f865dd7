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
)

type AssignmentService struct {
	reservationRepo *repository.ReservationRepository
	layoutRepo      *repository.LayoutRepository
	cursorRepo      *repository.CursorRepository
	auditRepo       *repository.AuditRepository
	natsClient      *messaging.NATSClient
}

func NewAssignmentService(reservationRepo *repository.ReservationRepository, layoutRepo *repository.LayoutRepository, cursorRepo *repository.CursorRepository, auditRepo *repository.AuditRepository, natsClient *messaging.NATSClient) *AssignmentService {
	return &AssignmentService{
		reservationRepo: reservationRepo,
		layoutRepo:      layoutRepo,
		cursorRepo:      cursorRepo,
		auditRepo:       auditRepo,
		natsClient:      natsClient,
	}
}

// resolveRequest loads layout and ticket settings and builds the engine
// request. Duration falls back to the ticket's effective duration when the
// caller leaves it zero.
func (s *AssignmentService) resolveRequest(ctx context.Context, req *models.AssignmentRequest) ([]models.Area, schedule.AssignRequest, error) {
	areas, err := s.layoutRepo.AreasWithTables(ctx, req.LocationID)
	if err != nil {
		return nil, schedule.AssignRequest{}, fmt.Errorf("failed to load areas: %w", err)
	}

	engineReq := schedule.AssignRequest{
		PartySize:            req.PartySize,
		StartTime:            req.Time,
		DurationMinutes:      req.DurationMinutes,
		ExcludeReservationID: req.ReservationID,
	}

	ticket, err := s.layoutRepo.GetTicket(ctx, req.TicketID)
	if err != nil {
		return nil, schedule.AssignRequest{}, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, schedule.AssignRequest{}, fmt.Errorf("%w: ticket %d", apperrors.ErrNotFound, req.TicketID)
	}

	override, err := s.layoutRepo.GetOverride(ctx, req.ShiftID, req.TicketID)
	if err != nil {
		return nil, schedule.AssignRequest{}, fmt.Errorf("failed to get shift override: %w", err)
	}

	if engineReq.DurationMinutes == 0 {
		engineReq.DurationMinutes = ticket.DurationMinutes + ticket.BufferMinutes
		if override != nil && override.DurationMinutes != nil {
			engineReq.DurationMinutes = *override.DurationMinutes + ticket.BufferMinutes
		}
	}
	if override != nil {
		engineReq.AreaIDs = override.AreaIDs
	}

	return areas, engineReq, nil
}

// Preview runs a speculative assignment against the current snapshot. It
// never persists, never advances the round-robin cursor and echoes the
// client's sequence number so stale responses can be discarded.
func (s *AssignmentService) Preview(ctx context.Context, req *models.AssignmentRequest) (*models.AssignmentResult, error) {
	areas, engineReq, err := s.resolveRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.reservationRepo.ListByLocationDate(ctx, req.LocationID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}

	cursors, err := s.cursorRepo.ForLocation(ctx, req.LocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cursors: %w", err)
	}

	sel, err := schedule.Assign(areas, snapshot, engineReq, schedule.StaticCursors(cursors))
	if err != nil {
		return nil, err
	}

	return selectionResult(sel, req.Sequence), nil
}

// Commit persists an assignment for a concrete reservation. The snapshot is
// re-read under the location+date lock, so a table judged free during
// preview that was taken since is skipped and the engine picks the next
// candidate. Snapshot read, conflict validation, table write, cursor
// advance and audit entry are one transaction.
func (s *AssignmentService) Commit(ctx context.Context, req *models.AssignmentRequest) (*models.AssignmentResult, error) {
	if req.ReservationID == nil {
		return nil, apperrors.Validationf("commit requires a reservation id")
	}

	areas, engineReq, err := s.resolveRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	tx, err := s.reservationRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.reservationRepo.LockLocationDateTx(ctx, tx, req.LocationID, req.Date); err != nil {
		return nil, fmt.Errorf("failed to lock schedule: %w", err)
	}

	res, err := s.reservationRepo.GetByIDTx(ctx, tx, *req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: reservation %d", apperrors.ErrNotFound, *req.ReservationID)
	}

	snapshot, err := s.reservationRepo.SnapshotForDateTx(ctx, tx, req.LocationID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}

	cursors, err := s.cursorRepo.ForLocation(ctx, req.LocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cursors: %w", err)
	}

	sel, err := schedule.Assign(areas, snapshot, engineReq, schedule.StaticCursors(cursors))
	if err != nil {
		return nil, err
	}
	if !sel.Assigned {
		// Normal outcome; nothing is written
		return selectionResult(sel, req.Sequence), nil
	}

	if err := s.reservationRepo.UpdateTableTx(ctx, tx, res.ID, &sel.TableID); err != nil {
		return nil, fmt.Errorf("failed to assign table: %w", err)
	}

	if area := areaOfTable(areas, sel.TableID); area != nil && area.FillOrder == models.FillRoundRobin {
		if err := s.cursorRepo.AdvanceTx(ctx, tx, area.ID); err != nil {
			return nil, fmt.Errorf("failed to advance round-robin cursor: %w", err)
		}
	}

	changes, _ := json.Marshal(map[string]any{
		"old_table_id": res.TableID,
		"new_table_id": sel.TableID,
	})
	err = s.auditRepo.InsertTx(ctx, tx, &models.AuditLogEntry{
		SubjectType: "reservation",
		SubjectID:   res.ID,
		Action:      models.AuditActionFieldUpdate,
		Changes:     changes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	event := models.ReservationAssignedEvent{
		ReservationID: res.ID,
		TableID:       sel.TableID,
		Manual:        false,
		Timestamp:     time.Now(),
	}
	if err := s.natsClient.Publish(models.EventReservationAssigned, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish assignment event",
			"error", err,
			"reservation_id", res.ID,
			"event_type", models.EventReservationAssigned)
	}

	return selectionResult(sel, req.Sequence), nil
}

// CheckConflict runs the detector against the live reservation set of the
// table's date.
func (s *AssignmentService) CheckConflict(ctx context.Context, locationID int64, tableID int64, date, startTime, endTime string, excludeID *int64) (*models.ConflictResult, error) {
	snapshot, err := s.reservationRepo.ListByLocationDate(ctx, locationID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}

	conflict, err := schedule.FindConflict(snapshot, tableID, startTime, endTime, excludeID)
	if err != nil {
		return nil, err
	}

	if conflict == nil {
		return &models.ConflictResult{HasConflict: false}, nil
	}
	return &models.ConflictResult{
		HasConflict:   true,
		TableID:       tableID,
		ReservationID: conflict.ID,
		StartTime:     conflict.StartTime,
		EndTime:       conflict.EndTime,
	}, nil
}

func selectionResult(sel schedule.Selection, sequence uint64) *models.AssignmentResult {
	result := &models.AssignmentResult{
		Assigned: sel.Assigned,
		Sequence: sequence,
	}
	if sel.Assigned {
		result.TableID = &sel.TableID
		result.TableName = sel.TableName
		result.AreaName = sel.AreaName
	}
	return result
}

func areaOfTable(areas []models.Area, tableID int64) *models.Area {
	for i := range areas {
		for _, t := range areas[i].Tables {
			if t.ID == tableID {
				return &areas[i]
			}
		}
	}
	return nil
}
