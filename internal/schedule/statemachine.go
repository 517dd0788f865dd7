package schedule

import (
	"fmt"
	"time"

	apperrors "maitred/internal/errors"
	"maitred/internal/models"
)

// allowedTransitions is the normal-path transition graph. Terminal statuses
// have no outbound edges; leaving them takes an authorized override.
var allowedTransitions = map[string][]string{
	models.StatusDraft:          {models.StatusConfirmed, models.StatusOption, models.StatusCancelled},
	models.StatusPendingPayment: {models.StatusCancelled},
	models.StatusOption:         {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:      {models.StatusSeated, models.StatusNoShow, models.StatusCancelled},
	models.StatusSeated:         {models.StatusCompleted},
	models.StatusCompleted:      {},
	models.StatusNoShow:         {},
	models.StatusCancelled:      {},
}

// OptionLapsed reports whether a reservation is an option whose hold has
// expired. The sweep re-checks this on the locked row before cancelling: a
// guest may have confirmed between the candidate scan and the transition.
func OptionLapsed(r *models.Reservation, now time.Time) bool {
	return r.Status == models.StatusOption &&
		r.OptionExpiresAt != nil &&
		r.OptionExpiresAt.Before(now)
}

// AllowedTargets returns the normal-path targets reachable from a status.
func AllowedTargets(status string) []string {
	return allowedTransitions[status]
}

// CanTransition reports whether target is reachable from current on the
// normal path.
func CanTransition(current, target string) bool {
	for _, t := range allowedTransitions[current] {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionRequest describes one requested status change
type TransitionRequest struct {
	Target     string
	ActorRole  string
	Reason     string
	IsOverride bool
}

// TransitionPlan is the validated outcome of a transition request. The
// caller applies it atomically: the status write, the table release and the
// audit entry belong to one transaction.
type TransitionPlan struct {
	OldStatus    string
	NewStatus    string
	SetCheckedIn bool // entering seated stamps checked_in_at
	ReleaseTable bool // entering cancelled/no_show frees the table slot
	IsOverride   bool
	Reason       string
}

// PlanTransition validates a requested status change against the graph.
//
// Overrides may reach any target other than the current status, but require
// a non-empty reason and an actor at or above manager authority. Every
// override is flagged for the audit entry.
func PlanTransition(r *models.Reservation, req TransitionRequest) (*TransitionPlan, error) {
	if !validStatus(req.Target) {
		return nil, apperrors.Validationf("unknown status %q", req.Target)
	}
	if req.Target == r.Status {
		return nil, fmt.Errorf("%w: reservation %d is already %s", apperrors.ErrInvalidTransition, r.ID, r.Status)
	}

	if req.IsOverride {
		if req.Reason == "" {
			return nil, fmt.Errorf("%w: override requires a reason", apperrors.ErrUnauthorized)
		}
		if models.RoleRank(req.ActorRole) < models.RoleRank(models.RoleManager) {
			return nil, fmt.Errorf("%w: override requires manager role, actor is %q", apperrors.ErrUnauthorized, req.ActorRole)
		}
	} else if !CanTransition(r.Status, req.Target) {
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, r.Status, req.Target)
	}

	return &TransitionPlan{
		OldStatus:    r.Status,
		NewStatus:    req.Target,
		SetCheckedIn: req.Target == models.StatusSeated,
		ReleaseTable: req.Target == models.StatusCancelled || req.Target == models.StatusNoShow,
		IsOverride:   req.IsOverride,
		Reason:       req.Reason,
	}, nil
}

// ValidInitialStatus reports whether a reservation may be created directly
// in the given status. Walk-ins arrive already seated; the graph governs
// everything after creation.
func ValidInitialStatus(status string) bool {
	switch status {
	case models.StatusDraft, models.StatusPendingPayment, models.StatusOption,
		models.StatusConfirmed, models.StatusSeated:
		return true
	}
	return false
}

func validStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}
