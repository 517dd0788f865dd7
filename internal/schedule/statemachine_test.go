package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "maitred/internal/errors"
	"maitred/internal/models"
)

func TestAllowedGraph(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.StatusDraft, models.StatusConfirmed, true},
		{models.StatusDraft, models.StatusOption, true},
		{models.StatusDraft, models.StatusCancelled, true},
		{models.StatusDraft, models.StatusSeated, false},
		{models.StatusPendingPayment, models.StatusCancelled, true},
		{models.StatusPendingPayment, models.StatusConfirmed, false},
		{models.StatusOption, models.StatusConfirmed, true},
		{models.StatusOption, models.StatusCancelled, true},
		{models.StatusOption, models.StatusSeated, false},
		{models.StatusConfirmed, models.StatusSeated, true},
		{models.StatusConfirmed, models.StatusNoShow, true},
		{models.StatusConfirmed, models.StatusCancelled, true},
		{models.StatusConfirmed, models.StatusCompleted, false},
		{models.StatusSeated, models.StatusCompleted, true},
		{models.StatusSeated, models.StatusCancelled, false},
		{models.StatusCompleted, models.StatusSeated, false},
		{models.StatusNoShow, models.StatusConfirmed, false},
		{models.StatusCancelled, models.StatusConfirmed, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestPlanTransitionNormalPath(t *testing.T) {
	r := &models.Reservation{ID: 1, Status: models.StatusConfirmed}

	plan, err := PlanTransition(r, TransitionRequest{Target: models.StatusSeated, ActorRole: models.RoleHost})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, plan.OldStatus)
	assert.Equal(t, models.StatusSeated, plan.NewStatus)
	assert.True(t, plan.SetCheckedIn)
	assert.False(t, plan.ReleaseTable)
	assert.False(t, plan.IsOverride)
}

func TestPlanTransitionRejectsOffGraph(t *testing.T) {
	r := &models.Reservation{ID: 1, Status: models.StatusSeated}

	_, err := PlanTransition(r, TransitionRequest{Target: models.StatusDraft, ActorRole: models.RoleHost})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
}

func TestPlanTransitionOverride(t *testing.T) {
	r := &models.Reservation{ID: 1, Status: models.StatusSeated}

	// Manager override out of seated works with a reason
	plan, err := PlanTransition(r, TransitionRequest{
		Target:     models.StatusCancelled,
		ActorRole:  models.RoleManager,
		Reason:     "duplicate booking",
		IsOverride: true,
	})
	require.NoError(t, err)
	assert.True(t, plan.IsOverride)
	assert.True(t, plan.ReleaseTable)
	assert.Equal(t, "duplicate booking", plan.Reason)

	// Missing reason is an authorization failure
	_, err = PlanTransition(r, TransitionRequest{
		Target:     models.StatusCancelled,
		ActorRole:  models.RoleManager,
		IsOverride: true,
	})
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	// Host rank cannot override even with a reason
	_, err = PlanTransition(r, TransitionRequest{
		Target:     models.StatusCancelled,
		ActorRole:  models.RoleHost,
		Reason:     "duplicate booking",
		IsOverride: true,
	})
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestPlanTransitionReleasesTableOnNoShow(t *testing.T) {
	r := &models.Reservation{ID: 1, Status: models.StatusConfirmed}

	plan, err := PlanTransition(r, TransitionRequest{Target: models.StatusNoShow, ActorRole: models.RoleHost})
	require.NoError(t, err)
	assert.True(t, plan.ReleaseTable)
	assert.False(t, plan.SetCheckedIn)
}

func TestPlanTransitionSameStatus(t *testing.T) {
	r := &models.Reservation{ID: 1, Status: models.StatusConfirmed}

	_, err := PlanTransition(r, TransitionRequest{Target: models.StatusConfirmed, ActorRole: models.RoleOwner, IsOverride: true, Reason: "x"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
}

func TestPlanTransitionUnknownStatus(t *testing.T) {
	r := &models.Reservation{ID: 1, Status: models.StatusConfirmed}

	_, err := PlanTransition(r, TransitionRequest{Target: "waitlisted", ActorRole: models.RoleOwner})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestOptionLapsed(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	lapsed := &models.Reservation{ID: 1, Status: models.StatusOption, OptionExpiresAt: &past}
	assert.True(t, OptionLapsed(lapsed, now))

	// confirmed between the candidate scan and the sweep: must not be cancelled
	confirmed := &models.Reservation{ID: 1, Status: models.StatusConfirmed, OptionExpiresAt: &past}
	assert.False(t, OptionLapsed(confirmed, now))

	held := &models.Reservation{ID: 2, Status: models.StatusOption, OptionExpiresAt: &future}
	assert.False(t, OptionLapsed(held, now))

	noDeadline := &models.Reservation{ID: 3, Status: models.StatusOption}
	assert.False(t, OptionLapsed(noDeadline, now))

	cancelled := &models.Reservation{ID: 4, Status: models.StatusCancelled, OptionExpiresAt: &past}
	assert.False(t, OptionLapsed(cancelled, now))
}

func TestValidInitialStatus(t *testing.T) {
	assert.True(t, ValidInitialStatus(models.StatusConfirmed))
	assert.True(t, ValidInitialStatus(models.StatusSeated), "walk-ins are created already seated")
	assert.False(t, ValidInitialStatus(models.StatusCompleted))
	assert.False(t, ValidInitialStatus(models.StatusNoShow))
	assert.False(t, ValidInitialStatus(models.StatusCancelled))
}
