package service

import (
	"maitred/internal/messaging"
	"maitred/internal/repository"
	"maitred/internal/search"
)

type Services struct {
	Reservations *ReservationService
	Assignments  *AssignmentService
	Pacing       *PacingService
}

// PacingDefaults carries the location-wide pacing settings; shift/ticket
// overrides refine them per request.
type PacingDefaults struct {
	Limit    int
	Disabled bool
}

func NewServices(repos *repository.Repositories, natsClient *messaging.NATSClient, index *search.ReservationIndex, pacing PacingDefaults) *Services {
	assignmentService := NewAssignmentService(repos.Reservations, repos.Layout, repos.Cursors, repos.Audit, natsClient)
	reservationService := NewReservationService(repos.Reservations, repos.Layout, repos.Audit, natsClient, index)
	pacingService := NewPacingService(repos.Reservations, repos.Layout, pacing)

	return &Services{
		Reservations: reservationService,
		Assignments:  assignmentService,
		Pacing:       pacingService,
	}
}
