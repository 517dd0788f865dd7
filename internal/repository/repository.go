package repository

import (
	"maitred/internal/database"
)

type Repositories struct {
	Reservations *ReservationRepository
	Layout       *LayoutRepository
	Cursors      *CursorRepository
	Audit        *AuditRepository
	Users        *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Reservations: NewReservationRepository(db),
		Layout:       NewLayoutRepository(db),
		Cursors:      NewCursorRepository(db),
		Audit:        NewAuditRepository(db),
		Users:        NewUserRepository(db),
	}
}
