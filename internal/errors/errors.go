package errors

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("status transition is not allowed")
var ErrUnauthorized = errors.New("operation is not authorized for actor")
var ErrValidation = errors.New("invalid input")
var ErrNotFound = errors.New("not found")

// TableConflictError is returned when a committed or manual assignment
// collides with another active reservation on the same table. It carries
// the conflicting window so the caller can pick differently.
type TableConflictError struct {
	TableID       int64
	ReservationID int64
	StartTime     string
	EndTime       string
}

func (e *TableConflictError) Error() string {
	return fmt.Sprintf("table %d is occupied %s-%s by reservation %d",
		e.TableID, e.StartTime, e.EndTime, e.ReservationID)
}

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
