package booking

import (
	"errors"
	"fmt"

	"github.com/alexzinovi/Skyparking-sub000/internal/capacity"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNothingToUndo     = errors.New("nothing to undo")
)

// CapacityConflictError is returned by Accept when the stay does not
// fit and force was not given. It carries the day-by-day breakdown so
// the operator can decide whether to override.
type CapacityConflictError struct {
	BookingID string             `json:"booking_id"`
	Days      []capacity.DayLoad `json:"days"`
}

func (e *CapacityConflictError) Error() string {
	over := 0
	for _, d := range e.Days {
		if !d.WouldFit {
			over++
		}
	}
	return fmt.Sprintf("capacity exceeded on %d day(s); override required", over)
}
