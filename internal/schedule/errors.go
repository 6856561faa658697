package schedule

import "errors"

var (
	ErrDayExists       = errors.New("a schedule already exists for this date")
	ErrDayNotFound     = errors.New("no schedule for this date")
	ErrSlotNotFound    = errors.New("slot not found")
	ErrDraftNotFound   = errors.New("draft not found")
	ErrVersionConflict = errors.New("schedule was changed by someone else, reload and retry")
	ErrSlotHasBookings = errors.New("slot has bookings and cannot be removed or shrunk")
	ErrScheduleBusy    = errors.New("schedule is being edited, please retry shortly")
)

// ValidationError is returned when input is rejected before any state changes.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}
