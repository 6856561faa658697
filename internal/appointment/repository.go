package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotFull            = errors.New("slot has no capacity left")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetSlot(ctx context.Context, id uuid.UUID) (*Slot, error)

	// BookSlot takes one unit of the slot's capacity and creates a pending
	// appointment in the same transaction. It fails with ErrSlotFull when the
	// slot or its day is closed or already at capacity.
	BookSlot(ctx context.Context, slotID, patientID uuid.UUID, expiresAt time.Time) (*Appointment, error)

	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)

	// Transition moves an appointment currently in one of from to status to.
	// With release set, the slot's booking count is decremented in the same
	// transaction. ErrAppointmentNotFound means no row matched.
	Transition(ctx context.Context, id uuid.UUID, from []AppointmentStatus, to AppointmentStatus, release bool) (*Appointment, error)

	// Expiry worker
	FindExpiredPending(ctx context.Context, now time.Time) ([]Appointment, error)
}
