package schedule

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Repository persists schedules. A scope with nothing stored reads back as
// an empty schedule at version 0.
type Repository interface {
	GetSchedule(ctx context.Context, doctorID uuid.UUID, scope Scope) (*StoredSchedule, error)
	ListDays(ctx context.Context, doctorID uuid.UUID, scope Scope, from, to civil.Date) ([]DaySchedule, error)

	// ReplaceSchedule swaps the whole collection if the stored version still
	// equals expectedVersion. Booking counts of slots that survive the swap
	// are kept from storage, never taken from days.
	ReplaceSchedule(ctx context.Context, doctorID uuid.UUID, scope Scope, expectedVersion int64, days []DaySchedule) (int64, error)
}

// DraftStore keeps one draft per doctor and scope.
type DraftStore interface {
	Get(ctx context.Context, doctorID uuid.UUID, scope Scope) (*Draft, error)
	Put(ctx context.Context, d *Draft) error
	Delete(ctx context.Context, doctorID uuid.UUID, scope Scope) error
}

// ScopeChecker confirms the doctor exists and, for clinic scopes, that the
// doctor is affiliated with the clinic.
type ScopeChecker interface {
	CheckScope(ctx context.Context, doctorID, clinicID uuid.UUID) error
}
