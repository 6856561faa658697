package appointment

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-availability/internal/directory"
	"github.com/hackgods/clinic-availability/internal/schedule"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusExpired   AppointmentStatus = "expired"
)

// Slot is a stored schedule slot together with what is needed to book it.
type Slot struct {
	ID              uuid.UUID      `json:"id"`
	DoctorID        uuid.UUID      `json:"doctor_id"`
	Scope           string         `json:"scope"`
	Date            civil.Date     `json:"date"`
	StartTime       schedule.Clock `json:"start_time"`
	EndTime         schedule.Clock `json:"end_time"`
	DayAvailable    bool           `json:"day_available"`
	IsAvailable     bool           `json:"is_available"`
	MaxBookings     int            `json:"max_bookings"`
	CurrentBookings int            `json:"current_bookings"`
}

type Appointment struct {
	ID        uuid.UUID         `json:"id"`
	SlotID    uuid.UUID         `json:"slot_id"`
	PatientID uuid.UUID         `json:"patient_id"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	ExpiresAt *time.Time        `json:"expires_at,omitempty"`
}

type AppointmentDetail struct {
	Appointment
	Slot    *Slot              `json:"slot,omitempty"`
	Patient *directory.Patient `json:"patient,omitempty"`
}
