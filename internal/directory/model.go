package directory

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty *string   `json:"specialty,omitempty"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Clinic struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Affiliation links a doctor to a clinic they practise at. The fee is in
// minor currency units.
type Affiliation struct {
	DoctorID        uuid.UUID `json:"doctor_id"`
	ClinicID        uuid.UUID `json:"clinic_id"`
	ClinicName      string    `json:"clinic_name"`
	ConsultationFee int64     `json:"consultation_fee"`
	CreatedAt       time.Time `json:"created_at"`
}

// ScheduleVersion summarises one stored schedule of a doctor.
type ScheduleVersion struct {
	Scope     string    `json:"scope"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DoctorRecord is the full doctor document returned after reads and saves.
type DoctorRecord struct {
	Doctor
	Affiliations []Affiliation     `json:"affiliations"`
	Schedules    []ScheduleVersion `json:"schedules"`
}

type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DoctorFilter struct {
	Query     string
	Specialty string
	Limit     int
	Offset    int
}
