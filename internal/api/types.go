package api

import (
	"encoding/json"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-availability/internal/appointment"
	"github.com/hackgods/clinic-availability/internal/directory"
	"github.com/hackgods/clinic-availability/internal/schedule"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Directory

type CreateDoctorRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email"`
}

type ListDoctorsResponse struct {
	Doctors []directory.Doctor `json:"doctors"`
}

type CreateClinicRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type ListClinicsResponse struct {
	Clinics []directory.Clinic `json:"clinics"`
}

type AffiliateRequest struct {
	ClinicID        string `json:"clinic_id"`
	ConsultationFee int64  `json:"consultation_fee"`
}

type CreatePatientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Schedules

type AvailabilityResponse struct {
	DoctorID uuid.UUID                  `json:"doctor_id"`
	Scope    schedule.Scope             `json:"scope"`
	From     civil.Date                 `json:"from"`
	To       civil.Date                 `json:"to"`
	Days     []schedule.DayAvailability `json:"days"`
}

type ReplaceScheduleRequest struct {
	Version int64                  `json:"version"`
	Days    []schedule.DaySchedule `json:"days"`
}

// Drafts

type AddDayRequest struct {
	Date civil.Date `json:"date"`
}

// CapacityRequest accepts the value as typed into the editor: a JSON number
// or a string.
type CapacityRequest struct {
	Value json.RawMessage `json:"value"`
}

func (c CapacityRequest) raw() string {
	var s string
	if err := json.Unmarshal(c.Value, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(c.Value))
}

type RecurrenceRequest struct {
	Anchor     civil.Date  `json:"anchor"`
	Scope      string      `json:"scope"`
	EndDate    *civil.Date `json:"end_date,omitempty"`
	Weekdays   []int       `json:"weekdays"`
	SourceDate *civil.Date `json:"source_date,omitempty"`
}

type RecurrenceResponse struct {
	Draft  *schedule.Draft    `json:"draft"`
	Report schedule.Expansion `json:"report"`
}

type SaveDraftResponse struct {
	Schedule *schedule.StoredSchedule `json:"schedule"`
	Doctor   *directory.DoctorRecord  `json:"doctor"`
}

// Appointments

type CreateAppointmentRequest struct {
	SlotID    string `json:"slot_id"`
	PatientID string `json:"patient_id"`
}

type AppointmentResponse struct {
	ID        uuid.UUID  `json:"id"`
	SlotID    uuid.UUID  `json:"slot_id"`
	PatientID uuid.UUID  `json:"patient_id"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		SlotID:    a.SlotID,
		PatientID: a.PatientID,
		Status:    string(a.Status),
		ExpiresAt: a.ExpiresAt,
	}
}

type ListAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}
