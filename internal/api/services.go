package api

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-availability/internal/appointment"
	"github.com/hackgods/clinic-availability/internal/directory"
	"github.com/hackgods/clinic-availability/internal/schedule"
)

type DirectoryService interface {
	CreateDoctor(ctx context.Context, in directory.CreateDoctorInput) (*directory.Doctor, error)
	SearchDoctors(ctx context.Context, f directory.DoctorFilter) ([]directory.Doctor, error)
	DoctorRecord(ctx context.Context, id uuid.UUID) (*directory.DoctorRecord, error)
	CreateClinic(ctx context.Context, in directory.CreateClinicInput) (*directory.Clinic, error)
	ListClinics(ctx context.Context, query string, limit, offset int) ([]directory.Clinic, error)
	Affiliate(ctx context.Context, doctorID, clinicID uuid.UUID, fee int64) (*directory.Affiliation, error)
	CreatePatient(ctx context.Context, in directory.CreatePatientInput) (*directory.Patient, error)
}

type ScheduleService interface {
	Today() civil.Date
	Availability(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, from, to civil.Date) ([]schedule.DayAvailability, error)
	Schedule(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) (*schedule.StoredSchedule, error)
	ReplaceSchedule(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, version int64, days []schedule.DaySchedule) (*schedule.StoredSchedule, error)

	LoadDraft(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) (*schedule.Draft, error)
	DiscardDraft(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) error
	AddDraftDay(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date) (*schedule.Draft, error)
	RemoveDraftDay(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date) (*schedule.Draft, error)
	ToggleDraftSlot(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date, slot int) (*schedule.Draft, error)
	SetDraftSlotCapacity(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date, slot int, value string) (*schedule.Draft, error)
	ExpandDraft(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, req schedule.RecurrenceRequest) (*schedule.Draft, schedule.Expansion, error)
	SaveDraft(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) (*schedule.StoredSchedule, error)
}

type AppointmentService interface {
	CreateAppointment(ctx context.Context, slotID, patientID uuid.UUID) (*appointment.Appointment, error)
	ConfirmAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.AppointmentDetail, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error)
}
