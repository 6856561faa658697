package api

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-availability/internal/appointment"
	"github.com/hackgods/clinic-availability/internal/directory"
	"github.com/hackgods/clinic-availability/internal/schedule"
)

type fakeDirectory struct {
	createDoctorFn  func(ctx context.Context, in directory.CreateDoctorInput) (*directory.Doctor, error)
	searchDoctorsFn func(ctx context.Context, f directory.DoctorFilter) ([]directory.Doctor, error)
	doctorRecordFn  func(ctx context.Context, id uuid.UUID) (*directory.DoctorRecord, error)
	createClinicFn  func(ctx context.Context, in directory.CreateClinicInput) (*directory.Clinic, error)
	listClinicsFn   func(ctx context.Context, query string, limit, offset int) ([]directory.Clinic, error)
	affiliateFn     func(ctx context.Context, doctorID, clinicID uuid.UUID, fee int64) (*directory.Affiliation, error)
	createPatientFn func(ctx context.Context, in directory.CreatePatientInput) (*directory.Patient, error)
}

func (f *fakeDirectory) CreateDoctor(ctx context.Context, in directory.CreateDoctorInput) (*directory.Doctor, error) {
	if f.createDoctorFn == nil {
		panic("CreateDoctor not configured")
	}
	return f.createDoctorFn(ctx, in)
}

func (f *fakeDirectory) SearchDoctors(ctx context.Context, filter directory.DoctorFilter) ([]directory.Doctor, error) {
	if f.searchDoctorsFn == nil {
		panic("SearchDoctors not configured")
	}
	return f.searchDoctorsFn(ctx, filter)
}

func (f *fakeDirectory) DoctorRecord(ctx context.Context, id uuid.UUID) (*directory.DoctorRecord, error) {
	if f.doctorRecordFn == nil {
		panic("DoctorRecord not configured")
	}
	return f.doctorRecordFn(ctx, id)
}

func (f *fakeDirectory) CreateClinic(ctx context.Context, in directory.CreateClinicInput) (*directory.Clinic, error) {
	if f.createClinicFn == nil {
		panic("CreateClinic not configured")
	}
	return f.createClinicFn(ctx, in)
}

func (f *fakeDirectory) ListClinics(ctx context.Context, query string, limit, offset int) ([]directory.Clinic, error) {
	if f.listClinicsFn == nil {
		panic("ListClinics not configured")
	}
	return f.listClinicsFn(ctx, query, limit, offset)
}

func (f *fakeDirectory) Affiliate(ctx context.Context, doctorID, clinicID uuid.UUID, fee int64) (*directory.Affiliation, error) {
	if f.affiliateFn == nil {
		panic("Affiliate not configured")
	}
	return f.affiliateFn(ctx, doctorID, clinicID, fee)
}

func (f *fakeDirectory) CreatePatient(ctx context.Context, in directory.CreatePatientInput) (*directory.Patient, error) {
	if f.createPatientFn == nil {
		panic("CreatePatient not configured")
	}
	return f.createPatientFn(ctx, in)
}

type fakeSchedules struct {
	today             civil.Date
	availabilityFn    func(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, from, to civil.Date) ([]schedule.DayAvailability, error)
	scheduleFn        func(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) (*schedule.StoredSchedule, error)
	replaceScheduleFn func(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, version int64, days []schedule.DaySchedule) (*schedule.StoredSchedule, error)
	loadDraftFn       func(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) (*schedule.Draft, error)
	discardDraftFn    func(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) error
	addDraftDayFn     func(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date) (*schedule.Draft, error)
	removeDraftDayFn  func(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date) (*schedule.Draft, error)
	toggleDraftSlotFn func(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date, slot int) (*schedule.Draft, error)
	setCapacityFn     func(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date, slot int, value string) (*schedule.Draft, error)
	expandDraftFn     func(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, req schedule.RecurrenceRequest) (*schedule.Draft, schedule.Expansion, error)
	saveDraftFn       func(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) (*schedule.StoredSchedule, error)
}

func (f *fakeSchedules) Today() civil.Date { return f.today }

func (f *fakeSchedules) Availability(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, from, to civil.Date) ([]schedule.DayAvailability, error) {
	if f.availabilityFn == nil {
		panic("Availability not configured")
	}
	return f.availabilityFn(ctx, doctorID, scope, from, to)
}

func (f *fakeSchedules) Schedule(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) (*schedule.StoredSchedule, error) {
	if f.scheduleFn == nil {
		panic("Schedule not configured")
	}
	return f.scheduleFn(ctx, doctorID, scope)
}

func (f *fakeSchedules) ReplaceSchedule(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, version int64, days []schedule.DaySchedule) (*schedule.StoredSchedule, error) {
	if f.replaceScheduleFn == nil {
		panic("ReplaceSchedule not configured")
	}
	return f.replaceScheduleFn(ctx, doctorID, scope, version, days)
}

func (f *fakeSchedules) LoadDraft(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) (*schedule.Draft, error) {
	if f.loadDraftFn == nil {
		panic("LoadDraft not configured")
	}
	return f.loadDraftFn(ctx, doctorID, scope)
}

func (f *fakeSchedules) DiscardDraft(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) error {
	if f.discardDraftFn == nil {
		panic("DiscardDraft not configured")
	}
	return f.discardDraftFn(ctx, doctorID, scope)
}

func (f *fakeSchedules) AddDraftDay(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date) (*schedule.Draft, error) {
	if f.addDraftDayFn == nil {
		panic("AddDraftDay not configured")
	}
	return f.addDraftDayFn(ctx, doctorID, scope, date)
}

func (f *fakeSchedules) RemoveDraftDay(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date) (*schedule.Draft, error) {
	if f.removeDraftDayFn == nil {
		panic("RemoveDraftDay not configured")
	}
	return f.removeDraftDayFn(ctx, doctorID, scope, date)
}

func (f *fakeSchedules) ToggleDraftSlot(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date, slot int) (*schedule.Draft, error) {
	if f.toggleDraftSlotFn == nil {
		panic("ToggleDraftSlot not configured")
	}
	return f.toggleDraftSlotFn(ctx, doctorID, scope, date, slot)
}

func (f *fakeSchedules) SetDraftSlotCapacity(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, date civil.Date, slot int, value string) (*schedule.Draft, error) {
	if f.setCapacityFn == nil {
		panic("SetDraftSlotCapacity not configured")
	}
	return f.setCapacityFn(ctx, doctorID, scope, date, slot, value)
}

func (f *fakeSchedules) ExpandDraft(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope, req schedule.RecurrenceRequest) (*schedule.Draft, schedule.Expansion, error) {
	if f.expandDraftFn == nil {
		panic("ExpandDraft not configured")
	}
	return f.expandDraftFn(ctx, doctorID, scope, req)
}

func (f *fakeSchedules) SaveDraft(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) (*schedule.StoredSchedule, error) {
	if f.saveDraftFn == nil {
		panic("SaveDraft not configured")
	}
	return f.saveDraftFn(ctx, doctorID, scope)
}

type fakeAppointments struct {
	createFn  func(ctx context.Context, slotID, patientID uuid.UUID) (*appointment.Appointment, error)
	confirmFn func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	cancelFn  func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*appointment.AppointmentDetail, error)
	listFn    func(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error)
}

func (f *fakeAppointments) CreateAppointment(ctx context.Context, slotID, patientID uuid.UUID) (*appointment.Appointment, error) {
	if f.createFn == nil {
		panic("CreateAppointment not configured")
	}
	return f.createFn(ctx, slotID, patientID)
}

func (f *fakeAppointments) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if f.confirmFn == nil {
		panic("ConfirmAppointment not configured")
	}
	return f.confirmFn(ctx, id)
}

func (f *fakeAppointments) CancelAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if f.cancelFn == nil {
		panic("CancelAppointment not configured")
	}
	return f.cancelFn(ctx, id)
}

func (f *fakeAppointments) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.AppointmentDetail, error) {
	if f.getFn == nil {
		panic("GetAppointment not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakeAppointments) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error) {
	if f.listFn == nil {
		panic("ListAppointmentsByPatient not configured")
	}
	return f.listFn(ctx, patientID, limit, offset)
}
