package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrClinicNotFound  = errors.New("clinic not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrPatientExists   = errors.New("a patient with this email already exists")
	ErrNotAffiliated   = errors.New("doctor is not affiliated with this clinic")
)

type Repository interface {
	CreateDoctor(ctx context.Context, d Doctor) (*Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	SearchDoctors(ctx context.Context, f DoctorFilter) ([]Doctor, error)

	CreateClinic(ctx context.Context, c Clinic) (*Clinic, error)
	GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error)
	ListClinics(ctx context.Context, query string, limit, offset int) ([]Clinic, error)

	// Affiliate creates the link or updates its fee.
	Affiliate(ctx context.Context, doctorID, clinicID uuid.UUID, fee int64) (*Affiliation, error)
	ListAffiliations(ctx context.Context, doctorID uuid.UUID) ([]Affiliation, error)
	IsAffiliated(ctx context.Context, doctorID, clinicID uuid.UUID) (bool, error)

	ListScheduleVersions(ctx context.Context, doctorID uuid.UUID) ([]ScheduleVersion, error)

	CreatePatient(ctx context.Context, p Patient) (*Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error)
}
