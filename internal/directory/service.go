package directory

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// ValidationError carries a message safe to show to the caller.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateDoctorInput struct {
	Name      string
	Specialty string
	Email     string
}

func (s *Service) CreateDoctor(ctx context.Context, in CreateDoctorInput) (*Doctor, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	email, err := optionalEmail(in.Email)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.CreateDoctor(ctx, Doctor{
		Name:      name,
		Specialty: optional(in.Specialty),
		Email:     email,
	})
	if err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return d, nil
}

func (s *Service) SearchDoctors(ctx context.Context, f DoctorFilter) ([]Doctor, error) {
	f.Query = strings.TrimSpace(f.Query)
	f.Specialty = strings.TrimSpace(f.Specialty)
	f.Limit, f.Offset = page(f.Limit, f.Offset)

	doctors, err := s.repo.SearchDoctors(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search doctors: %w", err)
	}
	return doctors, nil
}

// DoctorRecord loads a doctor with their affiliations and schedule versions.
func (s *Service) DoctorRecord(ctx context.Context, id uuid.UUID) (*DoctorRecord, error) {
	d, err := s.repo.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}

	affs, err := s.repo.ListAffiliations(ctx, id)
	if err != nil {
		return nil, err
	}
	versions, err := s.repo.ListScheduleVersions(ctx, id)
	if err != nil {
		return nil, err
	}

	return &DoctorRecord{Doctor: *d, Affiliations: affs, Schedules: versions}, nil
}

type CreateClinicInput struct {
	Name    string
	Address string
}

func (s *Service) CreateClinic(ctx context.Context, in CreateClinicInput) (*Clinic, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	c, err := s.repo.CreateClinic(ctx, Clinic{Name: name, Address: optional(in.Address)})
	if err != nil {
		return nil, fmt.Errorf("create clinic: %w", err)
	}
	return c, nil
}

func (s *Service) ListClinics(ctx context.Context, query string, limit, offset int) ([]Clinic, error) {
	limit, offset = page(limit, offset)
	clinics, err := s.repo.ListClinics(ctx, strings.TrimSpace(query), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clinics: %w", err)
	}
	return clinics, nil
}

func (s *Service) Affiliate(ctx context.Context, doctorID, clinicID uuid.UUID, fee int64) (*Affiliation, error) {
	if fee < 0 {
		return nil, validationError("consultation_fee cannot be negative")
	}
	if _, err := s.repo.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetClinic(ctx, clinicID); err != nil {
		return nil, err
	}
	return s.repo.Affiliate(ctx, doctorID, clinicID, fee)
}

// CheckScope succeeds when the doctor exists and, for a non-nil clinicID,
// is affiliated with that clinic.
func (s *Service) CheckScope(ctx context.Context, doctorID, clinicID uuid.UUID) error {
	if _, err := s.repo.GetDoctor(ctx, doctorID); err != nil {
		return err
	}
	if clinicID == uuid.Nil {
		return nil
	}
	ok, err := s.repo.IsAffiliated(ctx, doctorID, clinicID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAffiliated
	}
	return nil
}

type CreatePatientInput struct {
	Name  string
	Email string
	Phone string
}

func (s *Service) CreatePatient(ctx context.Context, in CreatePatientInput) (*Patient, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	email, err := optionalEmail(in.Email)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.CreatePatient(ctx, Patient{Name: name, Email: email, Phone: optional(in.Phone)})
	if err != nil {
		if errors.Is(err, ErrPatientExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatient(ctx, id)
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalEmail(raw string) (*string, error) {
	email := optional(raw)
	if email == nil {
		return nil, nil
	}
	addr, err := mail.ParseAddress(*email)
	if err != nil || addr.Address != *email {
		return nil, validationError("email is not valid")
	}
	return email, nil
}
