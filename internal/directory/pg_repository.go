package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.Email, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClinicNotFound
		}
		return nil, err
	}
	return &c, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PgRepository) CreateDoctor(ctx context.Context, d Doctor) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO doctors (id, name, specialty, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, name, specialty, email, created_at, updated_at
	`, uuid.New(), d.Name, d.Specialty, d.Email)
	return scanDoctor(row)
}

func (r *PgRepository) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialty, email, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) SearchDoctors(ctx context.Context, f DoctorFilter) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialty, email, created_at, updated_at
		FROM doctors
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR specialty ILIKE $2)
		ORDER BY name, id
		LIMIT $3 OFFSET $4
	`, f.Query, f.Specialty, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("search doctors: %w", err)
	}
	defer rows.Close()

	out := []Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *PgRepository) CreateClinic(ctx context.Context, c Clinic) (*Clinic, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clinics (id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id, name, address, created_at, updated_at
	`, uuid.New(), c.Name, c.Address)
	return scanClinic(row)
}

func (r *PgRepository) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, address, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`, id)
	return scanClinic(row)
}

func (r *PgRepository) ListClinics(ctx context.Context, query string, limit, offset int) ([]Clinic, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, address, created_at, updated_at
		FROM clinics
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clinics: %w", err)
	}
	defer rows.Close()

	out := []Clinic{}
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *PgRepository) Affiliate(ctx context.Context, doctorID, clinicID uuid.UUID, fee int64) (*Affiliation, error) {
	var a Affiliation
	err := r.pool.QueryRow(ctx, `
		WITH upserted AS (
			INSERT INTO doctor_clinics (doctor_id, clinic_id, consultation_fee, created_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (doctor_id, clinic_id) DO UPDATE SET consultation_fee = EXCLUDED.consultation_fee
			RETURNING doctor_id, clinic_id, consultation_fee, created_at
		)
		SELECT u.doctor_id, u.clinic_id, c.name, u.consultation_fee, u.created_at
		FROM upserted u
		JOIN clinics c ON c.id = u.clinic_id
	`, doctorID, clinicID, fee).Scan(&a.DoctorID, &a.ClinicID, &a.ClinicName, &a.ConsultationFee, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("affiliate doctor: %w", err)
	}
	return &a, nil
}

func (r *PgRepository) ListAffiliations(ctx context.Context, doctorID uuid.UUID) ([]Affiliation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT dc.doctor_id, dc.clinic_id, c.name, dc.consultation_fee, dc.created_at
		FROM doctor_clinics dc
		JOIN clinics c ON c.id = dc.clinic_id
		WHERE dc.doctor_id = $1
		ORDER BY c.name
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list affiliations: %w", err)
	}
	defer rows.Close()

	out := []Affiliation{}
	for rows.Next() {
		var a Affiliation
		if err := rows.Scan(&a.DoctorID, &a.ClinicID, &a.ClinicName, &a.ConsultationFee, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PgRepository) IsAffiliated(ctx context.Context, doctorID, clinicID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM doctor_clinics WHERE doctor_id = $1 AND clinic_id = $2
		)
	`, doctorID, clinicID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check affiliation: %w", err)
	}
	return ok, nil
}

func (r *PgRepository) ListScheduleVersions(ctx context.Context, doctorID uuid.UUID) ([]ScheduleVersion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT scope, version, updated_at
		FROM schedules
		WHERE doctor_id = $1
		ORDER BY scope
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list schedule versions: %w", err)
	}
	defer rows.Close()

	out := []ScheduleVersion{}
	for rows.Next() {
		var v ScheduleVersion
		if err := rows.Scan(&v.Scope, &v.Version, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PgRepository) CreatePatient(ctx context.Context, p Patient) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, name, email, phone, created_at, updated_at
	`, uuid.New(), p.Name, p.Email, p.Phone)
	created, err := scanPatient(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrPatientExists
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}
