package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-availability/internal/schedule"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `id, slot_id, patient_id, status, created_at, updated_at, expires_at`

func scanSlot(row pgx.Row) (*Slot, error) {
	var (
		s          Slot
		day        time.Time
		start, end int
	)
	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&s.Scope,
		&day,
		&start,
		&end,
		&s.DayAvailable,
		&s.IsAvailable,
		&s.MaxBookings,
		&s.CurrentBookings,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	s.Date = civil.DateOf(day)
	s.StartTime = schedule.Clock(start)
	s.EndTime = schedule.ClockAt(end)
	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var expiresAt *time.Time

	err := row.Scan(
		&a.ID,
		&a.SlotID,
		&a.PatientID,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.ExpiresAt = expiresAt
	return &a, nil
}

func (r *PgRepository) GetSlot(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT s.id, sc.doctor_id, sc.scope, s.day, s.start_minute, s.end_minute,
		       d.is_available, s.is_available, s.max_bookings, s.current_bookings
		FROM schedule_slots s
		JOIN schedule_days d ON d.schedule_id = s.schedule_id AND d.day = s.day
		JOIN schedules sc ON sc.id = s.schedule_id
		WHERE s.id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgRepository) BookSlot(ctx context.Context, slotID, patientID uuid.UUID, expiresAt time.Time) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE schedule_slots s
		SET current_bookings = s.current_bookings + 1
		FROM schedule_days d
		WHERE s.id = $1
		  AND d.schedule_id = s.schedule_id
		  AND d.day = s.day
		  AND d.is_available
		  AND s.is_available
		  AND s.current_bookings < s.max_bookings
	`, slotID)
	if err != nil {
		return nil, fmt.Errorf("reserve slot capacity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrSlotFull
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO appointments (id, slot_id, patient_id, status, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, 'pending', now(), now(), $4)
		RETURNING `+appointmentColumns,
		uuid.New(), slotID, patientID, expiresAt)
	appt, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return appt, nil
}

func (r *PgRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) Transition(ctx context.Context, id uuid.UUID, from []AppointmentStatus, to AppointmentStatus, release bool) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	row := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = ANY($3)
		RETURNING `+appointmentColumns,
		id, string(to), statuses)
	appt, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}

	if release {
		_, err := tx.Exec(ctx, `
			UPDATE schedule_slots
			SET current_bookings = current_bookings - 1
			WHERE id = $1
			  AND current_bookings > 0
		`, appt.SlotID)
		if err != nil {
			return nil, fmt.Errorf("release slot capacity: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return appt, nil
}

func (r *PgRepository) FindExpiredPending(ctx context.Context, now time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'pending'
		  AND expires_at IS NOT NULL
		  AND expires_at < $1
	`, now)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	result := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
