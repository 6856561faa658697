package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

type slotKey struct {
	day        civil.Date
	start, end Clock
}

type storedSlot struct {
	id              uuid.UUID
	currentBookings int
}

// mergedSlot is one slot row to write during a replace.
type mergedSlot struct {
	id              uuid.UUID
	day             civil.Date
	slot            TimeSlot
	currentBookings int
}

// mergeSlots matches incoming slots to stored ones by day, start and end.
// Matched slots keep their id and booking count; the rest get new ids and
// start empty. Dropping a booked slot, or lowering a slot's capacity below
// its bookings, fails with ErrSlotHasBookings.
func mergeSlots(existing map[slotKey]storedSlot, days []DaySchedule) ([]mergedSlot, error) {
	remaining := make(map[slotKey]storedSlot, len(existing))
	for k, v := range existing {
		remaining[k] = v
	}

	var out []mergedSlot
	for _, day := range days {
		for _, s := range day.Slots {
			key := slotKey{day: day.Date, start: s.StartTime, end: s.EndTime}
			m := mergedSlot{id: uuid.New(), day: day.Date, slot: s}
			if prev, ok := remaining[key]; ok {
				m.id, m.currentBookings = prev.id, prev.currentBookings
				delete(remaining, key)
			}
			if s.MaxBookings < m.currentBookings {
				return nil, fmt.Errorf("%s %s: %w", day.Date, s.StartTime, ErrSlotHasBookings)
			}
			out = append(out, m)
		}
	}
	for key, prev := range remaining {
		if prev.currentBookings > 0 {
			return nil, fmt.Errorf("%s %s: %w", key.day, key.start, ErrSlotHasBookings)
		}
	}
	return out, nil
}

func (r *PgRepository) GetSchedule(ctx context.Context, doctorID uuid.UUID, scope Scope) (*StoredSchedule, error) {
	out := &StoredSchedule{DoctorID: doctorID, Scope: scope}

	var updatedAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT version, updated_at
		FROM schedules
		WHERE doctor_id = $1 AND scope = $2
	`, doctorID, scope.String()).Scan(&out.Version, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			out.Days = []DaySchedule{}
			return out, nil
		}
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	out.UpdatedAt = &updatedAt

	rows, err := r.pool.Query(ctx, daysQuery+`
		ORDER BY d.day, s.start_minute
	`, doctorID, scope.String(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("load schedule days: %w", err)
	}
	days, err := scanDays(rows)
	if err != nil {
		return nil, err
	}
	out.Days = days
	return out, nil
}

func (r *PgRepository) ListDays(ctx context.Context, doctorID uuid.UUID, scope Scope, from, to civil.Date) ([]DaySchedule, error) {
	rows, err := r.pool.Query(ctx, daysQuery+`
		ORDER BY d.day, s.start_minute
	`, doctorID, scope.String(), from.In(time.UTC), to.In(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("list schedule days: %w", err)
	}
	return scanDays(rows)
}

const daysQuery = `
	SELECT d.day, d.is_available,
	       s.id, s.start_minute, s.end_minute, s.is_available, s.max_bookings, s.current_bookings
	FROM schedules sc
	JOIN schedule_days d ON d.schedule_id = sc.id
	LEFT JOIN schedule_slots s ON s.schedule_id = d.schedule_id AND s.day = d.day
	WHERE sc.doctor_id = $1
	  AND sc.scope = $2
	  AND ($3::date IS NULL OR d.day >= $3::date)
	  AND ($4::date IS NULL OR d.day <= $4::date)`

func scanDays(rows pgx.Rows) ([]DaySchedule, error) {
	defer rows.Close()

	days := []DaySchedule{}
	for rows.Next() {
		var (
			day                    time.Time
			dayAvailable           bool
			slotID                 *uuid.UUID
			startMinute, endMinute *int
			slotAvailable          *bool
			maxBookings, current   *int
		)
		if err := rows.Scan(&day, &dayAvailable, &slotID, &startMinute, &endMinute, &slotAvailable, &maxBookings, &current); err != nil {
			return nil, fmt.Errorf("scan schedule day: %w", err)
		}

		date := civil.DateOf(day)
		if len(days) == 0 || days[len(days)-1].Date != date {
			days = append(days, DaySchedule{Date: date, IsAvailable: dayAvailable, Slots: []TimeSlot{}})
		}
		if slotID == nil {
			continue
		}
		last := &days[len(days)-1]
		last.Slots = append(last.Slots, TimeSlot{
			ID:              *slotID,
			StartTime:       Clock(*startMinute),
			EndTime:         ClockAt(*endMinute),
			IsAvailable:     *slotAvailable,
			MaxBookings:     *maxBookings,
			CurrentBookings: *current,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

func (r *PgRepository) ReplaceSchedule(ctx context.Context, doctorID uuid.UUID, scope Scope, expectedVersion int64, days []DaySchedule) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var clinicID *uuid.UUID
	if !scope.IsGeneral() {
		id := scope.ClinicID
		clinicID = &id
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO schedules (id, doctor_id, scope, clinic_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, now(), now())
		ON CONFLICT (doctor_id, scope) DO NOTHING
	`, uuid.New(), doctorID, scope.String(), clinicID)
	if err != nil {
		return 0, fmt.Errorf("ensure schedule row: %w", err)
	}

	var (
		scheduleID uuid.UUID
		version    int64
	)
	err = tx.QueryRow(ctx, `
		SELECT id, version
		FROM schedules
		WHERE doctor_id = $1 AND scope = $2
		FOR UPDATE
	`, doctorID, scope.String()).Scan(&scheduleID, &version)
	if err != nil {
		return 0, fmt.Errorf("lock schedule row: %w", err)
	}
	if version != expectedVersion {
		return 0, ErrVersionConflict
	}

	existing, err := lockSlots(ctx, tx, scheduleID)
	if err != nil {
		return 0, err
	}

	slots, err := mergeSlots(existing, days)
	if err != nil {
		return 0, err
	}

	dayRows := make([][]any, 0, len(days))
	for _, day := range days {
		dayRows = append(dayRows, []any{scheduleID, day.Date.In(time.UTC), day.IsAvailable})
	}
	slotRows := make([][]any, 0, len(slots))
	for _, s := range slots {
		slotRows = append(slotRows, []any{
			s.id, scheduleID, s.day.In(time.UTC),
			int16(s.slot.StartTime), int16(s.slot.EndTime.EndMinute()),
			s.slot.IsAvailable, s.slot.MaxBookings, s.currentBookings,
		})
	}

	if _, err := tx.Exec(ctx, `DELETE FROM schedule_days WHERE schedule_id = $1`, scheduleID); err != nil {
		return 0, fmt.Errorf("clear schedule days: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"schedule_days"},
		[]string{"schedule_id", "day", "is_available"},
		pgx.CopyFromRows(dayRows),
	); err != nil {
		return 0, fmt.Errorf("copy schedule days: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"schedule_slots"},
		[]string{"id", "schedule_id", "day", "start_minute", "end_minute", "is_available", "max_bookings", "current_bookings"},
		pgx.CopyFromRows(slotRows),
	); err != nil {
		return 0, fmt.Errorf("copy schedule slots: %w", err)
	}

	var newVersion int64
	err = tx.QueryRow(ctx, `
		UPDATE schedules
		SET version = version + 1,
		    updated_at = now()
		WHERE id = $1
		RETURNING version
	`, scheduleID).Scan(&newVersion)
	if err != nil {
		return 0, fmt.Errorf("bump schedule version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newVersion, nil
}

// lockSlots reads the current slots FOR UPDATE so bookings on them wait for
// the replace to finish.
func lockSlots(ctx context.Context, tx pgx.Tx, scheduleID uuid.UUID) (map[slotKey]storedSlot, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, day, start_minute, end_minute, current_bookings
		FROM schedule_slots
		WHERE schedule_id = $1
		FOR UPDATE
	`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("lock schedule slots: %w", err)
	}
	defer rows.Close()

	out := make(map[slotKey]storedSlot)
	for rows.Next() {
		var (
			s          storedSlot
			day        time.Time
			start, end int
		)
		if err := rows.Scan(&s.id, &day, &start, &end, &s.currentBookings); err != nil {
			return nil, fmt.Errorf("scan schedule slot: %w", err)
		}
		out[slotKey{day: civil.DateOf(day), start: Clock(start), end: ClockAt(end)}] = s
	}
	return out, rows.Err()
}
