package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	ScheduleReplaced     = "SCHEDULE_REPLACED"
	AppointmentCreated   = "APPOINTMENT_CREATED"
	AppointmentConfirmed = "APPOINTMENT_CONFIRMED"
	AppointmentCancelled = "APPOINTMENT_CANCELLED"
	AppointmentExpired   = "APPOINTMENT_EXPIRED"
)

type Event struct {
	Type       string
	EntityType string
	EntityID   uuid.UUID
	Payload    []byte
	CreatedAt  time.Time
}

// Sink receives domain events.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout delivers each event to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PgLog appends events to the event_logs table.
type PgLog struct {
	pool *pgxpool.Pool
}

func NewPgLog(pool *pgxpool.Pool) *PgLog {
	return &PgLog{pool: pool}
}

func (l *PgLog) Publish(ctx context.Context, ev Event) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, entity_type, entity_id, payload, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`, ev.Type, ev.EntityType, ev.EntityID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

// Recorder is what services hold: it builds events and logs, rather than
// returns, delivery failures.
type Recorder struct {
	sink   Sink
	logger *zap.Logger
}

func NewRecorder(sink Sink, logger *zap.Logger) *Recorder {
	return &Recorder{sink: sink, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, eventType, entityType string, entityID uuid.UUID, payload map[string]any) {
	if r == nil || r.sink == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Warn("failed to marshal event payload", zap.String("event_type", eventType), zap.Error(err))
		data = nil
	}

	ev := Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    data,
		CreatedAt:  time.Now(),
	}
	if err := r.sink.Publish(ctx, ev); err != nil {
		r.logger.Warn("failed to record event",
			zap.String("event_type", eventType),
			zap.String("entity_id", entityID.String()),
			zap.Error(err),
		)
	}
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
