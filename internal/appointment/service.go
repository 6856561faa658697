package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-availability/internal/config"
	"github.com/hackgods/clinic-availability/internal/directory"
	"github.com/hackgods/clinic-availability/internal/events"
	redisclient "github.com/hackgods/clinic-availability/internal/redis"
	"github.com/hackgods/clinic-availability/internal/schedule"
)

var (
	ErrSlotBeingBooked         = errors.New("slot is currently being booked, please retry")
	ErrSlotNotOpen             = errors.New("slot is not open for booking")
	ErrSlotInPast              = errors.New("slot has already started")
	ErrAppointmentExpiredState = errors.New("appointment is already expired")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// PatientLookup resolves the patient a booking is made for.
type PatientLookup interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*directory.Patient, error)
}

type Service struct {
	repo     Repository
	patients PatientLookup
	locker   redisclient.Locker
	events   *events.Recorder
	logger   *zap.Logger
	cfg      config.Config
	now      func() time.Time
}

func NewService(repo Repository, patients PatientLookup, locker redisclient.Locker, recorder *events.Recorder, logger *zap.Logger, cfg config.Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		repo:     repo,
		patients: patients,
		locker:   locker,
		events:   recorder,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// CreateAppointment reserves one unit of a slot's capacity for a patient
// under the slot's lock. Capacity itself is enforced by BookSlot.
func (s *Service) CreateAppointment(ctx context.Context, slotID, patientID uuid.UUID) (*Appointment, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		if errors.Is(err, directory.ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	slot, err := s.repo.GetSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load slot: %w", err)
	}
	if !slot.DayAvailable || !slot.IsAvailable {
		return nil, ErrSlotNotOpen
	}

	now := s.now()
	if !schedule.SlotStart(slot.Date, slot.StartTime, s.cfg.Location).After(now) {
		return nil, ErrSlotInPast
	}

	var created *Appointment
	expiresAt := now.Add(s.cfg.AppointmentTTL)
	err = s.locker.WithLock(ctx, redisclient.SlotKey(slotID), func(lockCtx context.Context) error {
		appt, err := s.repo.BookSlot(lockCtx, slotID, patientID, expiresAt)
		if err != nil {
			if errors.Is(err, ErrSlotFull) {
				return err
			}
			return fmt.Errorf("book slot: %w", err)
		}
		created = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.events.Record(ctx, events.AppointmentCreated, "appointment", created.ID, map[string]any{
		"slot_id":    slotID.String(),
		"patient_id": patientID.String(),
		"doctor_id":  slot.DoctorID.String(),
		"date":       slot.Date.String(),
		"start_time": slot.StartTime.String(),
		"expires_at": expiresAt,
	})
	return created, nil
}

// ConfirmAppointment moves a pending appointment to confirmed.
func (s *Service) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if appt.Status == StatusExpired {
		return nil, ErrAppointmentExpiredState
	}

	if appt.Status == StatusPending && appt.ExpiresAt != nil && appt.ExpiresAt.Before(s.now()) {
		s.expire(ctx, appt.ID, "confirm_after_expiry")
		return nil, ErrAppointmentExpiredState
	}

	if appt.Status != StatusPending {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.Transition(ctx, appt.ID, []AppointmentStatus{StatusPending}, StatusConfirmed, false)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Raced with the worker or a cancel.
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("confirm appointment: %w", err)
	}

	s.events.Record(ctx, events.AppointmentConfirmed, "appointment", updated.ID, map[string]any{
		"slot_id": updated.SlotID.String(),
	})
	return updated, nil
}

// CancelAppointment cancels a pending or confirmed appointment and gives its
// capacity back to the slot.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusPending && appt.Status != StatusConfirmed {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.Transition(ctx, appt.ID, []AppointmentStatus{StatusPending, StatusConfirmed}, StatusCancelled, true)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.events.Record(ctx, events.AppointmentCancelled, "appointment", updated.ID, map[string]any{
		"slot_id":     updated.SlotID.String(),
		"from_status": string(appt.Status),
	})
	return updated, nil
}

// ExpirePendingAppointments is called by the worker periodically. Each
// expired appointment releases its slot capacity.
func (s *Service) ExpirePendingAppointments(ctx context.Context) (int, error) {
	candidates, err := s.repo.FindExpiredPending(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("find expired pending appointments: %w", err)
	}

	expired := 0
	for _, appt := range candidates {
		if s.expire(ctx, appt.ID, "worker") {
			expired++
		}
	}
	return expired, nil
}

func (s *Service) expire(ctx context.Context, id uuid.UUID, reason string) bool {
	appt, err := s.repo.Transition(ctx, id, []AppointmentStatus{StatusPending}, StatusExpired, true)
	if err != nil {
		if !errors.Is(err, ErrAppointmentNotFound) {
			s.logger.Warn("failed to expire appointment",
				zap.String("appointment_id", id.String()),
				zap.Error(err),
			)
		}
		return false
	}

	s.events.Record(ctx, events.AppointmentExpired, "appointment", appt.ID, map[string]any{
		"slot_id": appt.SlotID.String(),
		"reason":  reason,
	})
	return true
}

// GetAppointment returns an appointment with its slot and patient. The slot
// is omitted when the schedule no longer holds it.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &AppointmentDetail{Appointment: *appt}

	slot, err := s.repo.GetSlot(ctx, appt.SlotID)
	switch {
	case err == nil:
		detail.Slot = slot
	case !errors.Is(err, ErrSlotNotFound):
		return nil, fmt.Errorf("load slot: %w", err)
	}

	patient, err := s.patients.GetPatient(ctx, appt.PatientID)
	switch {
	case err == nil:
		detail.Patient = patient
	case !errors.Is(err, directory.ErrPatientNotFound):
		return nil, fmt.Errorf("load patient: %w", err)
	}

	return detail, nil
}

// ListAppointmentsByPatient retrieves appointments for a specific patient.
func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	appointments, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appointments, nil
}
