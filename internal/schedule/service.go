package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-availability/internal/events"
	redisclient "github.com/hackgods/clinic-availability/internal/redis"
)

type Service struct {
	repo   Repository
	drafts DraftStore
	locker redisclient.Locker
	scopes ScopeChecker
	events *events.Recorder
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewService(repo Repository, drafts DraftStore, locker redisclient.Locker, scopes ScopeChecker, recorder *events.Recorder, logger *zap.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:   repo,
		drafts: drafts,
		locker: locker,
		scopes: scopes,
		events: recorder,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
}

// Today is the current date in the clinic's zone.
func (s *Service) Today() civil.Date {
	return civil.DateOf(s.now().In(s.loc))
}

// SlotStart is the instant a slot begins on the given date in loc.
func SlotStart(date civil.Date, start Clock, loc *time.Location) time.Time {
	return time.Date(date.Year, date.Month, date.Day, start.Hour(), start.Minute(), 0, 0, loc)
}

// Availability reads stored days of one scope and annotates every slot with
// whether it can be booked right now.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID, scope Scope, from, to civil.Date) ([]DayAvailability, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, validationError("from and to are required")
	}
	if to.Before(from) {
		return nil, validationError("to must be on or after from")
	}
	if to.DaysSince(from) > MaxRangeDays {
		return nil, validationError(fmt.Sprintf("date range cannot exceed %d days", MaxRangeDays))
	}
	if err := s.scopes.CheckScope(ctx, doctorID, scope.ClinicID); err != nil {
		return nil, err
	}

	days, err := s.repo.ListDays(ctx, doctorID, scope, from, to)
	if err != nil {
		return nil, fmt.Errorf("read availability: %w", err)
	}

	now := s.now()
	out := make([]DayAvailability, 0, len(days))
	for _, day := range days {
		da := DayAvailability{
			Date:        day.Date,
			Scope:       scope,
			IsAvailable: day.IsAvailable,
			Slots:       make([]SlotAvailability, 0, len(day.Slots)),
		}
		for _, slot := range day.Slots {
			remaining := slot.MaxBookings - slot.CurrentBookings
			if remaining < 0 {
				remaining = 0
			}
			da.Slots = append(da.Slots, SlotAvailability{
				TimeSlot:  slot,
				Remaining: remaining,
				Bookable: day.IsAvailable && slot.IsAvailable && remaining > 0 &&
					SlotStart(day.Date, slot.StartTime, s.loc).After(now),
			})
		}
		out = append(out, da)
	}
	return out, nil
}

func (s *Service) Schedule(ctx context.Context, doctorID uuid.UUID, scope Scope) (*StoredSchedule, error) {
	if err := s.scopes.CheckScope(ctx, doctorID, scope.ClinicID); err != nil {
		return nil, err
	}
	return s.repo.GetSchedule(ctx, doctorID, scope)
}

// ReplaceSchedule writes a whole collection for one scope. version must be
// the version the caller last read.
func (s *Service) ReplaceSchedule(ctx context.Context, doctorID uuid.UUID, scope Scope, version int64, days []DaySchedule) (*StoredSchedule, error) {
	if err := s.scopes.CheckScope(ctx, doctorID, scope.ClinicID); err != nil {
		return nil, err
	}

	c := Collection{Days: cloneDays(days)}
	if err := c.Normalize(); err != nil {
		return nil, err
	}

	var stored *StoredSchedule
	err := s.withScopeLock(ctx, doctorID, scope, func(ctx context.Context) error {
		var err error
		stored, err = s.replace(ctx, doctorID, scope, version, c.Days)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Service) replace(ctx context.Context, doctorID uuid.UUID, scope Scope, version int64, days []DaySchedule) (*StoredSchedule, error) {
	newVersion, err := s.repo.ReplaceSchedule(ctx, doctorID, scope, version, days)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrSlotHasBookings) {
			return nil, err
		}
		return nil, fmt.Errorf("replace schedule: %w", err)
	}

	s.events.Record(ctx, events.ScheduleReplaced, "doctor", doctorID, map[string]any{
		"scope":   scope.String(),
		"version": newVersion,
		"days":    len(days),
	})
	s.logger.Info("schedule replaced",
		zap.String("doctor_id", doctorID.String()),
		zap.String("scope", scope.String()),
		zap.Int64("version", newVersion),
		zap.Int("days", len(days)),
	)

	stored, err := s.repo.GetSchedule(ctx, doctorID, scope)
	if err != nil {
		return nil, fmt.Errorf("reload schedule: %w", err)
	}
	return stored, nil
}

// LoadDraft returns the scope's draft, seeding it from storage on first use.
func (s *Service) LoadDraft(ctx context.Context, doctorID uuid.UUID, scope Scope) (*Draft, error) {
	return s.editDraft(ctx, doctorID, scope, nil)
}

func (s *Service) DiscardDraft(ctx context.Context, doctorID uuid.UUID, scope Scope) error {
	if err := s.scopes.CheckScope(ctx, doctorID, scope.ClinicID); err != nil {
		return err
	}
	return s.withScopeLock(ctx, doctorID, scope, func(ctx context.Context) error {
		return s.drafts.Delete(ctx, doctorID, scope)
	})
}

func (s *Service) AddDraftDay(ctx context.Context, doctorID uuid.UUID, scope Scope, date civil.Date) (*Draft, error) {
	if !date.IsValid() {
		return nil, validationError("please select a date")
	}
	return s.editDraft(ctx, doctorID, scope, func(c *Collection) error {
		return c.AddDay(date)
	})
}

func (s *Service) RemoveDraftDay(ctx context.Context, doctorID uuid.UUID, scope Scope, date civil.Date) (*Draft, error) {
	return s.editDraft(ctx, doctorID, scope, func(c *Collection) error {
		return c.RemoveDay(date)
	})
}

func (s *Service) ToggleDraftSlot(ctx context.Context, doctorID uuid.UUID, scope Scope, date civil.Date, slot int) (*Draft, error) {
	return s.editDraft(ctx, doctorID, scope, func(c *Collection) error {
		return c.ToggleSlot(date, slot)
	})
}

func (s *Service) SetDraftSlotCapacity(ctx context.Context, doctorID uuid.UUID, scope Scope, date civil.Date, slot int, value string) (*Draft, error) {
	return s.editDraft(ctx, doctorID, scope, func(c *Collection) error {
		_, err := c.SetCapacity(date, slot, value)
		return err
	})
}

// RecurrenceRequest is the editor's "repeat" form.
type RecurrenceRequest struct {
	Anchor   civil.Date
	Kind     RangeKind
	End      *civil.Date
	Weekdays []int
	// SourceDate, when set, names a day in the draft whose slots are copied
	// instead of the default template.
	SourceDate *civil.Date
}

func (s *Service) ExpandDraft(ctx context.Context, doctorID uuid.UUID, scope Scope, req RecurrenceRequest) (*Draft, Expansion, error) {
	rng, err := ComputeRange(req.Anchor, req.Kind, req.End)
	if err != nil {
		return nil, Expansion{}, err
	}
	weekdays, err := ParseWeekdays(req.Weekdays)
	if err != nil {
		return nil, Expansion{}, err
	}

	var exp Expansion
	d, err := s.editDraft(ctx, doctorID, scope, func(c *Collection) error {
		template := DefaultTemplate()
		if req.SourceDate != nil {
			src, ok := c.Day(*req.SourceDate)
			if !ok {
				return ErrDayNotFound
			}
			template = TemplateFromDay(src)
		}
		exp = c.Apply(Recurrence{
			Anchor:   req.Anchor,
			Range:    rng,
			Weekdays: weekdays,
			Template: template,
			Today:    s.Today(),
		})
		return nil
	})
	if err != nil {
		return nil, Expansion{}, err
	}
	return d, exp, nil
}

// SaveDraft persists the draft against the version it was seeded from and
// then reseeds it from what was stored. On failure the draft is left as is.
func (s *Service) SaveDraft(ctx context.Context, doctorID uuid.UUID, scope Scope) (*StoredSchedule, error) {
	if err := s.scopes.CheckScope(ctx, doctorID, scope.ClinicID); err != nil {
		return nil, err
	}

	var stored *StoredSchedule
	err := s.withScopeLock(ctx, doctorID, scope, func(ctx context.Context) error {
		d, err := s.drafts.Get(ctx, doctorID, scope)
		if err != nil {
			return err
		}

		c := Collection{Days: cloneDays(d.Days)}
		if err := c.Normalize(); err != nil {
			return err
		}

		stored, err = s.replace(ctx, doctorID, scope, d.BaseVersion, c.Days)
		if err != nil {
			return err
		}

		return s.drafts.Put(ctx, &Draft{
			DoctorID:    doctorID,
			Scope:       scope,
			BaseVersion: stored.Version,
			Days:        stored.Days,
			UpdatedAt:   s.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// editDraft loads (or seeds) the draft under the scope lock, applies fn to a
// copy and stores the result. A nil fn only loads.
func (s *Service) editDraft(ctx context.Context, doctorID uuid.UUID, scope Scope, fn func(c *Collection) error) (*Draft, error) {
	if err := s.scopes.CheckScope(ctx, doctorID, scope.ClinicID); err != nil {
		return nil, err
	}

	var out *Draft
	err := s.withScopeLock(ctx, doctorID, scope, func(ctx context.Context) error {
		d, err := s.drafts.Get(ctx, doctorID, scope)
		if errors.Is(err, ErrDraftNotFound) {
			d, err = s.seedDraft(ctx, doctorID, scope)
			if err != nil {
				return err
			}
			if fn == nil {
				out = d
				return s.drafts.Put(ctx, d)
			}
		} else if err != nil {
			return err
		}

		if fn == nil {
			out = d
			return nil
		}

		c := Collection{Days: cloneDays(d.Days)}
		if err := fn(&c); err != nil {
			return err
		}
		d.Days = c.Days
		d.UpdatedAt = s.now()
		if err := s.drafts.Put(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) seedDraft(ctx context.Context, doctorID uuid.UUID, scope Scope) (*Draft, error) {
	stored, err := s.repo.GetSchedule(ctx, doctorID, scope)
	if err != nil {
		return nil, fmt.Errorf("seed draft: %w", err)
	}
	return &Draft{
		DoctorID:    doctorID,
		Scope:       scope,
		BaseVersion: stored.Version,
		Days:        stored.Days,
		UpdatedAt:   s.now(),
	}, nil
}

func (s *Service) withScopeLock(ctx context.Context, doctorID uuid.UUID, scope Scope, fn func(ctx context.Context) error) error {
	err := s.locker.WithLock(ctx, "schedule:"+doctorID.String()+":"+scope.String(), fn)
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrScheduleBusy
	}
	return err
}

func cloneDays(days []DaySchedule) []DaySchedule {
	out := make([]DaySchedule, len(days))
	for i, d := range days {
		out[i] = d.Clone()
	}
	return out
}
