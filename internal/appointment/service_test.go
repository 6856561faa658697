package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-availability/internal/config"
	"github.com/hackgods/clinic-availability/internal/directory"
	"github.com/hackgods/clinic-availability/internal/events"
	redisclient "github.com/hackgods/clinic-availability/internal/redis"
	"github.com/hackgods/clinic-availability/internal/schedule"
)

type fakeRepo struct {
	getSlotFn            func(ctx context.Context, id uuid.UUID) (*Slot, error)
	bookSlotFn           func(ctx context.Context, slotID, patientID uuid.UUID, expiresAt time.Time) (*Appointment, error)
	getAppointmentFn     func(ctx context.Context, id uuid.UUID) (*Appointment, error)
	listByPatientFn      func(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)
	transitionFn         func(ctx context.Context, id uuid.UUID, from []AppointmentStatus, to AppointmentStatus, release bool) (*Appointment, error)
	findExpiredPendingFn func(ctx context.Context, now time.Time) ([]Appointment, error)
}

func (f *fakeRepo) GetSlot(ctx context.Context, id uuid.UUID) (*Slot, error) {
	if f.getSlotFn == nil {
		panic("GetSlot not configured")
	}
	return f.getSlotFn(ctx, id)
}

func (f *fakeRepo) BookSlot(ctx context.Context, slotID, patientID uuid.UUID, expiresAt time.Time) (*Appointment, error) {
	if f.bookSlotFn == nil {
		panic("BookSlot not configured")
	}
	return f.bookSlotFn(ctx, slotID, patientID, expiresAt)
}

func (f *fakeRepo) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	if f.getAppointmentFn == nil {
		panic("GetAppointment not configured")
	}
	return f.getAppointmentFn(ctx, id)
}

func (f *fakeRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if f.listByPatientFn == nil {
		panic("ListByPatient not configured")
	}
	return f.listByPatientFn(ctx, patientID, limit, offset)
}

func (f *fakeRepo) Transition(ctx context.Context, id uuid.UUID, from []AppointmentStatus, to AppointmentStatus, release bool) (*Appointment, error) {
	if f.transitionFn == nil {
		panic("Transition not configured")
	}
	return f.transitionFn(ctx, id, from, to, release)
}

func (f *fakeRepo) FindExpiredPending(ctx context.Context, now time.Time) ([]Appointment, error) {
	if f.findExpiredPendingFn == nil {
		panic("FindExpiredPending not configured")
	}
	return f.findExpiredPendingFn(ctx, now)
}

type fakePatients struct {
	err error
}

func (f fakePatients) GetPatient(_ context.Context, id uuid.UUID) (*directory.Patient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &directory.Patient{ID: id, Name: "Sam"}, nil
}

type fakeLocker struct {
	busy bool
	held bool
	keys []string
}

func (l *fakeLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.keys = append(l.keys, key)
	if l.busy {
		return redisclient.ErrLockNotAcquired
	}
	l.held = true
	defer func() { l.held = false }()
	return fn(ctx)
}

// sinkFunc adapts a func to events.Sink.
type sinkFunc func(ctx context.Context, ev events.Event) error

func (f sinkFunc) Publish(ctx context.Context, ev events.Event) error { return f(ctx, ev) }

var testNow = time.Date(2025, 6, 10, 9, 15, 0, 0, time.UTC)

func newTestService(repo Repository, patients PatientLookup, locker redisclient.Locker) *Service {
	svc := NewService(repo, patients, locker, nil, zap.NewNop(), config.Config{
		AppointmentTTL: 10 * time.Minute,
		Location:       time.UTC,
	})
	svc.now = func() time.Time { return testNow }
	return svc
}

func openSlot(id uuid.UUID, start string) *Slot {
	return &Slot{
		ID:           id,
		Date:         civil.DateOf(testNow),
		StartTime:    schedule.MustClock(start),
		EndTime:      schedule.MustClock(start).Add(30),
		DayAvailable: true,
		IsAvailable:  true,
		MaxBookings:  2,
	}
}

func TestCreateAppointment_Books(t *testing.T) {
	slotID, patientID := uuid.New(), uuid.New()
	locker := &fakeLocker{}

	var gotExpiry time.Time
	svc := newTestService(&fakeRepo{
		getSlotFn: func(_ context.Context, id uuid.UUID) (*Slot, error) {
			return openSlot(id, "10:00"), nil
		},
		bookSlotFn: func(_ context.Context, s, p uuid.UUID, expiresAt time.Time) (*Appointment, error) {
			gotExpiry = expiresAt
			return &Appointment{ID: uuid.New(), SlotID: s, PatientID: p, Status: StatusPending, ExpiresAt: &expiresAt}, nil
		},
	}, fakePatients{}, locker)

	appt, err := svc.CreateAppointment(context.Background(), slotID, patientID)
	if err != nil {
		t.Fatalf("CreateAppointment error: %v", err)
	}
	if appt.Status != StatusPending || appt.SlotID != slotID {
		t.Fatalf("appointment = %+v", appt)
	}
	if !gotExpiry.Equal(testNow.Add(10 * time.Minute)) {
		t.Fatalf("expires_at = %v", gotExpiry)
	}
	if len(locker.keys) != 1 || locker.keys[0] != redisclient.SlotKey(slotID) {
		t.Fatalf("lock keys = %v", locker.keys)
	}
}

func TestCreateAppointment_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		patients fakePatients
		slot     func(id uuid.UUID) (*Slot, error)
		book     error
		busy     bool
		wantErr  error
	}{
		{
			name:     "unknown patient",
			patients: fakePatients{err: directory.ErrPatientNotFound},
			wantErr:  directory.ErrPatientNotFound,
		},
		{
			name:    "unknown slot",
			slot:    func(uuid.UUID) (*Slot, error) { return nil, ErrSlotNotFound },
			wantErr: ErrSlotNotFound,
		},
		{
			name: "slot toggled off",
			slot: func(id uuid.UUID) (*Slot, error) {
				s := openSlot(id, "10:00")
				s.IsAvailable = false
				return s, nil
			},
			wantErr: ErrSlotNotOpen,
		},
		{
			name: "day closed",
			slot: func(id uuid.UUID) (*Slot, error) {
				s := openSlot(id, "10:00")
				s.DayAvailable = false
				return s, nil
			},
			wantErr: ErrSlotNotOpen,
		},
		{
			name:    "slot already started",
			slot:    func(id uuid.UUID) (*Slot, error) { return openSlot(id, "09:00"), nil },
			wantErr: ErrSlotInPast,
		},
		{
			name:    "slot full",
			slot:    func(id uuid.UUID) (*Slot, error) { return openSlot(id, "10:00"), nil },
			book:    ErrSlotFull,
			wantErr: ErrSlotFull,
		},
		{
			name:    "lock held",
			slot:    func(id uuid.UUID) (*Slot, error) { return openSlot(id, "10:00"), nil },
			busy:    true,
			wantErr: ErrSlotBeingBooked,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{
				bookSlotFn: func(context.Context, uuid.UUID, uuid.UUID, time.Time) (*Appointment, error) {
					if tt.book != nil {
						return nil, tt.book
					}
					t.Fatalf("BookSlot should not be reached")
					return nil, nil
				},
			}
			if tt.slot != nil {
				repo.getSlotFn = func(_ context.Context, id uuid.UUID) (*Slot, error) { return tt.slot(id) }
			}
			svc := newTestService(repo, tt.patients, &fakeLocker{busy: tt.busy})

			_, err := svc.CreateAppointment(context.Background(), uuid.New(), uuid.New())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfirmAppointment(t *testing.T) {
	future := testNow.Add(5 * time.Minute)
	past := testNow.Add(-time.Minute)

	tests := []struct {
		name        string
		appt        Appointment
		wantErr     error
		wantTo      AppointmentStatus
		wantRelease bool
	}{
		{"pending", Appointment{Status: StatusPending, ExpiresAt: &future}, nil, StatusConfirmed, false},
		{"pending past expiry", Appointment{Status: StatusPending, ExpiresAt: &past}, ErrAppointmentExpiredState, StatusExpired, true},
		{"already expired", Appointment{Status: StatusExpired}, ErrAppointmentExpiredState, "", false},
		{"already confirmed", Appointment{Status: StatusConfirmed}, ErrInvalidStatusTransition, "", false},
		{"cancelled", Appointment{Status: StatusCancelled}, ErrInvalidStatusTransition, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTo AppointmentStatus
			var gotRelease bool
			appt := tt.appt
			appt.ID = uuid.New()

			svc := newTestService(&fakeRepo{
				getAppointmentFn: func(context.Context, uuid.UUID) (*Appointment, error) {
					a := appt
					return &a, nil
				},
				transitionFn: func(_ context.Context, id uuid.UUID, _ []AppointmentStatus, to AppointmentStatus, release bool) (*Appointment, error) {
					gotTo, gotRelease = to, release
					a := appt
					a.Status = to
					return &a, nil
				},
			}, fakePatients{}, &fakeLocker{})

			_, err := svc.ConfirmAppointment(context.Background(), appt.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if gotTo != tt.wantTo || gotRelease != tt.wantRelease {
				t.Fatalf("transition to=%q release=%v, want %q/%v", gotTo, gotRelease, tt.wantTo, tt.wantRelease)
			}
		})
	}
}

func TestCancelAppointment_ReleasesCapacity(t *testing.T) {
	id := uuid.New()
	var gotFrom []AppointmentStatus
	var gotRelease bool

	svc := newTestService(&fakeRepo{
		getAppointmentFn: func(context.Context, uuid.UUID) (*Appointment, error) {
			return &Appointment{ID: id, Status: StatusConfirmed}, nil
		},
		transitionFn: func(_ context.Context, _ uuid.UUID, from []AppointmentStatus, to AppointmentStatus, release bool) (*Appointment, error) {
			gotFrom, gotRelease = from, release
			return &Appointment{ID: id, Status: to}, nil
		},
	}, fakePatients{}, &fakeLocker{})

	appt, err := svc.CancelAppointment(context.Background(), id)
	if err != nil {
		t.Fatalf("CancelAppointment error: %v", err)
	}
	if appt.Status != StatusCancelled || !gotRelease || len(gotFrom) != 2 {
		t.Fatalf("status=%s release=%v from=%v", appt.Status, gotRelease, gotFrom)
	}
}

func TestCancelAppointment_FinalStates(t *testing.T) {
	for _, status := range []AppointmentStatus{StatusCancelled, StatusExpired} {
		svc := newTestService(&fakeRepo{
			getAppointmentFn: func(context.Context, uuid.UUID) (*Appointment, error) {
				return &Appointment{Status: status}, nil
			},
		}, fakePatients{}, &fakeLocker{})

		if _, err := svc.CancelAppointment(context.Background(), uuid.New()); !errors.Is(err, ErrInvalidStatusTransition) {
			t.Fatalf("%s: error = %v", status, err)
		}
	}
}

func TestExpirePendingAppointments(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	released := map[uuid.UUID]bool{}

	svc := newTestService(&fakeRepo{
		findExpiredPendingFn: func(_ context.Context, now time.Time) ([]Appointment, error) {
			if !now.Equal(testNow) {
				t.Fatalf("now = %v", now)
			}
			return []Appointment{{ID: a}, {ID: b}, {ID: c}}, nil
		},
		transitionFn: func(_ context.Context, id uuid.UUID, _ []AppointmentStatus, to AppointmentStatus, release bool) (*Appointment, error) {
			if id == b {
				// confirmed in the meantime
				return nil, ErrAppointmentNotFound
			}
			if to != StatusExpired || !release {
				t.Fatalf("transition to=%s release=%v", to, release)
			}
			released[id] = true
			return &Appointment{ID: id, Status: to}, nil
		},
	}, fakePatients{}, &fakeLocker{})

	n, err := svc.ExpirePendingAppointments(context.Background())
	if err != nil {
		t.Fatalf("ExpirePendingAppointments error: %v", err)
	}
	if n != 2 || !released[a] || !released[c] || released[b] {
		t.Fatalf("expired %d, released %v", n, released)
	}
}

func TestGetAppointment_SlotGone(t *testing.T) {
	id := uuid.New()
	svc := newTestService(&fakeRepo{
		getAppointmentFn: func(context.Context, uuid.UUID) (*Appointment, error) {
			return &Appointment{ID: id, SlotID: uuid.New(), PatientID: uuid.New(), Status: StatusCancelled}, nil
		},
		getSlotFn: func(context.Context, uuid.UUID) (*Slot, error) {
			return nil, ErrSlotNotFound
		},
	}, fakePatients{}, &fakeLocker{})

	detail, err := svc.GetAppointment(context.Background(), id)
	if err != nil {
		t.Fatalf("GetAppointment error: %v", err)
	}
	if detail.Slot != nil || detail.Patient == nil {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestListAppointmentsByPatient_ClampsPaging(t *testing.T) {
	var gotLimit, gotOffset int
	svc := newTestService(&fakeRepo{
		listByPatientFn: func(_ context.Context, _ uuid.UUID, limit, offset int) ([]Appointment, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}, fakePatients{}, &fakeLocker{})

	_, _ = svc.ListAppointmentsByPatient(context.Background(), uuid.New(), 500, -1)
	if gotLimit != 100 || gotOffset != 0 {
		t.Fatalf("limit=%d offset=%d", gotLimit, gotOffset)
	}
}

func TestCreateAppointment_RecordsEventAfterUnlock(t *testing.T) {
	slotID, patientID := uuid.New(), uuid.New()
	locker := &fakeLocker{}
	repo := &fakeRepo{
		getSlotFn: func(context.Context, uuid.UUID) (*Slot, error) {
			return openSlot(slotID, "10:00"), nil
		},
		bookSlotFn: func(_ context.Context, slotID, patientID uuid.UUID, expiresAt time.Time) (*Appointment, error) {
			return &Appointment{ID: uuid.New(), SlotID: slotID, PatientID: patientID, Status: StatusPending, ExpiresAt: &expiresAt}, nil
		},
	}

	var recorded []string
	svc := newTestService(repo, fakePatients{}, locker)
	svc.events = events.NewRecorder(sinkFunc(func(_ context.Context, ev events.Event) error {
		if locker.held {
			t.Errorf("%s recorded while the slot lock was held", ev.Type)
		}
		recorded = append(recorded, ev.Type)
		return nil
	}), zap.NewNop())

	appt, err := svc.CreateAppointment(context.Background(), slotID, patientID)
	if err != nil {
		t.Fatalf("CreateAppointment error: %v", err)
	}
	if len(recorded) != 1 || recorded[0] != events.AppointmentCreated {
		t.Fatalf("recorded = %v", recorded)
	}
	if appt.Status != StatusPending {
		t.Fatalf("status = %s", appt.Status)
	}
}
