package schedule

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestMergeSlots(t *testing.T) {
	day := date("2025-06-10")
	slot := func(start, end string, max int) TimeSlot {
		return TimeSlot{StartTime: MustClock(start), EndTime: MustClock(end), IsAvailable: true, MaxBookings: max}
	}
	key := func(start, end string) slotKey {
		return slotKey{day: day, start: MustClock(start), end: MustClock(end)}
	}
	bookedID := uuid.MustParse("00000000-0000-0000-0000-00000000b001")
	emptyID := uuid.MustParse("00000000-0000-0000-0000-00000000e001")

	stored := func() map[slotKey]storedSlot {
		return map[slotKey]storedSlot{
			key("09:00", "09:30"): {id: bookedID, currentBookings: 2},
			key("10:00", "10:30"): {id: emptyID, currentBookings: 0},
		}
	}

	tests := []struct {
		name     string
		slots    []TimeSlot
		wantErr  error
		wantKeep map[uuid.UUID]int
	}{
		{
			name:     "slots kept",
			slots:    []TimeSlot{slot("09:00", "09:30", 3), slot("10:00", "10:30", 1)},
			wantKeep: map[uuid.UUID]int{bookedID: 2, emptyID: 0},
		},
		{
			name:     "empty slot re-timed",
			slots:    []TimeSlot{slot("09:00", "09:30", 2), slot("10:15", "10:45", 1)},
			wantKeep: map[uuid.UUID]int{bookedID: 2},
		},
		{
			name:    "booked slot re-timed",
			slots:   []TimeSlot{slot("09:00", "10:00", 2), slot("10:00", "10:30", 1)},
			wantErr: ErrSlotHasBookings,
		},
		{
			name:    "booked slot dropped",
			slots:   []TimeSlot{slot("10:00", "10:30", 1)},
			wantErr: ErrSlotHasBookings,
		},
		{
			name:    "capacity below bookings",
			slots:   []TimeSlot{slot("09:00", "09:30", 1), slot("10:00", "10:30", 1)},
			wantErr: ErrSlotHasBookings,
		},
		{
			name:     "empty slot dropped",
			slots:    []TimeSlot{slot("09:00", "09:30", 2)},
			wantKeep: map[uuid.UUID]int{bookedID: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := stored()
			got, err := mergeSlots(existing, []DaySchedule{{Date: day, IsAvailable: true, Slots: tt.slots}})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("mergeSlots error: %v", err)
			}
			if len(got) != len(tt.slots) {
				t.Fatalf("rows = %d, want %d", len(got), len(tt.slots))
			}

			fresh := 0
			for _, m := range got {
				if m.day != day {
					t.Fatalf("row day = %s", m.day)
				}
				current, kept := tt.wantKeep[m.id]
				if !kept {
					fresh++
					if m.currentBookings != 0 {
						t.Fatalf("new slot %s has %d bookings", m.slot.StartTime, m.currentBookings)
					}
					continue
				}
				if m.currentBookings != current {
					t.Fatalf("slot %s bookings = %d, want %d", m.slot.StartTime, m.currentBookings, current)
				}
			}
			if want := len(tt.slots) - len(tt.wantKeep); fresh != want {
				t.Fatalf("new slots = %d, want %d", fresh, want)
			}
			if len(existing) != 2 {
				t.Fatalf("stored slots map was modified")
			}
		})
	}
}

func TestMergeSlots_MidnightEndMatchesStoredSlot(t *testing.T) {
	day := date("2025-06-10")
	id := uuid.New()
	existing := map[slotKey]storedSlot{
		{day: day, start: MustClock("23:30"), end: ClockAt(1440)}: {id: id, currentBookings: 1},
	}

	got, err := mergeSlots(existing, []DaySchedule{{Date: day, Slots: []TimeSlot{
		{StartTime: MustClock("23:30"), EndTime: MustClock("00:00"), IsAvailable: true, MaxBookings: 1},
	}}})
	if err != nil {
		t.Fatalf("mergeSlots error: %v", err)
	}
	if got[0].id != id || got[0].currentBookings != 1 {
		t.Fatalf("row = %+v", got[0])
	}
}
