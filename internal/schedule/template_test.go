package schedule

import "testing"

func TestDefaultTemplate(t *testing.T) {
	slots := DefaultTemplate()
	if len(slots) != 14 {
		t.Fatalf("len = %d, want 14", len(slots))
	}

	want := []string{
		"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
		"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00", "17:30",
	}
	for i, s := range slots {
		if s.StartTime.String() != want[i] {
			t.Fatalf("slot %d start = %s, want %s", i, s.StartTime, want[i])
		}
		if int(s.EndTime-s.StartTime) != DefaultSlotMinutes {
			t.Fatalf("slot %d is %d minutes long", i, s.EndTime-s.StartTime)
		}
		if !s.IsAvailable || s.MaxBookings != 1 || s.CurrentBookings != 0 {
			t.Fatalf("slot %d = %+v, want available with capacity 1 and no bookings", i, s)
		}
	}
	if slots[5].EndTime.String() != "12:00" || slots[13].EndTime.String() != "18:00" {
		t.Fatalf("blocks end at %s and %s", slots[5].EndTime, slots[13].EndTime)
	}
}

func TestDefaultTemplate_ReturnsFreshSlice(t *testing.T) {
	a := DefaultTemplate()
	a[0].IsAvailable = false
	b := DefaultTemplate()
	if !b[0].IsAvailable {
		t.Fatalf("template shared storage between calls")
	}
}

func TestBuildTemplate_DropsRemainder(t *testing.T) {
	slots := BuildTemplate([]Block{{Start: MustClock("10:00"), End: MustClock("11:10")}}, 30)
	if len(slots) != 2 {
		t.Fatalf("len = %d, want 2", len(slots))
	}
	if BuildTemplate(DefaultHours, 0) != nil {
		t.Fatalf("expected nil for zero slot length")
	}
}

func TestTemplateFromDay(t *testing.T) {
	day := DaySchedule{Slots: []TimeSlot{
		{StartTime: MustClock("08:00"), EndTime: MustClock("08:45"), IsAvailable: false, MaxBookings: 3, CurrentBookings: 2},
		{StartTime: MustClock("09:00"), EndTime: MustClock("09:45"), MaxBookings: 0},
	}}
	got := TemplateFromDay(day)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].MaxBookings != 3 || got[0].CurrentBookings != 0 || !got[0].IsAvailable {
		t.Fatalf("slot 0 = %+v", got[0])
	}
	if got[1].MaxBookings != 1 {
		t.Fatalf("slot 1 capacity = %d, want 1", got[1].MaxBookings)
	}
}
