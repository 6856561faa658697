package schedule

import "testing"

func TestAddMinutes(t *testing.T) {
	tests := []struct {
		in      string
		minutes int
		want    string
	}{
		{"09:00", 30, "09:30"},
		{"09:45", 30, "10:15"},
		{"11:30", 30, "12:00"},
		{"23:45", 30, "00:15"},
		{"00:10", -20, "23:50"},
		{"12:00", 0, "12:00"},
		{"08:00", 24 * 60, "08:00"},
	}
	for _, tt := range tests {
		got, err := AddMinutes(tt.in, tt.minutes)
		if err != nil {
			t.Fatalf("AddMinutes(%q, %d) error: %v", tt.in, tt.minutes, err)
		}
		if got != tt.want {
			t.Fatalf("AddMinutes(%q, %d) = %q, want %q", tt.in, tt.minutes, got, tt.want)
		}
	}
}

func TestParseClock_Rejects(t *testing.T) {
	for _, in := range []string{"", "9", "24:00", "12:60", "12:5", "ab:cd", "-1:00"} {
		if _, err := ParseClock(in); err == nil {
			t.Fatalf("ParseClock(%q) expected error", in)
		}
	}
}

func TestClock_TextRoundTrip(t *testing.T) {
	c := MustClock("07:05")
	b, _ := c.MarshalText()
	if string(b) != "07:05" {
		t.Fatalf("MarshalText = %q", b)
	}
	var back Clock
	if err := back.UnmarshalText([]byte("17:40")); err != nil {
		t.Fatalf("UnmarshalText error: %v", err)
	}
	if back.Hour() != 17 || back.Minute() != 40 {
		t.Fatalf("got %s, want 17:40", back)
	}
}

func TestClock_EndOfDay(t *testing.T) {
	if got := MustClock("00:00").EndMinute(); got != 1440 {
		t.Fatalf("EndMinute(00:00) = %d, want 1440", got)
	}
	if got := MustClock("18:30").EndMinute(); got != 1110 {
		t.Fatalf("EndMinute(18:30) = %d, want 1110", got)
	}
	if got := ClockAt(1440); got != MustClock("00:00") {
		t.Fatalf("ClockAt(1440) = %s, want 00:00", got)
	}
	if got := ClockAt(570); got != MustClock("09:30") {
		t.Fatalf("ClockAt(570) = %s, want 09:30", got)
	}
}
