package schedule

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *civil.Date {
	d := date(s)
	return &d
}

func TestComputeRange(t *testing.T) {
	tests := []struct {
		name      string
		anchor    string
		kind      RangeKind
		end       *civil.Date
		wantStart string
		wantEnd   string
	}{
		{"week from wednesday", "2025-06-11", RangeWeek, nil, "2025-06-08", "2025-06-14"},
		{"week from sunday", "2025-06-08", RangeWeek, nil, "2025-06-08", "2025-06-14"},
		{"week from saturday", "2025-06-14", RangeWeek, nil, "2025-06-08", "2025-06-14"},
		{"week across year", "2025-12-31", RangeWeek, nil, "2025-12-28", "2026-01-03"},
		{"month", "2025-06-11", RangeMonth, nil, "2025-06-01", "2025-06-30"},
		{"leap february", "2024-02-10", RangeMonth, nil, "2024-02-01", "2024-02-29"},
		{"december", "2025-12-05", RangeMonth, nil, "2025-12-01", "2025-12-31"},
		{"range", "2025-06-11", RangeSpan, datePtr("2025-06-20"), "2025-06-11", "2025-06-20"},
		{"single day range", "2025-06-11", RangeSpan, datePtr("2025-06-11"), "2025-06-11", "2025-06-11"},
		{"range at limit", "2025-01-01", RangeSpan, datePtr("2025-06-30"), "2025-01-01", "2025-06-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeRange(date(tt.anchor), tt.kind, tt.end)
			if err != nil {
				t.Fatalf("ComputeRange error: %v", err)
			}
			if got.Start != date(tt.wantStart) || got.End != date(tt.wantEnd) {
				t.Fatalf("got %s..%s, want %s..%s", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
			if !got.Contains(date(tt.anchor)) {
				t.Fatalf("range does not contain its anchor")
			}
		})
	}
}

func TestComputeRange_Errors(t *testing.T) {
	tests := []struct {
		name    string
		anchor  civil.Date
		kind    RangeKind
		end     *civil.Date
		wantErr string
	}{
		{"no anchor", civil.Date{}, RangeWeek, nil, "please select a date"},
		{"no end", date("2025-06-11"), RangeSpan, nil, "please select an end date"},
		{"end before start", date("2025-06-11"), RangeSpan, datePtr("2025-06-10"), "end date must be on or after the start date"},
		{"too long", date("2025-01-01"), RangeSpan, datePtr("2025-07-01"), "date range cannot exceed 180 days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeRange(tt.anchor, tt.kind, tt.end)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if vErr.Error() != tt.wantErr {
				t.Fatalf("error = %q, want %q", vErr.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseRangeKind(t *testing.T) {
	if k, _ := ParseRangeKind(""); k != RangeWeek {
		t.Fatalf("empty = %q, want week", k)
	}
	if k, _ := ParseRangeKind(" Month "); k != RangeMonth {
		t.Fatalf("Month = %q", k)
	}
	if _, err := ParseRangeKind("year"); err == nil {
		t.Fatalf("expected error for year")
	}
}

func TestDateRange_Bounds(t *testing.T) {
	r := DateRange{Start: date("2025-06-08"), End: date("2025-06-14")}
	if r.Days() != 7 {
		t.Fatalf("Days = %d", r.Days())
	}
	start, end := r.Bounds(time.UTC)
	if !start.Equal(time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Equal(time.Date(2025, 6, 14, 23, 59, 59, 999_000_000, time.UTC)) {
		t.Fatalf("end = %v", end)
	}
}
