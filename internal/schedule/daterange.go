package schedule

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

type RangeKind string

const (
	RangeWeek  RangeKind = "week"
	RangeMonth RangeKind = "month"
	RangeSpan  RangeKind = "range"
)

// MaxRangeDays caps explicit ranges and availability reads.
const MaxRangeDays = 180

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

func ParseRangeKind(s string) (RangeKind, error) {
	switch k := RangeKind(strings.ToLower(strings.TrimSpace(s))); k {
	case RangeWeek, RangeMonth, RangeSpan:
		return k, nil
	case "":
		return RangeWeek, nil
	default:
		return "", validationError(fmt.Sprintf("unknown range scope %q", s))
	}
}

// ComputeRange resolves a scope around the anchor date. end is only read for
// RangeSpan.
func ComputeRange(anchor civil.Date, kind RangeKind, end *civil.Date) (DateRange, error) {
	if !anchor.IsValid() {
		return DateRange{}, validationError("please select a date")
	}

	switch kind {
	case RangeWeek:
		start := anchor.AddDays(-int(weekday(anchor)))
		return DateRange{Start: start, End: start.AddDays(6)}, nil

	case RangeMonth:
		first := civil.Date{Year: anchor.Year, Month: anchor.Month, Day: 1}
		last := civil.DateOf(time.Date(anchor.Year, anchor.Month+1, 0, 0, 0, 0, 0, time.UTC))
		return DateRange{Start: first, End: last}, nil

	case RangeSpan:
		if end == nil || !end.IsValid() {
			return DateRange{}, validationError("please select an end date")
		}
		if end.Before(anchor) {
			return DateRange{}, validationError("end date must be on or after the start date")
		}
		if end.DaysSince(anchor) > MaxRangeDays {
			return DateRange{}, validationError(fmt.Sprintf("date range cannot exceed %d days", MaxRangeDays))
		}
		return DateRange{Start: anchor, End: *end}, nil

	default:
		return DateRange{}, validationError(fmt.Sprintf("unknown range scope %q", kind))
	}
}

// Days is the number of dates in the range.
func (r DateRange) Days() int {
	return r.End.DaysSince(r.Start) + 1
}

func (r DateRange) Contains(d civil.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Bounds returns the first and last instants of the range in loc.
func (r DateRange) Bounds(loc *time.Location) (time.Time, time.Time) {
	start := r.Start.In(loc)
	end := r.End.AddDays(1).In(loc).Add(-time.Millisecond)
	return start, end
}

func weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}
