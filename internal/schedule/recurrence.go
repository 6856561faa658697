package schedule

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Recurrence describes a request to stamp a slot template onto every
// matching date of a range.
type Recurrence struct {
	Anchor   civil.Date
	Range    DateRange
	Weekdays []time.Weekday
	Template []TimeSlot
	Today    civil.Date
}

// Expansion is the outcome of a recurrence run.
type Expansion struct {
	Days      []DaySchedule `json:"-"`
	Requested int           `json:"requested"`
	Added     int           `json:"added"`
	Skipped   int           `json:"skipped"`
}

// ParseWeekdays validates weekday indices, 0 being Sunday.
func ParseWeekdays(in []int) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(in))
	seen := make(map[int]struct{}, len(in))
	for _, wd := range in {
		if wd < 0 || wd > 6 {
			return nil, validationError(fmt.Sprintf("invalid weekday %d", wd))
		}
		if _, ok := seen[wd]; ok {
			continue
		}
		seen[wd] = struct{}{}
		out = append(out, time.Weekday(wd))
	}
	return out, nil
}

// Expand returns new days for every date in the range that falls on a
// selected weekday, is not before Today and is not already in existing.
// existing is never modified.
func Expand(r Recurrence, existing *Collection) Expansion {
	selected := make(map[time.Weekday]bool, 7)
	for _, wd := range r.Weekdays {
		selected[wd] = true
	}
	if len(selected) == 0 {
		selected[weekday(r.Anchor)] = true
	}

	var exp Expansion
	for d := r.Range.Start; !d.After(r.Range.End); d = d.AddDays(1) {
		if !selected[weekday(d)] {
			continue
		}
		exp.Requested++
		if d.Before(r.Today) {
			continue
		}
		if existing != nil && existing.Has(d) {
			continue
		}
		exp.Days = append(exp.Days, DaySchedule{
			Date:        d,
			IsAvailable: true,
			Slots:       cloneSlots(r.Template),
		})
	}

	exp.Added = len(exp.Days)
	exp.Skipped = exp.Requested - exp.Added
	return exp
}
