package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

// Collection is the editable list of days for one scope. It holds at most
// one DaySchedule per date.
type Collection struct {
	Days []DaySchedule
}

func (c *Collection) index(d civil.Date) int {
	for i := range c.Days {
		if c.Days[i].Date == d {
			return i
		}
	}
	return -1
}

func (c *Collection) Has(d civil.Date) bool {
	return c.index(d) >= 0
}

func (c *Collection) Day(d civil.Date) (DaySchedule, bool) {
	i := c.index(d)
	if i < 0 {
		return DaySchedule{}, false
	}
	return c.Days[i], true
}

// AddDay inserts a single day seeded from the default template.
func (c *Collection) AddDay(d civil.Date) error {
	if !d.IsValid() {
		return validationError("please select a date")
	}
	if c.Has(d) {
		return ErrDayExists
	}
	c.Days = append(c.Days, DaySchedule{
		Date:        d,
		IsAvailable: true,
		Slots:       DefaultTemplate(),
	})
	c.sort()
	return nil
}

func (c *Collection) RemoveDay(d civil.Date) error {
	i := c.index(d)
	if i < 0 {
		return ErrDayNotFound
	}
	c.Days = append(c.Days[:i], c.Days[i+1:]...)
	return nil
}

func (c *Collection) ToggleSlot(d civil.Date, slot int) error {
	s, err := c.slot(d, slot)
	if err != nil {
		return err
	}
	s.IsAvailable = !s.IsAvailable
	return nil
}

// MaxCapacity bounds how many bookings one slot may take.
const MaxCapacity = 1000

// SetCapacity reads value as an integer and stores it clamped to
// [1, MaxCapacity] as the slot's capacity.
func (c *Collection) SetCapacity(d civil.Date, slot int, value string) (int, error) {
	s, err := c.slot(d, slot)
	if err != nil {
		return 0, err
	}
	s.MaxBookings = ClampCapacity(value)
	return s.MaxBookings, nil
}

// ClampCapacity takes the leading integer of value, so "2.5" and "3 seats"
// read as 2 and 3. Input with no leading integer, and anything below 1,
// counts as 1. Values above MaxCapacity are capped.
func ClampCapacity(value string) int {
	v := strings.TrimSpace(value)
	neg := false
	if v != "" && (v[0] == '+' || v[0] == '-') {
		neg = v[0] == '-'
		v = v[1:]
	}
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == 0 || neg {
		return 1
	}
	digits := strings.TrimLeft(v[:end], "0")
	if len(digits) > len(strconv.Itoa(MaxCapacity)) {
		return MaxCapacity
	}
	n, _ := strconv.Atoi("0" + digits)
	switch {
	case n < 1:
		return 1
	case n > MaxCapacity:
		return MaxCapacity
	}
	return n
}

// Apply runs a recurrence against the collection and appends what it produced.
func (c *Collection) Apply(r Recurrence) Expansion {
	exp := Expand(r, c)
	c.Days = append(c.Days, exp.Days...)
	c.sort()
	return exp
}

func (c *Collection) slot(d civil.Date, slot int) (*TimeSlot, error) {
	i := c.index(d)
	if i < 0 {
		return nil, ErrDayNotFound
	}
	if slot < 0 || slot >= len(c.Days[i].Slots) {
		return nil, ErrSlotNotFound
	}
	return &c.Days[i].Slots[slot], nil
}

func (c *Collection) sort() {
	sort.SliceStable(c.Days, func(i, j int) bool {
		return c.Days[i].Date.Before(c.Days[j].Date)
	})
}

// Normalize orders days and slots and checks the invariants a stored
// schedule must satisfy.
func (c *Collection) Normalize() error {
	seen := make(map[civil.Date]struct{}, len(c.Days))
	for i := range c.Days {
		day := &c.Days[i]
		if !day.Date.IsValid() {
			return validationError("invalid date in schedule")
		}
		if _, ok := seen[day.Date]; ok {
			return validationError(fmt.Sprintf("duplicate schedule for %s", day.Date))
		}
		seen[day.Date] = struct{}{}

		sort.SliceStable(day.Slots, func(a, b int) bool {
			return day.Slots[a].StartTime < day.Slots[b].StartTime
		})
		for j, s := range day.Slots {
			if s.EndTime.EndMinute() <= int(s.StartTime) {
				return validationError(fmt.Sprintf("%s %s: slot must end after it starts on the same day", day.Date, s.StartTime))
			}
			if s.MaxBookings < 1 {
				return validationError(fmt.Sprintf("%s %s: max bookings must be at least 1", day.Date, s.StartTime))
			}
			if s.MaxBookings > MaxCapacity {
				return validationError(fmt.Sprintf("%s %s: max bookings cannot exceed %d", day.Date, s.StartTime, MaxCapacity))
			}
			if s.CurrentBookings < 0 {
				return validationError(fmt.Sprintf("%s %s: current bookings cannot be negative", day.Date, s.StartTime))
			}
			if j > 0 && int(s.StartTime) < day.Slots[j-1].EndTime.EndMinute() {
				return validationError(fmt.Sprintf("%s %s: slot overlaps the previous slot", day.Date, s.StartTime))
			}
		}
	}
	c.sort()
	return nil
}
