package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// Clock is a wall-clock time of day expressed as minutes since midnight.
// It carries no zone: schedules are kept in the clinic's local time.
type Clock int

// ParseClock parses a 24-hour "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return Clock(h*60 + m), nil
}

// MustClock is ParseClock for package-level constants.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Add advances the clock, wrapping around midnight in either direction.
func (c Clock) Add(minutes int) Clock {
	total := (int(c) + minutes) % minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}
	return Clock(total)
}

// EndMinute is the minute a slot ending at c finishes. An end time of 00:00
// is midnight at the close of the day.
func (c Clock) EndMinute() int {
	if c == 0 {
		return minutesPerDay
	}
	return int(c)
}

// ClockAt converts a stored minute, where 1440 is the end of the day, back to
// a Clock.
func ClockAt(minute int) Clock {
	return Clock(minute % minutesPerDay)
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// AddMinutes advances an "HH:MM" string by the given number of minutes.
// The result wraps within a single day, so "23:45" plus 30 is "00:15".
func AddMinutes(hhmm string, minutes int) (string, error) {
	c, err := ParseClock(hhmm)
	if err != nil {
		return "", err
	}
	return c.Add(minutes).String(), nil
}
