package schedule

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// TimeSlot is one bookable window inside a day.
type TimeSlot struct {
	ID              uuid.UUID `json:"id"`
	StartTime       Clock     `json:"start_time"`
	EndTime         Clock     `json:"end_time"`
	IsAvailable     bool      `json:"is_available"`
	MaxBookings     int       `json:"max_bookings"`
	CurrentBookings int       `json:"current_bookings"`
}

// DaySchedule is the availability of one calendar date.
type DaySchedule struct {
	Date        civil.Date `json:"date"`
	IsAvailable bool       `json:"is_available"`
	Slots       []TimeSlot `json:"slots"`
}

// Clone returns a copy that shares no slot storage with d.
func (d DaySchedule) Clone() DaySchedule {
	d.Slots = cloneSlots(d.Slots)
	return d
}

// StoredSchedule is the persisted collection for one scope.
type StoredSchedule struct {
	DoctorID  uuid.UUID     `json:"doctor_id"`
	Scope     Scope         `json:"scope"`
	Version   int64         `json:"version"`
	Days      []DaySchedule `json:"days"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

// SlotAvailability is a stored slot as seen by someone trying to book it.
type SlotAvailability struct {
	TimeSlot
	Remaining int  `json:"remaining"`
	Bookable  bool `json:"bookable"`
}

// DayAvailability is the read model served to the booking flow.
type DayAvailability struct {
	Date        civil.Date         `json:"date"`
	Scope       Scope              `json:"scope"`
	IsAvailable bool               `json:"is_available"`
	Slots       []SlotAvailability `json:"slots"`
}

// Draft is an in-progress edit of one scope's schedule.
type Draft struct {
	DoctorID    uuid.UUID     `json:"doctor_id"`
	Scope       Scope         `json:"scope"`
	BaseVersion int64         `json:"base_version"`
	Days        []DaySchedule `json:"days"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
