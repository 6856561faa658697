package schedule

// Block is a contiguous stretch of business hours.
type Block struct {
	Start Clock
	End   Clock
}

const DefaultSlotMinutes = 30

// DefaultHours are the morning and afternoon blocks new days are seeded with.
var DefaultHours = []Block{
	{Start: MustClock("09:00"), End: MustClock("12:00")},
	{Start: MustClock("14:00"), End: MustClock("18:00")},
}

// DefaultTemplate returns fresh 30 minute slots covering DefaultHours.
func DefaultTemplate() []TimeSlot {
	return BuildTemplate(DefaultHours, DefaultSlotMinutes)
}

// BuildTemplate cuts each block into consecutive slots of the given length.
// A trailing remainder shorter than one slot is dropped.
func BuildTemplate(blocks []Block, slotMinutes int) []TimeSlot {
	if slotMinutes <= 0 {
		return nil
	}
	var slots []TimeSlot
	for _, b := range blocks {
		for start := int(b.Start); start+slotMinutes <= int(b.End); start += slotMinutes {
			slots = append(slots, TimeSlot{
				StartTime:   Clock(start),
				EndTime:     Clock(start).Add(slotMinutes),
				IsAvailable: true,
				MaxBookings: 1,
			})
		}
	}
	return slots
}

// TemplateFromDay copies the shape of an existing day's slots. Booking
// counts and ids are dropped and every slot comes back available.
func TemplateFromDay(day DaySchedule) []TimeSlot {
	slots := make([]TimeSlot, 0, len(day.Slots))
	for _, s := range day.Slots {
		capacity := s.MaxBookings
		if capacity < 1 {
			capacity = 1
		}
		slots = append(slots, TimeSlot{
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			IsAvailable: true,
			MaxBookings: capacity,
		})
	}
	return slots
}

func cloneSlots(slots []TimeSlot) []TimeSlot {
	if slots == nil {
		return nil
	}
	out := make([]TimeSlot, len(slots))
	copy(out, slots)
	return out
}
