package model

// TimeSlot is a bookable time window on a single date. Slots are derived
// deterministically from the business-hours configuration and are not
// persisted; BookedCount is filled in from the availability tracker when a
// slot is returned to a caller.
type TimeSlot struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Capacity    int    `json:"capacity"`
	BookedCount int    `json:"bookedCount"`
}

// Remaining returns the number of free capacity units in the slot.
func (s *TimeSlot) Remaining() int {
	if s.BookedCount >= s.Capacity {
		return 0
	}
	return s.Capacity - s.BookedCount
}

// IsFull reports whether the slot has no free capacity left.
func (s *TimeSlot) IsFull() bool {
	return s.Capacity > 0 && s.BookedCount >= s.Capacity
}
