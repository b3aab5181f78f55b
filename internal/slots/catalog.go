// Package slots derives the bookable time slots for a date from the workshop
// business-hours configuration. The catalog is pure and deterministic; actual
// occupancy lives in the availability tracker.
package slots

import (
	"fmt"
	"time"

	"revamp/pkg/config"
	"revamp/pkg/model"
)

const (
	// DateLayout is the wire format for booking dates.
	DateLayout = "2006-01-02"

	timeLayout = "15:04"

	// ModificationSlotID is the pseudo slot a modification project occupies.
	// It spans the whole business day and does not collide with bay slots.
	ModificationSlotID = "full-day"
)

type Catalog struct {
	open       time.Duration
	close      time.Duration
	duration   time.Duration
	capacity   int
	closedDays map[time.Weekday]bool

	openStr  string
	closeStr string
	// bay slot templates, date-independent
	templates []template
}

type template struct {
	id    string
	start string
	end   string
}

func NewCatalog(cfg *config.Config) (*Catalog, error) {
	open, err := parseClock(cfg.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("invalid open time %q: %w", cfg.OpenTime, err)
	}
	closeAt, err := parseClock(cfg.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("invalid close time %q: %w", cfg.CloseTime, err)
	}
	if closeAt <= open {
		return nil, fmt.Errorf("close time %s must be after open time %s", cfg.CloseTime, cfg.OpenTime)
	}

	closedDays := make(map[time.Weekday]bool, len(cfg.ClosedWeekdays))
	for _, d := range cfg.ClosedWeekdays {
		wd, ok := d.ToTime()
		if !ok {
			return nil, fmt.Errorf("invalid closed weekday %q", d)
		}
		closedDays[wd] = true
	}

	c := &Catalog{
		open:       open,
		close:      closeAt,
		duration:   cfg.SlotDuration,
		capacity:   cfg.SlotCapacity,
		closedDays: closedDays,
		openStr:    cfg.OpenTime,
		closeStr:   cfg.CloseTime,
	}

	for start := open; start+cfg.SlotDuration <= closeAt; start += cfg.SlotDuration {
		end := start + cfg.SlotDuration
		startStr := formatClock(start)
		endStr := formatClock(end)
		c.templates = append(c.templates, template{
			id:    startStr + "-" + endStr,
			start: startStr,
			end:   endStr,
		})
	}
	if len(c.templates) == 0 {
		return nil, fmt.Errorf("slot duration %s does not fit between %s and %s", cfg.SlotDuration, cfg.OpenTime, cfg.CloseTime)
	}

	return c, nil
}

// ParseDate validates and parses a booking date.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// IsOpen reports whether the workshop accepts appointments on the date.
// Invalid dates are treated as closed.
func (c *Catalog) IsOpen(date string) bool {
	day, err := ParseDate(date)
	if err != nil {
		return false
	}
	return !c.closedDays[day.Weekday()]
}

// SlotsFor returns the bay slots for a date, in chronological order. Closed
// days have no slots.
func (c *Catalog) SlotsFor(date string) []model.TimeSlot {
	if !c.IsOpen(date) {
		return nil
	}

	out := make([]model.TimeSlot, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, model.TimeSlot{
			ID:        t.id,
			Date:      date,
			StartTime: t.start,
			EndTime:   t.end,
			Capacity:  c.capacity,
		})
	}
	return out
}

// ModificationSlot returns the full-day pseudo slot for a date. Its capacity
// is reported as 0 because the daily modification cap is enforced by the
// availability tracker, not per slot.
func (c *Catalog) ModificationSlot(date string) model.TimeSlot {
	return model.TimeSlot{
		ID:        ModificationSlotID,
		Date:      date,
		StartTime: c.openStr,
		EndTime:   c.closeStr,
	}
}

// Contains reports whether slotID is a valid bay slot on the date.
func (c *Catalog) Contains(date, slotID string) bool {
	if !c.IsOpen(date) {
		return false
	}
	for _, t := range c.templates {
		if t.id == slotID {
			return true
		}
	}
	return false
}

// SlotCapacity is the per-slot booking capacity from configuration.
func (c *Catalog) SlotCapacity() int {
	return c.capacity
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func formatClock(d time.Duration) string {
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	return fmt.Sprintf("%02d:%02d", h, m)
}
