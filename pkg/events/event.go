package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted on the appointment lifecycle topic.
const (
	TypeAppointmentConfirmed = "appointment_confirmed"
	TypeAppointmentCancelled = "appointment_cancelled"
	TypeAvailabilityResynced = "availability_resynced"
)

// Header keys shared with downstream consumers.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

// Event is the envelope published for every appointment lifecycle change.
// Key fields partition by date so all events for one day stay ordered.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	OccurredAt  time.Time `json:"occurredAt"`
	CustomerID  string    `json:"customerId,omitempty"`
	ServiceType string    `json:"serviceType,omitempty"`
	Date        string    `json:"date,omitempty"`
	TimeSlotID  string    `json:"timeSlotId,omitempty"`
	Details     any       `json:"details,omitempty"`
}

func NewEvent(eventType string) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
}

// PartitionKey returns the Kafka message key. Events without a date fall back
// to the event ID so they still spread across partitions.
func (e Event) PartitionKey() string {
	if e.Date != "" {
		return e.Date
	}
	return e.ID
}
