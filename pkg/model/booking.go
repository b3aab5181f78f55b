package model

// ServiceType distinguishes a regular maintenance visit, which occupies one
// workshop bay slot, from a modification project, which occupies a full day.
type ServiceType string

const (
	ServiceTypeService      ServiceType = "Service"
	ServiceTypeModification ServiceType = "Modification"
)

func (s ServiceType) IsValid() bool {
	return s == ServiceTypeService || s == ServiceTypeModification
}

// BookingStatus is owned by the internal booking service once a booking has
// been created. The gateway only ever submits bookings as Pending.
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusConfirmed BookingStatus = "Confirmed"
	StatusCancelled BookingStatus = "Cancelled"
	StatusCompleted BookingStatus = "Completed"
)

// IsActive reports whether the booking still occupies capacity.
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// AppointmentRequest is the booking payload accepted on the edge. Vehicle is
// opaque identifying data supplied by the customer or the vehicle registry.
type AppointmentRequest struct {
	CustomerID    string      `json:"customerId" validate:"required"`
	CustomerName  string      `json:"customerName" validate:"required,min=2,max=100"`
	CustomerEmail string      `json:"customerEmail"`
	Vehicle       string      `json:"vehicle"`
	ServiceType   ServiceType `json:"serviceType" validate:"required,oneof=Service Modification"`
	Date          string      `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlotID    string      `json:"timeSlotId,omitempty"`
	Modifications []string    `json:"modifications,omitempty"`
	EstimatedTime int         `json:"estimatedTime,omitempty"`
	EstimatedCost float64     `json:"estimatedCost,omitempty"`
	Status        string      `json:"status" validate:"omitempty,oneof=Pending"`
}

// Appointment is the downstream booking service's representation, as far as
// the gateway needs it for availability resync.
type Appointment struct {
	ID          string        `json:"id"`
	CustomerID  string        `json:"customerId"`
	ServiceType ServiceType   `json:"serviceType"`
	Date        string        `json:"date"`
	TimeSlotID  string        `json:"timeSlotId,omitempty"`
	Status      BookingStatus `json:"status"`
}

// ValidationResult carries every business-rule violation found in a booking
// request, in a deterministic order. Valid is true iff Errors is empty.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
