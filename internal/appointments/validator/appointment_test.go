package validator

import (
	"strings"
	"testing"
	"time"

	"revamp/internal/availability"
	"revamp/internal/modcatalog"
	"revamp/internal/slots"
	"revamp/pkg/config"
	"revamp/pkg/logger"
	"revamp/pkg/model"
)

// The fixed clock makes 2025-01-06 (a Monday) a bookable future date and
// 2025-01-05 the next closed Sunday.
var testNow = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

func newTestValidator(t *testing.T, cfg Config) (*AppointmentValidator, *availability.Tracker) {
	t.Helper()

	catalog, err := slots.NewCatalog(&config.Config{
		OpenTime:       "09:00",
		CloseTime:      "18:00",
		SlotDuration:   3 * time.Hour,
		SlotCapacity:   cfg.SlotCapacity,
		ClosedWeekdays: []config.Weekday{"Sunday"},
	})
	if err != nil {
		t.Fatalf("failed to build slot catalog: %v", err)
	}

	tracker := availability.NewTracker(cfg.SlotCapacity, cfg.ModificationCap, time.Minute)
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON})

	v := NewAppointmentValidator(catalog, modcatalog.NewDefault(), tracker, cfg, log)
	v.now = func() time.Time { return testNow }
	return v, tracker
}

func validServiceRequest() *model.AppointmentRequest {
	return &model.AppointmentRequest{
		CustomerID:    "cust-1",
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		Vehicle:       "Toyota Camry 2020 - ABC-1234",
		ServiceType:   model.ServiceTypeService,
		Date:          "2025-01-06",
		TimeSlotID:    "09:00-12:00",
	}
}

func validModificationRequest() *model.AppointmentRequest {
	return &model.AppointmentRequest{
		CustomerID:    "cust-2",
		CustomerName:  "John Roe",
		Vehicle:       "Honda Civic 2019 - XYZ-9876",
		ServiceType:   model.ServiceTypeModification,
		Date:          "2025-01-06",
		Modifications: []string{"Engine Change", "painting"},
	}
}

func assertHasError(t *testing.T, result model.ValidationResult, fragment string) {
	t.Helper()
	for _, e := range result.Errors {
		if strings.Contains(e, fragment) {
			return
		}
	}
	t.Errorf("expected an error containing %q, got %v", fragment, result.Errors)
}

func TestValidate_ValidRequests(t *testing.T) {
	v, _ := newTestValidator(t, Config{SlotCapacity: 1})

	tests := []struct {
		name string
		req  *model.AppointmentRequest
	}{
		{"service appointment", validServiceRequest()},
		{"modification project", validModificationRequest()},
		{"same-day booking", func() *model.AppointmentRequest {
			r := validServiceRequest()
			r.Date = "2025-01-02"
			return r
		}()},
		{"email is optional", func() *model.AppointmentRequest {
			r := validServiceRequest()
			r.CustomerEmail = ""
			return r
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.req)
			if !result.Valid {
				t.Errorf("expected valid, got errors: %v", result.Errors)
			}
		})
	}
}

func TestValidate_FieldShape(t *testing.T) {
	v, _ := newTestValidator(t, Config{SlotCapacity: 1})

	t.Run("empty request collects every violation", func(t *testing.T) {
		result := v.Validate(&model.AppointmentRequest{})
		if result.Valid {
			t.Fatal("expected invalid")
		}
		assertHasError(t, result, "CustomerID is required")
		assertHasError(t, result, "CustomerName is required")
		assertHasError(t, result, "ServiceType is required")
		assertHasError(t, result, "Date is required")
		assertHasError(t, result, "Vehicle information is required")
	})

	t.Run("short name", func(t *testing.T) {
		req := validServiceRequest()
		req.CustomerName = "J"
		assertHasError(t, v.Validate(req), "CustomerName must be at least 2")
	})

	t.Run("bad date format", func(t *testing.T) {
		req := validServiceRequest()
		req.Date = "06/01/2025"
		assertHasError(t, v.Validate(req), "Date must be a date in YYYY-MM-DD format")
	})

	t.Run("bad service type", func(t *testing.T) {
		req := validServiceRequest()
		req.ServiceType = "Detailing"
		assertHasError(t, v.Validate(req), "ServiceType must be one of")
	})

	t.Run("bad email", func(t *testing.T) {
		req := validServiceRequest()
		req.CustomerEmail = "not-an-email"
		assertHasError(t, v.Validate(req), "CustomerEmail must be a valid email address")
	})
}

func TestValidate_DateRules(t *testing.T) {
	t.Run("past date", func(t *testing.T) {
		v, _ := newTestValidator(t, Config{SlotCapacity: 1})
		req := validServiceRequest()
		req.Date = "2025-01-01"
		assertHasError(t, v.Validate(req), "cannot be scheduled in the past")
	})

	t.Run("lead time enforced", func(t *testing.T) {
		v, _ := newTestValidator(t, Config{SlotCapacity: 1, MinLeadDays: 3})
		req := validServiceRequest()
		req.Date = "2025-01-03"
		assertHasError(t, v.Validate(req), "at least 3 day(s) in advance")

		req.Date = "2025-01-06"
		if result := v.Validate(req); !result.Valid {
			t.Errorf("date beyond lead time should pass, got %v", result.Errors)
		}
	})
}

func TestValidate_ServiceSlotRules(t *testing.T) {
	t.Run("missing slot", func(t *testing.T) {
		v, _ := newTestValidator(t, Config{SlotCapacity: 1})
		req := validServiceRequest()
		req.TimeSlotID = ""
		assertHasError(t, v.Validate(req), "A time slot is required")
	})

	t.Run("unknown slot", func(t *testing.T) {
		v, _ := newTestValidator(t, Config{SlotCapacity: 1})
		req := validServiceRequest()
		req.TimeSlotID = "18:00-21:00"
		assertHasError(t, v.Validate(req), "Time slot 18:00-21:00 does not exist")
	})

	t.Run("closed day", func(t *testing.T) {
		v, _ := newTestValidator(t, Config{SlotCapacity: 1})
		req := validServiceRequest()
		req.Date = "2025-01-05"
		assertHasError(t, v.Validate(req), "closed on the selected date")
	})

	t.Run("fully booked slot", func(t *testing.T) {
		v, tracker := newTestValidator(t, Config{SlotCapacity: 1})
		if _, err := tracker.ReserveSlot("2025-01-06", "09:00-12:00"); err != nil {
			t.Fatalf("failed to occupy slot: %v", err)
		}
		assertHasError(t, v.Validate(validServiceRequest()), "fully booked")
	})
}

func TestValidate_ModificationRules(t *testing.T) {
	t.Run("no modifications listed", func(t *testing.T) {
		v, _ := newTestValidator(t, Config{SlotCapacity: 1})
		req := validModificationRequest()
		req.Modifications = []string{"  ", ""}
		assertHasError(t, v.Validate(req), "At least one modification service is required")
	})

	t.Run("unknown modification", func(t *testing.T) {
		v, _ := newTestValidator(t, Config{SlotCapacity: 1})
		req := validModificationRequest()
		req.Modifications = []string{"Engine Change", "Flux Capacitor"}
		assertHasError(t, v.Validate(req), "Unknown modification service: Flux Capacitor")
	})

	t.Run("duplicate modification by id and name", func(t *testing.T) {
		v, _ := newTestValidator(t, Config{SlotCapacity: 1})
		req := validModificationRequest()
		req.Modifications = []string{"Engine Change", "engine-change"}
		assertHasError(t, v.Validate(req), "Duplicate modification service: Engine Change")
	})

	t.Run("daily cap reached", func(t *testing.T) {
		v, tracker := newTestValidator(t, Config{SlotCapacity: 1, ModificationCap: 1})
		if _, err := tracker.ReserveModification("2025-01-06"); err != nil {
			t.Fatalf("failed to occupy modification budget: %v", err)
		}
		assertHasError(t, v.Validate(validModificationRequest()), "No modification capacity left")
	})

	t.Run("zero cap admits many", func(t *testing.T) {
		v, tracker := newTestValidator(t, Config{SlotCapacity: 1})
		for i := 0; i < 10; i++ {
			if _, err := tracker.ReserveModification("2025-01-06"); err != nil {
				t.Fatalf("reservation %d failed: %v", i, err)
			}
		}
		if result := v.Validate(validModificationRequest()); !result.Valid {
			t.Errorf("unlimited cap should accept, got %v", result.Errors)
		}
	})
}

func TestValidate_CollectsAcrossRuleGroups(t *testing.T) {
	v, _ := newTestValidator(t, Config{SlotCapacity: 1})

	req := &model.AppointmentRequest{
		CustomerID:    "cust-3",
		CustomerName:  "Jane Doe",
		CustomerEmail: "broken",
		ServiceType:   model.ServiceTypeService,
		Date:          "2024-12-31",
		TimeSlotID:    "09:00-12:00",
	}

	result := v.Validate(req)
	if result.Valid {
		t.Fatal("expected invalid")
	}
	if len(result.Errors) < 3 {
		t.Errorf("expected all violations collected, got %v", result.Errors)
	}

	assertHasError(t, result, "cannot be scheduled in the past")
	assertHasError(t, result, "Vehicle information is required")
	assertHasError(t, result, "CustomerEmail must be a valid email address")
}
