package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"revamp/internal/availability"
	"revamp/internal/modcatalog"
	"revamp/internal/slots"
	"revamp/pkg/logger"
	"revamp/pkg/model"
	"revamp/pkg/sanitizer"
)

// AppointmentValidator checks a booking request against the workshop's
// business rules. It never mutates tracker state; capacity is only read, the
// service layer reserves it afterwards. All violations are collected in a
// fixed order so clients can show them all at once.
type AppointmentValidator struct {
	validate *validator.Validate
	catalog  *slots.Catalog
	mods     *modcatalog.Catalog
	tracker  *availability.Tracker

	slotCapacity    int
	modificationCap int
	minLeadDays     int

	logger *logger.Logger
	now    func() time.Time
}

type Config struct {
	SlotCapacity    int
	ModificationCap int
	MinLeadDays     int
}

func NewAppointmentValidator(catalog *slots.Catalog, mods *modcatalog.Catalog, tracker *availability.Tracker, cfg Config, log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	log.Info("Appointment validator initialized successfully")

	return &AppointmentValidator{
		validate:        v,
		catalog:         catalog,
		mods:            mods,
		tracker:         tracker,
		slotCapacity:    cfg.SlotCapacity,
		modificationCap: cfg.ModificationCap,
		minLeadDays:     cfg.MinLeadDays,
		logger:          log,
		now:             time.Now,
	}
}

// Validate runs every rule and returns the full list of violations. The
// order is stable: field shape, date, vehicle, slot or modifications, email.
func (v *AppointmentValidator) Validate(req *model.AppointmentRequest) model.ValidationResult {
	var errs []string

	errs = append(errs, v.structErrors(req)...)
	errs = append(errs, v.dateErrors(req.Date)...)

	if sanitizer.NormalizeVehicle(req.Vehicle) == "" {
		errs = append(errs, "Vehicle information is required")
	}

	switch req.ServiceType {
	case model.ServiceTypeService:
		errs = append(errs, v.slotErrors(req)...)
	case model.ServiceTypeModification:
		errs = append(errs, v.modificationErrors(req)...)
	}

	if email := sanitizer.NormalizeEmail(req.CustomerEmail); email != "" {
		if err := v.validate.Var(email, "email"); err != nil {
			errs = append(errs, "CustomerEmail must be a valid email address")
		}
	}

	return model.ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func (v *AppointmentValidator) structErrors(req *model.AppointmentRequest) []string {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []string{"Request could not be validated"}
	}

	var out []string
	for _, fieldErr := range validationErrs {
		out = append(out, translate(fieldErr))
	}
	return out
}

func translate(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), strings.ReplaceAll(err.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
	default:
		return err.Error()
	}
}

// dateErrors compares calendar dates as YYYY-MM-DD strings, which order
// lexicographically, so the check is timezone-safe and same-day bookings stay
// valid until local midnight.
func (v *AppointmentValidator) dateErrors(date string) []string {
	if _, err := slots.ParseDate(date); err != nil {
		// Format violations are already reported by the struct rules.
		return nil
	}

	today := v.today()
	if date < today.Format(slots.DateLayout) {
		return []string{"Appointments cannot be scheduled in the past"}
	}

	if v.minLeadDays > 0 {
		earliest := today.AddDate(0, 0, v.minLeadDays).Format(slots.DateLayout)
		if date < earliest {
			return []string{fmt.Sprintf("Appointments must be booked at least %d day(s) in advance", v.minLeadDays)}
		}
	}

	return nil
}

func (v *AppointmentValidator) slotErrors(req *model.AppointmentRequest) []string {
	if _, err := slots.ParseDate(req.Date); err != nil {
		return nil
	}

	if req.TimeSlotID == "" {
		return []string{"A time slot is required for service appointments"}
	}

	if !v.catalog.IsOpen(req.Date) {
		return []string{"The workshop is closed on the selected date"}
	}

	if !v.catalog.Contains(req.Date, req.TimeSlotID) {
		return []string{fmt.Sprintf("Time slot %s does not exist", req.TimeSlotID)}
	}

	if v.tracker.SlotBooked(req.Date, req.TimeSlotID) >= v.slotCapacity {
		return []string{"The selected time slot is fully booked"}
	}

	return nil
}

func (v *AppointmentValidator) modificationErrors(req *model.AppointmentRequest) []string {
	var errs []string

	if validDate := v.catalog.IsOpen(req.Date); !validDate {
		if _, err := slots.ParseDate(req.Date); err == nil {
			errs = append(errs, "The workshop is closed on the selected date")
		}
	}

	mods := sanitizer.NormalizeIDs(req.Modifications)
	if len(mods) == 0 {
		errs = append(errs, "At least one modification service is required")
		return errs
	}

	seen := make(map[string]bool, len(mods))
	for _, m := range mods {
		svc, ok := v.mods.Lookup(m)
		if !ok {
			errs = append(errs, fmt.Sprintf("Unknown modification service: %s", m))
			continue
		}
		if seen[svc.ID] {
			errs = append(errs, fmt.Sprintf("Duplicate modification service: %s", svc.Name))
			continue
		}
		seen[svc.ID] = true
	}

	if v.modificationCap > 0 && v.tracker.ModificationCount(req.Date) >= v.modificationCap {
		errs = append(errs, "No modification capacity left on the selected date")
	}

	return errs
}

// today truncates the clock to the local calendar date so same-day bookings
// stay valid until midnight.
func (v *AppointmentValidator) today() time.Time {
	now := v.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
