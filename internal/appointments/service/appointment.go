package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	appointmentvalidator "revamp/internal/appointments/validator"
	"revamp/internal/availability"
	"revamp/internal/estimate"
	"revamp/internal/modcatalog"
	"revamp/internal/proxy"
	"revamp/internal/slots"
	"revamp/pkg/client"
	apperrors "revamp/pkg/errors"
	"revamp/pkg/events"
	"revamp/pkg/logger"
	"revamp/pkg/model"
	"revamp/pkg/sanitizer"
)

// AppointmentService coordinates a booking across the validator, the
// availability tracker, the estimation engine, and the downstream booking
// service. Capacity is reserved before the downstream call and only
// committed once the booking service accepts the appointment, so a crash or
// rejection never strands capacity past the reservation TTL.
type AppointmentService struct {
	validator  *appointmentvalidator.AppointmentValidator
	catalog    *slots.Catalog
	mods       *modcatalog.Catalog
	tracker    *availability.Tracker
	engine     *estimate.Engine
	proxy      *proxy.Proxy
	downstream *client.BookingServiceClient
	publisher  events.Publisher
	log        *logger.Logger

	modificationCap   int
	resyncHorizonDays int
	now               func() time.Time
}

type Deps struct {
	Validator  *appointmentvalidator.AppointmentValidator
	Catalog    *slots.Catalog
	Mods       *modcatalog.Catalog
	Tracker    *availability.Tracker
	Engine     *estimate.Engine
	Proxy      *proxy.Proxy
	Downstream *client.BookingServiceClient
	Publisher  events.Publisher
	Log        *logger.Logger

	ModificationCap   int
	ResyncHorizonDays int
}

func NewAppointmentService(deps Deps) *AppointmentService {
	return &AppointmentService{
		validator:         deps.Validator,
		catalog:           deps.Catalog,
		mods:              deps.Mods,
		tracker:           deps.Tracker,
		engine:            deps.Engine,
		proxy:             deps.Proxy,
		downstream:        deps.Downstream,
		publisher:         deps.Publisher,
		log:               deps.Log,
		modificationCap:   deps.ModificationCap,
		resyncHorizonDays: deps.ResyncHorizonDays,
		now:               time.Now,
	}
}

// AvailabilityResponse describes the bookable capacity of one date.
type AvailabilityResponse struct {
	Date                 string           `json:"date"`
	Open                 bool             `json:"open"`
	Slots                []model.TimeSlot `json:"slots"`
	ModificationsBooked  int              `json:"modificationsBooked"`
	DailyModificationCap int              `json:"dailyModificationCap"`
}

// EstimateResponse is a quote for a bundle of modification services.
type EstimateResponse struct {
	Services []model.ModificationService `json:"services"`
	Estimate model.Estimate              `json:"estimate"`
}

// Create books an appointment. The returned Result carries the downstream
// response verbatim so the handler can relay it.
func (s *AppointmentService) Create(ctx context.Context, req *model.AppointmentRequest, inbound http.Header) (*proxy.Result, error) {
	s.sanitize(req)

	if result := s.validator.Validate(req); !result.Valid {
		return nil, apperrors.Validation("Booking request is invalid", map[string]any{
			"errors": result.Errors,
		})
	}

	if req.ServiceType == model.ServiceTypeModification {
		services, err := s.resolveModifications(req.Modifications)
		if err != nil {
			return nil, err
		}
		quote := s.engine.Quote(services)
		req.EstimatedTime = quote.Hours
		req.EstimatedCost = quote.Cost
	}

	if req.Status == "" {
		req.Status = string(model.StatusPending)
	}

	reservationID, err := s.reserve(req)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		s.tracker.Release(reservationID)
		return nil, apperrors.Internal("Failed to encode booking request", err)
	}

	result, err := s.proxy.Forward(ctx, http.MethodPost, "/appointments", body, inbound)
	if err != nil {
		s.tracker.Release(reservationID)
		return nil, err
	}

	if result.StatusCode < 200 || result.StatusCode >= 300 {
		s.tracker.Release(reservationID)
		return result, nil
	}

	if err := s.tracker.Commit(reservationID); err != nil {
		// The reservation expired while downstream was slow. The booking
		// exists downstream, so the next resync reconciles the count.
		s.log.Warn("Reservation expired before commit",
			"reservation_id", reservationID,
			"date", req.Date,
		)
	}

	s.publish(ctx, s.confirmedEvent(req))

	return result, nil
}

func (s *AppointmentService) reserve(req *model.AppointmentRequest) (string, error) {
	if req.ServiceType == model.ServiceTypeModification {
		return s.tracker.ReserveModification(req.Date)
	}
	return s.tracker.ReserveSlot(req.Date, req.TimeSlotID)
}

// Availability reports the capacity of one date from the in-memory view.
func (s *AppointmentService) Availability(date string) (*AvailabilityResponse, error) {
	if _, err := slots.ParseDate(date); err != nil {
		return nil, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}

	resp := &AvailabilityResponse{
		Date:                 date,
		Open:                 s.catalog.IsOpen(date),
		Slots:                []model.TimeSlot{},
		ModificationsBooked:  s.tracker.ModificationCount(date),
		DailyModificationCap: s.modificationCap,
	}

	for _, slot := range s.catalog.SlotsFor(date) {
		slot.BookedCount = s.tracker.SlotBooked(date, slot.ID)
		resp.Slots = append(resp.Slots, slot)
	}

	return resp, nil
}

// Estimate quotes a modification bundle without booking anything.
func (s *AppointmentService) Estimate(modifications []string) (*EstimateResponse, error) {
	services, err := s.resolveModifications(modifications)
	if err != nil {
		return nil, err
	}

	return &EstimateResponse{
		Services: services,
		Estimate: s.engine.Quote(services),
	}, nil
}

// Modifications lists the service catalog.
func (s *AppointmentService) Modifications() []model.ModificationService {
	return s.mods.List()
}

// Passthrough relays any other booking operation downstream unchanged. A
// successful write invalidates the local availability view, so a resync runs
// before returning; cancellations additionally emit a lifecycle event.
func (s *AppointmentService) Passthrough(ctx context.Context, method, path string, body []byte, inbound http.Header) (*proxy.Result, error) {
	result, err := s.proxy.Forward(ctx, method, path, body, inbound)
	if err != nil {
		return nil, err
	}

	if method != http.MethodGet && result.StatusCode >= 200 && result.StatusCode < 300 {
		if err := s.Resync(ctx); err != nil {
			s.log.Warn("Availability resync after write failed",
				"method", method,
				"error", err.Error(),
			)
		}

		if method == http.MethodDelete {
			event := events.NewEvent(events.TypeAppointmentCancelled)
			event.Details = map[string]any{"path": path}
			s.publish(ctx, event)
		}
	}

	return result, nil
}

// Resync rebuilds the availability view from the downstream booking service
// for the configured horizon starting today.
func (s *AppointmentService) Resync(ctx context.Context) error {
	from := s.now().Format(slots.DateLayout)
	to := s.now().AddDate(0, 0, s.resyncHorizonDays).Format(slots.DateLayout)

	appointments, err := s.downstream.ListAppointments(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to list downstream appointments: %w", err)
	}

	s.tracker.Resync(from, to, appointments)

	s.log.Info("Availability resynced from booking service",
		"from", from,
		"to", to,
		"appointments", len(appointments),
	)

	event := events.NewEvent(events.TypeAvailabilityResynced)
	event.Details = map[string]any{"from": from, "to": to, "appointments": len(appointments)}
	s.publish(ctx, event)

	return nil
}

func (s *AppointmentService) sanitize(req *model.AppointmentRequest) {
	req.CustomerID = sanitizer.TrimAndNormalize(req.CustomerID)
	req.CustomerName = sanitizer.NormalizeName(req.CustomerName)
	req.CustomerEmail = sanitizer.NormalizeEmail(req.CustomerEmail)
	req.Vehicle = sanitizer.NormalizeVehicle(req.Vehicle)
	req.Modifications = sanitizer.NormalizeIDs(req.Modifications)
}

func (s *AppointmentService) resolveModifications(modifications []string) ([]model.ModificationService, error) {
	names := sanitizer.NormalizeIDs(modifications)

	services := make([]model.ModificationService, 0, len(names))
	var unknown []string
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		svc, ok := s.mods.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if seen[svc.ID] {
			continue
		}
		seen[svc.ID] = true
		services = append(services, svc)
	}

	if len(unknown) > 0 {
		return nil, apperrors.Validation("Unknown modification services", map[string]any{
			"unknown": unknown,
		})
	}

	return services, nil
}

func (s *AppointmentService) confirmedEvent(req *model.AppointmentRequest) events.Event {
	event := events.NewEvent(events.TypeAppointmentConfirmed)
	event.CustomerID = req.CustomerID
	event.ServiceType = string(req.ServiceType)
	event.Date = req.Date
	event.TimeSlotID = req.TimeSlotID
	if req.ServiceType == model.ServiceTypeModification {
		event.Details = map[string]any{
			"modifications":  req.Modifications,
			"estimatedHours": req.EstimatedTime,
			"estimatedCost":  req.EstimatedCost,
		}
	}
	return event
}

// publish is best effort: losing an event must never fail the booking.
func (s *AppointmentService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish appointment event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err.Error(),
		)
	}
}
