package main

import (
	"context"
	"time"

	"revamp/internal/appointments/handler"
	"revamp/internal/appointments/service"
	"revamp/internal/appointments/validator"
	"revamp/internal/availability"
	"revamp/internal/estimate"
	"revamp/internal/modcatalog"
	"revamp/internal/proxy"
	"revamp/internal/slots"
	"revamp/pkg/app"
	"revamp/pkg/client"
	"revamp/pkg/config"
	"revamp/pkg/events"
)

const ServiceName = "booking-gateway"

const downstreamName = "booking service"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting booking gateway")

	deps, downstream := initServices(cfg)
	publisher := initPublisher(cfg)

	svc := service.NewAppointmentService(service.Deps{
		Validator:         deps.Validator,
		Catalog:           deps.Catalog,
		Mods:              deps.Mods,
		Tracker:           deps.Tracker,
		Engine:            deps.Engine,
		Proxy:             deps.Proxy,
		Downstream:        downstream,
		Publisher:         publisher,
		Log:               cfg.Log,
		ModificationCap:   cfg.DailyModificationCap,
		ResyncHorizonDays: cfg.ResyncHorizonDays,
	})

	warmAvailability(cfg, svc)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewAppointmentHandler(svc, cfg.Log),
		handler.NewHealthHandler(downstream, cfg.Log),
	)
	serverApp.OnShutdown(publisher.Close)
	serverApp.Run()
}

// wiring groups the domain components built from configuration.
type wiring struct {
	Validator *validator.AppointmentValidator
	Catalog   *slots.Catalog
	Mods      *modcatalog.Catalog
	Tracker   *availability.Tracker
	Engine    *estimate.Engine
	Proxy     *proxy.Proxy
}

func initServices(cfg *config.Config) (*wiring, *client.BookingServiceClient) {
	catalog, err := slots.NewCatalog(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to build slot catalog", "error", err)
	}

	mods := modcatalog.NewDefault()
	if cfg.ModificationCatalogFile != "" {
		mods, err = modcatalog.LoadFromFile(cfg.ModificationCatalogFile)
		if err != nil {
			cfg.Log.Fatal("Failed to load modification catalog",
				"file", cfg.ModificationCatalogFile,
				"error", err,
			)
		}
		cfg.Log.Info("Modification catalog loaded from file",
			"file", cfg.ModificationCatalogFile,
			"services", mods.Len(),
		)
	}

	tracker := availability.NewTracker(cfg.SlotCapacity, cfg.DailyModificationCap, cfg.ReservationTTL)

	appointmentValidator := validator.NewAppointmentValidator(catalog, mods, tracker, validator.Config{
		SlotCapacity:    cfg.SlotCapacity,
		ModificationCap: cfg.DailyModificationCap,
		MinLeadDays:     cfg.MinLeadDays,
	}, cfg.Log)

	downstream := client.NewBookingServiceClient(cfg.BookingServiceURL, cfg.DownstreamTimeout)

	cfg.Log.Info("Appointment gateway initialized",
		"booking_service_url", cfg.BookingServiceURL,
		"modification_services", mods.Len(),
	)

	return &wiring{
		Validator: appointmentValidator,
		Catalog:   catalog,
		Mods:      mods,
		Tracker:   tracker,
		Engine:    estimate.NewEngine(cfg.HourlyRate),
		Proxy:     proxy.New(cfg.BookingServiceURL, downstreamName, cfg.DownstreamTimeout, cfg.Log),
	}, downstream
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled() {
		cfg.Log.Info("Event publishing disabled, no Kafka brokers configured")
		return events.NoopPublisher{}
	}

	publisher, err := events.NewKafkaPublisher(
		cfg.KafkaBrokers,
		cfg.KafkaTopic,
		cfg.EventPublishTimeout,
		ServiceName,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka publisher", "error", err)
	}

	cfg.Log.Info("Event publishing enabled",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaTopic,
	)
	return publisher
}

// warmAvailability seeds the in-memory availability view from the downstream
// booking service. The gateway still starts when downstream is unreachable;
// the view self-heals on the next successful resync.
func warmAvailability(cfg *config.Config, svc *service.AppointmentService) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.DownstreamTimeout+time.Second)
	defer cancel()

	if err := svc.Resync(ctx); err != nil {
		cfg.Log.Warn("Initial availability resync failed, starting with an empty view",
			"error", err.Error(),
		)
	}
}
