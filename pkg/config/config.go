package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"revamp/pkg/logger"
)

// Weekday is a day name as it appears in configuration ("Sunday", "Monday", ...).
type Weekday string

var weekdays = map[Weekday]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// ToTime resolves the configured day name to a time.Weekday.
func (d Weekday) ToTime() (time.Weekday, bool) {
	name := strings.TrimSpace(string(d))
	for known, wd := range weekdays {
		if strings.EqualFold(string(known), name) {
			return wd, true
		}
	}
	return 0, false
}

type Config struct {
	Port string

	BookingServiceURL string
	DownstreamTimeout time.Duration

	OpenTime             string
	CloseTime            string
	ClosedWeekdays       []Weekday
	SlotDuration         time.Duration
	SlotCapacity         int
	DailyModificationCap int
	HourlyRate           float64
	MinLeadDays          int
	ReservationTTL       time.Duration
	ResyncHorizonDays    int

	ModificationCatalogFile string

	KafkaBrokers        []string
	KafkaTopic          string
	EventPublishTimeout time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	cfg := &Config{
		Port: getEnvStr(EnvPort, DefaultPort),

		BookingServiceURL: strings.TrimRight(getEnvStr(EnvBookingServiceURL, DefaultBookingServiceURL), "/"),
		DownstreamTimeout: getEnvDuration(EnvDownstreamTimeout, DefaultDownstreamTimeout),

		OpenTime:             getEnvStr(EnvOpenTime, DefaultOpenTime),
		CloseTime:            getEnvStr(EnvCloseTime, DefaultCloseTime),
		ClosedWeekdays:       getEnvWeekdays(EnvClosedWeekdays, DefaultClosedWeekdays),
		SlotDuration:         getEnvDuration(EnvSlotDuration, DefaultSlotDuration),
		SlotCapacity:         getEnvNum(EnvSlotCapacity, DefaultSlotCapacity),
		DailyModificationCap: getEnvNum(EnvDailyModificationCap, DefaultDailyModificationCap),
		HourlyRate:           getEnvFloat(EnvHourlyRate, DefaultHourlyRate),
		MinLeadDays:          getEnvNum(EnvMinLeadDays, DefaultMinLeadDays),
		ReservationTTL:       getEnvDuration(EnvReservationTTL, DefaultReservationTTL),
		ResyncHorizonDays:    getEnvNum(EnvResyncHorizonDays, DefaultResyncHorizonDays),

		ModificationCatalogFile: getEnvStr(EnvModificationCatalogFile, ""),

		KafkaBrokers:        getEnvStrSlice(EnvKafkaBrokers),
		KafkaTopic:          getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),
		EventPublishTimeout: getEnvDuration(EnvEventPublishTimeout, DefaultEventPublishTimeout),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.INFO),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

var timeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.BookingServiceURL == "" {
		errors = append(errors, "BookingServiceURL cannot be empty")
	} else if !regexp.MustCompile(`^https?://`).MatchString(cfg.BookingServiceURL) {
		errors = append(errors, fmt.Sprintf("BookingServiceURL must start with 'http://' or 'https://', got: %s", cfg.BookingServiceURL))
	}

	if cfg.DownstreamTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("DownstreamTimeout must be positive, got: %s", cfg.DownstreamTimeout))
	}

	if !timeRegex.MatchString(cfg.OpenTime) {
		errors = append(errors, fmt.Sprintf("OpenTime must be in HH:MM format (00:00-23:59), got: %s", cfg.OpenTime))
	}
	if !timeRegex.MatchString(cfg.CloseTime) {
		errors = append(errors, fmt.Sprintf("CloseTime must be in HH:MM format (00:00-23:59), got: %s", cfg.CloseTime))
	}
	if timeRegex.MatchString(cfg.OpenTime) && timeRegex.MatchString(cfg.CloseTime) && cfg.OpenTime >= cfg.CloseTime {
		errors = append(errors, fmt.Sprintf("OpenTime (%s) must be before CloseTime (%s)", cfg.OpenTime, cfg.CloseTime))
	}

	for _, d := range cfg.ClosedWeekdays {
		if _, ok := d.ToTime(); !ok {
			errors = append(errors, fmt.Sprintf("ClosedWeekdays contains an invalid day name: %s", d))
		}
	}
	if len(cfg.ClosedWeekdays) >= 7 {
		errors = append(errors, "ClosedWeekdays cannot cover the whole week")
	}

	if cfg.SlotDuration < 5*time.Minute || cfg.SlotDuration > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("SlotDuration must be between 5m and 24h, got: %s", cfg.SlotDuration))
	}
	if cfg.SlotCapacity < 1 {
		errors = append(errors, fmt.Sprintf("SlotCapacity must be at least 1, got: %d", cfg.SlotCapacity))
	}
	if cfg.DailyModificationCap < 0 {
		errors = append(errors, fmt.Sprintf("DailyModificationCap cannot be negative, got: %d", cfg.DailyModificationCap))
	}
	if cfg.HourlyRate <= 0 {
		errors = append(errors, fmt.Sprintf("HourlyRate must be positive, got: %v", cfg.HourlyRate))
	}
	if cfg.MinLeadDays < 0 {
		errors = append(errors, fmt.Sprintf("MinLeadDays cannot be negative, got: %d", cfg.MinLeadDays))
	}
	if cfg.ReservationTTL <= 0 {
		errors = append(errors, fmt.Sprintf("ReservationTTL must be positive, got: %s", cfg.ReservationTTL))
	}
	if cfg.ResyncHorizonDays < 1 {
		errors = append(errors, fmt.Sprintf("ResyncHorizonDays must be at least 1, got: %d", cfg.ResyncHorizonDays))
	}

	if len(cfg.KafkaBrokers) > 0 {
		if cfg.KafkaTopic == "" {
			errors = append(errors, "KafkaTopic cannot be empty when KafkaBrokers is set")
		}
		if cfg.EventPublishTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("EventPublishTimeout must be positive, got: %s", cfg.EventPublishTimeout))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"booking_service_url", cfg.BookingServiceURL,
		"downstream_timeout", cfg.DownstreamTimeout,
		"open_time", cfg.OpenTime,
		"close_time", cfg.CloseTime,
		"closed_weekdays", cfg.ClosedWeekdays,
		"slot_duration", cfg.SlotDuration,
		"slot_capacity", cfg.SlotCapacity,
		"daily_modification_cap", cfg.DailyModificationCap,
		"hourly_rate", cfg.HourlyRate,
		"min_lead_days", cfg.MinLeadDays,
		"reservation_ttl", cfg.ReservationTTL,
		"resync_horizon_days", cfg.ResyncHorizonDays,
		"modification_catalog_file", cfg.ModificationCatalogFile,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_topic", cfg.KafkaTopic,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

// EventsEnabled reports whether appointment events should be published.
func (cfg *Config) EventsEnabled() bool {
	return len(cfg.KafkaBrokers) > 0
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvStrSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvWeekdays(key string, fallback []Weekday) []Weekday {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]Weekday, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, Weekday(trimmed))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
