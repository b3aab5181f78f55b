package config

import "time"

const (
	DefaultPort = "4000"

	DefaultBookingServiceURL = "http://localhost:8084"
	DefaultDownstreamTimeout = 10 * time.Second

	// Workshop business hours. A Service appointment occupies one
	// fixed-duration bay slot; a Modification project occupies the whole day.
	DefaultOpenTime     = "09:00"
	DefaultCloseTime    = "18:00"
	DefaultSlotDuration = 3 * time.Hour
	DefaultSlotCapacity = 1

	// 0 means unlimited concurrent modification projects per day, matching
	// the historical behavior where only Service slots were capacity-limited.
	DefaultDailyModificationCap = 0

	DefaultHourlyRate        = 5000.0
	DefaultMinLeadDays       = 0
	DefaultReservationTTL    = 5 * time.Minute
	DefaultResyncHorizonDays = 14

	DefaultKafkaTopic          = "appointment-events"
	DefaultEventPublishTimeout = 5 * time.Second

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

// DefaultClosedWeekdays is the workshop's weekly closing day.
var DefaultClosedWeekdays = []Weekday{"Sunday"}
