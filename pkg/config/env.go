package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvBookingServiceURL = "BOOKING_SERVICE_URL"
	EnvDownstreamTimeout = "DOWNSTREAM_TIMEOUT"

	EnvOpenTime             = "OPEN_TIME"
	EnvCloseTime            = "CLOSE_TIME"
	EnvClosedWeekdays       = "CLOSED_WEEKDAYS"
	EnvSlotDuration         = "SLOT_DURATION"
	EnvSlotCapacity         = "SLOT_CAPACITY"
	EnvDailyModificationCap = "DAILY_MODIFICATION_CAP"
	EnvHourlyRate           = "HOURLY_RATE"
	EnvMinLeadDays          = "MIN_LEAD_DAYS"
	EnvReservationTTL       = "RESERVATION_TTL"
	EnvResyncHorizonDays    = "RESYNC_HORIZON_DAYS"

	EnvModificationCatalogFile = "MODIFICATION_CATALOG_FILE"

	EnvKafkaBrokers        = "KAFKA_BROKERS"
	EnvKafkaTopic          = "KAFKA_TOPIC"
	EnvEventPublishTimeout = "EVENT_PUBLISH_TIMEOUT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
