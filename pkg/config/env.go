package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvClientBaseURL      = "CLIENT_BASE_URL"
	EnvBackendBaseURL     = "BACKEND_BASE_URL"
	EnvPublicEventBaseURL = "PUBLIC_EVENT_BASE_URL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout      = "REQUEST_TIMEOUT"
	EnvExternalCallTimeout = "EXTERNAL_CALL_TIMEOUT"
	EnvIdempotencyTTL      = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize      = "MAX_REQUEST_SIZE"
	EnvMaxUploadSize       = "MAX_UPLOAD_SIZE"
	EnvMaxPageLimit        = "MAX_PAGE_LIMIT"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvKafkaEnabled      = "KAFKA_ENABLED"
	EnvKafkaBookingTopic = "KAFKA_BOOKING_TOPIC"
	EnvKafkaDLQTopic     = "KAFKA_BOOKING_DLQ_TOPIC"

	EnvOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvEnvironment  = "ENV"

	EnvEventTimeZone = "EVENT_TIME_ZONE"
)
