package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "playverse"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultClientBaseURL  = "http://localhost:3000"
	DefaultBackendBaseURL = "http://localhost:8080"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout      = 30 * time.Second
	DefaultExternalCallTimeout = 10 * time.Second
	DefaultIdempotencyTTL      = 24 * time.Hour
	DefaultMaxRequestSize      = 1 * 1024 * 1024  // 1MB
	DefaultMaxUploadSize       = 10 * 1024 * 1024 // 10MB
	DefaultPaginationLimit     = 100

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKafkaEnabled      = false
	DefaultKafkaBookingTopic = "playverse.bookings"
	DefaultKafkaDLQTopic     = "playverse.bookings.dlq"

	DefaultEnvironment   = "dev"
	DefaultEventTimeZone = "Asia/Kolkata"
)
