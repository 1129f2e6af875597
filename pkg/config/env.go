package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvPropertyTimezone = "PROPERTY_TIMEZONE"
	EnvUndoWindow       = "UNDO_WINDOW"

	EnvRoomLockBackend = "ROOM_LOCK_BACKEND"
	EnvRoomLockTTL     = "ROOM_LOCK_TTL"

	EnvRedisAddr        = "REDIS_ADDR"
	EnvRedisPassword    = "REDIS_PASSWORD"
	EnvRedisDB          = "REDIS_DB"
	EnvRedisDialTimeout = "REDIS_DIAL_TIMEOUT"

	EnvKafkaEnabled      = "KAFKA_ENABLED"
	EnvKafkaEventsTopic  = "KAFKA_EVENTS_TOPIC"
	EnvKafkaChangesTopic = "KAFKA_CHANGES_TOPIC"
	EnvKafkaGroupID      = "KAFKA_GROUP_ID"

	EnvIdempotencyBackend = "IDEMPOTENCY_BACKEND"
	EnvIdempotencyTTL     = "IDEMPOTENCY_TTL"
	EnvRateLimitRequests  = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow    = "RATE_LIMIT_WINDOW"
)
