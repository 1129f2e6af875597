package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roomgrid"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPropertyTimezone = "Asia/Jakarta"
	DefaultUndoWindow       = 10 * time.Second

	DefaultRoomLockBackend = LockBackendMongo
	DefaultRoomLockTTL     = 10 * time.Second

	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisDB          = 0
	DefaultRedisDialTimeout = 5 * time.Second

	DefaultKafkaEventsTopic  = "roomgrid.events"
	DefaultKafkaChangesTopic = "roomgrid.changes"
	DefaultKafkaGroupID      = "roomgrid"

	DefaultIdempotencyBackend = IdempotencyBackendMemory
	DefaultIdempotencyTTL     = 10 * time.Minute
	DefaultRateLimitRequests  = 120
	DefaultRateLimitWindow    = time.Minute
)

const (
	LockBackendNone  = "none"
	LockBackendMongo = "mongo"
	LockBackendRedis = "redis"
)

const (
	IdempotencyBackendMemory = "memory"
	IdempotencyBackendRedis  = "redis"
)
