package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"roomgrid/pkg/client"
	"roomgrid/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	PropertyTimezone string
	Location         *time.Location
	UndoWindow       time.Duration

	RoomLockBackend string
	RoomLockTTL     time.Duration

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisDialTimeout time.Duration

	KafkaEnabled      bool
	KafkaEventsTopic  string
	KafkaChangesTopic string
	KafkaGroupID      string

	IdempotencyBackend string
	IdempotencyTTL     time.Duration
	RateLimitRequests  int
	RateLimitWindow    time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		PropertyTimezone: getEnvStr(EnvPropertyTimezone, DefaultPropertyTimezone),
		UndoWindow:       getEnvDuration(EnvUndoWindow, DefaultUndoWindow),

		RoomLockBackend: strings.ToLower(getEnvStr(EnvRoomLockBackend, DefaultRoomLockBackend)),
		RoomLockTTL:     getEnvDuration(EnvRoomLockTTL, DefaultRoomLockTTL),

		RedisAddr:        getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword:    getEnvStr(EnvRedisPassword, ""),
		RedisDB:          getEnvNum(EnvRedisDB, DefaultRedisDB),
		RedisDialTimeout: getEnvDuration(EnvRedisDialTimeout, DefaultRedisDialTimeout),

		KafkaEnabled:      getEnvBool(EnvKafkaEnabled, false),
		KafkaEventsTopic:  getEnvStr(EnvKafkaEventsTopic, DefaultKafkaEventsTopic),
		KafkaChangesTopic: getEnvStr(EnvKafkaChangesTopic, DefaultKafkaChangesTopic),
		KafkaGroupID:      getEnvStr(EnvKafkaGroupID, DefaultKafkaGroupID),

		IdempotencyBackend: strings.ToLower(getEnvStr(EnvIdempotencyBackend, DefaultIdempotencyBackend)),
		IdempotencyTTL:     getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		RateLimitRequests:  getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:    getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisDialTimeout)
}

// Validate checks every setting and reports all problems at once. It also
// resolves PropertyTimezone into Location.
func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
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
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if loc, err := time.LoadLocation(cfg.PropertyTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("PropertyTimezone must be an IANA time zone, got: %s", cfg.PropertyTimezone))
	} else {
		cfg.Location = loc
	}
	if cfg.UndoWindow <= 0 {
		errors = append(errors, fmt.Sprintf("UndoWindow must be positive, got: %s", cfg.UndoWindow))
	}

	switch cfg.RoomLockBackend {
	case LockBackendNone, LockBackendMongo, LockBackendRedis:
	default:
		errors = append(errors, fmt.Sprintf("RoomLockBackend must be one of [none, mongo, redis], got: %s", cfg.RoomLockBackend))
	}
	switch cfg.IdempotencyBackend {
	case IdempotencyBackendMemory, IdempotencyBackendRedis:
	default:
		errors = append(errors, fmt.Sprintf("IdempotencyBackend must be one of [memory, redis], got: %s", cfg.IdempotencyBackend))
	}
	if cfg.NeedsRedis() {
		if cfg.RedisAddr == "" {
			errors = append(errors, "RedisAddr is required when a redis backend is selected")
		}
		if cfg.RedisDialTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("RedisDialTimeout must be positive, got: %s", cfg.RedisDialTimeout))
		}
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.RateLimitRequests < 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests cannot be negative, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RoomLockBackend != LockBackendNone && cfg.RoomLockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("RoomLockTTL must be positive, got: %s", cfg.RoomLockTTL))
	}

	if cfg.KafkaEnabled {
		if cfg.KafkaEventsTopic == "" {
			errors = append(errors, "KafkaEventsTopic cannot be empty when Kafka is enabled")
		}
		if cfg.KafkaChangesTopic == "" {
			errors = append(errors, "KafkaChangesTopic cannot be empty when Kafka is enabled")
		}
		if cfg.KafkaGroupID == "" {
			errors = append(errors, "KafkaGroupID cannot be empty when Kafka is enabled")
		}
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
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"property_timezone", cfg.PropertyTimezone,
		"undo_window", cfg.UndoWindow,
		"room_lock_backend", cfg.RoomLockBackend,
		"room_lock_ttl", cfg.RoomLockTTL,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_events_topic", cfg.KafkaEventsTopic,
		"kafka_changes_topic", cfg.KafkaChangesTopic,
		"kafka_group_id", cfg.KafkaGroupID,
		"idempotency_backend", cfg.IdempotencyBackend,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
	)
}

// NeedsRedis reports whether any backend is configured to use Redis.
func (cfg *Config) NeedsRedis() bool {
	return cfg.RoomLockBackend == LockBackendRedis || cfg.IdempotencyBackend == IdempotencyBackendRedis
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
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

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}
