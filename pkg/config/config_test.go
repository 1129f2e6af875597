package config

import (
	"strings"
	"testing"

	"roomgrid/pkg/logger"
)

func validConfig() *Config {
	return &Config{
		MongoURI:           DefaultMongoURI,
		MongoDatabaseName:  DefaultMongoDatabaseName,
		MongoConnTimeout:   DefaultMongoConnTimeout,
		Port:               DefaultPort,
		RequestTimeout:     DefaultRequestTimeout,
		MaxRequestSize:     DefaultMaxRequestSize,
		ReadTimeout:        DefaultReadTimeout,
		WriteTimeout:       DefaultWriteTimeout,
		IdleTimeout:        DefaultIdleTimeout,
		ShutdownTimeout:    DefaultShutdownTimeout,
		PropertyTimezone:   DefaultPropertyTimezone,
		UndoWindow:         DefaultUndoWindow,
		RoomLockBackend:    DefaultRoomLockBackend,
		RoomLockTTL:        DefaultRoomLockTTL,
		RedisAddr:          DefaultRedisAddr,
		RedisDialTimeout:   DefaultRedisDialTimeout,
		KafkaEventsTopic:   DefaultKafkaEventsTopic,
		KafkaChangesTopic:  DefaultKafkaChangesTopic,
		KafkaGroupID:       DefaultKafkaGroupID,
		IdempotencyBackend: DefaultIdempotencyBackend,
		IdempotencyTTL:     DefaultIdempotencyTTL,
		RateLimitRequests:  DefaultRateLimitRequests,
		RateLimitWindow:    DefaultRateLimitWindow,
		Log:                logger.Discard(),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Port = "70000" },
			wantErr: "Port must be between",
		},
		{
			name:    "bad mongo scheme",
			mutate:  func(c *Config) { c.MongoURI = "postgres://localhost" },
			wantErr: "MongoURI must start with",
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *Config) { c.PropertyTimezone = "Mars/Olympus" },
			wantErr: "PropertyTimezone",
		},
		{
			name:    "zero undo window",
			mutate:  func(c *Config) { c.UndoWindow = 0 },
			wantErr: "UndoWindow",
		},
		{
			name:    "unknown lock backend",
			mutate:  func(c *Config) { c.RoomLockBackend = "etcd" },
			wantErr: "RoomLockBackend",
		},
		{
			name: "redis lock without address",
			mutate: func(c *Config) {
				c.RoomLockBackend = LockBackendRedis
				c.RedisAddr = ""
			},
			wantErr: "RedisAddr",
		},
		{
			name: "kafka without topic",
			mutate: func(c *Config) {
				c.KafkaEnabled = true
				c.KafkaChangesTopic = ""
			},
			wantErr: "KafkaChangesTopic",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.RateLimitRequests = -1 },
			wantErr: "RateLimitRequests",
		},
		{
			name: "lock ttl ignored without locker",
			mutate: func(c *Config) {
				c.RoomLockBackend = LockBackendNone
				c.RoomLockTTL = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_ResolvesLocation(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Location == nil || cfg.Location.String() != DefaultPropertyTimezone {
		t.Fatalf("expected location %s, got %v", DefaultPropertyTimezone, cfg.Location)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "x"
	cfg.ReadTimeout = 0
	cfg.IdempotencyBackend = "disk"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"1. Port", "2. ReadTimeout", "IdempotencyBackend"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %q", want, err.Error())
		}
	}
}

func TestNeedsRedis(t *testing.T) {
	cfg := validConfig()
	if cfg.NeedsRedis() {
		t.Fatal("defaults should not need redis")
	}
	cfg.IdempotencyBackend = IdempotencyBackendRedis
	if !cfg.NeedsRedis() {
		t.Fatal("redis idempotency needs redis")
	}
	cfg.IdempotencyBackend = IdempotencyBackendMemory
	cfg.RoomLockBackend = LockBackendRedis
	if !cfg.NeedsRedis() {
		t.Fatal("redis lock needs redis")
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:s3cret@db:27017")
	if got != "mongodb://***:***@db:27017" {
		t.Fatalf("got %s", got)
	}
}
