package repository

import (
	"context"
	"fmt"
	"time"

	griderrors "roomgrid/internal/grid/errors"

	"github.com/go-redis/redis/v8"
)

// Deletes the key only while it still carries the caller's owner token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRoomLocker is the Redis-backed alternative to MongoRoomLocker.
type RedisRoomLocker struct {
	client *redis.Client
	prefix string
}

func NewRedisRoomLocker(client *redis.Client) *RedisRoomLocker {
	return &RedisRoomLocker{client: client, prefix: "roomgrid:" + roomLockPrefix}
}

func (l *RedisRoomLocker) Lock(ctx context.Context, roomNumber, owner string, ttl time.Duration) error {
	ok, err := l.client.SetNX(ctx, l.prefix+roomNumber, owner, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create room lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", griderrors.ErrRoomLocked, roomNumber)
	}
	return nil
}

func (l *RedisRoomLocker) Unlock(ctx context.Context, roomNumber, owner string) error {
	if err := unlockScript.Run(ctx, l.client, []string{l.prefix + roomNumber}, owner).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release room lock: %w", err)
	}
	return nil
}
