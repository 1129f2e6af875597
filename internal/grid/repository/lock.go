package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/pkg/config"
	"roomgrid/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	RoomLocksCollection = "Room_locks"
	roomLockPrefix      = "room_lock_"
)

// MongoRoomLocker takes advisory locks by inserting a document keyed on the
// room number. A duplicate key means another request holds the room.
type MongoRoomLocker struct {
	cfg        *config.Config
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoRoomLocker(cfg *config.Config) *MongoRoomLocker {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &MongoRoomLocker{
		cfg:        cfg,
		collection: db.Collection(RoomLocksCollection),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func lockID(roomNumber string) string {
	return roomLockPrefix + roomNumber
}

func (l *MongoRoomLocker) Lock(ctx context.Context, roomNumber, owner string, ttl time.Duration) error {
	ctx, cancel := withTimeout(ctx, l.cfg.WriteTimeout)
	defer cancel()

	now := l.now()
	lock := &model.RoomLock{
		ID:        lockID(roomNumber),
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := l.collection.InsertOne(ctx, lock)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to create room lock: %w", err)
	}

	// The TTL monitor runs once a minute, so a crashed holder can leave an
	// expired lock behind for a while.
	filter := bson.M{"_id": lock.ID, "expires_at": bson.M{"$lt": now}}
	err = l.collection.FindOneAndReplace(ctx, filter, lock).Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", griderrors.ErrRoomLocked, roomNumber)
	}
	return fmt.Errorf("failed to take over expired room lock: %w", err)
}

func (l *MongoRoomLocker) Unlock(ctx context.Context, roomNumber, owner string) error {
	ctx, cancel := withTimeout(ctx, l.cfg.WriteTimeout)
	defer cancel()

	_, err := l.collection.DeleteOne(ctx, bson.M{"_id": lockID(roomNumber), "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to release room lock: %w", err)
	}
	return nil
}
