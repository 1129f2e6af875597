package repository

import (
	"context"
	"fmt"

	"roomgrid/pkg/config"
	"roomgrid/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const RoomsCollection = "Rooms"

// RoomRepository reads the property's fixed room set.
type RoomRepository interface {
	FindAll(ctx context.Context) ([]model.RoomInfo, error)
	Upsert(ctx context.Context, rooms []model.RoomInfo) error
}

type mongoRoomRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		cfg:        cfg,
		collection: db.Collection(RoomsCollection),
	}
}

func (r *mongoRoomRepository) FindAll(ctx context.Context) ([]model.RoomInfo, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "room_number", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []model.RoomInfo
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

// Upsert keys rooms by room number.
func (r *mongoRoomRepository) Upsert(ctx context.Context, rooms []model.RoomInfo) error {
	if len(rooms) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	writes := make([]mongo.WriteModel, 0, len(rooms))
	for _, room := range rooms {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"room_number": room.RoomNumber}).
			SetReplacement(room).
			SetUpsert(true))
	}
	if _, err := r.collection.BulkWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to upsert rooms: %w", err)
	}
	return nil
}
