package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"roomgrid/internal/grid/repository"
	mongoMigration "roomgrid/internal/migrations/mongo"
	"roomgrid/pkg/config"
)

const (
	JobName = "roomgrid-migration"

	// EnvRoomsSeedFile points at a JSON array of rooms to upsert after the
	// schema is in place.
	EnvRoomsSeedFile = "ROOMS_SEED_FILE"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Mongo migration job")
	err := run(ctx, cfg)
	cfg.GracefulShutdown()
	if err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo.Client, cfg.MongoDatabaseName, cfg.Log); err != nil {
		return err
	}

	path := os.Getenv(EnvRoomsSeedFile)
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open room seed: %w", err)
	}
	defer f.Close()

	rooms, err := mongoMigration.ParseRoomSeed(f)
	if err != nil {
		return err
	}
	if err := repository.NewRoomRepository(cfg).Upsert(ctx, rooms); err != nil {
		return err
	}
	cfg.Log.Info("Room catalog seeded", "rooms", len(rooms), "file", path)
	return nil
}
