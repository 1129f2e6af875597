package main

import (
	"context"
	"os"

	"roomgrid/internal/grid/catalog"
	"roomgrid/internal/grid/events"
	"roomgrid/internal/grid/handler"
	"roomgrid/internal/grid/repository"
	"roomgrid/internal/grid/service"
	"roomgrid/pkg/app"
	"roomgrid/pkg/config"
	"roomgrid/pkg/kafka"
	kafka_config "roomgrid/pkg/kafka/config"
	kafka_middleware "roomgrid/pkg/kafka/middleware"

	"github.com/google/uuid"
)

const ServiceName = "roomgrid"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.NeedsRedis() {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting grid service")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	rooms := loadCatalog(ctx, cfg)
	store := repository.NewMongoStore(cfg)
	serverApp := app.NewApplication(cfg)
	instanceID := instanceName()

	opts := []service.Option{}
	if locker := newLocker(cfg); locker != nil {
		opts = append(opts, service.WithLocker(locker))
	}

	var (
		kafkaCfg *kafka_config.Config
		metrics  *kafka_middleware.Metrics
	)
	if cfg.KafkaEnabled {
		var err error
		kafkaCfg, err = kafka_config.Load()
		if err != nil {
			cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
		}
		kafkaCfg.LogConfiguration(cfg.Log.Info)
		metrics = kafka_middleware.NewMetrics()

		producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaEventsTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		producer.Use(kafka_middleware.LoggingProducer(cfg.Log))
		producer.Use(metrics.Producer())
		serverApp.OnShutdown(func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
		opts = append(opts, service.WithPublisher(events.NewPublisher(producer, instanceID)))
	}

	engine := service.NewEngine(cfg, store, rooms, opts...)
	serverApp.OnShutdown(engine.Close)
	if err := engine.Rebuild(ctx); err != nil {
		cfg.Log.Fatal("Initial grid load failed", "error", err)
	}

	if cfg.KafkaEnabled {
		refresher := events.NewRefresher(engine, instanceID, cfg.Log)
		// every instance keeps its own index, so each one reads every change
		groupID := cfg.KafkaGroupID + "." + instanceID
		for _, topic := range []string{cfg.KafkaEventsTopic, cfg.KafkaChangesTopic} {
			consumer, err := kafka.NewConsumer(kafkaCfg, topic, groupID, refresher.Handle, cfg.Log)
			if err != nil {
				cfg.Log.Fatal("Failed to create Kafka consumer", "topic", topic, "error", err)
			}
			consumer.Use(kafka_middleware.LoggingConsumer(cfg.Log))
			consumer.Use(metrics.Consumer())
			serverApp.AddWorker("kafka:"+topic, consumer)
		}
	}

	var readyMetrics func() any
	if metrics != nil {
		readyMetrics = func() any { return metrics.Snapshot() }
	}

	serverApp.SetApp(
		handler.NewGridHandler(engine, cfg.Log),
		handler.NewHealthHandler(store, cfg.Log, readyMetrics),
	)
	serverApp.Run()
}

func loadCatalog(ctx context.Context, cfg *config.Config) *catalog.Catalog {
	rooms, err := repository.NewRoomRepository(cfg).FindAll(ctx)
	if err != nil {
		cfg.Log.Fatal("Failed to load room catalog", "error", err)
	}
	if len(rooms) == 0 {
		cfg.Log.Warn("Room catalog is empty; the grid will have no rows")
	}
	cfg.Log.Info("Room catalog loaded", "rooms", len(rooms))
	return catalog.New(rooms)
}

func newLocker(cfg *config.Config) service.RoomLocker {
	switch cfg.RoomLockBackend {
	case config.LockBackendMongo:
		return repository.NewMongoRoomLocker(cfg)
	case config.LockBackendRedis:
		return repository.NewRedisRoomLocker(cfg.Client.Redis.Client)
	}
	return nil
}

func instanceName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return uuid.NewString()
}
