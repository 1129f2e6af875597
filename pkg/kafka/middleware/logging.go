package kafka_middleware

import (
	"context"
	"time"

	"roomgrid/pkg/kafka"
	"roomgrid/pkg/logger"
)

// Logging logs each publish or consume at debug, and failures at warn.
func Logging(log *logger.Logger, direction string) func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		args := []any{
			"direction", direction,
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Warn("kafka message failed", append(args, "error", err)...)
			return err
		}
		log.Debug("kafka message handled", args...)
		return nil
	}
}

func LoggingProducer(log *logger.Logger) kafka.ProducerMiddleware {
	return Logging(log, "publish")
}

func LoggingConsumer(log *logger.Logger) kafka.ConsumerMiddleware {
	return Logging(log, "consume")
}
