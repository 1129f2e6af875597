package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"roomgrid/pkg/kafka"
)

// Metrics counts messages through a producer and a consumer.
type Metrics struct {
	published       atomic.Int64
	publishFailed   atomic.Int64
	publishDuration atomic.Int64
	consumed        atomic.Int64
	consumeFailed   atomic.Int64
	consumeDuration atomic.Int64
}

type MetricsSnapshot struct {
	Published          int64         `json:"published"`
	PublishFailed      int64         `json:"publish_failed"`
	AvgPublishDuration time.Duration `json:"avg_publish_duration_ns"`
	Consumed           int64         `json:"consumed"`
	ConsumeFailed      int64         `json:"consume_failed"`
	AvgConsumeDuration time.Duration `json:"avg_consume_duration_ns"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Producer() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.publishDuration.Add(int64(time.Since(start)))
		if err != nil {
			m.publishFailed.Add(1)
		} else {
			m.published.Add(1)
		}
		return err
	}
}

func (m *Metrics) Consumer() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.consumeDuration.Add(int64(time.Since(start)))
		if err != nil {
			m.consumeFailed.Add(1)
		} else {
			m.consumed.Add(1)
		}
		return err
	}
}

func avg(total, n int64) time.Duration {
	if n == 0 {
		return 0
	}
	return time.Duration(total / n)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	published, publishFailed := m.published.Load(), m.publishFailed.Load()
	consumed, consumeFailed := m.consumed.Load(), m.consumeFailed.Load()
	return MetricsSnapshot{
		Published:          published,
		PublishFailed:      publishFailed,
		AvgPublishDuration: avg(m.publishDuration.Load(), published+publishFailed),
		Consumed:           consumed,
		ConsumeFailed:      consumeFailed,
		AvgConsumeDuration: avg(m.consumeDuration.Load(), consumed+consumeFailed),
	}
}
