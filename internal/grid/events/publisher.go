package events

import (
	"context"
	"fmt"

	"roomgrid/pkg/kafka"
	"roomgrid/pkg/model"
)

const SchemaVersion = "1"

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Publisher turns grid events into Kafka messages keyed by reservation, so
// every change to one reservation lands on one partition in order.
type Publisher struct {
	producer MessagePublisher
	source   string
}

func NewPublisher(producer MessagePublisher, source string) *Publisher {
	return &Publisher{producer: producer, source: source}
}

func (p *Publisher) Publish(ctx context.Context, event *model.GridEvent) error {
	if event == nil {
		return fmt.Errorf("%w: nil event", kafka.ErrInvalidMessage)
	}

	msg, err := kafka.NewMessage().
		WithKey(event.Key()).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return err
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}
