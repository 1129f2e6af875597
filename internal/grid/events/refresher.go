package events

import (
	"context"

	"roomgrid/pkg/kafka"
	"roomgrid/pkg/logger"
)

// Rebuilder reloads the occupancy index from the store.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// Refresher rebuilds the index when another writer reports a change: a
// peer grid instance on the events topic, or the reservation system on the
// changes topic. The engine coalesces concurrent rebuilds.
type Refresher struct {
	engine Rebuilder
	source string
	log    *logger.Logger
}

func NewRefresher(engine Rebuilder, source string, log *logger.Logger) *Refresher {
	return &Refresher{engine: engine, source: source, log: log}
}

// Handle is a kafka.MessageHandler.
func (r *Refresher) Handle(ctx context.Context, msg kafka.Message) error {
	if src := msg.Headers[kafka.HeaderSource]; src != "" && src == r.source {
		// our own commit already rebuilt the index
		return nil
	}

	if err := r.engine.Rebuild(ctx); err != nil {
		return kafka.NewTransientError("grid rebuild failed", err)
	}

	r.log.Debug("Grid index rebuilt after external change",
		"topic", msg.Topic,
		"event_type", msg.GetEventType(),
		"key", msg.Key,
	)
	return nil
}
