package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

// Handler mounts its routes on a router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a long-running background loop started alongside the HTTP
// server, such as a Kafka consumer. Start blocks until ctx ends or Close is
// called.
type Worker interface {
	Start(ctx context.Context) error
	Close() error
}
