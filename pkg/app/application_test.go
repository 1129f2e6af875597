package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"roomgrid/pkg/client"
	"roomgrid/pkg/config"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes func(*httprouter.Router)

func (f routes) RegisterRoutes(r *httprouter.Router) { f(r) }

type stubWorker struct {
	started atomic.Bool
	closed  atomic.Bool
}

func (w *stubWorker) Start(ctx context.Context) error {
	w.started.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

func (w *stubWorker) Close() error {
	w.closed.Store(true)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		RequestTimeout:     time.Second,
		MaxRequestSize:     1024,
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		IdleTimeout:        time.Second,
		ShutdownTimeout:    time.Second,
		IdempotencyBackend: config.IdempotencyBackendMemory,
		IdempotencyTTL:     time.Minute,
		RateLimitRequests:  2,
		RateLimitWindow:    time.Minute,
		Log:                logger.Discard(),
		Client:             client.NewClient(),
	}
}

func newTestApp(t *testing.T) (*Application, *atomic.Int32) {
	t.Helper()
	var moves atomic.Int32

	a := NewApplication(testConfig())
	a.SetApp(
		routes(func(r *httprouter.Router) {
			r.POST("/api/v1/reservations/:id/move", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
				moves.Add(1)
				w.WriteHeader(http.StatusOK)
			})
		}),
		routes(func(r *httprouter.Router) {
			r.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
				w.WriteHeader(http.StatusOK)
			})
		}),
	)
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a, &moves
}

func TestSetApp_MiddlewareChain(t *testing.T) {
	a, moves := newTestApp(t)
	h := a.server.Handler

	send := func(body, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/x/move", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set(middleware.OperatorIDHeader, "desk-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := send(`{}`, "text/plain")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	assert.Equal(t, http.StatusOK, send(`{}`, "application/json").Code)
	assert.Equal(t, http.StatusOK, send(`{}`, "application/json").Code)
	assert.Equal(t, http.StatusTooManyRequests, send(`{}`, "application/json").Code)
	assert.Equal(t, int32(2), moves.Load())
}

func TestSetApp_HealthSkipsRateLimit(t *testing.T) {
	a, _ := newTestApp(t)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(middleware.OperatorIDHeader, "desk-9")
		rec := httptest.NewRecorder()
		a.server.Handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestWorkers_StartAndStop(t *testing.T) {
	a, _ := newTestApp(t)
	w := &stubWorker{}
	a.AddWorker("stub", w)

	var hookRan atomic.Bool
	a.OnShutdown(func() { hookRan.Store(true) })

	a.startWorkers()
	require.Eventually(t, w.started.Load, time.Second, 5*time.Millisecond)

	a.gracefulShutdown()

	assert.True(t, w.closed.Load())
	assert.True(t, hookRan.Load())
}
