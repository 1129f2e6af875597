// Package history keeps one operator's undoable move.
package history

import (
	"context"
	"sync"
	"time"

	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"
)

const DefaultWindow = 10 * time.Second

// Restorer puts a reservation back to the placement held in s.
type Restorer func(ctx context.Context, s *model.MoveSnapshot) error

type Manager struct {
	mu         sync.Mutex
	window     time.Duration
	now        func() time.Time
	log        *logger.Logger
	snapshot   *model.MoveSnapshot
	generation uint64
	timer      *time.Timer
	inFlight   bool
}

type Option func(*Manager)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(window time.Duration, log *logger.Logger, opts ...Option) *Manager {
	if window <= 0 {
		window = DefaultWindow
	}
	m := &Manager{
		window: window,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Record stores s as the only undoable move, replacing any earlier one, and
// restarts the expiry timer.
func (m *Manager) Record(s *model.MoveSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.RecordedAt.IsZero() {
		s.RecordedAt = m.now()
	}
	m.snapshot = s
	m.generation++
	gen := m.generation

	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.window, func() {
		m.expire(gen)
	})
}

func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen || m.snapshot == nil || m.inFlight {
		return
	}
	m.log.Debug("Undo window elapsed", "reservation_id", m.snapshot.ReservationID)
	m.snapshot = nil
}

// Pending returns the undoable snapshot, if any is still within its window.
func (m *Manager) Pending() (*model.MoveSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot == nil || m.expiredLocked() {
		return nil, false
	}
	s := *m.snapshot
	return &s, true
}

func (m *Manager) expiredLocked() bool {
	return m.now().Sub(m.snapshot.RecordedAt) > m.window
}

// Undo hands the pending snapshot to restore. It returns false without
// calling restore when nothing is pending, the window has elapsed, or another
// undo is still running. A failed restore keeps the snapshot so the operator
// can retry within the window.
func (m *Manager) Undo(ctx context.Context, restore Restorer) (bool, error) {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return false, griderrors.ErrUndoInFlight
	}
	if m.snapshot == nil {
		m.mu.Unlock()
		return false, griderrors.ErrNothingToUndo
	}
	if m.expiredLocked() {
		m.snapshot = nil
		m.mu.Unlock()
		return false, griderrors.ErrNothingToUndo
	}
	s := m.snapshot
	gen := m.generation
	m.inFlight = true
	m.mu.Unlock()

	err := restore(ctx, s)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	if err != nil {
		return false, err
	}
	if m.generation == gen {
		m.snapshot = nil
		if m.timer != nil {
			m.timer.Stop()
		}
	}
	return true, nil
}

// Clear drops the pending snapshot and stops its timer.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	m.generation++
	if m.timer != nil {
		m.timer.Stop()
	}
}
