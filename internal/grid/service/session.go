package service

import (
	"context"
	"sync"
	"time"

	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/internal/grid/gesture"
	"roomgrid/internal/grid/history"
	"roomgrid/pkg/sanitizer"
)

// sessionIdle is how long an operator with no gesture and no pending undo
// keeps a session before it is swept.
const sessionIdle = 30 * time.Minute

// session is one operator's pointer state and undo slot. mu guards tracker
// only; it is never held while calling back into the engine.
type session struct {
	mu       sync.Mutex
	tracker  *gesture.Tracker
	history  *history.Manager
	lastSeen time.Time
}

func (s *session) mode() gesture.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Mode()
}

func (s *session) idle() bool {
	if s.mode() != gesture.Idle {
		return false
	}
	_, pending := s.history.Pending()
	return !pending
}

// session returns the operator's session, creating it on first use. An
// empty operator shares one anonymous session.
func (e *Engine) session(operator string) *session {
	operator = sanitizer.TrimAndNormalize(operator)
	now := e.clock.Now()

	e.sessionsMu.Lock()
	defer e.sessionsMu.Unlock()

	s, ok := e.sessions[operator]
	if !ok {
		e.sweepLocked(now)
		s = &session{
			tracker: gesture.NewTracker(),
			history: history.NewManager(e.cfg.UndoWindow, e.cfg.Log.With("operator", operator),
				history.WithClock(e.clock.Now)),
		}
		e.sessions[operator] = s
	}
	s.lastSeen = now
	return s
}

func (e *Engine) sweepLocked(now time.Time) {
	for op, s := range e.sessions {
		if now.Sub(s.lastSeen) > sessionIdle && s.idle() {
			s.history.Clear()
			delete(e.sessions, op)
		}
	}
}

func (e *Engine) closeSessions() {
	e.sessionsMu.Lock()
	defer e.sessionsMu.Unlock()
	for op, s := range e.sessions {
		s.history.Clear()
		delete(e.sessions, op)
	}
}

// GestureMode reports the operator's current pointer state.
func (e *Engine) GestureMode(operator string) gesture.Mode {
	return e.session(operator).mode()
}

// StartDrag picks up a reservation bar from the row roomNumber.
func (e *Engine) StartDrag(operator, reservationID, roomNumber string) error {
	res, ok := e.Index().Reservation(reservationID)
	if !ok {
		return griderrors.ErrReservationNotFound
	}
	roomNumber = sanitizer.NormalizeRoomNumber(roomNumber)
	if roomNumber == "" {
		roomNumber = res.RoomNumber
	}
	if !res.Occupies(roomNumber) {
		return griderrors.ErrUnknownRoom
	}

	s := e.session(operator)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.StartDrag(res.ID, roomNumber)
}

// GrabEdge starts a resize at pointer position x. cellWidth is the on-screen
// width of one day.
func (e *Engine) GrabEdge(operator, reservationID, roomNumber string, edge gesture.Edge, x, cellWidth float64) error {
	res, ok := e.Index().Reservation(reservationID)
	if !ok {
		return griderrors.ErrReservationNotFound
	}
	roomNumber = sanitizer.NormalizeRoomNumber(roomNumber)
	if roomNumber == "" {
		roomNumber = res.RoomNumber
	}

	s := e.session(operator)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.GrabEdge(res.ID, roomNumber, edge, x, cellWidth)
}

// PointerMove records the pointer position and returns the live day delta
// of a resize in progress. It is 0 outside a resize.
func (e *Engine) PointerMove(operator string, x float64) int {
	s := e.session(operator)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.PointerMove(x)
}

// Hover registers the cell under a dragged bar; nil means off the grid. A
// target naming only a room number takes its room id from the catalog.
func (e *Engine) Hover(operator string, target *gesture.DropTarget) {
	if target != nil {
		t := *target
		t.RoomID = sanitizer.NormalizeRoomID(t.RoomID)
		t.RoomNumber = sanitizer.NormalizeRoomNumber(t.RoomNumber)
		if t.RoomID == "" {
			if id, ok := e.rooms.RoomIDOf(t.RoomNumber); ok {
				t.RoomID = id
			}
		}
		target = &t
	}
	s := e.session(operator)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Hover(target)
}

// PointerUp ends the operator's gesture and commits it as a move or resize.
// The tracker is idle again before the commit starts.
func (e *Engine) PointerUp(ctx context.Context, operator string) Outcome {
	s := e.session(operator)
	s.mu.Lock()
	r := s.tracker.PointerUp()
	s.mu.Unlock()
	return e.Release(ctx, operator, r)
}

func (e *Engine) CancelGesture(operator string) {
	s := e.session(operator)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Cancel()
}

// busy rejects a direct move or resize while the operator holds the other
// kind of gesture.
func (e *Engine) busy(operator string, blocking gesture.Mode) bool {
	return e.session(operator).mode() == blocking
}
