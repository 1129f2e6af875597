// Package gesture turns abstract pointer events from the hosting UI into
// finished drag or resize gestures. It never touches reservations itself.
package gesture

import (
	"fmt"
	"math"
	"time"

	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/pkg/dates"
)

type Mode int

const (
	Idle Mode = iota
	Dragging
	Resizing
)

func (m Mode) String() string {
	switch m {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Edge is the side of a reservation bar grabbed for a resize.
type Edge int

const (
	EdgeCheckIn Edge = iota + 1
	EdgeCheckOut
)

func (e Edge) String() string {
	switch e {
	case EdgeCheckIn:
		return "check_in"
	case EdgeCheckOut:
		return "check_out"
	default:
		return "unknown"
	}
}

func ParseEdge(s string) (Edge, bool) {
	switch s {
	case "check_in", "left":
		return EdgeCheckIn, true
	case "check_out", "right":
		return EdgeCheckOut, true
	default:
		return 0, false
	}
}

var (
	ErrBusy             = griderrors.ErrGestureInProgress
	ErrInvalidCellWidth = fmt.Errorf("%w: cell width must be positive", griderrors.ErrInvalidGesture)
	ErrInvalidEdge      = fmt.Errorf("%w: edge must be check_in or check_out", griderrors.ErrInvalidGesture)
)

// DropTarget is the grid cell under the pointer during a drag.
type DropTarget struct {
	RoomID     string    `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	Date       time.Time `json:"date"`
}

// Release describes a finished gesture. Cancelled gestures carry no work.
type Release struct {
	Mode             Mode
	ReservationID    string
	SourceRoomNumber string
	Edge             Edge
	DayDelta         int
	Target           *DropTarget
	Cancelled        bool
}

// Tracker follows one pointer. A resize in progress blocks drag initiation
// on any bar and vice versa.
type Tracker struct {
	mode             Mode
	reservationID    string
	sourceRoomNumber string
	edge             Edge
	startX           float64
	currentX         float64
	cellWidth        float64
	target           *DropTarget
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Mode() Mode {
	return t.mode
}

// GrabEdge enters the resizing state.
func (t *Tracker) GrabEdge(reservationID, roomNumber string, edge Edge, x, cellWidth float64) error {
	if t.mode != Idle {
		return ErrBusy
	}
	if edge != EdgeCheckIn && edge != EdgeCheckOut {
		return ErrInvalidEdge
	}
	if cellWidth <= 0 {
		return ErrInvalidCellWidth
	}
	t.mode = Resizing
	t.reservationID = reservationID
	t.sourceRoomNumber = roomNumber
	t.edge = edge
	t.startX = x
	t.currentX = x
	t.cellWidth = cellWidth
	return nil
}

// StartDrag enters the dragging state.
func (t *Tracker) StartDrag(reservationID, roomNumber string) error {
	if t.mode != Idle {
		return ErrBusy
	}
	t.mode = Dragging
	t.reservationID = reservationID
	t.sourceRoomNumber = roomNumber
	return nil
}

// PointerMove records the pointer position and returns the live day delta
// preview for a resize.
func (t *Tracker) PointerMove(x float64) int {
	if t.mode != Resizing {
		return 0
	}
	t.currentX = x
	return t.Preview()
}

// Preview is round((currentX - startX) / cellWidth).
func (t *Tracker) Preview() int {
	if t.mode != Resizing || t.cellWidth <= 0 {
		return 0
	}
	return int(math.Round((t.currentX - t.startX) / t.cellWidth))
}

// Hover registers the cell under a dragged bar. A nil target means the
// pointer left the grid.
func (t *Tracker) Hover(target *DropTarget) {
	if t.mode != Dragging {
		return
	}
	t.target = target
}

// PointerUp ends the gesture and returns the tracker to idle. A drag released
// outside any drop target, or a resize with zero delta, comes back cancelled.
func (t *Tracker) PointerUp() Release {
	r := Release{
		Mode:             t.mode,
		ReservationID:    t.reservationID,
		SourceRoomNumber: t.sourceRoomNumber,
	}
	switch t.mode {
	case Resizing:
		r.Edge = t.edge
		r.DayDelta = t.Preview()
		r.Cancelled = r.DayDelta == 0
	case Dragging:
		r.Target = t.target
		r.Cancelled = t.target == nil
	default:
		r.Cancelled = true
	}
	t.reset()
	return r
}

// Cancel abandons the gesture with no result.
func (t *Tracker) Cancel() {
	t.reset()
}

func (t *Tracker) reset() {
	*t = Tracker{}
}

// ApplyDelta moves only the grabbed edge by delta days.
func ApplyDelta(checkIn, checkOut time.Time, edge Edge, delta int) (time.Time, time.Time) {
	switch edge {
	case EdgeCheckIn:
		return dates.AddDays(checkIn, delta), dates.Normalize(checkOut)
	case EdgeCheckOut:
		return dates.Normalize(checkIn), dates.AddDays(checkOut, delta)
	default:
		return dates.Normalize(checkIn), dates.Normalize(checkOut)
	}
}
