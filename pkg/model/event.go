package model

import "time"

const (
	EventReservationMoved      = "reservation.moved"
	EventReservationResized    = "reservation.resized"
	EventReservationMoveUndone = "reservation.move_undone"
	EventBlockedDatesAdded     = "blocked_dates.added"
	EventBlockedDatesRemoved   = "blocked_dates.removed"
)

// GridEvent announces an accepted change to the booking grid.
type GridEvent struct {
	Type          string           `json:"type"`
	ReservationID string           `json:"reservation_id,omitempty"`
	Reservation   *Reservation     `json:"reservation,omitempty"`
	Prior         *MoveSnapshot    `json:"prior,omitempty"`
	Blocked       []BlockedDateKey `json:"blocked,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// Key is the partition key: the reservation for reservation events, the
// room number for block events.
func (e *GridEvent) Key() string {
	if e.ReservationID != "" {
		return e.ReservationID
	}
	if len(e.Blocked) > 0 {
		return e.Blocked[0].RoomNumber
	}
	return e.Type
}
