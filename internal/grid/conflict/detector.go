package conflict

import (
	"fmt"
	"time"

	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/pkg/dates"
)

// Unit is one room number a candidate placement would occupy.
type Unit struct {
	RoomID     string
	RoomNumber string
}

// Candidate is a proposed placement of a reservation.
type Candidate struct {
	ReservationID string
	SourceRoomID  string
	TargetRoomID  string
	Units         []Unit
	CheckIn       time.Time
	CheckOut      time.Time
}

type Detector struct {
	rooms RoomTyper
}

func NewDetector(rooms RoomTyper) *Detector {
	return &Detector{rooms: rooms}
}

// Check runs every predicate in a fixed order and returns the first failure
// wrapped around its sentinel, so callers can tell a type mismatch from a
// booking clash from a block.
func (d *Detector) Check(src Source, c Candidate) error {
	if !c.CheckOut.After(c.CheckIn) {
		return fmt.Errorf("%w: %s..%s", griderrors.ErrMinimumDuration, dates.Key(c.CheckIn), dates.Key(c.CheckOut))
	}
	if c.SourceRoomID != "" && RoomTypeMismatch(c.SourceRoomID, c.TargetRoomID, d.rooms) {
		return fmt.Errorf("%w: %s -> %s", griderrors.ErrRoomTypeMismatch, c.SourceRoomID, c.TargetRoomID)
	}
	for _, u := range c.Units {
		if other := src.OccupantIn(u.RoomNumber, c.CheckIn, c.CheckOut, c.ReservationID); other != nil {
			return fmt.Errorf("%w: room %s is held by reservation %s (%s..%s)",
				griderrors.ErrReservationConflict, u.RoomNumber, other.ID,
				dates.Key(other.CheckIn), dates.Key(other.CheckOut))
		}
	}
	for _, u := range c.Units {
		if b := src.FirstBlocked(u.RoomID, u.RoomNumber, c.CheckIn, c.CheckOut); b != nil {
			return fmt.Errorf("%w: room %s on %s", griderrors.ErrBlockConflict, u.RoomNumber, dates.Key(b.Date))
		}
	}
	return nil
}
