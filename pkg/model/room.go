package model

import (
	"time"

	"roomgrid/pkg/dates"
)

// RoomInfo identifies one bookable unit. The set is fixed per property.
type RoomInfo struct {
	RoomType   string `json:"room_type" bson:"room_type" validate:"required"`
	RoomID     string `json:"room_id" bson:"room_id" validate:"required"`
	RoomNumber string `json:"room_number" bson:"room_number" validate:"required,max=20"`
}

// RoomLock is an advisory lock on one room number, held while a move or
// resize targeting it is validated and committed.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// MoveSnapshot holds a reservation's placement right before a committed move.
type MoveSnapshot struct {
	ReservationID    string          `json:"reservation_id"`
	PriorRoomID      string          `json:"prior_room_id"`
	PriorRoomNumber  string          `json:"prior_room_number"`
	PriorAllocations []SubAllocation `json:"prior_allocations,omitempty"`
	PriorCheckIn     time.Time       `json:"prior_check_in"`
	PriorCheckOut    time.Time       `json:"prior_check_out"`
	RecordedAt       time.Time       `json:"recorded_at"`
}

func SnapshotOf(r *Reservation, at time.Time) *MoveSnapshot {
	s := &MoveSnapshot{
		ReservationID:   r.ID,
		PriorRoomID:     r.RoomID,
		PriorRoomNumber: r.RoomNumber,
		PriorCheckIn:    r.CheckIn,
		PriorCheckOut:   r.CheckOut,
		RecordedAt:      at,
	}
	if r.Allocations != nil {
		s.PriorAllocations = make([]SubAllocation, len(r.Allocations))
		copy(s.PriorAllocations, r.Allocations)
	}
	return s
}

// Restore builds the update that puts the reservation back where the
// snapshot found it.
func (s *MoveSnapshot) Restore() *ReservationUpdate {
	roomID := s.PriorRoomID
	roomNumber := s.PriorRoomNumber
	checkIn := s.PriorCheckIn
	checkOut := s.PriorCheckOut
	nights := dates.DaysBetween(checkIn, checkOut)
	u := &ReservationUpdate{
		RoomID:      &roomID,
		RoomNumber:  &roomNumber,
		CheckIn:     &checkIn,
		CheckOut:    &checkOut,
		TotalNights: &nights,
	}
	if s.PriorAllocations != nil {
		allocs := make([]SubAllocation, len(s.PriorAllocations))
		copy(allocs, s.PriorAllocations)
		u.Allocations = &allocs
	}
	return u
}
