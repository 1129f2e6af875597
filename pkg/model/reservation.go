package model

import (
	"time"

	"roomgrid/pkg/dates"
)

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

type SubAllocation struct {
	RoomID        string  `json:"room_id" bson:"room_id" validate:"required"`
	RoomNumber    string  `json:"room_number" bson:"room_number" validate:"required,max=20"`
	PricePerNight float64 `json:"price_per_night" bson:"price_per_night" validate:"min=0"`
}

// Reservation occupies every day in [CheckIn, CheckOut) on its primary room
// number and on each sub-allocation's room number.
type Reservation struct {
	ID           string          `json:"id" bson:"_id,omitempty" validate:"required"`
	GuestName    string          `json:"guest_name,omitempty" bson:"guest_name,omitempty" validate:"omitempty,max=200"`
	RoomID       string          `json:"room_id" bson:"room_id" validate:"required"`
	RoomNumber   string          `json:"room_number,omitempty" bson:"room_number,omitempty" validate:"omitempty,max=20"`
	Allocations  []SubAllocation `json:"allocations,omitempty" bson:"allocations,omitempty" validate:"omitempty,dive"`
	CheckIn      time.Time       `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut     time.Time       `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	TotalNights  int             `json:"total_nights" bson:"total_nights" validate:"min=1"`
	Status       string          `json:"status" bson:"status" validate:"required,oneof=pending confirmed checked_in checked_out cancelled no_show"`
	CheckOutTime string          `json:"check_out_time,omitempty" bson:"check_out_time,omitempty" validate:"omitempty,hhmm"`
	UpdatedAt    time.Time       `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// ReservationUpdate carries the fields a move, resize or undo may change.
// Nil fields are left untouched by the store.
type ReservationUpdate struct {
	RoomID      *string          `json:"room_id,omitempty" validate:"omitempty,min=1"`
	RoomNumber  *string          `json:"room_number,omitempty" validate:"omitempty,min=1,max=20"`
	Allocations *[]SubAllocation `json:"allocations,omitempty" validate:"omitempty,dive"`
	CheckIn     *time.Time       `json:"check_in,omitempty"`
	CheckOut    *time.Time       `json:"check_out,omitempty"`
	TotalNights *int             `json:"total_nights,omitempty" validate:"omitempty,min=1"`
}

func (r *Reservation) IsActive() bool {
	return r.Status != StatusCancelled
}

func (r *Reservation) Nights() int {
	return dates.DaysBetween(r.CheckIn, r.CheckOut)
}

// RoomNumbers lists every room number the reservation occupies, primary
// first. An unassigned primary is skipped.
func (r *Reservation) RoomNumbers() []string {
	out := make([]string, 0, len(r.Allocations)+1)
	if r.RoomNumber != "" {
		out = append(out, r.RoomNumber)
	}
	for _, a := range r.Allocations {
		if a.RoomNumber != "" {
			out = append(out, a.RoomNumber)
		}
	}
	return out
}

// Occupies reports whether the reservation holds roomNumber, primarily or via
// a sub-allocation.
func (r *Reservation) Occupies(roomNumber string) bool {
	if roomNumber == "" {
		return false
	}
	for _, n := range r.RoomNumbers() {
		if n == roomNumber {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can stage changes without touching
// records shared with the occupancy index.
func (r *Reservation) Clone() *Reservation {
	c := *r
	if r.Allocations != nil {
		c.Allocations = make([]SubAllocation, len(r.Allocations))
		copy(c.Allocations, r.Allocations)
	}
	return &c
}

// Apply merges an update into a copy of the reservation.
func (r *Reservation) Apply(u *ReservationUpdate) *Reservation {
	merged := r.Clone()
	if u == nil {
		return merged
	}
	if u.RoomID != nil {
		merged.RoomID = *u.RoomID
	}
	if u.RoomNumber != nil {
		merged.RoomNumber = *u.RoomNumber
	}
	if u.Allocations != nil {
		merged.Allocations = make([]SubAllocation, len(*u.Allocations))
		copy(merged.Allocations, *u.Allocations)
	}
	if u.CheckIn != nil {
		merged.CheckIn = *u.CheckIn
	}
	if u.CheckOut != nil {
		merged.CheckOut = *u.CheckOut
	}
	if u.TotalNights != nil {
		merged.TotalNights = *u.TotalNights
	}
	return merged
}
