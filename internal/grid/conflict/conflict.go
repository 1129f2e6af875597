// Package conflict holds the pure predicates shared by the move and resize
// validators.
package conflict

import (
	"time"

	"roomgrid/pkg/dates"
	"roomgrid/pkg/model"
)

// RoomTyper resolves a room id to its room type.
type RoomTyper interface {
	RoomType(roomID string) (string, bool)
}

// RangesOverlap compares half-open ranges [aStart, aEnd) and [bStart, bEnd).
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HasReservationConflict reports whether any other active reservation holding
// targetRoomNumber overlaps [newCheckIn, newCheckOut).
func HasReservationConflict(candidateID, targetRoomNumber string, newCheckIn, newCheckOut time.Time, all []*model.Reservation) bool {
	return FindReservationConflict(candidateID, targetRoomNumber, newCheckIn, newCheckOut, all) != nil
}

// FindReservationConflict is HasReservationConflict returning the offender.
func FindReservationConflict(candidateID, targetRoomNumber string, newCheckIn, newCheckOut time.Time, all []*model.Reservation) *model.Reservation {
	for _, r := range all {
		if r == nil || r.ID == candidateID || !r.IsActive() {
			continue
		}
		if !r.Occupies(targetRoomNumber) {
			continue
		}
		if RangesOverlap(r.CheckIn, r.CheckOut, newCheckIn, newCheckOut) {
			return r
		}
	}
	return nil
}

// HasBlockConflict reports whether any blocked day for the unit falls inside
// [newCheckIn, newCheckOut).
func HasBlockConflict(targetRoomID, targetRoomNumber string, newCheckIn, newCheckOut time.Time, blocked []*model.BlockedDate) bool {
	return FindBlockConflict(targetRoomID, targetRoomNumber, newCheckIn, newCheckOut, blocked) != nil
}

func FindBlockConflict(targetRoomID, targetRoomNumber string, newCheckIn, newCheckOut time.Time, blocked []*model.BlockedDate) *model.BlockedDate {
	start := dates.Normalize(newCheckIn)
	end := dates.Normalize(newCheckOut)
	for _, b := range blocked {
		if b == nil || b.RoomID != targetRoomID || b.RoomNumber != targetRoomNumber {
			continue
		}
		d := dates.Normalize(b.Date)
		if !d.Before(start) && d.Before(end) {
			return b
		}
	}
	return nil
}

// RoomTypeMismatch reports whether the two rooms are of different types. An
// unknown room id never matches.
func RoomTypeMismatch(sourceRoomID, targetRoomID string, rooms RoomTyper) bool {
	if sourceRoomID == targetRoomID {
		return false
	}
	src, ok := rooms.RoomType(sourceRoomID)
	if !ok {
		return true
	}
	dst, ok := rooms.RoomType(targetRoomID)
	if !ok {
		return true
	}
	return src != dst
}

// Source answers occupancy questions for a candidate range. The occupancy
// index implements it with constant-time lookups; Collections implements it
// over plain slices.
type Source interface {
	OccupantIn(roomNumber string, start, end time.Time, excludeID string) *model.Reservation
	FirstBlocked(roomID, roomNumber string, start, end time.Time) *model.BlockedDate
}

// Collections adapts raw store collections to Source.
type Collections struct {
	Reservations []*model.Reservation
	Blocked      []*model.BlockedDate
}

func (c Collections) OccupantIn(roomNumber string, start, end time.Time, excludeID string) *model.Reservation {
	return FindReservationConflict(excludeID, roomNumber, start, end, c.Reservations)
}

func (c Collections) FirstBlocked(roomID, roomNumber string, start, end time.Time) *model.BlockedDate {
	return FindBlockConflict(roomID, roomNumber, start, end, c.Blocked)
}
