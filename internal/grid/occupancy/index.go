// Package occupancy projects reservations and blocked dates onto the
// (room number, day) grid for constant-time cell lookups.
package occupancy

import (
	"time"

	"roomgrid/pkg/dates"
	"roomgrid/pkg/model"
)

type cellKey struct {
	roomNumber string
	day        string
}

type blockKey struct {
	roomID     string
	roomNumber string
	day        string
}

// Duplicate records a cell claimed by more than one active reservation. The
// store should never produce one.
type Duplicate struct {
	RoomNumber string    `json:"room_number"`
	Date       time.Time `json:"date"`
	Kept       string    `json:"kept"`
	Other      string    `json:"other"`
}

// Index is immutable once built. Replace it wholesale when the source
// collections change.
type Index struct {
	cells        map[cellKey][]*model.Reservation
	blocks       map[blockKey]*model.BlockedDate
	byID         map[string]*model.Reservation
	reservations []*model.Reservation
	blocked      []*model.BlockedDate
	duplicates   []Duplicate
	builtAt      time.Time
}

// Build indexes every active reservation under each day of [CheckIn,
// CheckOut) for its primary room number and each sub-allocation, and every
// blocked date under (room id, room number, day).
func Build(reservations []*model.Reservation, blocked []*model.BlockedDate) *Index {
	idx := &Index{
		cells:        make(map[cellKey][]*model.Reservation),
		blocks:       make(map[blockKey]*model.BlockedDate, len(blocked)),
		byID:         make(map[string]*model.Reservation, len(reservations)),
		reservations: make([]*model.Reservation, 0, len(reservations)),
		blocked:      make([]*model.BlockedDate, 0, len(blocked)),
		builtAt:      time.Now(),
	}

	for _, r := range reservations {
		if r == nil || !r.IsActive() {
			continue
		}
		idx.byID[r.ID] = r
		idx.reservations = append(idx.reservations, r)

		seen := make(map[string]bool)
		for _, number := range r.RoomNumbers() {
			if seen[number] {
				continue
			}
			seen[number] = true
			for _, day := range dates.Range(r.CheckIn, r.CheckOut) {
				idx.insert(cellKey{roomNumber: number, day: dates.Key(day)}, r, day)
			}
		}
	}

	for _, b := range blocked {
		if b == nil {
			continue
		}
		key := blockKey{roomID: b.RoomID, roomNumber: b.RoomNumber, day: dates.Key(b.Date)}
		if _, exists := idx.blocks[key]; exists {
			continue
		}
		idx.blocks[key] = b
		idx.blocked = append(idx.blocked, b)
	}

	return idx
}

func (idx *Index) insert(key cellKey, r *model.Reservation, day time.Time) {
	existing := idx.cells[key]
	if len(existing) > 0 {
		idx.duplicates = append(idx.duplicates, Duplicate{
			RoomNumber: key.roomNumber,
			Date:       dates.Normalize(day),
			Kept:       existing[0].ID,
			Other:      r.ID,
		})
	}
	idx.cells[key] = append(existing, r)
}

// ReservationAt returns the active reservation on roomNumber for day. When
// the store has produced a double booking the first one indexed wins; see
// Duplicates.
func (idx *Index) ReservationAt(roomNumber string, day time.Time) *model.Reservation {
	occupants := idx.cells[cellKey{roomNumber: roomNumber, day: dates.Key(day)}]
	if len(occupants) == 0 {
		return nil
	}
	return occupants[0]
}

func (idx *Index) IsBlocked(roomID, roomNumber string, day time.Time) bool {
	_, ok := idx.blocks[blockKey{roomID: roomID, roomNumber: roomNumber, day: dates.Key(day)}]
	return ok
}

func (idx *Index) BlockReason(roomID, roomNumber string, day time.Time) (string, bool) {
	b, ok := idx.blocks[blockKey{roomID: roomID, roomNumber: roomNumber, day: dates.Key(day)}]
	if !ok || b.Reason == "" {
		return "", false
	}
	return b.Reason, true
}

// OccupantIn returns the first active reservation other than excludeID that
// holds roomNumber on any day of [start, end).
func (idx *Index) OccupantIn(roomNumber string, start, end time.Time, excludeID string) *model.Reservation {
	for _, day := range dates.Range(start, end) {
		for _, r := range idx.cells[cellKey{roomNumber: roomNumber, day: dates.Key(day)}] {
			if r.ID != excludeID {
				return r
			}
		}
	}
	return nil
}

// FirstBlocked returns the earliest blocked day for the unit inside
// [start, end).
func (idx *Index) FirstBlocked(roomID, roomNumber string, start, end time.Time) *model.BlockedDate {
	for _, day := range dates.Range(start, end) {
		if b, ok := idx.blocks[blockKey{roomID: roomID, roomNumber: roomNumber, day: dates.Key(day)}]; ok {
			return b
		}
	}
	return nil
}

// IsRangeFree reports whether no other active reservation and no block
// touches the unit within [start, end).
func (idx *Index) IsRangeFree(roomID, roomNumber string, start, end time.Time, excludeID string) bool {
	return idx.OccupantIn(roomNumber, start, end, excludeID) == nil &&
		idx.FirstBlocked(roomID, roomNumber, start, end) == nil
}

// Reservation looks up an active reservation by id.
func (idx *Index) Reservation(id string) (*model.Reservation, bool) {
	r, ok := idx.byID[id]
	return r, ok
}

// Reservations returns the active reservations the index was built from.
// The records are shared; callers must not modify them.
func (idx *Index) Reservations() []*model.Reservation {
	return idx.reservations
}

func (idx *Index) BlockedDates() []*model.BlockedDate {
	return idx.blocked
}

func (idx *Index) Duplicates() []Duplicate {
	return idx.duplicates
}

func (idx *Index) BuiltAt() time.Time {
	return idx.builtAt
}
