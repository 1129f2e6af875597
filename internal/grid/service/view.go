package service

import (
	"time"

	"roomgrid/internal/grid/window"
	"roomgrid/pkg/dates"
	"roomgrid/pkg/model"
)

// StandardCheckOutTime is the property's regular departure time. A later
// check-out time marks the departure cell.
const StandardCheckOutTime = "12:00"

type CellView struct {
	RoomID       string             `json:"room_id"`
	RoomNumber   string             `json:"room_number"`
	Date         time.Time          `json:"date"`
	Reservation  *model.Reservation `json:"reservation,omitempty"`
	Blocked      bool               `json:"blocked"`
	BlockReason  string             `json:"block_reason,omitempty"`
	IsToday      bool               `json:"is_today"`
	IsPast       bool               `json:"is_past"`
	LateCheckout *model.Reservation `json:"late_checkout,omitempty"`
}

type Row struct {
	model.RoomInfo
	Cells []CellView `json:"cells"`
}

type GridView struct {
	Window window.Window `json:"window"`
	Today  time.Time     `json:"today"`
	Rows   []Row         `json:"rows"`
}

// Cell describes one grid cell against the current index.
func (e *Engine) Cell(roomID, roomNumber string, day time.Time) CellView {
	idx := e.Index()
	day = dates.Normalize(day)
	today := e.clock.Today()

	c := CellView{
		RoomID:      roomID,
		RoomNumber:  roomNumber,
		Date:        day,
		Reservation: idx.ReservationAt(roomNumber, day),
		Blocked:     idx.IsBlocked(roomID, roomNumber, day),
		IsToday:     day.Equal(today),
		IsPast:      day.Before(today),
	}
	if reason, ok := idx.BlockReason(roomID, roomNumber, day); ok {
		c.BlockReason = reason
	}

	// the guest leaving today was indexed on the previous night
	if departing := idx.ReservationAt(roomNumber, dates.AddDays(day, -1)); departing != nil &&
		dates.Normalize(departing.CheckOut).Equal(day) &&
		isLate(departing.CheckOutTime) {
		c.LateCheckout = departing
	}
	return c
}

// Availability reports whether [checkIn, checkOut) is free on the unit,
// ignoring excludeID.
func (e *Engine) Availability(roomID, roomNumber string, checkIn, checkOut time.Time, excludeID string) bool {
	return e.Index().IsRangeFree(roomID, roomNumber, dates.Normalize(checkIn), dates.Normalize(checkOut), excludeID)
}

// Grid renders every catalog room over the window around pivot.
func (e *Engine) Grid(pivot time.Time, rangeLength int, compact bool) GridView {
	w := window.New(pivot, rangeLength, compact)
	rooms := e.rooms.Rooms()
	view := GridView{
		Window: w,
		Today:  e.clock.Today(),
		Rows:   make([]Row, 0, len(rooms)),
	}
	for _, room := range rooms {
		row := Row{RoomInfo: room, Cells: make([]CellView, 0, len(w.Dates))}
		for _, day := range w.Dates {
			row.Cells = append(row.Cells, e.Cell(room.RoomID, room.RoomNumber, day))
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func isLate(checkOutTime string) bool {
	if checkOutTime == "" {
		return false
	}
	t, err := time.Parse("15:04", checkOutTime)
	if err != nil {
		return false
	}
	std, _ := time.Parse("15:04", StandardCheckOutTime)
	return t.After(std)
}
