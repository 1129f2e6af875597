package service

import (
	"context"
	"fmt"
	"time"

	"roomgrid/internal/grid/conflict"
	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/internal/grid/gesture"
	"roomgrid/pkg/dates"
	"roomgrid/pkg/model"
	"roomgrid/pkg/sanitizer"
)

// MoveRequest drops a reservation bar on a grid cell. SourceRoomNumber is
// the row the bar was dragged from; empty means the primary room. Operator
// owns the undo slot the move is recorded in.
type MoveRequest struct {
	Operator         string    `json:"-"`
	ReservationID    string    `json:"reservation_id"`
	SourceRoomNumber string    `json:"source_room_number,omitempty"`
	TargetRoomID     string    `json:"target_room_id"`
	TargetRoomNumber string    `json:"target_room_number"`
	TargetDate       time.Time `json:"target_date"`
}

// Move reassigns a reservation's room number and/or check-in date, keeping
// its night count. On acceptance the store is called exactly once, the prior
// placement becomes undoable and the index is rebuilt.
func (e *Engine) Move(ctx context.Context, req MoveRequest) Outcome {
	req.SourceRoomNumber = sanitizer.NormalizeRoomNumber(req.SourceRoomNumber)
	req.TargetRoomID = sanitizer.NormalizeRoomID(req.TargetRoomID)
	req.TargetRoomNumber = sanitizer.NormalizeRoomNumber(req.TargetRoomNumber)
	if e.busy(req.Operator, gesture.Resizing) {
		return e.reject("Move", req.ReservationID, griderrors.ErrGestureInProgress)
	}
	idx := e.Index()

	res, ok := idx.Reservation(req.ReservationID)
	if !ok {
		return e.reject("Move", req.ReservationID, griderrors.ErrReservationNotFound)
	}

	source := req.SourceRoomNumber
	if source == "" {
		source = res.RoomNumber
	}
	allocation := -1
	sourceRoomID := res.RoomID
	if source != res.RoomNumber {
		for i, a := range res.Allocations {
			if a.RoomNumber == source {
				allocation = i
				sourceRoomID = a.RoomID
				break
			}
		}
		if allocation < 0 {
			return e.reject("Move", res.ID, fmt.Errorf("%w: reservation %s does not hold room %s",
				griderrors.ErrUnknownRoom, res.ID, source))
		}
	}

	target := dates.Normalize(req.TargetDate)
	if req.TargetRoomNumber == source && target.Equal(dates.Normalize(res.CheckIn)) {
		return e.reject("Move", res.ID, griderrors.ErrNoOp)
	}

	if target.Before(e.clock.Today()) {
		return e.reject("Move", res.ID, fmt.Errorf("%w: %s", griderrors.ErrPastDate, dates.Key(target)))
	}

	if conflict.RoomTypeMismatch(sourceRoomID, req.TargetRoomID, e.rooms) {
		return e.reject("Move", res.ID, fmt.Errorf("%w: %s -> %s",
			griderrors.ErrRoomTypeMismatch, sourceRoomID, req.TargetRoomID))
	}
	if !e.rooms.HasNumber(req.TargetRoomID, req.TargetRoomNumber) {
		return e.reject("Move", res.ID, fmt.Errorf("%w: %s is not a room of %s",
			griderrors.ErrUnknownRoom, req.TargetRoomNumber, req.TargetRoomID))
	}
	if req.TargetRoomNumber != source && res.Occupies(req.TargetRoomNumber) {
		return e.reject("Move", res.ID, fmt.Errorf("%w: reservation %s already holds room %s",
			griderrors.ErrReservationConflict, res.ID, req.TargetRoomNumber))
	}

	nights := res.Nights()
	moved := res.Clone()
	moved.CheckIn = target
	moved.CheckOut = dates.AddDays(target, nights)
	moved.TotalNights = nights
	if allocation < 0 {
		moved.RoomID = req.TargetRoomID
		moved.RoomNumber = req.TargetRoomNumber
	} else {
		moved.Allocations[allocation].RoomID = req.TargetRoomID
		moved.Allocations[allocation].RoomNumber = req.TargetRoomNumber
	}

	roomChanged := req.TargetRoomNumber != source
	dateChanged := !moved.CheckIn.Equal(dates.Normalize(res.CheckIn))

	// A room-only move leaves the other rooms' nights untouched.
	units := unitsOf(moved)
	if !dateChanged {
		units = []conflict.Unit{{RoomID: req.TargetRoomID, RoomNumber: req.TargetRoomNumber}}
	}

	release, err := e.lockRooms(ctx, roomNumbersOf(units))
	if err != nil {
		return e.reject("Move", res.ID, err)
	}
	defer release()

	err = e.detector.Check(e.Index(), conflict.Candidate{
		ReservationID: res.ID,
		SourceRoomID:  sourceRoomID,
		TargetRoomID:  req.TargetRoomID,
		Units:         units,
		CheckIn:       moved.CheckIn,
		CheckOut:      moved.CheckOut,
	})
	if err != nil {
		return e.reject("Move", res.ID, err)
	}

	update := placementUpdate(moved, allocation >= 0)
	if err := e.store.UpdateReservation(ctx, res.ID, update); err != nil {
		return e.reject("Move", res.ID, fmt.Errorf("%w: %v", griderrors.ErrPersistence, err))
	}

	prior := model.SnapshotOf(res, e.clock.Now())
	e.session(req.Operator).history.Record(prior)
	e.afterReservationCommit(ctx, moved)

	change := changeKind(roomChanged, dateChanged)
	e.cfg.Log.Info("Reservation moved",
		"reservation_id", res.ID,
		"operator", req.Operator,
		"change", change,
		"from_room_number", source,
		"to_room_number", req.TargetRoomNumber,
		"check_in", dates.Key(moved.CheckIn),
		"check_out", dates.Key(moved.CheckOut),
	)
	e.publish(ctx, &model.GridEvent{
		Type:          model.EventReservationMoved,
		ReservationID: res.ID,
		Reservation:   moved,
		Prior:         prior,
	})

	return Outcome{
		Status:      StatusAccepted,
		Message:     moveSummary(change, moved, req.TargetRoomNumber),
		Change:      change,
		Reservation: moved,
		Nights:      nights,
	}
}

func placementUpdate(r *model.Reservation, withAllocations bool) *model.ReservationUpdate {
	roomID := r.RoomID
	roomNumber := r.RoomNumber
	checkIn := r.CheckIn
	checkOut := r.CheckOut
	nights := dates.DaysBetween(checkIn, checkOut)
	u := &model.ReservationUpdate{
		RoomID:      &roomID,
		RoomNumber:  &roomNumber,
		CheckIn:     &checkIn,
		CheckOut:    &checkOut,
		TotalNights: &nights,
	}
	if withAllocations {
		allocs := make([]model.SubAllocation, len(r.Allocations))
		copy(allocs, r.Allocations)
		u.Allocations = &allocs
	}
	return u
}

func changeKind(roomChanged, dateChanged bool) ChangeKind {
	switch {
	case roomChanged && dateChanged:
		return ChangeBoth
	case roomChanged:
		return ChangeRoom
	default:
		return ChangeDate
	}
}

func moveSummary(kind ChangeKind, r *model.Reservation, roomNumber string) string {
	switch kind {
	case ChangeRoom:
		return fmt.Sprintf("Moved to room %s", roomNumber)
	case ChangeDate:
		return fmt.Sprintf("Moved to %s - %s (%d nights)", dates.Key(r.CheckIn), dates.Key(r.CheckOut), r.TotalNights)
	default:
		return fmt.Sprintf("Moved to room %s, %s - %s (%d nights)", roomNumber, dates.Key(r.CheckIn), dates.Key(r.CheckOut), r.TotalNights)
	}
}
