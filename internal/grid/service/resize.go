package service

import (
	"context"
	"fmt"

	"roomgrid/internal/grid/conflict"
	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/internal/grid/gesture"
	"roomgrid/pkg/dates"
	"roomgrid/pkg/model"
)

type ResizeRequest struct {
	Operator      string       `json:"-"`
	ReservationID string       `json:"reservation_id"`
	Edge          gesture.Edge `json:"edge"`
	DayDelta      int          `json:"day_delta"`
}

// Resize moves one date edge of a reservation by DayDelta days. The other
// edge and every room assignment stay as they are.
func (e *Engine) Resize(ctx context.Context, req ResizeRequest) Outcome {
	if req.Edge != gesture.EdgeCheckIn && req.Edge != gesture.EdgeCheckOut {
		return e.reject("Resize", req.ReservationID, fmt.Errorf("%w: unknown edge %d", griderrors.ErrInvalidGesture, req.Edge))
	}
	if req.DayDelta == 0 {
		return e.reject("Resize", req.ReservationID, griderrors.ErrNoOp)
	}
	if e.busy(req.Operator, gesture.Dragging) {
		return e.reject("Resize", req.ReservationID, griderrors.ErrGestureInProgress)
	}

	res, ok := e.Index().Reservation(req.ReservationID)
	if !ok {
		return e.reject("Resize", req.ReservationID, griderrors.ErrReservationNotFound)
	}

	checkIn, checkOut := gesture.ApplyDelta(res.CheckIn, res.CheckOut, req.Edge, req.DayDelta)
	if !checkOut.After(checkIn) {
		return e.reject("Resize", res.ID, fmt.Errorf("%w: %s..%s",
			griderrors.ErrMinimumDuration, dates.Key(checkIn), dates.Key(checkOut)))
	}

	resized := res.Clone()
	resized.CheckIn = checkIn
	resized.CheckOut = checkOut
	resized.TotalNights = dates.DaysBetween(checkIn, checkOut)

	units := unitsOf(resized)
	release, err := e.lockRooms(ctx, roomNumbersOf(units))
	if err != nil {
		return e.reject("Resize", res.ID, err)
	}
	defer release()

	err = e.detector.Check(e.Index(), conflict.Candidate{
		ReservationID: res.ID,
		Units:         units,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
	})
	if err != nil {
		return e.reject("Resize", res.ID, err)
	}

	nights := resized.TotalNights
	update := &model.ReservationUpdate{
		CheckIn:     &checkIn,
		CheckOut:    &checkOut,
		TotalNights: &nights,
	}
	if err := e.store.UpdateReservation(ctx, res.ID, update); err != nil {
		return e.reject("Resize", res.ID, fmt.Errorf("%w: %v", griderrors.ErrPersistence, err))
	}

	prior := model.SnapshotOf(res, e.clock.Now())
	e.session(req.Operator).history.Record(prior)
	e.afterReservationCommit(ctx, resized)

	e.cfg.Log.Info("Reservation resized",
		"reservation_id", res.ID,
		"operator", req.Operator,
		"edge", req.Edge.String(),
		"day_delta", req.DayDelta,
		"check_in", dates.Key(checkIn),
		"check_out", dates.Key(checkOut),
		"nights", nights,
	)
	e.publish(ctx, &model.GridEvent{
		Type:          model.EventReservationResized,
		ReservationID: res.ID,
		Reservation:   resized,
		Prior:         prior,
	})

	return Outcome{
		Status:      StatusAccepted,
		Message:     fmt.Sprintf("Stay is now %d nights", nights),
		Change:      ChangeResize,
		Reservation: resized,
		Nights:      nights,
	}
}

// Release dispatches a finished pointer gesture on behalf of operator.
// Cancelled gestures have no side effects.
func (e *Engine) Release(ctx context.Context, operator string, r gesture.Release) Outcome {
	if r.Cancelled {
		return e.reject("Gesture", r.ReservationID, griderrors.ErrNoOp)
	}
	switch r.Mode {
	case gesture.Dragging:
		if r.Target == nil {
			return e.reject("Gesture", r.ReservationID, griderrors.ErrNoOp)
		}
		return e.Move(ctx, MoveRequest{
			Operator:         operator,
			ReservationID:    r.ReservationID,
			SourceRoomNumber: r.SourceRoomNumber,
			TargetRoomID:     r.Target.RoomID,
			TargetRoomNumber: r.Target.RoomNumber,
			TargetDate:       r.Target.Date,
		})
	case gesture.Resizing:
		return e.Resize(ctx, ResizeRequest{
			Operator:      operator,
			ReservationID: r.ReservationID,
			Edge:          r.Edge,
			DayDelta:      r.DayDelta,
		})
	default:
		return e.reject("Gesture", r.ReservationID, griderrors.ErrNoOp)
	}
}
