package service

import (
	"context"
	"fmt"

	"roomgrid/internal/grid/conflict"
	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/pkg/dates"
	"roomgrid/pkg/model"
)

// Undo restores the operator's most recent move or resize if it is still
// inside the undo window. Only one undo per operator runs at a time; the
// rest are ignored.
func (e *Engine) Undo(ctx context.Context, operator string) Outcome {
	var restored *model.Reservation
	_, err := e.session(operator).history.Undo(ctx, func(ctx context.Context, s *model.MoveSnapshot) error {
		r, err := e.restore(ctx, s)
		if err != nil {
			return err
		}
		restored = r
		return nil
	})
	if err != nil {
		return e.reject("Undo", "", err)
	}

	e.cfg.Log.Info("Move undone",
		"reservation_id", restored.ID,
		"operator", operator,
		"room_number", restored.RoomNumber,
		"check_in", dates.Key(restored.CheckIn),
		"check_out", dates.Key(restored.CheckOut),
	)
	return Outcome{
		Status:      StatusAccepted,
		Message:     "Change undone",
		Change:      ChangeUndo,
		Reservation: restored,
		Nights:      restored.TotalNights,
	}
}

// PendingUndo reports the snapshot the operator's Undo would restore.
func (e *Engine) PendingUndo(operator string) (*model.MoveSnapshot, bool) {
	return e.session(operator).history.Pending()
}

func (e *Engine) restore(ctx context.Context, s *model.MoveSnapshot) (*model.Reservation, error) {
	current, ok := e.Index().Reservation(s.ReservationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", griderrors.ErrReservationNotFound, s.ReservationID)
	}

	update := s.Restore()
	restored := current.Apply(update)

	units := unitsOf(restored)
	release, err := e.lockRooms(ctx, roomNumbersOf(units))
	if err != nil {
		return nil, err
	}
	defer release()

	err = e.detector.Check(e.Index(), conflict.Candidate{
		ReservationID: s.ReservationID,
		Units:         units,
		CheckIn:       restored.CheckIn,
		CheckOut:      restored.CheckOut,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", griderrors.ErrUndoConflict, err)
	}

	if err := e.store.UpdateReservation(ctx, s.ReservationID, update); err != nil {
		return nil, fmt.Errorf("%w: %v", griderrors.ErrPersistence, err)
	}

	e.afterReservationCommit(ctx, restored)
	e.publish(ctx, &model.GridEvent{
		Type:          model.EventReservationMoveUndone,
		ReservationID: s.ReservationID,
		Reservation:   restored,
		Prior:         s,
	})
	return restored, nil
}
