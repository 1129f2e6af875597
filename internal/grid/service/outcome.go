package service

import (
	"errors"

	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/pkg/model"
)

type Status string

const (
	StatusAccepted Status = "accepted"
	StatusIgnored  Status = "ignored"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

type ChangeKind string

const (
	ChangeRoom   ChangeKind = "room"
	ChangeDate   ChangeKind = "date"
	ChangeBoth   ChangeKind = "both"
	ChangeResize ChangeKind = "resize"
	ChangeUndo   ChangeKind = "undo"
)

// Outcome is the result of a gesture. Rejections are values, not errors:
// Err carries the sentinel, Code and Message its user-facing form.
type Outcome struct {
	Status      Status             `json:"status"`
	Code        string             `json:"code,omitempty"`
	Message     string             `json:"message,omitempty"`
	Change      ChangeKind         `json:"change,omitempty"`
	Reservation *model.Reservation `json:"reservation,omitempty"`
	Nights      int                `json:"nights,omitempty"`
	Err         error              `json:"-"`
}

func (o Outcome) Accepted() bool {
	return o.Status == StatusAccepted
}

// outcomeOf classifies a rejection error.
func outcomeOf(err error) Outcome {
	status := StatusRejected
	switch {
	case errors.Is(err, griderrors.ErrNoOp),
		errors.Is(err, griderrors.ErrNothingToUndo),
		errors.Is(err, griderrors.ErrUndoInFlight):
		status = StatusIgnored
	case errors.Is(err, griderrors.ErrPersistence):
		status = StatusFailed
	}
	return Outcome{
		Status:  status,
		Code:    griderrors.Code(err),
		Message: griderrors.Message(err),
		Err:     err,
	}
}

func (e *Engine) reject(op, reservationID string, err error) Outcome {
	o := outcomeOf(err)
	switch o.Status {
	case StatusIgnored:
		e.cfg.Log.Debug(op+" ignored", "reservation_id", reservationID, "code", o.Code)
	case StatusFailed:
		e.cfg.Log.Error(op+" failed to persist", "reservation_id", reservationID, "error", err)
	default:
		e.cfg.Log.Warn(op+" rejected", "reservation_id", reservationID, "code", o.Code, "reason", err)
	}
	return o
}
