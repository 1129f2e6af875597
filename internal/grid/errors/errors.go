package errors

import "errors"

var (
	ErrNoOp = errors.New("source and destination are identical")

	ErrPastDate = errors.New("destination date is before today")

	ErrRoomTypeMismatch = errors.New("destination room belongs to a different room type")

	ErrReservationConflict = errors.New("destination overlaps an active reservation")

	ErrBlockConflict = errors.New("destination range intersects a blocked date")

	ErrMinimumDuration = errors.New("stay must be at least one night")

	ErrPersistence = errors.New("reservation store rejected the update")

	ErrReservationNotFound = errors.New("reservation not found")

	ErrUnknownRoom = errors.New("room number does not belong to room")

	ErrRoomLocked = errors.New("room number is being changed by another request")

	ErrNothingToUndo = errors.New("nothing to undo")

	ErrUndoInFlight = errors.New("undo already in progress")

	ErrUndoConflict = errors.New("prior slot is no longer free")

	ErrInvalidReservation = errors.New("reservation violates its invariants")

	ErrGestureInProgress = errors.New("another drag or resize is in progress")

	// ErrInvalidGesture marks malformed pointer input: an unknown edge or a
	// non-positive cell width.
	ErrInvalidGesture = errors.New("gesture input is malformed")

	// ErrStoreOverlap is returned by the store's own guard when a placement
	// slipped past a stale index. Callers see it as a persistence failure.
	ErrStoreOverlap = errors.New("store rejected an overlapping placement")
)

type rejection struct {
	err     error
	code    string
	message string
}

var rejections = []rejection{
	{ErrNoOp, "noOpIgnored", ""},
	{ErrPastDate, "pastDate", "Failed: destination date is in the past"},
	{ErrRoomTypeMismatch, "roomTypeMismatch", "Failed: destination room is a different room type"},
	{ErrReservationConflict, "reservationConflict", "Failed: destination dates are already booked"},
	{ErrBlockConflict, "blockConflict", "Failed: destination date is blocked"},
	{ErrMinimumDuration, "minimumDurationViolated", "Failed: a stay needs at least one night"},
	{ErrPersistence, "persistenceFailure", "Failed to save the change"},
	{ErrReservationNotFound, "reservationNotFound", "Failed: reservation not found"},
	{ErrUnknownRoom, "unknownRoom", "Failed: unknown room number"},
	{ErrRoomLocked, "roomLocked", "Failed: room is being updated, try again"},
	{ErrNothingToUndo, "nothingToUndo", "Nothing to undo"},
	{ErrUndoInFlight, "undoInFlight", "Undo already in progress"},
	{ErrUndoConflict, "undoConflict", "Cannot undo: the previous slot has been taken"},
	{ErrInvalidReservation, "invalidReservation", "Failed: reservation data is invalid"},
	{ErrGestureInProgress, "gestureInProgress", "Failed: finish the current drag or resize first"},
	{ErrInvalidGesture, "invalidGesture", "Failed: invalid gesture input"},
}

// Code returns the stable rejection code for err, or "" when err is not a
// scheduling rejection.
func Code(err error) string {
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			return r.code
		}
	}
	return ""
}

// Message returns the short user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			if errors.Is(err, ErrPersistence) {
				return r.message + ": " + err.Error()
			}
			return r.message
		}
	}
	return err.Error()
}
