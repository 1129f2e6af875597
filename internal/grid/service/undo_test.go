package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"roomgrid/internal/grid/gesture"
	"roomgrid/pkg/dates"
	"roomgrid/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndo_RestoresPriorPlacement(t *testing.T) {
	h := newHarness(t)
	before := h.store.get("x")

	out := h.engine.Move(context.Background(), moveTo("x", "deluxe", "102", "2024-06-23"))
	require.True(t, out.Accepted(), "unexpected outcome %+v", out)
	assert.Equal(t, ChangeBoth, out.Change)

	undo := h.engine.Undo(context.Background(), "")
	require.True(t, undo.Accepted(), "unexpected outcome %+v", undo)

	after := h.store.get("x")
	assert.Equal(t, before.RoomID, after.RoomID)
	assert.Equal(t, before.RoomNumber, after.RoomNumber)
	assert.Equal(t, dates.Key(before.CheckIn), dates.Key(after.CheckIn))
	assert.Equal(t, dates.Key(before.CheckOut), dates.Key(after.CheckOut))
	assert.Equal(t, before.TotalNights, after.TotalNights)
	assert.Equal(t, "x", h.engine.Index().ReservationAt("101", day("2024-06-10")).ID)

	again := h.engine.Undo(context.Background(), "")
	assert.Equal(t, StatusIgnored, again.Status)
	assert.Equal(t, "nothingToUndo", again.Code)
	assert.Equal(t, 2, h.store.updateCount())
	assert.Equal(t, []string{model.EventReservationMoved, model.EventReservationMoveUndone}, h.publisher.types())
}

func TestUndo_RestoresSubAllocation(t *testing.T) {
	h := newHarness(t)

	out := h.engine.Move(context.Background(), MoveRequest{
		ReservationID:    "g",
		SourceRoomNumber: "102",
		TargetRoomID:     "deluxe-sea",
		TargetRoomNumber: "103",
		TargetDate:       day("2024-06-20"),
	})
	require.True(t, out.Accepted(), "unexpected outcome %+v", out)

	require.True(t, h.engine.Undo(context.Background(), "").Accepted())
	stored := h.store.get("g")
	require.Len(t, stored.Allocations, 1)
	assert.Equal(t, "102", stored.Allocations[0].RoomNumber)
	assert.Equal(t, "deluxe", stored.Allocations[0].RoomID)
}

func TestUndo_AfterWindowDoesNothing(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.engine.Move(context.Background(), moveTo("x", "deluxe", "101", "2024-06-15")).Accepted())
	h.clock.Advance(10*time.Second + time.Millisecond)

	out := h.engine.Undo(context.Background(), "")

	assert.Equal(t, StatusIgnored, out.Status)
	assert.Equal(t, "nothingToUndo", out.Code)
	assert.Equal(t, 1, h.store.updateCount())
	assert.Equal(t, "2024-06-15", dates.Key(h.store.get("x").CheckIn))
}

func TestUndo_WithinWindow(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.engine.Move(context.Background(), moveTo("x", "deluxe", "101", "2024-06-15")).Accepted())
	h.clock.Advance(9 * time.Second)

	assert.True(t, h.engine.Undo(context.Background(), "").Accepted())
}

func TestUndo_OnlyLatestChange(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.engine.Move(context.Background(), moveTo("x", "deluxe", "101", "2024-06-15")).Accepted())
	require.True(t, h.engine.Resize(context.Background(), ResizeRequest{ReservationID: "y", Edge: gesture.EdgeCheckOut, DayDelta: 1}).Accepted())

	require.True(t, h.engine.Undo(context.Background(), "").Accepted())
	assert.Equal(t, "2024-07-04", dates.Key(h.store.get("y").CheckOut), "resize undone")
	assert.Equal(t, "2024-06-15", dates.Key(h.store.get("x").CheckIn), "earlier move stays")

	assert.Equal(t, "nothingToUndo", h.engine.Undo(context.Background(), "").Code)
}

func TestUndo_PriorSlotTaken(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.engine.Move(context.Background(), moveTo("x", "deluxe", "102", "2024-06-23")).Accepted())

	// another operator books x's old nights before the undo
	h.store.put(reservation("walkin", "deluxe", "101", "2024-06-11", "2024-06-12"))
	require.NoError(t, h.engine.Rebuild(context.Background()))

	out := h.engine.Undo(context.Background(), "")

	assert.Equal(t, StatusRejected, out.Status)
	assert.Equal(t, "undoConflict", out.Code)
	assert.Equal(t, "102", h.store.get("x").RoomNumber)
	assertNoDoubleBooking(t, h.store)
}

func TestUndo_FailedRestoreCanRetry(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.engine.Move(context.Background(), moveTo("x", "deluxe", "101", "2024-06-15")).Accepted())

	h.store.mu.Lock()
	h.store.updateErr = errors.New("primary stepped down")
	h.store.mu.Unlock()

	out := h.engine.Undo(context.Background(), "")
	assert.Equal(t, StatusFailed, out.Status)
	assert.Contains(t, out.Message, "primary stepped down")

	h.store.mu.Lock()
	h.store.updateErr = nil
	h.store.mu.Unlock()

	assert.True(t, h.engine.Undo(context.Background(), "").Accepted())
	assert.Equal(t, "2024-06-10", dates.Key(h.store.get("x").CheckIn))
}
