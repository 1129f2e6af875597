package service

import (
	"context"
	"errors"
	"testing"

	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockDates_ExpandsAndSkipsExisting(t *testing.T) {
	h := newHarness(t)

	added, err := h.engine.BlockDates(context.Background(), &model.BlockRequest{
		RoomID:     "deluxe",
		RoomNumber: "102",
		From:       day("2024-06-15"),
		To:         day("2024-06-18"),
		Reason:     "renovation",
	})

	require.NoError(t, err)
	require.Len(t, added, 2, "06-16 was already blocked")
	assert.Equal(t, "deluxe|102|2024-06-15", added[0].ID)
	assert.Equal(t, "deluxe|102|2024-06-17", added[1].ID)

	idx := h.engine.Index()
	for _, d := range []string{"2024-06-15", "2024-06-16", "2024-06-17"} {
		assert.True(t, idx.IsBlocked("deluxe", "102", day(d)), d)
	}
	assert.False(t, idx.IsBlocked("deluxe", "102", day("2024-06-18")))
	reason, _ := idx.BlockReason("deluxe", "102", day("2024-06-16"))
	assert.Equal(t, "maintenance", reason)
	assert.Equal(t, []string{model.EventBlockedDatesAdded}, h.publisher.types())
}

func TestBlockDates_AllAlreadyBlocked(t *testing.T) {
	h := newHarness(t)

	added, err := h.engine.BlockDates(context.Background(), &model.BlockRequest{
		RoomID: "deluxe", RoomNumber: "102", From: day("2024-06-16"), To: day("2024-06-17"),
	})

	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Zero(t, h.store.blockWrites)
}

func TestBlockDates_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  *model.BlockRequest
		want error
	}{
		{
			name: "past",
			req:  &model.BlockRequest{RoomID: "deluxe", RoomNumber: "101", From: day("2024-05-30"), To: day("2024-06-02")},
			want: griderrors.ErrPastDate,
		},
		{
			name: "room number of another room",
			req:  &model.BlockRequest{RoomID: "villa", RoomNumber: "101", From: day("2024-06-10"), To: day("2024-06-11")},
			want: griderrors.ErrUnknownRoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.engine.BlockDates(context.Background(), tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Zero(t, h.store.blockWrites)
		})
	}

	h := newHarness(t)
	_, err := h.engine.BlockDates(context.Background(), &model.BlockRequest{
		RoomID: "deluxe", RoomNumber: "101", From: day("2024-06-10"), To: day("2024-06-10"),
	})
	assert.Error(t, err, "empty range should fail validation")
}

func TestBlockDates_BlocksMoves(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.BlockDates(context.Background(), &model.BlockRequest{
		RoomID: "deluxe", RoomNumber: "101", From: day("2024-06-16"), To: day("2024-06-17"),
	})
	require.NoError(t, err)

	out := h.engine.Move(context.Background(), moveTo("x", "deluxe", "101", "2024-06-15"))
	assert.Equal(t, "blockConflict", out.Code)
}

func TestUnblockDates(t *testing.T) {
	h := newHarness(t)

	err := h.engine.UnblockDates(context.Background(), []model.BlockedDateKey{
		{RoomID: "deluxe", RoomNumber: "102", Date: day("2024-06-16")},
	})
	require.NoError(t, err)
	assert.False(t, h.engine.Index().IsBlocked("deluxe", "102", day("2024-06-16")))

	out := h.engine.Move(context.Background(), moveTo("x", "deluxe", "102", "2024-06-14"))
	assert.True(t, out.Accepted(), "unexpected outcome %+v", out)
	assert.Equal(t, []string{model.EventBlockedDatesRemoved, model.EventReservationMoved}, h.publisher.types())
}

func TestUnblockDates_StoreFailure(t *testing.T) {
	h := newHarness(t)
	h.store.updateErr = errors.New("timeout")

	err := h.engine.UnblockDates(context.Background(), []model.BlockedDateKey{
		{RoomID: "deluxe", RoomNumber: "102", Date: day("2024-06-16")},
	})

	assert.True(t, errors.Is(err, griderrors.ErrPersistence))
	assert.True(t, h.engine.Index().IsBlocked("deluxe", "102", day("2024-06-16")))
}

func TestBlockDates_ProjectsWhenReloadFails(t *testing.T) {
	h := newHarness(t)
	h.store.listErr = errors.New("read replica down")

	_, err := h.engine.BlockDates(context.Background(), &model.BlockRequest{
		RoomID: "deluxe", RoomNumber: "101", From: day("2024-06-20"), To: day("2024-06-21"),
	})

	require.NoError(t, err)
	assert.True(t, h.engine.Index().IsBlocked("deluxe", "101", day("2024-06-20")))
}

func TestBlockDates_NormalizesInput(t *testing.T) {
	h := newHarness(t)

	added, err := h.engine.BlockDates(context.Background(), &model.BlockRequest{
		RoomID:     " deluxe ",
		RoomNumber: " 101",
		From:       day("2024-06-20"),
		To:         day("2024-06-21"),
		Reason:     "  pipe \t leak ",
	})

	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "deluxe|101|2024-06-20", added[0].ID)
	assert.Equal(t, "pipe leak", added[0].Reason)
}
