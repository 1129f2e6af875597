package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"roomgrid/internal/grid/conflict"
	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/pkg/dates"
	"roomgrid/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := dates.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestCheckPlacement(t *testing.T) {
	moved := &model.Reservation{
		ID:          "r1",
		RoomID:      "deluxe",
		RoomNumber:  "101",
		Allocations: []model.SubAllocation{{RoomID: "deluxe", RoomNumber: "102"}},
		CheckIn:     mustDay(t, "2024-06-10"),
		CheckOut:    mustDay(t, "2024-06-13"),
		Status:      model.StatusConfirmed,
	}

	tests := []struct {
		name    string
		others  []*model.Reservation
		blocked []*model.BlockedDate
		wantErr bool
	}{
		{
			name: "free",
		},
		{
			name: "adjacent stay on the primary room",
			others: []*model.Reservation{
				{ID: "r2", RoomID: "deluxe", RoomNumber: "101", CheckIn: mustDay(t, "2024-06-13"), CheckOut: mustDay(t, "2024-06-15"), Status: model.StatusConfirmed},
			},
		},
		{
			name: "overlap on the sub-allocation",
			others: []*model.Reservation{
				{ID: "r2", RoomID: "deluxe", RoomNumber: "102", CheckIn: mustDay(t, "2024-06-12"), CheckOut: mustDay(t, "2024-06-14"), Status: model.StatusConfirmed},
			},
			wantErr: true,
		},
		{
			name: "the reservation itself is ignored",
			others: []*model.Reservation{
				{ID: "r1", RoomID: "deluxe", RoomNumber: "101", CheckIn: mustDay(t, "2024-06-01"), CheckOut: mustDay(t, "2024-06-30"), Status: model.StatusConfirmed},
			},
		},
		{
			name: "blocked night",
			blocked: []*model.BlockedDate{
				{RoomID: "deluxe", RoomNumber: "101", Date: mustDay(t, "2024-06-12")},
			},
			wantErr: true,
		},
		{
			name: "block on check-out day",
			blocked: []*model.BlockedDate{
				{RoomID: "deluxe", RoomNumber: "101", Date: mustDay(t, "2024-06-13")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPlacement(moved, conflict.Collections{Reservations: tt.others, Blocked: tt.blocked})
			if tt.wantErr {
				if !errors.Is(err, griderrors.ErrStoreOverlap) {
					t.Fatalf("expected ErrStoreOverlap, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpdateFields(t *testing.T) {
	if got := updateFields(nil); len(got) != 0 {
		t.Fatalf("expected empty set for nil update, got %v", got)
	}

	number := "103"
	in := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)
	nights := 2
	got := updateFields(&model.ReservationUpdate{RoomNumber: &number, CheckIn: &in, TotalNights: &nights})

	want := bson.M{
		"room_number":  "103",
		"check_in":     mustDay(t, "2024-06-10"),
		"total_nights": 2,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d fields, got %v", len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, got[k])
		}
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := withTimeout(context.Background(), time.Second)
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected a deadline")
	}

	parent, parentCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer parentCancel()
	ctx, cancel = withTimeout(parent, time.Hour)
	defer cancel()
	deadline, _ := ctx.Deadline()
	if time.Until(deadline) > time.Second {
		t.Fatalf("expected the shorter parent deadline, got %v", time.Until(deadline))
	}
}

func TestLockID(t *testing.T) {
	if got := lockID("101"); got != "room_lock_101" {
		t.Fatalf("unexpected lock id %q", got)
	}
}
