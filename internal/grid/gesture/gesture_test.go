package gesture

import (
	"errors"
	"testing"

	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/pkg/dates"
)

func TestResize_PreviewRounds(t *testing.T) {
	tr := NewTracker()
	if err := tr.GrabEdge("y", "103", EdgeCheckOut, 100, 80); err != nil {
		t.Fatalf("GrabEdge: %v", err)
	}

	tests := []struct {
		x    float64
		want int
	}{
		{x: 100, want: 0},
		{x: 139, want: 0},
		{x: 140, want: 1},
		{x: 260, want: 2},
		{x: 61, want: 0},
		{x: 20, want: -1},
	}
	for _, tt := range tests {
		if got := tr.PointerMove(tt.x); got != tt.want {
			t.Errorf("PointerMove(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestResize_Release(t *testing.T) {
	tr := NewTracker()
	_ = tr.GrabEdge("y", "103", EdgeCheckOut, 0, 80)
	tr.PointerMove(165)

	r := tr.PointerUp()
	if r.Mode != Resizing || r.Cancelled {
		t.Fatalf("expected a finished resize, got %+v", r)
	}
	if r.DayDelta != 2 || r.Edge != EdgeCheckOut || r.ReservationID != "y" || r.SourceRoomNumber != "103" {
		t.Errorf("unexpected release %+v", r)
	}
	if tr.Mode() != Idle {
		t.Errorf("tracker should be idle after release, got %s", tr.Mode())
	}
}

func TestResize_ZeroDeltaIsCancelled(t *testing.T) {
	tr := NewTracker()
	_ = tr.GrabEdge("y", "103", EdgeCheckIn, 50, 80)
	tr.PointerMove(70)

	if r := tr.PointerUp(); !r.Cancelled {
		t.Errorf("zero delta should cancel, got %+v", r)
	}
}

func TestResizeBlocksDrag(t *testing.T) {
	tr := NewTracker()
	_ = tr.GrabEdge("y", "103", EdgeCheckIn, 0, 80)

	if err := tr.StartDrag("y", "103"); !errors.Is(err, ErrBusy) {
		t.Errorf("drag during resize should be refused, got %v", err)
	}
	if err := tr.GrabEdge("z", "104", EdgeCheckOut, 0, 80); !errors.Is(err, ErrBusy) {
		t.Errorf("second resize should be refused, got %v", err)
	}
}

func TestDragBlocksResize(t *testing.T) {
	tr := NewTracker()
	_ = tr.StartDrag("x", "101")

	if err := tr.GrabEdge("x", "101", EdgeCheckOut, 0, 80); !errors.Is(err, ErrBusy) {
		t.Errorf("resize during drag should be refused, got %v", err)
	}
	if got := tr.PointerMove(500); got != 0 {
		t.Errorf("drag has no day delta preview, got %d", got)
	}
}

func TestDrag_ReleaseWithoutTargetCancels(t *testing.T) {
	tr := NewTracker()
	_ = tr.StartDrag("x", "101")
	d, _ := dates.Parse("2024-06-15")
	tr.Hover(&DropTarget{RoomID: "deluxe", RoomNumber: "101", Date: d})
	tr.Hover(nil)

	if r := tr.PointerUp(); !r.Cancelled || r.Mode != Dragging {
		t.Errorf("drag released off-grid should cancel, got %+v", r)
	}
}

func TestDrag_ReleaseOnTarget(t *testing.T) {
	tr := NewTracker()
	_ = tr.StartDrag("x", "101")
	d, _ := dates.Parse("2024-06-15")
	tr.Hover(&DropTarget{RoomID: "deluxe", RoomNumber: "102", Date: d})

	r := tr.PointerUp()
	if r.Cancelled || r.Target == nil || r.Target.RoomNumber != "102" {
		t.Errorf("expected drop on 102, got %+v", r)
	}
}

func TestGrabEdge_InvalidWidth(t *testing.T) {
	tr := NewTracker()
	if err := tr.GrabEdge("y", "103", EdgeCheckIn, 0, 0); !errors.Is(err, ErrInvalidCellWidth) {
		t.Errorf("expected ErrInvalidCellWidth, got %v", err)
	}
	if tr.Mode() != Idle {
		t.Error("failed grab must leave the tracker idle")
	}
}

func TestGrabEdge_InvalidEdge(t *testing.T) {
	tr := NewTracker()
	err := tr.GrabEdge("y", "103", Edge(0), 0, 80)
	if !errors.Is(err, ErrInvalidEdge) || !errors.Is(err, griderrors.ErrInvalidGesture) {
		t.Errorf("expected ErrInvalidEdge, got %v", err)
	}
	if tr.Mode() != Idle {
		t.Error("failed grab must leave the tracker idle")
	}
}

func TestApplyDelta(t *testing.T) {
	in, _ := dates.Parse("2024-07-01")
	out, _ := dates.Parse("2024-07-04")

	newIn, newOut := ApplyDelta(in, out, EdgeCheckOut, 2)
	if dates.Key(newIn) != "2024-07-01" || dates.Key(newOut) != "2024-07-06" {
		t.Errorf("right edge +2 = %s..%s", dates.Key(newIn), dates.Key(newOut))
	}

	newIn, newOut = ApplyDelta(in, out, EdgeCheckIn, -1)
	if dates.Key(newIn) != "2024-06-30" || dates.Key(newOut) != "2024-07-04" {
		t.Errorf("left edge -1 = %s..%s", dates.Key(newIn), dates.Key(newOut))
	}
}

func TestParseEdge(t *testing.T) {
	if e, ok := ParseEdge("left"); !ok || e != EdgeCheckIn {
		t.Errorf("left should parse to check-in edge")
	}
	if e, ok := ParseEdge("check_out"); !ok || e != EdgeCheckOut {
		t.Errorf("check_out should parse to check-out edge")
	}
	if _, ok := ParseEdge("middle"); ok {
		t.Error("unknown edge should not parse")
	}
}
