package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roomgrid/internal/grid/catalog"
	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/internal/grid/gesture"
	"roomgrid/internal/grid/service"
	"roomgrid/internal/grid/validator"
	"roomgrid/pkg/dates"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/middleware"
	"roomgrid/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGridService struct {
	gridFunc     func(pivot time.Time, rangeLength int, compact bool) service.GridView
	moveFunc     func(ctx context.Context, req service.MoveRequest) service.Outcome
	resizeFunc   func(ctx context.Context, req service.ResizeRequest) service.Outcome
	releaseFunc  func(ctx context.Context, operator string, r gesture.Release) service.Outcome
	undoFunc     func(ctx context.Context, operator string) service.Outcome
	blockFunc    func(ctx context.Context, req *model.BlockRequest) ([]*model.BlockedDate, error)
	unblockFunc  func(ctx context.Context, keys []model.BlockedDateKey) error
	rebuildFunc  func(ctx context.Context) error
	availability bool
	trackers     map[string]*gesture.Tracker
}

func (m *mockGridService) tracker(operator string) *gesture.Tracker {
	if m.trackers == nil {
		m.trackers = make(map[string]*gesture.Tracker)
	}
	t, ok := m.trackers[operator]
	if !ok {
		t = gesture.NewTracker()
		m.trackers[operator] = t
	}
	return t
}

func (m *mockGridService) Grid(pivot time.Time, rangeLength int, compact bool) service.GridView {
	if m.gridFunc != nil {
		return m.gridFunc(pivot, rangeLength, compact)
	}
	return service.GridView{}
}

func (m *mockGridService) Cell(roomID, roomNumber string, day time.Time) service.CellView {
	return service.CellView{RoomID: roomID, RoomNumber: roomNumber, Date: day}
}

func (m *mockGridService) Availability(roomID, roomNumber string, checkIn, checkOut time.Time, excludeID string) bool {
	return m.availability
}

func (m *mockGridService) Move(ctx context.Context, req service.MoveRequest) service.Outcome {
	return m.moveFunc(ctx, req)
}

func (m *mockGridService) Resize(ctx context.Context, req service.ResizeRequest) service.Outcome {
	return m.resizeFunc(ctx, req)
}

func (m *mockGridService) StartDrag(operator, reservationID, roomNumber string) error {
	return m.tracker(operator).StartDrag(reservationID, roomNumber)
}

func (m *mockGridService) GrabEdge(operator, reservationID, roomNumber string, edge gesture.Edge, x, cellWidth float64) error {
	return m.tracker(operator).GrabEdge(reservationID, roomNumber, edge, x, cellWidth)
}

func (m *mockGridService) PointerMove(operator string, x float64) int {
	return m.tracker(operator).PointerMove(x)
}

func (m *mockGridService) Hover(operator string, target *gesture.DropTarget) {
	m.tracker(operator).Hover(target)
}

func (m *mockGridService) PointerUp(ctx context.Context, operator string) service.Outcome {
	return m.releaseFunc(ctx, operator, m.tracker(operator).PointerUp())
}

func (m *mockGridService) CancelGesture(operator string) {
	m.tracker(operator).Cancel()
}

func (m *mockGridService) GestureMode(operator string) gesture.Mode {
	return m.tracker(operator).Mode()
}

func (m *mockGridService) Undo(ctx context.Context, operator string) service.Outcome {
	return m.undoFunc(ctx, operator)
}

func (m *mockGridService) PendingUndo(operator string) (*model.MoveSnapshot, bool) {
	return nil, false
}

func (m *mockGridService) BlockDates(ctx context.Context, req *model.BlockRequest) ([]*model.BlockedDate, error) {
	return m.blockFunc(ctx, req)
}

func (m *mockGridService) UnblockDates(ctx context.Context, keys []model.BlockedDateKey) error {
	return m.unblockFunc(ctx, keys)
}

func (m *mockGridService) Rebuild(ctx context.Context) error {
	if m.rebuildFunc != nil {
		return m.rebuildFunc(ctx)
	}
	return nil
}

func (m *mockGridService) Rooms() *catalog.Catalog {
	return catalog.New([]model.RoomInfo{{RoomType: "Deluxe", RoomID: "deluxe", RoomNumber: "101"}})
}

func (m *mockGridService) Today() time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
}

func newRouter(svc GridService) *httprouter.Router {
	router := httprouter.New()
	NewGridHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	return doAs(t, router, "", method, target, body)
}

func doAs(t *testing.T, router http.Handler, operator, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if operator != "" {
		req.Header.Set(middleware.OperatorIDHeader, operator)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGrid_QueryParameters(t *testing.T) {
	var gotPivot time.Time
	var gotRange int
	var gotCompact bool
	svc := &mockGridService{
		gridFunc: func(pivot time.Time, rangeLength int, compact bool) service.GridView {
			gotPivot, gotRange, gotCompact = pivot, rangeLength, compact
			return service.GridView{}
		},
	}
	router := newRouter(svc)

	tests := []struct {
		name        string
		query       string
		wantCode    int
		wantPivot   string
		wantRange   int
		wantCompact bool
	}{
		{name: "defaults", query: "", wantCode: http.StatusOK, wantPivot: "2024-06-01", wantRange: 7},
		{name: "fortnight compact", query: "?pivot=2024-07-10&range=14&compact=true", wantCode: http.StatusOK, wantPivot: "2024-07-10", wantRange: 14, wantCompact: true},
		{name: "bad pivot", query: "?pivot=10/07/2024", wantCode: http.StatusBadRequest},
		{name: "unsupported range", query: "?range=9", wantCode: http.StatusBadRequest},
		{name: "bad compact", query: "?compact=maybe", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPivot, gotRange, gotCompact = time.Time{}, 0, false
			rec := do(t, router, http.MethodGet, "/api/v1/grid"+tt.query, "")

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			assert.Equal(t, tt.wantPivot, dates.Key(gotPivot))
			assert.Equal(t, tt.wantRange, gotRange)
			assert.Equal(t, tt.wantCompact, gotCompact)
		})
	}
}

func TestMove_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		outcome  service.Outcome
		wantCode int
	}{
		{name: "accepted", outcome: service.Outcome{Status: service.StatusAccepted, Message: "Moved to room 102"}, wantCode: http.StatusOK},
		{name: "ignored", outcome: service.Outcome{Status: service.StatusIgnored, Code: "noOpIgnored", Err: griderrors.ErrNoOp}, wantCode: http.StatusOK},
		{name: "conflict", outcome: service.Outcome{Status: service.StatusRejected, Code: "reservationConflict", Err: griderrors.ErrReservationConflict}, wantCode: http.StatusConflict},
		{name: "not found", outcome: service.Outcome{Status: service.StatusRejected, Code: "reservationNotFound", Err: griderrors.ErrReservationNotFound}, wantCode: http.StatusNotFound},
		{name: "persistence", outcome: service.Outcome{Status: service.StatusFailed, Code: "persistenceFailure", Err: griderrors.ErrPersistence}, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.MoveRequest
			svc := &mockGridService{
				moveFunc: func(ctx context.Context, req service.MoveRequest) service.Outcome {
					got = req
					return tt.outcome
				},
			}
			rec := do(t, newRouter(svc), http.MethodPost, "/api/v1/reservations/r1/move",
				`{"source_room_number":"101","target_room_id":"deluxe","target_room_number":"102","target_date":"2024-06-15"}`)

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, "r1", got.ReservationID)
			assert.Equal(t, "102", got.TargetRoomNumber)
			assert.Equal(t, "2024-06-15", dates.Key(got.TargetDate))

			var body service.Outcome
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.outcome.Status, body.Status)
			assert.Equal(t, tt.outcome.Code, body.Code)
		})
	}
}

func TestMove_BadBody(t *testing.T) {
	svc := &mockGridService{
		moveFunc: func(ctx context.Context, req service.MoveRequest) service.Outcome {
			t.Fatal("service must not be called")
			return service.Outcome{}
		},
	}
	router := newRouter(svc)

	for _, body := range []string{"", "{", `{"target_date":"tomorrow"}`, `{"unexpected":1}`} {
		rec := do(t, router, http.MethodPost, "/api/v1/reservations/r1/move", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestResize_Edge(t *testing.T) {
	var got service.ResizeRequest
	svc := &mockGridService{
		resizeFunc: func(ctx context.Context, req service.ResizeRequest) service.Outcome {
			got = req
			return service.Outcome{Status: service.StatusAccepted, Nights: 4}
		},
	}
	router := newRouter(svc)

	rec := do(t, router, http.MethodPost, "/api/v1/reservations/y/resize", `{"edge":"right","day_delta":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, gesture.EdgeCheckOut, got.Edge)
	assert.Equal(t, 1, got.DayDelta)

	rec = do(t, router, http.MethodPost, "/api/v1/reservations/y/resize", `{"edge":"top","day_delta":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGesture_ResizeFlow(t *testing.T) {
	var gotOperator string
	var got gesture.Release
	svc := &mockGridService{
		releaseFunc: func(ctx context.Context, operator string, r gesture.Release) service.Outcome {
			gotOperator, got = operator, r
			return service.Outcome{Status: service.StatusAccepted, Nights: 4}
		},
	}
	router := newRouter(svc)

	rec := doAs(t, router, "desk-1", http.MethodPost, "/api/v1/grid/gesture/grab",
		`{"reservation_id":"x","source_room_number":"101","edge":"check_out","x":0,"cell_width":80}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"data":{"mode":"resizing","day_delta":0}}`, rec.Body.String())

	rec = doAs(t, router, "desk-1", http.MethodPost, "/api/v1/grid/gesture/pointer", `{"x":100}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"mode":"resizing","day_delta":1}}`, rec.Body.String())

	rec = doAs(t, router, "desk-1", http.MethodPost, "/api/v1/grid/gesture/drag",
		`{"reservation_id":"y","source_room_number":"103"}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "drag is refused while resizing")
	assert.Contains(t, rec.Body.String(), "gestureInProgress")

	rec = doAs(t, router, "desk-1", http.MethodPost, "/api/v1/grid/release", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "desk-1", gotOperator)
	assert.Equal(t, gesture.Resizing, got.Mode)
	assert.Equal(t, gesture.EdgeCheckOut, got.Edge)
	assert.Equal(t, 1, got.DayDelta)
	assert.Equal(t, gesture.Idle, svc.GestureMode("desk-1"))
}

func TestGesture_DragFlow(t *testing.T) {
	var got gesture.Release
	svc := &mockGridService{
		releaseFunc: func(ctx context.Context, operator string, r gesture.Release) service.Outcome {
			got = r
			return service.Outcome{Status: service.StatusAccepted}
		},
	}
	router := newRouter(svc)

	rec := doAs(t, router, "desk-2", http.MethodPost, "/api/v1/grid/gesture/drag",
		`{"reservation_id":"x","source_room_number":"101"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doAs(t, router, "desk-2", http.MethodPost, "/api/v1/grid/gesture/hover",
		`{"target":{"room_id":"deluxe","room_number":"102","date":"20-06-2024"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doAs(t, router, "desk-2", http.MethodPost, "/api/v1/grid/gesture/hover",
		`{"target":{"room_id":"deluxe","room_number":"102","date":"2024-06-20"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doAs(t, router, "desk-2", http.MethodPost, "/api/v1/grid/release", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, gesture.Dragging, got.Mode)
	require.NotNil(t, got.Target)
	assert.Equal(t, "102", got.Target.RoomNumber)
	assert.Equal(t, "2024-06-20", dates.Key(got.Target.Date))
}

func TestGesture_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "unknown edge", body: `{"reservation_id":"x","edge":"top","x":0,"cell_width":80}`, wantCode: http.StatusBadRequest},
		{name: "zero cell width", body: `{"reservation_id":"x","edge":"check_in","x":0,"cell_width":0}`, wantCode: http.StatusBadRequest},
		{name: "unknown field", body: `{"reservation_id":"x","edge":"check_in","delta":1}`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockGridService{}
			rec := doAs(t, newRouter(svc), "desk-1", http.MethodPost, "/api/v1/grid/gesture/grab", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, gesture.Idle, svc.GestureMode("desk-1"))
		})
	}
}

func TestGesture_Cancel(t *testing.T) {
	svc := &mockGridService{}
	router := newRouter(svc)

	rec := doAs(t, router, "desk-1", http.MethodPost, "/api/v1/grid/gesture/drag", `{"reservation_id":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, gesture.Dragging, svc.GestureMode("desk-1"))

	rec = doAs(t, router, "desk-1", http.MethodDelete, "/api/v1/grid/gesture", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, gesture.Idle, svc.GestureMode("desk-1"))
}

func TestUndo(t *testing.T) {
	var gotOperator string
	svc := &mockGridService{
		undoFunc: func(ctx context.Context, operator string) service.Outcome {
			gotOperator = operator
			return service.Outcome{Status: service.StatusRejected, Code: "undoConflict", Err: griderrors.ErrUndoConflict}
		},
	}

	rec := doAs(t, newRouter(svc), "desk-1", http.MethodPost, "/api/v1/grid/undo", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "desk-1", gotOperator)

	rec = do(t, newRouter(svc), http.MethodGet, "/api/v1/grid/undo", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"pending":false}}`, rec.Body.String())
}

func TestBlock_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "validation", err: validator.ValidationErrors{{Field: "To", Message: "To must be after From"}}, wantCode: http.StatusUnprocessableEntity, wantBody: "To must be after From"},
		{name: "past date", err: fmt.Errorf("%w: 2024-05-01", griderrors.ErrPastDate), wantCode: http.StatusConflict, wantBody: "pastDate"},
		{name: "store down", err: fmt.Errorf("%w: timeout", griderrors.ErrPersistence), wantCode: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockGridService{
				blockFunc: func(ctx context.Context, req *model.BlockRequest) ([]*model.BlockedDate, error) {
					return nil, tt.err
				},
			}
			rec := do(t, newRouter(svc), http.MethodPost, "/api/v1/blocked-dates",
				`{"room_id":"deluxe","room_number":"101","from":"2024-06-10","to":"2024-06-12"}`)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			assert.NotContains(t, rec.Body.String(), "boom")
		})
	}
}

func TestBlock_Created(t *testing.T) {
	svc := &mockGridService{
		blockFunc: func(ctx context.Context, req *model.BlockRequest) ([]*model.BlockedDate, error) {
			assert.Equal(t, "2024-06-10", dates.Key(req.From))
			return nil, nil
		},
	}

	rec := do(t, newRouter(svc), http.MethodPost, "/api/v1/blocked-dates",
		`{"room_id":"deluxe","room_number":"101","from":"2024-06-10","to":"2024-06-12","reason":"paint"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestUnblock(t *testing.T) {
	var got []model.BlockedDateKey
	svc := &mockGridService{
		unblockFunc: func(ctx context.Context, keys []model.BlockedDateKey) error {
			got = keys
			return nil
		},
	}

	rec := do(t, newRouter(svc), http.MethodDelete, "/api/v1/blocked-dates",
		`{"keys":[{"room_id":"deluxe","room_number":"102","date":"2024-06-16"}]}`)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-06-16", dates.Key(got[0].Date))
}

func TestAvailability(t *testing.T) {
	router := newRouter(&mockGridService{availability: true})

	rec := do(t, router, http.MethodGet, "/api/v1/grid/availability?room_id=deluxe&room_number=101&check_in=2024-06-10&check_out=2024-06-12", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"available":true}}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/v1/grid/availability?room_id=deluxe&room_number=101&check_in=2024-06-12&check_out=2024-06-12", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRebuild_Failure(t *testing.T) {
	svc := &mockGridService{rebuildFunc: func(ctx context.Context) error { return errors.New("timeout") }}

	rec := do(t, newRouter(svc), http.MethodPost, "/api/v1/grid/rebuild", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
