package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"roomgrid/internal/grid/catalog"
	"roomgrid/internal/grid/gesture"
	"roomgrid/internal/grid/service"
	"roomgrid/internal/grid/window"
	"roomgrid/pkg/dates"
	apperrors "roomgrid/pkg/errors"
	httputil "roomgrid/pkg/http"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/middleware"
	"roomgrid/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// GridService is the engine as seen by the HTTP layer.
type GridService interface {
	Grid(pivot time.Time, rangeLength int, compact bool) service.GridView
	Cell(roomID, roomNumber string, day time.Time) service.CellView
	Availability(roomID, roomNumber string, checkIn, checkOut time.Time, excludeID string) bool
	Move(ctx context.Context, req service.MoveRequest) service.Outcome
	Resize(ctx context.Context, req service.ResizeRequest) service.Outcome
	StartDrag(operator, reservationID, roomNumber string) error
	GrabEdge(operator, reservationID, roomNumber string, edge gesture.Edge, x, cellWidth float64) error
	PointerMove(operator string, x float64) int
	Hover(operator string, target *gesture.DropTarget)
	PointerUp(ctx context.Context, operator string) service.Outcome
	CancelGesture(operator string)
	GestureMode(operator string) gesture.Mode
	Undo(ctx context.Context, operator string) service.Outcome
	PendingUndo(operator string) (*model.MoveSnapshot, bool)
	BlockDates(ctx context.Context, req *model.BlockRequest) ([]*model.BlockedDate, error)
	UnblockDates(ctx context.Context, keys []model.BlockedDateKey) error
	Rebuild(ctx context.Context) error
	Rooms() *catalog.Catalog
	Today() time.Time
}

type GridHandler struct {
	service GridService
	log     *logger.Logger
}

func NewGridHandler(service GridService, log *logger.Logger) *GridHandler {
	return &GridHandler{
		service: service,
		log:     log,
	}
}

type MoveBody struct {
	SourceRoomNumber string `json:"source_room_number"`
	TargetRoomID     string `json:"target_room_id"`
	TargetRoomNumber string `json:"target_room_number"`
	TargetDate       string `json:"target_date"`
}

type ResizeBody struct {
	Edge     string `json:"edge"`
	DayDelta int    `json:"day_delta"`
}

type DragBody struct {
	ReservationID    string `json:"reservation_id"`
	SourceRoomNumber string `json:"source_room_number"`
}

// GrabBody grabs a bar edge. X and CellWidth are in the client's pixels.
type GrabBody struct {
	ReservationID    string  `json:"reservation_id"`
	SourceRoomNumber string  `json:"source_room_number"`
	Edge             string  `json:"edge"`
	X                float64 `json:"x"`
	CellWidth        float64 `json:"cell_width"`
}

type PointerBody struct {
	X float64 `json:"x"`
}

// HoverBody names the cell under a dragged bar. A null target means the
// pointer left the grid.
type HoverBody struct {
	Target *TargetBody `json:"target"`
}

type GestureState struct {
	Mode     string `json:"mode"`
	DayDelta int    `json:"day_delta"`
}

type TargetBody struct {
	RoomID     string `json:"room_id"`
	RoomNumber string `json:"room_number"`
	Date       string `json:"date"`
}

type BlockBody struct {
	RoomID     string `json:"room_id"`
	RoomNumber string `json:"room_number"`
	From       string `json:"from"`
	To         string `json:"to"`
	Reason     string `json:"reason,omitempty"`
}

type UnblockBody struct {
	Keys []struct {
		RoomID     string `json:"room_id"`
		RoomNumber string `json:"room_number"`
		Date       string `json:"date"`
	} `json:"keys"`
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

type UndoStatus struct {
	Pending  bool                `json:"pending"`
	Snapshot *model.MoveSnapshot `json:"snapshot,omitempty"`
}

func (h *GridHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, toAppError(err)); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *GridHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *GridHandler) writeOutcome(w http.ResponseWriter, handler string, o service.Outcome) {
	if err := httputil.WriteJSON(w, outcomeStatus(o), o); err != nil {
		h.log.Error("failed to write outcome", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func parseDate(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, apperrors.InvalidInput(name + " is required")
	}
	t, err := dates.Parse(s)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + name + ", must be YYYY-MM-DD: " + s)
	}
	return t, nil
}

func operatorOf(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(middleware.OperatorIDHeader))
}

func (h *GridHandler) Grid(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	pivot, ok, err := httputil.QueryDate(r, "pivot")
	if err != nil {
		h.writeError(w, "Grid", err)
		return
	}
	if !ok {
		pivot = h.service.Today()
	}
	rangeLength, err := httputil.QueryInt(r, "range", window.Week)
	if err != nil {
		h.writeError(w, "Grid", err)
		return
	}
	if !window.Supported(rangeLength) {
		h.writeError(w, "Grid", apperrors.InvalidInput("range must be 7, 14 or 30"))
		return
	}
	compact, err := httputil.QueryBool(r, "compact")
	if err != nil {
		h.writeError(w, "Grid", err)
		return
	}

	h.writeSuccess(w, "Grid", h.service.Grid(pivot, rangeLength, compact))
}

func (h *GridHandler) Cell(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	roomID, roomNumber := q.Get("room_id"), q.Get("room_number")
	if roomID == "" || roomNumber == "" {
		h.writeError(w, "Cell", apperrors.InvalidInput("room_id and room_number are required"))
		return
	}
	day, err := parseDate("date", q.Get("date"))
	if err != nil {
		h.writeError(w, "Cell", err)
		return
	}

	h.writeSuccess(w, "Cell", h.service.Cell(roomID, roomNumber, day))
}

func (h *GridHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	roomID, roomNumber := q.Get("room_id"), q.Get("room_number")
	if roomID == "" || roomNumber == "" {
		h.writeError(w, "Availability", apperrors.InvalidInput("room_id and room_number are required"))
		return
	}
	checkIn, err := parseDate("check_in", q.Get("check_in"))
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	checkOut, err := parseDate("check_out", q.Get("check_out"))
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	if !checkOut.After(checkIn) {
		h.writeError(w, "Availability", apperrors.InvalidInput("check_out must be after check_in"))
		return
	}

	available := h.service.Availability(roomID, roomNumber, checkIn, checkOut, q.Get("exclude"))
	h.writeSuccess(w, "Availability", AvailabilityResponse{Available: available})
}

func (h *GridHandler) Rooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.writeSuccess(w, "Rooms", h.service.Rooms().Rooms())
}

func (h *GridHandler) Move(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body MoveBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "Move", err)
		return
	}
	target, err := parseDate("target_date", body.TargetDate)
	if err != nil {
		h.writeError(w, "Move", err)
		return
	}

	out := h.service.Move(r.Context(), service.MoveRequest{
		Operator:         operatorOf(r),
		ReservationID:    ps.ByName("id"),
		SourceRoomNumber: body.SourceRoomNumber,
		TargetRoomID:     body.TargetRoomID,
		TargetRoomNumber: body.TargetRoomNumber,
		TargetDate:       target,
	})
	h.writeOutcome(w, "Move", out)
}

func (h *GridHandler) Resize(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body ResizeBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "Resize", err)
		return
	}
	edge, ok := gesture.ParseEdge(body.Edge)
	if !ok {
		h.writeError(w, "Resize", apperrors.InvalidInput("edge must be check_in or check_out"))
		return
	}

	out := h.service.Resize(r.Context(), service.ResizeRequest{
		Operator:      operatorOf(r),
		ReservationID: ps.ByName("id"),
		Edge:          edge,
		DayDelta:      body.DayDelta,
	})
	h.writeOutcome(w, "Resize", out)
}

func (h *GridHandler) StartDrag(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body DragBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "StartDrag", err)
		return
	}
	operator := operatorOf(r)
	if err := h.service.StartDrag(operator, body.ReservationID, body.SourceRoomNumber); err != nil {
		h.writeError(w, "StartDrag", err)
		return
	}
	h.writeSuccess(w, "StartDrag", GestureState{Mode: h.service.GestureMode(operator).String()})
}

func (h *GridHandler) GrabEdge(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body GrabBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "GrabEdge", err)
		return
	}
	edge, ok := gesture.ParseEdge(body.Edge)
	if !ok {
		h.writeError(w, "GrabEdge", apperrors.InvalidInput("edge must be check_in or check_out"))
		return
	}
	operator := operatorOf(r)
	if err := h.service.GrabEdge(operator, body.ReservationID, body.SourceRoomNumber, edge, body.X, body.CellWidth); err != nil {
		h.writeError(w, "GrabEdge", err)
		return
	}
	h.writeSuccess(w, "GrabEdge", GestureState{Mode: h.service.GestureMode(operator).String()})
}

func (h *GridHandler) PointerMove(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body PointerBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "PointerMove", err)
		return
	}
	operator := operatorOf(r)
	delta := h.service.PointerMove(operator, body.X)
	h.writeSuccess(w, "PointerMove", GestureState{Mode: h.service.GestureMode(operator).String(), DayDelta: delta})
}

func (h *GridHandler) Hover(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body HoverBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "Hover", err)
		return
	}
	var target *gesture.DropTarget
	if body.Target != nil {
		day, err := parseDate("target.date", body.Target.Date)
		if err != nil {
			h.writeError(w, "Hover", err)
			return
		}
		target = &gesture.DropTarget{RoomID: body.Target.RoomID, RoomNumber: body.Target.RoomNumber, Date: day}
	}
	operator := operatorOf(r)
	h.service.Hover(operator, target)
	h.writeSuccess(w, "Hover", GestureState{Mode: h.service.GestureMode(operator).String()})
}

// Release is pointer-up: the engine turns the tracked gesture into a move or
// resize.
func (h *GridHandler) Release(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.writeOutcome(w, "Release", h.service.PointerUp(r.Context(), operatorOf(r)))
}

func (h *GridHandler) CancelGesture(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.service.CancelGesture(operatorOf(r))
	httputil.WriteNoContent(w)
}

func (h *GridHandler) Undo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.writeOutcome(w, "Undo", h.service.Undo(r.Context(), operatorOf(r)))
}

func (h *GridHandler) PendingUndo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap, ok := h.service.PendingUndo(operatorOf(r))
	h.writeSuccess(w, "PendingUndo", UndoStatus{Pending: ok, Snapshot: snap})
}

func (h *GridHandler) Block(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body BlockBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "Block", err)
		return
	}
	from, err := parseDate("from", body.From)
	if err != nil {
		h.writeError(w, "Block", err)
		return
	}
	to, err := parseDate("to", body.To)
	if err != nil {
		h.writeError(w, "Block", err)
		return
	}

	added, err := h.service.BlockDates(r.Context(), &model.BlockRequest{
		RoomID:     body.RoomID,
		RoomNumber: body.RoomNumber,
		From:       from,
		To:         to,
		Reason:     body.Reason,
	})
	if err != nil {
		h.writeError(w, "Block", err)
		return
	}
	if added == nil {
		added = []*model.BlockedDate{}
	}

	if err := httputil.WriteCreated(w, added); err != nil {
		h.log.Error("failed to write created response", "handler", "Block", "operation", "WriteCreated", "error", err)
	}
}

func (h *GridHandler) Unblock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body UnblockBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "Unblock", err)
		return
	}

	keys := make([]model.BlockedDateKey, 0, len(body.Keys))
	for _, k := range body.Keys {
		day, err := parseDate("date", k.Date)
		if err != nil {
			h.writeError(w, "Unblock", err)
			return
		}
		keys = append(keys, model.BlockedDateKey{RoomID: k.RoomID, RoomNumber: k.RoomNumber, Date: day})
	}

	if err := h.service.UnblockDates(r.Context(), keys); err != nil {
		h.writeError(w, "Unblock", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *GridHandler) Rebuild(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.Rebuild(r.Context()); err != nil {
		h.log.Error("Manual rebuild failed", "error", err)
		h.writeError(w, "Rebuild", apperrors.Unavailable("reservation store"))
		return
	}
	httputil.WriteNoContent(w)
}

func (h *GridHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/grid", h.Grid)
	router.GET("/api/v1/grid/cell", h.Cell)
	router.GET("/api/v1/grid/availability", h.Availability)
	router.GET("/api/v1/grid/undo", h.PendingUndo)
	router.POST("/api/v1/grid/undo", h.Undo)
	router.POST("/api/v1/grid/gesture/drag", h.StartDrag)
	router.POST("/api/v1/grid/gesture/grab", h.GrabEdge)
	router.POST("/api/v1/grid/gesture/pointer", h.PointerMove)
	router.POST("/api/v1/grid/gesture/hover", h.Hover)
	router.DELETE("/api/v1/grid/gesture", h.CancelGesture)
	router.POST("/api/v1/grid/release", h.Release)
	router.POST("/api/v1/grid/rebuild", h.Rebuild)
	router.GET("/api/v1/rooms", h.Rooms)
	router.POST("/api/v1/reservations/:id/move", h.Move)
	router.POST("/api/v1/reservations/:id/resize", h.Resize)
	router.POST("/api/v1/blocked-dates", h.Block)
	router.DELETE("/api/v1/blocked-dates", h.Unblock)
}
