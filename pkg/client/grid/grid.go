// Package grid is a typed client for the booking grid HTTP API.
package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"roomgrid/pkg/client"
	"roomgrid/pkg/dates"
	"roomgrid/pkg/model"

	"github.com/google/uuid"
)

const (
	OperatorIDHeader     = "X-Operator-ID"
	IdempotencyKeyHeader = "Idempotency-Key"
)

// Outcome mirrors the gesture result returned by move, resize, release and
// undo. Rejections arrive with a non-2xx status and a populated Code.
type Outcome struct {
	Status      string             `json:"status"`
	Code        string             `json:"code,omitempty"`
	Message     string             `json:"message,omitempty"`
	Change      string             `json:"change,omitempty"`
	Reservation *model.Reservation `json:"reservation,omitempty"`
	Nights      int                `json:"nights,omitempty"`
	HTTPStatus  int                `json:"-"`
}

func (o *Outcome) Accepted() bool {
	return o.Status == "accepted"
}

// APIError is returned for responses that are not gesture outcomes.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("grid api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type Client struct {
	http *client.HttpClient
}

// New returns a client acting as operator. The operator id is what the
// server rate-limits on.
func New(baseURL, operator string) *Client {
	hc := client.NewHttpClient(baseURL)
	if operator != "" {
		hc.Headers[OperatorIDHeader] = operator
	}
	return &Client{http: hc}
}

func (c *Client) Move(ctx context.Context, reservationID, sourceRoomNumber, targetRoomID, targetRoomNumber string, targetDate time.Time) (*Outcome, error) {
	body := map[string]string{
		"source_room_number": sourceRoomNumber,
		"target_room_id":     targetRoomID,
		"target_room_number": targetRoomNumber,
		"target_date":        dates.Key(targetDate),
	}
	resp, err := c.http.POST(ctx, "/api/v1/reservations/"+url.PathEscape(reservationID)+"/move", body)
	if err != nil {
		return nil, err
	}
	return decodeOutcome(resp)
}

// Resize sends an idempotency key so a retried request is not applied twice.
func (c *Client) Resize(ctx context.Context, reservationID, edge string, dayDelta int) (*Outcome, error) {
	body := map[string]any{"edge": edge, "day_delta": dayDelta}
	resp, err := c.http.POSTWithHeaders(ctx,
		"/api/v1/reservations/"+url.PathEscape(reservationID)+"/resize",
		body,
		map[string]string{IdempotencyKeyHeader: uuid.NewString()},
	)
	if err != nil {
		return nil, err
	}
	return decodeOutcome(resp)
}

func (c *Client) Undo(ctx context.Context) (*Outcome, error) {
	resp, err := c.http.POST(ctx, "/api/v1/grid/undo", nil)
	if err != nil {
		return nil, err
	}
	return decodeOutcome(resp)
}

func (c *Client) Availability(ctx context.Context, roomID, roomNumber string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	q := url.Values{}
	q.Set("room_id", roomID)
	q.Set("room_number", roomNumber)
	q.Set("check_in", dates.Key(checkIn))
	q.Set("check_out", dates.Key(checkOut))
	if excludeID != "" {
		q.Set("exclude", excludeID)
	}
	var out struct {
		Available bool `json:"available"`
	}
	if err := c.getData(ctx, "/api/v1/grid/availability?"+q.Encode(), &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

// Grid fetches the raw window view; the shape is left to the caller.
func (c *Client) Grid(ctx context.Context, pivot time.Time, rangeLength int, compact bool) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("pivot", dates.Key(pivot))
	q.Set("range", strconv.Itoa(rangeLength))
	q.Set("compact", strconv.FormatBool(compact))
	var out json.RawMessage
	if err := c.getData(ctx, "/api/v1/grid?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Rooms(ctx context.Context) ([]model.RoomInfo, error) {
	var rooms []model.RoomInfo
	if err := c.getData(ctx, "/api/v1/rooms", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) BlockDates(ctx context.Context, roomID, roomNumber string, from, to time.Time, reason string) ([]*model.BlockedDate, error) {
	body := map[string]string{
		"room_id":     roomID,
		"room_number": roomNumber,
		"from":        dates.Key(from),
		"to":          dates.Key(to),
		"reason":      reason,
	}
	resp, err := c.http.POST(ctx, "/api/v1/blocked-dates", body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}
	var wrapper struct {
		Data []*model.BlockedDate `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, fmt.Errorf("could not decode blocked dates: %w", err)
	}
	return wrapper.Data, nil
}

func (c *Client) UnblockDates(ctx context.Context, keys []model.BlockedDateKey) error {
	type key struct {
		RoomID     string `json:"room_id"`
		RoomNumber string `json:"room_number"`
		Date       string `json:"date"`
	}
	body := struct {
		Keys []key `json:"keys"`
	}{Keys: make([]key, 0, len(keys))}
	for _, k := range keys {
		body.Keys = append(body.Keys, key{RoomID: k.RoomID, RoomNumber: k.RoomNumber, Date: dates.Key(k.Date)})
	}

	resp, err := c.http.DELETE(ctx, "/api/v1/blocked-dates", body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

func (c *Client) Rebuild(ctx context.Context) error {
	resp, err := c.http.POST(ctx, "/api/v1/grid/rebuild", nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

func (c *Client) getData(ctx context.Context, path string, target any) error {
	resp, err := c.http.GET(ctx, path)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	wrapper := struct {
		Data any `json:"data"`
	}{Data: target}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return fmt.Errorf("could not decode %s: %w", path, err)
	}
	return nil
}

// decodeOutcome accepts any status that carries an outcome body; plain
// error bodies (bad input, rate limit) become an APIError.
func decodeOutcome(resp *client.Response) (*Outcome, error) {
	var out Outcome
	if err := resp.DecodeJSON(&out); err != nil || out.Status == "" {
		return nil, apiError(resp)
	}
	out.HTTPStatus = resp.StatusCode
	return &out, nil
}

func apiError(resp *client.Response) error {
	var body struct {
		Code string `json:"code"`
	}
	_ = resp.DecodeJSON(&body)
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       body.Code,
		Message:    client.GetErrorMessage(resp),
	}
}
