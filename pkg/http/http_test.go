package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"roomgrid/pkg/dates"
	apperrors "roomgrid/pkg/errors"
)

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Edge string `json:"edge"`
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: `{"edge":"check_out"}`},
		{name: "empty", input: ``, wantErr: true},
		{name: "unknown field", input: `{"edge":"check_out","extra":1}`, wantErr: true},
		{name: "malformed", input: `{"edge":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.input))
			var b body
			err := DecodeJSON(req, &b)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.IsAppError(err) || apperrors.AsAppError(err).StatusCode() != http.StatusBadRequest {
				t.Fatalf("expected a 400 AppError, got %v", err)
			}
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?pivot=2024-06-11&range=14&compact=true&bad=x", nil)

	pivot, ok, err := QueryDate(req, "pivot")
	if err != nil || !ok || dates.Key(pivot) != "2024-06-11" {
		t.Fatalf("QueryDate = %v %v %v", pivot, ok, err)
	}
	if _, ok, err := QueryDate(req, "missing"); ok || err != nil {
		t.Fatalf("missing date should be absent, got ok=%v err=%v", ok, err)
	}
	if _, _, err := QueryDate(req, "bad"); err == nil {
		t.Fatal("expected error for bad date")
	}

	if n, err := QueryInt(req, "range", 7); err != nil || n != 14 {
		t.Fatalf("QueryInt = %d %v", n, err)
	}
	if n, _ := QueryInt(req, "missing", 7); n != 7 {
		t.Fatalf("QueryInt fallback = %d", n)
	}
	if _, err := QueryInt(req, "bad", 7); err == nil {
		t.Fatal("expected error for bad int")
	}

	if b, err := QueryBool(req, "compact"); err != nil || !b {
		t.Fatalf("QueryBool = %v %v", b, err)
	}
	if _, err := QueryBool(req, "bad"); err == nil {
		t.Fatal("expected error for bad bool")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteError(rec, apperrors.NotFoundWithID("reservation", "x")); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	if err := WriteError(rec, errors.New("mongo: connection reset")); err != nil {
		t.Fatal(err)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError || strings.Contains(resp.Error, "mongo") {
		t.Fatalf("internal error leaked: %d %q", rec.Code, resp.Error)
	}
}
