package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"roomgrid/pkg/dates"
	apperrors "roomgrid/pkg/errors"
)

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("request body is empty")
		}
		return apperrors.InvalidInput("invalid request body: " + err.Error())
	}
	return nil
}

// QueryDate reads a YYYY-MM-DD query parameter. ok is false when absent.
func QueryDate(r *http.Request, name string) (t time.Time, ok bool, err error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err = dates.Parse(s)
	if err != nil {
		return time.Time{}, false, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter, must be YYYY-MM-DD: %s", name, s))
	}
	return t, true, nil
}

func QueryInt(r *http.Request, name string, fallback int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", name, s))
	}
	return v, nil
}

func QueryBool(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", name, s))
	}
	return v, nil
}
