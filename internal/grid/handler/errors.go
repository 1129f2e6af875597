package handler

import (
	"errors"
	"net/http"

	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/internal/grid/service"
	"roomgrid/internal/grid/validator"
	apperrors "roomgrid/pkg/errors"
)

// toAppError maps engine errors onto the API's error envelope.
func toAppError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]any, len(verrs))
		for _, v := range verrs {
			details[v.Field] = v.Message
		}
		return apperrors.Validation("request failed validation", details)
	}
	if apperrors.IsAppError(err) {
		return apperrors.AsAppError(err)
	}

	switch {
	case errors.Is(err, griderrors.ErrReservationNotFound):
		return apperrors.Wrap(err, apperrors.CodeNotFound, griderrors.Message(err), http.StatusNotFound)
	case errors.Is(err, griderrors.ErrPersistence):
		return apperrors.Wrap(err, apperrors.CodeUnavailable, griderrors.Message(err), http.StatusServiceUnavailable)
	case errors.Is(err, griderrors.ErrInvalidGesture):
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, err.Error(), http.StatusBadRequest)
	}
	if code := griderrors.Code(err); code != "" {
		return apperrors.Rejected(code, griderrors.Message(err), err)
	}
	return apperrors.Internal("An unexpected error occurred", err)
}

// outcomeStatus picks the HTTP status for a gesture outcome. Ignored
// gestures are not failures.
func outcomeStatus(o service.Outcome) int {
	switch o.Status {
	case service.StatusAccepted, service.StatusIgnored:
		return http.StatusOK
	case service.StatusFailed:
		return http.StatusServiceUnavailable
	}
	switch {
	case errors.Is(o.Err, griderrors.ErrReservationNotFound):
		return http.StatusNotFound
	case errors.Is(o.Err, griderrors.ErrInvalidGesture):
		return http.StatusBadRequest
	}
	return http.StatusConflict
}
