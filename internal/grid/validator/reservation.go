package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"roomgrid/pkg/dates"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// RoomCatalog resolves room ids to room types.
type RoomCatalog interface {
	RoomType(roomID string) (string, bool)
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	rooms    RoomCatalog
}

func NewReservationValidator(log *logger.Logger, rooms RoomCatalog) *ReservationValidator {
	v := validator.New()

	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		log.Fatal("Failed to register 'hhmm' validator",
			"error", err,
		)
	}

	log.Debug("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
		rooms:    rooms,
	}
}

func validateHHMM(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	if _, err := time.Parse("15:04", value); err != nil {
		return false
	}
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return false
	}
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}

// Validate checks a reservation read from the store: struct rules, the
// night count against the range, and that every sub-allocation stays within
// the primary room's type.
func (v *ReservationValidator) Validate(r *model.Reservation) error {
	if err := v.validate.Struct(r); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if nights := dates.DaysBetween(r.CheckIn, r.CheckOut); r.TotalNights != nights {
		return ValidationErrors{
			ValidationError{
				Field:   "TotalNights",
				Message: fmt.Sprintf("total_nights (%d) must equal the nights between check_in and check_out (%d)", r.TotalNights, nights),
			},
		}
	}

	if v.rooms == nil || len(r.Allocations) == 0 {
		return nil
	}

	primaryType, ok := v.rooms.RoomType(r.RoomID)
	if !ok {
		return ValidationErrors{
			ValidationError{
				Field:   "RoomID",
				Message: fmt.Sprintf("room %s is not in the catalog", r.RoomID),
			},
		}
	}

	var errs ValidationErrors
	for i, a := range r.Allocations {
		t, ok := v.rooms.RoomType(a.RoomID)
		if !ok || t != primaryType {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("Allocations[%d].RoomID", i),
				Message: fmt.Sprintf("sub-allocation room %s must be of room type %s", a.RoomID, primaryType),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ReservationValidator) ValidateBlockRequest(req *model.BlockRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ReservationValidator) ValidateBlockKeys(keys []model.BlockedDateKey) error {
	if len(keys) == 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "Keys",
				Message: "at least one blocked date is required",
			},
		}
	}
	for _, k := range keys {
		if err := v.validate.Struct(k); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				return v.translateValidationErrors(validationErrs)
			}
			return err
		}
	}
	return nil
}

func (v *ReservationValidator) ValidateRoom(room *model.RoomInfo) error {
	if err := v.validate.Struct(room); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "hhmm":
			message = fmt.Sprintf("%s must be a time of day in HH:MM format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
