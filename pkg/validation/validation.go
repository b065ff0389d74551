// Package validation wires go-playground/validator with the custom tags shared
// by every crewcall domain and turns its errors into readable field messages.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"crewcall/pkg/engine"
	"crewcall/pkg/logger"

	"github.com/go-playground/validator/v10"
)

var phoneRegex = regexp.MustCompile(`^(?:|\+[1-9]\d{7,14})$`)

const maxAttendeeIDLength = 64

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

// New returns a validator with calendar_day, e164_or_empty and attendee_set
// registered. Registration failures are fatal.
func New(log *logger.Logger) *validator.Validate {
	v := validator.New()

	tags := map[string]validator.Func{
		"calendar_day":  validateCalendarDay,
		"e164_or_empty": validateE164OrEmpty,
		"attendee_set":  validateAttendeeSet,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}
	return v
}

func validateCalendarDay(fl validator.FieldLevel) bool {
	_, err := engine.ParseDay(fl.Field().String())
	return err == nil
}

func validateE164OrEmpty(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

func validateAttendeeSet(fl validator.FieldLevel) bool {
	attendees, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	seen := make(map[string]struct{}, len(attendees))
	for _, a := range attendees {
		if a == "" || len(a) > maxAttendeeIDLength {
			return false
		}
		if _, dup := seen[a]; dup {
			return false
		}
		seen[a] = struct{}{}
	}
	return true
}

// Struct validates s and returns ValidationErrors for tag failures.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Translate(validationErrs)
		}
		return err
	}
	return nil
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
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
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164", "e164_or_empty":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +14155550123)", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "calendar_day":
			message = fmt.Sprintf("%s must be a calendar day in YYYY-MM-DD format", err.Field())
		case "attendee_set":
			message = fmt.Sprintf("%s must contain unique, non-empty ids of at most %d characters", err.Field(), maxAttendeeIDLength)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
