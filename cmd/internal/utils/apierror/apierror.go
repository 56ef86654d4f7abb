package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	KindUnauthenticated   = "unauthenticated"
	KindForbidden         = "forbidden"
	KindNotFound          = "not_found"
	KindInvalidInput      = "invalid_input"
	KindInvalidSlot       = "invalid_slot"
	KindInvalidStatus     = "invalid_status"
	KindInvalidTransition = "invalid_transition"
	KindInvalidDate       = "invalid_date"
	KindPastAppointment   = "past_appointment"
	KindSlotTaken         = "slot_taken"
	KindAlreadyTerminal   = "already_terminal"
	KindStaleState        = "stale_state"
	KindConflict          = "conflict"
	KindTooManyRequests   = "too_many_requests"
	KindInternal          = "internal"
)

// ErrorResponse is an expected, client-facing failure.
type ErrorResponse interface {
	error
	Code() int
	Kind() string
}

type simpleError struct {
	Status  int               `json:"status"`
	ErrKind string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *simpleError) Error() string { return e.Message }
func (e *simpleError) Code() int     { return e.Status }
func (e *simpleError) Kind() string  { return e.ErrKind }

func New(code int, kind, message string) ErrorResponse {
	return &simpleError{Status: code, ErrKind: kind, Message: message}
}

// NewSimple derives the kind from the HTTP status.
func NewSimple(code int, message string) ErrorResponse {
	return New(code, kindFor(code), message)
}

func NewMissingParamError(param string) ErrorResponse {
	return New(http.StatusBadRequest, KindInvalidInput, fmt.Sprintf("Missing required parameter '%s'", param))
}

// FromValidationError turns validator failures into a per-field 400.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonName(fe)] = describe(fe)
	}
	return &simpleError{
		Status:  http.StatusBadRequest,
		ErrKind: KindInvalidInput,
		Message: "Invalid input data",
		Fields:  fields,
	}
}

// Is matches on kind so that wrapped or per-field variants compare equal.
func Is(err error, kind string) bool {
	var apierr ErrorResponse
	return errors.As(err, &apierr) && apierr.Kind() == kind
}

func jsonName(fe validator.FieldError) string {
	// validators are registered to report json tag names; fall back to the struct field
	if name := fe.Field(); name != "" {
		return name
	}
	return strings.ToLower(fe.StructField())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "isodate":
		return "must be a date formatted as YYYY-MM-DD"
	case "clocktime":
		return "must be a time of day formatted as HH:MM"
	case "weekday":
		return "must contain weekday numbers between 0 and 6"
	case "hasdigit":
		return "must contain at least one digit"
	case "hasletter":
		return "must contain at least one letter"
	case "nospaces":
		return "must not contain spaces"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func kindFor(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindTooManyRequests
	case http.StatusInternalServerError:
		return KindInternal
	default:
		return KindInvalidInput
	}
}
