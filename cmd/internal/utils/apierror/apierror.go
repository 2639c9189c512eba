package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind classifies a failure independently of the transport.
type Kind string

const (
	KindUnauthorized    Kind = "unauthorized"
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

// ErrorResponse is what every service method returns instead of a raw error.
// A nil ErrorResponse means success.
type ErrorResponse interface {
	error
	Code() int
	Kind() Kind
}

type apiError struct {
	Status  int    `json:"status"`
	ErrKind Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Message }
func (e *apiError) Code() int     { return e.Status }
func (e *apiError) Kind() Kind    { return e.ErrKind }

var (
	InternalServerError   = New(KindInternal, "Something went wrong on our side")
	NotFoundError         = New(KindNotFound, "Resource not found")
	MalformedBodyError    = New(KindInvalidArgument, "Malformed request body")
	InvalidAuthTokenError = &apiError{Status: http.StatusUnauthorized, ErrKind: KindUnauthorized, Message: "You need to sign in to use this feature"}
	ForbiddenError        = New(KindUnauthorized, "You do not have permission to use this feature")
)

// New builds an error of the given kind with the status code the boundary uses for it.
func New(kind Kind, message string) ErrorResponse {
	return &apiError{Status: statusFor(kind), ErrKind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) ErrorResponse {
	return New(kind, fmt.Sprintf(format, args...))
}

func NewSimple(code int, message string) ErrorResponse {
	return &apiError{Status: code, ErrKind: kindFor(code), Message: message}
}

func NewMissingParamError(param string) ErrorResponse {
	return Newf(KindInvalidArgument, "Missing required parameter '%s'", param)
}

func NewInvalidParamTypeError(param, typ string) ErrorResponse {
	return Newf(KindInvalidArgument, "Parameter '%s' must be of type %s", param, typ)
}

func NewNotFound(what string) ErrorResponse {
	return Newf(KindNotFound, "%s not found", what)
}

func NewConflict(message string) ErrorResponse {
	return New(KindConflict, message)
}

func NewInvalid(message string) ErrorResponse {
	return New(KindInvalidArgument, message)
}

// Is reports whether err is an ErrorResponse of the given kind.
func Is(err error, kind Kind) bool {
	var apiErr ErrorResponse
	if errors.As(err, &apiErr) {
		return apiErr.Kind() == kind
	}
	return false
}

// FromValidationError turns validator output into a single InvalidArgument with
// one readable sentence per failing field.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return New(KindInvalidArgument, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s item(s) or characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s item(s) or characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notpast":
		return fmt.Sprintf("%s cannot be in the past", field)
	case "isodate":
		return fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func statusFor(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusForbidden
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func kindFor(code int) Kind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	case http.StatusBadRequest:
		return KindInvalidArgument
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindInternal
	}
}
