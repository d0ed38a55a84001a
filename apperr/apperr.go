package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMissingParameter      = errors.New("missing parameter")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrEstimationUnavailable = errors.New("estimation unavailable")
	ErrStorageFault          = errors.New("storage fault")
	ErrNotFoundOrForbidden   = errors.New("not found or not owned by user")
	ErrInvalidFormat         = errors.New("invalid format")
)

type Error struct {
	Kind  error
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, field, msg string) *Error {
	return &Error{Kind: kind, Field: field, Msg: msg}
}

func Invalid(field, format string, args ...interface{}) *Error {
	return New(ErrInvalidParameter, field, fmt.Sprintf(format, args...))
}

// MissingParameterError lists every absent key, in the order they were checked.
type MissingParameterError struct {
	Params []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("Missing required parameters: [%s]", quoteJoin(e.Params))
}

func (e *MissingParameterError) Unwrap() error { return ErrMissingParameter }

func quoteJoin(params []string) string {
	quoted := make([]string, len(params))
	for i, p := range params {
		quoted[i] = "'" + p + "'"
	}
	return strings.Join(quoted, ", ")
}

func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingParameter),
		errors.Is(err, ErrInvalidParameter),
		errors.Is(err, ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFoundOrForbidden):
		return http.StatusNotFound
	case errors.Is(err, ErrEstimationUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
