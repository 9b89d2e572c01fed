package apperror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind classifies an error into the status classes the API exposes.
type Kind int

const (
	KindValidation Kind = iota
	KindAccessDenied
	KindNotFound
	KindConflict
	KindInternal
)

// Error is the structured error every handler returns to the client.
type Error struct {
	Kind    Kind              `json:"-"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string { return e.Message }

func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func AccessDenied(msg string) *Error { return &Error{Kind: KindAccessDenied, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func Internal(msg string) *Error     { return &Error{Kind: KindInternal, Message: msg} }

// ValidationFields builds a validation error carrying per-field messages.
func ValidationFields(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAccessDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Write sends err as a JSON body with the matching status code. Unknown error
// values are masked as a generic internal error so nothing leaks to clients.
func Write(w http.ResponseWriter, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal("internal server error")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status())
	json.NewEncoder(w).Encode(appErr)
}
