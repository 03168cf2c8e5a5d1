// Package apierror provides standardized error response structures for the API
// and the typed business errors raised by the services.
// All errors returned to clients go through this package so that internal
// details (SQL errors, stack traces) never leak.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Message string `json:"message"`
}

func New(msg string) *APIError {
	return &APIError{Message: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Message: "Erreur de validation", Fields: fields}
}

// ── Business errors ───────────────────────────────────────────────────────────

// Kind classifies a business error.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindIndisponible
)

// Error is a business rule failure carrying a user-facing French message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Validation reports a missing/invalid field or a violated quantity rule.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced entity that does not exist.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports an operation forbidden by the current document state.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Indisponible reports a missing optional collaborator (job queue, mailer).
func Indisponible(format string, args ...any) error {
	return &Error{Kind: KindIndisponible, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err wraps a business error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Status maps an error to its HTTP status code. Unknown errors are 500.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindIndisponible:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
