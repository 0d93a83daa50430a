// Package apperror defines the application error taxonomy shared by the
// ontology core and its HTTP surface.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an application error carrying an HTTP status, a stable machine
// code, and an optional wrapped internal error.
type Error struct {
	HTTPStatus int
	Code       string
	Message    string
	Internal   error
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the internal error.
func (e *Error) Unwrap() error {
	return e.Internal
}

// Is matches errors by code, so sentinel comparisons survive the
// WithMessage/WithInternal copy helpers.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithInternal returns a copy of the error with an internal error attached.
func (e *Error) WithInternal(err error) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   err,
		Details:    e.Details,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    message,
		Internal:   e.Internal,
		Details:    e.Details,
	}
}

// WithMessagef returns a copy of the error with a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithDetails returns a copy of the error with details attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   e.Internal,
		Details:    details,
	}
}

// New creates a new application error.
func New(status int, code, message string) *Error {
	return &Error{
		HTTPStatus: status,
		Code:       code,
		Message:    message,
	}
}

// Common error definitions.
var (
	// Authentication / authorization
	ErrUnauthorized = New(http.StatusUnauthorized, "unauthorized", "Authentication required")
	ErrForbidden    = New(http.StatusForbidden, "forbidden", "Access denied")
	ErrAccessDenied = New(http.StatusForbidden, "access_denied", "Access denied")

	// Resources
	ErrNotFound = New(http.StatusNotFound, "not_found", "Resource not found")
	ErrConflict = New(http.StatusConflict, "conflict", "Resource already exists")

	// Validation
	ErrBadRequest = New(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrValidation = New(http.StatusUnprocessableEntity, "validation_error", "Validation failed")

	// Configuration / programming errors. These should never occur in a
	// correctly wired deployment and are treated as fatal in tests.
	ErrUnknownType             = New(http.StatusInternalServerError, "unknown_type", "Unknown object type")
	ErrUnsupportedLinkType     = New(http.StatusInternalServerError, "unsupported_link_type", "Unsupported link type")
	ErrRepositoryNotConfigured = New(http.StatusInternalServerError, "repository_not_configured", "No repository configured for type")
	ErrContextNotSet           = New(http.StatusInternalServerError, "context_not_set", "Tenant context not set")

	// Server
	ErrInternal = New(http.StatusInternalServerError, "internal_error", "An internal error occurred")
	ErrDatabase = New(http.StatusInternalServerError, "database_error", "Database operation failed")
)

// NewBadRequest creates a bad request error with a custom message.
func NewBadRequest(message string) *Error {
	return ErrBadRequest.WithMessage(message)
}

// NewValidation creates a validation error with a custom message.
func NewValidation(message string) *Error {
	return ErrValidation.WithMessage(message)
}

// NewNotFound creates a not found error for a resource type and ID.
func NewNotFound(resourceType, id string) *Error {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s '%s' not found", resourceType, id))
}

// NewAccessDenied creates an access denied error naming the two organization
// ids involved, for diagnosability of tenant isolation failures.
func NewAccessDenied(contextOrg, rowOrg string) *Error {
	return ErrAccessDenied.
		WithMessagef("organization mismatch: context organization %s cannot access rows of organization %s", contextOrg, rowOrg).
		WithDetails(map[string]any{
			"context_organization_id": contextOrg,
			"row_organization_id":     rowOrg,
		})
}

// NewInternal creates an internal error with a message and optional wrapped error.
func NewInternal(message string, err error) *Error {
	return &Error{
		HTTPStatus: http.StatusInternalServerError,
		Code:       "internal_error",
		Message:    message,
		Internal:   err,
	}
}
