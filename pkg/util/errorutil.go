package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewInvalidCredentials(message string) error {
	return NewDomainError("INVALID_CREDENTIALS", message, http.StatusUnauthorized, nil)
}

func NewDuplicateAccount(email string) error {
	return NewDomainError("DUPLICATE_ACCOUNT", "account already registered", http.StatusConflict, map[string]any{"email": email})
}

// NewSessionBusy signals a session mutation attempted while another is in
// flight. Transient: callers retry after the current operation resolves.
func NewSessionBusy() error {
	return NewDomainError("SESSION_BUSY", "session operation in progress", http.StatusConflict, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewInvalidTransition(from, to string) error {
	return NewDomainError("INVALID_TRANSITION", fmt.Sprintf("cannot transition from %s to %s", from, to), http.StatusConflict, map[string]any{
		"from": from,
		"to":   to,
	})
}

func NewAlertNotPending(status string) error {
	return NewDomainError("ALERT_NOT_PENDING", "alert is no longer accepting responses", http.StatusConflict, map[string]any{"status": status})
}

func NewAlreadyAwarded(alertID string) error {
	return NewDomainError("ALREADY_AWARDED", "another donor has already been awarded", http.StatusConflict, map[string]any{"alert_id": alertID})
}

// NewStorageFailure wraps a persistence fault on the session record. Fatal to
// the restore attempt, never to the process.
func NewStorageFailure(err error) error {
	return &DomainError{
		Code:       "STORAGE_FAILURE",
		Message:    "session record storage failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
