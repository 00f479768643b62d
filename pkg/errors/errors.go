// Package errors defines the typed errors every layer returns. The code
// travels to API clients and audit records; the HTTP status is derived
// from it unless set explicitly.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound      = "NOT_FOUND"
	CodeValidation    = "VALIDATION_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeAddressFormat = "ADDRESS_FORMAT_ERROR"
	CodeExternalAPI   = "EXTERNAL_API_ERROR"
	CodeTimeout       = "TIMEOUT"
	CodeUnavailable   = "SERVICE_UNAVAILABLE"
	CodeInternal      = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	CodeNotFound:      http.StatusNotFound,
	CodeValidation:    http.StatusUnprocessableEntity,
	CodeInvalidInput:  http.StatusBadRequest,
	CodeAddressFormat: http.StatusBadRequest,
	CodeExternalAPI:   http.StatusBadGateway,
	CodeTimeout:       http.StatusGatewayTimeout,
	CodeUnavailable:   http.StatusServiceUnavailable,
	CodeInternal:      http.StatusInternalServerError,
}

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the same input may succeed later: the failure
// was in something the flow called, not in the input.
func (e *AppError) Retryable() bool {
	switch e.Code {
	case CodeUnavailable, CodeTimeout, CodeExternalAPI:
		return true
	}
	return false
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// New builds an error whose status differs from its code's default.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func newError(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(resource string) *AppError {
	return newError(CodeNotFound, resource+" not found", nil)
}

func Validation(message string, details map[string]any) *AppError {
	return newError(CodeValidation, message, nil).WithDetails(details)
}

func InvalidInput(message string) *AppError {
	return newError(CodeInvalidInput, message, nil)
}

// AddressFormat reports a free-text address that cannot be split into parts.
func AddressFormat(message string, err error) *AppError {
	return newError(CodeAddressFormat, message, err)
}

// ExternalAPI reports a failed call to a downstream HTTP service.
func ExternalAPI(service string, status int, err error) *AppError {
	return newError(CodeExternalAPI, service+" request failed", err).WithDetails(map[string]any{
		"service":       service,
		"upstream_code": status,
	})
}

func Timeout(message string) *AppError {
	return newError(CodeTimeout, message, nil)
}

func Unavailable(service string) *AppError {
	return newError(CodeUnavailable, service+" is temporarily unavailable", nil)
}

func Internal(message string, err error) *AppError {
	return newError(CodeInternal, message, err)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError returns the AppError in err's chain, or wraps err as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}
