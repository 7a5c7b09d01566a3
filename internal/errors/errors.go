package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// Client errors
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// WhatsApp errors
	ErrCodeClientNotReady    ErrorCode = "CLIENT_NOT_READY"
	ErrCodeMessageSendFailed ErrorCode = "MESSAGE_SEND_FAILED"

	// Downstream errors
	ErrCodeNotifyFailed ErrorCode = "NOTIFY_FAILED"

	// Server errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Err        error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new application error
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCodeForError(code),
	}
}

// Wrap wraps an existing error with application context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCodeForError(code),
		Err:        err,
	}
}

// getStatusCodeForError maps error codes to HTTP status codes
func getStatusCodeForError(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrCodeClientNotReady:
		return http.StatusServiceUnavailable
	case ErrCodeInternalError, ErrCodeMessageSendFailed, ErrCodeNotifyFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors for convenience

// ValidationError creates a validation error
func ValidationError(message string) *AppError {
	return New(ErrCodeValidationFailed, message)
}

// InvalidRequest creates an invalid request error
func InvalidRequest(message string) *AppError {
	return New(ErrCodeInvalidRequest, message)
}

// ClientNotReady creates an error for requests arriving before the WhatsApp
// session is established
func ClientNotReady() *AppError {
	return New(ErrCodeClientNotReady, "WhatsApp client is not ready")
}

// GroupNotFound creates an error for an unknown or uncached group title
func GroupNotFound(title string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("Group not found: %s", title))
}

// MessageSendFailed creates a message send failed error
func MessageSendFailed(err error) *AppError {
	return Wrap(err, ErrCodeMessageSendFailed, "Failed to send message")
}

// NotifyFailed creates an error for a failed order notification
func NotifyFailed(err error) *AppError {
	return Wrap(err, ErrCodeNotifyFailed, "Failed to deliver order notification")
}

// InternalError creates an internal server error
func InternalError(err error) *AppError {
	return Wrap(err, ErrCodeInternalError, "Internal server error")
}
