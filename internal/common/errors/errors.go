package errors

import (
	"fmt"
)

// ErrorCode is a stable machine-readable error identifier surfaced to API clients.
type ErrorCode string

const (
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeForbidden  ErrorCode = "FORBIDDEN"
	ErrCodeConflict   ErrorCode = "CONFLICT"

	// Authentication / session
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUnverified         ErrorCode = "UNVERIFIED"
	ErrCodePendingApproval    ErrorCode = "PENDING_APPROVAL"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"

	// OTP
	ErrCodeInvalidCode     ErrorCode = "INVALID_CODE"
	ErrCodeExpired         ErrorCode = "EXPIRED"
	ErrCodeAlreadyVerified ErrorCode = "ALREADY_VERIFIED"

	// Ledger / workflow
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"

	// Collaborators
	ErrCodeMailDelivery ErrorCode = "MAIL_DELIVERY_FAILED"
	ErrCodeStorage      ErrorCode = "STORAGE_ERROR"
)

// AppError is the typed error every business-rule failure is returned as.
// It never crosses the ledger/workflow boundary as a panic.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsInternal reports whether the error should surface as a 5xx.
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodeStorage || e.Code == ErrCodeMailDelivery
}

// New creates a typed application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates a typed application error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a typed application error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

// AsAppError extracts an *AppError if err is one.
func AsAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
