package finance

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of input validation failure.
type ErrorCode string

const (
	ErrInvalidMonths       ErrorCode = "INVALID_MONTHS"
	ErrInsufficientHistory ErrorCode = "INSUFFICIENT_HISTORY"
	ErrInvalidArgument     ErrorCode = "INVALID_ARGUMENT"
	ErrDeadlinePassed      ErrorCode = "DEADLINE_PASSED"
	ErrUnknownFilingStatus ErrorCode = "UNKNOWN_FILING_STATUS"
)

// ValidationError is returned when caller input cannot produce a meaningful result.
// Degenerate arithmetic (zero income, zero variance) never produces one.
type ValidationError struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(code ErrorCode, field, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationCode returns the code of a wrapped ValidationError, or "".
func ValidationCode(err error) ErrorCode {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
