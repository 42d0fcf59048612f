package errors

import (
	"slices"

	"github.com/pkg/errors"
)

// ErrorDetails represents detailed information about an error.
type ErrorDetails struct {
	// Message (required) is the user-defined error message.
	// E.g. "price must be greater than zero".
	Message string

	// Code (required) is one of the ErrorCode values, as a string.
	Code string

	// Field (optional) is the related field the error occurred on, if any.
	Field string
}

// NewErrorDetails creates a new ErrorDetails struct with the given parameters.
func NewErrorDetails(message, code, field string) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
	}
}

// Error() is used to implement the Golang `error` interface.
func (e *ErrorDetails) Error() string {
	return e.Message
}

// HasCode walks the wrap chain of err and reports whether an ErrorDetails or
// a BaseError in it carries code.
func HasCode(err error, code ErrorCode) bool {
	var details *ErrorDetails
	if errors.As(err, &details) && details.Code == string(code) {
		return true
	}

	var base *BaseError
	if errors.As(err, &base) && slices.Contains(base.Codes(), code) {
		return true
	}

	return false
}

// NewValidationError returns a BaseError holding a single validation detail.
func NewValidationError(message, field string) *BaseError {
	return NewBaseError(NewErrorDetails(message, string(OrderValidationError), field))
}

// NewConflictError wraps cause as a ConcurrencyConflictError with a stack trace.
func NewConflictError(cause error) *ErrorTracer {
	details := NewErrorDetails(cause.Error(), string(ConcurrencyConflictError), "")
	return NewTracer(details.Message).Wrap(&wrappedDetails{ErrorDetails: details, cause: cause})
}

// NewInvariantError returns an InvariantViolationError with a stack trace.
func NewInvariantError(message string) *ErrorTracer {
	return TracerFromError(NewErrorDetails(message, string(InvariantViolationError), ""))
}

// wrappedDetails keeps the driver error reachable through errors.As while
// still exposing the ErrorDetails code.
type wrappedDetails struct {
	*ErrorDetails
	cause error
}

func (w *wrappedDetails) Unwrap() []error {
	return []error{w.ErrorDetails, w.cause}
}
