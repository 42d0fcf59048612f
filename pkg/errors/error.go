package errors

import (
	"slices"
	"strings"
)

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"
	// GeneralUnauthorizedError represents a generic unauthorized error.
	GeneralUnauthorizedError ErrorCode = "general_unauthorized_error"
	// GeneralRepositoryError represents a generic repository error.
	GeneralRepositoryError ErrorCode = "general_repository_error"

	// OrderValidationError represents an order rejected before it reaches the matching engine.
	OrderValidationError ErrorCode = "order_validation_error"
	// ConcurrencyConflictError represents a lock or serialization failure while matching.
	ConcurrencyConflictError ErrorCode = "concurrency_conflict_error"
	// InvariantViolationError represents ledger state that breaks an order book invariant.
	InvariantViolationError ErrorCode = "invariant_violation_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when storing or announcing a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
)

// BaseError is an `error` type containing an array of ErrorDetails.
// Validation collects one detail per offending field so callers can
// report every problem with a request at once.
type BaseError struct {
	details []*ErrorDetails
}

// NewBaseError create BaseError with ErrorDetails
func NewBaseError(details ...*ErrorDetails) *BaseError {
	return &BaseError{details: details}
}

// AddErrorDetails add more ErrorDetails to BaseError
func (b *BaseError) AddErrorDetails(errors ...*ErrorDetails) {
	b.details = append(b.details, errors...)
}

// HasDetails reports whether any detail was collected.
func (b *BaseError) HasDetails() bool {
	return len(b.details) > 0
}

// Error renders one "field: message [code]" entry per detail, joined by "; ".
func (b *BaseError) Error() string {
	parts := make([]string, 0, len(b.details))
	for _, d := range b.details {
		parts = append(parts, d.Field+": "+d.Message+" ["+d.Code+"]")
	}
	return strings.Join(parts, "; ")
}

// Codes lists the distinct detail codes in first-seen order.
func (b *BaseError) Codes() []ErrorCode {
	var codes []ErrorCode
	for _, d := range b.details {
		if !slices.Contains(codes, ErrorCode(d.Code)) {
			codes = append(codes, ErrorCode(d.Code))
		}
	}
	return codes
}

// FieldMessages groups detail messages by field, in insertion order per field.
func (b *BaseError) FieldMessages() map[string][]string {
	out := make(map[string][]string, len(b.details))
	for _, d := range b.details {
		out[d.Field] = append(out[d.Field], d.Message)
	}
	return out
}
