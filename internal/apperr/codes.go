// Package apperr provides structured error codes for the booking engine.
package apperr

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Validation errors: rejected synchronously, never retried.
	CodeInvalidInterval Code = "INVALID_INTERVAL"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Lookup errors
	CodeResourceNotFound Code = "RESOURCE_NOT_FOUND"
	CodeSessionNotFound  Code = "SESSION_NOT_FOUND"

	// Contention: retry with a different slot.
	CodeSlotConflict Code = "SLOT_CONFLICT"

	// Expiry is a normal outcome.
	CodeHoldExpired Code = "HOLD_EXPIRED"

	// Invariant violations
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodePriceMismatch     Code = "PRICE_MISMATCH"

	// External dependencies
	CodeGatewayUnavailable Code = "GATEWAY_UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeInvalidInterval, CodeInvalidArgument:
		return codes.InvalidArgument
	case CodeResourceNotFound, CodeSessionNotFound:
		return codes.NotFound
	case CodeSlotConflict:
		return codes.AlreadyExists
	case CodeHoldExpired, CodeInvalidTransition:
		return codes.FailedPrecondition
	case CodePriceMismatch:
		return codes.Aborted
	case CodeGatewayUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes for webhook responses.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidInterval, CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeResourceNotFound, CodeSessionNotFound:
		return http.StatusNotFound
	case CodeSlotConflict, CodeInvalidTransition:
		return http.StatusConflict
	case CodeHoldExpired, CodePriceMismatch:
		return http.StatusPreconditionFailed
	case CodeGatewayUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
