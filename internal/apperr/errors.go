package apperr

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Domain is the error domain reported in gRPC error details.
const Domain = "booking-engine.leganyst.github.com"

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Sentinels for errors.Is comparisons; matching is by code only.
var (
	ErrInvalidInterval    = New(CodeInvalidInterval, "invalid interval")
	ErrInvalidArgument    = New(CodeInvalidArgument, "invalid argument")
	ErrResourceNotFound   = New(CodeResourceNotFound, "resource not found")
	ErrSessionNotFound    = New(CodeSessionNotFound, "session not found")
	ErrSlotConflict       = New(CodeSlotConflict, "slot conflict")
	ErrHoldExpired        = New(CodeHoldExpired, "hold expired")
	ErrInvalidTransition  = New(CodeInvalidTransition, "invalid transition")
	ErrPriceMismatch      = New(CodePriceMismatch, "price mismatch")
	ErrGatewayUnavailable = New(CodeGatewayUnavailable, "payment gateway unavailable")
)

// CodeOf extracts the code from err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// ToGRPCStatus converts err to a gRPC status error with ErrorInfo details.
// Non-domain errors become codes.Internal.
func ToGRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return status.Error(CodeUnknown.GRPCCode(), err.Error())
	}
	st := status.New(e.Code.GRPCCode(), e.Error())
	withDetails, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(e.Code),
		Domain:   Domain,
		Metadata: e.Metadata,
	})
	if derr != nil {
		return st.Err()
	}
	return withDetails.Err()
}

// FromGRPCStatus recovers the domain code and metadata from a status error.
func FromGRPCStatus(err error) (Code, map[string]string) {
	st, ok := status.FromError(err)
	if !ok {
		return CodeUnknown, nil
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == Domain {
			return Code(info.GetReason()), info.GetMetadata()
		}
	}
	return CodeUnknown, nil
}
