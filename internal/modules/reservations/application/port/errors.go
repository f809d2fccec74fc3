package port

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation indicates the input was rejected locally and no request was sent.
	ErrValidation = errors.New("reservation input invalid")
	// ErrHTTPStatus indicates a non-2xx response without a usable error body.
	ErrHTTPStatus = errors.New("reservation api unexpected status")
	// ErrServerReported indicates a non-2xx response whose body carried detail or error.
	ErrServerReported = errors.New("reservation api reported an error")
	// ErrTransport indicates the request never produced a response.
	ErrTransport = errors.New("reservation api unreachable")
	// ErrSchemaMismatch indicates a 2xx body that could not be decoded into the expected payload.
	ErrSchemaMismatch = errors.New("reservation api payload mismatch")
	// ErrTokenUnavailable indicates the token provider failed.
	ErrTokenUnavailable = errors.New("access token unavailable")
)

// ReservationError is the single error type returned by the reservations client.
// Error returns Message verbatim so callers can surface it to staff unchanged.
type ReservationError struct {
	Kind    error
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *ReservationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "reservation request failed"
}

func (e *ReservationError) Unwrap() error { return e.Err }

func (e *ReservationError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// HTTPStatus suggests the status a gateway should answer with.
func (e *ReservationError) HTTPStatus() int {
	switch e.Kind {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrTokenUnavailable:
		return http.StatusUnauthorized
	case ErrTransport, ErrSchemaMismatch:
		return http.StatusBadGateway
	}
	if e.Status >= 400 && e.Status <= 599 {
		return e.Status
	}
	return http.StatusBadGateway
}

// NewValidationError builds a validation failure for op.
func NewValidationError(op, message string) *ReservationError {
	return &ReservationError{Kind: ErrValidation, Op: op, Message: message}
}

// StatusMessage is the fallback message for a failed response.
func StatusMessage(status int) string {
	return fmt.Sprintf("Error: %d", status)
}
