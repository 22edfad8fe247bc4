package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when required input is missing or malformed.
	// No side effect has been applied when this error is returned.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when the caller carries no valid credential
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")

	// ErrPaymentFailed is returned when a transaction reached the failed state
	ErrPaymentFailed = errors.New("payment failed")

	// ErrPollTimeout is returned when settlement polling exhausted its attempt
	// ceiling while the transaction was still pending. The transaction may
	// still settle later via callback; this is not a payment failure.
	ErrPollTimeout = errors.New("settlement polling timed out")

	// ErrSubscriptionClosed is returned when a live feed subscription has been
	// cancelled or the transport closed underneath it
	ErrSubscriptionClosed = errors.New("subscription closed")
)

// UpstreamError reports a failure from an external collaborator (Gateway,
// pricing authority). A zero StatusCode means the upstream was unreachable
// rather than rejecting the call.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s unreachable: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Message)
}

// NewUpstreamError creates an UpstreamError for a service failure
func NewUpstreamError(service string, statusCode int, message string) *UpstreamError {
	return &UpstreamError{Service: service, StatusCode: statusCode, Message: message}
}

// IsUpstreamError reports whether err wraps an UpstreamError, returning it
func IsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
