package openmeteo

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is wrapped in a NetworkError when the circuit breaker is
// refusing calls after repeated transport failures.
var ErrCircuitOpen = errors.New("provider temporarily unavailable (circuit open)")

// NetworkError reports a connectivity failure or a non-success HTTP status.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DeserializationError reports a provider payload that could not be decoded
// or lacks a required section or column.
type DeserializationError struct {
	Op  string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// Temporary reports whether err is worth retrying: a transport failure or a
// 5xx response. Client errors, undecodable payloads and an open circuit are
// not.
func Temporary(err error) bool {
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		return false
	}
	return netErr.StatusCode == 0 || netErr.StatusCode >= 500
}
