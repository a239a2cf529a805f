// Package qerr defines the error taxonomy shared by the simulator packages.
//
// Callers classify failures with errors.Is against the three sentinels and
// extract detail with errors.As against the typed errors.
package qerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCircuit is returned when a circuit is malformed: bad arity,
	// out-of-range or duplicate targets, unknown gate kinds, or overlapping
	// gates within one column.
	ErrInvalidCircuit = errors.New("invalid circuit")

	// ErrInvalidRequest is returned for malformed request parameters such as
	// a non-positive shot count.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrResourceLimit is returned when a request would exceed a configured
	// bound (qubit count, shot count, memory budget).
	ErrResourceLimit = errors.New("resource limit exceeded")
)

// CircuitError describes why a circuit failed validation.
//
// Gate is the zero-based source position of the offending gate, or -1 when
// the problem concerns the circuit as a whole.
type CircuitError struct {
	Gate   int
	Reason string
}

func (e *CircuitError) Error() string {
	if e.Gate < 0 {
		return fmt.Sprintf("invalid circuit: %s", e.Reason)
	}
	return fmt.Sprintf("invalid circuit: gate %d: %s", e.Gate, e.Reason)
}

func (e *CircuitError) Unwrap() error { return ErrInvalidCircuit }

// Circuitf builds a CircuitError for the gate at position idx.
func Circuitf(idx int, format string, args ...any) error {
	return &CircuitError{Gate: idx, Reason: fmt.Sprintf(format, args...)}
}

// LimitError reports a request that exceeds a configured bound.
type LimitError struct {
	Resource  string
	Requested int64
	Limit     int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("resource limit exceeded: %s %d exceeds limit %d", e.Resource, e.Requested, e.Limit)
}

func (e *LimitError) Unwrap() error { return ErrResourceLimit }

// Requestf builds an ErrInvalidRequest with a formatted detail message.
func Requestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
