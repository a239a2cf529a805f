package qerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitErrorClassification(t *testing.T) {
	err := fmt.Errorf("build schedule: %w", Circuitf(3, "target %d out of range", 7))

	assert.ErrorIs(t, err, ErrInvalidCircuit)
	assert.NotErrorIs(t, err, ErrResourceLimit)

	var ce *CircuitError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 3, ce.Gate)
	assert.Equal(t, "invalid circuit: gate 3: target 7 out of range", ce.Error())
}

func TestCircuitErrorWholeCircuit(t *testing.T) {
	err := &CircuitError{Gate: -1, Reason: "numQubits must be positive"}
	assert.Equal(t, "invalid circuit: numQubits must be positive", err.Error())
}

func TestLimitError(t *testing.T) {
	var err error = &LimitError{Resource: "qubits", Requested: 30, Limit: 12}

	assert.True(t, errors.Is(err, ErrResourceLimit))
	assert.Contains(t, err.Error(), "qubits 30 exceeds limit 12")
}

func TestRequestf(t *testing.T) {
	err := Requestf("shots must be positive, got %d", 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, "invalid request: shots must be positive, got 0", err.Error())
}
