package circuit

import (
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qsim/internal/gates"
	"qsim/internal/qerr"
)

func TestScheduleOrdersByColumnStable(t *testing.T) {
	c := Circuit{
		NumQubits: 3,
		Gates: []Gate{
			{ID: "late", Kind: gates.X, Targets: []int{0}, Column: 2},
			{ID: "a", Kind: gates.H, Targets: []int{1}, Column: 0},
			{ID: "b", Kind: gates.H, Targets: []int{2}, Column: 0},
			{ID: "c", Kind: gates.H, Targets: []int{0}, Column: 0},
			{ID: "mid", Kind: gates.CNOT, Targets: []int{0, 1}, Column: 1},
		},
	}

	s, err := c.Schedule(12)
	require.NoError(t, err)

	var ids []string
	for _, g := range s.Gates() {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "mid", "late"}, ids)
	assert.Equal(t, []int{0, 1, 2}, s.Columns())
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 2, s.LastColumn())
}

func TestScheduleNormalizesKinds(t *testing.T) {
	c := Circuit{NumQubits: 3, Gates: []Gate{
		{Kind: "cx", Targets: []int{0, 1}},
		{Kind: "ccx", Targets: []int{0, 1, 2}, Column: 1},
		{Kind: "h", Targets: []int{0}, Column: 2, Params: &Params{}},
	}}
	s, err := c.Schedule(0)
	require.NoError(t, err)

	got := s.Gates()
	assert.Equal(t, gates.CNOT, got[0].Kind)
	assert.Equal(t, gates.Toffoli, got[1].Kind)
	assert.Nil(t, got[2].Params, "params dropped on non-parametric kinds")
}

func TestScheduleValidation(t *testing.T) {
	tests := []struct {
		name    string
		circuit Circuit
		limit   bool
	}{
		{"zero qubits", Circuit{NumQubits: 0}, false},
		{"negative qubits", Circuit{NumQubits: -2}, false},
		{"too many qubits", Circuit{NumQubits: 13}, true},
		{"unknown kind", Circuit{NumQubits: 1, Gates: []Gate{{Kind: "U3", Targets: []int{0}}}}, false},
		{"arity low", Circuit{NumQubits: 2, Gates: []Gate{{Kind: gates.CNOT, Targets: []int{0}}}}, false},
		{"arity high", Circuit{NumQubits: 2, Gates: []Gate{{Kind: gates.H, Targets: []int{0, 1}}}}, false},
		{"target out of range", Circuit{NumQubits: 2, Gates: []Gate{{Kind: gates.X, Targets: []int{2}}}}, false},
		{"negative target", Circuit{NumQubits: 2, Gates: []Gate{{Kind: gates.X, Targets: []int{-1}}}}, false},
		{"duplicate targets", Circuit{NumQubits: 2, Gates: []Gate{{Kind: gates.SWAP, Targets: []int{1, 1}}}}, false},
		{"negative column", Circuit{NumQubits: 1, Gates: []Gate{{Kind: gates.X, Targets: []int{0}, Column: -1}}}, false},
		{"column overlap", Circuit{NumQubits: 2, Gates: []Gate{
			{Kind: gates.H, Targets: []int{0}, Column: 3},
			{Kind: gates.CNOT, Targets: []int{1, 0}, Column: 3},
		}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.circuit.Schedule(12)
			require.Error(t, err)
			if tt.limit {
				assert.ErrorIs(t, err, qerr.ErrResourceLimit)
			} else {
				assert.ErrorIs(t, err, qerr.ErrInvalidCircuit)
			}
		})
	}
}

func TestScheduleOverlapNamesGate(t *testing.T) {
	c := Circuit{NumQubits: 2, Gates: []Gate{
		{Kind: gates.H, Targets: []int{0}, Column: 3},
		{Kind: gates.X, Targets: []int{1}, Column: 0},
		{Kind: gates.CNOT, Targets: []int{1, 0}, Column: 3},
	}}
	err := c.Validate(12)

	var ce *qerr.CircuitError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 2, ce.Gate)
}

func TestScheduleHardCeiling(t *testing.T) {
	_, err := Circuit{NumQubits: HardMaxQubits + 1}.Schedule(1 << 20)
	assert.ErrorIs(t, err, qerr.ErrResourceLimit)
}

func TestScheduleRejectsNonFiniteAngle(t *testing.T) {
	g := New(gates.RX, 0, 0).WithAngle(math.NaN())
	_, err := Circuit{NumQubits: 1, Gates: []Gate{g}}.Schedule(12)
	assert.ErrorIs(t, err, qerr.ErrInvalidCircuit)
}

func TestScheduleDoesNotAlias(t *testing.T) {
	c := Circuit{NumQubits: 2, Gates: []Gate{New(gates.CNOT, 0, 0, 1)}}
	s, err := c.Schedule(12)
	require.NoError(t, err)

	c.Gates[0].Targets[0] = 1
	assert.Equal(t, []int{0, 1}, s.Gates()[0].Targets)

	out := s.Gates()
	out[0].Kind = gates.X
	assert.Equal(t, gates.CNOT, s.Gates()[0].Kind)
}

func TestScheduleThrough(t *testing.T) {
	c := Circuit{NumQubits: 2, Gates: []Gate{
		New(gates.H, 0, 0),
		New(gates.CNOT, 2, 0, 1),
		New(gates.X, 5, 1),
	}}
	s, err := c.Schedule(12)
	require.NoError(t, err)

	assert.Len(t, s.Through(-1), 0)
	assert.Len(t, s.Through(0), 1)
	assert.Len(t, s.Through(1), 1)
	assert.Len(t, s.Through(2), 2)
	assert.Len(t, s.Through(100), 3)
}

func TestDepth(t *testing.T) {
	tests := []struct {
		name  string
		gates []Gate
		want  int
	}{
		{"empty", nil, 0},
		{"parallel", []Gate{New(gates.H, 0, 0), New(gates.H, 0, 1), New(gates.H, 0, 2)}, 1},
		{"bell", []Gate{New(gates.H, 0, 0), New(gates.CNOT, 1, 0, 1)}, 2},
		{"gaps do not count", []Gate{New(gates.H, 0, 0), New(gates.X, 9, 0)}, 2},
		{"independent columns collapse", []Gate{New(gates.H, 0, 0), New(gates.X, 4, 1)}, 1},
		{"ghz", []Gate{New(gates.H, 0, 0), New(gates.CNOT, 1, 0, 1), New(gates.CNOT, 2, 1, 2)}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Circuit{NumQubits: 3, Gates: tt.gates}.Schedule(12)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Depth())
		})
	}
}

func TestAtAndCrossing(t *testing.T) {
	c := Circuit{NumQubits: 3, Gates: []Gate{New(gates.CNOT, 0, 0, 2)}}
	s, err := c.Schedule(12)
	require.NoError(t, err)

	g, ok := s.At(0, 2)
	require.True(t, ok)
	assert.Equal(t, gates.CNOT, g.Kind)

	_, ok = s.At(0, 1)
	assert.False(t, ok)
	_, ok = s.Crossing(0, 1)
	assert.True(t, ok)
	_, ok = s.Crossing(1, 1)
	assert.False(t, ok)
}

func TestCompact(t *testing.T) {
	c := Circuit{NumQubits: 2, Gates: []Gate{
		New(gates.H, 3, 0),
		New(gates.X, 7, 1),
		New(gates.CNOT, 9, 0, 1),
	}}
	got := Compact(c)
	assert.Equal(t, 0, got.Gates[0].Column)
	assert.Equal(t, 0, got.Gates[1].Column)
	assert.Equal(t, 1, got.Gates[2].Column)
	assert.Equal(t, 3, c.Gates[0].Column, "input untouched")
}

func TestGateAngleDefault(t *testing.T) {
	assert.Equal(t, 0.0, New(gates.RZ, 0, 0).Angle())
	assert.Equal(t, 0.5, New(gates.RZ, 0, 0).WithAngle(0.5).Angle())
}

func TestGateColumnAndPosition(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"column only", `{"type":"H","targets":[0],"column":2}`, 2},
		{"explicit zero column", `{"type":"H","targets":[0],"column":0}`, 0},
		{"position only", `{"type":"H","qubitIndices":[0],"position":3}`, 3},
		{"matching", `{"type":"H","targets":[0],"column":4,"position":4}`, 4},
		{"neither", `{"type":"H","targets":[0]}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Gate
			require.NoError(t, json.Unmarshal([]byte(tt.in), &g))
			assert.Equal(t, tt.want, g.Column)
			assert.Equal(t, []int{0}, g.Targets)
		})
	}

	var g Gate
	err := json.Unmarshal([]byte(`{"type":"H","targets":[0],"column":0,"position":3}`), &g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disagree")
}
