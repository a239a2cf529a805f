// Package statevec evolves a dense n-qubit state vector through a circuit
// schedule.
//
// Qubit 0 is the most significant bit of the basis index. The engine
// addresses qubit q through the mask 1 << (n-1-q), so index bits read left to
// right in qubit order and no reordering pass is needed before measurement.
package statevec

import (
	"fmt"
	"math"
	"math/cmplx"

	"qsim/internal/circuit"
	"qsim/internal/gates"
	"qsim/internal/qerr"
)

// State is a pure n-qubit state. It is not safe for concurrent mutation.
type State struct {
	n    int
	amps []complex128
}

// New returns |0...0> on n qubits. n must be in [1, circuit.HardMaxQubits].
func New(n int) (*State, error) {
	if n <= 0 {
		return nil, &qerr.CircuitError{Gate: -1, Reason: fmt.Sprintf("numQubits must be positive, got %d", n)}
	}
	if n > circuit.HardMaxQubits {
		return nil, &qerr.LimitError{Resource: "qubits", Requested: int64(n), Limit: circuit.HardMaxQubits}
	}
	amps := make([]complex128, 1<<n)
	amps[0] = 1
	return &State{n: n, amps: amps}, nil
}

// Bytes returns the memory taken by the amplitudes of an n-qubit state.
func Bytes(n int) int64 {
	return int64(16) << n
}

// Evolve prepares |0...0> and applies every gate in the schedule.
func Evolve(s *circuit.Schedule) (*State, error) {
	return EvolveThrough(s, s.LastColumn())
}

// EvolveThrough applies only the gates whose column is at most col.
func EvolveThrough(s *circuit.Schedule, col int) (*State, error) {
	st, err := New(s.NumQubits())
	if err != nil {
		return nil, err
	}
	for i, g := range s.Through(col) {
		if err := st.Apply(g); err != nil {
			return nil, fmt.Errorf("applying gate %d (%s): %w", i, g.Kind, err)
		}
	}
	return st, nil
}

// NumQubits returns n.
func (s *State) NumQubits() int { return s.n }

// Len returns 2^n.
func (s *State) Len() int { return len(s.amps) }

// Amplitude returns the amplitude of basis index i.
func (s *State) Amplitude(i int) complex128 { return s.amps[i] }

// Amplitudes returns a copy of the amplitude vector.
func (s *State) Amplitudes() []complex128 {
	out := make([]complex128, len(s.amps))
	copy(out, s.amps)
	return out
}

// Probability returns |amp_i|^2.
func (s *State) Probability(i int) float64 {
	a := s.amps[i]
	return real(a)*real(a) + imag(a)*imag(a)
}

// Norm returns the sum of squared magnitudes.
func (s *State) Norm() float64 {
	var sum float64
	for i := range s.amps {
		sum += s.Probability(i)
	}
	return sum
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	return &State{n: s.n, amps: s.Amplitudes()}
}

// ApproxEqual reports whether both states have the same width and every
// amplitude differs by at most tol.
func (s *State) ApproxEqual(o *State, tol float64) bool {
	if s.n != o.n {
		return false
	}
	for i := range s.amps {
		if cmplx.Abs(s.amps[i]-o.amps[i]) > tol {
			return false
		}
	}
	return true
}

// mask returns the index bit of qubit q.
func (s *State) mask(q int) int {
	return 1 << (s.n - 1 - q)
}

// Apply applies one gate in place. The gate is checked against the catalog
// and the register width, so a gate that did not come from a Schedule is
// still safe to pass.
func (s *State) Apply(g circuit.Gate) error {
	spec, ok := gates.Lookup(g.Kind)
	if !ok {
		return &qerr.CircuitError{Gate: -1, Reason: fmt.Sprintf("unknown gate kind %q", g.Kind)}
	}
	if len(g.Targets) != spec.Arity {
		return &qerr.CircuitError{Gate: -1, Reason: fmt.Sprintf("%s takes %d target(s), got %d", g.Kind, spec.Arity, len(g.Targets))}
	}
	seen := 0
	for _, q := range g.Targets {
		if q < 0 || q >= s.n {
			return &qerr.CircuitError{Gate: -1, Reason: fmt.Sprintf("target %d out of range [0, %d)", q, s.n)}
		}
		if seen&s.mask(q) != 0 {
			return &qerr.CircuitError{Gate: -1, Reason: fmt.Sprintf("duplicate target %d", q)}
		}
		seen |= s.mask(q)
	}

	switch spec.Action {
	case gates.Unitary:
		m, _ := spec.Matrix(g.Angle())
		s.applySingle(g.Targets[0], m)
	case gates.ControlledFlip:
		last := len(g.Targets) - 1
		s.applyControlledFlip(g.Targets[:last], g.Targets[last])
	case gates.ControlledPhase:
		s.applyControlledPhase(g.Targets)
	case gates.Exchange:
		s.applySwap(g.Targets[0], g.Targets[1])
	}
	return nil
}

// applySingle visits each (i0, i1) pair differing only in the target bit
// exactly once. Diagonal matrices skip the pair read.
func (s *State) applySingle(q int, m gates.Matrix) {
	bit := s.mask(q)
	size := len(s.amps)

	if m.Diagonal() {
		d0, d1 := m[0][0], m[1][1]
		for i := range size {
			if i&bit == 0 {
				if d0 != 1 {
					s.amps[i] *= d0
				}
			} else if d1 != 1 {
				s.amps[i] *= d1
			}
		}
		return
	}

	for base := 0; base < size; base += bit << 1 {
		for i0 := base; i0 < base+bit; i0++ {
			i1 := i0 | bit
			s.amps[i0], s.amps[i1] = m.Apply(s.amps[i0], s.amps[i1])
		}
	}
}

// applyControlledFlip swaps each pair differing in the target bit whose
// control bits are all set, starting from the member with the target clear.
func (s *State) applyControlledFlip(controls []int, target int) {
	cmask := 0
	for _, c := range controls {
		cmask |= s.mask(c)
	}
	tbit := s.mask(target)
	for i := range s.amps {
		if i&cmask == cmask && i&tbit == 0 {
			j := i | tbit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// applyControlledPhase negates amplitudes with every listed bit set.
func (s *State) applyControlledPhase(qubits []int) {
	all := 0
	for _, q := range qubits {
		all |= s.mask(q)
	}
	for i := range s.amps {
		if i&all == all {
			s.amps[i] = -s.amps[i]
		}
	}
}

// applySwap exchanges amplitudes of index pairs that differ by swapping bits
// a and b, visiting only the member with a set and b clear.
func (s *State) applySwap(a, b int) {
	abit, bbit := s.mask(a), s.mask(b)
	for i := range s.amps {
		if i&abit != 0 && i&bbit == 0 {
			j := i ^ abit ^ bbit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// QubitProbability is the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64 `json:"prob0"`
	Prob1 float64 `json:"prob1"`
}

// Marginals returns P(0) and P(1) for every qubit.
func (s *State) Marginals() []QubitProbability {
	probs := make([]QubitProbability, s.n)
	for i := range s.amps {
		p := s.Probability(i)
		if p == 0 {
			continue
		}
		for q := range s.n {
			if i&s.mask(q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// BlochVector is a point in the Bloch ball. Its length is 1 for a qubit that
// is not entangled with the rest of the register and shrinks toward 0 as
// entanglement grows.
type BlochVector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Length returns the Euclidean norm of v.
func (v BlochVector) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Bloch returns the Bloch vector of qubit q from its reduced density matrix,
// in a single pass over the amplitudes.
func (s *State) Bloch(q int) BlochVector {
	bit := s.mask(q)
	var rho00, rho11 float64
	var rho01 complex128
	for i0 := range s.amps {
		if i0&bit != 0 {
			continue
		}
		a0, a1 := s.amps[i0], s.amps[i0|bit]
		rho00 += real(a0)*real(a0) + imag(a0)*imag(a0)
		rho11 += real(a1)*real(a1) + imag(a1)*imag(a1)
		rho01 += a0 * cmplx.Conj(a1)
	}
	return BlochVector{
		X: 2 * real(rho01),
		Y: -2 * imag(rho01),
		Z: rho00 - rho11,
	}
}

// BlochVectors returns the Bloch vector of every qubit.
func (s *State) BlochVectors() []BlochVector {
	out := make([]BlochVector, s.n)
	for q := range s.n {
		out[q] = s.Bloch(q)
	}
	return out
}
