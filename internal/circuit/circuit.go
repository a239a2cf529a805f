// Package circuit holds the circuit model: gate instances, validation into an
// immutable column-ordered Schedule, and OpenQASM 2.0 import and export.
package circuit

import (
	"fmt"
	"math"
	"slices"

	"qsim/internal/gates"
	"qsim/internal/qerr"
)

// HardMaxQubits is the ceiling no configuration can raise. A 24-qubit state
// vector already takes 256 MiB.
const HardMaxQubits = 24

// Circuit is the unvalidated description of a circuit as it arrives from a
// file or request.
type Circuit struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	NumQubits int    `json:"numQubits" yaml:"numQubits"`
	Gates     []Gate `json:"gates" yaml:"gates"`
}

// Schedule is a validated circuit. Gates are ordered by column ascending,
// keeping source order within a column, and no two gates in one column share
// a qubit. A Schedule is never mutated after construction.
type Schedule struct {
	name      string
	numQubits int
	gates     []Gate
	layers    []int
}

// Schedule validates c against maxQubits and returns its ordered form.
// maxQubits <= 0 means HardMaxQubits.
//
// Errors wrap qerr.ErrInvalidCircuit for malformed input and
// qerr.ErrResourceLimit when numQubits exceeds maxQubits. The qubit bound is
// checked before anything proportional to 2^n is allocated.
func (c Circuit) Schedule(maxQubits int) (*Schedule, error) {
	if maxQubits <= 0 || maxQubits > HardMaxQubits {
		maxQubits = HardMaxQubits
	}
	if c.NumQubits <= 0 {
		return nil, &qerr.CircuitError{Gate: -1, Reason: fmt.Sprintf("numQubits must be positive, got %d", c.NumQubits)}
	}
	if c.NumQubits > maxQubits {
		return nil, &qerr.LimitError{Resource: "qubits", Requested: int64(c.NumQubits), Limit: int64(maxQubits)}
	}

	ordered := make([]Gate, len(c.Gates))
	for i, g := range c.Gates {
		ng, err := normalize(g, i, c.NumQubits)
		if err != nil {
			return nil, err
		}
		ordered[i] = ng
	}

	// source indices travel with the sort so overlap errors can name the gate
	idx := make([]int, len(ordered))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return ordered[a].Column - ordered[b].Column
	})

	sorted := make([]Gate, len(ordered))
	occupied := make(map[int]int, c.NumQubits)
	col := -1
	for pos, src := range idx {
		g := ordered[src]
		if g.Column != col {
			col = g.Column
			clear(occupied)
		}
		for _, q := range g.Targets {
			if other, busy := occupied[q]; busy {
				return nil, qerr.Circuitf(src, "qubit %d already used by gate %d in column %d", q, other, col)
			}
			occupied[q] = src
		}
		sorted[pos] = g
	}

	return &Schedule{
		name:      c.Name,
		numQubits: c.NumQubits,
		gates:     sorted,
		layers:    Layer(sorted),
	}, nil
}

// Validate reports whether c would produce a Schedule under maxQubits.
func (c Circuit) Validate(maxQubits int) error {
	_, err := c.Schedule(maxQubits)
	return err
}

// normalize resolves the gate kind to its canonical name and checks arity,
// target range, distinctness, column and angle.
func normalize(g Gate, idx, n int) (Gate, error) {
	kind, err := gates.ParseKind(string(g.Kind))
	if err != nil {
		return Gate{}, qerr.Circuitf(idx, "%v", err)
	}
	spec, _ := gates.Lookup(kind)

	if len(g.Targets) != spec.Arity {
		return Gate{}, qerr.Circuitf(idx, "%s takes %d target(s), got %d", kind, spec.Arity, len(g.Targets))
	}
	for i, q := range g.Targets {
		if q < 0 || q >= n {
			return Gate{}, qerr.Circuitf(idx, "target %d out of range [0, %d)", q, n)
		}
		if slices.Contains(g.Targets[:i], q) {
			return Gate{}, qerr.Circuitf(idx, "duplicate target %d", q)
		}
	}
	if g.Column < 0 {
		return Gate{}, qerr.Circuitf(idx, "column must be non-negative, got %d", g.Column)
	}
	if spec.Parametric {
		if a := g.Angle(); math.IsNaN(a) || math.IsInf(a, 0) {
			return Gate{}, qerr.Circuitf(idx, "angle must be finite")
		}
	}

	out := g
	out.Kind = kind
	out.Targets = slices.Clone(g.Targets)
	if !spec.Parametric {
		out.Params = nil
	}
	return out, nil
}

// Name returns the circuit name, if any.
func (s *Schedule) Name() string { return s.name }

// NumQubits returns the register width.
func (s *Schedule) NumQubits() int { return s.numQubits }

// Len returns the number of gates.
func (s *Schedule) Len() int { return len(s.gates) }

// Gates returns a copy of the ordered gates.
func (s *Schedule) Gates() []Gate { return slices.Clone(s.gates) }

// Each calls fn for every gate in order until fn returns false.
func (s *Schedule) Each(fn func(Gate) bool) {
	for _, g := range s.gates {
		if !fn(g) {
			return
		}
	}
}

// Through returns the gates whose column is at most col, in order.
func (s *Schedule) Through(col int) []Gate {
	n, _ := slices.BinarySearchFunc(s.gates, col+1, func(g Gate, c int) int {
		return g.Column - c
	})
	return slices.Clone(s.gates[:n])
}

// Columns returns the distinct occupied columns in ascending order.
func (s *Schedule) Columns() []int {
	var cols []int
	for _, g := range s.gates {
		if len(cols) == 0 || cols[len(cols)-1] != g.Column {
			cols = append(cols, g.Column)
		}
	}
	return cols
}

// LastColumn returns the highest occupied column, or -1 for an empty circuit.
func (s *Schedule) LastColumn() int {
	if len(s.gates) == 0 {
		return -1
	}
	return s.gates[len(s.gates)-1].Column
}

// Depth returns the length of the longest chain of gates that share qubits.
// Empty columns and gates that could slide left do not add to it.
func (s *Schedule) Depth() int {
	d := 0
	for _, l := range s.layers {
		d = max(d, l+1)
	}
	return d
}

// At returns the gate occupying (col, qubit) and whether one exists.
// A qubit strictly between the targets of a multi-qubit gate is not
// occupied; use Crossing for that.
func (s *Schedule) At(col, qubit int) (Gate, bool) {
	for _, g := range s.inColumn(col) {
		if g.Touches(qubit) {
			return g, true
		}
	}
	return Gate{}, false
}

// Crossing returns the multi-qubit gate in col whose span passes over qubit
// without acting on it.
func (s *Schedule) Crossing(col, qubit int) (Gate, bool) {
	for _, g := range s.inColumn(col) {
		lo, hi := g.Span()
		if qubit > lo && qubit < hi && !g.Touches(qubit) {
			return g, true
		}
	}
	return Gate{}, false
}

func (s *Schedule) inColumn(col int) []Gate {
	lo, _ := slices.BinarySearchFunc(s.gates, col, func(g Gate, c int) int { return g.Column - c })
	hi := lo
	for hi < len(s.gates) && s.gates[hi].Column == col {
		hi++
	}
	return s.gates[lo:hi]
}

// Circuit returns the ordered, canonical description of the schedule.
func (s *Schedule) Circuit() Circuit {
	return Circuit{Name: s.name, NumQubits: s.numQubits, Gates: s.Gates()}
}
