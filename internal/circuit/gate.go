package circuit

import (
	"fmt"

	json "github.com/goccy/go-json"

	"qsim/internal/gates"
)

// Params holds optional gate parameters. Only the rotation angle is read.
type Params struct {
	Angle *Angle `json:"angle,omitempty" yaml:"angle,omitempty"`
}

// Gate is one gate instance placed on the circuit.
//
// Targets is ordered: CNOT takes (control, target) and Toffoli takes
// (control, control, target).
type Gate struct {
	ID      string     `json:"id,omitempty" yaml:"id,omitempty"`
	Kind    gates.Kind `json:"type" yaml:"type"`
	Targets []int      `json:"targets" yaml:"targets"`
	Column  int        `json:"column" yaml:"column"`
	Params  *Params    `json:"params,omitempty" yaml:"params,omitempty"`
}

// Angle returns the rotation angle, defaulting to 0 when none is set.
func (g Gate) Angle() float64 {
	if g.Params == nil || g.Params.Angle == nil {
		return 0
	}
	return float64(*g.Params.Angle)
}

// WithAngle returns a copy of g carrying the given angle.
func (g Gate) WithAngle(theta float64) Gate {
	a := Angle(theta)
	g.Params = &Params{Angle: &a}
	return g
}

// Touches reports whether the gate acts on qubit q.
func (g Gate) Touches(q int) bool {
	for _, t := range g.Targets {
		if t == q {
			return true
		}
	}
	return false
}

// Span returns the lowest and highest qubit the gate acts on.
func (g Gate) Span() (lo, hi int) {
	if len(g.Targets) == 0 {
		return -1, -1
	}
	lo, hi = g.Targets[0], g.Targets[0]
	for _, t := range g.Targets[1:] {
		lo = min(lo, t)
		hi = max(hi, t)
	}
	return lo, hi
}

// UnmarshalJSON accepts both the targets/column field names and the
// qubitIndices/position names used by the browser frontend. A gate that
// sets column and position to different values is rejected.
func (g *Gate) UnmarshalJSON(b []byte) error {
	type plain Gate
	var w struct {
		plain
		Column       *int  `json:"column"`
		QubitIndices []int `json:"qubitIndices"`
		Position     *int  `json:"position"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*g = Gate(w.plain)
	if len(g.Targets) == 0 && len(w.QubitIndices) > 0 {
		g.Targets = w.QubitIndices
	}
	switch {
	case w.Column != nil && w.Position != nil && *w.Column != *w.Position:
		return fmt.Errorf("gate %s: column %d and position %d disagree", g.Kind, *w.Column, *w.Position)
	case w.Column != nil:
		g.Column = *w.Column
	case w.Position != nil:
		g.Column = *w.Position
	}
	return nil
}

// New returns a gate of kind k on the given targets at column col.
func New(k gates.Kind, col int, targets ...int) Gate {
	return Gate{Kind: k, Targets: targets, Column: col}
}
