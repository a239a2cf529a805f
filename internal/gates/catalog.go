// Package gates is the static catalog of supported gate kinds: their arity,
// 2x2 matrices for single-qubit kinds, and the action rule for multi-qubit
// kinds.
package gates

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// Kind names a gate in the catalog.
type Kind string

const (
	H       Kind = "H"
	X       Kind = "X"
	Y       Kind = "Y"
	Z       Kind = "Z"
	S       Kind = "S"
	Sdg     Kind = "Sdg"
	T       Kind = "T"
	Tdg     Kind = "Tdg"
	RX      Kind = "RX"
	RY      Kind = "RY"
	RZ      Kind = "RZ"
	CNOT    Kind = "CNOT"
	CZ      Kind = "CZ"
	SWAP    Kind = "SWAP"
	Toffoli Kind = "Toffoli"
)

// Action tells the engine how a gate transforms the state vector.
type Action int

const (
	// Unitary applies a dense 2x2 matrix to a single target.
	Unitary Action = iota
	// ControlledFlip flips the last target when every other target is 1.
	ControlledFlip
	// ControlledPhase negates amplitudes where every target is 1.
	ControlledPhase
	// Exchange swaps the two target bits.
	Exchange
)

// Category groups related kinds for listings.
type Category string

const (
	SingleQubit Category = "Single Qubit"
	Rotation    Category = "Rotation"
	MultiQubit  Category = "Multi Qubit"
)

// Spec describes one catalog entry.
type Spec struct {
	Kind        Kind
	Name        string
	Category    Category
	Arity       int
	Parametric  bool
	Action      Action
	Description string

	// Glyphs holds the wire symbol drawn for each target position.
	Glyphs []string

	matrix func(theta float64) Matrix
}

// Matrix returns the 2x2 matrix of a single-qubit kind at the given angle.
// The angle is ignored for non-parametric kinds. ok is false for multi-qubit
// kinds, which have no dense 2x2 form.
func (s Spec) Matrix(theta float64) (m Matrix, ok bool) {
	if s.matrix == nil {
		return Matrix{}, false
	}
	return s.matrix(theta), true
}

// Label returns the short name drawn inside a gate box.
func (s Spec) Label() string {
	switch s.Kind {
	case Sdg:
		return "S†"
	case Tdg:
		return "T†"
	default:
		return string(s.Kind)
	}
}

var invSqrt2 = complex(1/math.Sqrt2, 0)

func constant(m Matrix) func(float64) Matrix {
	return func(float64) Matrix { return m }
}

func phase(theta float64) complex128 {
	return cmplx.Exp(complex(0, theta))
}

// catalog lists every kind in display order.
var catalog = []Spec{
	{
		Kind: H, Name: "Hadamard", Category: SingleQubit, Arity: 1,
		Description: "Maps |0> to |+> and |1> to |->.",
		matrix:      constant(Matrix{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}),
	},
	{
		Kind: X, Name: "Pauli-X (NOT)", Category: SingleQubit, Arity: 1,
		Description: "Bit flip.",
		matrix:      constant(Matrix{{0, 1}, {1, 0}}),
	},
	{
		Kind: Y, Name: "Pauli-Y", Category: SingleQubit, Arity: 1,
		Description: "Bit and phase flip.",
		matrix:      constant(Matrix{{0, -1i}, {1i, 0}}),
	},
	{
		Kind: Z, Name: "Pauli-Z", Category: SingleQubit, Arity: 1,
		Description: "Phase flip.",
		matrix:      constant(Matrix{{1, 0}, {0, -1}}),
	},
	{
		Kind: S, Name: "Phase (S)", Category: SingleQubit, Arity: 1,
		Description: "Quarter-turn phase, diag(1, i).",
		matrix:      constant(Matrix{{1, 0}, {0, 1i}}),
	},
	{
		Kind: Sdg, Name: "Phase Dagger (S†)", Category: SingleQubit, Arity: 1,
		Description: "Inverse of S, diag(1, -i).",
		matrix:      constant(Matrix{{1, 0}, {0, -1i}}),
	},
	{
		Kind: T, Name: "T Gate", Category: SingleQubit, Arity: 1,
		Description: "Eighth-turn phase, diag(1, e^{i pi/4}).",
		matrix:      constant(Matrix{{1, 0}, {0, phase(math.Pi / 4)}}),
	},
	{
		Kind: Tdg, Name: "T Dagger (T†)", Category: SingleQubit, Arity: 1,
		Description: "Inverse of T, diag(1, e^{-i pi/4}).",
		matrix:      constant(Matrix{{1, 0}, {0, phase(-math.Pi / 4)}}),
	},
	{
		Kind: RX, Name: "Rotate X", Category: Rotation, Arity: 1, Parametric: true,
		Description: "Rotation about the X axis by angle.",
		matrix: func(theta float64) Matrix {
			c := complex(math.Cos(theta/2), 0)
			js := complex(0, -math.Sin(theta/2))
			return Matrix{{c, js}, {js, c}}
		},
	},
	{
		Kind: RY, Name: "Rotate Y", Category: Rotation, Arity: 1, Parametric: true,
		Description: "Rotation about the Y axis by angle.",
		matrix: func(theta float64) Matrix {
			c := complex(math.Cos(theta/2), 0)
			s := complex(math.Sin(theta/2), 0)
			return Matrix{{c, -s}, {s, c}}
		},
	},
	{
		Kind: RZ, Name: "Rotate Z", Category: Rotation, Arity: 1, Parametric: true,
		Description: "Rotation about the Z axis by angle.",
		matrix: func(theta float64) Matrix {
			return Matrix{{phase(-theta / 2), 0}, {0, phase(theta / 2)}}
		},
	},
	{
		Kind: CNOT, Name: "Controlled NOT", Category: MultiQubit, Arity: 2, Action: ControlledFlip,
		Description: "Flips the target when the control is 1. Targets: control, target.",
		Glyphs:      []string{"●", "⊕"},
	},
	{
		Kind: CZ, Name: "Controlled Z", Category: MultiQubit, Arity: 2, Action: ControlledPhase,
		Description: "Negates the amplitude when both qubits are 1.",
		Glyphs:      []string{"●", "●"},
	},
	{
		Kind: SWAP, Name: "Swap", Category: MultiQubit, Arity: 2, Action: Exchange,
		Description: "Exchanges two qubits.",
		Glyphs:      []string{"×", "×"},
	},
	{
		Kind: Toffoli, Name: "Toffoli (CCX)", Category: MultiQubit, Arity: 3, Action: ControlledFlip,
		Description: "Flips the target when both controls are 1. Targets: control, control, target.",
		Glyphs:      []string{"●", "●", "⊕"},
	},
}

var byKind = func() map[Kind]Spec {
	m := make(map[Kind]Spec, len(catalog))
	for _, s := range catalog {
		m[s.Kind] = s
	}
	return m
}()

// aliases maps upper-cased spellings accepted on input to catalog kinds.
var aliases = map[string]Kind{
	"H":       H,
	"X":       X,
	"NOT":     X,
	"Y":       Y,
	"Z":       Z,
	"S":       S,
	"SDG":     Sdg,
	"SDAG":    Sdg,
	"T":       T,
	"TDG":     Tdg,
	"TDAG":    Tdg,
	"RX":      RX,
	"RY":      RY,
	"RZ":      RZ,
	"CNOT":    CNOT,
	"CX":      CNOT,
	"CZ":      CZ,
	"SWAP":    SWAP,
	"TOFFOLI": Toffoli,
	"CCX":     Toffoli,
	"CCNOT":   Toffoli,
}

// Lookup returns the catalog entry for k.
func Lookup(k Kind) (Spec, bool) {
	s, ok := byKind[k]
	return s, ok
}

// ParseKind resolves a case-insensitive gate name or alias.
func ParseKind(name string) (Kind, error) {
	if k, ok := aliases[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown gate kind %q", name)
}

// All returns every catalog entry in display order.
func All() []Spec {
	out := make([]Spec, len(catalog))
	copy(out, catalog)
	return out
}

// ByCategory returns the entries of one category in display order.
func ByCategory(c Category) []Spec {
	var out []Spec
	for _, s := range catalog {
		if s.Category == c {
			out = append(out, s)
		}
	}
	return out
}

// Categories returns the categories in display order.
func Categories() []Category {
	return []Category{SingleQubit, Rotation, MultiQubit}
}

// Inverse returns the kind and angle that undo a gate of kind k at angle
// theta. Every other kind in the catalog is self-inverse.
func Inverse(k Kind, theta float64) (Kind, float64) {
	switch k {
	case S:
		return Sdg, 0
	case Sdg:
		return S, 0
	case T:
		return Tdg, 0
	case Tdg:
		return T, 0
	case RX, RY, RZ:
		return k, -theta
	default:
		return k, theta
	}
}
