// Package codegen exports a circuit as source code for other quantum
// toolkits.
package codegen

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"qsim/internal/circuit"
	"qsim/internal/gates"
)

// Framework names an export target.
type Framework string

const (
	QASM      Framework = "qasm"
	Qiskit    Framework = "qiskit"
	PennyLane Framework = "pennylane"
	Cirq      Framework = "cirq"
	Braket    Framework = "braket"
	QSharp    Framework = "qsharp"
)

// Frameworks returns every supported target in display order.
func Frameworks() []Framework {
	return []Framework{QASM, Qiskit, PennyLane, Cirq, Braket, QSharp}
}

// ParseFramework resolves a case-insensitive framework name.
func ParseFramework(s string) (Framework, error) {
	f := Framework(strings.ToLower(strings.TrimSpace(s)))
	if f == "q#" {
		f = QSharp
	}
	if slices.Contains(Frameworks(), f) {
		return f, nil
	}
	return "", fmt.Errorf("unknown framework %q (want one of %v)", s, Frameworks())
}

// Extension returns the conventional file extension for f.
func (f Framework) Extension() string {
	switch f {
	case QASM:
		return ".qasm"
	case QSharp:
		return ".qs"
	default:
		return ".py"
	}
}

// emitter renders one framework. Gates arrive in schedule order.
type emitter struct {
	header func(sb *strings.Builder, n int)
	gate   func(g circuit.Gate) string
	footer func(sb *strings.Builder, n int)
	indent string
}

var emitters = map[Framework]emitter{
	Qiskit:    {header: qiskitHeader, gate: qiskitGate, footer: qiskitFooter},
	PennyLane: {header: pennylaneHeader, gate: pennylaneGate, footer: pennylaneFooter, indent: "    "},
	Cirq:      {header: cirqHeader, gate: cirqGate, footer: cirqFooter},
	Braket:    {header: braketHeader, gate: braketGate, footer: braketFooter},
	QSharp:    {header: qsharpHeader, gate: qsharpGate, footer: qsharpFooter, indent: "        "},
}

// Generate renders s for framework f.
func Generate(s *circuit.Schedule, f Framework) (string, error) {
	if f == QASM {
		return s.QASM(), nil
	}
	e, ok := emitters[f]
	if !ok {
		return "", fmt.Errorf("unknown framework %q", f)
	}

	var sb strings.Builder
	n := s.NumQubits()
	e.header(&sb, n)
	if s.Len() == 0 {
		sb.WriteString(e.indent + comment(f) + " Add gates to your circuit\n")
	} else {
		sb.WriteString(e.indent + comment(f) + " Apply quantum gates\n")
		s.Each(func(g circuit.Gate) bool {
			sb.WriteString(e.indent + e.gate(g) + "\n")
			return true
		})
	}
	e.footer(&sb, n)
	return sb.String(), nil
}

func comment(f Framework) string {
	if f == QSharp {
		return "//"
	}
	return "#"
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func joinInts(qs []int, format string) string {
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = fmt.Sprintf(format, q)
	}
	return strings.Join(parts, ", ")
}

// pyAngle renders an angle as a Python expression over math.pi.
func pyAngle(g circuit.Gate) string {
	return circuit.FormatAngle(g.Angle())
}

// doubleLiteral renders v so that it parses as a floating literal in
// languages that distinguish 0 from 0.0.
func doubleLiteral(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ──────────────────────────── Qiskit ────────────────────────────

func qiskitHeader(sb *strings.Builder, n int) {
	sb.WriteString("# IBM Qiskit\n")
	sb.WriteString("from math import pi\n\n")
	sb.WriteString("from qiskit import QuantumCircuit\n\n")
	fmt.Fprintf(sb, "# Create a quantum circuit with %d qubit%s\n", n, plural(n))
	fmt.Fprintf(sb, "qc = QuantumCircuit(%d)\n\n", n)
}

func qiskitGate(g circuit.Gate) string {
	qs := joinInts(g.Targets, "%d")
	name := circuit.QASMName(g.Kind)
	if spec, _ := gates.Lookup(g.Kind); spec.Parametric {
		return fmt.Sprintf("qc.%s(%s, %s)", name, pyAngle(g), qs)
	}
	return fmt.Sprintf("qc.%s(%s)", name, qs)
}

func qiskitFooter(sb *strings.Builder, _ int) {
	sb.WriteString("\n# Measure all qubits\n")
	sb.WriteString("qc.measure_all()\n\n")
	sb.WriteString("# Display the circuit\n")
	sb.WriteString("print(qc.draw())\n")
}

// ──────────────────────────── PennyLane ────────────────────────────

var pennylaneOps = map[gates.Kind]string{
	gates.H:       "qml.Hadamard",
	gates.X:       "qml.PauliX",
	gates.Y:       "qml.PauliY",
	gates.Z:       "qml.PauliZ",
	gates.S:       "qml.S",
	gates.Sdg:     "qml.adjoint(qml.S)",
	gates.T:       "qml.T",
	gates.Tdg:     "qml.adjoint(qml.T)",
	gates.RX:      "qml.RX",
	gates.RY:      "qml.RY",
	gates.RZ:      "qml.RZ",
	gates.CNOT:    "qml.CNOT",
	gates.CZ:      "qml.CZ",
	gates.SWAP:    "qml.SWAP",
	gates.Toffoli: "qml.Toffoli",
}

func pennylaneHeader(sb *strings.Builder, n int) {
	sb.WriteString("# PennyLane\n")
	sb.WriteString("from math import pi\n\n")
	sb.WriteString("import pennylane as qml\n\n")
	fmt.Fprintf(sb, "# Create a quantum device with %d qubit%s\n", n, plural(n))
	fmt.Fprintf(sb, "dev = qml.device('default.qubit', wires=%d)\n\n", n)
	sb.WriteString("@qml.qnode(dev)\n")
	sb.WriteString("def circuit():\n")
}

func pennylaneGate(g circuit.Gate) string {
	wires := strconv.Itoa(g.Targets[0])
	if len(g.Targets) > 1 {
		wires = "[" + joinInts(g.Targets, "%d") + "]"
	}
	op := pennylaneOps[g.Kind]
	if spec, _ := gates.Lookup(g.Kind); spec.Parametric {
		return fmt.Sprintf("%s(%s, wires=%s)", op, pyAngle(g), wires)
	}
	return fmt.Sprintf("%s(wires=%s)", op, wires)
}

func pennylaneFooter(sb *strings.Builder, n int) {
	sb.WriteString("\n    # Return measurement probabilities\n")
	fmt.Fprintf(sb, "    return qml.probs(wires=range(%d))\n\n", n)
	sb.WriteString("# Execute the circuit\n")
	sb.WriteString("result = circuit()\n")
	sb.WriteString("print(result)\n")
}

// ──────────────────────────── Cirq ────────────────────────────

var cirqOps = map[gates.Kind]string{
	gates.H:       "cirq.H",
	gates.X:       "cirq.X",
	gates.Y:       "cirq.Y",
	gates.Z:       "cirq.Z",
	gates.S:       "cirq.S",
	gates.Sdg:     "(cirq.S**-1)",
	gates.T:       "cirq.T",
	gates.Tdg:     "(cirq.T**-1)",
	gates.RX:      "cirq.rx",
	gates.RY:      "cirq.ry",
	gates.RZ:      "cirq.rz",
	gates.CNOT:    "cirq.CNOT",
	gates.CZ:      "cirq.CZ",
	gates.SWAP:    "cirq.SWAP",
	gates.Toffoli: "cirq.TOFFOLI",
}

func cirqHeader(sb *strings.Builder, n int) {
	sb.WriteString("# Google Cirq\n")
	sb.WriteString("from math import pi\n\n")
	sb.WriteString("import cirq\n\n")
	sb.WriteString("# Create qubits\n")
	fmt.Fprintf(sb, "qubits = [cirq.LineQubit(i) for i in range(%d)]\n\n", n)
	sb.WriteString("# Create a circuit\n")
	sb.WriteString("circuit = cirq.Circuit()\n\n")
}

func cirqGate(g circuit.Gate) string {
	qs := joinInts(g.Targets, "qubits[%d]")
	op := cirqOps[g.Kind]
	if spec, _ := gates.Lookup(g.Kind); spec.Parametric {
		op = fmt.Sprintf("%s(%s)", op, pyAngle(g))
	}
	return fmt.Sprintf("circuit.append(%s(%s))", op, qs)
}

func cirqFooter(sb *strings.Builder, _ int) {
	sb.WriteString("\n# Add measurements\n")
	sb.WriteString("circuit.append(cirq.measure(*qubits, key=\"result\"))\n\n")
	sb.WriteString("# Display the circuit\n")
	sb.WriteString("print(circuit)\n")
}

// ──────────────────────────── Amazon Braket ────────────────────────────

var braketOps = map[gates.Kind]string{
	gates.H:       "h",
	gates.X:       "x",
	gates.Y:       "y",
	gates.Z:       "z",
	gates.S:       "s",
	gates.Sdg:     "si",
	gates.T:       "t",
	gates.Tdg:     "ti",
	gates.RX:      "rx",
	gates.RY:      "ry",
	gates.RZ:      "rz",
	gates.CNOT:    "cnot",
	gates.CZ:      "cz",
	gates.SWAP:    "swap",
	gates.Toffoli: "ccnot",
}

func braketHeader(sb *strings.Builder, n int) {
	sb.WriteString("# Amazon Braket\n")
	sb.WriteString("from math import pi\n\n")
	sb.WriteString("from braket.circuits import Circuit\n\n")
	fmt.Fprintf(sb, "# Create a quantum circuit with %d qubit%s\n", n, plural(n))
	sb.WriteString("circuit = Circuit()\n\n")
}

func braketGate(g circuit.Gate) string {
	qs := joinInts(g.Targets, "%d")
	if spec, _ := gates.Lookup(g.Kind); spec.Parametric {
		return fmt.Sprintf("circuit.%s(%s, %s)", braketOps[g.Kind], qs, pyAngle(g))
	}
	return fmt.Sprintf("circuit.%s(%s)", braketOps[g.Kind], qs)
}

func braketFooter(sb *strings.Builder, _ int) {
	sb.WriteString("\n# Display the circuit\n")
	sb.WriteString("print(circuit)\n")
}

// ──────────────────────────── Q# ────────────────────────────

var qsharpOps = map[gates.Kind]string{
	gates.H:       "H",
	gates.X:       "X",
	gates.Y:       "Y",
	gates.Z:       "Z",
	gates.S:       "S",
	gates.Sdg:     "Adjoint S",
	gates.T:       "T",
	gates.Tdg:     "Adjoint T",
	gates.RX:      "Rx",
	gates.RY:      "Ry",
	gates.RZ:      "Rz",
	gates.CNOT:    "CNOT",
	gates.CZ:      "CZ",
	gates.SWAP:    "SWAP",
	gates.Toffoli: "CCNOT",
}

func qsharpHeader(sb *strings.Builder, n int) {
	sb.WriteString("// Microsoft Q#\n")
	sb.WriteString("namespace QuantumCircuit {\n")
	sb.WriteString("    open Microsoft.Quantum.Intrinsic;\n")
	sb.WriteString("    open Microsoft.Quantum.Canon;\n")
	sb.WriteString("    open Microsoft.Quantum.Measurement;\n\n")
	sb.WriteString("    @EntryPoint()\n")
	sb.WriteString("    operation RunCircuit() : Result[] {\n")
	fmt.Fprintf(sb, "        // Allocate %d qubit%s\n", n, plural(n))
	fmt.Fprintf(sb, "        use qubits = Qubit[%d];\n\n", n)
}

func qsharpGate(g circuit.Gate) string {
	qs := joinInts(g.Targets, "qubits[%d]")
	if spec, _ := gates.Lookup(g.Kind); spec.Parametric {
		return fmt.Sprintf("%s(%s, %s);", qsharpOps[g.Kind], doubleLiteral(g.Angle()), qs)
	}
	return fmt.Sprintf("%s(%s);", qsharpOps[g.Kind], qs)
}

func qsharpFooter(sb *strings.Builder, _ int) {
	sb.WriteString("\n        // Measure all qubits\n")
	sb.WriteString("        let results = MeasureEachZ(qubits);\n")
	sb.WriteString("        ResetAll(qubits);\n")
	sb.WriteString("        return results;\n")
	sb.WriteString("    }\n")
	sb.WriteString("}\n")
}
