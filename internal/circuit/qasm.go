package circuit

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qsim/internal/gates"
	"qsim/internal/qerr"
)

// Pre-compiled regexps for QASM parsing.
var (
	qregRegex     = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	cregRegex     = regexp.MustCompile(`^creg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	gateLineRegex = regexp.MustCompile(`^([a-zA-Z]\w*)\s*(?:\(([^)]*)\))?\s+(.+)$`)
	operandRegex  = regexp.MustCompile(`^(\w+)\s*\[\s*(\d+)\s*\]$`)
)

// qasmNames maps catalog kinds to their qelib1.inc spelling.
var qasmNames = map[gates.Kind]string{
	gates.H:       "h",
	gates.X:       "x",
	gates.Y:       "y",
	gates.Z:       "z",
	gates.S:       "s",
	gates.Sdg:     "sdg",
	gates.T:       "t",
	gates.Tdg:     "tdg",
	gates.RX:      "rx",
	gates.RY:      "ry",
	gates.RZ:      "rz",
	gates.CNOT:    "cx",
	gates.CZ:      "cz",
	gates.SWAP:    "swap",
	gates.Toffoli: "ccx",
}

// QASMName returns the qelib1.inc gate name for k.
func QASMName(k gates.Kind) string {
	return qasmNames[k]
}

// QASM renders the schedule as OpenQASM 2.0 with a final measurement of
// every qubit into a classical register of the same width.
func (s *Schedule) QASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	if s.name != "" {
		fmt.Fprintf(&sb, "// %s\n", s.name)
	}
	fmt.Fprintf(&sb, "qreg q[%d];\n", s.numQubits)
	fmt.Fprintf(&sb, "creg c[%d];\n\n", s.numQubits)

	for _, g := range s.gates {
		spec, _ := gates.Lookup(g.Kind)
		sb.WriteString(qasmNames[g.Kind])
		if spec.Parametric {
			fmt.Fprintf(&sb, "(%s)", FormatAngle(g.Angle()))
		}
		for i, q := range g.Targets {
			if i == 0 {
				sb.WriteString(" ")
			} else {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "q[%d]", q)
		}
		sb.WriteString(";\n")
	}

	if len(s.gates) > 0 {
		sb.WriteString("\n")
	}
	for q := range s.numQubits {
		fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", q, q)
	}
	return sb.String()
}

// ParseQASM reads the OpenQASM 2.0 subset produced by Schedule.QASM.
//
// Exactly one quantum register is allowed. Classical registers, barriers and
// measurements are accepted and ignored, since sampling always measures every
// qubit at the end. Columns are assigned by Layer. Any other statement is an
// error wrapping qerr.ErrInvalidCircuit.
func ParseQASM(src string) (Circuit, error) {
	var c Circuit
	reg := ""

	stmts, err := statements(src)
	if err != nil {
		return Circuit{}, err
	}
	for _, st := range stmts {
		lineNo, stmt := st.line, st.text
		bad := func(format string, args ...any) error {
			return &qerr.CircuitError{Gate: -1, Reason: fmt.Sprintf("qasm line %d: ", lineNo) + fmt.Sprintf(format, args...)}
		}

		lower := strings.ToLower(stmt)
		switch {
		case strings.HasPrefix(lower, "openqasm"):
			if !strings.HasPrefix(strings.TrimSpace(stmt[len("openqasm"):]), "2") {
				return Circuit{}, bad("unsupported version %q", stmt)
			}
			continue
		case strings.HasPrefix(lower, "include"):
			continue
		case strings.HasPrefix(lower, "barrier"), strings.HasPrefix(lower, "measure"):
			continue
		case cregRegex.MatchString(stmt):
			continue
		}

		if m := qregRegex.FindStringSubmatch(stmt); m != nil {
			if reg != "" {
				return Circuit{}, bad("only one qreg is supported")
			}
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return Circuit{}, bad("bad qreg size %q", m[2])
			}
			reg, c.NumQubits = m[1], n
			continue
		}

		m := gateLineRegex.FindStringSubmatch(stmt)
		if m == nil {
			return Circuit{}, bad("cannot parse %q", stmt)
		}
		if reg == "" {
			return Circuit{}, bad("gate before qreg declaration")
		}
		kind, err := gates.ParseKind(m[1])
		if err != nil {
			return Circuit{}, bad("%v", err)
		}
		spec, _ := gates.Lookup(kind)

		g := Gate{Kind: kind}
		for _, op := range strings.Split(m[3], ",") {
			om := operandRegex.FindStringSubmatch(strings.TrimSpace(op))
			if om == nil || om[1] != reg {
				return Circuit{}, bad("bad operand %q", strings.TrimSpace(op))
			}
			q, _ := strconv.Atoi(om[2])
			g.Targets = append(g.Targets, q)
		}

		switch {
		case spec.Parametric && m[2] == "":
			return Circuit{}, bad("%s requires an angle", m[1])
		case spec.Parametric:
			theta, err := ParseAngle(m[2])
			if err != nil {
				return Circuit{}, bad("%v", err)
			}
			g = g.WithAngle(theta)
		case m[2] != "":
			return Circuit{}, bad("%s takes no parameters", m[1])
		}
		c.Gates = append(c.Gates, g)
	}

	if reg == "" {
		return Circuit{}, &qerr.CircuitError{Gate: -1, Reason: "qasm: missing qreg declaration"}
	}
	for i, l := range Layer(c.Gates) {
		c.Gates[i].Column = l
	}
	return c, nil
}

type statement struct {
	line int
	text string
}

// statements splits QASM source into trimmed statements tagged with the line
// each one starts on. Comments are dropped. A single line may be as long as
// the whole source.
func statements(src string) ([]statement, error) {
	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(nil, max(len(src)+1, bufio.MaxScanTokenSize))

	var out []statement
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		for _, part := range strings.Split(line, ";") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, statement{line: lineNo, text: part})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &qerr.CircuitError{Gate: -1, Reason: fmt.Sprintf("qasm line %d: %v", lineNo+1, err)}
	}
	return out, nil
}
