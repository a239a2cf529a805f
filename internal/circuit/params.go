package circuit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseAngle reads an angle in radians. Besides plain numbers it accepts
// multiples of pi written as [k][*]pi[/d], e.g. "pi", "-pi/2", "3pi/4" or
// "2 * pi / 3". Case and surrounding spaces are ignored.
func ParseAngle(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty angle")
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("angle %q is not finite", s)
		}
		return v, nil
	}

	coeffPart, rest, ok := strings.Cut(s, "pi")
	if !ok {
		return 0, fmt.Errorf("cannot parse angle %q", s)
	}

	coeff := 1.0
	coeffPart = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(coeffPart), "*"))
	switch coeffPart {
	case "":
	case "-":
		coeff = -1
	default:
		v, err := strconv.ParseFloat(coeffPart, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("cannot parse angle %q: bad coefficient %q", s, coeffPart)
		}
		coeff = v
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return coeff * math.Pi, nil
	}
	denomPart, ok := strings.CutPrefix(rest, "/")
	if !ok {
		return 0, fmt.Errorf("cannot parse angle %q: unexpected %q after pi", s, rest)
	}
	denom, err := strconv.ParseFloat(strings.TrimSpace(denomPart), 64)
	if err != nil || denom == 0 || math.IsInf(denom, 0) || math.IsNaN(denom) {
		return 0, fmt.Errorf("cannot parse angle %q: bad denominator", s)
	}
	return coeff * math.Pi / denom, nil
}

// piDenominators are the fractions of pi FormatAngle writes symbolically,
// smallest first so the reduced form wins.
var piDenominators = []int{1, 2, 3, 4, 6, 8}

// FormatAngle renders an angle, writing multiples of pi/d up to ±2pi in
// symbolic form ("pi/2", "-3*pi/4") and anything else as a plain number.
func FormatAngle(val float64) string {
	for _, d := range piDenominators {
		n := math.Round(val * float64(d) / math.Pi)
		if n == 0 || math.Abs(n) > float64(2*d) {
			continue
		}
		if math.Abs(val-n*math.Pi/float64(d)) >= 1e-10 {
			continue
		}

		var sb strings.Builder
		if n < 0 {
			sb.WriteByte('-')
		}
		if k := int(math.Abs(n)); k != 1 {
			fmt.Fprintf(&sb, "%d*", k)
		}
		sb.WriteString("pi")
		if d != 1 {
			fmt.Fprintf(&sb, "/%d", d)
		}
		return sb.String()
	}
	return strconv.FormatFloat(val, 'g', -1, 64)
}

// Angle is a rotation in radians. It decodes from either a number or a pi
// expression string such as "pi/2".
type Angle float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Angle) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("angle: %w", err)
		}
		s = unq
	}
	v, err := ParseAngle(s)
	if err != nil {
		return err
	}
	*a = Angle(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Angle) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: angle must be a scalar", n.Line)
	}
	v, err := ParseAngle(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*a = Angle(v)
	return nil
}
