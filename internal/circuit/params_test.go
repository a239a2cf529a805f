package circuit

import (
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseAngle(t *testing.T) {
	valid := map[string]float64{
		"1.5707":        1.5707,
		"-0.5":          -0.5,
		"0":             0,
		"1e-3":          0.001,
		"pi":            math.Pi,
		"PI":            math.Pi,
		"-pi":           -math.Pi,
		"pi/8":          math.Pi / 8,
		"2pi":           2 * math.Pi,
		"2*pi":          2 * math.Pi,
		"0.5pi":         math.Pi / 2,
		"3pi/4":         3 * math.Pi / 4,
		"-3*pi/4":       -3 * math.Pi / 4,
		"2*pi/3":        2 * math.Pi / 3,
		" pi / 2 ":      math.Pi / 2,
		" 3 * pi / 4 ":  3 * math.Pi / 4,
		"- pi/2":        -math.Pi / 2,
		"pi/2.5":        math.Pi / 2.5,
		"-0.25 * pi /2": -math.Pi / 8,
	}
	for in, want := range valid {
		t.Run(in, func(t *testing.T) {
			got, err := ParseAngle(in)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-12)
		})
	}

	for _, in := range []string{"", "abc", "pi/0", "pi*2", "2*3pi", "--pi", "pi/x", "NaN", "Inf", "pipi"} {
		t.Run("invalid "+in, func(t *testing.T) {
			_, err := ParseAngle(in)
			assert.Error(t, err)
		})
	}
}

func TestFormatAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{math.Pi, "pi"},
		{-math.Pi, "-pi"},
		{math.Pi / 2, "pi/2"},
		{-math.Pi / 2, "-pi/2"},
		{3 * math.Pi / 4, "3*pi/4"},
		{5 * math.Pi / 6, "5*pi/6"},
		{2 * math.Pi / 3, "2*pi/3"},
		{3 * math.Pi / 2, "3*pi/2"},
		{2 * math.Pi, "2*pi"},
		{2 * math.Pi / 8, "pi/4"},
		{5, "5"},
		{1.5, "1.5"},
		{0, "0"},
		{0.01, "0.01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAngle(tt.in), "FormatAngle(%v)", tt.in)
	}
	assert.NotContains(t, FormatAngle(3*math.Pi), "pi", "beyond ±2pi stays numeric")
}

func TestFormatAngleParsesBack(t *testing.T) {
	for _, v := range []float64{math.Pi / 3, -7 * math.Pi / 8, 11 * math.Pi / 6, 0.123, -2.5} {
		got, err := ParseAngle(FormatAngle(v))
		require.NoError(t, err)
		assert.InDelta(t, v, got, 1e-12)
	}
}

func TestAngleDecoding(t *testing.T) {
	var p Params
	require.NoError(t, json.Unmarshal([]byte(`{"angle": 1.25}`), &p))
	assert.InDelta(t, 1.25, float64(*p.Angle), 1e-15)

	require.NoError(t, json.Unmarshal([]byte(`{"angle": "pi/2"}`), &p))
	assert.InDelta(t, math.Pi/2, float64(*p.Angle), 1e-15)

	var y Params
	require.NoError(t, yaml.Unmarshal([]byte("angle: -pi/4\n"), &y))
	assert.InDelta(t, -math.Pi/4, float64(*y.Angle), 1e-15)

	assert.Error(t, json.Unmarshal([]byte(`{"angle": "half a turn"}`), &p))
	assert.Error(t, yaml.Unmarshal([]byte("angle: [1, 2]\n"), &y))
}
