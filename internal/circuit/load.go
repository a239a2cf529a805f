package circuit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format identifies a circuit file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatQASM Format = "qasm"
)

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".qasm":
		return FormatQASM, nil
	default:
		return "", fmt.Errorf("unknown circuit format for %q (want .json, .yaml, .yml or .qasm)", path)
	}
}

// Load reads and decodes a circuit file. The result is not validated.
func Load(path string) (Circuit, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Circuit{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Circuit{}, fmt.Errorf("reading circuit: %w", err)
	}
	c, err := Decode(data, format)
	if err != nil {
		return Circuit{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return c, nil
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (Circuit, error) {
	var c Circuit
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return Circuit{}, fmt.Errorf("parsing JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil {
			return Circuit{}, fmt.Errorf("parsing YAML: %w", err)
		}
	case FormatQASM:
		return ParseQASM(string(data))
	default:
		return Circuit{}, fmt.Errorf("unknown circuit format %q", format)
	}
	return c, nil
}

// Encode renders c in the given format. QASM output requires a valid
// circuit and is validated against HardMaxQubits.
func Encode(c Circuit, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(c, "", "  ")
	case FormatYAML:
		return yaml.Marshal(c)
	case FormatQASM:
		s, err := c.Schedule(HardMaxQubits)
		if err != nil {
			return nil, err
		}
		return []byte(s.QASM()), nil
	default:
		return nil, fmt.Errorf("unknown circuit format %q", format)
	}
}
