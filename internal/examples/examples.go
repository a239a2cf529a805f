// Package examples ships the built-in preset circuits.
package examples

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"qsim/internal/circuit"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// Difficulty grades a preset for display.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Preset is a named, described circuit.
type Preset struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Difficulty  Difficulty      `json:"difficulty" yaml:"difficulty"`
	Circuit     circuit.Circuit `json:"circuit" yaml:"circuit"`
}

var difficultyRank = map[Difficulty]int{Beginner: 0, Intermediate: 1, Advanced: 2}

var load = sync.OnceValues(func() ([]Preset, error) {
	return parse(presetFS)
})

func parse(fsys fs.FS) ([]Preset, error) {
	files, err := fs.Glob(fsys, "presets/*.yaml")
	if err != nil {
		return nil, err
	}

	var out []Preset
	seen := make(map[string]bool)
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		var p Preset
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		if p.ID == "" {
			return nil, fmt.Errorf("preset %s: missing id", name)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("preset %s: duplicate id %q", name, p.ID)
		}
		if _, ok := difficultyRank[p.Difficulty]; !ok {
			return nil, fmt.Errorf("preset %s: unknown difficulty %q", name, p.Difficulty)
		}
		seen[p.ID] = true
		if p.Circuit.Name == "" {
			p.Circuit.Name = p.ID
		}
		out = append(out, p)
	}

	slices.SortStableFunc(out, func(a, b Preset) int {
		if d := difficultyRank[a.Difficulty] - difficultyRank[b.Difficulty]; d != 0 {
			return d
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// List returns every preset, easiest first. The embedded files are parsed
// once; a malformed preset is a build defect and panics.
func List() []Preset {
	ps, err := load()
	if err != nil {
		panic(err)
	}
	out := slices.Clone(ps)
	for i := range out {
		out[i].Circuit.Gates = slices.Clone(out[i].Circuit.Gates)
	}
	return out
}

// Get returns the preset with the given id.
func Get(id string) (Preset, bool) {
	for _, p := range List() {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// IDs returns the preset ids in List order.
func IDs() []string {
	ps := List()
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}
