// SPDX-License-Identifier: MIT

package control

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultWeight is the observation weight used when a document omits it.
const DefaultWeight = 1.0

type document struct {
	Parameters   []Parameter        `yaml:"parameters"`
	Observations []observationEntry `yaml:"observations"`
}

type observationEntry struct {
	Name   string   `yaml:"name"`
	Value  float64  `yaml:"value"`
	Weight *float64 `yaml:"weight"`
	Group  string   `yaml:"group"`
}

// Load decodes a YAML problem document from r and validates it with New.
// Unknown fields are rejected so typos surface instead of silently defaulting.
func Load(r io.Reader) (*Problem, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("control: decode yaml: %w", err)
	}

	obs := make([]Observation, len(doc.Observations))
	for i, e := range doc.Observations {
		w := DefaultWeight
		if e.Weight != nil {
			w = *e.Weight
		}
		obs[i] = Observation{Name: e.Name, Value: e.Value, Weight: w, Group: e.Group}
	}

	return New(doc.Parameters, obs)
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("control: open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Write encodes p as a YAML document Load accepts.
func Write(w io.Writer, p *Problem) error {
	doc := document{Parameters: p.Parameters()}
	for _, o := range p.obs {
		wt := o.Weight
		doc.Observations = append(doc.Observations, observationEntry{
			Name: o.Name, Value: o.Value, Weight: &wt, Group: o.Group,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("control: encode yaml: %w", err)
	}

	return enc.Close()
}
