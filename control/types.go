// SPDX-License-Identifier: MIT

package control

import (
	"fmt"
	"math"
	"strings"
)

// Transform selects how a parameter is represented in estimation space.
type Transform uint8

const (
	// TransformNone uses the native value unchanged.
	TransformNone Transform = iota
	// TransformLog represents the value as log10(value).
	TransformLog
	// TransformFixed holds the parameter at its value; not adjustable.
	TransformFixed
	// TransformTied makes the parameter follow TiedTo; not adjustable.
	TransformTied
)

var transformNames = [...]string{"none", "log", "fixed", "tied"}

// String returns the lowercase transform name.
func (t Transform) String() string {
	if int(t) < len(transformNames) {
		return transformNames[t]
	}

	return fmt.Sprintf("Transform(%d)", t)
}

// ParseTransform maps a case-insensitive name to a Transform. The empty
// string maps to TransformNone.
func ParseTransform(s string) (Transform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TransformNone, nil
	}
	for i, name := range transformNames {
		if s == name {
			return Transform(i), nil
		}
	}

	return TransformNone, fmt.Errorf("%q: %w", s, ErrInvalidTransform)
}

// MarshalText implements encoding.TextMarshaler.
func (t Transform) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler (used by the YAML loader).
func (t *Transform) UnmarshalText(b []byte) error {
	v, err := ParseTransform(string(b))
	if err != nil {
		return err
	}
	*t = v

	return nil
}

// Parameter is one entry of the parameter set.
type Parameter struct {
	Name      string    `yaml:"name"`
	Value     float64   `yaml:"value"`
	Lower     float64   `yaml:"lower"`
	Upper     float64   `yaml:"upper"`
	Transform Transform `yaml:"transform"`
	Group     string    `yaml:"group"`
	TiedTo    string    `yaml:"tied_to,omitempty"`
}

// Adjustable reports whether the parameter takes part in estimation
// (neither fixed nor tied).
func (p Parameter) Adjustable() bool {
	return p.Transform != TransformFixed && p.Transform != TransformTied
}

// IsLog reports whether the parameter is log-transformed.
func (p Parameter) IsLog() bool { return p.Transform == TransformLog }

// ToEstimation maps a native value into estimation space.
func (p Parameter) ToEstimation(v float64) float64 {
	if p.Transform == TransformLog {
		return math.Log10(v)
	}

	return v
}

// ToNative maps an estimation-space value back into native space.
func (p Parameter) ToNative(v float64) float64 {
	if p.Transform == TransformLog {
		return math.Pow(10, v)
	}

	return v
}

// EstimationValue returns the current value in estimation space.
func (p Parameter) EstimationValue() float64 { return p.ToEstimation(p.Value) }

// Bounds returns (lower, upper) in native space.
func (p Parameter) Bounds() (float64, float64) { return p.Lower, p.Upper }

// EstimationBounds returns (lower, upper) in estimation space.
func (p Parameter) EstimationBounds() (float64, float64) {
	return p.ToEstimation(p.Lower), p.ToEstimation(p.Upper)
}

// Observation is one entry of the observation set.
type Observation struct {
	Name   string  `yaml:"name"`
	Value  float64 `yaml:"value"`
	Weight float64 `yaml:"weight"`
	Group  string  `yaml:"group"`
}

// Nonzero reports whether the observation carries weight in Φ.
func (o Observation) Nonzero() bool { return o.Weight > 0 }
