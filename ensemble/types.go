// SPDX-License-Identifier: MIT

package ensemble

import (
	"fmt"
	"strings"
)

// BaseID is the reserved id of the realization holding the configuration's
// current values.
const BaseID = "base"

// Kind tags an ensemble as holding parameters or observations.
type Kind uint8

const (
	// Parameters ensembles support transforms, enforcement and projection.
	Parameters Kind = iota
	// Observations ensembles support the nonzero view and Φ.
	Observations
)

func (k Kind) String() string {
	switch k {
	case Parameters:
		return "parameters"
	case Observations:
		return "observations"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Space records whether values are native or transformed.
type Space uint8

const (
	// Native values are in the units of the configuration.
	Native Space = iota
	// Estimation values have log10 applied to log-transformed parameters.
	Estimation
)

func (s Space) String() string {
	switch s {
	case Native:
		return "native"
	case Estimation:
		return "estimation"
	default:
		return fmt.Sprintf("Space(%d)", uint8(s))
	}
}

// Distribution selects the sampling law of a draw.
type Distribution uint8

const (
	// Gaussian draws around the current values with a covariance.
	Gaussian Distribution = iota
	// Uniform draws over the estimation-space bounds.
	Uniform
	// Triangular draws over the bounds with the mode at the current value.
	Triangular
)

func (d Distribution) String() string {
	switch d {
	case Gaussian:
		return "gaussian"
	case Uniform:
		return "uniform"
	case Triangular:
		return "triangular"
	default:
		return fmt.Sprintf("Distribution(%d)", uint8(d))
	}
}

// ParseDistribution is the inverse of Distribution.String (case-insensitive).
func ParseDistribution(s string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gaussian", "normal", "":
		return Gaussian, nil
	case "uniform":
		return Uniform, nil
	case "triangular":
		return Triangular, nil
	default:
		return 0, fmt.Errorf("ensemble: distribution %q: %w", s, ErrUnsupportedDistribution)
	}
}

// GroupMode selects how a gaussian draw partitions the covariance.
type GroupMode uint8

const (
	// ByGroups draws each variable group from its own covariance block and
	// ignores cross-group terms.
	ByGroups GroupMode = iota
	// Whole draws all variables from one factor of the full covariance.
	Whole
)

func (g GroupMode) String() string {
	if g == Whole {
		return "whole"
	}

	return "by_groups"
}

// ParseGroupMode accepts "by_groups" (or "groups") and "whole".
func ParseGroupMode(s string) (GroupMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "by_groups", "groups", "":
		return ByGroups, nil
	case "whole":
		return Whole, nil
	default:
		return 0, fmt.Errorf("ensemble: group mode %q: %w", s, ErrInvalidArgument)
	}
}

// Policy selects how Enforce treats out-of-bounds values.
type Policy uint8

const (
	// Reset clips each offending value to its nearest bound.
	Reset Policy = iota
	// Scale shrinks each realization's deviation from the current values by
	// the largest single factor that brings every variable inside its bounds.
	Scale
	// Drop removes realizations with any offending value.
	Drop
)

func (p Policy) String() string {
	switch p {
	case Reset:
		return "reset"
	case Scale:
		return "scale"
	case Drop:
		return "drop"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy is the inverse of Policy.String (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reset", "":
		return Reset, nil
	case "scale":
		return Scale, nil
	case "drop":
		return Drop, nil
	default:
		return 0, fmt.Errorf("ensemble: enforcement policy %q: %w", s, ErrInvalidArgument)
	}
}
