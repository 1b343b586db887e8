// SPDX-License-Identifier: MIT

// Package matrix - functional options and documented defaults.
//
// Purpose:
//   - Centralize numeric policy knobs (finite-only validation, symmetry tolerance).
//   - Keep constructors' signatures stable while allowing callers to opt out of
//     strict finite-value checks (realization tables legitimately carry NaN).
//
// AI-Hints:
//   - Options are applied left to right; the last one wins.
//   - Invalid option arguments panic at construction time (programming errors),
//     never during kernel execution.

package matrix

import "math"

const (
	// DefaultEpsilon defines the non-negative tolerance used by structural checks
	// (symmetry, eigenvalue clipping).
	DefaultEpsilon = 1e-9

	// DefaultValidateNaNInf toggles strict finite-value validation on ingestion and Set.
	DefaultValidateNaNInf = true
)

const panicEpsilonInvalid = "matrix: WithEpsilon: eps must be finite, non-negative"

// Option mutates Options during gatherOptions.
type Option func(*Options)

// Options is the resolved numeric policy for a constructor or kernel.
type Options struct {
	eps            float64 // >= 0; DefaultEpsilon
	validateNaNInf bool    // DefaultValidateNaNInf
}

// WithEpsilon sets the structural tolerance. Panics on negative or non-finite eps.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithValidateNaNInf turns the finite-only policy on.
func WithValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = true }
}

// WithNoValidateNaNInf turns the finite-only policy off (NaN marks missing values).
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = false }
}

// gatherOptions resolves opts over the package defaults.
func gatherOptions(opts ...Option) Options {
	o := Options{
		eps:            DefaultEpsilon,
		validateNaNInf: DefaultValidateNaNInf,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
