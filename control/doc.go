// SPDX-License-Identifier: MIT

// Package control describes the calibration problem an ensemble is drawn for:
// the ordered parameter set, the ordered observation set, and the residual
// field the objective function Φ is computed from.
//
// A Problem is immutable once built except for its residuals. Callers that
// want a perturbed variant take a Clone first.
//
// Parameters carry a transform that decides how they are represented in
// estimation space:
//
//	none    value used as is
//	log     value represented as log10(value); value and bounds must be > 0
//	fixed   held constant, excluded from adjustment
//	tied    follows another (non-tied) parameter, excluded from adjustment
//
// Problems are usually loaded from a YAML document:
//
//	parameters:
//	  - {name: hk1, value: 5, lower: 0.5, upper: 50, transform: log, group: hk}
//	observations:
//	  - {name: h1, value: 10.2, weight: 1, group: head}
package control
