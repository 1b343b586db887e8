// SPDX-License-Identifier: MIT

// Package controltest provides a small, fully featured calibration problem for
// tests across the module: log, none, fixed and tied parameters in several
// groups, and observations with nonzero and zero weights.
package controltest

import (
	"testing"

	"github.com/aymanalz/pyemu/control"
)

// Parameters returns the fixture parameter set in configuration order.
func Parameters() []control.Parameter {
	return []control.Parameter{
		{Name: "hk1", Value: 5, Lower: 0.5, Upper: 50, Transform: control.TransformLog, Group: "hk"},
		{Name: "hk2", Value: 2, Lower: 0.1, Upper: 20, Transform: control.TransformLog, Group: "hk"},
		{Name: "rch", Value: 0.001, Lower: 0.0005, Upper: 0.002, Transform: control.TransformLog, Group: "rch"},
		{Name: "sy", Value: 0.1, Lower: 0.05, Upper: 0.3, Transform: control.TransformNone, Group: "stor"},
		{Name: "ss", Value: 1e-5, Lower: 1e-6, Upper: 1e-4, Transform: control.TransformFixed, Group: "stor"},
		{Name: "hk3", Value: 4, Lower: 0.4, Upper: 40, Transform: control.TransformTied, Group: "hk", TiedTo: "hk1"},
		{Name: "strt", Value: 10, Lower: 9, Upper: 11, Transform: control.TransformNone, Group: "ic"},
	}
}

// Observations returns the fixture observation set in configuration order.
func Observations() []control.Observation {
	return []control.Observation{
		{Name: "h1", Value: 10.2, Weight: 1, Group: "head"},
		{Name: "h2", Value: 9.8, Weight: 2, Group: "head"},
		{Name: "h3", Value: 10.5, Weight: 0, Group: "head"},
		{Name: "h4", Value: 11.1, Weight: 0.5, Group: "head"},
		{Name: "f1", Value: 3.2, Weight: 1, Group: "flux"},
		{Name: "f2", Value: 2.9, Weight: 0, Group: "flux"},
	}
}

// Problem builds the fixture problem or fails the test.
func Problem(tb testing.TB) *control.Problem {
	tb.Helper()
	p, err := control.New(Parameters(), Observations())
	if err != nil {
		tb.Fatalf("controltest: %v", err)
	}

	return p
}

// AdjustableOnly builds a problem holding only the adjustable fixture
// parameters (no fixed or tied entries).
func AdjustableOnly(tb testing.TB) *control.Problem {
	tb.Helper()
	var pars []control.Parameter
	for _, par := range Parameters() {
		if par.Adjustable() {
			pars = append(pars, par)
		}
	}
	p, err := control.New(pars, Observations())
	if err != nil {
		tb.Fatalf("controltest: %v", err)
	}

	return p
}

// Modify builds a problem from the fixture after applying edit to copies of
// the parameter and observation sets.
func Modify(tb testing.TB, edit func(pars []control.Parameter, obs []control.Observation)) *control.Problem {
	tb.Helper()
	pars, obs := Parameters(), Observations()
	edit(pars, obs)
	p, err := control.New(pars, obs)
	if err != nil {
		tb.Fatalf("controltest: %v", err)
	}

	return p
}
