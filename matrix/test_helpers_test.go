// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic fixtures and utilities for kernel tests.
//   • Keep all data finite unless a test is explicitly about NaN handling.

package matrix_test

import (
	"math/rand/v2"
	"testing"

	"github.com/aymanalz/pyemu/matrix"
)

// hide wraps any Matrix to hide its concrete type from type assertions,
// forcing kernels down the generic (non-*Dense) path.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t *testing.T, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	if err != nil {
		t.Fatalf("NewDense(%d,%d): %v", r, c, err)
	}

	return m
}

// NewFilledDense builds an r×c *Dense from a row-major flat slice.
func NewFilledDense(t *testing.T, r, c int, vals []float64) *matrix.Dense {
	t.Helper()
	d, err := matrix.NewDenseFrom(r, c, vals)
	if err != nil {
		t.Fatalf("NewDenseFrom(%d,%d): %v", r, c, err)
	}

	return d
}

// RandomDense returns an r×c matrix with reproducible U(-1,1) entries.
func RandomDense(t *testing.T, r, c int, seed uint64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	vals := make([]float64, r*c)
	for k := range vals {
		vals[k] = rng.Float64()*2 - 1
	}

	return NewFilledDense(t, r, c, vals)
}

// MustAt reads (i,j) or fails the test.
func MustAt(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	if err != nil {
		t.Fatalf("At(%d,%d): %v", i, j, err)
	}

	return v
}

// MustSet writes (i,j) or fails the test.
func MustSet(t *testing.T, m matrix.Matrix, i, j int, v float64) {
	t.Helper()
	if err := m.Set(i, j, v); err != nil {
		t.Fatalf("Set(%d,%d): %v", i, j, err)
	}
}
