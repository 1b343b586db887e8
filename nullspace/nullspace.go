// SPDX-License-Identifier: MIT

// Package nullspace builds orthonormal bases of the calibration null space
// and the projector onto it.
//
// For a (weighted) Jacobian J with right singular vectors V, the first
// maxsing columns of V span the solution space; the remaining columns span
// the null space. Parameter changes inside the null space leave the linear
// model response J·Δ unchanged.
package nullspace

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/aymanalz/pyemu/matrix"
)

var (
	// ErrShape indicates name tables that do not match the matrix they label.
	ErrShape = errors.New("nullspace: shape mismatch")

	// ErrTruncation indicates maxsing outside [0, number of parameters].
	ErrTruncation = errors.New("nullspace: invalid truncation")

	// ErrSVD indicates the singular value decomposition did not converge.
	ErrSVD = errors.New("nullspace: singular value decomposition failed")
)

// Basis is an n×k matrix V whose orthonormal columns span a null space of
// the n named parameters.
type Basis struct {
	names []string
	v     *matrix.Dense
}

// New wraps a copy of v (rows labelled by names).
func New(names []string, v *matrix.Dense) (*Basis, error) {
	if v == nil {
		return nil, fmt.Errorf("nullspace: %w", matrix.ErrNilMatrix)
	}
	if v.Rows() != len(names) {
		return nil, fmt.Errorf("nullspace: %d names for %d rows: %w", len(names), v.Rows(), ErrShape)
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("nullspace: duplicate name %q: %w", n, ErrShape)
		}
		seen[n] = struct{}{}
	}

	return &Basis{names: append([]string(nil), names...), v: v.CloneDense()}, nil
}

// FromJacobian computes the null-space basis of J (observations × parameters)
// truncated after maxsing singular values.
func FromJacobian(obsNames, parNames []string, j *matrix.Dense, maxsing int) (*Basis, error) {
	if j == nil {
		return nil, fmt.Errorf("nullspace: %w", matrix.ErrNilMatrix)
	}
	if j.Rows() != len(obsNames) || j.Cols() != len(parNames) {
		return nil, fmt.Errorf("nullspace: %d×%d names for %d×%d jacobian: %w",
			len(obsNames), len(parNames), j.Rows(), j.Cols(), ErrShape)
	}
	n := len(parNames)
	if maxsing < 0 || maxsing > n {
		return nil, fmt.Errorf("nullspace: maxsing %d for %d parameters: %w", maxsing, n, ErrTruncation)
	}

	g, err := matrix.ToGonum(j)
	if err != nil {
		return nil, fmt.Errorf("nullspace: %w", err)
	}
	var svd mat.SVD
	if ok := svd.Factorize(g, mat.SVDFull); !ok {
		return nil, ErrSVD
	}
	var vFull mat.Dense
	svd.VTo(&vFull)

	k := n - maxsing
	data := make([]float64, n*k)
	for r := 0; r < n; r++ {
		for c := 0; c < k; c++ {
			data[r*k+c] = vFull.At(r, maxsing+c)
		}
	}
	v, err := matrix.NewDenseFrom(n, k, data)
	if err != nil {
		return nil, fmt.Errorf("nullspace: %w", err)
	}

	return &Basis{names: append([]string(nil), parNames...), v: v}, nil
}

// Names returns the parameter names labelling the rows of V.
func (b *Basis) Names() []string { return append([]string(nil), b.names...) }

// Dim is the null-space dimension k.
func (b *Basis) Dim() int { return b.v.Cols() }

// V returns a copy of the basis matrix.
func (b *Basis) V() *matrix.Dense { return b.v.CloneDense() }

// Projector returns P = V·Vᵀ (n×n).
func (b *Basis) Projector() (*matrix.Dense, error) {
	vt, err := matrix.Transpose(b.v)
	if err != nil {
		return nil, fmt.Errorf("nullspace: %w", err)
	}
	p, err := matrix.Mul(b.v, vt)
	if err != nil {
		return nil, fmt.Errorf("nullspace: %w", err)
	}

	return p, nil
}
