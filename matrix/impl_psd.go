// SPDX-License-Identifier: MIT

// Package matrix - symmetric square root of positive-semi-definite matrices.
//
// Purpose:
//   - Provide the factor L with L·Lᵀ = C used to colour independent standard
//     normal draws: X = Z·Lᵀ has covariance C.
//   - Delegate the eigen decomposition to gonum (mat.EigenSym); this package
//     only bridges storage and applies the clipping policy.
//
// Behavior highlights:
//   - Rank-deficient matrices are fine: zero eigenvalues give zero directions.
//   - Small negative eigenvalues (round-off) are clipped to 0. Eigenvalues more
//     negative than -eps·max(|λ|) are clipped as well; callers that need a hard
//     PSD guarantee validate upstream.
//   - Diagonal inputs take an O(n) shortcut (element-wise sqrt).

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	opSqrtPSD   = "SqrtPSD"
	opToGonum   = "ToGonum"
	opFromGonum = "FromGonum"
)

// ToGonum copies m into a freshly allocated gonum *mat.Dense.
// Zero-area matrices are rejected (gonum cannot represent them).
func ToGonum(m Matrix) (*mat.Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opToGonum, err)
	}
	r, c := m.Rows(), m.Cols()
	if r == 0 || c == 0 {
		return nil, matrixErrorf(opToGonum, ErrInvalidDimensions)
	}
	data := make([]float64, r*c)
	if d, ok := m.(*Dense); ok {
		copy(data, d.data)
	} else {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				v, err := m.At(i, j)
				if err != nil {
					return nil, matrixErrorf(opToGonum, err)
				}
				data[i*c+j] = v
			}
		}
	}

	return mat.NewDense(r, c, data), nil
}

// FromGonum copies any gonum matrix into a *Dense with the finite-only policy off.
func FromGonum(g mat.Matrix) (*Dense, error) {
	if g == nil {
		return nil, matrixErrorf(opFromGonum, ErrNilMatrix)
	}
	r, c := g.Dims()
	out := newDenseZeroOK(r, c, false)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.data[i*c+j] = g.At(i, j)
		}
	}

	return out, nil
}

// SqrtPSD returns the symmetric square root L of a symmetric PSD matrix m,
// so that L·Lᵀ = L·L = m (up to round-off and eigenvalue clipping).
//
// Implementation:
//   - Stage 1: ValidateSymmetric(m, eps).
//   - Stage 2: diagonal shortcut when all off-diagonal entries are exactly zero.
//   - Stage 3: gonum EigenSym; L = V·diag(√max(λ,0))·Vᵀ.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrAsymmetry, ErrNaNInf, ErrFactorization.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func SqrtPSD(m Matrix, opts ...Option) (*Dense, error) {
	o := gatherOptions(opts...)
	if err := ValidateSymmetric(m, o.eps); err != nil {
		return nil, matrixErrorf(opSqrtPSD, err)
	}
	n := m.Rows()
	out := newDenseZeroOK(n, n, false)
	if n == 0 {
		return out, nil
	}

	diag, err := IsZeroOffDiagonal(m, 0)
	if err != nil {
		return nil, matrixErrorf(opSqrtPSD, err)
	}
	if diag {
		for i := 0; i < n; i++ {
			v, _ := m.At(i, i)
			out.data[i*n+i] = math.Sqrt(math.Max(v, 0))
		}

		return out, nil
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v, _ := m.At(i, j)
			sym.SetSym(i, j, v)
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, matrixErrorf(opSqrtPSD, fmt.Errorf("eigen decomposition: %w", ErrFactorization))
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	root := make([]float64, n)
	for k, lambda := range vals {
		root[k] = math.Sqrt(math.Max(lambda, 0))
	}
	var acc float64
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			acc = ZeroSum
			for k := 0; k < n; k++ {
				acc += vecs.At(i, k) * root[k] * vecs.At(j, k)
			}
			out.data[i*n+j] = acc
			out.data[j*n+i] = acc
		}
	}

	return out, nil
}
