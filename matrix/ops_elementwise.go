// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Provide small element-wise and broadcast micro-kernels (ew*) shared by the
//     statistics helpers and by the ensemble draw/enforce paths.
//   - Keep all loops deterministic and cache-friendly with Dense fast-paths.
//
// Design:
//   - ew* are unexported; the exported wrappers at the bottom of this file add
//     the operation tag and are the only public entry points.
//
// Determinism & Performance:
//   - Fixed loop orders (i→j or flat 0..n-1).
//   - No hidden allocations beyond the output Dense; O(r*c) time and space.

package matrix

import "math"

const (
	opBroadcastSubCols = "BroadcastSubCols"
	opBroadcastAddCols = "BroadcastAddCols"
	opScaleColumns     = "ScaleColumns"
	opClipColumns      = "ClipColumns"
	opAllClose         = "AllClose"
)

// ewBroadcastCols computes out[i,j] = X[i,j] + sign·v[j].
// Time: O(r*c). Space: O(r*c).
func ewBroadcastCols(X Matrix, v []float64, sign float64) (*Dense, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, err
	}
	r, c := X.Rows(), X.Cols()
	if len(v) != c {
		return nil, ErrDimensionMismatch
	}
	out := newDenseZeroOK(r, c, policyOf(X))

	if d, ok := X.(*Dense); ok {
		for i := 0; i < r; i++ {
			base := i * c
			for j := 0; j < c; j++ {
				out.data[base+j] = d.data[base+j] + sign*v[j]
			}
		}

		return out, nil
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			x, err := X.At(i, j)
			if err != nil {
				return nil, err
			}
			out.data[i*c+j] = x + sign*v[j]
		}
	}

	return out, nil
}

// ewScaleCols computes out[i,j] = X[i,j] * scale[j].
func ewScaleCols(X Matrix, scale []float64) (*Dense, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, err
	}
	r, c := X.Rows(), X.Cols()
	if len(scale) != c {
		return nil, ErrDimensionMismatch
	}
	out := newDenseZeroOK(r, c, policyOf(X))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			x, err := X.At(i, j)
			if err != nil {
				return nil, err
			}
			out.data[i*c+j] = x * scale[j]
		}
	}

	return out, nil
}

// ewClipCols clamps X[i,j] into [lo[j], hi[j]]. NaN entries are left as NaN.
// Returns the clipped copy and the number of entries that changed.
func ewClipCols(X Matrix, lo, hi []float64) (*Dense, int, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, 0, err
	}
	r, c := X.Rows(), X.Cols()
	if len(lo) != c || len(hi) != c {
		return nil, 0, ErrDimensionMismatch
	}
	out := newDenseZeroOK(r, c, policyOf(X))
	changed := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			x, err := X.At(i, j)
			if err != nil {
				return nil, 0, err
			}
			switch {
			case x < lo[j]:
				x = lo[j]
				changed++
			case x > hi[j]:
				x = hi[j]
				changed++
			}
			out.data[i*c+j] = x
		}
	}

	return out, changed, nil
}

// ewAllClose reports |a-b| ≤ atol + rtol·|b| for every element.
// NaN at the same position in both operands counts as equal.
func ewAllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return false, err
	}
	if rtol < 0 || atol < 0 || math.IsNaN(rtol) || math.IsNaN(atol) {
		return false, ErrNaNInf
	}
	r, c := a.Rows(), a.Cols()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			av, _ := a.At(i, j)
			bv, _ := b.At(i, j)
			if math.IsNaN(av) || math.IsNaN(bv) {
				if math.IsNaN(av) && math.IsNaN(bv) {
					continue
				}

				return false, nil
			}
			if math.Abs(av-bv) > atol+rtol*math.Abs(bv) {
				return false, nil
			}
		}
	}

	return true, nil
}

// BroadcastSubCols returns X with v[j] subtracted from every row's column j.
func BroadcastSubCols(X Matrix, v []float64) (*Dense, error) {
	out, err := ewBroadcastCols(X, v, -1)
	if err != nil {
		return nil, matrixErrorf(opBroadcastSubCols, err)
	}

	return out, nil
}

// BroadcastAddCols returns X with v[j] added to every row's column j.
func BroadcastAddCols(X Matrix, v []float64) (*Dense, error) {
	out, err := ewBroadcastCols(X, v, +1)
	if err != nil {
		return nil, matrixErrorf(opBroadcastAddCols, err)
	}

	return out, nil
}

// ScaleColumns returns X·diag(scale).
func ScaleColumns(X Matrix, scale []float64) (*Dense, error) {
	out, err := ewScaleCols(X, scale)
	if err != nil {
		return nil, matrixErrorf(opScaleColumns, err)
	}

	return out, nil
}

// ClipColumns clamps every column j into [lo[j], hi[j]] and reports how many
// entries were moved.
func ClipColumns(X Matrix, lo, hi []float64) (*Dense, int, error) {
	out, n, err := ewClipCols(X, lo, hi)
	if err != nil {
		return nil, 0, matrixErrorf(opClipColumns, err)
	}

	return out, n, nil
}

// AllClose reports element-wise closeness within rtol/atol (numpy semantics).
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	ok, err := ewAllClose(a, b, rtol, atol)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}

	return ok, nil
}
