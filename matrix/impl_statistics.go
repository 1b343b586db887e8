// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Column statistics for realization tables: means, sample standard
//     deviations, centering and the Monte-Carlo covariance estimate.
//
// Exposed API:
//   - ColumnMeans(X)   -> means              // Σ_i X[i,j] / r
//   - ColumnStd(X)     -> stds               // sample std (ddof = 1)
//   - CenterColumns(X) -> (Xc, means)        // subtract per-column mean
//   - Covariance(X)    -> (Cov, means)       // (Xcᵀ Xc)/(r-1)
//
// Determinism & Performance:
//   - Fixed i→j traversal for all explicit loops.
//   - NaN propagates: a column holding NaN yields a NaN mean/std.

package matrix

import "math"

const (
	opColumnMeans   = "ColumnMeans"
	opColumnStd     = "ColumnStd"
	opCenterColumns = "CenterColumns"
	opCovariance    = "Covariance"
)

// columnSums accumulates per-column sums in a deterministic i→j pass.
func columnSums(X Matrix) ([]float64, error) {
	r, c := X.Rows(), X.Cols()
	sums := make([]float64, c)
	if d, ok := X.(*Dense); ok {
		for i := 0; i < r; i++ {
			base := i * c
			for j := 0; j < c; j++ {
				sums[j] += d.data[base+j]
			}
		}

		return sums, nil
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v, err := X.At(i, j)
			if err != nil {
				return nil, err
			}
			sums[j] += v
		}
	}

	return sums, nil
}

// ColumnMeans returns the per-column arithmetic mean.
//
// Errors:
//   - ErrNilMatrix; ErrInvalidDimensions when X has no rows.
//
// Complexity:
//   - Time O(r*c), Space O(c).
func ColumnMeans(X Matrix) ([]float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opColumnMeans, err)
	}
	r := X.Rows()
	if r == 0 {
		return nil, matrixErrorf(opColumnMeans, ErrInvalidDimensions)
	}
	sums, err := columnSums(X)
	if err != nil {
		return nil, matrixErrorf(opColumnMeans, err)
	}
	invR := 1.0 / float64(r)
	for j := range sums {
		sums[j] *= invR
	}

	return sums, nil
}

// ColumnStd returns the per-column sample standard deviation (divisor r-1).
// Requires at least two rows.
func ColumnStd(X Matrix) ([]float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opColumnStd, err)
	}
	r, c := X.Rows(), X.Cols()
	if r < 2 {
		return nil, matrixErrorf(opColumnStd, ErrInvalidDimensions)
	}
	Xc, _, err := CenterColumns(X)
	if err != nil {
		return nil, matrixErrorf(opColumnStd, err)
	}
	std := make([]float64, c)
	for i := 0; i < r; i++ {
		base := i * c
		for j := 0; j < c; j++ {
			v := Xc.data[base+j]
			std[j] += v * v
		}
	}
	inv := 1.0 / float64(r-1)
	for j := range std {
		std[j] = math.Sqrt(std[j] * inv)
	}

	return std, nil
}

// CenterColumns subtracts the per-column mean from every element.
//
// Implementation:
//   - Stage 1: Validate X and compute column means.
//   - Stage 2: Broadcast-subtract the means over rows into a fresh copy.
//
// Returns:
//   - *Dense: centered copy (r×c).
//   - []float64: column means (len=c).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func CenterColumns(X Matrix) (*Dense, []float64, error) {
	means, err := ColumnMeans(X)
	if err != nil {
		return nil, nil, matrixErrorf(opCenterColumns, err)
	}
	Xc, err := ewBroadcastCols(X, means, -1)
	if err != nil {
		return nil, nil, matrixErrorf(opCenterColumns, err)
	}

	return Xc, means, nil
}

// Covariance returns the sample covariance of the columns, (Xcᵀ Xc)/(r-1).
//
// Behavior highlights:
//   - Output is exactly symmetric: the upper triangle is mirrored.
//
// Errors:
//   - ErrNilMatrix; ErrInvalidDimensions when r < 2.
//
// Complexity:
//   - Time O(r*c²), Space O(c²).
func Covariance(X Matrix) (*Dense, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	r, c := X.Rows(), X.Cols()
	if r < 2 {
		return nil, nil, matrixErrorf(opCovariance, ErrInvalidDimensions)
	}
	Xc, means, err := CenterColumns(X)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	cov := newDenseZeroOK(c, c, false)
	inv := 1.0 / float64(r-1)
	var acc float64
	for a := 0; a < c; a++ {
		for b := a; b < c; b++ {
			acc = ZeroSum
			for i := 0; i < r; i++ {
				acc += Xc.data[i*c+a] * Xc.data[i*c+b]
			}
			acc *= inv
			cov.data[a*c+b] = acc
			cov.data[b*c+a] = acc
		}
	}

	return cov, means, nil
}
