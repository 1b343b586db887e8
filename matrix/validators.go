// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep kernels minimal by delegating shape/nil/symmetry checks here.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing.
//  - Symmetry check runs O(n²) on the upper triangle only.
//
// Note:
//  - Each composite validator follows a fixed sequence (NotNil → Shape → Values).

package matrix

import (
	"fmt"
	"math"
	"reflect"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// isNil reports a nil interface or an interface holding a typed nil pointer.
func isNil(m Matrix) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)

	return v.Kind() == reflect.Ptr && v.IsNil()
}

// ValidateNotNil ensures the matrix reference is non-nil (including typed-nil *Dense).
// Complexity: O(1).
func ValidateNotNil(m Matrix) error {
	if isNil(m) {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSameShape ensures non-nil a and b have equal dimensions.
func ValidateSameShape(a, b Matrix) error {
	if isNil(a) || isNil(b) {
		return validatorErrorf("ValidateSameShape", ErrNilMatrix)
	}
	if a.Rows() != b.Rows() {
		return validatorErrorf("ValidateSameShape: Rows", ErrDimensionMismatch)
	}
	if a.Cols() != b.Cols() {
		return validatorErrorf("ValidateSameShape: Columns", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSquare checks that m is non-nil and square (Rows == Cols).
func ValidateSquare(m Matrix) error {
	if isNil(m) {
		return validatorErrorf("ValidateSquare", ErrNilMatrix)
	}
	if m.Rows() != m.Cols() {
		return validatorErrorf("ValidateSquare", ErrDimensionMismatch)
	}

	return nil
}

// ValidateVecLen ensures the vector length matches the required size n.
func ValidateVecLen(x []float64, n int) error {
	if x == nil && n > 0 {
		return validatorErrorf("ValidateVecLen", ErrNilMatrix)
	}
	if len(x) != n {
		return validatorErrorf("ValidateVecLen", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSymmetric checks that m is square and |A[i,j]-A[j,i]| ≤ tol·max(1,|A[i,j]|,|A[j,i]|)
// for every off-diagonal pair. The relative scaling keeps large covariance
// entries (variances of 1e6 and up) from tripping on round-off.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf (bad tol or entries), ErrAsymmetry.
// Complexity: O(n²).
func ValidateSymmetric(m Matrix, tol float64) error {
	if err := ValidateSquare(m); err != nil {
		return validatorErrorf("ValidateSymmetric", err)
	}
	if math.IsNaN(tol) || math.IsInf(tol, 0) {
		return validatorErrorf("ValidateSymmetric", ErrNaNInf)
	}
	tol = math.Abs(tol)

	n := m.Rows()
	var (
		i, j     int
		aij, aji float64
		scale    float64
	)
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			aij, _ = m.At(i, j)
			aji, _ = m.At(j, i)
			if math.IsNaN(aij) || math.IsInf(aij, 0) || math.IsNaN(aji) || math.IsInf(aji, 0) {
				return validatorErrorf("ValidateSymmetric", ErrNaNInf)
			}
			if i == j {
				continue
			}
			scale = math.Max(1, math.Max(math.Abs(aij), math.Abs(aji)))
			if math.Abs(aij-aji) > tol*scale {
				return validatorErrorf("ValidateSymmetric", ErrAsymmetry)
			}
		}
	}

	return nil
}

// IsZeroOffDiagonal reports whether max_{i≠j} |A[i,j]| ≤ tol.
// Complexity: O(n²).
func IsZeroOffDiagonal(m Matrix, tol float64) (bool, error) {
	if err := ValidateSquare(m); err != nil {
		return false, err
	}
	if math.IsNaN(tol) || math.IsInf(tol, 0) {
		return false, ErrNaNInf
	}
	tol = math.Abs(tol)
	n := m.Rows()

	var v float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			v, _ = m.At(i, j)
			if math.Abs(v) > tol {
				return false, nil
			}
		}
	}

	return true, nil
}

// ValidateMulCompatible ensures a.Cols == b.Rows, inputs non-nil.
func ValidateMulCompatible(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if a.Cols() != b.Rows() {
		return validatorErrorf("ValidateMulCompatible", ErrDimensionMismatch)
	}

	return nil
}
