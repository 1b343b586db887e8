// SPDX-License-Identifier: MIT

// Package matrix - core linear-algebra kernels.
//
// Purpose:
//   - Deterministic Add/Sub/Mul/Transpose/Scale/MatVec with a *Dense fast path
//     and a generic Matrix fallback.
//   - Every result is a freshly allocated *Dense; operands are never mutated.
//
// Numeric policy:
//   - Results inherit the finite-only flag of the left operand when it is a
//     *Dense, else DefaultValidateNaNInf. Kernels write results directly so a
//     NaN in a realization table propagates instead of aborting the kernel.

package matrix

import "fmt"

// ZeroSum is the initial accumulator value for dot products.
const ZeroSum = 0.0

// Operation name constants for unified error wrapping.
const (
	opAdd       = "Add"
	opSub       = "Sub"
	opMul       = "Mul"
	opTranspose = "Transpose"
	opScale     = "Scale"
	opMatVec    = "MatVec"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// policyOf returns the numeric policy a result should inherit from m.
func policyOf(m Matrix) bool {
	if d, ok := m.(*Dense); ok {
		return d.validateNaNInf
	}

	return DefaultValidateNaNInf
}

// addSub computes elementwise out = a + sign*b for sign ∈ {+1, -1}.
//
// Implementation:
//   - Stage 1: ValidateSameShape(a, b). Allocate result.
//   - Stage 2: Fast path if both are *Dense (single flat loop); otherwise At in i→j order.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func addSub(a, b Matrix, sign float64, opTag string) (*Dense, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	rows, cols := a.Rows(), a.Cols()
	res := newDenseZeroOK(rows, cols, policyOf(a))

	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			for idx := range res.data {
				res.data[idx] = da.data[idx] + sign*db.data[idx]
			}

			return res, nil
		}
	}

	var (
		i, j   int
		av, bv float64
		err    error
	)
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if av, err = a.At(i, j); err != nil {
				return nil, matrixErrorf(opTag, err)
			}
			if bv, err = b.At(i, j); err != nil {
				return nil, matrixErrorf(opTag, err)
			}
			res.data[i*cols+j] = av + sign*bv
		}
	}

	return res, nil
}

// Add computes the element-wise sum C = A + B.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
func Add(a, b Matrix) (*Dense, error) { return addSub(a, b, +1, opAdd) }

// Sub computes the element-wise difference C = A - B.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
func Sub(a, b Matrix) (*Dense, error) { return addSub(a, b, -1, opSub) }

// Mul performs standard matrix multiplication C = A × B.
//
// Implementation:
//   - Stage 1: Validate A,B (not nil) and inner dimensions (A.Cols == B.Rows).
//   - Stage 2: If A and B are *Dense, use i→k→j with row-major strides;
//     otherwise use i→j→k through At.
//
// Behavior highlights:
//   - No zero-skipping: 0·NaN stays NaN so missing values are never silently
//     turned into numbers.
//
// Errors:
//   - ErrNilMatrix (nil input), ErrDimensionMismatch (inner mismatch).
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	aRows, aCols, bCols := a.Rows(), a.Cols(), b.Cols()
	res := newDenseZeroOK(aRows, bCols, policyOf(a))

	var (
		i, j, k int
		av, bv  float64
		acc     float64
		err     error
	)
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			var rowA, rowB, rowR int
			for i = 0; i < aRows; i++ {
				rowA = i * aCols
				rowR = i * bCols
				for k = 0; k < aCols; k++ {
					av = da.data[rowA+k]
					rowB = k * bCols
					for j = 0; j < bCols; j++ {
						res.data[rowR+j] += av * db.data[rowB+j]
					}
				}
			}

			return res, nil
		}
	}

	for i = 0; i < aRows; i++ {
		for j = 0; j < bCols; j++ {
			acc = ZeroSum
			for k = 0; k < aCols; k++ {
				if av, err = a.At(i, k); err != nil {
					return nil, matrixErrorf(opMul, err)
				}
				if bv, err = b.At(k, j); err != nil {
					return nil, matrixErrorf(opMul, err)
				}
				acc += av * bv
			}
			res.data[i*bCols+j] = acc
		}
	}

	return res, nil
}

// Transpose returns a new matrix with rows and columns swapped (mᵀ).
// Complexity: O(r*c).
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	rows, cols := m.Rows(), m.Cols()
	res := newDenseZeroOK(cols, rows, policyOf(m))

	var i, j int
	if d, ok := m.(*Dense); ok {
		for i = 0; i < rows; i++ {
			for j = 0; j < cols; j++ {
				res.data[j*rows+i] = d.data[i*cols+j]
			}
		}

		return res, nil
	}

	var v float64
	var err error
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opTranspose, err)
			}
			res.data[j*rows+i] = v
		}
	}

	return res, nil
}

// Scale returns alpha·m as a new matrix.
// Complexity: O(r*c).
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	rows, cols := m.Rows(), m.Cols()
	res := newDenseZeroOK(rows, cols, policyOf(m))

	if d, ok := m.(*Dense); ok {
		for idx, v := range d.data {
			res.data[idx] = alpha * v
		}

		return res, nil
	}

	var v float64
	var err error
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opScale, err)
			}
			res.data[i*cols+j] = alpha * v
		}
	}

	return res, nil
}

// MatVec computes y = m·x.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (len(x) != Cols()).
//
// Complexity:
//   - Time O(r*c), Space O(r).
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	rows, cols := m.Rows(), m.Cols()
	if err := ValidateVecLen(x, cols); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, rows)

	var (
		i, j int
		acc  float64
	)
	if d, ok := m.(*Dense); ok {
		var base int
		for i = 0; i < rows; i++ {
			base = i * cols
			acc = ZeroSum
			for j = 0; j < cols; j++ {
				acc += d.data[base+j] * x[j]
			}
			y[i] = acc
		}

		return y, nil
	}

	var v float64
	var err error
	for i = 0; i < rows; i++ {
		acc = ZeroSum
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opMatVec, err)
			}
			acc += v * x[j]
		}
		y[i] = acc
	}

	return y, nil
}
