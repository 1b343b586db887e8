// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All kernels return these sentinels (possibly wrapped with an operation tag
// via matrixErrorf); tests and callers MUST match them with errors.Is.
// No kernel panics on user-triggered conditions.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs.
//
// ERROR PRIORITY (documented, enforced in tests):
// nil -> shape/index -> NaN/Inf -> dimension mismatch -> structural
// violations (asymmetry, names) -> factorization failures.

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are
	// out of range (non-positive for NewDense, negative for NewDenseFrom),
	// or that a backing slice does not hold rows*cols elements.
	ErrInvalidDimensions = errors.New("matrix: invalid dimensions")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	// Public indexers (At/Set) MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g., Add/Sub different shapes, or Mul where a.Cols != b.Rows.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrAsymmetry signals that a matrix expected to be symmetric violated
	// symmetry within the requested tolerance.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within tolerance")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required
	// by the numeric policy.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrFactorization indicates that an eigen or singular-value factorization
	// failed to converge.
	ErrFactorization = errors.New("matrix: factorization failed")

	// ErrNameMismatch indicates that a name table does not match the axis it
	// labels (wrong length, duplicates, or an unknown name on lookup).
	ErrNameMismatch = errors.New("matrix: name table mismatch")
)
