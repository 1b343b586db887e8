// SPDX-License-Identifier: MIT

// Package matrix: domain types shared by kernels and named containers.
package matrix

// Matrix represents a two-dimensional mutable array of float64 values.
// Kernels accept Matrix and take a flat fast-path when the dynamic type is
// *Dense; other implementations go through the bounds-checked surface.
//
// Complexity notes: all methods are expected O(1) except Clone (O(r*c)).
type Matrix interface {
	// Rows returns the number of rows in the matrix.
	Rows() int

	// Cols returns the number of columns in the matrix.
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrOutOfRange if i<0, i>=Rows(), j<0 or j>=Cols().
	At(i, j int) (float64, error)

	// Set assigns the value v at position (i, j).
	// Returns ErrOutOfRange if indices are invalid.
	Set(i, j int, v float64) error

	// Clone returns a deep copy of the matrix.
	Clone() Matrix
}

// Kind tags a Named matrix with its role. It is a closed set: a Named is
// either a plain matrix or a covariance-tagged matrix, nothing else.
type Kind uint8

const (
	// KindPlain is an untagged rectangular matrix.
	KindPlain Kind = iota

	// KindCovariance marks a matrix produced or consumed as a covariance.
	KindCovariance
)

// String returns the canonical lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindCovariance:
		return "covariance"
	default:
		return "unknown"
	}
}
