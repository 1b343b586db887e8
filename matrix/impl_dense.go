// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Keep algorithmic determinism (fixed loop orders, no map iteration).
//   - Enforce a numeric policy (optional rejection of NaN/Inf) from a single source of truth.
//
// AI-Hints:
//   - Prefer fast-paths on *Dense in hot algebra (see impl_linear_algebra.go).
//   - Realization tables store NaN for missing values; build them with WithNoValidateNaNInf.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); Induced: O(r'*c').

package matrix

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt     = "At"
	ctxSet    = "Set"
	ctxApply  = "Apply"
	ctxFrom   = "NewDenseFrom"
	ctxInduce = "Induced"
	ctxRow    = "Row"
	ctxSetRow = "SetRow"
)

const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
// Format: "Dense.<method>(row,col): %w"; the sentinel survives for errors.Is.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
//   - validateNaNInf enables optional NaN/Inf rejection in Set/Apply.
type Dense struct {
	r, c           int
	data           []float64
	validateNaNInf bool
}

var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate a zero-filled buffer and resolve the numeric policy from opts.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int, opts ...Option) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	o := gatherOptions(opts...)

	return &Dense{
		r:              rows,
		c:              cols,
		data:           make([]float64, rows*cols),
		validateNaNInf: o.validateNaNInf,
	}, nil
}

// NewDenseFrom builds an r×c matrix from a row-major slice (copied).
//
// Implementation:
//   - Stage 1: validate rows>=0, cols>=0 and len(data)==rows*cols.
//   - Stage 2: when the finite-only policy is on, scan data for NaN/±Inf.
//   - Stage 3: copy data into a fresh buffer.
//
// Behavior highlights:
//   - Unlike NewDense, zero-sized shapes are legal (an ensemble may lose
//     every row to bounds enforcement and still be a valid table).
//
// Errors:
//   - ErrInvalidDimensions, ErrNaNInf.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDenseFrom(rows, cols int, data []float64, opts ...Option) (*Dense, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("%s(%d,%d): %w", ctxFrom, rows, cols, ErrInvalidDimensions)
	}
	o := gatherOptions(opts...)
	if o.validateNaNInf {
		for k, v := range data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, denseErrorf(ctxFrom, k/max(cols, 1), k%max(cols, 1), ErrNaNInf)
			}
		}
	}
	buf := make([]float64, len(data))
	copy(buf, data)

	return &Dense{r: rows, c: cols, data: buf, validateNaNInf: o.validateNaNInf}, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}

	return m, nil
}

// newDenseZeroOK is an internal constructor that allows rows==0 or cols==0.
// Kernels allocate results through it so empty operands flow through cleanly.
func newDenseZeroOK(rows, cols int, validate bool) *Dense {
	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols), validateNaNInf: validate}
}

// Rows returns the row count.
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count.
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// ValidatesNaNInf reports the instance numeric policy.
func (m *Dense) ValidatesNaNInf() bool { return m.validateNaNInf }

// SetValidateNaNInf switches the instance numeric policy. Existing values are
// not rescanned.
func (m *Dense) SetValidateNaNInf(on bool) { m.validateNaNInf = on }

// indexOf computes the row-major offset or returns ErrOutOfRange.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for non-finite v when the policy is on.
//
// Complexity:
//   - Time O(1), Space O(1).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if m.validateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v

	return nil
}

// Row returns a copy of row i.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(ctxRow, i, 0, ErrOutOfRange)
	}
	out := make([]float64, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])

	return out, nil
}

// SetRow overwrites row i with vals (len must equal Cols()).
func (m *Dense) SetRow(i int, vals []float64) error {
	if i < 0 || i >= m.r {
		return denseErrorf(ctxSetRow, i, 0, ErrOutOfRange)
	}
	if len(vals) != m.c {
		return denseErrorf(ctxSetRow, i, len(vals), ErrDimensionMismatch)
	}
	if m.validateNaNInf {
		for j, v := range vals {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return denseErrorf(ctxSetRow, i, j, ErrNaNInf)
			}
		}
	}
	copy(m.data[i*m.c:(i+1)*m.c], vals)

	return nil
}

// Col returns a copy of column j. Out-of-range j yields ErrOutOfRange.
func (m *Dense) Col(j int) ([]float64, error) {
	if j < 0 || j >= m.c {
		return nil, denseErrorf("Col", 0, j, ErrOutOfRange)
	}
	out := make([]float64, m.r)
	for i := 0; i < m.r; i++ {
		out[i] = m.data[i*m.c+j]
	}

	return out, nil
}

// RawData exposes the backing row-major slice. Mutations are visible in m
// and bypass the numeric policy.
func (m *Dense) RawData() []float64 { return m.data }

// Clone returns a deep copy (new buffer, same numeric policy).
func (m *Dense) Clone() Matrix { return m.CloneDense() }

// CloneDense is Clone with the concrete return type.
func (m *Dense) CloneDense() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp, validateNaNInf: m.validateNaNInf}
}

// String renders matrix rows as lines with comma-separated shortest-form values.
// Not for hot paths; intended for logs and debugging.
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ {
		b.WriteString(_fmtRowOpen)
		base = i * m.c
		for j = 0; j < m.c; j++ {
			b.WriteString(strconv.FormatFloat(m.data[base+j], 'g', -1, 64))
			if j+1 < m.c {
				b.WriteString(_fmtSep)
			}
		}
		b.WriteString(_fmtRowClose)
	}

	return b.String()
}

// Induced materializes a copy submatrix using explicit index sets.
//
// Behavior highlights:
//   - Policy is preserved from the base (validateNaNInf).
//   - Duplicates in index sets are allowed (repeated rows/cols in the result).
//   - Zero-length index sets produce a legal zero-area Dense.
//
// Errors:
//   - ErrOutOfRange (index outside bounds).
//
// Complexity:
//   - Time O(rp*cp), Space O(rp*cp).
func (m *Dense) Induced(rowsIdx, colsIdx []int) (*Dense, error) {
	rp, cp := len(rowsIdx), len(colsIdx)
	res := newDenseZeroOK(rp, cp, m.validateNaNInf)

	var i, j, ri, cj int
	for j = 0; j < cp; j++ {
		if cj = colsIdx[j]; cj < 0 || cj >= m.c {
			return nil, fmt.Errorf("Dense.%s: col index %d: %w", ctxInduce, cj, ErrOutOfRange)
		}
	}
	for i = 0; i < rp; i++ {
		ri = rowsIdx[i]
		if ri < 0 || ri >= m.r {
			return nil, fmt.Errorf("Dense.%s: row index %d: %w", ctxInduce, ri, ErrOutOfRange)
		}
		for j = 0; j < cp; j++ {
			res.data[i*cp+j] = m.data[ri*m.c+colsIdx[j]]
		}
	}

	return res, nil
}

// Do visits each element (i,j) in row-major order and calls f(i,j,v).
// Stops early when f returns false.
//
// Complexity:
//   - Time O(r*c), Space O(1).
func (m *Dense) Do(f func(i, j int, v float64) bool) {
	var i, j, base int
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			if !f(i, j, m.data[base+j]) {
				return
			}
		}
	}
}

// Apply replaces each element with f(i,j,v) in-place.
//
// Behavior highlights:
//   - Deterministic row-major order; no extra allocations.
//   - Respects validateNaNInf (rejects NaN/±Inf when enabled).
//   - Early error aborts; elements written before the error remain updated.
//
// Complexity:
//   - Time O(r*c), Space O(1).
func (m *Dense) Apply(f func(i, j int, v float64) float64) error {
	var i, j, base int
	var nv float64
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			nv = f(i, j, m.data[base+j])
			if m.validateNaNInf && (math.IsNaN(nv) || math.IsInf(nv, 0)) {
				return denseErrorf(ctxApply, i, j, ErrNaNInf)
			}
			m.data[base+j] = nv
		}
	}

	return nil
}
