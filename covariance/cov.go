// SPDX-License-Identifier: MIT

package covariance

import (
	"errors"
	"fmt"
	"math"

	"github.com/aymanalz/pyemu/control"
	"github.com/aymanalz/pyemu/matrix"
)

var (
	// ErrMalformed indicates a covariance that is not square, not symmetric,
	// has a negative variance, or whose names are not unique.
	ErrMalformed = errors.New("covariance: malformed covariance")

	// ErrNameMismatch indicates a requested name the covariance does not hold.
	ErrNameMismatch = errors.New("covariance: name mismatch")
)

// SymmetryTolerance is the relative tolerance New uses for symmetry.
const SymmetryTolerance = 1e-9

// DefaultSigmaRange is the number of standard deviations spanned by a
// parameter's bound interval when no covariance is given.
const DefaultSigmaRange = 4.0

// Cov is a named symmetric positive-semi-definite matrix.
type Cov struct {
	names []string
	index map[string]int
	diag  []float64     // set when diagonal
	dense *matrix.Dense // set when dense
}

func newIndex(names []string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := idx[n]; dup {
			return nil, fmt.Errorf("duplicate name %q: %w", n, ErrMalformed)
		}
		idx[n] = i
	}

	return idx, nil
}

// New builds a dense covariance from a square symmetric matrix (copied).
func New(names []string, data *matrix.Dense) (*Cov, error) {
	if data == nil {
		return nil, fmt.Errorf("covariance: nil matrix: %w", ErrMalformed)
	}
	if data.Rows() != data.Cols() || data.Rows() != len(names) {
		return nil, fmt.Errorf("covariance: %d names for %d×%d matrix: %w", len(names), data.Rows(), data.Cols(), ErrMalformed)
	}
	if err := matrix.ValidateSymmetric(data, SymmetryTolerance); err != nil {
		return nil, fmt.Errorf("covariance: %v: %w", err, ErrMalformed)
	}
	for i := range names {
		if v, _ := data.At(i, i); v < 0 {
			return nil, fmt.Errorf("covariance: negative variance for %q: %w", names[i], ErrMalformed)
		}
	}
	idx, err := newIndex(names)
	if err != nil {
		return nil, err
	}

	return &Cov{names: append([]string(nil), names...), index: idx, dense: data.CloneDense()}, nil
}

// NewDiagonal builds a diagonal covariance from per-name variances.
func NewDiagonal(names []string, variances []float64) (*Cov, error) {
	if len(names) != len(variances) {
		return nil, fmt.Errorf("covariance: %d names for %d variances: %w", len(names), len(variances), ErrMalformed)
	}
	for i, v := range variances {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("covariance: variance %g for %q: %w", v, names[i], ErrMalformed)
		}
	}
	idx, err := newIndex(names)
	if err != nil {
		return nil, err
	}

	return &Cov{
		names: append([]string(nil), names...),
		index: idx,
		diag:  append([]float64(nil), variances...),
	}, nil
}

// FromParameterData builds the diagonal prior for the adjustable parameters of
// p: variance ((ub − lb)/sigmaRange)² with bounds in estimation space.
func FromParameterData(p *control.Problem, sigmaRange float64) (*Cov, error) {
	if sigmaRange <= 0 || math.IsNaN(sigmaRange) || math.IsInf(sigmaRange, 0) {
		return nil, fmt.Errorf("covariance: sigma range %g: %w", sigmaRange, ErrMalformed)
	}
	var (
		names []string
		vars  []float64
	)
	for _, par := range p.Parameters() {
		if !par.Adjustable() {
			continue
		}
		lo, hi := par.EstimationBounds()
		sd := (hi - lo) / sigmaRange
		names = append(names, par.Name)
		vars = append(vars, sd*sd)
	}

	return NewDiagonal(names, vars)
}

// FromObservationData builds the diagonal noise covariance for the
// nonzero-weight observations of p: variance (1/weight)².
func FromObservationData(p *control.Problem) (*Cov, error) {
	var (
		names []string
		vars  []float64
	)
	for _, o := range p.Observations() {
		if !o.Nonzero() {
			continue
		}
		sd := 1 / o.Weight
		names = append(names, o.Name)
		vars = append(vars, sd*sd)
	}

	return NewDiagonal(names, vars)
}

// BlockDiagonal assembles blocks into one covariance with zero cross terms.
// The result is diagonal when every block is.
func BlockDiagonal(blocks ...*Cov) (*Cov, error) {
	var names []string
	allDiag := true
	for _, b := range blocks {
		names = append(names, b.names...)
		allDiag = allDiag && b.IsDiagonal()
	}
	if allDiag {
		var vars []float64
		for _, b := range blocks {
			vars = append(vars, b.diag...)
		}

		return NewDiagonal(names, vars)
	}

	n := len(names)
	if n == 0 {
		return NewDiagonal(nil, nil)
	}
	d, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("covariance: %w", err)
	}
	off := 0
	for _, b := range blocks {
		for i := range b.names {
			for j := range b.names {
				_ = d.Set(off+i, off+j, b.at(i, j))
			}
		}
		off += len(b.names)
	}

	return New(names, d)
}

func (c *Cov) at(i, j int) float64 {
	if c.diag != nil || c.dense == nil {
		if i == j {
			return c.diag[i]
		}

		return 0
	}
	v, _ := c.dense.At(i, j)

	return v
}

// Len is the number of names.
func (c *Cov) Len() int { return len(c.names) }

// Names returns a copy of the name table.
func (c *Cov) Names() []string { return append([]string(nil), c.names...) }

// Has reports whether name is present.
func (c *Cov) Has(name string) bool {
	_, ok := c.index[name]

	return ok
}

// IsDiagonal reports whether c is stored as a variance vector.
func (c *Cov) IsDiagonal() bool { return c.dense == nil }

// Variance returns the diagonal entry for name.
func (c *Cov) Variance(name string) (float64, error) {
	i, ok := c.index[name]
	if !ok {
		return 0, fmt.Errorf("covariance: %q: %w", name, ErrNameMismatch)
	}

	return c.at(i, i), nil
}

// Variances returns the diagonal in name order.
func (c *Cov) Variances() []float64 {
	out := make([]float64, len(c.names))
	for i := range out {
		out[i] = c.at(i, i)
	}

	return out
}

// Get extracts the sub-covariance for names, in the order given.
// A diagonal covariance yields a diagonal sub-block.
func (c *Cov) Get(names []string) (*Cov, error) {
	pos := make([]int, len(names))
	for k, n := range names {
		i, ok := c.index[n]
		if !ok {
			return nil, fmt.Errorf("covariance: %q: %w", n, ErrNameMismatch)
		}
		pos[k] = i
	}
	if c.IsDiagonal() {
		vars := make([]float64, len(pos))
		for k, i := range pos {
			vars[k] = c.diag[i]
		}

		return NewDiagonal(names, vars)
	}
	if len(pos) == 0 {
		return NewDiagonal(nil, nil)
	}
	sub, err := c.dense.Induced(pos, pos)
	if err != nil {
		return nil, fmt.Errorf("covariance: %w", err)
	}
	idx, err := newIndex(names)
	if err != nil {
		return nil, err
	}

	return &Cov{names: append([]string(nil), names...), index: idx, dense: sub}, nil
}

// Dense returns the full matrix as a fresh *matrix.Dense (zeros off the
// diagonal for diagonal covariances). Nil for an empty covariance.
func (c *Cov) Dense() *matrix.Dense {
	n := len(c.names)
	if n == 0 {
		return nil
	}
	if !c.IsDiagonal() {
		return c.dense.CloneDense()
	}
	d, _ := matrix.NewDense(n, n)
	for i, v := range c.diag {
		_ = d.Set(i, i, v)
	}

	return d
}

// ToDense returns a dense-stored copy of c (identity for dense covariances).
func (c *Cov) ToDense() *Cov {
	if len(c.names) == 0 {
		cp, _ := NewDiagonal(nil, nil)
		return cp
	}

	return &Cov{names: c.Names(), index: c.copyIndex(), dense: c.Dense()}
}

func (c *Cov) copyIndex() map[string]int {
	idx := make(map[string]int, len(c.index))
	for k, v := range c.index {
		idx[k] = v
	}

	return idx
}

// AsMatrix returns a covariance-tagged named copy.
func (c *Cov) AsMatrix() (*matrix.Named, error) {
	d := c.Dense()
	if d == nil {
		var err error
		if d, err = matrix.NewDenseFrom(0, 0, nil); err != nil {
			return nil, err
		}
	}

	return matrix.NewNamed(matrix.KindCovariance, c.names, c.names, d)
}
