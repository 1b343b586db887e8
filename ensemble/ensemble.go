// SPDX-License-Identifier: MIT

package ensemble

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/aymanalz/pyemu/control"
	"github.com/aymanalz/pyemu/covariance"
	"github.com/aymanalz/pyemu/matrix"
	"github.com/aymanalz/pyemu/metrics"
	"github.com/aymanalz/pyemu/table"
)

// Ensemble is a realization table bound to a calibration problem.
// The problem is borrowed and never modified.
type Ensemble struct {
	kind     Kind
	space    Space
	table    *table.Table
	problem  *control.Problem
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New wraps a copy of t as an ensemble of the given kind whose values are in
// space. Every column must name a variable of p; columns are reordered into
// configuration order. Only WithLogger and WithRecorder apply here.
func New(p *control.Problem, kind Kind, t *table.Table, space Space, opts ...Option) (*Ensemble, error) {
	if p == nil || t == nil {
		return nil, ensembleErrorf(opNew, fmt.Errorf("nil problem or table: %w", ErrInvalidArgument))
	}
	if kind != Parameters && kind != Observations {
		return nil, ensembleErrorf(opNew, fmt.Errorf("%v: %w", kind, ErrInvalidArgument))
	}
	o := gatherOptions(opts...)

	e := &Ensemble{kind: kind, space: space, problem: p, logger: o.logger, recorder: o.recorder}
	cols := t.Columns()
	var unknown []string
	for _, c := range cols {
		if e.configIndex(c) < 0 {
			unknown = append(unknown, c)
		}
	}
	if len(unknown) > 0 {
		return nil, ensembleErrorf(opNew, &NameMismatchError{Unknown: unknown})
	}
	slices.SortStableFunc(cols, func(a, b string) int {
		return cmp.Compare(e.configIndex(a), e.configIndex(b))
	})
	ordered, err := t.Reorder(cols)
	if err != nil {
		return nil, ensembleErrorf(opNew, err)
	}
	e.table = ordered

	return e, nil
}

// NewParameterEnsemble wraps t as a parameter ensemble in space.
func NewParameterEnsemble(p *control.Problem, t *table.Table, space Space, opts ...Option) (*Ensemble, error) {
	return New(p, Parameters, t, space, opts...)
}

// NewObservationEnsemble wraps t as an observation ensemble.
func NewObservationEnsemble(p *control.Problem, t *table.Table, opts ...Option) (*Ensemble, error) {
	return New(p, Observations, t, Native, opts...)
}

func (e *Ensemble) configIndex(name string) int {
	if e.kind == Parameters {
		return e.problem.ParIndex(name)
	}

	return e.problem.ObsIndex(name)
}

// derive returns an ensemble sharing e's kind, problem and hooks over t.
func (e *Ensemble) derive(t *table.Table, space Space) *Ensemble {
	return &Ensemble{
		kind:     e.kind,
		space:    space,
		table:    t,
		problem:  e.problem,
		logger:   e.logger,
		recorder: e.recorder,
	}
}

// Kind reports whether e holds parameters or observations.
func (e *Ensemble) Kind() Kind { return e.kind }

// Space reports whether values are native or in estimation space.
func (e *Ensemble) Space() Space { return e.space }

// Problem returns the borrowed configuration.
func (e *Ensemble) Problem() *control.Problem { return e.problem }

// Table returns a copy of the realization table.
func (e *Ensemble) Table() *table.Table { return e.table.Clone() }

// IDs returns the realization ids in row order.
func (e *Ensemble) IDs() []string { return e.table.IDs() }

// Columns returns the variable names in configuration order.
func (e *Ensemble) Columns() []string { return e.table.Columns() }

// Rows is the number of realizations.
func (e *Ensemble) Rows() int { return e.table.Rows() }

// Cols is the number of variables.
func (e *Ensemble) Cols() int { return e.table.Cols() }

// Value returns the entry for realization id and variable name.
func (e *Ensemble) Value(id, name string) (float64, error) { return e.table.Value(id, name) }

// Clone returns an independent copy sharing only the borrowed problem.
func (e *Ensemble) Clone() *Ensemble { return e.derive(e.table.Clone(), e.space) }

// HasBase reports whether the base realization is present.
func (e *Ensemble) HasBase() bool { return e.table.HasID(BaseID) }

// parameters returns the parameter definition of every column, in order.
func (e *Ensemble) parameters() []control.Parameter {
	cols := e.table.Columns()
	out := make([]control.Parameter, len(cols))
	for j, c := range cols {
		out[j], _ = e.problem.Parameter(c)
	}

	return out
}

// currentValues returns the configuration's current value for every column,
// mapped into space.
func (e *Ensemble) currentValues(space Space) []float64 {
	cols := e.table.Columns()
	out := make([]float64, len(cols))
	if e.kind == Observations {
		for j, c := range cols {
			o, _ := e.problem.Observation(c)
			out[j] = o.Value
		}

		return out
	}
	for j, par := range e.parameters() {
		if space == Estimation {
			out[j] = par.EstimationValue()
		} else {
			out[j] = par.Value
		}
	}

	return out
}

// AddBase appends the BaseID realization holding the configuration's current
// values in the ensemble's space.
func (e *Ensemble) AddBase() error {
	if e.table.HasID(BaseID) {
		return ensembleErrorf(opAddBase, ErrDuplicateBase)
	}
	if err := e.table.AppendRow(BaseID, e.currentValues(e.space)); err != nil {
		return ensembleErrorf(opAddBase, err)
	}

	return nil
}

// Nonzero returns the observation ensemble restricted to nonzero-weight
// observations, in configuration order. Row order is kept.
func (e *Ensemble) Nonzero() (*Ensemble, error) {
	if e.kind != Observations {
		return nil, ensembleErrorf(opNonzero, ErrKindMismatch)
	}
	names := e.problem.NonzeroObsNames()
	if err := e.requireColumns(names); err != nil {
		return nil, ensembleErrorf(opNonzero, err)
	}
	t, err := e.table.SelectColumns(names)
	if err != nil {
		return nil, ensembleErrorf(opNonzero, err)
	}

	return e.derive(t, e.space), nil
}

func (e *Ensemble) requireColumns(names []string) error {
	var missing []string
	for _, n := range names {
		if e.table.ColIndex(n) < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &NameMismatchError{Missing: missing}
	}

	return nil
}

// PhiVector returns Φ = Σ (weight·(observed − simulated))² over the
// nonzero-weight observations for every realization, ordered as IDs. The
// ensemble values are the simulated outputs.
func (e *Ensemble) PhiVector() ([]float64, error) {
	if e.kind != Observations {
		return nil, ensembleErrorf(opPhi, ErrKindMismatch)
	}
	names := e.problem.NonzeroObsNames()
	if err := e.requireColumns(names); err != nil {
		return nil, ensembleErrorf(opPhi, err)
	}
	pos := make([]int, len(names))
	obs := make([]control.Observation, len(names))
	for k, n := range names {
		pos[k] = e.table.ColIndex(n)
		obs[k], _ = e.problem.Observation(n)
	}

	phi := make([]float64, e.table.Rows())
	for i := range phi {
		var acc float64
		for k, j := range pos {
			r := obs[k].Weight * (obs[k].Value - e.table.At(i, j))
			acc += r * r
		}
		phi[i] = acc
	}

	return phi, nil
}

// DropNA returns a new ensemble of the same kind without the realizations
// that hold a missing value.
func (e *Ensemble) DropNA() *Ensemble {
	t := e.table.DropRows(func(i int, _ string, _ []float64) bool { return !e.table.HasNaN(i) })
	if n := e.table.Rows() - t.Rows(); n > 0 {
		e.recorder.AddDropped("nan", n)
		e.logger.Debug("dropped realizations with missing values", "kind", e.kind.String(), "dropped", n)
	}

	return e.derive(t, e.space)
}

// AsMatrix returns a named dense copy of the values tagged with kind.
// A covariance tag requires a square table.
func (e *Ensemble) AsMatrix(kind matrix.Kind) (*matrix.Named, error) {
	if kind == matrix.KindCovariance && e.table.Rows() != e.table.Cols() {
		return nil, ensembleErrorf(opAsMatrix, fmt.Errorf("%d×%d: %w", e.table.Rows(), e.table.Cols(), matrix.ErrDimensionMismatch))
	}
	n, err := matrix.NewNamed(kind, e.table.IDs(), e.table.Columns(), e.table.Dense())
	if err != nil {
		return nil, ensembleErrorf(opAsMatrix, err)
	}

	return n, nil
}

// Mean returns the column means. NaN entries propagate.
func (e *Ensemble) Mean() ([]float64, error) {
	m, err := matrix.ColumnMeans(e.table.Dense())
	if err != nil {
		return nil, ensembleErrorf(opStatistics, err)
	}

	return m, nil
}

// Std returns the column sample standard deviations (n−1 denominator).
func (e *Ensemble) Std() ([]float64, error) {
	s, err := matrix.ColumnStd(e.table.Dense())
	if err != nil {
		return nil, ensembleErrorf(opStatistics, err)
	}

	return s, nil
}

// Covariance estimates the covariance of the variables from the
// mean-centered realizations, XᵀX/(n−1), in the ensemble's current space.
func (e *Ensemble) Covariance() (*covariance.Cov, error) {
	if e.table.Rows() < 2 {
		return nil, ensembleErrorf(opCovariance, fmt.Errorf("%d realizations: %w", e.table.Rows(), ErrInvalidArgument))
	}
	for i := 0; i < e.table.Rows(); i++ {
		if e.table.HasNaN(i) {
			return nil, ensembleErrorf(opCovariance, fmt.Errorf("realization %q: %w", e.table.IDs()[i], matrix.ErrNaNInf))
		}
	}
	cov, _, err := matrix.Covariance(e.table.Dense())
	if err != nil {
		return nil, ensembleErrorf(opCovariance, err)
	}
	c, err := covariance.New(e.table.Columns(), cov)
	if err != nil {
		return nil, ensembleErrorf(opCovariance, err)
	}

	return c, nil
}

// adjustableMask marks the columns enforcement and projection act on.
func (e *Ensemble) adjustableMask() []bool {
	pars := e.parameters()
	out := make([]bool, len(pars))
	for j, par := range pars {
		out[j] = par.Adjustable()
	}

	return out
}

// bounds returns per-column bounds in the ensemble's current space.
// Non-adjustable columns are unbounded.
func (e *Ensemble) bounds() (lo, hi []float64) {
	pars := e.parameters()
	lo = make([]float64, len(pars))
	hi = make([]float64, len(pars))
	for j, par := range pars {
		if !par.Adjustable() {
			lo[j], hi[j] = math.Inf(-1), math.Inf(1)
			continue
		}
		if e.space == Estimation {
			lo[j], hi[j] = par.EstimationBounds()
		} else {
			lo[j], hi[j] = par.Bounds()
		}
	}

	return lo, hi
}
