// SPDX-License-Identifier: MIT

package ensemble

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aymanalz/pyemu/control"
	"github.com/aymanalz/pyemu/covariance"
	"github.com/aymanalz/pyemu/matrix"
	"github.com/aymanalz/pyemu/table"
)

// drawVar is one output column of a draw.
type drawVar struct {
	name    string
	sampled bool
	native  float64 // current value, used verbatim for non-sampled columns
	mean    float64 // estimation space
	lo, hi  float64 // estimation space; parameters only
	toNat   func(float64) float64
}

// drawGroup is a set of sampled columns drawn from one stream.
type drawGroup struct {
	name string
	vars []int // indices into drawPlan.vars
	cov  *covariance.Cov
}

type drawPlan struct {
	kind   Kind
	dist   Distribution
	whole  bool
	vars   []drawVar
	groups []drawGroup
}

// DrawParameters draws n parameter realizations. Sampling happens in
// estimation space around the current values; the result is native.
func DrawParameters(p *control.Problem, dist Distribution, n int, opts ...Option) (*Ensemble, error) {
	return Draw(p, Parameters, dist, n, opts...)
}

// DrawObservations draws n gaussian observation realizations around the
// observed values with noise standard deviation 1/weight, or from WithCov.
func DrawObservations(p *control.Problem, n int, opts ...Option) (*Ensemble, error) {
	return Draw(p, Observations, Gaussian, n, opts...)
}

// Draw produces an ensemble of n realizations with ids "0".."n-1".
//
// Fixed and tied parameters and zero-weight observations are never sampled;
// with WithFill they appear at their current value, otherwise they are
// omitted. Uniform and Triangular apply to parameters only.
//
// Errors: ErrInvalidArgument, ErrUnsupportedDistribution,
// ErrMalformedCovariance, ErrInfeasibleBounds (triangular mode outside the
// bounds), ErrKindMismatch.
func Draw(p *control.Problem, kind Kind, dist Distribution, n int, opts ...Option) (*Ensemble, error) {
	if p == nil || n <= 0 {
		return nil, ensembleErrorf(opDraw, fmt.Errorf("nil problem or %d realizations: %w", n, ErrInvalidArgument))
	}
	switch kind {
	case Parameters:
		if dist > Triangular {
			return nil, ensembleErrorf(opDraw, fmt.Errorf("%v: %w", dist, ErrUnsupportedDistribution))
		}
	case Observations:
		if dist != Gaussian {
			return nil, ensembleErrorf(opDraw, fmt.Errorf("%v observations: %w", dist, ErrUnsupportedDistribution))
		}
	default:
		return nil, ensembleErrorf(opDraw, fmt.Errorf("%v: %w", kind, ErrKindMismatch))
	}

	o := gatherOptions(opts...)
	start := time.Now()
	plan, err := newDrawPlan(p, kind, dist, o)
	if err != nil {
		return nil, ensembleErrorf(opDraw, err)
	}

	parent := parentSeed(o)
	blocks := make([]*matrix.Dense, len(plan.groups))
	drawGroupAt := func(g int) error {
		b, err := plan.sample(g, n, streamSource(parent, uint64(g)))
		if err != nil {
			return fmt.Errorf("group %q: %w", plan.groups[g].name, err)
		}
		blocks[g] = b

		return nil
	}
	if o.parallel && len(plan.groups) > 1 {
		var eg errgroup.Group
		for g := range plan.groups {
			eg.Go(func() error { return drawGroupAt(g) })
		}
		err = eg.Wait()
	} else {
		for g := range plan.groups {
			if err = drawGroupAt(g); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, ensembleErrorf(opDraw, err)
	}

	t, err := plan.assemble(n, blocks)
	if err != nil {
		return nil, ensembleErrorf(opDraw, err)
	}
	e := &Ensemble{kind: kind, space: Native, table: t, problem: p, logger: o.logger, recorder: o.recorder}

	elapsed := time.Since(start)
	o.recorder.ObserveDraw(kind.String(), dist.String(), t.Rows(), t.Cols(), elapsed)
	o.logger.Debug("ensemble drawn",
		"kind", kind.String(), "dist", dist.String(),
		"rows", t.Rows(), "cols", t.Cols(), "groups", len(plan.groups),
		"parallel", o.parallel, "elapsed", elapsed)

	return e, nil
}

func newDrawPlan(p *control.Problem, kind Kind, dist Distribution, o options) (*drawPlan, error) {
	plan := &drawPlan{kind: kind, dist: dist, whole: o.groupMode == Whole}
	fill := o.fillFor(kind)
	var groupOf []string

	if kind == Parameters {
		for _, par := range p.Parameters() {
			if !par.Adjustable() && !fill {
				continue
			}
			v := drawVar{name: par.Name, sampled: par.Adjustable(), native: par.Value, toNat: par.ToNative}
			if v.sampled {
				v.mean = par.EstimationValue()
				v.lo, v.hi = par.EstimationBounds()
				if dist == Triangular && (v.mean < v.lo || v.mean > v.hi) {
					return nil, &InfeasibleBoundsError{Names: []string{par.Name}, Bound: "lower/upper"}
				}
			}
			plan.vars = append(plan.vars, v)
			groupOf = append(groupOf, par.Group)
		}
	} else {
		for _, ob := range p.Observations() {
			if !ob.Nonzero() && !fill {
				continue
			}
			plan.vars = append(plan.vars, drawVar{
				name: ob.Name, sampled: ob.Nonzero(), native: ob.Value, mean: ob.Value,
				toNat: func(v float64) float64 { return v },
			})
			groupOf = append(groupOf, ob.Group)
		}
	}

	// Partition sampled columns, groups in order of first appearance.
	byName := make(map[string]int)
	for k, v := range plan.vars {
		if !v.sampled {
			continue
		}
		key := groupOf[k]
		if plan.whole {
			key = ""
		}
		g, ok := byName[key]
		if !ok {
			g = len(plan.groups)
			byName[key] = g
			plan.groups = append(plan.groups, drawGroup{name: key})
		}
		plan.groups[g].vars = append(plan.groups[g].vars, k)
	}

	if dist != Gaussian || len(plan.groups) == 0 {
		return plan, nil
	}
	full, err := priorCov(p, kind, o)
	if err != nil {
		return nil, err
	}
	for g := range plan.groups {
		names := make([]string, len(plan.groups[g].vars))
		for i, k := range plan.groups[g].vars {
			names[i] = plan.vars[k].name
		}
		block, err := full.Get(names)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCovariance, err)
		}
		plan.groups[g].cov = block
	}

	return plan, nil
}

func priorCov(p *control.Problem, kind Kind, o options) (*covariance.Cov, error) {
	if o.cov != nil {
		return o.cov, nil
	}
	if kind == Parameters {
		return covariance.FromParameterData(p, o.sigmaRange)
	}

	return covariance.FromObservationData(p)
}

// sample draws the n×k estimation-space block of group g from src.
func (plan *drawPlan) sample(g, n int, src rand.Source) (*matrix.Dense, error) {
	grp := plan.groups[g]
	k := len(grp.vars)
	data := make([]float64, n*k)

	switch plan.dist {
	case Gaussian:
		std := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
		for i := range data {
			data[i] = std.Rand()
		}
		z, err := matrix.NewDenseFrom(n, k, data)
		if err != nil {
			return nil, err
		}
		means := make([]float64, k)
		for c, v := range grp.vars {
			means[c] = plan.vars[v].mean
		}
		var x *matrix.Dense
		if grp.cov.IsDiagonal() && !plan.whole {
			sd := grp.cov.Variances()
			for c := range sd {
				sd[c] = math.Sqrt(sd[c])
			}
			x, err = matrix.ScaleColumns(z, sd)
		} else {
			var l *matrix.Dense
			if l, err = matrix.SqrtPSD(grp.cov.Dense()); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformedCovariance, err)
			}
			// L is symmetric, so Z·Lᵀ = Z·L.
			x, err = matrix.Mul(z, l)
		}
		if err != nil {
			return nil, err
		}

		return matrix.BroadcastAddCols(x, means)

	case Uniform, Triangular:
		draws := make([]func() float64, k)
		for c, vi := range grp.vars {
			v := plan.vars[vi]
			switch {
			case v.lo == v.hi:
				lo := v.lo
				draws[c] = func() float64 { return lo }
			case plan.dist == Uniform:
				draws[c] = distuv.Uniform{Min: v.lo, Max: v.hi, Src: src}.Rand
			default:
				draws[c] = distuv.NewTriangle(v.lo, v.hi, v.mean, src).Rand
			}
		}
		for i := 0; i < n; i++ {
			for c := range draws {
				data[i*k+c] = draws[c]()
			}
		}

		return matrix.NewDenseFrom(n, k, data)
	}

	return nil, fmt.Errorf("%v: %w", plan.dist, ErrUnsupportedDistribution)
}

// assemble scatters the group blocks into configuration order and maps
// sampled values back to native space.
func (plan *drawPlan) assemble(n int, blocks []*matrix.Dense) (*table.Table, error) {
	c := len(plan.vars)
	data := make([]float64, n*c)
	for j, v := range plan.vars {
		if v.sampled {
			continue
		}
		for i := 0; i < n; i++ {
			data[i*c+j] = v.native
		}
	}
	for g, grp := range plan.groups {
		raw := blocks[g].RawData()
		k := len(grp.vars)
		for col, j := range grp.vars {
			toNat := plan.vars[j].toNat
			for i := 0; i < n; i++ {
				data[i*c+j] = toNat(raw[i*k+col])
			}
		}
	}

	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(i)
	}
	cols := make([]string, c)
	for j, v := range plan.vars {
		cols[j] = v.name
	}

	return table.New(ids, cols, data)
}
