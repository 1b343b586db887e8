// SPDX-License-Identifier: MIT

package ensemble_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aymanalz/pyemu/control/controltest"
	"github.com/aymanalz/pyemu/ensemble"
	"github.com/aymanalz/pyemu/matrix"
	"github.com/aymanalz/pyemu/table"
)

func TestNew_ReordersAndValidatesColumns(t *testing.T) {
	p := controltest.Problem(t)

	tb, err := table.New([]string{"0"}, []string{"strt", "hk1"}, []float64{10, 5})
	require.NoError(t, err)
	e, err := ensemble.NewParameterEnsemble(p, tb, ensemble.Native)
	require.NoError(t, err)
	require.Equal(t, []string{"hk1", "strt"}, e.Columns())
	require.Equal(t, []float64{5, 10}, row(t, e, "0"))

	tb, err = table.New([]string{"0"}, []string{"hk1", "nope"}, []float64{1, 2})
	require.NoError(t, err)
	_, err = ensemble.NewParameterEnsemble(p, tb, ensemble.Native)
	require.ErrorIs(t, err, ensemble.ErrNameMismatch)
	var nm *ensemble.NameMismatchError
	require.ErrorAs(t, err, &nm)
	require.Equal(t, []string{"nope"}, nm.Unknown)

	// Parameter names are not observation names.
	_, err = ensemble.NewObservationEnsemble(p, e.Table())
	require.ErrorIs(t, err, ensemble.ErrNameMismatch)

	_, err = ensemble.New(nil, ensemble.Parameters, tb, ensemble.Native)
	require.ErrorIs(t, err, ensemble.ErrInvalidArgument)
}

func TestAddBase(t *testing.T) {
	p := controltest.Problem(t)

	t.Run("native", func(t *testing.T) {
		pe := mustDraw(t, p, ensemble.Gaussian, 10, ensemble.WithSeed(3))
		require.NoError(t, pe.AddBase())
		base := row(t, pe, ensemble.BaseID)
		for j, name := range pe.Columns() {
			par, _ := p.Parameter(name)
			require.Equal(t, par.Value, base[j], name)
		}
		require.ErrorIs(t, pe.AddBase(), ensemble.ErrDuplicateBase)
		require.Equal(t, 11, pe.Rows())
	})

	t.Run("estimation", func(t *testing.T) {
		pe := mustDraw(t, p, ensemble.Gaussian, 10, ensemble.WithSeed(3))
		require.NoError(t, pe.ToEstimation())
		require.NoError(t, pe.AddBase())
		base := row(t, pe, ensemble.BaseID)
		for j, name := range pe.Columns() {
			par, _ := p.Parameter(name)
			require.Equal(t, par.EstimationValue(), base[j], name)
		}
	})

	t.Run("observations", func(t *testing.T) {
		oe, err := ensemble.DrawObservations(p, 4, ensemble.WithFill(true))
		require.NoError(t, err)
		require.NoError(t, oe.AddBase())
		base := row(t, oe, ensemble.BaseID)
		for j, name := range oe.Columns() {
			ob, _ := p.Observation(name)
			require.Equal(t, ob.Value, base[j], name)
		}
	})
}

func TestNonzero(t *testing.T) {
	p := controltest.Problem(t)
	oe, err := ensemble.DrawObservations(p, 5, ensemble.WithFill(true))
	require.NoError(t, err)
	require.Equal(t, p.ObsNames(), oe.Columns())

	nz, err := oe.Nonzero()
	require.NoError(t, err)
	require.Equal(t, p.NonzeroObsNames(), nz.Columns())
	require.Equal(t, p.NNonzeroObs(), nz.Cols())
	require.Equal(t, oe.IDs(), nz.IDs())
	require.Equal(t, ensemble.Observations, nz.Kind())

	pe := mustDraw(t, p, ensemble.Gaussian, 2)
	_, err = pe.Nonzero()
	require.ErrorIs(t, err, ensemble.ErrKindMismatch)

	partial, err := oe.Table().SelectColumns([]string{"h1", "h3"})
	require.NoError(t, err)
	short, err := ensemble.NewObservationEnsemble(p, partial)
	require.NoError(t, err)
	_, err = short.Nonzero()
	var nm *ensemble.NameMismatchError
	require.ErrorAs(t, err, &nm)
	require.Equal(t, []string{"h2", "h4", "f1"}, nm.Missing)
}

func TestPhiVector_MatchesProblemPhi(t *testing.T) {
	p := controltest.Problem(t)
	oe, err := ensemble.DrawObservations(p, 8, ensemble.WithSeed(11))
	require.NoError(t, err)

	phi, err := oe.PhiVector()
	require.NoError(t, err)
	require.Len(t, phi, oe.Rows())

	for i, id := range oe.IDs() {
		q := p.Clone()
		for j, name := range oe.Columns() {
			require.NoError(t, q.SetResidual(name, row(t, oe, id)[j]))
		}
		want, err := q.Phi()
		require.NoError(t, err)
		require.InDelta(t, want, phi[i], 1e-10, id)
	}

	pe := mustDraw(t, p, ensemble.Gaussian, 2)
	_, err = pe.PhiVector()
	require.ErrorIs(t, err, ensemble.ErrKindMismatch)
}

func TestDropNA(t *testing.T) {
	p := controltest.Problem(t)
	pe := mustDraw(t, p, ensemble.Gaussian, 9)
	withNaN := edited(t, pe, func(tb *table.Table) {
		for i := 0; i < tb.Rows(); i += 3 {
			tb.SetAt(i, 1, math.NaN())
		}
	})

	clean := withNaN.DropNA()
	require.Equal(t, ensemble.Parameters, clean.Kind())
	require.Equal(t, 6, clean.Rows())
	require.Equal(t, []string{"1", "2", "4", "5", "7", "8"}, clean.IDs())
	require.Equal(t, 9, withNaN.Rows())
}

func TestAsMatrix(t *testing.T) {
	p := controltest.Problem(t)
	pe := mustDraw(t, p, ensemble.Gaussian, 4)

	m, err := pe.AsMatrix(matrix.KindPlain)
	require.NoError(t, err)
	require.Equal(t, matrix.KindPlain, m.Kind)
	require.Equal(t, pe.IDs(), m.RowNames)
	require.Equal(t, pe.Columns(), m.ColNames)
	require.Equal(t, pe.Table().Data(), m.RawData())

	_, err = pe.AsMatrix(matrix.KindCovariance)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	cov, err := mustDraw(t, p, ensemble.Gaussian, 500).Covariance()
	require.NoError(t, err)
	cm, err := cov.AsMatrix()
	require.NoError(t, err)
	require.Equal(t, matrix.KindCovariance, cm.Kind)
}

func TestDeviations(t *testing.T) {
	p := controltest.Problem(t)
	pe := mustDraw(t, p, ensemble.Gaussian, 20, ensemble.WithSeed(5))
	require.NoError(t, pe.AddBase())

	check := func(t *testing.T, e *ensemble.Ensemble) {
		t.Helper()
		dev, err := e.Deviations(ensemble.BaseID)
		require.NoError(t, err)
		var sum float64
		for _, v := range row(t, dev, ensemble.BaseID) {
			sum += math.Abs(v)
		}
		require.Zero(t, sum)
		require.Equal(t, e.Space(), dev.Space())
	}
	check(t, pe)
	require.NoError(t, pe.ToEstimation())
	check(t, pe)

	dev, err := pe.Deviations()
	require.NoError(t, err)
	means, err := dev.Mean()
	require.NoError(t, err)
	for _, m := range means {
		require.InDelta(t, 0, m, 1e-12)
	}

	dev, err = pe.Deviations("7")
	require.NoError(t, err)
	for _, v := range row(t, dev, "7") {
		require.Zero(t, v)
	}

	_, err = pe.Deviations("missing")
	require.ErrorIs(t, err, table.ErrUnknownID)
	_, err = pe.Deviations("0", "1")
	require.ErrorIs(t, err, ensemble.ErrInvalidArgument)
}

func TestTransform(t *testing.T) {
	p := controltest.Problem(t)
	pe := mustDraw(t, p, ensemble.Gaussian, 5)
	orig := pe.Table()

	require.ErrorIs(t, pe.ToNative(), ensemble.ErrRedundantTransform)
	require.NoError(t, pe.ToEstimation())
	require.Equal(t, ensemble.Estimation, pe.Space())
	require.ErrorIs(t, pe.ToEstimation(), ensemble.ErrRedundantTransform)

	hk1 := column(t, pe, "hk1")
	sy := column(t, pe, "sy")
	want, _ := orig.Column("hk1")
	wantSy, _ := orig.Column("sy")
	for i := range hk1 {
		require.Equal(t, math.Log10(want[i]), hk1[i])
		require.Equal(t, wantSy[i], sy[i])
	}

	require.NoError(t, pe.ToNative())
	ok, err := matrix.AllClose(pe.Table().Dense(), orig.Dense(), 1e-12, 0)
	require.NoError(t, err)
	require.True(t, ok)

	oe, err := ensemble.DrawObservations(p, 3)
	require.NoError(t, err)
	before := oe.Table()
	require.NoError(t, oe.ToEstimation())
	require.True(t, before.Equal(oe.Table()))
	require.Equal(t, ensemble.Estimation, oe.Space())
}

func TestInSpace(t *testing.T) {
	p := controltest.Problem(t)
	pe := mustDraw(t, p, ensemble.Gaussian, 5)
	orig := pe.Table()

	same, err := pe.InSpaceForTest(ensemble.Native)
	require.NoError(t, err)
	require.Same(t, pe, same)

	est, err := pe.InSpaceForTest(ensemble.Estimation)
	require.NoError(t, err)
	require.NotSame(t, pe, est)
	require.Equal(t, ensemble.Estimation, est.Space())
	require.Equal(t, ensemble.Native, pe.Space(), "source keeps its space")
	require.True(t, orig.Equal(pe.Table()), "source values untouched")

	hk1 := column(t, est, "hk1")
	want, _ := orig.Column("hk1")
	for i := range hk1 {
		require.Equal(t, math.Log10(want[i]), hk1[i])
	}
}

func TestCovarianceEstimate(t *testing.T) {
	p := controltest.Problem(t)
	pe := mustDraw(t, p, ensemble.Gaussian, 4000, ensemble.WithSeed(21), ensemble.WithFill(false))
	require.NoError(t, pe.ToEstimation())

	cov, err := pe.Covariance()
	require.NoError(t, err)
	require.Equal(t, p.AdjParNames(), cov.Names())
	for _, name := range cov.Names() {
		par, _ := p.Parameter(name)
		lo, hi := par.EstimationBounds()
		sd := (hi - lo) / ensemble.DefaultSigmaRange
		v, err := cov.Variance(name)
		require.NoError(t, err)
		require.InDelta(t, sd, math.Sqrt(v), 0.05, name)
	}

	_, err = mustDraw(t, p, ensemble.Gaussian, 1).Covariance()
	require.ErrorIs(t, err, ensemble.ErrInvalidArgument)
}
