// SPDX-License-Identifier: MIT

package ensemble_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/aymanalz/pyemu/control"
	"github.com/aymanalz/pyemu/control/controltest"
	"github.com/aymanalz/pyemu/ensemble"
	"github.com/aymanalz/pyemu/logging"
	"github.com/aymanalz/pyemu/metrics"
	"github.com/aymanalz/pyemu/table"
)

func requireInBounds(t *testing.T, e *ensemble.Ensemble) {
	t.Helper()
	p := e.Problem()
	for _, name := range e.Columns() {
		par, _ := p.Parameter(name)
		if !par.Adjustable() {
			continue
		}
		lo, hi := par.Bounds()
		if e.Space() == ensemble.Estimation {
			lo, hi = par.EstimationBounds()
		}
		// Values clipped in estimation space land within an ulp of the
		// native bound after 10^x.
		tol := 1e-12 * math.Max(math.Abs(lo), math.Abs(hi))
		for _, v := range column(t, e, name) {
			require.GreaterOrEqual(t, v, lo-tol, name)
			require.LessOrEqual(t, v, hi+tol, name)
		}
	}
}

func TestEnforceScale_SinglePerturbation(t *testing.T) {
	p := controltest.Problem(t)
	e := edited(t, atValues(t, p, "0"), func(tb *table.Table) {
		require.NoError(t, tb.Set("0", "hk1", 0.25)) // half the lower bound
	})

	require.NoError(t, e.Enforce(ensemble.Scale))
	got := row(t, e, "0")
	for j, name := range e.Columns() {
		par, _ := p.Parameter(name)
		if name == "hk1" {
			require.InDelta(t, par.Lower, got[j], 1e-12)
			require.GreaterOrEqual(t, got[j], par.Lower)
			continue
		}
		require.Equal(t, par.Value, got[j], name)
	}
}

func TestEnforceScale_JointFactor(t *testing.T) {
	p := controltest.AdjustableOnly(t)
	// sy overshoots its upper bound by half its room; strt moves 0.2 inside.
	e := edited(t, atValues(t, p, "0"), func(tb *table.Table) {
		require.NoError(t, tb.Set("0", "sy", 0.1+2*0.2))
		require.NoError(t, tb.Set("0", "strt", 10.2))
	})
	require.NoError(t, e.Enforce(ensemble.Scale))

	sy, err := e.Value("0", "sy")
	require.NoError(t, err)
	strt, err := e.Value("0", "strt")
	require.NoError(t, err)
	require.InDelta(t, 0.3, sy, 1e-12)
	require.InDelta(t, 10.1, strt, 1e-12, "the same factor shrinks every deviation")
}

func TestEnforceScale_AllWithinBounds(t *testing.T) {
	p := controltest.Problem(t)
	for _, space := range []ensemble.Space{ensemble.Native, ensemble.Estimation} {
		t.Run(space.String(), func(t *testing.T) {
			e := mustDraw(t, p, ensemble.Gaussian, 300, ensemble.WithSeed(8), ensemble.WithSigmaRange(1))
			if space == ensemble.Estimation {
				require.NoError(t, e.ToEstimation())
			}
			require.NoError(t, e.Enforce(ensemble.Scale))
			requireInBounds(t, e)
			require.Equal(t, 300, e.Rows())
		})
	}
}

func TestEnforceScale_InfeasibleBase(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(par *control.Parameter)
		bound string
	}{
		{"at upper", func(par *control.Parameter) { par.Value = par.Upper }, "upper"},
		{"at lower", func(par *control.Parameter) { par.Value = par.Lower }, "lower"},
		{"beyond upper", func(par *control.Parameter) { par.Value = par.Upper * 2 }, "upper"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := controltest.Modify(t, func(pars []control.Parameter, _ []control.Observation) {
				for k := range pars {
					tc.edit(&pars[k])
				}
			})
			e := mustDraw(t, p, ensemble.Gaussian, 10, ensemble.WithSeed(4))
			before := e.Table()

			err := e.Enforce(ensemble.Scale)
			require.ErrorIs(t, err, ensemble.ErrInfeasibleBounds)
			var ib *ensemble.InfeasibleBoundsError
			require.ErrorAs(t, err, &ib)
			require.Equal(t, tc.bound, ib.Bound)
			require.NotEmpty(t, ib.Names)
			require.True(t, before.Equal(e.Table()), "failed enforcement leaves values untouched")
		})
	}
}

func TestEnforceReset(t *testing.T) {
	p := controltest.Problem(t)
	e := mustDraw(t, p, ensemble.Gaussian, 10, ensemble.WithSeed(12))
	e = edited(t, e, func(tb *table.Table) {
		for j, par := range p.Parameters() {
			tb.SetAt(0, j, par.Value+par.Upper)
		}
	})
	shifted := row(t, e, "0")

	require.NoError(t, e.Enforce(ensemble.Reset))
	got := row(t, e, "0")
	for j, par := range p.Parameters() {
		if par.Adjustable() {
			require.Equal(t, par.Upper, got[j], par.Name)
		} else {
			require.Equal(t, shifted[j], got[j], "%s is not enforced", par.Name)
		}
	}
	requireInBounds(t, e)
}

func TestEnforceDrop(t *testing.T) {
	p := controltest.Problem(t)
	e := edited(t, atValues(t, p, "0", "1"), func(tb *table.Table) {
		for j, par := range p.Parameters() {
			tb.SetAt(0, j, tb.At(0, j)+par.Upper)
		}
	})

	require.NoError(t, e.Enforce(ensemble.Drop))
	require.Equal(t, []string{"1"}, e.IDs())

	// Out-of-bounds fixed and tied values do not count.
	e = edited(t, atValues(t, p, "0"), func(tb *table.Table) {
		require.NoError(t, tb.Set("0", "ss", 1))
		require.NoError(t, tb.Set("0", "hk3", 1000))
	})
	require.NoError(t, e.Enforce(ensemble.Drop))
	require.Equal(t, 1, e.Rows())
}

func TestEnforce_Errors(t *testing.T) {
	p := controltest.Problem(t)
	oe, err := ensemble.DrawObservations(p, 3)
	require.NoError(t, err)
	require.ErrorIs(t, oe.Enforce(ensemble.Reset), ensemble.ErrKindMismatch)

	pe := mustDraw(t, p, ensemble.Gaussian, 3)
	require.ErrorIs(t, pe.Enforce(ensemble.Policy(7)), ensemble.ErrInvalidArgument)
}

func TestEnforce_RecordsAndLogs(t *testing.T) {
	p := controltest.Problem(t)
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPrometheus(reg)
	require.NoError(t, err)
	var logs bytes.Buffer

	e := mustDraw(t, p, ensemble.Gaussian, 200,
		ensemble.WithSeed(31), ensemble.WithSigmaRange(1),
		ensemble.WithRecorder(rec), ensemble.WithLogger(logging.NewLogger("debug", &logs)))
	require.NoError(t, e.Enforce(ensemble.Drop))
	dropped := 200 - e.Rows()
	require.Positive(t, dropped)

	require.Contains(t, logs.String(), "msg=\"ensemble drawn\"")
	require.Contains(t, logs.String(), "policy=drop")
	require.Equal(t, 1, testutil.CollectAndCount(reg, "pyemu_draws_total"))
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "pyemu_realizations_dropped_total" {
			require.Equal(t, float64(dropped), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
}
