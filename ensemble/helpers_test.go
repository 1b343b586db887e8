// SPDX-License-Identifier: MIT

package ensemble_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aymanalz/pyemu/control"
	"github.com/aymanalz/pyemu/ensemble"
	"github.com/aymanalz/pyemu/table"
)

func mustDraw(t testing.TB, p *control.Problem, dist ensemble.Distribution, n int, opts ...ensemble.Option) *ensemble.Ensemble {
	t.Helper()
	e, err := ensemble.DrawParameters(p, dist, n, opts...)
	require.NoError(t, err)

	return e
}

// edited rebuilds e over a copy of its table after edit has run on it.
func edited(t testing.TB, e *ensemble.Ensemble, edit func(tb *table.Table)) *ensemble.Ensemble {
	t.Helper()
	tb := e.Table()
	edit(tb)
	out, err := ensemble.New(e.Problem(), e.Kind(), tb, e.Space())
	require.NoError(t, err)

	return out
}

// atValues builds a parameter ensemble whose rows all equal the current
// native values of every parameter of p.
func atValues(t testing.TB, p *control.Problem, ids ...string) *ensemble.Ensemble {
	t.Helper()
	pars := p.Parameters()
	data := make([]float64, 0, len(ids)*len(pars))
	for range ids {
		for _, par := range pars {
			data = append(data, par.Value)
		}
	}
	tb, err := table.New(ids, p.ParNames(), data)
	require.NoError(t, err)
	e, err := ensemble.NewParameterEnsemble(p, tb, ensemble.Native)
	require.NoError(t, err)

	return e
}

func column(t testing.TB, e *ensemble.Ensemble, name string) []float64 {
	t.Helper()
	col, err := e.Table().Column(name)
	require.NoError(t, err)

	return col
}

func row(t testing.TB, e *ensemble.Ensemble, id string) []float64 {
	t.Helper()
	r, err := e.Table().RowByID(id)
	require.NoError(t, err)

	return r
}
