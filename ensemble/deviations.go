// SPDX-License-Identifier: MIT

package ensemble

import (
	"fmt"

	"github.com/aymanalz/pyemu/matrix"
)

// Deviations returns a new ensemble of the same kind and space holding each
// realization minus a reference: the column means, or the realization named
// by centerOn (BaseID or any id). The reference row of the result is exactly
// zero.
func (e *Ensemble) Deviations(centerOn ...string) (*Ensemble, error) {
	if len(centerOn) > 1 {
		return nil, ensembleErrorf(opDeviations, fmt.Errorf("%d reference ids: %w", len(centerOn), ErrInvalidArgument))
	}

	var (
		ref []float64
		err error
	)
	if len(centerOn) == 1 {
		ref, err = e.table.RowByID(centerOn[0])
	} else {
		ref, err = matrix.ColumnMeans(e.table.Dense())
	}
	if err != nil {
		return nil, ensembleErrorf(opDeviations, err)
	}

	d, err := matrix.BroadcastSubCols(e.table.Dense(), ref)
	if err != nil {
		return nil, ensembleErrorf(opDeviations, err)
	}
	t, err := e.table.WithData(d)
	if err != nil {
		return nil, ensembleErrorf(opDeviations, err)
	}

	return e.derive(t, e.space), nil
}
