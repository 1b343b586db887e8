// SPDX-License-Identifier: MIT

package ensemble

import (
	"fmt"

	"github.com/aymanalz/pyemu/matrix"
	"github.com/aymanalz/pyemu/nullspace"
)

// Project maps every realization through the null space spanned by basis:
// in estimation space, x ← ref + P·(x − ref) with P = V·Vᵀ, where ref is the
// base realization when present and the configuration's current values
// otherwise. Bounds are then enforced (Reset unless configured) and the
// result is returned, as a new ensemble, in e's space.
//
// The basis must name exactly the adjustable columns of e.
func (e *Ensemble) Project(basis *nullspace.Basis, opts ...ProjectOption) (*Ensemble, error) {
	if e.kind != Parameters {
		return nil, ensembleErrorf(opProject, ErrKindMismatch)
	}
	if basis == nil {
		return nil, ensembleErrorf(opProject, fmt.Errorf("nil basis: %w", ErrInvalidArgument))
	}
	o := gatherProjectOptions(opts...)

	work, err := e.inSpace(Estimation)
	if err != nil {
		return nil, ensembleErrorf(opProject, err)
	}
	if work == e {
		work = e.Clone()
	}

	names := basis.Names()
	pos, err := work.basisColumns(names)
	if err != nil {
		return nil, ensembleErrorf(opProject, err)
	}

	var ref []float64
	if work.HasBase() {
		if ref, err = work.table.RowByID(BaseID); err != nil {
			return nil, ensembleErrorf(opProject, err)
		}
	} else {
		ref = work.currentValues(Estimation)
	}
	refSub := make([]float64, len(pos))
	for k, j := range pos {
		refSub[k] = ref[j]
	}

	rows := work.table.Rows()
	k := len(pos)
	dev := make([]float64, rows*k)
	for i := 0; i < rows; i++ {
		for c, j := range pos {
			dev[i*k+c] = work.table.At(i, j) - refSub[c]
		}
	}
	d, err := matrix.NewDenseFrom(rows, k, dev, matrix.WithNoValidateNaNInf())
	if err != nil {
		return nil, ensembleErrorf(opProject, err)
	}
	p, err := basis.Projector()
	if err != nil {
		return nil, ensembleErrorf(opProject, err)
	}
	// Rows are deviations, so D·Pᵀ = D·P projects each of them.
	pd, err := matrix.Mul(d, p)
	if err != nil {
		return nil, ensembleErrorf(opProject, err)
	}
	raw := pd.RawData()
	for i := 0; i < rows; i++ {
		for c, j := range pos {
			work.table.SetAt(i, j, refSub[c]+raw[i*k+c])
		}
	}

	if o.enforce {
		if err := work.Enforce(o.policy); err != nil {
			return nil, ensembleErrorf(opProject, err)
		}
	}
	if work.space != e.space {
		if err := work.transform(e.space); err != nil {
			return nil, ensembleErrorf(opProject, err)
		}
	}
	e.logger.Debug("ensemble projected", "rows", work.Rows(), "dim", basis.Dim(), "enforce", o.enforce)

	return work, nil
}

// basisColumns maps basis names to column positions. The names must cover
// exactly the adjustable columns.
func (e *Ensemble) basisColumns(names []string) ([]int, error) {
	adj := e.adjustableMask()
	pos := make([]int, len(names))
	covered := make([]bool, len(adj))
	var mm NameMismatchError
	for k, n := range names {
		j := e.table.ColIndex(n)
		if j < 0 || !adj[j] {
			mm.Unknown = append(mm.Unknown, n)
			continue
		}
		pos[k] = j
		covered[j] = true
	}
	cols := e.table.Columns()
	for j, a := range adj {
		if a && !covered[j] {
			mm.Missing = append(mm.Missing, cols[j])
		}
	}
	if len(mm.Missing) > 0 || len(mm.Unknown) > 0 {
		return nil, &mm
	}

	return pos, nil
}
