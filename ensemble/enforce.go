// SPDX-License-Identifier: MIT

package ensemble

import (
	"context"
	"fmt"
	"math"

	"github.com/aymanalz/pyemu/logging"
	"github.com/aymanalz/pyemu/matrix"
)

// Enforce brings adjustable parameter values inside their bounds, in place,
// comparing in the ensemble's current space. Fixed and tied columns are
// never touched. Drop may leave fewer rows; that is not an error.
//
// Errors: ErrKindMismatch for observation ensembles, ErrInfeasibleBounds
// when Scale cannot find a positive multiplier (the ensemble is unchanged).
func (e *Ensemble) Enforce(policy Policy) error {
	if e.kind != Parameters {
		return ensembleErrorf(opEnforce, ErrKindMismatch)
	}
	var err error
	switch policy {
	case Reset:
		err = e.enforceReset()
	case Scale:
		err = e.enforceScale()
	case Drop:
		e.enforceDrop()
	default:
		err = fmt.Errorf("%v: %w", policy, ErrInvalidArgument)
	}
	if err != nil {
		return ensembleErrorf(opEnforce, err)
	}

	return nil
}

func (e *Ensemble) enforceReset() error {
	lo, hi := e.bounds()
	clipped, n, err := matrix.ClipColumns(e.table.Dense(), lo, hi)
	if err != nil {
		return err
	}
	t, err := e.table.WithData(clipped)
	if err != nil {
		return err
	}
	e.table = t
	e.recorder.AddAdjusted(Reset.String(), n)
	e.logger.Debug("bounds enforced", "policy", Reset.String(), "clipped", n)

	return nil
}

// enforceScale applies, per realization, the largest factor f ≤ 1 such that
// ref + f·(x − ref) lies inside every adjustable bound, where ref is the
// current configuration value.
func (e *Ensemble) enforceScale() error {
	lo, hi := e.bounds()
	adj := e.adjustableMask()
	ref := e.currentValues(e.space)
	cols := e.table.Columns()

	var bad boundViolations
	for j := range cols {
		if !adj[j] {
			continue
		}
		if ref[j] < lo[j] {
			bad.add(cols[j], false)
		}
		if ref[j] > hi[j] {
			bad.add(cols[j], true)
		}
	}
	if err := bad.err(); err != nil {
		return err
	}

	rows := e.table.Rows()
	factors := make([]float64, rows)
	for i := 0; i < rows; i++ {
		f := 1.0
		for j := range cols {
			if !adj[j] {
				continue
			}
			x := e.table.At(i, j)
			d := x - ref[j]
			switch {
			case x > hi[j]:
				if ref[j] == hi[j] {
					bad.add(cols[j], true)
					continue
				}
				f = math.Min(f, (hi[j]-ref[j])/d)
			case x < lo[j]:
				if ref[j] == lo[j] {
					bad.add(cols[j], false)
					continue
				}
				f = math.Min(f, (lo[j]-ref[j])/d)
			}
		}
		factors[i] = f
	}
	if err := bad.err(); err != nil {
		return err
	}

	ids := e.table.IDs()
	scaled := 0
	for i, f := range factors {
		if f >= 1 {
			continue
		}
		scaled++
		for j := range cols {
			if !adj[j] {
				continue
			}
			d := e.table.At(i, j) - ref[j]
			if d == 0 {
				continue
			}
			// Rounding in ref + f·d may overshoot the bound it was scaled to.
			v := math.Min(math.Max(ref[j]+f*d, lo[j]), hi[j])
			e.table.SetAt(i, j, v)
		}
		e.logger.Log(context.Background(), logging.LevelTrace, "realization scaled",
			"id", ids[i], "factor", f)
	}
	e.recorder.AddAdjusted(Scale.String(), scaled)
	e.logger.Debug("bounds enforced", "policy", Scale.String(), "scaled", scaled)

	return nil
}

func (e *Ensemble) enforceDrop() {
	lo, hi := e.bounds()
	before := e.table.Rows()
	e.table = e.table.DropRows(func(_ int, _ string, row []float64) bool {
		for j, v := range row {
			if v < lo[j] || v > hi[j] {
				return false
			}
		}

		return true
	})
	n := before - e.table.Rows()
	e.recorder.AddDropped(Drop.String(), n)
	e.logger.Debug("bounds enforced", "policy", Drop.String(), "dropped", n)
}
