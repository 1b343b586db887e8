// SPDX-License-Identifier: MIT

package ensemble

import "fmt"

// ToEstimation maps log-transformed parameter columns to log10 in place.
// Observation ensembles only record the new space.
func (e *Ensemble) ToEstimation() error { return e.transform(Estimation) }

// ToNative maps log-transformed parameter columns back with 10^x in place.
// Observation ensembles only record the new space.
func (e *Ensemble) ToNative() error { return e.transform(Native) }

func (e *Ensemble) transform(to Space) error {
	if e.space == to {
		return ensembleErrorf(opTransform, fmt.Errorf("already %v: %w", to, ErrRedundantTransform))
	}
	if e.kind == Parameters {
		for j, par := range e.parameters() {
			if !par.IsLog() {
				continue
			}
			f := par.ToNative
			if to == Estimation {
				f = par.ToEstimation
			}
			for i := 0; i < e.table.Rows(); i++ {
				e.table.SetAt(i, j, f(e.table.At(i, j)))
			}
		}
	}
	e.space = to

	return nil
}

// inSpace returns e itself when already in space, else a transformed copy.
func (e *Ensemble) inSpace(space Space) (*Ensemble, error) {
	if e.space == space {
		return e, nil
	}
	cp := e.Clone()
	if err := cp.transform(space); err != nil {
		return nil, err
	}

	return cp, nil
}
