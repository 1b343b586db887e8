// SPDX-License-Identifier: MIT

package ensemble

// InSpaceForTest exposes inSpace to the black-box tests.
func (e *Ensemble) InSpaceForTest(space Space) (*Ensemble, error) { return e.inSpace(space) }
