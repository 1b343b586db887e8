// SPDX-License-Identifier: MIT

package control

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName indicates two variables share a name.
	ErrDuplicateName = errors.New("control: duplicate variable name")

	// ErrInvalidBounds indicates lower > upper or a non-finite bound/value.
	ErrInvalidBounds = errors.New("control: invalid bounds")

	// ErrInvalidTransform indicates an unknown transform, or a log transform on
	// a non-positive value or bound.
	ErrInvalidTransform = errors.New("control: invalid transform")

	// ErrInvalidTie indicates a tied parameter whose partner is missing, itself
	// tied, or the parameter itself.
	ErrInvalidTie = errors.New("control: invalid tie")

	// ErrInvalidWeight indicates a negative or non-finite observation weight.
	ErrInvalidWeight = errors.New("control: invalid weight")

	// ErrUnknownName indicates a lookup for a name the problem does not hold.
	ErrUnknownName = errors.New("control: unknown variable name")

	// ErrMissingResidual indicates Φ was requested while a nonzero-weight
	// observation has no modelled value.
	ErrMissingResidual = errors.New("control: missing residual")
)

// VariableError attaches the offending variable name to a sentinel.
type VariableError struct {
	Name string
	Err  error
}

func (e *VariableError) Error() string {
	return fmt.Sprintf("%s (variable %q)", e.Err, e.Name)
}

// Unwrap exposes the sentinel to errors.Is.
func (e *VariableError) Unwrap() error { return e.Err }

func varErr(name string, err error) error {
	return &VariableError{Name: name, Err: err}
}
