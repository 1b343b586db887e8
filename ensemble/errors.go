// SPDX-License-Identifier: MIT

package ensemble

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aymanalz/pyemu/covariance"
	"github.com/aymanalz/pyemu/table"
)

// Sentinel errors. Match with errors.Is; the typed errors below carry detail
// and match their sentinel too.
var (
	// ErrDuplicateBase indicates AddBase on an ensemble that already has a base row.
	ErrDuplicateBase = errors.New("ensemble: base realization already present")

	// ErrInfeasibleBounds indicates scale enforcement cannot find a positive
	// multiplier because the reference point is outside, or pinned at, a bound
	// that a realization crosses.
	ErrInfeasibleBounds = errors.New("ensemble: infeasible bounds")

	// ErrNameMismatch indicates columns inconsistent with the configuration.
	ErrNameMismatch = errors.New("ensemble: name mismatch")

	// ErrMalformedCovariance indicates a covariance that is not square, not
	// symmetric, or does not cover the variables being drawn.
	ErrMalformedCovariance = covariance.ErrMalformed

	// ErrRedundantTransform indicates a transform to the space already held.
	ErrRedundantTransform = errors.New("ensemble: redundant transform")

	// ErrSerializationFormat indicates a corrupt or short binary/text payload.
	ErrSerializationFormat = table.ErrFormat

	// ErrKindMismatch indicates an operation the ensemble's kind does not support.
	ErrKindMismatch = errors.New("ensemble: operation not supported for this kind")

	// ErrUnsupportedDistribution indicates a distribution not available for the kind.
	ErrUnsupportedDistribution = errors.New("ensemble: unsupported distribution")

	// ErrInvalidArgument indicates a nil input or an out-of-range count.
	ErrInvalidArgument = errors.New("ensemble: invalid argument")
)

const (
	opNew        = "New"
	opDraw       = "Draw"
	opAddBase    = "AddBase"
	opTransform  = "Transform"
	opEnforce    = "Enforce"
	opDeviations = "Deviations"
	opProject    = "Project"
	opNonzero    = "Nonzero"
	opPhi        = "PhiVector"
	opCovariance = "Covariance"
	opAsMatrix   = "AsMatrix"
	opWrite      = "Write"
	opRead       = "Read"
	opStatistics = "Statistics"
)

// ensembleErrorf tags err with the operation name, keeping it matchable.
func ensembleErrorf(op string, err error) error {
	return fmt.Errorf("ensemble.%s: %w", op, err)
}

// InfeasibleBoundsError lists the variables whose reference value leaves no
// room for scale enforcement.
type InfeasibleBoundsError struct {
	Names []string
	Bound string // "lower", "upper" or "lower/upper"
}

func (e *InfeasibleBoundsError) Error() string {
	return fmt.Sprintf("ensemble: infeasible %s bound for %s", e.Bound, strings.Join(e.Names, ", "))
}

// Is matches ErrInfeasibleBounds.
func (e *InfeasibleBoundsError) Is(target error) bool { return target == ErrInfeasibleBounds }

// NameMismatchError reports names expected but absent (Missing) and names
// present but unknown to the configuration (Unknown).
type NameMismatchError struct {
	Missing []string
	Unknown []string
}

func (e *NameMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown "+strings.Join(e.Unknown, ", "))
	}

	return "ensemble: name mismatch: " + strings.Join(parts, "; ")
}

// Is matches ErrNameMismatch.
func (e *NameMismatchError) Is(target error) bool { return target == ErrNameMismatch }

// boundViolations accumulates names per side for an InfeasibleBoundsError.
type boundViolations struct {
	names        []string
	seen         map[string]struct{}
	lower, upper bool
}
	lower, upper bool
}

func (b *boundViolations) add(name string, upper bool) {
	if b.seen == nil {
		b.seen = make(map[string]struct{})
	}
	if upper {
		b.upper = true
	} else {
		b.lower = true
	}
	if _, ok := b.seen[name]; ok {
		return
	}
	b.seen[name] = struct{}{}
	b.names = append(b.names, name)
}

func (b *boundViolations) err() error {
	if len(b.names) == 0 {
		return nil
	}
	side := "lower"
	switch {
	case b.lower && b.upper:
		side = "lower/upper"
	case b.upper:
		side = "upper"
	}

	return &InfeasibleBoundsError{Names: b.names, Bound: side}
}
