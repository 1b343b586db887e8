// SPDX-License-Identifier: MIT

package ensemble

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/aymanalz/pyemu/covariance"
	"github.com/aymanalz/pyemu/logging"
	"github.com/aymanalz/pyemu/metrics"
)

const (
	// DefaultSigmaRange is the number of standard deviations the bound
	// interval spans when no covariance is supplied.
	DefaultSigmaRange = covariance.DefaultSigmaRange

	// DefaultGroupMode partitions gaussian draws by variable group.
	DefaultGroupMode = ByGroups

	// DefaultPolicy is the enforcement policy used by Project.
	DefaultPolicy = Reset
)

const panicSigmaRangeInvalid = "ensemble: WithSigmaRange: range must be finite and positive"

// Option configures draws and the logging/metrics hooks an ensemble carries.
// Options are applied left to right; the last one wins.
type Option func(*options)

type options struct {
	cov        *covariance.Cov
	sigmaRange float64
	groupMode  GroupMode
	fill       *bool
	seed       uint64
	src        rand.Source
	parallel   bool
	logger     *slog.Logger
	recorder   metrics.Recorder
}

// WithCov supplies the prior covariance. It must cover every variable drawn.
func WithCov(c *covariance.Cov) Option {
	return func(o *options) { o.cov = c }
}

// WithSigmaRange sets how many standard deviations the bound interval spans.
// Panics on a non-positive or non-finite range.
func WithSigmaRange(r float64) Option {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		panic(panicSigmaRangeInvalid)
	}

	return func(o *options) { o.sigmaRange = r }
}

// WithGroupMode selects ByGroups or Whole covariance handling.
func WithGroupMode(m GroupMode) Option {
	return func(o *options) { o.groupMode = m }
}

// WithFill keeps non-sampled columns (fixed and tied parameters, zero-weight
// observations) at their current value. Defaults: true for parameters, false
// for observations.
func WithFill(fill bool) Option {
	return func(o *options) { o.fill = &fill }
}

// WithSeed sets the parent seed. Seed 0 maps to a fixed default.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithSource takes the parent seed from src (one Uint64 per draw) instead of
// WithSeed.
func WithSource(src rand.Source) Option {
	return func(o *options) { o.src = src }
}

// WithParallel draws variable groups concurrently. Output is identical to a
// sequential draw with the same seed.
func WithParallel(on bool) Option {
	return func(o *options) { o.parallel = on }
}

// WithLogger sets the logger for draw and enforcement events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

func gatherOptions(opts ...Option) options {
	o := options{
		sigmaRange: DefaultSigmaRange,
		groupMode:  DefaultGroupMode,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.logger = logging.OrDiscard(o.logger)
	if o.recorder == nil {
		o.recorder = metrics.Nop{}
	}

	return o
}

func (o options) fillFor(k Kind) bool {
	if o.fill != nil {
		return *o.fill
	}

	return k == Parameters
}

// ProjectOption configures Project.
type ProjectOption func(*projectOptions)

type projectOptions struct {
	enforce bool
	policy  Policy
}

// WithProjectEnforce enforces bounds with policy after projecting.
func WithProjectEnforce(p Policy) ProjectOption {
	return func(o *projectOptions) { o.enforce, o.policy = true, p }
}

// NoEnforce skips enforcement after projecting.
func NoEnforce() ProjectOption {
	return func(o *projectOptions) { o.enforce = false }
}

func gatherProjectOptions(opts ...ProjectOption) projectOptions {
	o := projectOptions{enforce: true, policy: DefaultPolicy}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
