// SPDX-License-Identifier: MIT

// Package ensemble draws, transforms, bounds-checks, projects and serializes
// Monte-Carlo ensembles of parameter and observation realizations.
//
// An Ensemble owns a realization table (rows are realizations, columns are
// variables), records whether its values are in native or estimation space,
// and borrows the calibration problem that defines its variables. Columns are
// always a subset of the problem's names, kept in configuration order.
//
// Typical flow:
//
//	pe, err := ensemble.DrawParameters(p, ensemble.Gaussian, 500, ensemble.WithSeed(7))
//	if err != nil { ... }
//	if err := pe.AddBase(); err != nil { ... }
//	if err := pe.Enforce(ensemble.Scale); err != nil { ... }
//	dev, err := pe.Deviations(ensemble.BaseID)
//
// Determinism:
//   - Every draw is driven by one caller seed (WithSeed) or source (WithSource).
//     Each variable group gets its own PCG stream derived from that parent, so
//     results are identical whether groups are drawn sequentially or with
//     WithParallel.
//   - Nothing in the package reads a global random source.
//
// Spaces:
//   - Sampling, bounds enforcement and null-space projection work on
//     estimation-space values (log10 for log-transformed parameters).
//   - Draws return native-space ensembles. Writers always emit native values.
//   - Observations are never transformed; ToEstimation/ToNative only flip
//     the recorded space.
//
// Concurrency:
//   - An Ensemble is not safe for concurrent mutation. Distinct ensembles share
//     no mutable state, including ensembles built over the same Problem.
package ensemble
