// Package pyemu is an ensemble engine for Monte-Carlo uncertainty analysis
// of environmental models.
//
// It generates, transforms, validates and serializes stochastic ensembles of
// parameter and observation realizations that are consistent with a model's
// prior statistics and with the linear response of the calibration problem.
//
// What is inside?
//
//	control/     the calibration problem: parameters, observations, residuals, Φ
//	covariance/  named prior covariance (diagonal or dense, block-diagonal by group)
//	matrix/      dense row-major kernels, PSD square root, gonum bridge
//	nullspace/   null-space basis from a Jacobian SVD
//	table/       realization table plus its binary and text codecs
//	ensemble/    draws, transforms, bounds enforcement, deviations, projection
//	store/       SQLite persistence of ensembles
//	config/      draw/enforce settings from YAML and the environment
//	logging/     leveled slog construction
//	metrics/     Prometheus instrumentation of ensemble operations
//
// Quick example:
//
//	p, _ := control.LoadFile("model.yaml")
//	pe, _ := ensemble.DrawParameters(p, ensemble.Gaussian, 500, ensemble.WithSeed(42))
//	_ = pe.Enforce(ensemble.Reset)
//	_ = pe.WriteBinaryFile("prior.jcb")
//
// Everything is deterministic for a given seed: group draws run on derived,
// independent random streams, so sequential and parallel runs agree bit for bit.
package pyemu
