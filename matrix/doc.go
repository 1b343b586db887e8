// SPDX-License-Identifier: MIT

// Package matrix provides the dense linear-algebra substrate of the ensemble
// engine: a row-major Dense buffer, a small set of deterministic kernels
// (Mul, Transpose, Scale, Add/Sub, MatVec), column statistics used for
// Monte-Carlo covariance estimates, and a symmetric square-root factor for
// correlated sampling from positive-semi-definite covariance matrices.
//
// Named wraps a Dense with row/column names and an explicit Kind tag
// (KindPlain or KindCovariance). The tag is a closed variant: callers switch
// on Kind, never on the dynamic type.
//
// Determinism:
//   - Every kernel uses fixed i→j (or i→k→j) loop orders; identical inputs
//     give bit-identical outputs.
//   - Dense fast-paths operate on the flat buffer; any other Matrix
//     implementation falls back to the bounds-checked At/Set surface.
//
// Errors are package sentinels (see errors.go) wrapped with an operation tag;
// match them with errors.Is.
package matrix
