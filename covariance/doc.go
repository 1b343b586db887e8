// SPDX-License-Identifier: MIT

// Package covariance holds named prior covariance matrices.
//
// A Cov is either diagonal (a vector of variances) or dense (a full symmetric
// matrix). Both carry a unique, ordered name table that identifies rows and
// columns; row and column names are always the same list.
//
// Constructors validate eagerly and fail with ErrMalformed on a non-square or
// asymmetric matrix, a negative variance, or a bad name table. Lookups by
// unknown name fail with ErrNameMismatch.
package covariance
