// SPDX-License-Identifier: MIT

// Package table implements the realization table: an ordered set of rows
// (string ids) by an ordered set of columns (variable names) over a dense
// row-major float64 buffer, plus its two serialization formats.
//
// Invariants:
//   - row ids are unique, column names are unique;
//   - every row has exactly one value per column; NaN marks a missing value.
//
// Binary format (little-endian):
//
//	"ENSB"            4-byte magic
//	version           uint32 (currently 1)
//	nrow, ncol        int32, int32
//	column names      ncol × 200-byte records, NUL padded
//	row ids           nrow × 200-byte records, NUL padded
//	values            nrow × ncol float64, row-major
//
// Text format (CSV):
//
//	first line        the column names, comma separated
//	each next line    row id, then one value per column
//
// Values are written in the shortest representation that parses back to the
// same float64, so both formats round-trip exactly. The text reader also
// accepts a header whose first field is an index label (e.g. "real_name" or
// an empty field) and "nan"/"NaN" for missing values.
package table
