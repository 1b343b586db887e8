// SPDX-License-Identifier: MIT

package table

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID indicates two rows share an id.
	ErrDuplicateID = errors.New("table: duplicate row id")

	// ErrDuplicateColumn indicates two columns share a name.
	ErrDuplicateColumn = errors.New("table: duplicate column")

	// ErrUnknownID indicates a lookup for an id the table does not hold.
	ErrUnknownID = errors.New("table: unknown row id")

	// ErrUnknownColumn indicates a lookup for a column the table does not hold.
	ErrUnknownColumn = errors.New("table: unknown column")

	// ErrShape indicates a data slice or row whose length does not match the table.
	ErrShape = errors.New("table: shape mismatch")

	// ErrFormat indicates a malformed, truncated or unsupported serialized table.
	ErrFormat = errors.New("table: serialization format error")
)

// FormatError reports where a serialized table stopped making sense.
type FormatError struct {
	Codec  string // "binary" or "text"
	Offset int64  // byte offset (binary) or line number (text)
	Reason string
	Err    error // underlying I/O or parse error, may be nil
}

func (e *FormatError) Error() string {
	unit := "offset"
	if e.Codec == "text" {
		unit = "line"
	}
	if e.Err != nil {
		return fmt.Sprintf("table: %s format error at %s %d: %s: %v", e.Codec, unit, e.Offset, e.Reason, e.Err)
	}

	return fmt.Sprintf("table: %s format error at %s %d: %s", e.Codec, unit, e.Offset, e.Reason)
}

// Is matches ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// Unwrap exposes the underlying error.
func (e *FormatError) Unwrap() error { return e.Err }
