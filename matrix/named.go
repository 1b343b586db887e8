// SPDX-License-Identifier: MIT

package matrix

import "fmt"

// Named is a Dense with row and column name tables and a Kind tag.
// Row names index rows in order; column names index columns in order.
type Named struct {
	Kind     Kind
	RowNames []string
	ColNames []string
	*Dense
}

// NewNamed validates that the name tables match d's shape and hold no
// duplicates, then wraps d (no copy).
//
// Errors:
//   - ErrNilMatrix, ErrNameMismatch.
func NewNamed(kind Kind, rowNames, colNames []string, d *Dense) (*Named, error) {
	if d == nil {
		return nil, matrixErrorf("NewNamed", ErrNilMatrix)
	}
	if len(rowNames) != d.r || len(colNames) != d.c {
		return nil, matrixErrorf("NewNamed", fmt.Errorf("%d×%d names for %d×%d matrix: %w",
			len(rowNames), len(colNames), d.r, d.c, ErrNameMismatch))
	}
	if dup, ok := firstDuplicate(rowNames); ok {
		return nil, matrixErrorf("NewNamed", fmt.Errorf("duplicate row %q: %w", dup, ErrNameMismatch))
	}
	if dup, ok := firstDuplicate(colNames); ok {
		return nil, matrixErrorf("NewNamed", fmt.Errorf("duplicate column %q: %w", dup, ErrNameMismatch))
	}

	return &Named{
		Kind:     kind,
		RowNames: append([]string(nil), rowNames...),
		ColNames: append([]string(nil), colNames...),
		Dense:    d,
	}, nil
}

// Lookup returns the value at (row name, column name).
func (n *Named) Lookup(row, col string) (float64, error) {
	i, j := indexOfName(n.RowNames, row), indexOfName(n.ColNames, col)
	if i < 0 || j < 0 {
		return 0, matrixErrorf("Named.Lookup", fmt.Errorf("(%q,%q): %w", row, col, ErrNameMismatch))
	}

	return n.data[i*n.c+j], nil
}

func indexOfName(names []string, name string) int {
	for i, s := range names {
		if s == name {
			return i
		}
	}

	return -1
}

func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	for _, s := range names {
		if _, ok := seen[s]; ok {
			return s, true
		}
		seen[s] = struct{}{}
	}

	return "", false
}
