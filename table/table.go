// SPDX-License-Identifier: MIT

package table

import (
	"fmt"
	"math"

	"github.com/aymanalz/pyemu/matrix"
)

// Table is an ordered rows × columns grid of float64 realization values.
// The zero value is not usable; build tables with New, FromDense or Empty.
type Table struct {
	ids    []string
	cols   []string
	rowIdx map[string]int
	colIdx map[string]int
	data   *matrix.Dense
}

func indexNames(names []string, dupErr error) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := idx[n]; dup {
			return nil, fmt.Errorf("%q: %w", n, dupErr)
		}
		idx[n] = i
	}

	return idx, nil
}

// New builds a table from ids, column names and row-major data (copied).
// NaN values are allowed and mark missing entries.
func New(ids, cols []string, data []float64) (*Table, error) {
	if len(data) != len(ids)*len(cols) {
		return nil, fmt.Errorf("table: %d values for %d×%d: %w", len(data), len(ids), len(cols), ErrShape)
	}
	d, err := matrix.NewDenseFrom(len(ids), len(cols), data, matrix.WithNoValidateNaNInf())
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}

	return build(ids, cols, d)
}

// FromDense wraps a copy of d with ids and column names.
func FromDense(ids, cols []string, d *matrix.Dense) (*Table, error) {
	if d == nil {
		return nil, fmt.Errorf("table: %w", matrix.ErrNilMatrix)
	}
	if d.Rows() != len(ids) || d.Cols() != len(cols) {
		return nil, fmt.Errorf("table: %d ids, %d columns for %d×%d matrix: %w", len(ids), len(cols), d.Rows(), d.Cols(), ErrShape)
	}
	cp := d.CloneDense()
	cp.SetValidateNaNInf(false)

	return build(ids, cols, cp)
}

// Empty builds a table with the given columns and no rows.
func Empty(cols []string) (*Table, error) { return New(nil, cols, nil) }

func build(ids, cols []string, d *matrix.Dense) (*Table, error) {
	rowIdx, err := indexNames(ids, ErrDuplicateID)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	colIdx, err := indexNames(cols, ErrDuplicateColumn)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}

	return &Table{
		ids:    append([]string(nil), ids...),
		cols:   append([]string(nil), cols...),
		rowIdx: rowIdx,
		colIdx: colIdx,
		data:   d,
	}, nil
}

// IDs returns a copy of the row ids in order.
func (t *Table) IDs() []string { return append([]string(nil), t.ids...) }

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string { return append([]string(nil), t.cols...) }

// Rows is the row count.
func (t *Table) Rows() int { return len(t.ids) }

// Cols is the column count.
func (t *Table) Cols() int { return len(t.cols) }

// RowIndex returns the position of id, or -1.
func (t *Table) RowIndex(id string) int {
	if i, ok := t.rowIdx[id]; ok {
		return i
	}

	return -1
}

// ColIndex returns the position of name, or -1.
func (t *Table) ColIndex(name string) int {
	if j, ok := t.colIdx[name]; ok {
		return j
	}

	return -1
}

// HasID reports whether id is a row of t.
func (t *Table) HasID(id string) bool {
	_, ok := t.rowIdx[id]

	return ok
}

// At returns the value at row i, column j. Indices must be in range.
func (t *Table) At(i, j int) float64 { return t.data.RawData()[i*len(t.cols)+j] }

// SetAt overwrites the value at row i, column j. Indices must be in range.
func (t *Table) SetAt(i, j int, v float64) { t.data.RawData()[i*len(t.cols)+j] = v }

// Row returns a copy of row i.
func (t *Table) Row(i int) ([]float64, error) {
	r, err := t.data.Row(i)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}

	return r, nil
}

// RowByID returns a copy of the row named id.
func (t *Table) RowByID(id string) ([]float64, error) {
	i, ok := t.rowIdx[id]
	if !ok {
		return nil, fmt.Errorf("table: %q: %w", id, ErrUnknownID)
	}

	return t.Row(i)
}

// Column returns a copy of column name.
func (t *Table) Column(name string) ([]float64, error) {
	j, ok := t.colIdx[name]
	if !ok {
		return nil, fmt.Errorf("table: %q: %w", name, ErrUnknownColumn)
	}

	return t.data.Col(j)
}

// Value returns the entry at (id, col).
func (t *Table) Value(id, col string) (float64, error) {
	i, ok := t.rowIdx[id]
	if !ok {
		return 0, fmt.Errorf("table: %q: %w", id, ErrUnknownID)
	}
	j, ok := t.colIdx[col]
	if !ok {
		return 0, fmt.Errorf("table: %q: %w", col, ErrUnknownColumn)
	}

	return t.At(i, j), nil
}

// Set overwrites the entry at (id, col).
func (t *Table) Set(id, col string, v float64) error {
	i, ok := t.rowIdx[id]
	if !ok {
		return fmt.Errorf("table: %q: %w", id, ErrUnknownID)
	}
	j, ok := t.colIdx[col]
	if !ok {
		return fmt.Errorf("table: %q: %w", col, ErrUnknownColumn)
	}
	t.SetAt(i, j, v)

	return nil
}

// AppendRow adds a row at the end.
func (t *Table) AppendRow(id string, values []float64) error {
	if _, dup := t.rowIdx[id]; dup {
		return fmt.Errorf("table: %q: %w", id, ErrDuplicateID)
	}
	if len(values) != len(t.cols) {
		return fmt.Errorf("table: %d values for %d columns: %w", len(values), len(t.cols), ErrShape)
	}
	buf := make([]float64, 0, len(t.data.RawData())+len(values))
	buf = append(buf, t.data.RawData()...)
	buf = append(buf, values...)
	d, err := matrix.NewDenseFrom(len(t.ids)+1, len(t.cols), buf, matrix.WithNoValidateNaNInf())
	if err != nil {
		return fmt.Errorf("table: %w", err)
	}
	t.data = d
	t.rowIdx[id] = len(t.ids)
	t.ids = append(t.ids, id)

	return nil
}

// DropRows returns a new table holding only the rows keep accepts, in order.
// keep receives the row position, id and a read-only view of the row.
func (t *Table) DropRows(keep func(i int, id string, row []float64) bool) *Table {
	c := len(t.cols)
	raw := t.data.RawData()
	var (
		ids  []string
		data []float64
	)
	for i, id := range t.ids {
		row := raw[i*c : (i+1)*c]
		if keep(i, id, row) {
			ids = append(ids, id)
			data = append(data, row...)
		}
	}
	out, _ := New(ids, t.cols, data)

	return out
}

// HasNaN reports whether row i holds a missing value.
func (t *Table) HasNaN(i int) bool {
	c := len(t.cols)
	for _, v := range t.data.RawData()[i*c : (i+1)*c] {
		if math.IsNaN(v) {
			return true
		}
	}

	return false
}

// SelectColumns returns a new table with the named columns, in the given order.
func (t *Table) SelectColumns(names []string) (*Table, error) {
	pos := make([]int, len(names))
	for k, n := range names {
		j, ok := t.colIdx[n]
		if !ok {
			return nil, fmt.Errorf("table: %q: %w", n, ErrUnknownColumn)
		}
		pos[k] = j
	}
	rows := make([]int, len(t.ids))
	for i := range rows {
		rows[i] = i
	}
	d, err := t.data.Induced(rows, pos)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}

	return build(t.ids, names, d)
}

// Reorder returns a new table whose columns are exactly names (a permutation
// of the current columns).
func (t *Table) Reorder(names []string) (*Table, error) {
	if len(names) != len(t.cols) {
		return nil, fmt.Errorf("table: reorder to %d of %d columns: %w", len(names), len(t.cols), ErrShape)
	}

	return t.SelectColumns(names)
}

// WithIDs returns a copy of t with its row ids replaced.
func (t *Table) WithIDs(ids []string) (*Table, error) {
	if len(ids) != len(t.ids) {
		return nil, fmt.Errorf("table: %d ids for %d rows: %w", len(ids), len(t.ids), ErrShape)
	}

	return build(ids, t.cols, t.data.CloneDense())
}

// WithData returns a table with t's ids and columns over a copy of d.
func (t *Table) WithData(d *matrix.Dense) (*Table, error) {
	return FromDense(t.ids, t.cols, d)
}

// Clone returns an independent deep copy.
func (t *Table) Clone() *Table {
	out, _ := build(t.ids, t.cols, t.data.CloneDense())

	return out
}

// Dense returns a copy of the values as a *matrix.Dense (NaN allowed).
func (t *Table) Dense() *matrix.Dense { return t.data.CloneDense() }

// Data returns a copy of the row-major values.
func (t *Table) Data() []float64 { return append([]float64(nil), t.data.RawData()...) }

// Equal reports identical ids, columns and values (NaN equal to NaN).
func (t *Table) Equal(o *Table) bool {
	if len(t.ids) != len(o.ids) || len(t.cols) != len(o.cols) {
		return false
	}
	for i := range t.ids {
		if t.ids[i] != o.ids[i] {
			return false
		}
	}
	for j := range t.cols {
		if t.cols[j] != o.cols[j] {
			return false
		}
	}
	a, b := t.data.RawData(), o.data.RawData()
	for k := range a {
		if a[k] != b[k] && !(math.IsNaN(a[k]) && math.IsNaN(b[k])) {
			return false
		}
	}

	return true
}
