// SPDX-License-Identifier: MIT

package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// FormatValue renders v in the shortest form that parses back to v exactly.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseValue parses a text cell. Empty cells and any case of "nan" are NaN.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}

	return strconv.ParseFloat(s, 64)
}

// WriteText encodes t as CSV: a header of column names, then one line per row
// holding the id followed by the values. A table without columns has an
// empty header line.
func WriteText(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.cols); err != nil {
		return fmt.Errorf("table: write header: %w", err)
	}
	rec := make([]string, len(t.cols)+1)
	c := len(t.cols)
	raw := t.data.RawData()
	for i, id := range t.ids {
		rec[0] = id
		for j := 0; j < c; j++ {
			rec[j+1] = FormatValue(raw[i*c+j])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("table: write row %q: %w", id, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("table: flush: %w", err)
	}

	return nil
}

// ReadText decodes CSV written by WriteText, or the variant whose header
// starts with an index label.
func ReadText(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	// csv skips blank lines, so an empty header is detected before it.
	noCols, err := emptyHeader(br)
	if err != nil {
		return nil, &FormatError{Codec: "text", Offset: 1, Reason: "read header", Err: err}
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		header []string
		cols   []string
		ids    []string
		data   []float64
	)
	if noCols {
		cols = []string{}
	} else {
		header, err = cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &FormatError{Codec: "text", Offset: 1, Reason: "missing header"}
			}

			return nil, &FormatError{Codec: "text", Offset: 1, Reason: "read header", Err: err}
		}
		for k := range header {
			header[k] = strings.TrimSpace(header[k])
		}
	}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &FormatError{Codec: "text", Offset: int64(line), Reason: "read row", Err: err}
		}
		if cols == nil {
			switch len(rec) {
			case len(header) + 1:
				cols = header
			case len(header):
				cols = header[1:]
			default:
				return nil, &FormatError{Codec: "text", Offset: int64(line),
					Reason: fmt.Sprintf("row has %d fields for %d header fields", len(rec), len(header))}
			}
		}
		if len(rec) != len(cols)+1 {
			return nil, &FormatError{Codec: "text", Offset: int64(line),
				Reason: fmt.Sprintf("row has %d fields, want %d", len(rec), len(cols)+1)}
		}
		ids = append(ids, strings.TrimSpace(rec[0]))
		for _, cell := range rec[1:] {
			v, perr := ParseValue(cell)
			if perr != nil {
				return nil, &FormatError{Codec: "text", Offset: int64(line), Reason: "bad value", Err: perr}
			}
			data = append(data, v)
		}
	}
	if cols == nil {
		cols = header
	}

	t, err := New(ids, cols, data)
	if err != nil {
		return nil, &FormatError{Codec: "text", Offset: int64(line), Reason: "invalid table", Err: err}
	}

	return t, nil
}

// emptyHeader consumes the first line of br when it is blank and reports
// whether it was.
func emptyHeader(br *bufio.Reader) (bool, error) {
	for _, eol := range []string{"\n", "\r\n"} {
		b, err := br.Peek(len(eol))
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		if string(b) == eol {
			_, err := br.Discard(len(eol))
			return true, err
		}
	}

	return false, nil
}
