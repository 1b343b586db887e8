// SPDX-License-Identifier: MIT

package table

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

const (
	binaryMagic   = "ENSB"
	binaryVersion = uint32(1)

	// NameWidth is the fixed record width of a name in the binary format.
	NameWidth = 200

	// maxBinaryDim caps nrow and ncol, and maxBinaryCells caps nrow×ncol.
	// Buffers grow only as records are actually read.
	maxBinaryDim   = 1 << 24
	maxBinaryCells = 1 << 28
)

var le = binary.LittleEndian

// WriteBinary encodes t in the binary format.
// Names longer than NameWidth bytes, containing NUL, or ending in a space
// are rejected: records are padded and read back trimmed.
func WriteBinary(w io.Writer, t *Table) error {
	for _, names := range [][]string{t.cols, t.ids} {
		for _, n := range names {
			if len(n) > NameWidth || strings.IndexByte(n, 0) >= 0 {
				return &FormatError{Codec: "binary", Reason: fmt.Sprintf("name %q does not fit a %d-byte record", n, NameWidth)}
			}
			if strings.HasSuffix(n, " ") {
				return &FormatError{Codec: "binary", Reason: fmt.Sprintf("name %q has trailing spaces", n)}
			}
		}
	}

	bw := bufio.NewWriter(w)
	hdr := make([]byte, 16)
	copy(hdr, binaryMagic)
	le.PutUint32(hdr[4:], binaryVersion)
	le.PutUint32(hdr[8:], uint32(int32(len(t.ids))))
	le.PutUint32(hdr[12:], uint32(int32(len(t.cols))))
	if _, err := bw.Write(hdr); err != nil {
		return fmt.Errorf("table: write header: %w", err)
	}

	rec := make([]byte, NameWidth)
	for _, names := range [][]string{t.cols, t.ids} {
		for _, n := range names {
			clear(rec)
			copy(rec, n)
			if _, err := bw.Write(rec); err != nil {
				return fmt.Errorf("table: write names: %w", err)
			}
		}
	}

	row := make([]byte, 8*len(t.cols))
	raw := t.data.RawData()
	c := len(t.cols)
	for i := range t.ids {
		for j := 0; j < c; j++ {
			le.PutUint64(row[8*j:], math.Float64bits(raw[i*c+j]))
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("table: write values: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("table: flush: %w", err)
	}

	return nil
}

// countingReader tracks the byte offset for error reports.
type countingReader struct {
	r   io.Reader
	off int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.off += int64(n)

	return n, err
}

func (c *countingReader) full(buf []byte, what string) error {
	start := c.off
	if _, err := io.ReadFull(c, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return &FormatError{Codec: "binary", Offset: start, Reason: "truncated " + what, Err: err}
		}

		return &FormatError{Codec: "binary", Offset: start, Reason: "read " + what, Err: err}
	}

	return nil
}

// ReadBinary decodes a table written by WriteBinary.
func ReadBinary(r io.Reader) (*Table, error) {
	cr := &countingReader{r: bufio.NewReader(r)}

	hdr := make([]byte, 16)
	if err := cr.full(hdr, "header"); err != nil {
		return nil, err
	}
	if string(hdr[:4]) != binaryMagic {
		return nil, &FormatError{Codec: "binary", Reason: fmt.Sprintf("bad magic %q", hdr[:4])}
	}
	if v := le.Uint32(hdr[4:]); v != binaryVersion {
		return nil, &FormatError{Codec: "binary", Offset: 4, Reason: fmt.Sprintf("unsupported version %d", v)}
	}
	nrow := int(int32(le.Uint32(hdr[8:])))
	ncol := int(int32(le.Uint32(hdr[12:])))
	if nrow < 0 || ncol < 0 || nrow > maxBinaryDim || ncol > maxBinaryDim ||
		int64(nrow)*int64(ncol) > maxBinaryCells {
		return nil, &FormatError{Codec: "binary", Offset: 8, Reason: fmt.Sprintf("bad shape %d×%d", nrow, ncol)}
	}

	rec := make([]byte, NameWidth)
	readNames := func(n int, what string) ([]string, error) {
		var out []string
		for k := 0; k < n; k++ {
			if err := cr.full(rec, what); err != nil {
				return nil, err
			}
			out = append(out, string(bytes.TrimRight(rec, "\x00 ")))
		}

		return out, nil
	}
	cols, err := readNames(ncol, "column names")
	if err != nil {
		return nil, err
	}
	ids, err := readNames(nrow, "row ids")
	if err != nil {
		return nil, err
	}

	var data []float64
	row := make([]byte, 8*ncol)
	for i := 0; i < nrow; i++ {
		if err := cr.full(row, "values"); err != nil {
			return nil, err
		}
		for j := 0; j < ncol; j++ {
			data = append(data, math.Float64frombits(le.Uint64(row[8*j:])))
		}
	}

	t, err := New(ids, cols, data)
	if err != nil {
		return nil, &FormatError{Codec: "binary", Offset: cr.off, Reason: "invalid table", Err: err}
	}

	return t, nil
}
