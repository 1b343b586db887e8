// SPDX-License-Identifier: MIT

package ensemble

import (
	"fmt"
	"io"
	"os"

	"github.com/aymanalz/pyemu/control"
	"github.com/aymanalz/pyemu/table"
)

// WriteBinary encodes e with table.WriteBinary. Values are written in native
// space whatever e's current space is.
func (e *Ensemble) WriteBinary(w io.Writer) error {
	native, err := e.inSpace(Native)
	if err != nil {
		return ensembleErrorf(opWrite, err)
	}
	if err := table.WriteBinary(w, native.table); err != nil {
		return ensembleErrorf(opWrite, err)
	}

	return nil
}

// WriteText encodes e with table.WriteText, in native space.
func (e *Ensemble) WriteText(w io.Writer) error {
	native, err := e.inSpace(Native)
	if err != nil {
		return ensembleErrorf(opWrite, err)
	}
	if err := table.WriteText(w, native.table); err != nil {
		return ensembleErrorf(opWrite, err)
	}

	return nil
}

// ReadBinary decodes a native-space ensemble of kind over p.
func ReadBinary(p *control.Problem, kind Kind, r io.Reader, opts ...Option) (*Ensemble, error) {
	t, err := table.ReadBinary(r)
	if err != nil {
		return nil, ensembleErrorf(opRead, err)
	}

	return New(p, kind, t, Native, opts...)
}

// ReadText decodes a native-space ensemble of kind over p.
func ReadText(p *control.Problem, kind Kind, r io.Reader, opts ...Option) (*Ensemble, error) {
	t, err := table.ReadText(r)
	if err != nil {
		return nil, ensembleErrorf(opRead, err)
	}

	return New(p, kind, t, Native, opts...)
}

// WriteBinaryFile writes e to path, replacing any existing file.
func (e *Ensemble) WriteBinaryFile(path string) error { return writeFile(path, e.WriteBinary) }

// WriteTextFile writes e to path as CSV, replacing any existing file.
func (e *Ensemble) WriteTextFile(path string) error { return writeFile(path, e.WriteText) }

// ReadBinaryFile reads an ensemble written by WriteBinaryFile.
func ReadBinaryFile(p *control.Problem, kind Kind, path string, opts ...Option) (*Ensemble, error) {
	return readFile(path, func(r io.Reader) (*Ensemble, error) { return ReadBinary(p, kind, r, opts...) })
}

// ReadTextFile reads an ensemble written by WriteTextFile.
func ReadTextFile(p *control.Problem, kind Kind, path string, opts ...Option) (*Ensemble, error) {
	return readFile(path, func(r io.Reader) (*Ensemble, error) { return ReadText(p, kind, r, opts...) })
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return ensembleErrorf(opWrite, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ensembleErrorf(opWrite, cerr)
		}
	}()

	return write(f)
}

func readFile(path string, read func(io.Reader) (*Ensemble, error)) (*Ensemble, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ensembleErrorf(opRead, err)
	}
	e, err := read(f)
	if cerr := f.Close(); cerr != nil && err == nil {
		return nil, ensembleErrorf(opRead, fmt.Errorf("close: %w", cerr))
	}

	return e, err
}
