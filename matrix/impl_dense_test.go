// SPDX-License-Identifier: MIT

// Package matrix_test contains unit tests for the Dense implementation
// of the Matrix interface in the matrix package.
package matrix_test

import (
	"math"
	"testing"

	"github.com/aymanalz/pyemu/matrix"
	"github.com/stretchr/testify/require"
)

// TestNewDenseInvalidDimensions ensures that NewDense rejects non-positive dimensions.
func TestNewDenseInvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 5)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	_, err = matrix.NewDense(5, 0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestNewDenseFrom(t *testing.T) {
	m, err := matrix.NewDenseFrom(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 3.0, MustAt(t, m, 1, 0))

	empty, err := matrix.NewDenseFrom(0, 3, nil)
	require.NoError(t, err)
	r, c := empty.Shape()
	require.Equal(t, 0, r)
	require.Equal(t, 3, c)

	_, err = matrix.NewDenseFrom(2, 2, []float64{1, 2, 3})
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	_, err = matrix.NewDenseFrom(1, 2, []float64{1, math.NaN()})
	require.ErrorIs(t, err, matrix.ErrNaNInf)

	lax, err := matrix.NewDenseFrom(1, 2, []float64{1, math.NaN()}, matrix.WithNoValidateNaNInf())
	require.NoError(t, err)
	require.True(t, math.IsNaN(MustAt(t, lax, 0, 1)))
}

func TestNewDenseFromCopiesInput(t *testing.T) {
	src := []float64{1, 2}
	m := NewFilledDense(t, 1, 2, src)
	src[0] = 99
	require.Equal(t, 1.0, MustAt(t, m, 0, 0))
}

// TestAtSetOutOfBounds ensures At() and Set() return ErrOutOfRange on invalid access.
func TestAtSetOutOfBounds(t *testing.T) {
	m := MustDense(t, 2, 2)

	_, err := m.At(-1, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	_, err = m.At(0, 2)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	require.ErrorIs(t, m.Set(2, 0, 1.23), matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, -1, 4.56), matrix.ErrOutOfRange)
}

func TestSetRespectsNumericPolicy(t *testing.T) {
	m := MustDense(t, 1, 1)
	require.ErrorIs(t, m.Set(0, 0, math.Inf(1)), matrix.ErrNaNInf)

	m.SetValidateNaNInf(false)
	require.NoError(t, m.Set(0, 0, math.NaN()))
	require.False(t, m.ValidatesNaNInf())
}

func TestRowColSetRow(t *testing.T) {
	m := NewFilledDense(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})

	row, err := m.Row(1)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 5, 6}, row)
	row[0] = 100
	require.Equal(t, 4.0, MustAt(t, m, 1, 0), "Row must return a copy")

	col, err := m.Col(2)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 6}, col)

	require.NoError(t, m.SetRow(0, []float64{7, 8, 9}))
	require.Equal(t, 8.0, MustAt(t, m, 0, 1))
	require.ErrorIs(t, m.SetRow(0, []float64{1}), matrix.ErrDimensionMismatch)
	require.ErrorIs(t, m.SetRow(5, []float64{1, 2, 3}), matrix.ErrOutOfRange)

	_, err = m.Row(2)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

// TestCloneIndependence ensures Clone() returns a deep copy that does not share storage.
func TestCloneIndependence(t *testing.T) {
	m := NewFilledDense(t, 2, 2, []float64{1, 0, 0, 2})
	clone := m.Clone()
	MustSet(t, clone, 0, 0, 3.0)

	require.Equal(t, 1.0, MustAt(t, m, 0, 0))
	require.Equal(t, 3.0, MustAt(t, clone, 0, 0))
}

// TestStringOutput checks that String() formats the matrix as expected.
func TestStringOutput(t *testing.T) {
	m := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 0.1})
	require.Equal(t, "[1, 2]\n[3, 0.1]\n", m.String())
}

func TestInduced(t *testing.T) {
	m := NewFilledDense(t, 3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	sub, err := m.Induced([]int{2, 0}, []int{1})
	require.NoError(t, err)
	require.Equal(t, []float64{8, 2}, sub.RawData())

	zero, err := m.Induced(nil, []int{0})
	require.NoError(t, err)
	require.Equal(t, 0, zero.Rows())

	_, err = m.Induced([]int{3}, []int{0})
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	_, err = m.Induced([]int{0}, []int{-1})
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestApplyAndDo(t *testing.T) {
	m := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, m.Apply(func(_, _ int, v float64) float64 { return v * 10 }))

	var sum float64
	visited := 0
	m.Do(func(_, _ int, v float64) bool {
		sum += v
		visited++
		return visited < 3
	})
	require.Equal(t, 60.0, sum)
	require.Equal(t, 3, visited)

	err := m.Apply(func(_, _ int, v float64) float64 { return math.Log(-v) })
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestIdentity(t *testing.T) {
	id, err := matrix.Identity(3)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			require.Equal(t, want, MustAt(t, id, i, j))
		}
	}
}

func TestNamed(t *testing.T) {
	d := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 4})
	n, err := matrix.NewNamed(matrix.KindCovariance, []string{"a", "b"}, []string{"a", "b"}, d)
	require.NoError(t, err)
	require.Equal(t, matrix.KindCovariance, n.Kind)
	require.Equal(t, "covariance", n.Kind.String())

	v, err := n.Lookup("b", "a")
	require.NoError(t, err)
	require.Equal(t, 3.0, v)

	_, err = n.Lookup("z", "a")
	require.ErrorIs(t, err, matrix.ErrNameMismatch)

	_, err = matrix.NewNamed(matrix.KindPlain, []string{"a"}, []string{"a", "b"}, d)
	require.ErrorIs(t, err, matrix.ErrNameMismatch)
	_, err = matrix.NewNamed(matrix.KindPlain, []string{"a", "a"}, []string{"a", "b"}, d)
	require.ErrorIs(t, err, matrix.ErrNameMismatch)
	_, err = matrix.NewNamed(matrix.KindPlain, nil, nil, nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestWithEpsilonPanicsOnNegative(t *testing.T) {
	require.Panics(t, func() { matrix.WithEpsilon(-1) })
	require.NotPanics(t, func() { matrix.WithEpsilon(0) })
}
