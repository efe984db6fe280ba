package similarity

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrIndexOutOfRange reports a row request outside the matrix.
var ErrIndexOutOfRange = errors.New("similarity row out of range")

// Matrix is a square, read-only table of pairwise similarity scores. Row i
// holds the scores of item i against every item, itself included.
type Matrix struct {
	dense *mat.Dense
}

// New validates rows and copies them into a Matrix. Rows must form a
// non-empty square and every score must be finite.
func New(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, errors.New("similarity matrix is empty")
	}
	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("similarity row %d has %d columns, want %d", i, len(row), n)
		}
		data = append(data, row...)
	}
	m := &Matrix{dense: mat.NewDense(n, n, data)}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// FromDense wraps an existing gonum matrix after validating it.
func FromDense(d *mat.Dense) (*Matrix, error) {
	if d == nil || d.IsEmpty() {
		return nil, errors.New("similarity matrix is empty")
	}
	m := &Matrix{dense: mat.DenseCopyOf(d)}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Matrix) validate() error {
	r, c := m.dense.Dims()
	if r != c {
		return fmt.Errorf("similarity matrix is %dx%d, want square", r, c)
	}
	for i := range r {
		for j := range c {
			if v := m.dense.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("similarity score at (%d, %d) is not finite: %v", i, j, v)
			}
		}
	}
	return nil
}

// Size returns the number of rows, which equals the number of columns.
func (m *Matrix) Size() int {
	r, _ := m.dense.Dims()
	return r
}

// RowFor returns a copy of the scores of item index against every item.
func (m *Matrix) RowFor(index int) ([]float64, error) {
	n := m.Size()
	if index < 0 || index >= n {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, n)
	}
	return mat.Row(nil, index, m.dense), nil
}

// At returns the score of item i against item j.
func (m *Matrix) At(i, j int) (float64, error) {
	n := m.Size()
	if i < 0 || i >= n || j < 0 || j >= n {
		return 0, fmt.Errorf("%w: (%d, %d) not in [0, %d)", ErrIndexOutOfRange, i, j, n)
	}
	return m.dense.At(i, j), nil
}

// Symmetric reports whether every score equals its mirror within tol.
func (m *Matrix) Symmetric(tol float64) bool {
	return mat.EqualApprox(m.dense, m.dense.T(), tol)
}
