// Package attention selects a single head of an attention tensor as a
// token-by-token weight matrix.
//
// tensor.go - Tensor- und Matrix-Typen, Slice (Batch 0, gewaehlter Head)
package attention

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShapeMismatch is returned when the token list and the tensor do
	// not describe the same sequence, or when the slice is ragged.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrIndexOutOfRange is returned for a head outside the head axis.
	ErrIndexOutOfRange = errors.New("head index out of range")
)

// Tensor holds attention weights as [batch][head][query][key].
type Tensor [][][][]float64

// Shape gibt (batch, heads, queries, keys) der jeweils ersten Eintraege zurueck
func (t Tensor) Shape() (batch, heads, queries, keys int) {
	batch = len(t)
	if batch == 0 {
		return
	}

	heads = len(t[0])
	if heads == 0 {
		return
	}

	queries = len(t[0][0])
	if queries == 0 {
		return
	}

	keys = len(t[0][0][0])
	return
}

// Heads returns the size of the head axis of batch 0.
func (t Tensor) Heads() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}

// Matrix is a read-only square matrix of attention weights. Row i is the
// query token, column j the key token.
type Matrix struct {
	n    int
	data []float64
}

var _ mat.Matrix = Matrix{}

// NewMatrix copies rows into a Matrix. Every row must have len(rows)
// entries.
func NewMatrix(rows [][]float64) (Matrix, error) {
	n := len(rows)
	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return Matrix{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(row), n)
		}
		data = append(data, row...)
	}

	return Matrix{n: n, data: data}, nil
}

// Dims implements mat.Matrix.
func (m Matrix) Dims() (r, c int) { return m.n, m.n }

// At implements mat.Matrix.
func (m Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic(mat.ErrIndexOutOfRange)
	}
	return m.data[i*m.n+j]
}

// T implements mat.Matrix.
func (m Matrix) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// Len is the number of tokens on either axis.
func (m Matrix) Len() int { return m.n }

// Row gibt eine Kopie der Zeile i zurueck
func (m Matrix) Row(i int) []float64 {
	row := make([]float64, m.n)
	copy(row, m.data[i*m.n:(i+1)*m.n])
	return row
}

// Max gibt das groesste Gewicht zurueck, 0 fuer eine leere Matrix
func (m Matrix) Max() float64 {
	if len(m.data) == 0 {
		return 0
	}
	return floats.Max(m.data)
}

// Slice extracts tensor[0][head] and checks it against the token list.
// Values are copied verbatim.
func Slice(t Tensor, head Head, tokens []string) (Matrix, error) {
	if len(t) == 0 {
		return Matrix{}, fmt.Errorf("%w: tensor has no batch entry", ErrShapeMismatch)
	}

	heads := len(t[0])
	if head < 0 || int(head) >= heads {
		return Matrix{}, fmt.Errorf("%w: head %d, tensor has %d heads", ErrIndexOutOfRange, int(head), heads)
	}

	rows := t[0][head]
	if len(rows) != len(tokens) {
		return Matrix{}, fmt.Errorf("%w: %d tokens, %d query rows", ErrShapeMismatch, len(tokens), len(rows))
	}

	return NewMatrix(rows)
}
