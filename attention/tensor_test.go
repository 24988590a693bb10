package attention

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// uniform baut einen Tensor [1][heads][n][n], Head h hat ueberall den Wert h+1
func uniform(heads, n int) Tensor {
	t := Tensor{make([][][]float64, heads)}
	for h := range heads {
		t[0][h] = make([][]float64, n)
		for i := range n {
			t[0][h][i] = make([]float64, n)
			for j := range n {
				t[0][h][i][j] = float64(h + 1)
			}
		}
	}
	return t
}

func TestSliceShape(t *testing.T) {
	for n := 1; n <= 8; n++ {
		tokens := make([]string, n)
		m, err := Slice(uniform(4, n), 2, tokens)
		require.NoError(t, err)

		r, c := m.Dims()
		assert.Equal(t, n, r)
		assert.Equal(t, n, c)
		assert.Equal(t, n, m.Len())
	}
}

func TestSliceSelectsHead(t *testing.T) {
	tensor := uniform(4, 3)
	for _, h := range Heads(4) {
		m, err := Slice(tensor, h, []string{"a", "b", "c"})
		require.NoError(t, err)
		assert.Equal(t, float64(h+1), m.At(1, 2))
		assert.Equal(t, float64(h+1), m.Max())
	}
}

func TestSliceValuesVerbatim(t *testing.T) {
	tensor := Tensor{{{{0.25, -0.5}, {3, 0}}}}
	m, err := Slice(tensor, 0, []string{"x", "y"})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.25, -0.5}, m.Row(0))
	assert.Equal(t, []float64{3, 0}, m.Row(1))
	assert.Equal(t, 3.0, m.Max())
}

func TestSliceCopies(t *testing.T) {
	tensor := uniform(1, 2)
	m, err := Slice(tensor, 0, []string{"a", "b"})
	require.NoError(t, err)

	tensor[0][0][0][0] = 42
	assert.Equal(t, 1.0, m.At(0, 0))

	row := m.Row(0)
	row[1] = 42
	assert.Equal(t, 1.0, m.At(0, 1))
}

func TestSliceIdempotent(t *testing.T) {
	tensor := uniform(2, 5)
	tokens := []string{"a", "b", "c", "d", "e"}

	first, err := Slice(tensor, 1, tokens)
	require.NoError(t, err)
	second, err := Slice(tensor, 1, tokens)
	require.NoError(t, err)

	assert.True(t, mat.Equal(first, second))
}

func TestSliceShapeMismatch(t *testing.T) {
	ragged := uniform(1, 3)
	ragged[0][0][1] = ragged[0][0][1][:2]

	keys5 := Tensor{{make([][]float64, 6)}}
	for i := range keys5[0][0] {
		keys5[0][0][i] = make([]float64, 5)
	}

	cases := map[string]struct {
		tensor Tensor
		tokens []string
	}{
		"no batch":        {Tensor{}, []string{"a"}},
		"too many tokens": {uniform(1, 2), []string{"a", "b", "c"}},
		"too few tokens":  {uniform(1, 3), []string{"a"}},
		"ragged row":      {ragged, []string{"a", "b", "c"}},
		"key axis 5 vs 6": {keys5, []string{"The", "cat", "sat", "on", "the", "mat"}},
	}

	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Slice(tt.tensor, 0, tt.tokens)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrShapeMismatch), "got %v", err)
		})
	}
}

func TestSliceIndexOutOfRange(t *testing.T) {
	tensor := uniform(4, 2)
	for _, h := range []Head{-1, 4, 10} {
		_, err := Slice(tensor, h, []string{"a", "b"})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
}

func TestSliceEmpty(t *testing.T) {
	m, err := Slice(Tensor{{{}}}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0.0, m.Max())
}

func TestTensorShape(t *testing.T) {
	b, h, q, k := uniform(4, 6).Shape()
	assert.Equal(t, []int{1, 4, 6, 6}, []int{b, h, q, k})
	assert.Equal(t, 4, uniform(4, 6).Heads())

	b, h, q, k = Tensor{}.Shape()
	assert.Equal(t, []int{0, 0, 0, 0}, []int{b, h, q, k})
	assert.Equal(t, 0, Tensor{}.Heads())
}

func TestMatrixTranspose(t *testing.T) {
	m, err := NewMatrix([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.T().At(0, 1))
	assert.Panics(t, func() { m.At(2, 0) })
}
