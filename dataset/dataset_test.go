package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const houses = `size, bedrooms, price
2104, 3, 399900
1600, 3, 329900
2400, , 369000
1416, 2, 232000
NA, 4, 539900
3000, 4, NaN
`

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(houses))
	require.NoError(t, err)

	assert.Equal(t, []string{"size", "bedrooms", "price"}, table.Header)
	assert.Equal(t, 6, table.Len())

	size, err := table.Column("size")
	require.NoError(t, err)
	assert.Equal(t, 2104.0, size[0])
	assert.True(t, math.IsNaN(size[4]))
}

func TestReadCSV_Errors(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected error
	}{
		"empty": {
			input:    "",
			expected: ErrMissingHeader,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.input))
			assert.ErrorIs(t, err, tc.expected)
		})
	}

	_, err := ReadCSV(strings.NewReader("a,b\n1,two\n"))
	assert.Error(t, err)
	_, err = ReadCSV(strings.NewReader("a,b\n1,2,3\n"))
	assert.Error(t, err)
}

func TestTable_Select(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(houses))
	require.NoError(t, err)

	features, target, err := table.Select([]string{"size"}, "price")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2104, 1600, 2400, 1416}}, features)
	assert.Equal(t, []float64{399900, 329900, 369000, 232000}, target)

	features, target, err = table.Select([]string{"size", "bedrooms"}, "price")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2104, 1600, 1416}, {3, 3, 2}}, features)
	assert.Equal(t, []float64{399900, 329900, 232000}, target)
}

func TestTable_SelectErrors(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(houses))
	require.NoError(t, err)

	_, _, err = table.Select([]string{"area"}, "price")
	assert.ErrorIs(t, err, ErrUnknownColumn)
	_, _, err = table.Select([]string{"size"}, "cost")
	assert.ErrorIs(t, err, ErrUnknownColumn)
	_, _, err = table.Select(nil, "price")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	empty, err := ReadCSV(strings.NewReader("x,y\n1,\n,2\n"))
	require.NoError(t, err)
	_, _, err = empty.Select([]string{"x"}, "y")
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestDesignMatrix(t *testing.T) {
	x, err := DesignMatrix([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	expected := mat.NewDense(3, 3, []float64{
		1, 1, 4,
		1, 2, 5,
		1, 3, 6,
	})
	assert.True(t, mat.Equal(expected, x))

	_, err = DesignMatrix([][]float64{{1, 2}, {1}})
	assert.Error(t, err)
	_, err = DesignMatrix(nil)
	assert.Error(t, err)
}
