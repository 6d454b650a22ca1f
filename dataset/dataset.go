// Package dataset decodes numeric CSV tables and turns selected columns into
// a design matrix for regression.
package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrMissingHeader = errors.New("missing header row")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNoRows        = errors.New("no complete rows")
)

// Table is a set of named numeric columns. Missing cells hold NaN.
type Table struct {
	Header  []string
	Columns [][]float64
}

// ReadCSV decodes a CSV document whose first row names the columns. Empty
// cells, NA and NaN are recorded as missing.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.WithStack(ErrMissingHeader)
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not read header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Header: header, Columns: make([][]float64, len(header))}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "could not read line %d", line)
		}
		for j, cell := range record {
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d, column %q", line, header[j])
			}
			t.Columns[j] = append(t.Columns[j], v)
		}
	}
	return t, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// Len is the number of rows, including incomplete ones.
func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0])
}

// Column returns the named column.
func (t *Table) Column(name string) ([]float64, error) {
	for i, h := range t.Header {
		if h == name {
			return t.Columns[i], nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownColumn, "%q", name)
}

// Select returns the feature columns and target values of every row that
// has a value in each selected column.
func (t *Table) Select(features []string, target string) ([][]float64, []float64, error) {
	if len(features) == 0 {
		return nil, nil, errors.Wrap(ErrUnknownColumn, "no feature columns selected")
	}
	selected := make([][]float64, 0, len(features)+1)
	for _, name := range append(append([]string(nil), features...), target) {
		c, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		selected = append(selected, c)
	}

	out := make([][]float64, len(selected))
	for i := 0; i < t.Len(); i++ {
		if !complete(selected, i) {
			continue
		}
		for j, c := range selected {
			out[j] = append(out[j], c[i])
		}
	}
	if len(out[0]) == 0 {
		return nil, nil, errors.WithStack(ErrNoRows)
	}
	return out[:len(features)], out[len(features)], nil
}

func complete(columns [][]float64, i int) bool {
	for _, c := range columns {
		if math.IsNaN(c[i]) {
			return false
		}
	}
	return true
}

// DesignMatrix lays the feature columns side by side behind a leading
// column of ones.
func DesignMatrix(columns [][]float64) (*mat.Dense, error) {
	if len(columns) == 0 || len(columns[0]) == 0 {
		return nil, errors.New("no feature values")
	}
	m := len(columns[0])
	x := mat.NewDense(m, len(columns)+1, nil)
	for i := 0; i < m; i++ {
		x.Set(i, 0, 1)
	}
	for j, c := range columns {
		if len(c) != m {
			return nil, errors.Errorf("feature %d has %d values, expected %d", j, len(c), m)
		}
		x.SetCol(j+1, c)
	}
	return x, nil
}
