package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHouses(t *testing.T) string {
	t.Helper()
	columns, prices := houses()
	var b strings.Builder
	b.WriteString("size,bedrooms,price\n")
	for i := range prices {
		fmt.Fprintf(&b, "%v,%v,%v\n", columns[0][i], columns[1][i], prices[i])
	}
	b.WriteString("1500,,250000\n")
	path := filepath.Join(t.TempDir(), "houses.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestFit(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Data:          writeHouses(t),
		Features:      []string{"size"},
		Target:        "price",
		Alphas:        []float64{2.1, 1, 0.1},
		MaxIterations: 1000,
		Start:         []float64{1000000, 2500000},
		PlotDir:       dir,
	}
	require.NoError(t, cfg.Validate())
	require.NoError(t, fit(context.Background(), cfg))

	for _, name := range []string{"convergence.png", "fit.png", "surface.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestFit_Errors(t *testing.T) {
	path := writeHouses(t)
	tests := map[string]Config{
		"missing file":   {Data: filepath.Join(t.TempDir(), "nope.csv"), Features: []string{"size"}, Target: "price", Alphas: []float64{0.1}, MaxIterations: 10},
		"unknown column": {Data: path, Features: []string{"area"}, Target: "price", Alphas: []float64{0.1}, MaxIterations: 10},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, fit(context.Background(), cfg))
		})
	}
}

func TestRootCmd(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"fit", "--data", writeHouses(t), "--features", "size,bedrooms", "--target", "price", "--alphas", "0.3", "--max-iterations", "200"})
	assert.NoError(t, cmd.Execute())

	cmd = rootCmd()
	cmd.SetArgs([]string{"fit", "--features", "size"})
	assert.Error(t, cmd.Execute())
}
