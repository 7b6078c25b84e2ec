// Package model holds the linear slippage model: a JSON artifact fitted
// offline by cmd/train and loaded once at startup. The loaded model is
// read-only; serving never refits it.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"
)

// Feature order is the wire contract with the trainer. Changing order or
// count is a breaking change for any persisted artifact.
var Features = []string{"quantity", "volatility", "side", "time_horizon"}

var ErrNotLoaded = errors.New("regression model not loaded")

type Model struct {
	Features  []string  `json:"features"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Samples   int       `json:"samples"`
	TestMSE   float64   `json:"test_mse"`
	TrainedAt time.Time `json:"trained_at"`
}

// Load reads a trained artifact and verifies its feature contract.
func Load(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var m Model
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if len(m.Features) != len(Features) || len(m.Weights) != len(Features) {
		return nil, fmt.Errorf("model artifact has %d features and %d weights, want %d", len(m.Features), len(m.Weights), len(Features))
	}
	for i, f := range Features {
		if m.Features[i] != f {
			return nil, fmt.Errorf("model feature %d is %q, want %q", i, m.Features[i], f)
		}
	}
	return &m, nil
}

// Save writes the artifact atomically (temp file + rename).
func (m *Model) Save(path string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Predict evaluates the linear model on one feature vector.
func (m *Model) Predict(x []float64) (float64, error) {
	if m == nil {
		return 0, ErrNotLoaded
	}
	if len(x) != len(m.Weights) {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(x), len(m.Weights))
	}
	y := m.Intercept
	for i, w := range m.Weights {
		y += w * x[i]
	}
	return y, nil
}

// Fit runs ordinary least squares of y on X (one row per observation,
// columns in Features order) via the normal equations. An intercept column
// is added internally.
func Fit(X [][]float64, y []float64) (*Model, error) {
	n := len(X)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("fit: %d rows, %d targets", n, len(y))
	}
	p := len(Features)
	for i, row := range X {
		if len(row) != p {
			return nil, fmt.Errorf("fit: row %d has %d features, want %d", i, len(row), p)
		}
	}
	if n < p+1 {
		return nil, fmt.Errorf("fit: need at least %d observations, have %d", p+1, n)
	}

	// Build X'X and X'y with the intercept as column 0.
	d := p + 1
	xtx := make([][]float64, d)
	for i := range xtx {
		xtx[i] = make([]float64, d)
	}
	xty := make([]float64, d)
	for r := 0; r < n; r++ {
		row := make([]float64, d)
		row[0] = 1
		copy(row[1:], X[r])
		for i := 0; i < d; i++ {
			for j := 0; j < d; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * y[r]
		}
	}

	beta, err := solve(xtx, xty)
	if err != nil {
		return nil, err
	}
	m := &Model{
		Features:  append([]string(nil), Features...),
		Weights:   beta[1:],
		Intercept: beta[0],
		Samples:   n,
		TrainedAt: time.Now().UTC(),
	}
	return m, nil
}

// MSE computes mean squared prediction error over a held-out set.
func (m *Model) MSE(X [][]float64, y []float64) (float64, error) {
	if len(X) == 0 || len(X) != len(y) {
		return 0, fmt.Errorf("mse: %d rows, %d targets", len(X), len(y))
	}
	var sum float64
	for i, row := range X {
		pred, err := m.Predict(row)
		if err != nil {
			return 0, err
		}
		diff := pred - y[i]
		sum += diff * diff
	}
	return sum / float64(len(X)), nil
}

// solve performs Gaussian elimination with partial pivoting on a*x = b.
func solve(a [][]float64, b []float64) ([]float64, error) {
	d := len(a)
	for col := 0; col < d; col++ {
		pivot := col
		for r := col + 1; r < d; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, errors.New("fit: design matrix is singular (degenerate training data)")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		for r := col + 1; r < d; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < d; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	x := make([]float64, d)
	for r := d - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < d; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, nil
}
