// Offline trainer: fits the linear slippage model from the CSV trade log
// produced by cmd/tradegen and persists the artifact cmd/goquant loads at
// startup.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/omkarpatil14/goQuant/internal/config"
	"github.com/omkarpatil14/goQuant/internal/infra/log"
	"github.com/omkarpatil14/goQuant/internal/model"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg)

	X, y, err := readTradeLog(cfg.Generator.OutFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.Generator.OutFile).Msg("failed to read trade log")
	}

	// 80/20 split after shuffling
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	idx := rng.Perm(len(X))
	cut := len(X) * 8 / 10
	trainX, trainY := make([][]float64, 0, cut), make([]float64, 0, cut)
	testX, testY := make([][]float64, 0, len(X)-cut), make([]float64, 0, len(X)-cut)
	for i, j := range idx {
		if i < cut {
			trainX, trainY = append(trainX, X[j]), append(trainY, y[j])
		} else {
			testX, testY = append(testX, X[j]), append(testY, y[j])
		}
	}

	m, err := model.Fit(trainX, trainY)
	if err != nil {
		logger.Fatal().Err(err).Msg("model fit failed")
	}
	if len(testX) > 0 {
		mse, err := m.MSE(testX, testY)
		if err != nil {
			logger.Fatal().Err(err).Msg("model evaluation failed")
		}
		m.TestMSE = mse
	}

	if err := m.Save(cfg.Cost.ModelPath); err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Cost.ModelPath).Msg("failed to persist model")
	}
	logger.Info().
		Str("path", cfg.Cost.ModelPath).
		Int("train_rows", len(trainX)).
		Int("test_rows", len(testX)).
		Float64("test_mse", m.TestMSE).
		Msg("slippage model trained")
}

// readTradeLog extracts feature rows [quantity, volatility, side, time_horizon]
// and the slippage target from the generated CSV.
func readTradeLog(path string) ([][]float64, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		return nil, nil, err
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, need := range []string{"quantity", "volatility", "side", "time_horizon", "slippage"} {
		if _, ok := col[need]; !ok {
			return nil, nil, fmt.Errorf("trade log missing column %q", need)
		}
	}

	var X [][]float64
	var y []float64
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		p := func(name string) (float64, error) { return strconv.ParseFloat(rec[col[name]], 64) }
		qty, e1 := p("quantity")
		vol, e2 := p("volatility")
		hor, e3 := p("time_horizon")
		slip, e4 := p("slippage")
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
			continue // skip malformed rows
		}
		side := 0.0
		if rec[col["side"]] == "buy" {
			side = 1.0
		}
		X = append(X, []float64{qty, vol, side, hor})
		y = append(y, slip)
	}
	if len(X) == 0 {
		return nil, nil, fmt.Errorf("trade log %s has no usable rows", path)
	}
	return X, y, nil
}
