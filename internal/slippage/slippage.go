package slippage

import (
	"fmt"
	"math"

	"github.com/omkarpatil14/goQuant/internal/config"
	"github.com/omkarpatil14/goQuant/internal/infra/metrics"
	"github.com/omkarpatil14/goQuant/internal/model"
	"github.com/omkarpatil14/goQuant/internal/orderbook"
)

// Inputs carries everything either estimator variant may need. The
// analytical variant only reads the realized prices; the regression variant
// only reads the forward-looking features.
type Inputs struct {
	Quantity     float64
	Volatility   float64
	Side         orderbook.Side
	TimeHorizon  float64
	AvgFillPrice float64
	StartPrice   float64
}

type Estimator interface {
	Estimate(in Inputs) (float64, error)
}

// AnalyticalDelta derives slippage directly from the walk: the absolute
// distance between the average fill price and the best price. Always
// available, and the ground truth the generator logs for training.
type AnalyticalDelta struct{}

func (AnalyticalDelta) Estimate(in Inputs) (float64, error) {
	return math.Abs(in.AvgFillPrice - in.StartPrice), nil
}

// Regression predicts slippage from request features without needing the
// realized fill, using the model fitted offline by cmd/train.
type Regression struct {
	model *model.Model
}

func NewRegression(m *model.Model) Regression { return Regression{model: m} }

func (r Regression) Estimate(in Inputs) (float64, error) {
	if r.model == nil {
		return 0, model.ErrNotLoaded
	}
	side := 0.0
	if in.Side == orderbook.Buy {
		side = 1.0
	}
	pred, err := r.model.Predict([]float64{in.Quantity, in.Volatility, side, in.TimeHorizon})
	if err != nil {
		return 0, err
	}
	metrics.ModelPredictionsTotal.Inc()
	// A linear model can dip below zero outside its training range.
	if pred < 0 {
		pred = 0
	}
	return pred, nil
}

// FromConfig selects the estimator variant at startup. m may be nil only
// for the analytical variant.
func FromConfig(cfg config.Config, m *model.Model) (Estimator, error) {
	switch cfg.Cost.SlippageModel {
	case "analytical":
		return AnalyticalDelta{}, nil
	case "regression":
		if m == nil {
			return nil, model.ErrNotLoaded
		}
		return NewRegression(m), nil
	}
	return nil, fmt.Errorf("unknown slippage model %q", cfg.Cost.SlippageModel)
}
