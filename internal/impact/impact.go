package impact

import (
	"fmt"

	"github.com/omkarpatil14/goQuant/internal/config"
)

// Estimator computes the market-impact cost of a trade. priceRef is the
// price the impact scales against (the average fill price in practice).
type Estimator interface {
	Estimate(qty, vol, horizon, priceRef float64) (float64, error)
}

// Quadratic is the coarse heuristic: impact grows with variance and with
// executed notional, scaled by a tuned constant.
type Quadratic struct {
	K float64
}

func (q Quadratic) Estimate(qty, vol, _, priceRef float64) (float64, error) {
	return vol * vol * qty * priceRef * q.K, nil
}

// AlmgrenChriss splits impact into a temporary component proportional to
// the trading rate qty/horizon and a permanent component proportional to
// total size.
type AlmgrenChriss struct {
	Eta   float64 // temporary-impact coefficient
	Gamma float64 // permanent-impact coefficient
}

func (a AlmgrenChriss) Estimate(qty, _, horizon, priceRef float64) (float64, error) {
	if horizon <= 0 {
		return 0, fmt.Errorf("time horizon must be positive, got %v", horizon)
	}
	rate := qty / horizon
	return (a.Eta*rate + a.Gamma*qty) * priceRef, nil
}

// FromConfig selects the impact variant at startup with its tuned
// coefficients taken from config, not literals.
func FromConfig(cfg config.Config) (Estimator, error) {
	switch cfg.Cost.ImpactModel {
	case "quadratic":
		return Quadratic{K: cfg.Cost.ImpactK}, nil
	case "almgren":
		return AlmgrenChriss{Eta: cfg.Cost.ImpactEta, Gamma: cfg.Cost.ImpactGamma}, nil
	}
	return nil, fmt.Errorf("unknown impact model %q", cfg.Cost.ImpactModel)
}
