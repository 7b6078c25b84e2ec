// Package cost runs one stateless pass per request: walk the book, fan the
// fill out to the slippage/impact/fee/style estimators, and aggregate into
// a net cost. No state is shared across requests beyond the immutable
// regression model held by the slippage estimator.
package cost

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/omkarpatil14/goQuant/internal/fees"
	"github.com/omkarpatil14/goQuant/internal/impact"
	"github.com/omkarpatil14/goQuant/internal/infra/metrics"
	"github.com/omkarpatil14/goQuant/internal/orderbook"
	"github.com/omkarpatil14/goQuant/internal/slippage"
)

// ValidationError marks a client-fault request. The transport maps it to a
// 400; anything else is a server fault.
type ValidationError struct {
	Reason string
	Msg    string
}

func (e *ValidationError) Error() string { return e.Msg }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Request is read-only once built at the system boundary.
type Request struct {
	Quantity    float64
	FeeTier     float64
	Volatility  float64
	Side        orderbook.Side
	TimeHorizon float64
	Book        orderbook.Book
}

func (r Request) Validate() error {
	if r.Quantity <= 0 {
		return &ValidationError{Reason: "quantity", Msg: fmt.Sprintf("quantity must be positive, got %v", r.Quantity)}
	}
	if r.TimeHorizon <= 0 {
		return &ValidationError{Reason: "time_horizon", Msg: fmt.Sprintf("time_horizon must be positive, got %v", r.TimeHorizon)}
	}
	if r.FeeTier < 0 {
		return &ValidationError{Reason: "fee_tier", Msg: fmt.Sprintf("fee_tier must be non-negative, got %v", r.FeeTier)}
	}
	if r.Volatility < 0 {
		return &ValidationError{Reason: "volatility", Msg: fmt.Sprintf("volatility must be non-negative, got %v", r.Volatility)}
	}
	if r.Side != orderbook.Buy && r.Side != orderbook.Sell {
		return &ValidationError{Reason: "side", Msg: fmt.Sprintf("side must be buy or sell, got %q", r.Side)}
	}
	if len(r.Book) == 0 {
		return &ValidationError{Reason: "orderbook", Msg: "orderbook must be a non-empty list of levels"}
	}
	return nil
}

// Result is assembled once per request and is the only output. Rounding
// here is presentation only; all upstream arithmetic ran at full precision.
type Result struct {
	Slippage             float64 `json:"slippage"`
	Fee                  float64 `json:"fee"`
	MarketImpact         float64 `json:"market_impact"`
	NetCost              float64 `json:"net_cost"`
	AvgFillPrice         float64 `json:"avg_fill_price"`
	MakerTakerProportion float64 `json:"maker_taker_proportion"`
	InternalLatency      float64 `json:"internal_latency"`
	FilledQuantity       float64 `json:"filled_quantity"`
	PartialFill          bool    `json:"partial_fill"`
}

type Engine struct {
	slip slippage.Estimator
	imp  impact.Estimator
}

func NewEngine(slip slippage.Estimator, imp impact.Estimator) *Engine {
	return &Engine{slip: slip, imp: imp}
}

// Compute walks the book and aggregates slippage, fee, impact and the
// maker/taker proportion into net cost. Errors never carry a partial
// result.
func (e *Engine) Compute(req Request) (Result, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			metrics.ValidationErrorsTotal.WithLabelValues(ve.Reason).Inc()
		}
		return Result{}, err
	}

	fill, err := orderbook.Walk(req.Book, req.Side, req.Quantity)
	if err != nil {
		return Result{}, &ValidationError{Reason: "orderbook", Msg: err.Error()}
	}
	if fill.Partial {
		metrics.PartialFillsTotal.Inc()
	}

	slip, err := e.slip.Estimate(slippage.Inputs{
		Quantity:     req.Quantity,
		Volatility:   req.Volatility,
		Side:         req.Side,
		TimeHorizon:  req.TimeHorizon,
		AvgFillPrice: fill.AvgFillPrice,
		StartPrice:   fill.StartPrice,
	})
	if err != nil {
		return Result{}, fmt.Errorf("slippage estimate: %w", err)
	}

	imp, err := e.imp.Estimate(req.Quantity, req.Volatility, req.TimeHorizon, fill.AvgFillPrice)
	if err != nil {
		return Result{}, fmt.Errorf("impact estimate: %w", err)
	}

	fee := fees.Notional(fill.Notional, req.FeeTier)
	netCost := slip*req.Quantity + fee + imp
	proportion := fees.TakerProportion(req.Volatility)

	lat := time.Since(start)
	metrics.CostComputeLatencyMs.Observe(float64(lat.Nanoseconds()) / 1e6)
	metrics.SlippageEstimated.Observe(slip)
	metrics.NetCostEstimated.Observe(netCost)

	return Result{
		Slippage:             round(slip, 6),
		Fee:                  round(fee, 6),
		MarketImpact:         round(imp, 6),
		NetCost:              round(netCost, 6),
		AvgFillPrice:         round(fill.AvgFillPrice, 2),
		MakerTakerProportion: round(proportion, 4),
		InternalLatency:      round(lat.Seconds(), 6),
		FilledQuantity:       fill.FilledQty,
		PartialFill:          fill.Partial,
	}, nil
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
