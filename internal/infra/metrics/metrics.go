package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	CostRequestsTotal     = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cost_requests_total", Help: "Cost estimation requests by outcome"}, []string{"outcome"})
	ValidationErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "validation_errors_total", Help: "Rejected requests by reason"}, []string{"reason"})
	PartialFillsTotal     = prometheus.NewCounter(prometheus.CounterOpts{Name: "partial_fills_total", Help: "Requests where book depth was insufficient for the target quantity"})
	CostComputeLatencyMs  = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cost_compute_latency_ms", Help: "Engine compute latency", Buckets: prometheus.ExponentialBuckets(0.01, 2, 16)})
	SlippageEstimated     = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "slippage_estimated", Help: "Estimated slippage per request", Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12)})
	NetCostEstimated      = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "net_cost_estimated", Help: "Net cost per request", Buckets: prometheus.ExponentialBuckets(0.01, 4, 14)})
	ModelPredictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "model_predictions_total", Help: "Regression model predictions served"})
	ModelLoaded           = prometheus.NewGauge(prometheus.GaugeOpts{Name: "model_loaded", Help: "1 when a regression model artifact is loaded"})
	TradesGeneratedTotal  = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "trades_generated_total", Help: "Synthetic trades generated by outcome"}, []string{"outcome"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		CostRequestsTotal, ValidationErrorsTotal, PartialFillsTotal,
		CostComputeLatencyMs, SlippageEstimated, NetCostEstimated,
		ModelPredictionsTotal, ModelLoaded, TradesGeneratedTotal,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Info().Msg("Prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
