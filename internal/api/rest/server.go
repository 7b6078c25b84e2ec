package rest

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/omkarpatil14/goQuant/internal/config"
	"github.com/omkarpatil14/goQuant/internal/cost"
	"github.com/omkarpatil14/goQuant/internal/infra/metrics"
	"github.com/omkarpatil14/goQuant/internal/orderbook"
)

type Server struct {
	mux    *http.ServeMux
	engine *cost.Engine
	cfg    config.Config
	logger zerolog.Logger
}

func New(cfg config.Config, engine *cost.Engine, logger zerolog.Logger) *Server {
	s := &Server{mux: http.NewServeMux(), engine: engine, cfg: cfg, logger: logger}
	s.mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.HandleFunc("/api/v1/cost", s.handleCost)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// costRequest is the wire shape. Pointer fields distinguish absent from
// zero so defaults apply only when a field is missing.
type costRequest struct {
	Quantity    *float64   `json:"quantity"`
	FeeTier     *float64   `json:"fee_tier"`
	Volatility  *float64   `json:"volatility"`
	Side        *string    `json:"side"`
	TimeHorizon *float64   `json:"time_horizon"`
	Orderbook   [][]string `json:"orderbook"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var in costRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&in); err != nil {
		metrics.CostRequestsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if in.Quantity == nil {
		metrics.CostRequestsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}
	if len(in.Orderbook) == 0 {
		metrics.CostRequestsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "Invalid orderbook data")
		return
	}

	book, err := orderbook.ParseLevels(in.Orderbook)
	if err != nil {
		metrics.CostRequestsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid orderbook: "+err.Error())
		return
	}

	req := cost.Request{
		Quantity:    *in.Quantity,
		FeeTier:     s.cfg.Cost.DefaultFeeTier,
		Volatility:  s.cfg.Cost.DefaultVolatility,
		Side:        orderbook.Buy,
		TimeHorizon: s.cfg.Cost.DefaultTimeHorizon,
		Book:        book,
	}
	if in.FeeTier != nil {
		req.FeeTier = *in.FeeTier
	}
	if in.Volatility != nil {
		req.Volatility = *in.Volatility
	}
	if in.TimeHorizon != nil {
		req.TimeHorizon = *in.TimeHorizon
	}
	if in.Side != nil {
		side, err := orderbook.ParseSide(*in.Side)
		if err != nil {
			metrics.CostRequestsTotal.WithLabelValues("bad_request").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Side = side
	}

	res, err := s.engine.Compute(req)
	if err != nil {
		if cost.IsValidation(err) {
			metrics.CostRequestsTotal.WithLabelValues("bad_request").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		metrics.CostRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Msg("cost computation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.CostRequestsTotal.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
