package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omkarpatil14/goQuant/internal/api/rest"
	"github.com/omkarpatil14/goQuant/internal/config"
	"github.com/omkarpatil14/goQuant/internal/cost"
	"github.com/omkarpatil14/goQuant/internal/impact"
	"github.com/omkarpatil14/goQuant/internal/infra/health"
	"github.com/omkarpatil14/goQuant/internal/infra/http/middleware"
	"github.com/omkarpatil14/goQuant/internal/infra/log"
	"github.com/omkarpatil14/goQuant/internal/infra/metrics"
	"github.com/omkarpatil14/goQuant/internal/infra/netutil"
	"github.com/omkarpatil14/goQuant/internal/infra/version"
	"github.com/omkarpatil14/goQuant/internal/model"
	"github.com/omkarpatil14/goQuant/internal/slippage"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logger := log.NewLogger(cfg)

	registry := metrics.Init(logger)

	// The regression model must be loaded before the first request is
	// dispatched; serving never starts without it when config selects the
	// regression estimator.
	var m *model.Model
	if cfg.Cost.SlippageModel == "regression" {
		var err error
		m, err = model.Load(cfg.Cost.ModelPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.Cost.ModelPath).Msg("regression model unavailable")
		}
		metrics.ModelLoaded.Set(1)
		logger.Info().Str("path", cfg.Cost.ModelPath).Int("samples", m.Samples).Msg("regression model loaded")
	}

	slip, err := slippage.FromConfig(cfg, m)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid slippage model config")
	}
	imp, err := impact.FromConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid impact model config")
	}
	engine := cost.NewEngine(slip, imp)
	api := rest.New(cfg, engine, logger)

	mux := http.NewServeMux()
	// admin endpoints (metrics, pprof) behind IP allowlist gate
	adminCIDRs := netutil.MustParseCIDRs(cfg.Server.AdminAllowCIDRs)
	mux.Handle("/metrics", middleware.AdminGate(adminCIDRs, metrics.Handler(registry)))
	mux.HandleFunc("/healthz", health.Healthz)
	mux.HandleFunc("/readyz", health.Readyz)
	mux.HandleFunc("/version", version.Handler)
	mux.Handle("/", api.Handler())
	if cfg.Server.Pprof {
		mux.Handle("/debug/pprof/", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Index)))
		mux.Handle("/debug/pprof/cmdline", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Cmdline)))
		mux.Handle("/debug/pprof/profile", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Profile)))
		mux.Handle("/debug/pprof/symbol", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Symbol)))
		mux.Handle("/debug/pprof/trace", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Trace)))
	}

	// wrap mux with middlewares (request id and logging)
	handler := middleware.RequestID(middleware.Logger(logger)(mux))

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("slippage_model", cfg.Cost.SlippageModel).
		Str("impact_model", cfg.Cost.ImpactModel).
		Msg("cost estimation service started")

	// mark ready only after model load and engine construction completed
	health.SetReady(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case s := <-sigCh:
		logger.Info().Str("signal", s.String()).Msg("shutdown signal received")
	}

	health.SetReady(false)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("shutdown complete")
}
