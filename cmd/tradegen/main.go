package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/omkarpatil14/goQuant/internal/config"
	"github.com/omkarpatil14/goQuant/internal/gen"
	"github.com/omkarpatil14/goQuant/internal/infra/log"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		logger.Info().Str("signal", s.String()).Msg("stopping generator")
		cancel()
	}()

	logger.Info().
		Str("target", cfg.Generator.TargetURL).
		Int("trades", cfg.Generator.Trades).
		Int("workers", cfg.Generator.Workers).
		Msg("generating synthetic trades")

	if err := gen.New(cfg, logger).Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("trade generation failed")
	}
}
