// Package gen drives the running service with randomized trade requests
// and appends the responses to a CSV trade log. The log is the training
// set for cmd/train: request features paired with the analytical slippage
// the engine reported.
package gen

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/omkarpatil14/goQuant/internal/config"
	"github.com/omkarpatil14/goQuant/internal/infra/metrics"
	"github.com/omkarpatil14/goQuant/internal/infra/network"
	"github.com/omkarpatil14/goQuant/internal/infra/runner"
)

var csvHeader = []string{
	"quantity", "volatility", "side", "time_horizon",
	"slippage", "fee", "market_impact", "net_cost",
	"avg_fill_price", "maker_taker_proportion",
}

type payload struct {
	Quantity    float64    `json:"quantity"`
	Volatility  float64    `json:"volatility"`
	FeeTier     float64    `json:"fee_tier"`
	Side        string     `json:"side"`
	Orderbook   [][]string `json:"orderbook"`
	TimeHorizon float64    `json:"time_horizon"`
}

type response struct {
	Slippage             float64 `json:"slippage"`
	Fee                  float64 `json:"fee"`
	MarketImpact         float64 `json:"market_impact"`
	NetCost              float64 `json:"net_cost"`
	AvgFillPrice         float64 `json:"avg_fill_price"`
	MakerTakerProportion float64 `json:"maker_taker_proportion"`
}

type Generator struct {
	cfg    config.Config
	client *http.Client
	logger zerolog.Logger
}

func New(cfg config.Config, logger zerolog.Logger) *Generator {
	return &Generator{cfg: cfg, client: network.NewHTTPClient(), logger: logger}
}

// randomPayload mirrors the distribution the original trade log was built
// from: quantities 10-5000, vols 0.005-0.1, horizons 10-120, ten-level
// books around the configured mid price.
func (g *Generator) randomPayload(rng *rand.Rand) payload {
	levels := make([][]string, 0, g.cfg.Generator.BookLevels)
	for i := 0; i < g.cfg.Generator.BookLevels; i++ {
		price := g.cfg.Generator.MidPrice + (rng.Float64()*2-1)*g.cfg.Generator.PriceSpread
		qty := 1 + rng.Float64()*99
		levels = append(levels, []string{
			strconv.FormatFloat(round2(price), 'f', -1, 64),
			strconv.FormatFloat(round2(qty), 'f', -1, 64),
		})
	}
	side := "buy"
	if rng.Intn(2) == 0 {
		side = "sell"
	}
	return payload{
		Quantity:    round2(10 + rng.Float64()*4990),
		Volatility:  round4(0.005 + rng.Float64()*0.095),
		FeeTier:     g.cfg.Cost.DefaultFeeTier,
		Side:        side,
		Orderbook:   levels,
		TimeHorizon: round2(10 + rng.Float64()*110),
	}
}

// Run posts cfg.Generator.Trades requests across the worker pool, paced by
// a shared token bucket, and streams rows to the CSV log.
func (g *Generator) Run(ctx context.Context) error {
	f, err := os.Create(g.cfg.Generator.OutFile)
	if err != nil {
		return fmt.Errorf("create trade log: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	bucket := network.NewTokenBucket(g.cfg.Generator.Workers, g.cfg.Generator.RatePerSec)
	rows := make(chan []string, g.cfg.Generator.Workers)
	jobs := make(chan int)

	grp := &runner.Group{}
	var workerErrs []<-chan error
	for i := 0; i < g.cfg.Generator.Workers; i++ {
		seed := time.Now().UnixNano() + int64(i)
		workerErrs = append(workerErrs, grp.Go(ctx, func(ctx context.Context) error {
			rng := rand.New(rand.NewSource(seed))
			for range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				for !bucket.Allow(time.Now()) {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(5 * time.Millisecond):
					}
				}
				p := g.randomPayload(rng)
				row, err := g.post(ctx, p)
				if err != nil {
					metrics.TradesGeneratedTotal.WithLabelValues("error").Inc()
					g.logger.Warn().Err(err).Msg("trade request failed")
					continue
				}
				metrics.TradesGeneratedTotal.WithLabelValues("ok").Inc()
				rows <- row
			}
			return nil
		}))
	}

	go func() {
		for i := 0; i < g.cfg.Generator.Trades; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				close(jobs)
				return
			}
		}
		close(jobs)
	}()

	done := make(chan struct{})
	go func() { grp.Wait(); close(done) }()

	var written int
	for {
		select {
		case row := <-rows:
			if err := w.Write(row); err != nil {
				return err
			}
			written++
		case <-done:
			// drain anything the workers pushed before exiting
			for {
				select {
				case row := <-rows:
					if err := w.Write(row); err != nil {
						return err
					}
					written++
				default:
					w.Flush()
					g.logger.Info().Int("rows", written).Str("file", g.cfg.Generator.OutFile).Msg("trade log complete")
					for _, ch := range workerErrs {
						if err := <-ch; err != nil && err != context.Canceled {
							return err
						}
					}
					return w.Error()
				}
			}
		case <-ctx.Done():
			w.Flush()
			return ctx.Err()
		}
	}
}

func (g *Generator) post(ctx context.Context, p payload) ([]string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Generator.TargetURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		ff(p.Quantity), ff(p.Volatility), p.Side, ff(p.TimeHorizon),
		ff(out.Slippage), ff(out.Fee), ff(out.MarketImpact), ff(out.NetCost),
		ff(out.AvgFillPrice), ff(out.MakerTakerProportion),
	}, nil
}

func round2(v float64) float64 { return float64(int64(v*100+0.5)) / 100 }
func round4(v float64) float64 { return float64(int64(v*10000+0.5)) / 10000 }
