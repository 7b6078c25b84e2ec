package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/omkarpatil14/goQuant/internal/api/rest"
	"github.com/omkarpatil14/goQuant/internal/config"
	"github.com/omkarpatil14/goQuant/internal/cost"
	"github.com/omkarpatil14/goQuant/internal/impact"
	"github.com/omkarpatil14/goQuant/internal/infra/health"
	ilog "github.com/omkarpatil14/goQuant/internal/infra/log"
	"github.com/omkarpatil14/goQuant/internal/infra/metrics"
	"github.com/omkarpatil14/goQuant/internal/infra/version"
	"github.com/omkarpatil14/goQuant/internal/slippage"
)

// buildMux mirrors the HTTP setup in cmd/goquant/main.go
func buildMux(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Load()
	logger := ilog.NewLogger(cfg)
	reg := metrics.Init(logger)

	slip, err := slippage.FromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("slippage config: %v", err)
	}
	imp, err := impact.FromConfig(cfg)
	if err != nil {
		t.Fatalf("impact config: %v", err)
	}
	engine := cost.NewEngine(slip, imp)
	api := rest.New(cfg, engine, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.HandleFunc("/healthz", health.Healthz)
	health.SetReady(true)
	mux.HandleFunc("/readyz", health.Readyz)
	mux.HandleFunc("/version", version.Handler)
	mux.Handle("/", api.Handler())
	return mux
}

func postCost(t *testing.T, srv *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/v1/cost", "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("POST /api/v1/cost: %v", err)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	_ = resp.Body.Close()
	return resp, out
}

func TestCostEndpointReferenceExample(t *testing.T) {
	srv := httptest.NewServer(buildMux(t))
	t.Cleanup(srv.Close)

	resp, out := postCost(t, srv, `{
		"quantity": 10,
		"fee_tier": 0.001,
		"volatility": 0.02,
		"side": "buy",
		"time_horizon": 60,
		"orderbook": [["100","5"],["101","10"],["102","50"]]
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, out)
	}
	if got := out["slippage"].(float64); got != 0.5 {
		t.Fatalf("slippage: got %v, want 0.5", got)
	}
	if got := out["avg_fill_price"].(float64); got != 100.5 {
		t.Fatalf("avg_fill_price: got %v, want 100.5", got)
	}
	if got := out["fee"].(float64); got != 1.005 {
		t.Fatalf("fee: got %v, want 1.005", got)
	}
	if got := out["maker_taker_proportion"].(float64); got != 0.5498 {
		t.Fatalf("maker_taker_proportion: got %v, want 0.5498", got)
	}
	if _, ok := out["internal_latency"]; !ok {
		t.Fatal("response missing internal_latency")
	}
	if out["partial_fill"].(bool) {
		t.Fatal("reference example must not be a partial fill")
	}
}

func TestCostEndpointDefaults(t *testing.T) {
	srv := httptest.NewServer(buildMux(t))
	t.Cleanup(srv.Close)

	// only quantity and orderbook; side/fee/vol/horizon default
	resp, out := postCost(t, srv, `{"quantity": 5, "orderbook": [["100","10"]]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, out)
	}
	// default volatility 0.02 -> sigmoid(0.2) -> 0.5498
	if got := out["maker_taker_proportion"].(float64); got != 0.5498 {
		t.Fatalf("default volatility not applied, proportion %v", got)
	}
	// 5 @ 100 with default tier 0.001
	if got := out["fee"].(float64); got != 0.5 {
		t.Fatalf("default fee tier not applied, fee %v", got)
	}
}

func TestCostEndpointValidation(t *testing.T) {
	srv := httptest.NewServer(buildMux(t))
	t.Cleanup(srv.Close)

	cases := []struct {
		name string
		body string
	}{
		{"missing quantity", `{"orderbook": [["100","5"]]}`},
		{"missing orderbook", `{"quantity": 10}`},
		{"empty orderbook", `{"quantity": 10, "orderbook": []}`},
		{"zero quantity", `{"quantity": 0, "orderbook": [["100","5"]]}`},
		{"bad side", `{"quantity": 10, "side": "hold", "orderbook": [["100","5"]]}`},
		{"bad price string", `{"quantity": 10, "orderbook": [["abc","5"]]}`},
		{"zero horizon", `{"quantity": 10, "time_horizon": 0, "orderbook": [["100","5"]]}`},
		{"not json", `quantity=10`},
	}
	for _, tc := range cases {
		resp, out := postCost(t, srv, tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %v", tc.name, resp.StatusCode, out)
		}
		if msg, ok := out["error"].(string); !ok || msg == "" {
			t.Fatalf("%s: expected error message, got %v", tc.name, out)
		}
	}
}

func TestReadyzAndVersion(t *testing.T) {
	srv := httptest.NewServer(buildMux(t))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz expected 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/version")
	if err != nil {
		t.Fatalf("GET /version error: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("/version expected application/json, got %s", ct)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	srv := httptest.NewServer(buildMux(t))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/healthz expected 200, got %d", resp.StatusCode)
	}
}
