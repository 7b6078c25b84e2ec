package impact

import (
	"math"
	"testing"

	"github.com/omkarpatil14/goQuant/internal/config"
)

func TestQuadratic(t *testing.T) {
	q := Quadratic{K: 0.0001}
	got, err := q.Estimate(10, 0.02, 60, 100.5)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	want := 0.02 * 0.02 * 10 * 100.5 * 0.0001
	if math.Abs(got-want) > 1e-15 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAlmgrenChrissFormula(t *testing.T) {
	a := AlmgrenChriss{Eta: 0.01, Gamma: 0.005}
	got, err := a.Estimate(100, 0.02, 50, 100)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	want := (0.01*(100.0/50.0) + 0.005*100) * 100
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAlmgrenChrissMonotonicInQuantity(t *testing.T) {
	a := AlmgrenChriss{Eta: 0.01, Gamma: 0.005}
	prev := -1.0
	for _, qty := range []float64{1, 10, 100, 1000} {
		got, err := a.Estimate(qty, 0.02, 60, 100)
		if err != nil {
			t.Fatalf("qty=%v: %v", qty, err)
		}
		if got <= prev {
			t.Fatalf("impact must strictly increase with quantity: %v then %v", prev, got)
		}
		prev = got
	}
}

func TestAlmgrenChrissDecreasingInHorizon(t *testing.T) {
	a := AlmgrenChriss{Eta: 0.01, Gamma: 0.005}
	prev := math.Inf(1)
	for _, horizon := range []float64{10, 30, 60, 120} {
		got, err := a.Estimate(500, 0.02, horizon, 100)
		if err != nil {
			t.Fatalf("horizon=%v: %v", horizon, err)
		}
		if got >= prev {
			t.Fatalf("slower execution must cost less: horizon %v gave %v after %v", horizon, got, prev)
		}
		prev = got
	}
}

func TestAlmgrenChrissRejectsZeroHorizon(t *testing.T) {
	a := AlmgrenChriss{Eta: 0.01, Gamma: 0.005}
	if _, err := a.Estimate(100, 0.02, 0, 100); err == nil {
		t.Fatal("expected error for zero time horizon")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Load()

	cfg.Cost.ImpactModel = "quadratic"
	est, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("quadratic: %v", err)
	}
	if q, ok := est.(Quadratic); !ok || q.K != cfg.Cost.ImpactK {
		t.Fatalf("expected Quadratic with configured k, got %#v", est)
	}

	cfg.Cost.ImpactModel = "almgren"
	est, err = FromConfig(cfg)
	if err != nil {
		t.Fatalf("almgren: %v", err)
	}
	if a, ok := est.(AlmgrenChriss); !ok || a.Eta != cfg.Cost.ImpactEta || a.Gamma != cfg.Cost.ImpactGamma {
		t.Fatalf("expected AlmgrenChriss with configured coefficients, got %#v", est)
	}

	cfg.Cost.ImpactModel = "bogus"
	if _, err := FromConfig(cfg); err == nil {
		t.Fatal("expected error for unknown impact model")
	}
}
