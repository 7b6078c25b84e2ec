package fees

import (
	"math"
	"testing"
)

func TestNotional(t *testing.T) {
	if got := Notional(1005, 0.001); math.Abs(got-1.005) > 1e-12 {
		t.Fatalf("expected fee 1.005, got %v", got)
	}
	if got := Notional(1005, 0); got != 0 {
		t.Fatalf("zero tier must produce zero fee, got %v", got)
	}
}

func TestTakerProportionAtZeroVolatility(t *testing.T) {
	if got := TakerProportion(0); got != 0.5 {
		t.Fatalf("sigmoid at zero must be exactly 0.5, got %v", got)
	}
}

func TestTakerProportionBounds(t *testing.T) {
	// 3.8 and above saturate the raw sigmoid to 1.0 in float64
	for _, vol := range []float64{0, 0.001, 0.02, 0.5, 3.8, 10, 100, 1000} {
		got := TakerProportion(vol)
		if got <= 0 || got >= 1 {
			t.Fatalf("vol=%v: proportion %v outside (0,1)", vol, got)
		}
	}
	// the clamp holds at the other end too
	if got := TakerProportion(-100); got <= 0 || got >= 1 {
		t.Fatalf("vol=-100: proportion %v outside (0,1)", got)
	}
}

func TestTakerProportionMonotonic(t *testing.T) {
	prev := 0.0
	for _, vol := range []float64{0, 0.01, 0.05, 0.1, 0.5, 1} {
		got := TakerProportion(vol)
		if got < prev {
			t.Fatalf("proportion must not decrease with volatility: %v then %v", prev, got)
		}
		prev = got
	}
}
