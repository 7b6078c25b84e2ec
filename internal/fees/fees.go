package fees

import "math"

// Notional returns the explicit fee on executed value.
func Notional(totalNotional, feeTier float64) float64 {
	return feeTier * totalNotional
}

// TakerProportion maps volatility to an execution-style proportion in (0,1)
// via a logistic transform: higher volatility means more taker-like,
// aggressive execution. 0.5 exactly at zero volatility.
//
// The sigmoid saturates to exactly 0 or 1 in float64 once |volatility*10|
// passes ~38, so the result is clamped back inside the open interval.
func TakerProportion(volatility float64) float64 {
	p := 1.0 / (1.0 + math.Exp(-volatility*10.0))
	if p >= 1 {
		return math.Nextafter(1, 0)
	}
	if p <= 0 {
		return math.Nextafter(0, 1)
	}
	return p
}
