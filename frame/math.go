package frame

import (
	"math"

	"golang.org/x/exp/constraints"
)

// MaxDPR bounds the device pixel ratio used for rendering.
const MaxDPR = 2

// Clamp constrains v to the inclusive [lo, hi] range.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampDPR returns the device pixel ratio limited to [1, MaxDPR]. Unknown or
// invalid ratios fall back to 1.
func ClampDPR(dpr float64) float64 {
	if math.IsNaN(dpr) || dpr < 1 {
		return 1
	}
	return math.Min(dpr, MaxDPR)
}

// Gaussian evaluates exp(-d²/(2σ²)).
func Gaussian(d2, sigma float64) float64 {
	return math.Exp(-d2 / (2 * sigma * sigma))
}
