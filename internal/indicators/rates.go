package indicators

import "math"

// Percentage returns actual/expected as a whole percentage, rounded half up.
// A non-positive expected value returns 0, as does any non-finite result.
func Percentage(actual, expected float64) int {
	if !(expected > 0) {
		return 0
	}
	p := math.Floor(actual/expected*100 + 0.5)
	switch {
	case math.IsNaN(p) || math.IsInf(p, 0):
		return 0
	case p >= math.MaxInt:
		return math.MaxInt
	case p <= math.MinInt:
		return math.MinInt
	}
	return int(p)
}

// toInt64 converts an already rounded value, saturating at the int64 range.
// NaN becomes 0.
func toInt64(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	}
	return int64(v)
}

// Gap is the remaining shortfall against expected. Over-achievement clamps to 0.
func Gap(expected, actual float64) float64 {
	g := expected - actual
	if !(g > 0) {
		return 0
	}
	return g
}
