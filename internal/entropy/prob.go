package entropy

import "math"

// Sigmoid squashes x into (0, 1). It is the x/(1+|x|) approximation rather
// than the logistic function; the two differ in the tails.
func Sigmoid(x float64) float64 {
	return 0.5 * (x/(1+math.Abs(x)) + 1)
}

// Poisson reports whether at least one event of rate lambda happens,
// returning 0 or 1. Counts above one are never produced.
func Poisson(s *Stream, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	if 1-math.Exp(-lambda) > s.Float() {
		return 1
	}
	return 0
}
