package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// The window operators below implement the no-lookahead contract in one
// place: every average at index i is computed over values strictly before
// i. Training and prediction both go through these, so the lag convention
// cannot silently diverge between the two paths.

// LaggedRolling returns, per index, the mean of up to k values strictly
// before it. Indexes with no prior value get NaN, which downstream treats
// as a missing feature.
func LaggedRolling(values []float64, k int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := i - k
		if start < 0 {
			start = 0
		}
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.Mean(values[start:i], nil)
	}
	return out
}

// NextRolling evaluates the lagged rolling mean at the virtual next index,
// i.e. the feature value for a game that has not happened yet. NaN for an
// empty history.
func NextRolling(values []float64, k int) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	start := len(values) - k
	if start < 0 {
		start = 0
	}
	return stat.Mean(values[start:], nil)
}

// NextExpanding evaluates the lagged expanding mean at the virtual next
// index.
func NextExpanding(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// LaggedExpanding returns, per index, the mean of all values strictly
// before it. The first index gets NaN.
func LaggedExpanding(values []float64) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		if i == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(i)
		}
		sum += v
	}
	return out
}
