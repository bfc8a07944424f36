package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// NormalizeSum divides every entry of v by the sum of all entries, in place,
// so the entries sum to one. When the sum is zero or not finite (silence,
// or an already broken vector) v is left untouched and false is returned.
func NormalizeSum(v []float64) bool {
	if len(v) == 0 {
		return false
	}

	sum := floats.Sum(v)
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return false
	}

	floats.Scale(1/sum, v)
	return true
}

// ArgMax returns the index of the largest entry of v, or -1 for an empty slice
func ArgMax(v []float64) int {
	if len(v) == 0 {
		return -1
	}
	return floats.MaxIdx(v)
}
