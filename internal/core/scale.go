package core

import "math"

// NiceCeil returns a "nice" round upper bound for a chart axis: the
// smallest of {1,2,5,10}×10^k that is >= n, never less than 10.
func NiceCeil(n float64) float64 {
	if n <= 10 {
		return 10
	}
	p := math.Pow(10, math.Floor(math.Log10(n)))
	d := n / p
	for _, m := range []float64{1, 2, 5, 10} {
		if d <= m {
			return m * p
		}
	}
	return 10 * p
}
