// Package filters provides value-quality masks for numeric series. All
// functions are pure: they return a mask aligned with the input and leave
// applying it (row removal or NaN-out) to the caller, so row alignment
// across other columns is preserved.
package filters

import "math"

// UnresponsiveFlag marks runs of minRun or more consecutive bit-identical
// non-NaN values, the signature of a frozen sensor. NaN never starts,
// extends, or joins a run. Runs shorter than minRun are left alone since
// sensors naturally plateau briefly under stable conditions.
//
// minRun below 2 flags nothing: a "run" of one is every sample.
func UnresponsiveFlag(values []float64, minRun int) []bool {
	mask := make([]bool, len(values))
	if minRun < 2 {
		return mask
	}

	i := 0
	for i < len(values) {
		if math.IsNaN(values[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(values) && values[j] == values[i] {
			j++
		}
		if j-i >= minRun {
			for k := i; k < j; k++ {
				mask[k] = true
			}
		}
		i = j
	}
	return mask
}

// RangeFlag marks values outside the inclusive [lo, hi] bound. NaN is not
// flagged: missing is not the same as out of range.
func RangeFlag(values []float64, lo, hi float64) []bool {
	mask := make([]bool, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < lo || v > hi {
			mask[i] = true
		}
	}
	return mask
}

// StdRangeFlag marks values more than sigma standard deviations from the
// series mean. NaN values are excluded from the statistics and never
// flagged. A series with fewer than two non-NaN values flags nothing.
func StdRangeFlag(values []float64, sigma float64) []bool {
	mask := make([]bool, len(values))

	var sum, sumSq float64
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		sumSq += v * v
		n++
	}
	if n < 2 {
		return mask
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	std := math.Sqrt(variance)

	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.Abs(v-mean) > sigma*std {
			mask[i] = true
		}
	}
	return mask
}
