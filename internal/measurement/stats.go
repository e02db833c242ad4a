package measurement

import (
	"math"
	"sort"
)

// sortedCopy returns a sorted copy of samples, leaving the input untouched.
func sortedCopy(samples []float64) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)
	sort.Float64s(out)

	return out
}

// percentile returns the p-th percentile (0..1) of a pre-sorted sample
// using linear interpolation between the two nearest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)

	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, v := range samples {
		sum += v
	}

	return sum / float64(len(samples))
}

func stdDev(samples []float64, m float64) float64 {
	if len(samples) < 2 {
		return 0
	}

	var sumSq float64
	for _, v := range samples {
		d := v - m
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(len(samples)-1))
}

// coefficientOfVariation is stddev/mean expressed as a percentage, matching
// cv_threshold's own scale (spec.md's cv_threshold default is 5.0, i.e. 5%).
func coefficientOfVariation(sd, m float64) float64 {
	if m == 0 {
		return 0
	}

	return (sd / m) * 100
}

// rejectOutliers removes samples outside 1.5x the interquartile range,
// the standard Tukey fence, returning the filtered slice and the count
// removed. Samples are expected pre-sorted; fewer than 4 samples are
// returned unchanged since quartiles are not meaningful below that size.
func rejectOutliers(sorted []float64) (filtered []float64, removed uint64) {
	if len(sorted) < 4 {
		return sorted, 0
	}

	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	lowerFence := q1 - 1.5*iqr
	upperFence := q3 + 1.5*iqr

	filtered = make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if v < lowerFence || v > upperFence {
			removed++

			continue
		}
		filtered = append(filtered, v)
	}

	if len(filtered) == 0 {
		// Degenerate: every sample looked like an outlier (near-zero
		// variance with one extreme value). Fall back to the original
		// sample rather than reporting an empty measurement.
		return sorted, 0
	}

	return filtered, removed
}
