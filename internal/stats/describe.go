package stats

import (
	"math"
	"sort"
)

// StdScores returns the standard score (value - mean) / stddev for each
// value, using the sample standard deviation. When the standard
// deviation is 0 (all values equal) every score is 0.
func StdScores(values []float64) []float64 {
	scores := make([]float64, len(values))
	if len(values) < 2 {
		return scores
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(values)-1))
	if std == 0 {
		return scores
	}

	for i, v := range values {
		scores[i] = (v - mean) / std
	}
	return scores
}

// Quartiles assigns each value to its quartile 1..4 relative to the
// 25th, 50th and 75th percentiles of the input. Values at or below the
// 25th percentile fall in quartile 1; values above the 75th percentile
// fall in quartile 4.
func Quartiles(values []float64) []int {
	quartiles := make([]int, len(values))
	if len(values) == 0 {
		return quartiles
	}

	q1 := Percentile(values, 25)
	q2 := Percentile(values, 50)
	q3 := Percentile(values, 75)

	for i, v := range values {
		switch {
		case v <= q1:
			quartiles[i] = 1
		case v <= q2:
			quartiles[i] = 2
		case v <= q3:
			quartiles[i] = 3
		default:
			quartiles[i] = 4
		}
	}
	return quartiles
}

// Percentile computes the p-th percentile of values using linear
// interpolation between closest ranks. p is in [0, 100].
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
