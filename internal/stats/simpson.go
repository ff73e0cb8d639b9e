// Package stats holds the numeric routines behind the diversity index.
// Everything here is pure: no I/O, no store access.
package stats

// SimpsonIndex computes the Gini-Simpson diversity index 1 - Σ (n_i/N)²
// over a row of category counts. The result is 0 when a single category
// holds the whole population and approaches 1 as categories become
// evenly balanced and numerous.
//
// Counts must be finite and non-negative; negative input is a caller
// contract violation and is not checked. Zero counts contribute nothing
// and are skipped. When the total population N is 0 the index is
// defined as 0 (no categories contribute), which also avoids the
// division by zero.
func SimpsonIndex(counts []float64) float64 {
	var total float64
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}

	var sum float64
	for _, n := range counts {
		if n == 0 {
			continue
		}
		p := n / total
		sum += p * p
	}
	return 1 - sum
}
