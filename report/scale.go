package report

import "legichart/models"

// SymmetricScale returns the magnitude shared by both half-axes: the
// largest additions or deletions total across all buckets. An all-zero
// input yields 1 so callers never divide by zero.
func SymmetricScale(buckets []models.Bucket) int {
	max := 0
	for _, b := range buckets {
		if b.Additions > max {
			max = b.Additions
		}
		if b.Deletions > max {
			max = b.Deletions
		}
	}
	if max == 0 {
		return 1
	}
	return max
}

// CumulativeExtent returns the lowest and highest running net totals
// reached across the bucket sequence, always including zero.
func CumulativeExtent(buckets []models.Bucket) (lo, hi int) {
	for _, b := range buckets {
		for _, v := range [2]int{b.CumulativeStart, b.CumulativeEnd} {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

// BarLength maps a value onto span units of the half-axis. Any non-zero
// value maps to at least one visible unit; zero maps to exactly zero.
func BarLength(value, scale int, span float64) float64 {
	if value == 0 {
		return 0
	}
	length := float64(value) / float64(scale) * span
	if length < 1 {
		length = 1
	}
	return length
}
