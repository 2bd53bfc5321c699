// Package stats holds the small numeric helpers shared by the ranking and
// history components.
package stats

import (
	"math"
	"sort"
	"strconv"
)

// Median returns the median of values, or 0 for an empty slice. The input
// slice is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// ClampedNumber parses raw as a float and returns fallback when it is not a
// finite number.
func ClampedNumber(raw string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return fallback
	}
	return parsed
}

// BoundedInt floors raw and clamps it into [min, max]. Non-finite values
// yield fallback.
func BoundedInt(raw float64, min, max, fallback int) int {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return fallback
	}
	n := int(math.Floor(raw))
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// Count clamps a requested result count into [1, 100], defaulting when the
// value is not finite.
func Count(raw float64, fallback int) int {
	return BoundedInt(raw, 1, 100, fallback)
}
