// Package stats holds small order statistics used by the dashboards.
package stats

import (
	"cmp"
	"math"
	"slices"
)

// Number is any value that can be ranked and averaged
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Quantile returns the q-th quantile (0 <= q <= 1) of sorted, interpolating
// linearly between the closest ranks. sorted must be in ascending order.
func Quantile[T Number](sorted []T, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	q = min(max(q, 0), 1)

	index := q * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return float64(sorted[lower])
	}

	weight := index - float64(lower)
	return float64(sorted[lower])*(1-weight) + float64(sorted[upper])*weight
}

// Quantiles sorts a copy of values once and returns one quantile per q
func Quantiles[T Number](values []T, qs ...float64) []float64 {
	sorted := slices.Clone(values)
	slices.SortFunc(sorted, cmp.Compare[T])

	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = Quantile(sorted, q)
	}
	return out
}

// Median returns the middle value of values
func Median[T Number](values []T) float64 {
	return Quantiles(values, 0.5)[0]
}
