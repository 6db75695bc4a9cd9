package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantiles(t *testing.T) {
	assert.Equal(t, []float64{0}, Quantiles([]int64{}, 0.5))

	values := []int64{40, 10, 30, 20}
	got := Quantiles(values, 0, 0.5, 0.9, 1, 2)
	assert.InDeltaSlice(t, []float64{10, 25, 37, 40, 40}, got, 1e-9)
	assert.Equal(t, []int64{40, 10, 30, 20}, values, "input is not reordered")
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]int{4, 1, 3, 2}))
}
