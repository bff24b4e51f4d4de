package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{[]float64{10}, 10},
		{[]float64{1, 2, 3, 4, 5}, 3},
		{[]float64{1, 2, 3, 4, 5, 6}, 3.5},
		{[]float64{1, 2, 3, 4, 5, 6, 7}, 4},
	}
	for _, c := range cases {
		got, ok := Median(c.in)
		assert.True(t, ok)
		assert.Equal(t, c.want, got)
	}
}

func TestMedianEmpty(t *testing.T) {
	_, ok := Median(nil)
	assert.False(t, ok)
}

func TestAverageIntEmpty(t *testing.T) {
	assert.Equal(t, 0.0, AverageInt(nil))
}

func TestAverageInt(t *testing.T) {
	assert.Equal(t, 2.5, AverageInt([]int{1, 2, 3, 4}))
}

func TestPercentageChange(t *testing.T) {
	assert.InDelta(t, 100.0, PercentageChange(10, 20), 1e-9)
	assert.InDelta(t, -50.0, PercentageChange(10, 5), 1e-9)
}

func TestPercentageChangeZeroOrig(t *testing.T) {
	got := PercentageChange(0, 5)
	assert.Greater(t, got, 0.0)
	assert.False(t, isInfOrNaN(got))
}

func isInfOrNaN(f float64) bool {
	return f != f || f > 1e300 || f < -1e300
}
