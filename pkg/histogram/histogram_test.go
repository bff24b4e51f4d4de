package histogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDistribution(t *testing.T) {
	h := New("betweenness")
	for _, v := range []float64{0.1, 0.6, 0.7, 17.2, 117.3, 117.4, 117.5, 255.5, 255.6, 255.7, 255.8} {
		h.Add(v)
	}
	s := h.Compute(256)
	assert.Len(t, s.Counts, 256)
	assert.Equal(t, 4, s.MaxCount)
	assert.Equal(t, 0, s.Counts[16])
	assert.Equal(t, 1, s.Counts[17])
	assert.Equal(t, 0, s.Counts[18])
	assert.Equal(t, 0, s.Counts[116])
	assert.Equal(t, 3, s.Counts[117])
}

func TestComputeZeroDelta(t *testing.T) {
	h := New("degree")
	s := h.Compute(256)
	assert.Equal(t, 0, s.MaxCount)

	h.Add(4.6)
	h.Add(4.6)
	h.Add(4.6)
	h.Add(4.6)
	s = h.Compute(256)
	assert.Equal(t, 0, s.MaxCount)
	assert.Equal(t, 0, s.Counts[16])
	assert.Equal(t, 0, s.Counts[116])
	assert.Equal(t, 0, s.Counts[216])
}
