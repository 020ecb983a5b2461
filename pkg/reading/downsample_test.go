package reading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownsample(t *testing.T) {
	tests := []struct {
		name      string
		values    []float32
		maxPoints int
		want      []float32
	}{
		{name: "fits", values: []float32{1, 2, 3}, maxPoints: 5, want: []float32{1, 2, 3}},
		{name: "decimate", values: []float32{0, 1, 2, 3, 4, 5, 6, 7}, maxPoints: 4, want: []float32{0, 2, 4, 6}},
		{name: "zero points", values: []float32{1, 2}, maxPoints: 0, want: []float32{}},
		{name: "empty", values: nil, maxPoints: 3, want: []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Downsample(make([]float32, 0, 1), tt.values, tt.maxPoints)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDownsample_ReusesDst(t *testing.T) {
	dst := make([]float32, 0, 10)
	got := Downsample(dst, []float32{1, 2, 3}, 10)
	assert.Equal(t, []float32{1, 2, 3}, got)
	assert.Equal(t, &dst[:1][0], &got[0])
}

func TestBounds(t *testing.T) {
	lo, hi := Bounds([]float32{3, -1, 7, 2})
	assert.Equal(t, float32(-1), lo)
	assert.Equal(t, float32(7), hi)

	lo, hi = Bounds(nil)
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}
