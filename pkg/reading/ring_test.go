package reading

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func co2(v uint16) Composite { return Composite{CO2: v} }

func co2s(h *Ring) []uint16 {
	var out []uint16
	for r := range h.All() {
		out = append(out, r.CO2)
	}
	return out
}

func TestRing_Empty(t *testing.T) {
	h := NewRing(5)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 5, h.Cap())
	_, ok := h.Latest()
	assert.False(t, ok)
	assert.Empty(t, co2s(h))
}

func TestRing_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultHistoryLength, NewRing(0).Cap())
}

func TestRing_FirstPushBackfills(t *testing.T) {
	h := NewRing(4)
	h.Push(co2(400))

	assert.Equal(t, 4, h.Len())
	assert.Equal(t, []uint16{400, 400, 400, 400}, co2s(h))
}

func TestRing_ShiftAndAppend(t *testing.T) {
	h := NewRing(3)
	h.Push(co2(1))
	h.Push(co2(2))
	assert.Equal(t, []uint16{1, 1, 2}, co2s(h))

	h.Push(co2(3))
	h.Push(co2(4))
	assert.Equal(t, []uint16{2, 3, 4}, co2s(h))

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, uint16(4), latest.CO2)
	assert.Equal(t, uint16(2), h.At(0).CO2)
}

func TestRing_LengthInvariant(t *testing.T) {
	h := NewRing(7)
	for i := range 100 {
		h.Push(co2(uint16(i)))
		assert.Equal(t, h.Cap(), h.Len())
		got := co2s(h)
		assert.True(t, slices.IsSorted(got), "oldest first after push %d", i)
		assert.Equal(t, uint16(i), got[len(got)-1])
	}
}

func TestRing_AllRestartableAndStoppable(t *testing.T) {
	h := NewRing(3)
	h.Push(co2(1))
	h.Push(co2(2))

	assert.Equal(t, co2s(h), co2s(h))

	n := 0
	for range h.All() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestRing_AtOutOfRange(t *testing.T) {
	h := NewRing(2)
	assert.Panics(t, func() { h.At(0) })
	h.Push(co2(1))
	assert.NotPanics(t, func() { h.At(1) })
	assert.Panics(t, func() { h.At(2) })
}

func TestRing_Series(t *testing.T) {
	h := NewRing(3)
	h.Push(Composite{Temperature: 20})
	h.Push(Composite{Temperature: 21})

	dst := make([]float32, 0, 8)
	got := h.Series(dst, func(c Composite) float32 { return c.Temperature })
	assert.Equal(t, []float32{20, 20, 21}, got)
}

func TestRing_PushCopiesByValue(t *testing.T) {
	h := NewRing(2)
	r := co2(1)
	h.Push(r)
	r.CO2 = 99
	assert.Equal(t, []uint16{1, 1}, co2s(h))
}
