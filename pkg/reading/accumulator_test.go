package reading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulator_Empty(t *testing.T) {
	var acc Accumulator
	avg, ok := acc.Finalize()
	assert.False(t, ok)
	assert.Equal(t, Particulate{}, avg)
	assert.Equal(t, 0, acc.Count())
}

func TestAccumulator_Average(t *testing.T) {
	var acc Accumulator
	acc.Add(Particulate{PM1_0: 1, PM2_5: 10, PM10: 20, Counts: Counts{Over0_3: 100}})
	acc.Add(Particulate{PM1_0: 2, PM2_5: 13, PM10: 21, Counts: Counts{Over0_3: 300}})

	avg, ok := acc.Finalize()
	assert.True(t, ok)
	assert.Equal(t, 2, acc.Count())
	assert.Equal(t, uint16(1), avg.PM1_0) // Integer division
	assert.Equal(t, uint16(11), avg.PM2_5)
	assert.Equal(t, uint16(20), avg.PM10)
	assert.Equal(t, uint16(300), avg.Counts.Over0_3, "counts come from the last sample")
}

func TestAccumulator_Reset(t *testing.T) {
	var acc Accumulator
	acc.Add(Particulate{PM2_5: 50})
	acc.Reset()

	_, ok := acc.Finalize()
	assert.False(t, ok)

	acc.Add(Particulate{PM2_5: 8})
	avg, ok := acc.Finalize()
	assert.True(t, ok)
	assert.Equal(t, uint16(8), avg.PM2_5)
}

func TestAccumulator_LargeSums(t *testing.T) {
	var acc Accumulator
	for range 1000 {
		acc.Add(Particulate{PM10: 65000})
	}
	avg, ok := acc.Finalize()
	assert.True(t, ok)
	assert.Equal(t, uint16(65000), avg.PM10)
}

func TestComposite_Apply(t *testing.T) {
	c := Composite{CO2: 700, PM2_5: 3}
	c.Apply(Particulate{PM1_0: 4, PM2_5: 5, PM10: 6, Counts: Counts{Over10: 1}})
	assert.Equal(t, uint16(700), c.CO2)
	assert.Equal(t, uint16(5), c.PM2_5)
	assert.Equal(t, uint16(1), c.Counts.Over10)
}
