package monitor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goaq/pkg/reading"
)

type powerLog struct {
	calls []bool
	err   error
}

func (p *powerLog) set(on bool) error {
	p.calls = append(p.calls, on)
	return p.err
}

func pm(v uint16) reading.Particulate {
	return reading.Particulate{PM1_0: v, PM2_5: v, PM10: v, Counts: reading.Counts{Over0_3: v * 10}}
}

func TestDutyCycle_FullCycle(t *testing.T) {
	power := &powerLog{}
	d := NewDutyCycle(180000, 25000, 12000, power.set, nil)

	_, ok := d.Step(0)
	assert.False(t, ok)
	assert.Equal(t, AwakeWaiting, d.State())
	assert.Equal(t, []bool{true}, power.calls)

	// Samples before the window are discarded
	assert.False(t, d.Offer(10000, pm(99)))

	d.Step(25000)
	assert.Equal(t, AwakeSampling, d.State())
	assert.True(t, d.Offer(25000, pm(10)))
	assert.True(t, d.Offer(30000, pm(20)))
	assert.True(t, d.Offer(36999, pm(31)))
	assert.False(t, d.Offer(37000, pm(99)), "window end is exclusive")

	avg, ok := d.Step(37000)
	require.True(t, ok)
	assert.Equal(t, uint16(20), avg.PM2_5) // (10+20+31)/3 with integer division
	assert.Equal(t, uint16(310), avg.Counts.Over0_3, "counts come from the last sample")
	assert.Equal(t, Asleep, d.State())
	assert.Equal(t, []bool{true, false}, power.calls)

	// No wake until the interval elapsed since the previous wake
	d.Step(179999)
	assert.Equal(t, Asleep, d.State())
	d.Step(180000)
	assert.Equal(t, AwakeWaiting, d.State())
	assert.Equal(t, 0, d.Count())
	assert.Equal(t, []bool{true, false, true}, power.calls)
}

func TestDutyCycle_ZeroSamples(t *testing.T) {
	d := NewDutyCycle(180000, 25000, 12000, nil, nil)
	d.Step(0)
	d.Step(25000)
	_, ok := d.Step(37000)
	assert.False(t, ok)
	assert.Equal(t, Asleep, d.State())
}

func TestDutyCycle_SparseSteps(t *testing.T) {
	power := &powerLog{}
	d := NewDutyCycle(180000, 25000, 12000, power.set, nil)
	d.Step(0)

	// One step covers waiting, sampling and sleeping
	_, ok := d.Step(50000)
	assert.False(t, ok)
	assert.Equal(t, Asleep, d.State())
	assert.Equal(t, []bool{true, false}, power.calls)
}

func TestDutyCycle_PowerAlternates(t *testing.T) {
	power := &powerLog{}
	d := NewDutyCycle(60000, 25000, 12000, power.set, nil)

	for now := uint32(0); now < 600000; now += 700 {
		d.Step(now)
	}
	require.NotEmpty(t, power.calls)
	for i, on := range power.calls {
		assert.Equal(t, i%2 == 0, on, "call %d", i)
	}
}

func TestDutyCycle_PowerFailureDoesNotWedge(t *testing.T) {
	power := &powerLog{err: errors.New("gpio busy")}
	d := NewDutyCycle(180000, 25000, 12000, power.set, nil)

	d.Step(0)
	d.Step(25000)
	d.Step(37000)
	assert.Equal(t, Asleep, d.State())
	d.Step(180000)
	assert.Equal(t, AwakeWaiting, d.State())
}

func TestDutyCycle_Wraparound(t *testing.T) {
	start := uint32(0xFFFFFFFF - 30000)
	d := NewDutyCycle(180000, 25000, 12000, nil, nil)
	d.Step(start)
	d.Step(start + 25000)
	assert.True(t, d.Offer(start+26000, pm(7)))

	avg, ok := d.Step(start + 37000)
	require.True(t, ok)
	assert.Equal(t, uint16(7), avg.PM10)
}
