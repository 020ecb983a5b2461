package sensor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/itohio/goaq/pkg/config"
	"github.com/itohio/goaq/pkg/gate"
)

type fakeVOC struct {
	voc      VOC
	err      error
	hint     float32
	baseline Baseline
}

func (f *fakeVOC) Measure(ah float32) (VOC, error) {
	f.hint = ah
	return f.voc, f.err
}

func (f *fakeVOC) Baseline() (Baseline, error) { return f.baseline, f.err }

func (f *fakeVOC) SetBaseline(b Baseline) error {
	f.baseline = b
	return f.err
}

func TestArray_NotPresent(t *testing.T) {
	a := &Array{}

	_, _, err := a.ReadTemperatureHumidity()
	assert.ErrorIs(t, err, ErrNotPresent)
	_, err = a.ReadVOC(0)
	assert.ErrorIs(t, err, ErrNotPresent)
	_, err = a.ReadCO2()
	assert.ErrorIs(t, err, ErrNotPresent)
	_, err = a.ReadParticulate()
	assert.ErrorIs(t, err, ErrNotPresent)
	_, err = a.VOCBaseline()
	assert.ErrorIs(t, err, ErrNotPresent)
	assert.ErrorIs(t, a.SetVOCBaseline(Baseline{}), ErrNotPresent)
	assert.ErrorIs(t, a.SetCO2AutoCalibration(false), ErrNotPresent)
	assert.NoError(t, a.SetParticulatePower(true), "no enable line is not an error")
	assert.NoError(t, a.Close())
}

func TestArray_Hygrometer(t *testing.T) {
	resp := appendWord(nil, 0x6666)
	resp = appendWord(resp, 0x8000)
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: SHT31Address, W: []byte{0x30, 0xa2}},
			{Addr: SHT31Address, W: []byte{0x2c, 0x06}, R: resp},
			{Addr: SHT31Address, W: []byte{0x2c, 0x06}, R: []byte{0, 0, 0, 0, 0, 0}},
		},
		DontPanic: true,
	}
	h, err := NewHygrometer(bus, "sht31", 0)
	require.NoError(t, err)

	a := &Array{Hygrometer: h}
	temp, hum, err := a.ReadTemperatureHumidity()
	require.NoError(t, err)
	assert.InDelta(t, 25, temp, 0.01)
	assert.InDelta(t, 50, hum, 0.01)

	_, _, err = a.ReadTemperatureHumidity()
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestArray_VOC(t *testing.T) {
	voc := &fakeVOC{voc: VOC{TVOC: 10, ECO2: 420}}
	a := &Array{VOC: voc}

	v, err := a.ReadVOC(7.5)
	require.NoError(t, err)
	assert.Equal(t, VOC{TVOC: 10, ECO2: 420}, v)
	assert.Equal(t, float32(7.5), voc.hint)

	require.NoError(t, a.SetVOCBaseline(Baseline{ECO2: 1, TVOC: 2}))
	b, err := a.VOCBaseline()
	require.NoError(t, err)
	assert.Equal(t, Baseline{ECO2: 1, TVOC: 2}, b)

	voc.err = errors.New("nack")
	_, err = a.ReadVOC(0)
	var re *ReadError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "voc", re.Sensor)
}

func TestArray_ParticulatePower(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO13"}
	a := &Array{Power: NewPin(pin)}

	require.NoError(t, a.SetParticulatePower(true))
	assert.Equal(t, gpio.High, pin.Read())
	require.NoError(t, a.SetParticulatePower(false))
	assert.Equal(t, gpio.Low, pin.Read())
}

func TestButton(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO17"}
	b, err := NewButton(pin)
	require.NoError(t, err)

	assert.Equal(t, gpio.PullUp, pin.Pull())
	assert.False(t, b.Pressed())

	require.NoError(t, pin.Out(gpio.Low))
	assert.True(t, b.Pressed())
}

func TestVirtualButton(t *testing.T) {
	var b VirtualButton
	assert.False(t, b.Pressed())
	b.Set(true)
	assert.True(t, b.Pressed())
}

func TestSimulated_Particulate(t *testing.T) {
	clock := gate.NewManualClock(0)
	s := NewSimulated(config.Default().Simulation, clock)

	_, err := s.ReadParticulate()
	assert.ErrorIs(t, err, ErrNoData, "unpowered")

	require.NoError(t, s.SetParticulatePower(true))
	assert.True(t, s.Powered())
	clock.Advance(time.Second)
	_, err = s.ReadParticulate()
	assert.ErrorIs(t, err, ErrNoData, "spinning up")

	clock.Advance(3 * time.Second)
	p, err := s.ReadParticulate()
	require.NoError(t, err)
	assert.Greater(t, p.PM10, uint16(0))

	_, err = s.ReadParticulate()
	assert.ErrorIs(t, err, ErrNoData, "one frame per second")

	require.NoError(t, s.SetParticulatePower(false))
	clock.Advance(5 * time.Second)
	_, err = s.ReadParticulate()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSimulated_CO2Cadence(t *testing.T) {
	clock := gate.NewManualClock(0)
	s := NewSimulated(config.Default().Simulation, clock)

	co2, err := s.ReadCO2()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, co2, uint16(400))

	clock.Advance(time.Second)
	_, err = s.ReadCO2()
	assert.ErrorIs(t, err, ErrNoData)

	clock.Advance(5 * time.Second)
	_, err = s.ReadCO2()
	assert.NoError(t, err)
}

func TestSimulated_Deterministic(t *testing.T) {
	cfg := config.Default().Simulation
	a := NewSimulated(cfg, gate.NewManualClock(0))
	b := NewSimulated(cfg, gate.NewManualClock(0))

	for range 10 {
		ta, ha, _ := a.ReadTemperatureHumidity()
		tb, hb, _ := b.ReadTemperatureHumidity()
		assert.Equal(t, ta, tb)
		assert.Equal(t, ha, hb)
		assert.Greater(t, ha, float32(0))
		assert.LessOrEqual(t, ha, float32(100))
	}
}

func TestSimulated_Calibration(t *testing.T) {
	s := NewSimulated(config.Default().Simulation, gate.NewManualClock(0))

	require.NoError(t, s.SetVOCBaseline(Baseline{ECO2: 0x941d, TVOC: 0x953f}))
	b, err := s.VOCBaseline()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x941d), b.ECO2)

	require.NoError(t, s.SetCO2AutoCalibration(true))
	assert.True(t, s.AutoCalibration())
}

var _ ParticulateSensor = (*PMS5003)(nil)
var _ CO2Sensor = (*MHZ19)(nil)
var _ VOCSensor = (*SGP30)(nil)
var _ Hygrometer = (*AHT20)(nil)

func TestErrors(t *testing.T) {
	err := &ReadError{Sensor: "mhz19", Err: ErrChecksum}
	assert.Equal(t, "mhz19: read failed: checksum mismatch", err.Error())
	assert.Same(t, error(err), readErr("other", err))
	assert.NoError(t, readErr("x", nil))

	ie := &InitError{Sensor: "sgp30", Err: ErrNotPresent}
	assert.ErrorIs(t, ie, ErrNotPresent)
	assert.Equal(t, "sgp30: init failed: sensor not present", ie.Error())

	_, perr := (&Array{}).ReadParticulate()
	assert.ErrorIs(t, perr, ErrNotPresent)
	assert.False(t, errors.Is(perr, ErrNoData))
}
