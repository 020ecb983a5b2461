package display

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goaq/pkg/airquality"
	"github.com/itohio/goaq/pkg/reading"
)

type fakePanel struct {
	draws  int
	halts  int
	frames []image.Image
}

func (f *fakePanel) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	f.draws++
	f.frames = append(f.frames, src)
	return nil
}

func (f *fakePanel) Halt() error {
	f.halts++
	return nil
}

func TestOLED_Render(t *testing.T) {
	panel := &fakePanel{}
	o := newOLED(panel, image.Rect(0, 0, 128, 64), airquality.DefaultThresholds())

	h := reading.NewRing(5)
	h.Push(sampleReading())

	require.NoError(t, o.Render(sampleReading(), h, CO2, true))
	assert.Equal(t, 1, panel.draws)
	assert.Positive(t, countInk(o.Image()))

	require.NoError(t, o.Render(sampleReading(), h, CO2, false))
	require.NoError(t, o.Render(sampleReading(), h, CO2, false))
	assert.Equal(t, 1, panel.halts, "panel is halted once while dark")

	require.NoError(t, o.Render(sampleReading(), h, VOC, true))
	assert.Equal(t, 2, panel.draws)
}

func TestOLED_ImageIsSnapshot(t *testing.T) {
	o := newOLED(&fakePanel{}, image.Rect(0, 0, 128, 64), airquality.DefaultThresholds())

	require.NoError(t, o.Progress("preheat", 0.25))
	frame := o.Image()
	before := countInk(frame)

	require.NoError(t, o.Progress("preheat", 1))
	assert.Equal(t, before, countInk(frame))
	assert.Greater(t, countInk(o.Image()), before)
}

func TestOLED_Progress(t *testing.T) {
	panel := &fakePanel{}
	o := newOLED(panel, image.Rect(0, 0, 128, 64), airquality.DefaultThresholds())

	require.NoError(t, o.Progress("preheat", 0.25))
	low := countInk(o.Image())
	require.NoError(t, o.Progress("preheat", 0.75))
	assert.Greater(t, countInk(o.Image()), low)
	assert.Equal(t, 2, panel.draws)
}

func TestOLED_ImplementsProgress(t *testing.T) {
	var r Renderer = newOLED(&fakePanel{}, image.Rect(0, 0, 128, 64), airquality.DefaultThresholds())
	_, ok := r.(Progress)
	assert.True(t, ok)

	_, ok = Discard.(Progress)
	assert.False(t, ok)
}
