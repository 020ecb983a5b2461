package display

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goaq/pkg/airquality"
	"github.com/itohio/goaq/pkg/reading"
)

func TestWidget_Render(t *testing.T) {
	test.NewTempApp(t)

	w := NewWidget(airquality.DefaultThresholds(), 64)
	h := reading.NewRing(3)
	h.Push(sampleReading())

	require.NoError(t, w.Render(sampleReading(), h, Particulate, true))

	w.mu.RLock()
	assert.Equal(t, "Particulate", w.page.Title)
	assert.Len(t, w.page.Series, 3)
	assert.True(t, w.on)
	w.mu.RUnlock()

	require.NoError(t, w.Render(sampleReading(), h, VOC, false))
	w.mu.RLock()
	assert.False(t, w.on)
	assert.Equal(t, "Particulate", w.page.Title, "page is kept while dark")
	w.mu.RUnlock()
}

func TestWidget_Progress(t *testing.T) {
	test.NewTempApp(t)

	w := NewWidget(airquality.DefaultThresholds(), 0)
	require.NoError(t, w.Progress("preheat", 1.5))

	w.mu.RLock()
	defer w.mu.RUnlock()
	assert.Equal(t, float32(1), w.progress)
	assert.True(t, w.booting)
}
