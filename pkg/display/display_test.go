package display

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/itohio/goaq/pkg/airquality"
	"github.com/itohio/goaq/pkg/reading"
)

func sampleReading() reading.Composite {
	return reading.Composite{
		Temperature: 21.54, Humidity: 45.2, DewPoint: 9.1, AbsoluteHumidity: 8.47,
		TVOC: 120, ECO2: 480, CO2: 1250,
		PM1_0: 4, PM2_5: 7, PM10: 11,
	}
}

func TestView_Next(t *testing.T) {
	v := TempHumidity
	var seen []View
	for range 5 {
		seen = append(seen, v)
		v = v.Next()
	}
	assert.Equal(t, []View{TempHumidity, VOC, CO2, Particulate, TempHumidity}, seen)
	assert.Equal(t, "particulate", Particulate.String())
}

func TestCompose(t *testing.T) {
	th := airquality.DefaultThresholds()
	r := sampleReading()

	tests := []struct {
		view  View
		title string
		lines []string
	}{
		{TempHumidity, "Climate", []string{"T 21.5C  H 45%", "DP 9.1C AH 8.5"}},
		{VOC, "VOC", []string{"TVOC 120 ppb", "eCO2 480 ppm"}},
		{CO2, "CO2", []string{"CO2 1250 ppm", "inferior"}},
		{Particulate, "Particulate", []string{"PM2.5 7 ug/m3", "PM1 4 PM10 11"}},
	}

	for _, tt := range tests {
		t.Run(tt.view.String(), func(t *testing.T) {
			p := Compose(nil, r, nil, tt.view, th, 128)
			assert.Equal(t, tt.title, p.Title)
			assert.Equal(t, tt.lines, p.Lines)
			assert.Empty(t, p.Series)
		})
	}
}

func TestCompose_Series(t *testing.T) {
	h := reading.NewRing(4)
	for _, co2 := range []uint16{500, 600, 700} {
		h.Push(reading.Composite{CO2: co2})
	}

	p := Compose(nil, reading.Composite{}, h, CO2, airquality.DefaultThresholds(), 128)
	// First push back-fills every slot
	assert.Equal(t, []float32{500, 500, 600, 700}, p.Series)
	assert.Equal(t, float32(500), p.Min)
	assert.Equal(t, float32(700), p.Max)

	p = Compose(nil, reading.Composite{}, h, CO2, airquality.DefaultThresholds(), 2)
	assert.Len(t, p.Series, 2)
}

func countInk(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.At(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestDraw(t *testing.T) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	h := reading.NewRing(10)
	for i := range 10 {
		h.Push(reading.Composite{Temperature: float32(20 + i)})
	}

	p := Compose(nil, sampleReading(), h, TempHumidity, airquality.DefaultThresholds(), 128)
	Draw(img, p, image1bit.On)

	assert.Positive(t, countInk(img))
	// Newest value is the maximum, so the graph ends in the top row of the plot area
	// and the lowest value in the bottom row.
	assert.Equal(t, image1bit.On, img.At(0, 63))
	assert.Equal(t, image1bit.On, img.At(127, 28))
}

func TestLine(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	line(img, 0, 0, 7, 7, color.White)
	for i := range 8 {
		assert.Equal(t, uint8(255), img.GrayAt(i, i).Y)
	}
	assert.Equal(t, uint8(0), img.GrayAt(7, 0).Y)
}

func TestBar(t *testing.T) {
	empty := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	Bar(empty, "", 0, image1bit.On)
	full := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	Bar(full, "", 1, image1bit.On)
	half := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	Bar(half, "", 0.5, image1bit.On)

	require.Positive(t, countInk(empty))
	assert.Greater(t, countInk(half), countInk(empty))
	assert.Greater(t, countInk(full), countInk(half))

	clamped := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	Bar(clamped, "", 3, image1bit.On)
	assert.Equal(t, countInk(full), countInk(clamped))
}
