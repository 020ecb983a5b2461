// Package display composes and renders the station's status pages.
package display

import (
	"fmt"

	"github.com/itohio/goaq/pkg/airquality"
	"github.com/itohio/goaq/pkg/reading"
)

// View selects the page shown on the display.
type View uint8

const (
	TempHumidity View = iota
	VOC
	CO2
	Particulate

	viewCount
)

// Next returns the following view, wrapping after the last one.
func (v View) Next() View {
	return (v + 1) % viewCount
}

func (v View) String() string {
	switch v {
	case TempHumidity:
		return "temperature"
	case VOC:
		return "voc"
	case CO2:
		return "co2"
	case Particulate:
		return "particulate"
	default:
		return fmt.Sprintf("view(%d)", uint8(v))
	}
}

// Renderer draws the current reading and its history.
// When on is false the renderer blanks or powers down the panel.
type Renderer interface {
	Render(current reading.Composite, history *reading.Ring, view View, on bool) error
}

// Progress is implemented by renderers that can show a start-up progress bar.
type Progress interface {
	Progress(label string, fraction float32) error
}

// RendererFunc adapts a function to a Renderer.
type RendererFunc func(current reading.Composite, history *reading.Ring, view View, on bool) error

func (f RendererFunc) Render(current reading.Composite, history *reading.Ring, view View, on bool) error {
	return f(current, history, view, on)
}

// Discard renders nothing.
var Discard Renderer = RendererFunc(func(reading.Composite, *reading.Ring, View, bool) error { return nil })

// Page is the hardware independent content of one view.
type Page struct {
	Title  string
	Lines  []string
	Series []float32 // History of the headline value, oldest first
	Min    float32
	Max    float32
}

// Compose builds the page for view. Series is downsampled to at most width points and
// reuses dst.
func Compose(dst []float32, current reading.Composite, history *reading.Ring, view View, th airquality.Thresholds, width int) Page {
	var (
		p     Page
		field func(reading.Composite) float32
	)

	switch view {
	case TempHumidity:
		p.Title = "Climate"
		p.Lines = []string{
			fmt.Sprintf("T %.1fC  H %.0f%%", current.Temperature, current.Humidity),
			fmt.Sprintf("DP %.1fC AH %.1f", current.DewPoint, current.AbsoluteHumidity),
		}
		field = func(c reading.Composite) float32 { return c.Temperature }
	case VOC:
		p.Title = "VOC"
		p.Lines = []string{
			fmt.Sprintf("TVOC %d ppb", current.TVOC),
			fmt.Sprintf("eCO2 %d ppm", current.ECO2),
		}
		field = func(c reading.Composite) float32 { return float32(c.TVOC) }
	case CO2:
		p.Title = "CO2"
		p.Lines = []string{
			fmt.Sprintf("CO2 %d ppm", current.CO2),
			th.Classify(current.CO2, current.TVOC, current.PM2_5).String(),
		}
		field = func(c reading.Composite) float32 { return float32(c.CO2) }
	default:
		p.Title = "Particulate"
		p.Lines = []string{
			fmt.Sprintf("PM2.5 %d ug/m3", current.PM2_5),
			fmt.Sprintf("PM1 %d PM10 %d", current.PM1_0, current.PM10),
		}
		field = func(c reading.Composite) float32 { return float32(c.PM2_5) }
	}

	if history != nil && history.Len() > 0 {
		series := history.Series(nil, field)
		p.Series = reading.Downsample(dst, series, width)
		p.Min, p.Max = reading.Bounds(p.Series)
	}
	return p
}
