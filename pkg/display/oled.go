package display

import (
	"fmt"
	"image"
	"slices"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/itohio/goaq/pkg/airquality"
	"github.com/itohio/goaq/pkg/config"
	"github.com/itohio/goaq/pkg/reading"
)

// panel is the part of *ssd1306.Dev the renderer drives.
type panel interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// OLED renders pages onto a monochrome SSD1306 panel.
type OLED struct {
	dev        panel
	thresholds airquality.Thresholds

	mu     sync.Mutex
	img    *image1bit.VerticalLSB
	series []float32
	dark   bool
}

// OpenOLED initializes an SSD1306 panel on bus.
func OpenOLED(bus i2c.Bus, cfg config.DisplayConfig, th airquality.Thresholds) (*OLED, error) {
	opts := ssd1306.DefaultOpts
	opts.W = cfg.Width
	opts.H = cfg.Height
	opts.Rotated = cfg.Rotated

	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ssd1306: %w", err)
	}
	return newOLED(dev, dev.Bounds(), th), nil
}

func newOLED(dev panel, bounds image.Rectangle, th airquality.Thresholds) *OLED {
	return &OLED{
		dev:        dev,
		thresholds: th,
		img:        image1bit.NewVerticalLSB(bounds),
		series:     make([]float32, 0, bounds.Dx()),
	}
}

func (o *OLED) Render(current reading.Composite, history *reading.Ring, view View, on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !on {
		if o.dark {
			return nil
		}
		o.dark = true
		return o.dev.Halt()
	}
	o.dark = false

	page := Compose(o.series, current, history, view, o.thresholds, o.img.Bounds().Dx())
	o.series = page.Series

	o.clear()
	Draw(o.img, page, image1bit.On)
	return o.dev.Draw(o.img.Bounds(), o.img, image.Point{})
}

func (o *OLED) Progress(label string, fraction float32) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.dark = false
	o.clear()
	Bar(o.img, label, fraction, image1bit.On)
	return o.dev.Draw(o.img.Bounds(), o.img, image.Point{})
}

func (o *OLED) clear() {
	clear(o.img.Pix)
}

// Image returns a copy of the last frame sent to the panel.
func (o *OLED) Image() image.Image {
	o.mu.Lock()
	defer o.mu.Unlock()
	frame := *o.img
	frame.Pix = slices.Clone(o.img.Pix)
	return &frame
}
