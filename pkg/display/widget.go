package display

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goaq/pkg/airquality"
	"github.com/itohio/goaq/pkg/reading"
)

var (
	panelColor = color.RGBA{R: 5, G: 5, B: 10, A: 255}
	inkColor   = color.RGBA{R: 120, G: 220, B: 255, A: 255}
	dimColor   = color.RGBA{R: 40, G: 70, B: 90, A: 255}
)

// Widget is a Fyne widget emulating the OLED panel on the desktop.
type Widget struct {
	widget.BaseWidget

	thresholds airquality.Thresholds
	points     int

	// Data (protected by mu)
	mu       sync.RWMutex
	page     Page
	on       bool
	series   []float32
	progress float32
	booting  bool
}

// NewWidget creates a widget plotting at most points history samples.
func NewWidget(th airquality.Thresholds, points int) *Widget {
	if points <= 0 {
		points = 128
	}
	w := &Widget{
		thresholds: th,
		points:     points,
		series:     make([]float32, 0, points),
	}
	w.ExtendBaseWidget(w)
	return w
}

// Render composes the page and schedules a refresh on the Fyne thread.
func (w *Widget) Render(current reading.Composite, history *reading.Ring, view View, on bool) error {
	w.mu.Lock()
	w.booting = false
	w.on = on
	if on {
		w.page = Compose(w.series, current, history, view, w.thresholds, w.points)
		w.series = w.page.Series
	}
	w.mu.Unlock()

	fyne.Do(w.Refresh)
	return nil
}

func (w *Widget) Progress(label string, fraction float32) error {
	w.mu.Lock()
	w.booting = true
	w.on = true
	w.progress = min(max(fraction, 0), 1)
	w.page = Page{Title: label, Lines: []string{label}}
	w.mu.Unlock()

	fyne.Do(w.Refresh)
	return nil
}

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(panelColor)
	return &widgetRenderer{
		w:       w,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}

type widgetRenderer struct {
	w       *Widget
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *widgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(256, 128)
}

func (r *widgetRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.Refresh()
}

// Refresh rebuilds the canvas objects from the current page.
func (r *widgetRenderer) Refresh() {
	r.w.mu.RLock()
	page := r.w.page
	on := r.w.on
	booting := r.w.booting
	progress := r.w.progress
	r.w.mu.RUnlock()

	size := r.w.Size()
	r.objects = []fyne.CanvasObject{r.bg}
	if !on || size.Width == 0 || size.Height == 0 {
		canvas.Refresh(r.bg)
		return
	}

	const textSize = 18
	y := float32(4)
	for _, l := range page.Lines {
		text := canvas.NewText(l, inkColor)
		text.TextSize = textSize
		text.TextStyle = fyne.TextStyle{Monospace: true}
		text.Move(fyne.NewPos(6, y))
		r.objects = append(r.objects, text)
		y += textSize + 4
	}

	if booting {
		r.drawBar(y+8, size, progress)
	} else {
		r.drawSeries(y+4, size, page)
	}
	canvas.Refresh(r.bg)
}

func (r *widgetRenderer) drawBar(top float32, size fyne.Size, fraction float32) {
	frame := canvas.NewRectangle(color.Transparent)
	frame.StrokeColor = inkColor
	frame.StrokeWidth = 1
	frame.Move(fyne.NewPos(6, top))
	frame.Resize(fyne.NewSize(size.Width-12, 16))

	fill := canvas.NewRectangle(inkColor)
	fill.Move(fyne.NewPos(9, top+3))
	fill.Resize(fyne.NewSize((size.Width-18)*fraction, 10))

	r.objects = append(r.objects, frame, fill)
}

func (r *widgetRenderer) drawSeries(top float32, size fyne.Size, page Page) {
	height := size.Height - top - 4
	width := size.Width - 12
	if len(page.Series) == 0 || height <= 0 {
		return
	}

	base := canvas.NewLine(dimColor)
	base.Position1 = fyne.NewPos(6, top+height)
	base.Position2 = fyne.NewPos(6+width, top+height)
	r.objects = append(r.objects, base)

	span := page.Max - page.Min
	if span == 0 {
		span = 1
	}
	n := len(page.Series)
	pos := func(i int, v float32) fyne.Position {
		x := float32(6)
		if n > 1 {
			x += float32(i) * width / float32(n-1)
		}
		return fyne.NewPos(x, top+height-(v-page.Min)/span*height)
	}

	prev := pos(0, page.Series[0])
	for i := 1; i < n; i++ {
		cur := pos(i, page.Series[i])
		l := canvas.NewLine(inkColor)
		l.Position1 = prev
		l.Position2 = cur
		l.StrokeWidth = 1.5
		r.objects = append(r.objects, l)
		prev = cur
	}
}

func (r *widgetRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *widgetRenderer) Destroy() {}
