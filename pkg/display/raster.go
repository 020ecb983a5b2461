package display

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const lineHeight = 13

// Draw rasterizes p onto img using fg for ink. The text occupies the top rows and the
// history graph fills the rest.
func Draw(img draw.Image, p Page, fg color.Color) {
	b := img.Bounds()

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: basicfont.Face7x13,
	}
	y := b.Min.Y + lineHeight - 2
	for _, line := range p.Lines {
		d.Dot = fixed.P(b.Min.X, y)
		d.DrawString(line)
		y += lineHeight
	}

	graph := image.Rect(b.Min.X, y-lineHeight+4, b.Max.X, b.Max.Y)
	plot(img, graph, p, fg)
}

// plot draws p.Series as a polyline scaled to r.
func plot(img draw.Image, r image.Rectangle, p Page, fg color.Color) {
	if len(p.Series) == 0 || r.Dx() <= 0 || r.Dy() <= 1 {
		return
	}

	span := p.Max - p.Min
	if span == 0 {
		span = 1
	}
	h := float32(r.Dy() - 1)

	yOf := func(v float32) int {
		return r.Max.Y - 1 - int((v-p.Min)/span*h+0.5)
	}

	n := len(p.Series)
	prevX, prevY := r.Min.X, yOf(p.Series[0])
	for i, v := range p.Series {
		x := r.Min.X
		if n > 1 {
			x += i * (r.Dx() - 1) / (n - 1)
		}
		y := yOf(v)
		line(img, prevX, prevY, x, y, fg)
		prevX, prevY = x, y
	}
}

// line draws a segment using Bresenham's algorithm.
func line(img draw.Image, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Bar draws a horizontal progress bar with label on top.
func Bar(img draw.Image, label string, fraction float32, fg color.Color) {
	b := img.Bounds()
	fraction = min(max(fraction, 0), 1)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(b.Min.X, b.Min.Y+lineHeight-2),
	}
	d.DrawString(label)

	top := b.Min.Y + b.Dy()/2
	frame := image.Rect(b.Min.X, top, b.Max.X, top+10)
	line(img, frame.Min.X, frame.Min.Y, frame.Max.X-1, frame.Min.Y, fg)
	line(img, frame.Min.X, frame.Max.Y-1, frame.Max.X-1, frame.Max.Y-1, fg)
	line(img, frame.Min.X, frame.Min.Y, frame.Min.X, frame.Max.Y-1, fg)
	line(img, frame.Max.X-1, frame.Min.Y, frame.Max.X-1, frame.Max.Y-1, fg)

	fill := frame.Inset(2)
	fill.Max.X = fill.Min.X + int(float32(fill.Dx())*fraction)
	draw.Draw(img, fill, image.NewUniform(fg), image.Point{}, draw.Src)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
