package media

import (
	"image"
	"image/color"
)

// SMPTE-style bar colors, left to right.
var colorBars = []color.RGBA{
	{R: 192, G: 192, B: 192, A: 255}, // gray
	{R: 192, G: 192, B: 0, A: 255},   // yellow
	{R: 0, G: 192, B: 192, A: 255},   // cyan
	{R: 0, G: 192, B: 0, A: 255},     // green
	{R: 192, G: 0, B: 192, A: 255},   // magenta
	{R: 192, G: 0, B: 0, A: 255},     // red
	{R: 0, G: 0, B: 192, A: 255},     // blue
}

// patternSource renders animated color bars with a bouncing box. The same
// buffer is reused for every frame.
type patternSource struct {
	width, height int
	frame         int
	buf           *image.RGBA
	bars          *image.RGBA
}

func newPatternSource(width, height int) *patternSource {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	p := &patternSource{
		width:  width,
		height: height,
		buf:    image.NewRGBA(image.Rect(0, 0, width, height)),
		bars:   image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	p.drawBars()
	return p
}

func (p *patternSource) drawBars() {
	barWidth := p.width / len(colorBars)
	if barWidth == 0 {
		barWidth = 1
	}
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			idx := x / barWidth
			if idx >= len(colorBars) {
				idx = len(colorBars) - 1
			}
			p.bars.SetRGBA(x, y, colorBars[idx])
		}
	}
}

// next renders the next animation frame.
func (p *patternSource) next() (*image.RGBA, error) {
	copy(p.buf.Pix, p.bars.Pix)

	box := p.height / 4
	if box < 1 {
		box = 1
	}
	spanX := p.width - box
	spanY := p.height - box
	x := bounce(p.frame*8, spanX)
	y := bounce(p.frame*5, spanY)

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for yy := y; yy < y+box && yy < p.height; yy++ {
		for xx := x; xx < x+box && xx < p.width; xx++ {
			p.buf.SetRGBA(xx, yy, white)
		}
	}

	p.frame++
	return p.buf, nil
}

// bounce folds a monotonically increasing position into [0, span].
func bounce(pos, span int) int {
	if span <= 0 {
		return 0
	}
	period := span * 2
	pos %= period
	if pos > span {
		return period - pos
	}
	return pos
}
