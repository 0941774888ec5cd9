package preview

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	canvasMargin = 20 // pixels kept clear on every edge
	lineHeight   = 16 // vertical advance per wrapped line
)

// textCanvas lays out wrapped text on a fixed-size white canvas. The layout
// is fully deterministic: same input text and dimensions always produce the
// same pixels.
type textCanvas struct {
	img    *image.RGBA
	face   font.Face
	width  int
	height int
	y      int
}

// newTextCanvas creates a white canvas of exactly width x height pixels
func newTextCanvas(width, height int) *textCanvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	return &textCanvas{
		img:    img,
		face:   basicfont.Face7x13,
		width:  width,
		height: height,
		y:      canvasMargin + lineHeight,
	}
}

// drawHeader draws a single darker line followed by a blank line of spacing
func (c *textCanvas) drawHeader(text string) {
	c.drawLine(text, color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff})
	c.y += lineHeight / 2
}

// drawWrapped greedily packs words into lines no wider than the canvas minus
// the margin and draws them until the vertical budget is exhausted. It
// reports whether all text fit.
func (c *textCanvas) drawWrapped(text string) bool {
	textColor := color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	maxLineWidth := fixed.I(c.width - 2*canvasMargin)

	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			c.y += lineHeight
			if c.exhausted() {
				return false
			}
			continue
		}

		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if font.MeasureString(c.face, candidate) <= maxLineWidth {
				line = candidate
				continue
			}
			if line != "" {
				c.drawLine(line, textColor)
				if c.exhausted() {
					return false
				}
			}
			line = word
		}
		if line != "" {
			c.drawLine(line, textColor)
			if c.exhausted() {
				return false
			}
		}
	}

	return true
}

// drawLine draws one line of text at the current vertical position
func (c *textCanvas) drawLine(text string, col color.Color) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.P(canvasMargin, c.y),
	}
	d.DrawString(text)
	c.y += lineHeight
}

// exhausted reports whether the next line would cross the bottom margin
func (c *textCanvas) exhausted() bool {
	return c.y > c.height-canvasMargin
}

// Image returns the rendered canvas
func (c *textCanvas) Image() *image.RGBA {
	return c.img
}
