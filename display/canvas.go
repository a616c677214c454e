package display

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Canvas is an offscreen ebiten layer addressed in logical pixels.
type Canvas struct {
	img   *ebiten.Image
	scale float64
}

// NewCanvas returns an empty canvas at scale 1.
func NewCanvas() *Canvas {
	return &Canvas{scale: 1}
}

// Image returns the backing layer, nil until SetBufferSize is called.
func (c *Canvas) Image() *ebiten.Image { return c.img }

// Scale returns the logical to physical scale factor.
func (c *Canvas) Scale() float64 { return c.scale }

// SetBufferSize reallocates the layer when the physical size changes.
func (c *Canvas) SetBufferSize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if c.img != nil {
		if b := c.img.Bounds(); b.Dx() == w && b.Dy() == h {
			return
		}
		c.img.Deallocate()
	}
	c.img = ebiten.NewImage(w, h)
}

// SetScale replaces the current scale; it does not compound.
func (c *Canvas) SetScale(s float64) {
	if s <= 0 {
		s = 1
	}
	c.scale = s
}

// Clear makes a logical rectangle transparent.
func (c *Canvas) Clear(x, y, w, h float64) {
	if c.img == nil {
		return
	}
	r := c.physicalRect(x, y, w, h).Intersect(c.img.Bounds())
	if r == c.img.Bounds() {
		c.img.Clear()
		return
	}
	if r.Empty() {
		return
	}
	c.img.SubImage(r).(*ebiten.Image).Clear()
}

// FillCircle draws an anti-aliased filled disc.
func (c *Canvas) FillCircle(cx, cy, r float64, clr color.Color) {
	if c.img == nil {
		return
	}
	vector.DrawFilledCircle(c.img, c.px(cx), c.px(cy), c.px(r), clr, true)
}

// StrokeLine draws an anti-aliased line segment.
func (c *Canvas) StrokeLine(x0, y0, x1, y1, width float64, clr color.Color) {
	if c.img == nil {
		return
	}
	vector.StrokeLine(c.img, c.px(x0), c.px(y0), c.px(x1), c.px(y1), c.px(width), clr, true)
}

func (c *Canvas) px(v float64) float32 {
	return float32(v * c.scale)
}

// physicalRect maps a logical rectangle to the smallest covering pixel rectangle.
func (c *Canvas) physicalRect(x, y, w, h float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(x*c.scale)),
		int(math.Floor(y*c.scale)),
		int(math.Ceil((x+w)*c.scale)),
		int(math.Ceil((y+h)*c.scale)),
	)
}
