package field

import (
	"image/color"
	"math"
)

// Viewport is the visible area as reported by the host.
type Viewport struct {
	Width, Height float64 // Logical pixels
	PixelRatio    float64 // Physical pixels per logical pixel; <= 0 means 1
}

// Ratio returns the effective pixel ratio.
func (v Viewport) Ratio() float64 {
	if v.PixelRatio <= 0 {
		return 1
	}
	return v.PixelRatio
}

// PhysicalSize returns the backing buffer size for a logical size at ratio.
func PhysicalSize(w, h, ratio float64) (int, int) {
	return int(math.Ceil(w * ratio)), int(math.Ceil(h * ratio))
}

// Canvas is a 2D drawing surface. After SetScale(s) every coordinate and
// length passed in is in logical pixels and is multiplied by s on the way
// to the backing buffer.
type Canvas interface {
	SetBufferSize(w, h int)
	SetScale(s float64)
	Clear(x, y, w, h float64)
	FillCircle(cx, cy, r float64, clr color.Color)
	StrokeLine(x0, y0, x1, y1, width float64, clr color.Color)
}

// FrameID identifies a pending frame request.
type FrameID uint64

// Host is the environment a Field is mounted into. All callbacks it invokes
// (frames and resize listeners) must run on the same goroutine.
type Host interface {
	Viewport() Viewport
	// Canvas returns nil when no drawing surface is available.
	Canvas() Canvas
	// RequestFrame runs fn once, on the next display frame.
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
	// OnResize registers fn for every viewport change and returns its remover.
	OnResize(fn func()) (remove func())
}
