package field

import (
	"image/color"
	"sort"
)

// fakeCanvas records what the renderer asked for
type fakeCanvas struct {
	bufW, bufH int
	scale      float64
	clears     int
	lastClear  [4]float64
	circles    []color.NRGBA
	lines      []color.NRGBA
}

func (c *fakeCanvas) SetBufferSize(w, h int) { c.bufW, c.bufH = w, h }
func (c *fakeCanvas) SetScale(s float64)     { c.scale = s }

func (c *fakeCanvas) Clear(x, y, w, h float64) {
	c.clears++
	c.lastClear = [4]float64{x, y, w, h}
	c.circles = c.circles[:0]
	c.lines = c.lines[:0]
}

func (c *fakeCanvas) FillCircle(cx, cy, r float64, clr color.Color) {
	c.circles = append(c.circles, clr.(color.NRGBA))
}

func (c *fakeCanvas) StrokeLine(x0, y0, x1, y1, width float64, clr color.Color) {
	c.lines = append(c.lines, clr.(color.NRGBA))
}

// fakeHost is a manually stepped frame scheduler
type fakeHost struct {
	vp        Viewport
	canvas    Canvas
	nextID    FrameID
	pending   map[FrameID]func()
	cancelled []FrameID
	nextL     int
	listeners map[int]func()

	panicOnRequest bool
}

func newFakeHost(w, h, ratio float64, cv Canvas) *fakeHost {
	return &fakeHost{
		vp:        Viewport{Width: w, Height: h, PixelRatio: ratio},
		canvas:    cv,
		pending:   make(map[FrameID]func()),
		listeners: make(map[int]func()),
	}
}

func (h *fakeHost) Viewport() Viewport { return h.vp }

func (h *fakeHost) Canvas() Canvas { return h.canvas }

func (h *fakeHost) RequestFrame(fn func()) FrameID {
	if h.panicOnRequest {
		panic("no frames today")
	}
	h.nextID++
	h.pending[h.nextID] = fn
	return h.nextID
}

func (h *fakeHost) CancelFrame(id FrameID) {
	h.cancelled = append(h.cancelled, id)
	delete(h.pending, id)
}

func (h *fakeHost) OnResize(fn func()) func() {
	id := h.nextL
	h.nextL++
	h.listeners[id] = fn
	return func() { delete(h.listeners, id) }
}

// step runs one display frame: every callback requested before it started.
func (h *fakeHost) step() {
	ids := make([]FrameID, 0, len(h.pending))
	for id := range h.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn := h.pending[id]
		delete(h.pending, id)
		fn()
	}
}

func (h *fakeHost) resize(w, height float64) {
	h.vp.Width, h.vp.Height = w, height
	for _, fn := range h.listeners {
		fn()
	}
}
