// Package display hosts a particle field in an ebiten window.
package display

import (
	"context"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/olivierh59500/starfield/field"
)

// Options configures the window.
type Options struct {
	Title      string
	Width      int // Initial window size in logical pixels
	Height     int
	Fullscreen bool
	TPS        int
	Background color.RGBA
	Opacity    float64 // Layer opacity over Background

	Logf func(format string, args ...any)
}

// DefaultOptions matches the event site's dark theme.
func DefaultOptions() Options {
	return Options{
		Title:      "starfield",
		Width:      1280,
		Height:     800,
		TPS:        60,
		Background: color.RGBA{R: 0x14, G: 0x14, B: 0x14, A: 0xff},
		Opacity:    0.9,
	}
}

type viewport struct {
	w, h  int
	ratio float64
}

// Host implements field.Host and ebiten.Game. Frame callbacks run inside
// Draw and resize listeners inside Update, both on ebiten's game goroutine.
type Host struct {
	opts   Options
	canvas *Canvas

	frames field.FrameQueue
	resize field.ResizeListeners

	current viewport

	// Written by Layout, applied by Update
	mu     sync.Mutex
	latest viewport

	scaleFactor func() float64
	ctx         context.Context
}

// New creates a host sized to opts. The pixel ratio is corrected on the
// first Layout call.
func New(opts Options) *Host {
	vp := viewport{w: opts.Width, h: opts.Height, ratio: 1}
	return &Host{
		opts:        opts,
		canvas:      NewCanvas(),
		current:     vp,
		latest:      vp,
		scaleFactor: deviceScaleFactor,
		ctx:         context.Background(),
	}
}

func deviceScaleFactor() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// Viewport implements field.Host.
func (h *Host) Viewport() field.Viewport {
	return field.Viewport{
		Width:      float64(h.current.w),
		Height:     float64(h.current.h),
		PixelRatio: h.current.ratio,
	}
}

// Canvas implements field.Host.
func (h *Host) Canvas() field.Canvas { return h.canvas }

// RequestFrame implements field.Host.
func (h *Host) RequestFrame(fn func()) field.FrameID { return h.frames.Request(fn) }

// CancelFrame implements field.Host.
func (h *Host) CancelFrame(id field.FrameID) { h.frames.Cancel(id) }

// OnResize implements field.Host.
func (h *Host) OnResize(fn func()) func() { return h.resize.Add(fn) }

// Run opens the window and blocks until it is closed or ctx is done.
func (h *Host) Run(ctx context.Context) error {
	h.ctx = ctx

	ebiten.SetWindowSize(h.opts.Width, h.opts.Height)
	ebiten.SetWindowTitle(h.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(h.opts.Fullscreen)
	ebiten.SetTPS(h.opts.TPS)

	h.logf("WINDOW: Opening %dx%d at %d TPS", h.opts.Width, h.opts.Height, h.opts.TPS)
	return ebiten.RunGame(h)
}

// Update is called each tick by Ebitengine
func (h *Host) Update() error {
	if h.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	h.applyLayout()
	return nil
}

// Draw is called each frame by Ebitengine
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(h.opts.Background)
	h.frames.Run()

	layer := h.canvas.Image()
	if layer == nil {
		return
	}
	screen.DrawImage(layer, h.layerOptions())
}

// layerOptions composites the field layer at the configured opacity.
func (h *Host) layerOptions() *ebiten.DrawImageOptions {
	op := &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleAlpha(float32(h.opts.Opacity))
	return op
}

// Layout returns the physical screen size so the layer maps 1:1 onto device pixels
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	ratio := h.scaleFactor()
	if ratio <= 0 {
		ratio = 1
	}
	h.mu.Lock()
	h.latest = viewport{w: outsideWidth, h: outsideHeight, ratio: ratio}
	h.mu.Unlock()
	pw, ph := field.PhysicalSize(float64(outsideWidth), float64(outsideHeight), ratio)
	return max(pw, 1), max(ph, 1)
}

// applyLayout publishes the size seen by the last Layout call and notifies
// resize listeners when it changed.
func (h *Host) applyLayout() bool {
	h.mu.Lock()
	latest := h.latest
	h.mu.Unlock()

	if latest == h.current {
		return false
	}
	h.current = latest
	h.logf("WINDOW: Resized to %dx%d@%gx", latest.w, latest.h, latest.ratio)
	h.resize.Notify()
	return true
}

func (h *Host) logf(format string, args ...any) {
	if h.opts.Logf != nil {
		h.opts.Logf(format, args...)
	}
}
