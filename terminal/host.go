// Package terminal hosts a particle field in a terminal, drawn with braille
// characters through tcell.
package terminal

import (
	"context"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivierh59500/starfield/field"
)

// Options configures the terminal host.
type Options struct {
	TPS        int
	Accent     color.RGBA
	Background color.RGBA
	Opacity    float64

	Logf func(format string, args ...any)
}

// Host implements field.Host on a tcell screen. Frames, resize listeners
// and flushing all happen on the goroutine that calls Run.
type Host struct {
	screen     tcell.Screen
	opts       Options
	raster     *Raster
	accent     colorful.Color
	background colorful.Color

	frames field.FrameQueue
	resize field.ResizeListeners

	cols, rows int
}

// New wraps an initialised screen.
func New(screen tcell.Screen, opts Options) *Host {
	accent, _ := colorful.MakeColor(opts.Accent)
	background, _ := colorful.MakeColor(opts.Background)
	h := &Host{
		screen:     screen,
		opts:       opts,
		raster:     NewRaster(),
		accent:     accent,
		background: background,
	}
	h.cols, h.rows = screen.Size()
	screen.HideCursor()
	return h
}

// Viewport implements field.Host. A cell stands for CellWidth x CellHeight
// logical pixels, so the field keeps its density whatever the font size.
func (h *Host) Viewport() field.Viewport {
	return field.Viewport{
		Width:      float64(h.cols * CellWidth),
		Height:     float64(h.rows * CellHeight),
		PixelRatio: DotRatio,
	}
}

// Canvas implements field.Host.
func (h *Host) Canvas() field.Canvas { return h.raster }

// RequestFrame implements field.Host.
func (h *Host) RequestFrame(fn func()) field.FrameID { return h.frames.Request(fn) }

// CancelFrame implements field.Host.
func (h *Host) CancelFrame(id field.FrameID) { h.frames.Cancel(id) }

// OnResize implements field.Host.
func (h *Host) OnResize(fn func()) func() { return h.resize.Add(fn) }

// Run draws frames at opts.TPS until ctx is done or the user quits with
// Escape, q or Ctrl-C. The screen must be finalised by the caller.
func (h *Host) Run(ctx context.Context) error {
	tps := h.opts.TPS
	if tps <= 0 {
		tps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	h.logf("TERMINAL: Running %dx%d cells at %d TPS", h.cols, h.rows, tps)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if quit := h.handle(ev); quit {
				return nil
			}
		case <-ticker.C:
			h.frame()
		}
	}
}

// handle applies one input event and reports whether to quit.
func (h *Host) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		if cols == h.cols && rows == h.rows {
			return false
		}
		h.cols, h.rows = cols, rows
		h.screen.Sync()
		h.logf("TERMINAL: Resized to %dx%d cells", cols, rows)
		h.resize.Notify()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return true
		}
	}
	return false
}

// frame runs the queued frame callbacks and shows the result.
func (h *Host) frame() {
	h.frames.Run()
	h.raster.Flush(h.screen, h.accent, h.background, h.opts.Opacity)
	h.screen.Show()
}

func (h *Host) logf(format string, args ...any) {
	if h.opts.Logf != nil {
		h.opts.Logf(format, args...)
	}
}
