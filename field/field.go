// Package field implements the animated particle background: drifting dots
// that bounce off the viewport edges, joined by lines that fade with distance.
//
// A Field is mounted into a Host, which supplies the viewport size, the
// drawing surface, a next-frame scheduler and resize notifications. All of a
// Field's state is owned by the host's single loop; nothing here is safe for
// concurrent use.
package field

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"
)

// State is the lifecycle state of a Field.
type State int

const (
	Unmounted State = iota
	Initializing
	Running
	Resizing
)

func (s State) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Resizing:
		return "resizing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Field is the particle background. Use New, then Mount it into a Host.
type Field struct {
	opts Options
	rng  *rand.Rand

	// Surface
	host          Host
	canvas        Canvas
	width, height float64
	ratio         float64

	particles []Particle

	state        State
	frame        FrameID
	framePending bool
	removeResize func()
	frames       uint64
	mounts       uint64 // Bumped on Mount so stale frame callbacks can tell
	noise        *perlin.Perlin
	warnedCanvas bool
}

// New creates an unmounted Field.
func New(opts Options) (*Field, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := &Field{
		opts:  opts,
		rng:   rand.New(rand.NewSource(seed)),
		ratio: 1,
	}
	if opts.Twinkle {
		f.noise = newNoise(seed)
	}
	return f, nil
}

// State returns the current lifecycle state.
func (f *Field) State() State { return f.state }

// Frames returns the number of advance+draw frames run so far.
func (f *Field) Frames() uint64 { return f.frames }

// Size returns the logical surface size and pixel ratio.
func (f *Field) Size() (w, h, ratio float64) { return f.width, f.height, f.ratio }

// Particles returns the live particle set. Callers must not keep it across
// a resize, which replaces it.
func (f *Field) Particles() []Particle { return f.particles }

// Initialize re-reads the viewport, resizes the canvas and regenerates every
// particle. Safe to call any number of times while mounted. Without a
// drawing surface it does nothing beyond a warning, once per mount.
func (f *Field) Initialize() {
	if f.host == nil {
		return
	}
	f.canvas = f.host.Canvas()
	if f.canvas == nil {
		f.particles = nil
		if !f.warnedCanvas {
			f.warnedCanvas = true
			f.opts.logf("FIELD: No drawing surface, field disabled")
		}
		return
	}

	vp := f.host.Viewport()
	f.width, f.height, f.ratio = vp.Width, vp.Height, vp.Ratio()
	bw, bh := PhysicalSize(f.width, f.height, f.ratio)
	f.canvas.SetBufferSize(bw, bh)
	f.canvas.SetScale(f.ratio)

	n := ParticleCount(f.width, f.height, f.opts.DensityDivisor)
	f.particles = Generate(f.rng, f.width, f.height, n, f.opts)
}

// Mount attaches the field to host and starts the frame loop. A host with
// no canvas leaves the field mounted but idle: no resize listener and no
// frame request. If mounting panics, everything registered so far is
// released before the panic continues.
func (f *Field) Mount(host Host) error {
	if host == nil {
		return ErrNilHost
	}
	if f.state != Unmounted {
		return fmt.Errorf("%w (state %s)", ErrAlreadyMounted, f.state)
	}

	mounted := false
	defer func() {
		if !mounted {
			f.Unmount()
		}
	}()

	f.host = host
	f.mounts++
	f.warnedCanvas = false
	f.state = Initializing
	f.Initialize()
	if f.canvas == nil {
		f.state = Running
		mounted = true
		return nil
	}

	f.removeResize = host.OnResize(f.resize)
	f.state = Running
	f.schedule()

	mounted = true
	f.opts.logf("FIELD: Mounted %.0fx%.0f@%gx with %d particles", f.width, f.height, f.ratio, len(f.particles))
	return nil
}

// Unmount cancels the pending frame and detaches the resize listener. It is
// a no-op on an unmounted field.
func (f *Field) Unmount() {
	if f.host != nil && f.framePending {
		f.host.CancelFrame(f.frame)
	}
	f.framePending = false
	if f.removeResize != nil {
		f.removeResize()
		f.removeResize = nil
	}
	if f.state != Unmounted {
		f.opts.logf("FIELD: Unmounted after %d frames", f.frames)
	}
	f.host = nil
	f.canvas = nil
	f.state = Unmounted
}

func (f *Field) schedule() {
	mount := f.mounts
	f.frame = f.host.RequestFrame(func() { f.tick(mount) })
	f.framePending = true
}

// tick is one display frame: advance, draw, reschedule.
func (f *Field) tick(mount uint64) {
	if mount != f.mounts || f.state == Unmounted || f.host == nil {
		return
	}
	f.framePending = false
	Advance(f.particles, f.width, f.height)
	f.DrawFrame()
	f.frames++
	f.schedule()
}

func (f *Field) resize() {
	if f.state == Unmounted {
		return
	}
	prev := f.state
	f.state = Resizing
	f.Initialize()
	f.state = prev
	f.opts.logf("FIELD: Resized to %.0fx%.0f@%gx, %d particles", f.width, f.height, f.ratio, len(f.particles))
}
