package field

import (
	"errors"
	"math"
	"testing"
)

func newTestField(t *testing.T, mutate func(*Options)) *Field {
	t.Helper()
	opts := DefaultOptions()
	opts.Seed = 42
	if mutate != nil {
		mutate(&opts)
	}
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		ok     bool
	}{
		{"defaults", func(o *Options) {}, true},
		{"zero divisor", func(o *Options) { o.DensityDivisor = 0 }, false},
		{"negative speed", func(o *Options) { o.Speed = -1 }, false},
		{"zero speed", func(o *Options) { o.Speed = 0 }, true},
		{"zero distance", func(o *Options) { o.ConnectionDistance = 0 }, false},
		{"inverted radius", func(o *Options) { o.MinRadius, o.MaxRadius = 4, 2 }, false},
		{"alpha above one", func(o *Options) { o.ParticleAlpha = 1.5 }, false},
		{"negative line alpha", func(o *Options) { o.LineAlpha = -0.1 }, false},
		{"zero line width", func(o *Options) { o.LineWidth = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.ok && err != nil {
				t.Errorf("Expected valid options, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("Expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestConnectionAlpha(t *testing.T) {
	tests := []struct {
		dist, want float64
	}{
		{0, 0.3},
		{70, 0.15},
		{105, 0.075},
		{140, 0},
		{200, 0},
	}
	for _, tt := range tests {
		got := ConnectionAlpha(tt.dist, 140, 0.3)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ConnectionAlpha(%v) = %v, want %v", tt.dist, got, tt.want)
		}
	}
}

func TestInitializeSizesBuffer(t *testing.T) {
	tests := []struct {
		name      string
		ratio     float64
		wantRatio float64
		wantW     int
		wantH     int
		wantCount int
		w, h      float64
	}{
		{"standard", 1, 1, 1200, 800, 80, 1200, 800},
		{"retina", 2, 2, 2400, 1600, 80, 1200, 800},
		{"fractional", 1.5, 1.5, 1501, 1200, 66, 1000.5, 800},
		{"missing ratio", 0, 1, 1200, 800, 80, 1200, 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := &fakeCanvas{}
			host := newFakeHost(tt.w, tt.h, tt.ratio, cv)
			f := newTestField(t, nil)
			if err := f.Mount(host); err != nil {
				t.Fatalf("Mount: %v", err)
			}
			defer f.Unmount()

			if cv.bufW != tt.wantW || cv.bufH != tt.wantH {
				t.Errorf("Buffer %dx%d, want %dx%d", cv.bufW, cv.bufH, tt.wantW, tt.wantH)
			}
			if cv.scale != tt.wantRatio {
				t.Errorf("Scale %v, want %v", cv.scale, tt.wantRatio)
			}
			if got := len(f.Particles()); got != tt.wantCount {
				t.Errorf("Expected %d particles, got %d", tt.wantCount, got)
			}
		})
	}
}

func TestInitializeReplacesParticleSet(t *testing.T) {
	host := newFakeHost(1200, 800, 1, &fakeCanvas{})
	f := newTestField(t, nil)
	if err := f.Mount(host); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer f.Unmount()

	first := f.Particles()
	if len(first) != 80 {
		t.Fatalf("Expected 80 particles, got %d", len(first))
	}

	host.resize(300, 200)

	second := f.Particles()
	if len(second) != 5 {
		t.Fatalf("Expected 5 particles after shrinking, got %d", len(second))
	}
	if &first[0] == &second[0] {
		t.Error("Particle slice reused across resize")
	}
	for i, p := range second {
		if p.Pos.X < 0 || p.Pos.X > 300 || p.Pos.Y < 0 || p.Pos.Y > 200 {
			t.Errorf("Stale particle %d at (%v, %v) survived resize", i, p.Pos.X, p.Pos.Y)
		}
	}
	if w, h, _ := f.Size(); w != 300 || h != 200 {
		t.Errorf("Surface %vx%v, want 300x200", w, h)
	}
	if f.State() != Running {
		t.Errorf("Expected running after resize, got %s", f.State())
	}
}

func TestResizeKeepsFrameLoop(t *testing.T) {
	host := newFakeHost(800, 600, 1, &fakeCanvas{})
	f := newTestField(t, nil)
	if err := f.Mount(host); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer f.Unmount()

	host.step()
	host.resize(400, 300)

	if len(host.cancelled) != 0 {
		t.Errorf("Resize cancelled frames %v", host.cancelled)
	}
	if len(host.pending) != 1 {
		t.Fatalf("Expected one pending frame, got %d", len(host.pending))
	}
	host.step()
	if f.Frames() != 2 {
		t.Errorf("Expected 2 frames, got %d", f.Frames())
	}
}

func TestUnmountStopsFrames(t *testing.T) {
	cv := &fakeCanvas{}
	host := newFakeHost(800, 600, 1, cv)
	f := newTestField(t, nil)
	if err := f.Mount(host); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	for i := 0; i < 5; i++ {
		host.step()
	}
	if f.Frames() != 5 || cv.clears != 5 {
		t.Fatalf("Expected 5 frames and clears, got %d and %d", f.Frames(), cv.clears)
	}

	f.Unmount()
	if len(host.pending) != 0 {
		t.Errorf("Pending frames after unmount: %d", len(host.pending))
	}
	if len(host.listeners) != 0 {
		t.Errorf("Resize listeners after unmount: %d", len(host.listeners))
	}

	for i := 0; i < 5; i++ {
		host.step()
	}
	host.resize(100, 100)
	if f.Frames() != 5 || cv.clears != 5 {
		t.Errorf("Field kept running after unmount: %d frames, %d clears", f.Frames(), cv.clears)
	}
	if f.State() != Unmounted {
		t.Errorf("Expected unmounted, got %s", f.State())
	}

	// Second unmount is harmless
	f.Unmount()
}

func TestStaleFrameIgnoredAfterRemount(t *testing.T) {
	host := newFakeHost(800, 600, 1, &fakeCanvas{})
	f := newTestField(t, nil)
	if err := f.Mount(host); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	var stale func()
	for _, fn := range host.pending {
		stale = fn
	}

	f.Unmount()
	if err := f.Mount(host); err != nil {
		t.Fatalf("Remount: %v", err)
	}
	defer f.Unmount()

	stale()
	if f.Frames() != 0 {
		t.Errorf("Stale callback ran a frame")
	}
	host.step()
	if f.Frames() != 1 {
		t.Errorf("Expected 1 frame after remount, got %d", f.Frames())
	}
}

func TestMountErrors(t *testing.T) {
	f := newTestField(t, nil)
	if err := f.Mount(nil); !errors.Is(err, ErrNilHost) {
		t.Errorf("Expected ErrNilHost, got %v", err)
	}

	host := newFakeHost(800, 600, 1, &fakeCanvas{})
	if err := f.Mount(host); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer f.Unmount()
	if err := f.Mount(host); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("Expected ErrAlreadyMounted, got %v", err)
	}
}

func TestMountPanicReleasesListener(t *testing.T) {
	host := newFakeHost(800, 600, 1, &fakeCanvas{})
	host.panicOnRequest = true
	f := newTestField(t, nil)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("Expected mount to panic")
			}
		}()
		_ = f.Mount(host)
	}()

	if len(host.listeners) != 0 {
		t.Errorf("Resize listener leaked after failed mount")
	}
	if f.State() != Unmounted {
		t.Errorf("Expected unmounted after failed mount, got %s", f.State())
	}
}

func TestMountWithoutCanvasIsIdle(t *testing.T) {
	var logged []string
	host := newFakeHost(1200, 800, 1, nil)
	f := newTestField(t, func(o *Options) {
		o.Logf = func(format string, args ...any) { logged = append(logged, format) }
	})
	if err := f.Mount(host); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if f.State() != Running {
		t.Errorf("Expected running, got %s", f.State())
	}
	if n := len(f.Particles()); n != 0 {
		t.Errorf("Expected no particles without a canvas, got %d", n)
	}
	if len(host.pending) != 0 {
		t.Errorf("Expected no frame request, got %d", len(host.pending))
	}
	if len(host.listeners) != 0 {
		t.Errorf("Expected no resize listener, got %d", len(host.listeners))
	}

	for i := 0; i < 100; i++ {
		host.step()
	}
	f.Initialize()
	f.DrawFrame()
	if f.Frames() != 0 || len(f.Particles()) != 0 {
		t.Errorf("Idle field ran %d frames with %d particles", f.Frames(), len(f.Particles()))
	}

	warned := 0
	for _, l := range logged {
		if l == "FIELD: No drawing surface, field disabled" {
			warned++
		}
	}
	if warned != 1 {
		t.Errorf("Expected one missing-surface warning, got %d", warned)
	}

	f.Unmount()
	if f.State() != Unmounted || len(host.cancelled) != 0 {
		t.Errorf("Unexpected teardown: state %s, cancelled %v", f.State(), host.cancelled)
	}
}

func TestDrawFrameConnections(t *testing.T) {
	cv := &fakeCanvas{}
	host := newFakeHost(400, 300, 1, cv)
	f := newTestField(t, nil)
	if err := f.Mount(host); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer f.Unmount()

	f.particles = []Particle{
		{Pos: Vec2{100, 100}, Radius: 2},
		{Pos: Vec2{170, 100}, Radius: 2}, // 70 from the first
		{Pos: Vec2{390, 290}, Radius: 2}, // far from both
	}
	f.DrawFrame()

	if cv.lastClear != [4]float64{0, 0, 400, 300} {
		t.Errorf("Cleared %v, want full logical area", cv.lastClear)
	}
	if len(cv.circles) != 3 {
		t.Fatalf("Expected 3 circles, got %d", len(cv.circles))
	}
	for i, c := range cv.circles {
		if c.A != 204 || c.R != 251 || c.G != 196 || c.B != 3 {
			t.Errorf("Circle %d colour %+v, want accent at alpha 0.8", i, c)
		}
	}
	if len(cv.lines) != 1 {
		t.Fatalf("Expected 1 connection, got %d", len(cv.lines))
	}
	if cv.lines[0].A != 38 { // round(0.15 * 255)
		t.Errorf("Connection alpha %d, want 38", cv.lines[0].A)
	}
}

func TestDrawFrameAllPairs(t *testing.T) {
	cv := &fakeCanvas{}
	host := newFakeHost(400, 300, 1, cv)
	f := newTestField(t, nil)
	if err := f.Mount(host); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer f.Unmount()

	// Five particles within 10px of each other: every pair connects once
	f.particles = nil
	for i := 0; i < 5; i++ {
		f.particles = append(f.particles, Particle{Pos: Vec2{200 + float64(i)*2, 150}, Radius: 2})
	}
	f.DrawFrame()
	if len(cv.lines) != 10 {
		t.Errorf("Expected 10 connections for 5 clustered particles, got %d", len(cv.lines))
	}
}

func TestTwinkleAlphaRange(t *testing.T) {
	f := newTestField(t, func(o *Options) { o.Twinkle = true })
	host := newFakeHost(800, 600, 1, &fakeCanvas{})
	if err := f.Mount(host); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer f.Unmount()

	lo := ParticleAlpha * (1 - twinkleDepth)
	for frame := 0; frame < 200; frame++ {
		for i := range f.Particles() {
			a := f.particleAlpha(i)
			if a < lo-1e-9 || a > ParticleAlpha+1e-9 {
				t.Fatalf("Frame %d particle %d alpha %v outside [%v, %v]", frame, i, a, lo, ParticleAlpha)
			}
		}
		host.step()
	}
}

func TestStateString(t *testing.T) {
	if Resizing.String() != "resizing" || State(9).String() != "State(9)" {
		t.Errorf("Unexpected state names %q %q", Resizing, State(9))
	}
}
