package field

import (
	"image/color"
	"math"

	"github.com/aquilax/go-perlin"
)

// Twinkle noise parameters
const (
	twinkleTimeStep  = 0.02
	twinkleIndexStep = 7.3
	twinkleDepth     = 0.25
)

// ConnectionAlpha is the stroke alpha for two particles dist apart: lineAlpha
// at zero distance falling linearly to 0 at maxDist. Returns 0 at or past maxDist.
func ConnectionAlpha(dist, maxDist, lineAlpha float64) float64 {
	if dist >= maxDist {
		return 0
	}
	return lineAlpha * (1 - dist/maxDist)
}

func withAlpha(c color.RGBA, a float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(clamp01(a) * 255))}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// DrawFrame renders the current particle set. It does nothing when the host
// has no canvas.
func (f *Field) DrawFrame() {
	if f.canvas == nil {
		return
	}
	cv := f.canvas
	cv.Clear(0, 0, f.width, f.height)

	for i := range f.particles {
		p := &f.particles[i]
		cv.FillCircle(p.Pos.X, p.Pos.Y, p.Radius, withAlpha(f.opts.Accent, f.particleAlpha(i)))
	}

	// All pairs, every frame: O(n²), with n bounded by DensityDivisor.
	maxDist := f.opts.ConnectionDistance
	for i := range f.particles {
		p := &f.particles[i]
		for j := i + 1; j < len(f.particles); j++ {
			q := &f.particles[j]
			d := math.Hypot(p.Pos.X-q.Pos.X, p.Pos.Y-q.Pos.Y)
			if d < maxDist {
				a := ConnectionAlpha(d, maxDist, f.opts.LineAlpha)
				cv.StrokeLine(p.Pos.X, p.Pos.Y, q.Pos.X, q.Pos.Y, f.opts.LineWidth, withAlpha(f.opts.Accent, a))
			}
		}
	}
}

// particleAlpha returns the fill alpha for particle i on the current frame.
func (f *Field) particleAlpha(i int) float64 {
	if f.noise == nil {
		return f.opts.ParticleAlpha
	}
	n := f.noise.Noise1D(float64(f.frames)*twinkleTimeStep + float64(i)*twinkleIndexStep)
	n = clamp01((n + 1) / 2)
	return clamp01(f.opts.ParticleAlpha * (1 - twinkleDepth + twinkleDepth*n))
}

func newNoise(seed int64) *perlin.Perlin {
	return perlin.NewPerlin(2, 2, 3, seed)
}
