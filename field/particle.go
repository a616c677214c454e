package field

import (
	"math"
	"math/rand"
)

// Vec2 is a point or displacement in logical pixels.
type Vec2 struct {
	X, Y float64
}

// Particle is one drifting dot
type Particle struct {
	Pos    Vec2
	Vel    Vec2    // Logical px per frame, only ever sign-flipped
	Radius float64 // Fixed at creation
}

// ParticleCount is the number of particles a w x h logical area holds.
func ParticleCount(w, h, divisor float64) int {
	if w <= 0 || h <= 0 || divisor <= 0 {
		return 0
	}
	return int(math.Floor(w * h / divisor))
}

// Generate returns n fresh particles scattered uniformly over [0,w]x[0,h].
func Generate(rng *rand.Rand, w, h float64, n int, opts Options) []Particle {
	ps := make([]Particle, n)
	for i := range ps {
		ps[i] = Particle{
			Pos: Vec2{
				X: rng.Float64() * w,
				Y: rng.Float64() * h,
			},
			Vel: Vec2{
				X: (rng.Float64() - 0.5) * opts.Speed,
				Y: (rng.Float64() - 0.5) * opts.Speed,
			},
			Radius: opts.MinRadius + rng.Float64()*(opts.MaxRadius-opts.MinRadius),
		}
	}
	return ps
}

// Advance moves every particle one frame and flips the velocity of any axis
// that ended outside the surface. Positions are not clamped, so a particle
// can sit just past an edge for the frame in which it bounces.
func Advance(ps []Particle, w, h float64) {
	for i := range ps {
		p := &ps[i]
		p.Pos.X += p.Vel.X
		p.Pos.Y += p.Vel.Y

		if p.Pos.X < 0 || p.Pos.X > w {
			p.Vel.X = -p.Vel.X
		}
		if p.Pos.Y < 0 || p.Pos.Y > h {
			p.Vel.Y = -p.Vel.Y
		}
	}
}
