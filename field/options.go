package field

import (
	"errors"
	"fmt"
	"image/color"
)

// Field constants
const (
	DensityDivisor     = 12000.0 // Logical px² per particle, roughly one per 110x110 region
	Speed              = 0.4     // Max logical px per frame on each axis
	ConnectionDistance = 140.0   // Pairs closer than this get a line
	MinRadius          = 1.5
	MaxRadius          = 3.5
	ParticleAlpha      = 0.8
	LineAlpha          = 0.3 // Alpha of a connection at zero distance
	LineWidth          = 0.8
)

// Accent is the default particle and line colour (#FBC403).
var Accent = color.RGBA{R: 251, G: 196, B: 3, A: 255}

var (
	ErrNilHost        = errors.New("field: nil host")
	ErrAlreadyMounted = errors.New("field: already mounted")
	ErrInvalidOptions = errors.New("field: invalid options")
)

// Options tunes a Field. The zero value is not usable; start from DefaultOptions.
type Options struct {
	DensityDivisor     float64
	Speed              float64
	ConnectionDistance float64
	MinRadius          float64
	MaxRadius          float64
	ParticleAlpha      float64
	LineAlpha          float64
	LineWidth          float64
	Accent             color.RGBA

	Seed    int64 // 0 seeds from the clock
	Twinkle bool  // Perlin-modulated particle alpha

	Logf func(format string, args ...any)
}

// DefaultOptions returns the stock look of the background.
func DefaultOptions() Options {
	return Options{
		DensityDivisor:     DensityDivisor,
		Speed:              Speed,
		ConnectionDistance: ConnectionDistance,
		MinRadius:          MinRadius,
		MaxRadius:          MaxRadius,
		ParticleAlpha:      ParticleAlpha,
		LineAlpha:          LineAlpha,
		LineWidth:          LineWidth,
		Accent:             Accent,
	}
}

// Validate reports the first out-of-range option, wrapping ErrInvalidOptions.
func (o Options) Validate() error {
	switch {
	case o.DensityDivisor <= 0:
		return fmt.Errorf("%w: density divisor must be positive, got %v", ErrInvalidOptions, o.DensityDivisor)
	case o.ConnectionDistance <= 0:
		return fmt.Errorf("%w: connection distance must be positive, got %v", ErrInvalidOptions, o.ConnectionDistance)
	case o.Speed < 0:
		return fmt.Errorf("%w: speed must not be negative, got %v", ErrInvalidOptions, o.Speed)
	case o.MinRadius < 0 || o.MinRadius > o.MaxRadius:
		return fmt.Errorf("%w: radius range [%v, %v] is empty", ErrInvalidOptions, o.MinRadius, o.MaxRadius)
	case o.LineWidth <= 0:
		return fmt.Errorf("%w: line width must be positive, got %v", ErrInvalidOptions, o.LineWidth)
	case !unit(o.ParticleAlpha) || !unit(o.LineAlpha):
		return fmt.Errorf("%w: alpha must be within [0, 1]", ErrInvalidOptions)
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}
