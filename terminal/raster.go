package terminal

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Braille geometry: each terminal cell is 2x4 dots and stands for
// CellWidth x CellHeight logical pixels.
const (
	DotsX      = 2
	DotsY      = 4
	CellWidth  = 8
	CellHeight = 16
	DotRatio   = float64(DotsX) / CellWidth // Physical dots per logical pixel

	brailleBase = 0x2800
)

// brailleBits[y][x] is the Unicode bit for the dot at column x, row y of a cell.
var brailleBits = [DotsY][DotsX]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Raster is a field.Canvas that draws into a grid of braille dots. Each dot
// keeps the strongest alpha drawn onto it since the last Clear.
type Raster struct {
	w, h  int // In dots
	alpha []float64
	scale float64
}

// NewRaster returns an empty raster at scale 1.
func NewRaster() *Raster {
	return &Raster{scale: 1}
}

// Size returns the raster size in dots.
func (r *Raster) Size() (int, int) { return r.w, r.h }

// At returns the alpha of one dot, 0 outside the raster.
func (r *Raster) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return 0
	}
	return r.alpha[y*r.w+x]
}

func (r *Raster) SetBufferSize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	r.w, r.h = w, h
	if cap(r.alpha) >= w*h {
		r.alpha = r.alpha[:w*h]
		clear(r.alpha)
		return
	}
	r.alpha = make([]float64, w*h)
}

func (r *Raster) SetScale(s float64) {
	if s <= 0 {
		s = 1
	}
	r.scale = s
}

func (r *Raster) Clear(x, y, w, h float64) {
	x0, y0 := int(math.Floor(x*r.scale)), int(math.Floor(y*r.scale))
	x1, y1 := int(math.Ceil((x+w)*r.scale)), int(math.Ceil((y+h)*r.scale))
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, r.w), min(y1, r.h)
	if x0 >= x1 {
		return
	}
	for yy := y0; yy < y1; yy++ {
		clear(r.alpha[yy*r.w+x0 : yy*r.w+x1])
	}
}

// FillCircle lights every dot whose centre lies inside the disc, or the dot
// under the centre when the disc is smaller than a dot.
func (r *Raster) FillCircle(cx, cy, rad float64, clr color.Color) {
	a := alphaOf(clr)
	dcx, dcy, dr := cx*r.scale, cy*r.scale, rad*r.scale

	r.plot(int(math.Floor(dcx)), int(math.Floor(dcy)), a)
	for y := int(math.Floor(dcy - dr)); y <= int(math.Ceil(dcy+dr)); y++ {
		for x := int(math.Floor(dcx - dr)); x <= int(math.Ceil(dcx+dr)); x++ {
			if math.Hypot(float64(x)+0.5-dcx, float64(y)+0.5-dcy) <= dr {
				r.plot(x, y, a)
			}
		}
	}
}

// StrokeLine walks the segment one dot at a time. Lines are always one dot
// wide; width is below a dot at terminal resolution.
func (r *Raster) StrokeLine(x0, y0, x1, y1, width float64, clr color.Color) {
	a := alphaOf(clr)
	dx0, dy0 := x0*r.scale, y0*r.scale
	dx, dy := x1*r.scale-dx0, y1*r.scale-dy0

	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		r.plot(int(math.Floor(dx0)), int(math.Floor(dy0)), a)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		r.plot(int(math.Floor(dx0+dx*t)), int(math.Floor(dy0+dy*t)), a)
	}
}

func (r *Raster) plot(x, y int, a float64) {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return
	}
	if i := y*r.w + x; a > r.alpha[i] {
		r.alpha[i] = a
	}
}

// Cell returns the braille rune and strongest alpha for terminal cell (cx, cy).
func (r *Raster) Cell(cx, cy int) (rune, float64) {
	bits := rune(0)
	maxA := 0.0
	for y := 0; y < DotsY; y++ {
		for x := 0; x < DotsX; x++ {
			if a := r.At(cx*DotsX+x, cy*DotsY+y); a > 0 {
				bits |= brailleBits[y][x]
				maxA = math.Max(maxA, a)
			}
		}
	}
	if bits == 0 {
		return ' ', 0
	}
	return brailleBase + bits, maxA
}

// Flush writes the raster to screen, one braille cell per terminal cell.
func (r *Raster) Flush(screen tcell.Screen, accent, background colorful.Color, opacity float64) {
	cols, rows := screen.Size()
	bg := tcellColor(background)
	blank := tcell.StyleDefault.Background(bg)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			ch, a := r.Cell(cx, cy)
			if a == 0 {
				screen.SetContent(cx, cy, ' ', nil, blank)
				continue
			}
			fg := blend(accent, background, a*opacity)
			screen.SetContent(cx, cy, ch, nil, blank.Foreground(fg))
		}
	}
}

// blend composites accent at alpha a over background.
func blend(accent, background colorful.Color, a float64) tcell.Color {
	a = math.Max(0, math.Min(1, a))
	return tcellColor(background.BlendRgb(accent, a).Clamped())
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func alphaOf(clr color.Color) float64 {
	if clr == nil {
		return 0
	}
	return float64(color.NRGBAModel.Convert(clr).(color.NRGBA).A) / 255
}
