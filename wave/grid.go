package wave

import (
	"math"
	"time"

	"backdrop/frame"
)

// Surface receives the grid's draw calls. Each cell becomes one stroked
// square outline; nothing is filled.
type Surface interface {
	StrokeSquare(x, y, size, alpha float32)
}

// Grid is the wave grid renderer: a scalar field sized to the viewport,
// pointer splashes, and the radial flash.
type Grid struct {
	cfg     Config
	params  Params
	stepper Stepper

	width, height float64
	field         *Field
	radial        []float32

	flash *FlashScheduler

	lastX, lastY float64
	hasLast      bool
}

// NewGrid validates cfg and returns an empty grid. Call Resize before use.
func NewGrid(cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Grid{
		cfg:     cfg,
		params:  Params{Damping: cfg.Damping, SpeedSq: cfg.WaveSpeedSq},
		stepper: CPUStepper{},
		field:   newField(0, 0),
		flash:   NewFlashScheduler(cfg.Flash),
	}, nil
}

// Config returns the grid configuration.
func (g *Grid) Config() Config { return g.cfg }

// SetStepper replaces the solver. A nil stepper restores the CPU solver.
func (g *Grid) SetStepper(s Stepper) {
	if s == nil {
		s = CPUStepper{}
	}
	g.stepper = s
}

// Dimensions returns the column and row counts for a viewport of w×h pixels.
// Empty or invalid viewports have no cells.
func Dimensions(w, h, cellSize float64) (cols, rows int) {
	if !(w > 0) || !(h > 0) || !(cellSize > 0) {
		return 0, 0
	}
	return int(math.Ceil(w / cellSize)), int(math.Ceil(h / cellSize))
}

// Resize recomputes the grid for a w×h viewport. All buffers are reallocated
// and zeroed; prior wave state is discarded.
func (g *Grid) Resize(w, h float64) {
	cols, rows := Dimensions(w, h, g.cfg.CellSize)
	if cols == 0 || rows == 0 {
		w, h = 0, 0
	}
	g.width, g.height = w, h
	g.field = newField(cols, rows)
	g.radial = make([]float32, cols*rows)

	cx, cy := w/2, h/2
	sigma := math.Max(1, g.cfg.Flash.Radius*g.cfg.Flash.Softness)
	s := g.cfg.CellSize
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			dx := (float64(x)+0.5)*s - cx
			dy := (float64(y)+0.5)*s - cy
			g.radial[y*cols+x] = float32(frame.Gaussian(dx*dx+dy*dy, sigma))
		}
	}
}

// Size returns the viewport size the grid was last resized to.
func (g *Grid) Size() (float64, float64) { return g.width, g.height }

// Cols returns the column count.
func (g *Grid) Cols() int { return g.field.cols }

// Rows returns the row count.
func (g *Grid) Rows() int { return g.field.rows }

// Field exposes the wave buffers.
func (g *Grid) Field() *Field { return g.field }

// Flash exposes the flash scheduler.
func (g *Grid) Flash() *FlashScheduler { return g.flash }

// Empty reports whether the grid currently has no cells.
func (g *Grid) Empty() bool { return g.field.Len() == 0 }

// Step advances the wave one frame. Empty grids are skipped.
func (g *Grid) Step() error {
	if g.Empty() {
		return nil
	}
	return g.stepper.StepField(g.field, g.params)
}

// Energy returns the sum of squared current field values.
func (g *Grid) Energy() float64 { return g.field.Energy() }

// Splash adds a Gaussian bump of the given strength to every cell whose centre
// lies within the brush radius of (px, py).
func (g *Grid) Splash(px, py, strength float64) {
	f := g.field
	if f.Len() == 0 {
		return
	}
	s := g.cfg.CellSize
	radius := g.cfg.BrushRadius
	sigma := radius * brushSigmaScale
	cx := int(math.Floor(px / s))
	cy := int(math.Floor(py / s))
	rCells := int(math.Ceil(radius / s))
	curr := f.Current()
	for y := cy - rCells; y <= cy+rCells; y++ {
		if y < 0 || y >= f.rows {
			continue
		}
		for x := cx - rCells; x <= cx+rCells; x++ {
			if x < 0 || x >= f.cols {
				continue
			}
			dx := (float64(x)+0.5)*s - px
			dy := (float64(y)+0.5)*s - py
			d2 := dx*dx + dy*dy
			if d2 > radius*radius {
				continue
			}
			curr[y*f.cols+x] += float32(strength * frame.Gaussian(d2, sigma))
		}
	}
}

// SpeedFactor maps pointer travel since the previous event to a splash
// strength multiplier.
func SpeedFactor(dist float64) float64 {
	return math.Min(speedCeil, speedFloor+dist/speedDivisor)
}

// Pointer handles a pointer move or press at (px, py): it splashes with a
// strength proportional to pointer speed and pauses the periodic flash.
func (g *Grid) Pointer(px, py float64, now time.Duration) {
	speed := 1.0
	if g.hasLast {
		speed = SpeedFactor(math.Hypot(px-g.lastX, py-g.lastY))
	}
	g.Splash(px, py, g.cfg.BrushStrength*speed)
	g.lastX, g.lastY, g.hasLast = px, py, true
	g.flash.Activity(now)
}

// CellAlpha combines the base alpha, the saturating wave boost and the flash
// boost for one cell, clamped to [0, 1].
func CellAlpha(cfg Config, u float32, radial, fade float64) float64 {
	v := math.Abs(float64(u))
	if math.IsNaN(v) {
		v = 0
	}
	wave := cfg.MaxBoost * math.Tanh(cfg.BoostCurveK*v)
	flash := cfg.Flash.Peak * fade * radial
	return frame.Clamp(cfg.BaseAlpha+wave+flash, 0, 1)
}

// Alpha returns the opacity of cell index i at time now.
func (g *Grid) Alpha(i int, now time.Duration) float64 {
	return CellAlpha(g.cfg, g.field.Current()[i], float64(g.radial[i]), g.flash.Fade(now))
}

// Render strokes every cell onto s. Flash deadlines are advanced first.
func (g *Grid) Render(s Surface, now time.Duration) {
	g.flash.Advance(now)
	f := g.field
	if f.Len() == 0 {
		return
	}
	fade := g.flash.Fade(now)
	size := g.cfg.CellSize
	side := float32(size - 1)
	curr := f.Current()
	for y := 0; y < f.rows; y++ {
		for x := 0; x < f.cols; x++ {
			i := y*f.cols + x
			a := CellAlpha(g.cfg, curr[i], float64(g.radial[i]), fade)
			s.StrokeSquare(float32(float64(x)*size+0.5), float32(float64(y)*size+0.5), side, float32(a))
		}
	}
}
