// Package displace maintains the pointer-driven displacement field: a coarse
// vector field over UV space that decays every frame and collects pushes
// away from the pointer. A shader samples it to warp an image.
package displace

import (
	"fmt"
	"math"
)

// Defaults for the displacement field.
const (
	DefaultSize      = 104
	DefaultDecay     = 0.96
	DefaultRadius    = 0.12
	DefaultAmplitude = 1.0

	// Channels per cell: push X, push Y, reserved, touched.
	Channels = 4

	falloffScale = 0.25

	// Decayed magnitudes below flushBelow are stored as zero so an idle
	// field reaches exactly zero and stops uploading.
	flushBelow = 1e-20
)

// Config holds the field tunables.
type Config struct {
	Size      int
	Decay     float32
	Radius    float64
	Amplitude float64
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Size:      DefaultSize,
		Decay:     DefaultDecay,
		Radius:    DefaultRadius,
		Amplitude: DefaultAmplitude,
	}
}

// Validate reports an unusable configuration.
func (c Config) Validate() error {
	if c.Size < 2 {
		return fmt.Errorf("displacement grid needs at least 2 cells per side, got %d", c.Size)
	}
	if !(c.Decay > 0 && c.Decay < 1) {
		return fmt.Errorf("decay must be in (0, 1), got %g", c.Decay)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("impulse radius must be positive, got %g", c.Radius)
	}
	return nil
}

// Pointer is the pointer state in normalized texture space. V grows upward.
type Pointer struct {
	U, V   float64
	Active bool
}

// Move records a pointer position in container-local pixels and engages the
// pointer. Empty containers are ignored.
func (p *Pointer) Move(x, y, w, h float64) {
	if !(w > 0) || !(h > 0) {
		return
	}
	p.U = x / w
	p.V = 1 - y/h
	p.Active = true
}

// Leave disengages the pointer; the field then only decays.
func (p *Pointer) Leave() { p.Active = false }

// Field is the displacement vector field.
type Field struct {
	cfg   Config
	data  []float32
	dirty bool

	fallback bool
	pix      []byte
}

// NewField validates cfg and allocates a zeroed field.
func NewField(cfg Config) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Field{
		cfg:   cfg,
		data:  make([]float32, cfg.Size*cfg.Size*Channels),
		dirty: true,
	}, nil
}

// Size returns the number of cells per side.
func (f *Field) Size() int { return f.cfg.Size }

// Data exposes the raw channel buffer, Channels values per cell, row-major
// with row 0 at v=0.
func (f *Field) Data() []float32 { return f.data }

// Cell returns the four channels of cell (x, y).
func (f *Field) Cell(x, y int) [Channels]float32 {
	var out [Channels]float32
	copy(out[:], f.data[(y*f.cfg.Size+x)*Channels:])
	return out
}

// Dirty reports whether the field changed since the last upload.
func (f *Field) Dirty() bool { return f.dirty }

// Update runs one frame: every channel decays, then an engaged pointer pushes
// nearby cells away from itself. The field is marked dirty only when a stored
// value changed.
func (f *Field) Update(p Pointer) {
	decay := f.cfg.Decay
	for i, v := range f.data {
		if v == 0 {
			continue
		}
		d := v * decay
		if d > -flushBelow && d < flushBelow {
			d = 0
		}
		if d != v {
			f.data[i] = d
			f.dirty = true
		}
	}
	if !p.Active {
		return
	}

	size := f.cfg.Size
	radius := f.cfg.Radius
	r2 := radius * radius
	sigma := radius * falloffScale
	amp := f.cfg.Amplitude
	inv := 1 / float64(size-1)
	for y := 0; y < size; y++ {
		dy := float64(y)*inv - p.V
		if dy*dy >= r2 {
			continue
		}
		for x := 0; x < size; x++ {
			dx := float64(x)*inv - p.U
			d2 := dx*dx + dy*dy
			if d2 >= r2 {
				continue
			}
			falloff := math.Exp(-d2 / (2 * sigma * sigma))
			idx := (y*size + x) * Channels
			f.data[idx+0] += float32(-dx * amp * falloff)
			f.data[idx+1] += float32(-dy * amp * falloff)
			f.data[idx+2] = 0
			f.data[idx+3] = 1
			f.dirty = true
		}
	}
}

// Close releases the field buffers.
func (f *Field) Close() {
	f.data = nil
	f.pix = nil
	f.dirty = false
}
