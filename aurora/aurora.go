// Package aurora computes the drifting gradient-blob background: three large
// blurred circles moving on slow keyframe loops over a faint masked grid.
package aurora

import (
	"image/color"
	"math"
	"time"

	"backdrop/frame"
)

// View box the layout is authored in; it is stretched to the viewport
// without preserving aspect ratio.
const (
	ViewWidth  = 1200
	ViewHeight = 800

	// WideViewport is the viewport width at which blobs grow.
	WideViewport = 1280

	DefaultPeriod      = 28 * time.Second
	DefaultIntensity   = 1.0
	DefaultGridOpacity = 0.12
	DefaultLightColor  = "#DCDCDC"
	DefaultDarkColor   = "#000000"

	MaxIntensity   = 1.5
	MaxGridOpacity = 0.4

	GridSpacing     = 40
	blurPerStrength = 60
	VignetteOpacity = 0.35
)

// Keyframe is a translate+scale transform applied about the view box origin.
type Keyframe struct {
	DX, DY, Scale float64
}

// blobSpec describes one blob in view box units.
type blobSpec struct {
	CX, CY      float64
	R, WideR    float64
	Opacity     float64
	Start, Half Keyframe
}

var blobs = [3]blobSpec{
	{CX: 300, CY: 300, R: 220, WideR: 280, Opacity: 0.85,
		Start: Keyframe{-40, 0, 1}, Half: Keyframe{60, -30, 1.08}},
	{CX: 900, CY: 500, R: 260, WideR: 320, Opacity: 0.75,
		Start: Keyframe{30, 20, 1}, Half: Keyframe{-80, -40, 1.12}},
	{CX: 650, CY: 200, R: 200, WideR: 260, Opacity: 0.9,
		Start: Keyframe{0, 0, 1}, Half: Keyframe{40, 50, 0.95}},
}

// Options configure the background.
type Options struct {
	Intensity     float64
	GridOpacity   float64
	ReducedMotion bool
	LightColor    string
	DarkColor     string
	Period        time.Duration
}

// DefaultOptions returns the stock look.
func DefaultOptions() Options {
	return Options{
		Intensity:   DefaultIntensity,
		GridOpacity: DefaultGridOpacity,
		LightColor:  DefaultLightColor,
		DarkColor:   DefaultDarkColor,
		Period:      DefaultPeriod,
	}
}

// Background is a configured aurora.
type Background struct {
	intensity   float64
	gridOpacity float64
	reduced     bool
	light, dark color.NRGBA
	period      time.Duration
}

// NewBackground clamps the strength knobs and parses the colours.
func NewBackground(opts Options) (*Background, error) {
	light, err := frame.ParseColor(opts.LightColor)
	if err != nil {
		return nil, err
	}
	dark, err := frame.ParseColor(opts.DarkColor)
	if err != nil {
		return nil, err
	}
	period := opts.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Background{
		intensity:   frame.Clamp(opts.Intensity, 0, MaxIntensity),
		gridOpacity: frame.Clamp(opts.GridOpacity, 0, MaxGridOpacity),
		reduced:     opts.ReducedMotion,
		light:       light,
		dark:        dark,
		period:      period,
	}, nil
}

// Intensity returns the clamped intensity.
func (b *Background) Intensity() float64 { return b.intensity }

// GridOpacity returns the clamped grid line opacity.
func (b *Background) GridOpacity() float64 { return b.gridOpacity }

// Colors returns the gradient centre and edge colours.
func (b *Background) Colors() (light, dark color.NRGBA) { return b.light, b.dark }

// SetReducedMotion pauses or resumes the drift.
func (b *Background) SetReducedMotion(v bool) { b.reduced = v }

// Blob is a blob placed in viewport pixels. The view box stretch makes it an
// ellipse with radii RX, RY.
type Blob struct {
	X, Y    float64
	RX, RY  float64
	Opacity float64
}

// Frame is everything needed to draw one frame of the background.
type Frame struct {
	Blobs        [3]Blob
	BlurX, BlurY float64
	GridX, GridY float64
	GridOpacity  float64
}

// Phase returns the loop progress in [0, 1) at time t.
func (b *Background) Phase(t time.Duration) float64 {
	if b.reduced || t <= 0 {
		return 0
	}
	return float64(t%b.period) / float64(b.period)
}

// Transform returns the eased keyframe transform for a blob at loop phase p.
// The loop runs Start→Half over the first half and back again over the second.
func Transform(start, half Keyframe, p float64) Keyframe {
	from, to := start, half
	local := p * 2
	if p >= 0.5 {
		from, to = half, start
		local = (p - 0.5) * 2
	}
	e := EaseInOut.Ease(local)
	return Keyframe{
		DX:    from.DX + (to.DX-from.DX)*e,
		DY:    from.DY + (to.DY-from.DY)*e,
		Scale: from.Scale + (to.Scale-from.Scale)*e,
	}
}

// Radius returns blob i's radius in view units for a viewport w pixels wide.
func Radius(i int, w float64) float64 {
	if w >= WideViewport {
		return blobs[i].WideR
	}
	return blobs[i].R
}

// Blur returns the blur sigma in view units.
func (b *Background) Blur() float64 { return blurPerStrength * b.intensity }

// Frame lays the background out for a w×h viewport at time t.
func (b *Background) Frame(t time.Duration, w, h float64) Frame {
	sx, sy := w/ViewWidth, h/ViewHeight
	p := b.Phase(t)
	var out Frame
	for i, spec := range blobs {
		r := Radius(i, w)
		k := Transform(spec.Start, spec.Half, p)
		cx := spec.CX*k.Scale + k.DX
		cy := spec.CY*k.Scale + k.DY
		rr := r * k.Scale
		out.Blobs[i] = Blob{
			X: cx * sx, Y: cy * sy,
			RX: rr * sx, RY: rr * sy,
			Opacity: math.Min(1, spec.Opacity*b.intensity),
		}
	}
	blur := b.Blur()
	out.BlurX, out.BlurY = blur*sx, blur*sy
	out.GridX, out.GridY = GridSpacing*sx, GridSpacing*sy
	out.GridOpacity = b.gridOpacity
	return out
}

// FadeMask evaluates the radial fade mask at normalized viewport coordinates
// (nx, ny). It is 1 at the centre, 0.05 at 90% of its radius and 0 beyond.
func FadeMask(nx, ny float64) float64 {
	d := math.Hypot(nx-0.5, ny-0.5) / 0.6
	switch {
	case d <= 0:
		return 1
	case d < 0.9:
		return 1 + (0.05-1)*(d/0.9)
	case d < 1:
		return 0.05 * (1 - (d-0.9)/0.1)
	}
	return 0
}

// BlobShade returns the gradient mix (0 at the centre, 1 at the edge) and the
// coverage of a blurred blob at distance d from its centre, for radius r and
// blur sigma.
func BlobShade(d, r, sigma float64) (mix, alpha float64) {
	if r <= 0 {
		return 1, 0
	}
	mix = frame.Clamp(d/r, 0, 1)
	if sigma <= 0 {
		if d <= r {
			return mix, 1
		}
		return mix, 0
	}
	alpha = 0.5 * math.Erfc((d-r)/(sigma*math.Sqrt2))
	return mix, alpha
}
