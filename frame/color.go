package frame

import (
	"image/color"
	"math"

	css "github.com/mazznoer/csscolorparser"
)

// ParseColor parses any CSS colour string ("#DCDCDC", "rgb(...)", "white").
func ParseColor(str string) (color.NRGBA, error) {
	c, err := css.Parse(str)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{
		R: unit8(c.R),
		G: unit8(c.G),
		B: unit8(c.B),
		A: unit8(c.A),
	}, nil
}

// Mix linearly interpolates two colours; t=0 yields a, t=1 yields b.
func Mix(a, b color.NRGBA, t float64) color.NRGBA {
	t = Clamp(t, 0, 1)
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

// WithAlpha scales the alpha of c by alpha, clamped to [0, 1]. It reports
// false when the result is fully transparent and drawing can be skipped.
func WithAlpha(c color.NRGBA, alpha float64) (color.NRGBA, bool) {
	c.A = uint8(math.Round(Clamp(alpha, 0, 1) * float64(c.A)))
	return c, c.A != 0
}

func unit8(v float64) uint8 {
	return uint8(math.Round(255 * Clamp(v, 0, 1)))
}
