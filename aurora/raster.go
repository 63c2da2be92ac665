package aurora

import (
	"image/color"
	"math"

	"backdrop/frame"
)

// Streak across the grid, in view box units.
const (
	streakX0, streakY0 float64 = -200, 900
	streakX1, streakY1 float64 = 1400, -100
	streakStartAlpha   = 0.18
	streakEndAlpha     = 0.02

	// spriteSigmas is how far past the radius a blob sprite extends.
	spriteSigmas = 3
)

// SpriteExtent is the half side, in view units, of the sprite that holds a
// blob of radius r blurred by sigma.
func SpriteExtent(r, sigma float64) float64 {
	return r + spriteSigmas*math.Max(0, sigma)
}

// Sprite rasterises one blob into a size×size premultiplied RGBA buffer. The
// sprite spans SpriteExtent(r, sigma) view units on each side of its centre.
func (b *Background) Sprite(size int, r, sigma float64) []byte {
	pix := make([]byte, 4*size*size)
	if size <= 0 {
		return pix
	}
	unit := SpriteExtent(r, sigma) / (float64(size) / 2)
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c) * unit
			mix, alpha := BlobShade(d, r, sigma)
			putPremultiplied(pix[4*(y*size+x):], frame.Mix(b.light, b.dark, mix), alpha)
		}
	}
	return pix
}

// GridPixels rasterises the masked grid lines and the diagonal streak for a
// w×h pixel target.
func (b *Background) GridPixels(w, h int) []byte {
	pix := make([]byte, 4*w*h)
	if w <= 0 || h <= 0 {
		return pix
	}
	// View units per pixel on each axis.
	ux, uy := ViewWidth/float64(w), ViewHeight/float64(h)
	halfX, halfY := math.Max(0.5, ux/2), math.Max(0.5, uy/2)
	halfStreak := math.Max(0.5, math.Max(ux, uy)/2)
	for y := 0; y < h; y++ {
		vy := (float64(y) + 0.5) * uy
		onRow := lineDistance(vy) <= halfY
		for x := 0; x < w; x++ {
			vx := (float64(x) + 0.5) * ux
			mask := FadeMask((float64(x)+0.5)/float64(w), (float64(y)+0.5)/float64(h))
			if mask <= 0 {
				continue
			}
			var a float64
			if onRow || lineDistance(vx) <= halfX {
				a = b.gridOpacity
			}
			if d, t := streakDistance(vx, vy); d <= halfStreak {
				s := streakStartAlpha + (streakEndAlpha-streakStartAlpha)*t
				a = a + s - a*s
			}
			putPremultiplied(pix[4*(y*w+x):], b.light, a*mask)
		}
	}
	return pix
}

// VignettePixels rasterises the masked black vignette for a w×h target.
func VignettePixels(w, h int) []byte {
	pix := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mask := FadeMask((float64(x)+0.5)/float64(w), (float64(y)+0.5)/float64(h))
			pix[4*(y*w+x)+3] = unitByte(VignetteOpacity * mask)
		}
	}
	return pix
}

// lineDistance is the distance from v to the nearest grid line.
func lineDistance(v float64) float64 {
	m := math.Mod(v, GridSpacing)
	return math.Min(m, GridSpacing-m)
}

// streakDistance returns the distance from (x, y) to the streak line and the
// gradient position there, measured along the streak's bounding box diagonal.
func streakDistance(x, y float64) (d, t float64) {
	dx, dy := streakX1-streakX0, streakY1-streakY0
	length := math.Hypot(dx, dy)
	d = math.Abs(dy*(x-streakX0)-dx*(y-streakY0)) / length

	u := (x - streakX0) / dx
	v := (y - streakY1) / (streakY0 - streakY1)
	t = frame.Clamp((u+v)/2, 0, 1)
	return d, t
}

func putPremultiplied(dst []byte, c color.NRGBA, alpha float64) {
	a := frame.Clamp(alpha, 0, 1) * float64(c.A) / 255
	dst[0] = unitByte(float64(c.R) / 255 * a)
	dst[1] = unitByte(float64(c.G) / 255 * a)
	dst[2] = unitByte(float64(c.B) / 255 * a)
	dst[3] = unitByte(a)
}

func unitByte(v float64) byte {
	return byte(math.Round(255 * frame.Clamp(v, 0, 1)))
}
