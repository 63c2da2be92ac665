package aurora

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixelAt(pix []byte, w, x, y int) [4]byte {
	i := 4 * (y*w + x)
	return [4]byte{pix[i], pix[i+1], pix[i+2], pix[i+3]}
}

func TestSpriteExtent(t *testing.T) {
	assert.Equal(t, 130.0, SpriteExtent(100, 10))
	assert.Equal(t, 100.0, SpriteExtent(100, -4))
}

func TestSpriteCentreIsLightAndOpaque(t *testing.T) {
	b := newTestBackground(t, nil)
	pix := b.Sprite(64, 100, 0)
	require.Len(t, pix, 64*64*4)

	centre := pixelAt(pix, 64, 32, 32)
	assert.Equal(t, byte(255), centre[3])
	assert.InDelta(t, 220, int(centre[0]), 8)

	assert.Equal(t, [4]byte{}, pixelAt(pix, 64, 0, 0))
}

func TestSpriteBlurSoftensEdge(t *testing.T) {
	b := newTestBackground(t, nil)
	sharp := b.Sprite(64, 100, 0)
	soft := b.Sprite(64, 100, 30)
	// Halfway to the sprite edge along the row through the centre.
	assert.Equal(t, byte(255), pixelAt(sharp, 64, 40, 32)[3])
	assert.Less(t, pixelAt(soft, 64, 40, 32)[3], byte(255))
}

func TestGridPixels(t *testing.T) {
	b := newTestBackground(t, nil)
	pix := b.GridPixels(120, 80)
	require.Len(t, pix, 120*80*4)

	line := pixelAt(pix, 120, 64, 40)
	assert.Greater(t, line[3], byte(0))
	assert.LessOrEqual(t, line[3], byte(31))
	assert.LessOrEqual(t, line[0], line[3])

	assert.Equal(t, [4]byte{}, pixelAt(pix, 120, 62, 42), "between lines")
	assert.Equal(t, [4]byte{}, pixelAt(pix, 120, 0, 0), "masked corner")
	assert.Greater(t, pixelAt(pix, 120, 25, 61)[3], byte(0), "streak")

	none := newTestBackground(t, func(o *Options) { o.GridOpacity = 0 })
	assert.Equal(t, [4]byte{}, pixelAt(none.GridPixels(120, 80), 120, 64, 40))
}

func TestVignettePixels(t *testing.T) {
	pix := VignettePixels(10, 10)
	centre := pixelAt(pix, 10, 5, 5)
	assert.Equal(t, [3]byte{}, [3]byte{centre[0], centre[1], centre[2]})
	assert.InDelta(t, 80, int(centre[3]), 10)
	assert.Equal(t, [4]byte{}, pixelAt(pix, 10, 0, 0))
}

func TestStreakDistance(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		d, t float64
	}{
		// The gradient runs corner to corner of the streak's bounding box, so
		// every point on the streak itself sits halfway along it.
		{"Start", -200, 900, 0, 0.5},
		{"Middle", 600, 400, 0, 0.5},
		{"End", 1400, -100, 0, 0.5},
		{"Origin", 0, 0, 1240000 / math.Hypot(1600, 1000), 0.1125},
		{"Below", 600, 900, 800000 / math.Hypot(1600, 1000), 0.75},
		{"Clamped", -5000, -5000, 14240000 / math.Hypot(1600, 1000), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, pos := streakDistance(tt.x, tt.y)
			assert.InDelta(t, tt.d, d, 1e-9)
			assert.InDelta(t, tt.t, pos, 1e-12)
		})
	}
}
