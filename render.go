package main

import (
	"fmt"
	"image/color"
	"strings"

	"backdrop/frame"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Draw renders the layers bottom first, then the optional overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	now := g.clock.Now()
	for _, l := range g.layers {
		l.Draw(screen, g.dpr, now)
	}

	if g.debug {
		ebitenutil.DebugPrint(screen, g.debugText())
	}
}

func (g *Game) debugText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FPS: %.1f  TPS: %.1f\n", ebiten.ActualFPS(), ebiten.ActualTPS())
	fmt.Fprintf(&b, "Viewport: %dx%d @%.2fx\n", g.width, g.height, g.dpr)
	fmt.Fprintf(&b, "Sim: %.2f ms\n", g.lastSimDuration.Seconds()*1000)
	if g.grid != nil {
		grid := g.grid.grid
		fmt.Fprintf(&b, "Grid: %dx%d energy %.4f\nFlash: %s (F to fire)\n",
			grid.Cols(), grid.Rows(), grid.Energy(), grid.Flash().State())
	}
	if g.aurora != nil {
		fmt.Fprintf(&b, "Aurora: intensity %.2f (M toggles motion)\n", g.aurora.bg.Intensity())
	}
	if g.x11 != nil {
		b.WriteString("Pointer: X11\n")
	}
	return b.String()
}

// ebitenSurface strokes grid cells onto an ebiten image.
type ebitenSurface struct {
	dst    *ebiten.Image
	dpr    float32
	stroke color.NRGBA
}

// StrokeSquare implements wave.Surface. Coordinates arrive in logical
// pixels; the stroke stays one logical pixel wide.
func (s *ebitenSurface) StrokeSquare(x, y, size, alpha float32) {
	c, ok := frame.WithAlpha(s.stroke, float64(alpha))
	if !ok {
		return
	}
	d := s.dpr
	vector.StrokeRect(s.dst, x*d, y*d, size*d, size*d, d, c, false)
}
