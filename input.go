package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// pointerState is the pointer as seen by the layers for one tick, in
// logical pixels.
type pointerState struct {
	X, Y    float64
	Inside  bool
	Moved   bool
	Pressed bool
	Down    bool
}

// Engaged reports whether the pointer should disturb the effects this tick:
// any move or press inside the window.
func (p pointerState) Engaged() bool {
	return p.Inside && (p.Moved || p.Pressed)
}

// samplePointer reads the pointer for this tick. Touches win over the
// mouse; the X11 source wins over both when enabled.
func (g *Game) samplePointer() pointerState {
	var (
		x, y     float64
		down, ok bool
	)
	if g.x11 != nil {
		x, y, down, ok = g.x11.Sample(g.dpr)
	} else {
		x, y, down, ok = g.windowPointer()
	}

	prev := g.pointer
	next := pointerState{X: x, Y: y, Down: down}
	if ok {
		next.Inside = x >= 0 && y >= 0 && x < float64(g.width) && y < float64(g.height)
		next.Moved = g.pointerSeen && (x != prev.X || y != prev.Y)
		next.Pressed = down && !prev.Down
		g.pointerSeen = true
	}
	return next
}

// windowPointer reads touches or the cursor. Layout reports a device pixel
// screen, so ebiten positions are scaled back to logical pixels.
func (g *Game) windowPointer() (x, y float64, down, ok bool) {
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	if len(g.touchIDs) > 0 {
		tx, ty := ebiten.TouchPosition(g.touchIDs[0])
		return float64(tx) / g.dpr, float64(ty) / g.dpr, true, true
	}
	cx, cy := ebiten.CursorPosition()
	down = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	return float64(cx) / g.dpr, float64(cy) / g.dpr, down, true
}

// handleDebugControls processes keyboard shortcuts. It reports true when the
// user asked to quit.
func (g *Game) handleDebugControls() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) && g.grid != nil {
		g.grid.grid.Flash().Start(g.clock.Now())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) && g.aurora != nil {
		g.aurora.toggleReducedMotion()
	}
	return false
}
