package main

import (
	"time"

	"backdrop/aurora"
	"backdrop/settings"

	"github.com/hajimehoshi/ebiten/v2"
)

// blendScreen is the CSS "screen" blend: 1-(1-src)(1-dst).
var blendScreen = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorOneMinusDestinationColor,
	BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// auroraLayer draws the drifting blobs over the masked grid.
type auroraLayer struct {
	bg      *aurora.Background
	reduced bool

	w, h float64

	// Overlays are rasterised at logical size whenever the viewport changes.
	gridImg     *ebiten.Image
	vignetteImg *ebiten.Image

	sprites     [3]*ebiten.Image
	spritesWide bool
}

func newAuroraLayer(cfg settings.File) (*auroraLayer, error) {
	opts := cfg.AuroraOptions()
	bg, err := aurora.NewBackground(opts)
	if err != nil {
		return nil, err
	}
	return &auroraLayer{bg: bg, reduced: opts.ReducedMotion}, nil
}

func (l *auroraLayer) Name() string { return settings.EffectAurora }

func (l *auroraLayer) toggleReducedMotion() {
	l.reduced = !l.reduced
	l.bg.SetReducedMotion(l.reduced)
}

func (l *auroraLayer) Resize(w, h float64) {
	l.w, l.h = w, h
	l.releaseOverlays()
	pw, ph := int(w), int(h)
	if pw <= 0 || ph <= 0 {
		return
	}
	l.gridImg = ebiten.NewImage(pw, ph)
	l.gridImg.WritePixels(l.bg.GridPixels(pw, ph))
	l.vignetteImg = ebiten.NewImage(pw, ph)
	l.vignetteImg.WritePixels(aurora.VignettePixels(pw, ph))

	wide := w >= aurora.WideViewport
	if l.sprites[0] == nil || wide != l.spritesWide {
		l.buildSprites(w)
		l.spritesWide = wide
	}
}

func (l *auroraLayer) buildSprites(w float64) {
	l.releaseSprites()
	for i := range l.sprites {
		img := ebiten.NewImage(auroraSpriteSize, auroraSpriteSize)
		img.WritePixels(l.bg.Sprite(auroraSpriteSize, aurora.Radius(i, w), l.bg.Blur()))
		l.sprites[i] = img
	}
}

func (l *auroraLayer) Update(pointerState, time.Duration) error { return nil }

func (l *auroraLayer) Draw(screen *ebiten.Image, dpr float64, now time.Duration) {
	if l.gridImg == nil {
		return
	}
	l.drawOverlay(screen, l.gridImg, dpr)

	f := l.bg.Frame(now, l.w, l.h)
	half := float64(auroraSpriteSize) / 2
	for i, blob := range f.Blobs {
		r := aurora.Radius(i, l.w)
		// View units per sprite pixel, then view units to device pixels.
		unit := aurora.SpriteExtent(r, l.bg.Blur()) / half
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-half, -half)
		op.GeoM.Scale(unit*blob.RX/r*dpr, unit*blob.RY/r*dpr)
		op.GeoM.Translate(blob.X*dpr, blob.Y*dpr)
		op.ColorScale.ScaleAlpha(float32(blob.Opacity))
		op.Blend = blendScreen
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(l.sprites[i], op)
	}

	l.drawOverlay(screen, l.vignetteImg, dpr)
}

func (l *auroraLayer) drawOverlay(screen, img *ebiten.Image, dpr float64) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(dpr, dpr)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}

func (l *auroraLayer) releaseOverlays() {
	if l.gridImg != nil {
		l.gridImg.Deallocate()
		l.gridImg = nil
	}
	if l.vignetteImg != nil {
		l.vignetteImg.Deallocate()
		l.vignetteImg = nil
	}
}

func (l *auroraLayer) releaseSprites() {
	for i, img := range l.sprites {
		if img != nil {
			img.Deallocate()
			l.sprites[i] = nil
		}
	}
}

func (l *auroraLayer) Close() {
	l.releaseOverlays()
	l.releaseSprites()
}
