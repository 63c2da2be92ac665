package main

import (
	_ "image/jpeg"
	_ "image/png"
	"log"
	"time"

	"backdrop/assets"
	"backdrop/displace"
	"backdrop/settings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// distortLayer warps a source image by the pointer displacement field.
type distortLayer struct {
	field   *displace.Field
	pointer displace.Pointer

	shader   *ebiten.Shader
	source   *ebiten.Image
	fieldTex *ebiten.Image
	// push is the field upscaled to the source size; Kage needs every input
	// image to match the source.
	push     *ebiten.Image
	strength float32

	w, h float64
}

func newDistortLayer(cfg settings.File) (*distortLayer, error) {
	dc, err := cfg.DisplaceConfig()
	if err != nil {
		return nil, err
	}
	field, err := displace.NewField(dc)
	if err != nil {
		return nil, err
	}
	shader, err := ebiten.NewShader(assets.DistortShader)
	if err != nil {
		field.Close()
		return nil, err
	}
	source := loadSourceImage(cfg.Distort.Image)
	b := source.Bounds()
	l := &distortLayer{
		field:    field,
		shader:   shader,
		source:   source,
		fieldTex: ebiten.NewImage(dc.Size, dc.Size),
		push:     ebiten.NewImage(b.Dx(), b.Dy()),
		strength: float32(cfg.Distort.Strength),
	}
	// A zero field encodes to mid grey; start from that rather than black.
	l.fieldTex.WritePixels(neutralPixels(dc.Size))
	l.refreshPush()
	return l, nil
}

// loadSourceImage reads path, substituting an opaque white pixel when path
// is empty or unreadable.
func loadSourceImage(path string) *ebiten.Image {
	if path != "" {
		img, _, err := ebitenutil.NewImageFromFile(path)
		if err == nil {
			return img
		}
		log.Printf("Loading %s failed, using a blank texture: %v", path, err)
	}
	img := ebiten.NewImage(1, 1)
	img.WritePixels(displace.FallbackPixels)
	return img
}

func neutralPixels(size int) []byte {
	pix := make([]byte, size*size*displace.Channels)
	displace.EncodeRGBA8(pix, make([]float32, size*size*displace.Channels), size)
	return pix
}

func (l *distortLayer) Name() string { return settings.EffectDistort }

func (l *distortLayer) Resize(w, h float64) { l.w, l.h = w, h }

func (l *distortLayer) Update(p pointerState, _ time.Duration) error {
	switch {
	case p.Engaged():
		l.pointer.Move(p.X, p.Y, l.w, l.h)
	case !p.Inside:
		l.pointer.Leave()
	}
	l.field.Update(l.pointer)
	return l.field.Upload(l)
}

// UploadFloat32 implements displace.TextureSink. Ebiten images are 8-bit
// RGBA, so the field always falls back to the byte encoding.
func (l *distortLayer) UploadFloat32(int, []float32) error {
	return displace.ErrFormatUnsupported
}

// UploadRGBA8 implements displace.TextureSink.
func (l *distortLayer) UploadRGBA8(_ int, pix []byte) error {
	l.fieldTex.WritePixels(pix)
	l.refreshPush()
	return nil
}

func (l *distortLayer) refreshPush() {
	fb := l.fieldTex.Bounds()
	pb := l.push.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(pb.Dx())/float64(fb.Dx()), float64(pb.Dy())/float64(fb.Dy()))
	op.Filter = ebiten.FilterLinear
	op.Blend = ebiten.BlendCopy
	l.push.DrawImage(l.fieldTex, op)
}

// coverScale returns the uniform scale that makes an iw×ih image cover the
// viewport, derived from the per-axis cover factors.
func coverScale(w, h, iw, ih float64) float64 {
	sx, sy := displace.CoverScale(w, h, iw, ih)
	if sx > 1 {
		return h / ih * sx
	}
	return w / iw * sy
}

func (l *distortLayer) Draw(screen *ebiten.Image, dpr float64, _ time.Duration) {
	if l.w <= 0 || l.h <= 0 {
		return
	}
	b := l.source.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	s := coverScale(l.w, l.h, iw, ih) * dpr

	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = l.source
	op.Images[1] = l.push
	op.Uniforms = map[string]any{"Strength": l.strength}
	op.GeoM.Translate(-iw/2, -ih/2)
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(l.w*dpr/2, l.h*dpr/2)
	screen.DrawRectShader(b.Dx(), b.Dy(), l.shader, op)
}

func (l *distortLayer) Close() {
	l.field.Close()
	l.shader.Deallocate()
	l.push.Deallocate()
	l.fieldTex.Deallocate()
	l.source.Deallocate()
}
