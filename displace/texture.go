package displace

import (
	"errors"
	"math"
)

// ErrFormatUnsupported is returned by a TextureSink that cannot store the
// requested pixel format.
var ErrFormatUnsupported = errors.New("displace: texture format unsupported")

// TextureSink receives the field as a size×size texture. Float uploads carry
// the raw channel buffer; RGBA8 uploads carry the encoded push vectors.
type TextureSink interface {
	UploadFloat32(size int, data []float32) error
	UploadRGBA8(size int, pix []byte) error
}

// FallbackPixels is the neutral 1×1 texture used when the source image cannot
// be loaded.
var FallbackPixels = []byte{0xff, 0xff, 0xff, 0xff}

// Fallback reports whether uploads have switched to the RGBA8 encoding.
func (f *Field) Fallback() bool { return f.fallback }

// Upload hands the field to sink if it changed. The first float upload
// rejected with ErrFormatUnsupported switches the field to RGBA8 for good.
func (f *Field) Upload(sink TextureSink) error {
	if !f.dirty || f.data == nil {
		return nil
	}
	size := f.cfg.Size
	if !f.fallback {
		err := sink.UploadFloat32(size, f.data)
		if err == nil {
			f.dirty = false
			return nil
		}
		if !errors.Is(err, ErrFormatUnsupported) {
			return err
		}
		f.fallback = true
	}
	if len(f.pix) != size*size*4 {
		f.pix = make([]byte, size*size*4)
	}
	EncodeRGBA8(f.pix, f.data, size)
	if err := sink.UploadRGBA8(size, f.pix); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

// EncodeRGBA8 packs the push vectors into image space: texture row 0 is the
// top of the image (v=1) and green grows downward. Zero encodes as 128.
func EncodeRGBA8(dst []byte, data []float32, size int) {
	for y := 0; y < size; y++ {
		row := (size - 1 - y) * size
		for x := 0; x < size; x++ {
			src := (y*size + x) * Channels
			out := (row + x) * 4
			dst[out+0] = encodeChannel(data[src+0])
			dst[out+1] = encodeChannel(-data[src+1])
			dst[out+2] = 0
			dst[out+3] = 0xff
		}
	}
}

// DecodeChannel inverts the RGBA8 channel encoding.
func DecodeChannel(b byte) float32 {
	return (float32(b) - 128) / 127
}

func encodeChannel(v float32) byte {
	e := math.Round(128 + 127*float64(v))
	if math.IsNaN(e) || e < 0 {
		return 0
	}
	if e > 255 {
		return 255
	}
	return byte(e)
}

// CoverScale returns the per-axis scale that makes an image of iw×ih fill a
// cw×ch container without letterboxing. Unknown image sizes count as 1.
func CoverScale(cw, ch, iw, ih float64) (sx, sy float64) {
	if !(cw > 0) || !(ch > 0) {
		return 1, 1
	}
	if !(iw > 0) {
		iw = 1
	}
	if !(ih > 0) {
		ih = 1
	}
	imgAspect := iw / ih
	viewAspect := cw / ch
	if viewAspect > imgAspect {
		return viewAspect / imgAspect, 1
	}
	return 1, imgAspect / viewAspect
}
