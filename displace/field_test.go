package displace

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	floatErr  error
	floats    int
	bytes     int
	lastPix   []byte
	lastFloat []float32
}

func (s *recordingSink) UploadFloat32(size int, data []float32) error {
	if s.floatErr != nil {
		return s.floatErr
	}
	s.floats++
	s.lastFloat = append(s.lastFloat[:0], data...)
	return nil
}

func (s *recordingSink) UploadRGBA8(size int, pix []byte) error {
	s.bytes++
	s.lastPix = append(s.lastPix[:0], pix...)
	return nil
}

func newTestField(t *testing.T) *Field {
	t.Helper()
	f, err := NewField(DefaultConfig())
	require.NoError(t, err)
	return f
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Defaults", func(*Config) {}, false},
		{"Single cell", func(c *Config) { c.Size = 1 }, true},
		{"No decay", func(c *Config) { c.Decay = 1 }, true},
		{"Negative decay", func(c *Config) { c.Decay = -0.5 }, true},
		{"Zero radius", func(c *Config) { c.Radius = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewField(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFieldLength(t *testing.T) {
	f := newTestField(t)
	assert.Len(t, f.Data(), 104*104*4)
	assert.Equal(t, 104, f.Size())
}

func TestImpulseStaysInsideRadius(t *testing.T) {
	f := newTestField(t)
	f.Update(Pointer{U: 0.5, V: 0.5, Active: true})

	inv := 1.0 / 103
	touched := 0
	for y := 0; y < f.Size(); y++ {
		for x := 0; x < f.Size(); x++ {
			cell := f.Cell(x, y)
			dx, dy := float64(x)*inv-0.5, float64(y)*inv-0.5
			if dx*dx+dy*dy >= DefaultRadius*DefaultRadius {
				assert.Equal(t, [Channels]float32{}, cell, "cell (%d,%d) outside radius", x, y)
				continue
			}
			touched++
			assert.Equal(t, float32(1), cell[3])
			assert.Zero(t, cell[2])
			// Pushes point away from the pointer.
			if dx > 0 {
				assert.Less(t, cell[0], float32(0))
			}
			if dy < 0 {
				assert.Greater(t, cell[1], float32(0))
			}
		}
	}
	assert.Greater(t, touched, 100)
}

func TestImpulseFalloff(t *testing.T) {
	f := newTestField(t)
	// Pointer sits exactly on grid node (52, 40) along v.
	u := 52.0 / 103
	f.Update(Pointer{U: u, V: 40.0 / 103, Active: true})
	cell := f.Cell(55, 40)
	dx := 55.0/103 - u
	sigma := DefaultRadius * falloffScale
	want := -dx * DefaultAmplitude * math.Exp(-dx*dx/(2*sigma*sigma))
	assert.InDelta(t, want, float64(cell[0]), 1e-7)
	assert.InDelta(t, 0, float64(cell[1]), 1e-7)
}

func TestDecayWithoutPointer(t *testing.T) {
	f := newTestField(t)
	f.Update(Pointer{U: 0.3, V: 0.6, Active: true})
	initial := append([]float32(nil), f.Data()...)

	const frames = 50
	prev := initial
	for n := 1; n <= frames; n++ {
		f.Update(Pointer{U: 0.3, V: 0.6})
		cur := f.Data()
		for i, v := range cur {
			assert.LessOrEqual(t, math.Abs(float64(v)), math.Abs(float64(prev[i])))
		}
		prev = append([]float32(nil), cur...)
	}
	factor := math.Pow(DefaultDecay, frames)
	for i, v := range f.Data() {
		if initial[i] == 0 {
			assert.Zero(t, v)
			continue
		}
		assert.InEpsilon(t, float64(initial[i])*factor, float64(v), 1e-5)
	}
}

func TestPointerMoveAndLeave(t *testing.T) {
	var p Pointer
	p.Move(200, 150, 800, 600)
	assert.InDelta(t, 0.25, p.U, 1e-12)
	assert.InDelta(t, 0.75, p.V, 1e-12)
	assert.True(t, p.Active)

	p.Leave()
	assert.False(t, p.Active)

	p.Move(10, 10, 0, 600)
	assert.False(t, p.Active)
}

func TestUploadOnlyWhenChanged(t *testing.T) {
	f := newTestField(t)
	sink := &recordingSink{}
	require.NoError(t, f.Upload(sink))
	assert.Equal(t, 1, sink.floats)

	// Nothing moved and the field is still zero.
	f.Update(Pointer{})
	require.NoError(t, f.Upload(sink))
	assert.Equal(t, 1, sink.floats)

	f.Update(Pointer{U: 0.5, V: 0.5, Active: true})
	require.NoError(t, f.Upload(sink))
	assert.Equal(t, 2, sink.floats)
	assert.Equal(t, f.Data(), sink.lastFloat)

	// Decay alone still changes the texture.
	f.Update(Pointer{})
	assert.True(t, f.Dirty())
}

func TestIdleFieldSettles(t *testing.T) {
	tests := []struct {
		name  string
		decay float32
	}{
		{"Default decay", DefaultDecay},
		{"Slow decay", 0.99},
		{"Fast decay", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Decay = tt.decay
			f, err := NewField(cfg)
			require.NoError(t, err)
			sink := &recordingSink{}
			f.Update(Pointer{U: 0.5, V: 0.5, Active: true})
			require.NoError(t, f.Upload(sink))

			settled := false
			for frame := 0; frame < 20000 && !settled; frame++ {
				f.Update(Pointer{})
				settled = !f.Dirty()
				require.NoError(t, f.Upload(sink))
			}
			require.True(t, settled, "field never settled")
			assert.False(t, f.Dirty())
			for i, v := range f.Data() {
				require.Zero(t, v, "channel %d", i)
			}

			// Once settled, idle frames upload nothing.
			uploads := sink.floats
			for i := 0; i < 100; i++ {
				f.Update(Pointer{})
				require.NoError(t, f.Upload(sink))
			}
			assert.Equal(t, uploads, sink.floats)
		})
	}
}

func TestUploadFallsBackToRGBA8(t *testing.T) {
	f := newTestField(t)
	sink := &recordingSink{floatErr: ErrFormatUnsupported}
	f.Update(Pointer{U: 0.5, V: 0.5, Active: true})
	require.NoError(t, f.Upload(sink))
	assert.True(t, f.Fallback())
	assert.Equal(t, 1, sink.bytes)
	assert.Len(t, sink.lastPix, 104*104*4)

	// Later uploads go straight to RGBA8.
	sink.floatErr = nil
	f.Update(Pointer{U: 0.5, V: 0.5, Active: true})
	require.NoError(t, f.Upload(sink))
	assert.Equal(t, 0, sink.floats)
	assert.Equal(t, 2, sink.bytes)
}

func TestUploadPropagatesOtherErrors(t *testing.T) {
	f := newTestField(t)
	boom := errors.New("device lost")
	err := f.Upload(&recordingSink{floatErr: boom})
	assert.True(t, errors.Is(err, boom))
	assert.False(t, f.Fallback())
}

func TestEncodeRGBA8(t *testing.T) {
	const size = 2
	data := make([]float32, size*size*Channels)
	// Cell (1, 0): bottom-right in image space.
	data[(0*size+1)*Channels+0] = 0.5
	data[(0*size+1)*Channels+1] = 0.5
	// Cell (0, 1): top-left, saturating.
	data[(1*size+0)*Channels+0] = -3
	data[(1*size+0)*Channels+1] = 3

	pix := make([]byte, size*size*4)
	EncodeRGBA8(pix, data, size)

	topLeft := pix[0:4]
	assert.Equal(t, []byte{0, 0, 0, 0xff}, topLeft)
	topRight := pix[4:8]
	assert.Equal(t, []byte{128, 128, 0, 0xff}, topRight)
	bottomRight := pix[12:16]
	assert.Equal(t, []byte{192, 65, 0, 0xff}, bottomRight)

	assert.InDelta(t, 0.5, DecodeChannel(192), 0.01)
	assert.Zero(t, DecodeChannel(128))
}

func TestCoverScale(t *testing.T) {
	tests := []struct {
		name           string
		cw, ch, iw, ih float64
		sx, sy         float64
	}{
		{"Wide container", 1600, 800, 1000, 1000, 2, 1},
		{"Tall container", 800, 1600, 1000, 1000, 1, 2},
		{"Same aspect", 1920, 1080, 1280, 720, 1, 1},
		{"Unknown image", 400, 200, 0, 0, 2, 1},
		{"Empty container", 0, 200, 100, 100, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := CoverScale(tt.cw, tt.ch, tt.iw, tt.ih)
			assert.InDelta(t, tt.sx, sx, 1e-12)
			assert.InDelta(t, tt.sy, sy, 1e-12)
		})
	}
}

func TestCloseReleasesBuffers(t *testing.T) {
	f := newTestField(t)
	f.Close()
	assert.Nil(t, f.Data())
	assert.NoError(t, f.Upload(&recordingSink{}))
}
