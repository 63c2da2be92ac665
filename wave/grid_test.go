package wave

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stroke struct {
	x, y, size, alpha float32
}

type recordingSurface struct {
	strokes []stroke
}

func (r *recordingSurface) StrokeSquare(x, y, size, alpha float32) {
	r.strokes = append(r.strokes, stroke{x, y, size, alpha})
}

func newTestGrid(t *testing.T, mutate func(*Config)) *Grid {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	g, err := NewGrid(cfg)
	require.NoError(t, err)
	return g
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Defaults", func(*Config) {}, false},
		{"Zero cell size", func(c *Config) { c.CellSize = 0 }, true},
		{"Damping one", func(c *Config) { c.Damping = 1 }, true},
		{"Damping above one", func(c *Config) { c.Damping = 1.01 }, true},
		{"Damping zero", func(c *Config) { c.Damping = 0 }, true},
		{"Unstable speed", func(c *Config) { c.WaveSpeedSq = 0.9 }, true},
		{"No flash period", func(c *Config) { c.Flash.Period = 0 }, true},
		{"No flash duration", func(c *Config) { c.Flash.Duration = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name       string
		w, h, cell float64
		cols, rows int
	}{
		{"Exact", 800, 600, 50, 16, 12},
		{"Partial cells round up", 801, 601, 50, 17, 13},
		{"Smaller than a cell", 10, 10, 50, 1, 1},
		{"Zero width", 0, 600, 50, 0, 0},
		{"Zero height", 800, 0, 50, 0, 0},
		{"Negative", -20, 600, 50, 0, 0},
		{"NaN", math.NaN(), 600, 50, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := Dimensions(tt.w, tt.h, tt.cell)
			assert.Equal(t, tt.cols, cols)
			assert.Equal(t, tt.rows, rows)
		})
	}
}

func TestResizeAllocatesZeroedBuffers(t *testing.T) {
	g := newTestGrid(t, nil)
	g.Resize(800, 600)
	require.Equal(t, 16, g.Cols())
	require.Equal(t, 12, g.Rows())

	g.Splash(425, 325, 5)
	require.NoError(t, g.Step())
	require.NotZero(t, g.Energy())

	g.Resize(1000, 500)
	assert.Equal(t, 20, g.Cols())
	assert.Equal(t, 10, g.Rows())
	f := g.Field()
	for _, buf := range [][]float32{f.Previous(), f.Current(), f.Next()} {
		assert.Len(t, buf, 200)
		for _, v := range buf {
			assert.Zero(t, v)
		}
	}
}

func TestInitialAlphaIsBase(t *testing.T) {
	g := newTestGrid(t, nil)
	g.Resize(800, 600)
	f := g.Field()
	assert.Equal(t, 192, f.Len())
	assert.Len(t, f.Current(), 192)
	assert.Len(t, f.Previous(), 192)
	assert.Len(t, f.Next(), 192)

	surface := &recordingSurface{}
	g.Render(surface, 0)
	require.Len(t, surface.strokes, 192)
	for i := 0; i < f.Len(); i++ {
		assert.Equal(t, DefaultBaseAlpha, g.Alpha(i, 0))
	}
	for _, s := range surface.strokes {
		assert.Equal(t, float32(DefaultBaseAlpha), s.alpha)
		assert.Equal(t, float32(49), s.size)
	}
	assert.Equal(t, stroke{0.5, 0.5, 49, float32(DefaultBaseAlpha)}, surface.strokes[0])
	assert.Equal(t, float32(50.5), surface.strokes[1].x)
}

func TestEmptyGridSkipsWork(t *testing.T) {
	g := newTestGrid(t, nil)
	g.Resize(0, 0)
	assert.True(t, g.Empty())
	assert.NoError(t, g.Step())
	g.Pointer(10, 10, 0)
	surface := &recordingSurface{}
	g.Render(surface, time.Second)
	assert.Empty(t, surface.strokes)
}

func TestSplashIsRadiallySymmetric(t *testing.T) {
	g := newTestGrid(t, func(c *Config) {
		c.CellSize = 10
		c.BrushRadius = 35
	})
	g.Resize(210, 210)
	// Centre of cell (10, 10).
	g.Splash(105, 105, 1)

	f := g.Field()
	sigma := 35 * brushSigmaScale
	for y := 0; y < f.Rows(); y++ {
		for x := 0; x < f.Cols(); x++ {
			dx, dy := float64(x-10)*10, float64(y-10)*10
			d2 := dx*dx + dy*dy
			v := f.At(x, y)
			if d2 > 35*35 {
				assert.Zero(t, v, "cell (%d,%d) outside brush", x, y)
				continue
			}
			assert.InDelta(t, math.Exp(-d2/(2*sigma*sigma)), float64(v), 1e-6)
			assert.Equal(t, v, f.At(20-x, y))
			assert.Equal(t, v, f.At(x, 20-y))
			assert.Equal(t, v, f.At(y, x))
		}
	}
	assert.Equal(t, float32(1), f.At(10, 10))
}

func TestStepKeepsSymmetry(t *testing.T) {
	g := newTestGrid(t, func(c *Config) {
		c.CellSize = 10
		c.BrushRadius = 35
	})
	g.Resize(210, 210)
	g.Splash(105, 105, 1)
	for i := 0; i < 15; i++ {
		require.NoError(t, g.Step())
	}
	f := g.Field()
	for y := 0; y < f.Rows(); y++ {
		for x := 0; x < f.Cols(); x++ {
			v := float64(f.At(x, y))
			assert.InDelta(t, v, float64(f.At(20-x, y)), 1e-5)
			assert.InDelta(t, v, float64(f.At(y, x)), 1e-5)
		}
	}
}

func TestStepMatchesUpdateRule(t *testing.T) {
	g := newTestGrid(t, nil)
	g.Resize(250, 250)
	f := g.Field()
	f.Current()[f.Index(2, 2)] = 1

	require.NoError(t, g.Step())
	d, c2 := float32(DefaultDamping), float32(DefaultWaveSpeedSq)
	assert.InDelta(t, d*(2+c2*-4), f.At(2, 2), 1e-6)
	assert.InDelta(t, d*c2, f.At(1, 2), 1e-6)
	assert.InDelta(t, d*c2, f.At(2, 3), 1e-6)
	assert.Zero(t, f.At(1, 1))
	assert.Equal(t, float32(1), f.Previous()[f.Index(2, 2)])
}

func TestBoundaryCellsOnlyDecay(t *testing.T) {
	g := newTestGrid(t, nil)
	g.Resize(250, 250)
	f := g.Field()
	f.Current()[f.Index(0, 2)] = 1

	require.NoError(t, g.Step())
	assert.InDelta(t, DefaultDamping, f.At(0, 2), 1e-6)
	// The interior neighbour still feels the boundary value.
	assert.InDelta(t, DefaultDamping*DefaultWaveSpeedSq, f.At(1, 2), 1e-6)
	assert.Zero(t, f.At(0, 1))
}

func TestEnergyDecaysWithoutImpulses(t *testing.T) {
	for _, damping := range []float32{0.5, 0.92, 0.99} {
		g := newTestGrid(t, func(c *Config) {
			c.CellSize = 10
			c.BrushRadius = 35
			c.Damping = damping
		})
		g.Resize(200, 200)
		g.Splash(100, 100, 1)
		g.Splash(40, 150, 2)
		require.NotZero(t, g.Energy())

		// Leapfrog energy oscillates frame to frame, so compare averages over
		// windows spanning several periods of the slowest mode.
		const window = 100
		var prevMean, sum float64
		for step := 1; step <= 6000; step++ {
			require.NoError(t, g.Step())
			sum += g.Energy()
			if step%window == 0 {
				mean := sum / window
				if step > window {
					assert.LessOrEqual(t, mean, prevMean, "damping %g step %d", damping, step)
				}
				prevMean, sum = mean, 0
			}
		}
		assert.Less(t, g.Energy(), 1e-12, "damping %g", damping)
	}
}

func TestFieldSettlesToExactZero(t *testing.T) {
	tests := []struct {
		name    string
		damping float32
		stepper func() Stepper
	}{
		{"Default damping", DefaultDamping, func() Stepper { return CPUStepper{} }},
		{"Slow damping", 0.99, func() Stepper { return CPUStepper{} }},
		{"Parallel", DefaultDamping, func() Stepper { return NewParallelStepper(3) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t, func(c *Config) {
				c.CellSize = 10
				c.Damping = tt.damping
			})
			s := tt.stepper()
			if c, ok := s.(*ParallelStepper); ok {
				defer c.Close()
			}
			g.SetStepper(s)
			g.Resize(200, 200)
			g.Splash(100, 100, 1)
			g.Splash(40, 150, 2)
			require.NotZero(t, g.Energy())

			for i := 0; i < 20000; i++ {
				require.NoError(t, g.Step())
			}
			assert.Zero(t, g.Energy())
			f := g.Field()
			for i, v := range f.Current() {
				require.Zero(t, v, "cell %d", i)
			}
			for i, v := range f.Previous() {
				require.Zero(t, v, "previous cell %d", i)
			}
		})
	}
}

func TestFlushTinyValues(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"Zero", 0, 0},
		{"Subnormal", 1.3e-44, 0},
		{"Negative subnormal", -9.2e-44, 0},
		{"Below threshold", 9e-21, 0},
		{"At threshold", 1e-20, 1e-20},
		{"Small normal", -1e-6, -1e-6},
		{"One", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flush(tt.in))
		})
	}
}

func TestAlphaIsClamped(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name   string
		u      float32
		radial float64
		fade   float64
	}{
		{"Huge positive", 1e30, 1, 1},
		{"Huge negative", -1e30, 1, 1},
		{"Infinite", float32(math.Inf(1)), 1, 1},
		{"NaN", float32(math.NaN()), 1, 1},
		{"Quiet", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := CellAlpha(cfg, tt.u, tt.radial, tt.fade)
			assert.GreaterOrEqual(t, a, 0.0)
			assert.LessOrEqual(t, a, 1.0)
		})
	}

	cfg.BaseAlpha = 0.9
	assert.Equal(t, 1.0, CellAlpha(cfg, 100, 1, 1))
}

func TestSpeedFactor(t *testing.T) {
	assert.Equal(t, 0.5, SpeedFactor(0))
	assert.Equal(t, 1.5, SpeedFactor(18))
	assert.Equal(t, 2.0, SpeedFactor(27))
	assert.Equal(t, 2.0, SpeedFactor(500))
}

func TestPointerStrengthFollowsSpeed(t *testing.T) {
	g := newTestGrid(t, nil)
	g.Resize(800, 600)
	f := g.Field()

	// First event: unit speed, cell centre hit exactly.
	g.Pointer(25, 25, 0)
	assert.InDelta(t, DefaultBrushStrength, f.At(0, 0), 1e-6)

	// Stationary repeat: speed floor applies.
	g.Pointer(25, 25, 0)
	assert.InDelta(t, DefaultBrushStrength*1.5, f.At(0, 0), 1e-6)

	// Fast move to another cell centre clamps at 2x.
	g.Pointer(525, 325, 0)
	assert.InDelta(t, DefaultBrushStrength*2, f.At(10, 6), 1e-6)
	assert.Equal(t, FlashSuppressed, g.Flash().State())
}

func TestRenderIncludesFlash(t *testing.T) {
	g := newTestGrid(t, nil)
	g.Resize(800, 600)
	g.Flash().Start(0)

	surface := &recordingSurface{}
	g.Render(surface, 600*time.Millisecond)
	var peak float32
	for _, s := range surface.strokes {
		assert.GreaterOrEqual(t, s.alpha, float32(DefaultBaseAlpha))
		if s.alpha > peak {
			peak = s.alpha
		}
	}
	// Centre cells sit 25px from the middle of the viewport.
	sigma := DefaultFlashRadius * DefaultFlashSoftness
	want := DefaultBaseAlpha + DefaultFlashPeak*0.25*math.Exp(-(25*25*2)/(2*sigma*sigma))
	assert.InDelta(t, want, float64(peak), 1e-6)
}
