package wave

import (
	"errors"
	"fmt"
	"time"
)

// Default tunables for the wave grid.
const (
	DefaultCellSize      = 50
	DefaultBaseAlpha     = 0.04
	DefaultMaxBoost      = 0.4
	DefaultDamping       = 0.92
	DefaultWaveSpeedSq   = 0.1
	DefaultBrushRadius   = 28
	DefaultBrushStrength = 0.25
	DefaultBoostCurveK   = 1.5

	DefaultFlashPeriod     = 3000 * time.Millisecond
	DefaultFlashDuration   = 1200 * time.Millisecond
	DefaultFlashIdleResume = 1800 * time.Millisecond
	DefaultFlashPeak       = 0.45
	DefaultFlashRadius     = 240
	DefaultFlashSoftness   = 0.65

	// brushSigmaScale sets the Gaussian width of a splash relative to its radius.
	brushSigmaScale = 0.6
	// speedDivisor and speedFloor map pointer travel (px) to a strength factor.
	speedDivisor = 18
	speedFloor   = 0.5
	speedCeil    = 2.0
)

// Config holds every tunable of the wave grid.
type Config struct {
	CellSize      float64
	BaseAlpha     float64
	MaxBoost      float64
	Damping       float32
	WaveSpeedSq   float32
	BrushRadius   float64
	BrushStrength float64
	BoostCurveK   float64
	Flash         FlashConfig
}

// FlashConfig controls the periodic radial pulse from the viewport centre.
type FlashConfig struct {
	Period     time.Duration
	Duration   time.Duration
	IdleResume time.Duration
	Peak       float64
	Radius     float64
	Softness   float64
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		CellSize:      DefaultCellSize,
		BaseAlpha:     DefaultBaseAlpha,
		MaxBoost:      DefaultMaxBoost,
		Damping:       DefaultDamping,
		WaveSpeedSq:   DefaultWaveSpeedSq,
		BrushRadius:   DefaultBrushRadius,
		BrushStrength: DefaultBrushStrength,
		BoostCurveK:   DefaultBoostCurveK,
		Flash: FlashConfig{
			Period:     DefaultFlashPeriod,
			Duration:   DefaultFlashDuration,
			IdleResume: DefaultFlashIdleResume,
			Peak:       DefaultFlashPeak,
			Radius:     DefaultFlashRadius,
			Softness:   DefaultFlashSoftness,
		},
	}
}

// Validate reports the first tunable that would make the grid unusable or
// unstable.
func (c Config) Validate() error {
	if c.CellSize <= 0 {
		return fmt.Errorf("cell size must be positive, got %g", c.CellSize)
	}
	if !(c.Damping > 0 && c.Damping < 1) {
		return fmt.Errorf("damping must be in (0, 1), got %g", c.Damping)
	}
	// Above 0.5 the explicit scheme leaves its stable region.
	if c.WaveSpeedSq < 0 || c.WaveSpeedSq > 0.5 {
		return fmt.Errorf("wave speed squared must be in [0, 0.5], got %g", c.WaveSpeedSq)
	}
	if c.BrushRadius < 0 {
		return fmt.Errorf("brush radius must not be negative, got %g", c.BrushRadius)
	}
	if c.BaseAlpha < 0 || c.BaseAlpha > 1 {
		return fmt.Errorf("base alpha must be in [0, 1], got %g", c.BaseAlpha)
	}
	return c.Flash.Validate()
}

// Validate checks the flash timing.
func (c FlashConfig) Validate() error {
	if c.Period <= 0 {
		return errors.New("flash period must be positive")
	}
	if c.Duration <= 0 {
		return errors.New("flash duration must be positive")
	}
	if c.IdleResume < 0 {
		return errors.New("flash idle resume must not be negative")
	}
	return nil
}
