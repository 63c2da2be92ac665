// Package settings reads the optional INI configuration file and turns it
// into validated configurations for each effect.
package settings

import (
	"fmt"
	"strings"
	"time"

	"backdrop/aurora"
	"backdrop/displace"
	"backdrop/wave"

	"gopkg.in/gcfg.v1"
)

const ExampleFile = `[Window]

# Window size in logical (CSS) pixels.
Width = 1280
Height = 800
Title = backdrop

# Comma separated list of effects, bottom first. Any of:
# [ aurora | grid | distort ]
Effects = grid

# Simulation ticks per second.
TPS = 60
# Fullscreen = false

[Grid]

CellSize = 50
BaseAlpha = 0.04
MaxBoost = 0.4
Damping = 0.92
WaveSpeedSq = 0.1
BrushRadius = 28
BrushStrength = 0.25
BoostCurveK = 1.5
StrokeColor = white

[Flash]

# Times in milliseconds.
PeriodMs = 3000
DurationMs = 1200
IdleResumeMs = 1800
Peak = 0.45
Radius = 240
Softness = 0.65

[Distort]

Size = 104
Decay = 0.96
Radius = 0.12
Amplitude = 1
# Fraction of the image a unit push moves a pixel by.
Strength = 0.05
# Image = path/to/logo.png

[Aurora]

Intensity = 1
GridOpacity = 0.12
LightColor = "#DCDCDC"
DarkColor = "#000000"
PeriodSec = 28
# ReducedMotion = false`

// WindowConfig is the [Window] section.
type WindowConfig struct {
	Width, Height int
	Title         string
	Effects       string
	TPS           float64
	Fullscreen    bool
}

// GridConfig is the [Grid] section.
type GridConfig struct {
	CellSize      float64
	BaseAlpha     float64
	MaxBoost      float64
	Damping       float64
	WaveSpeedSq   float64
	BrushRadius   float64
	BrushStrength float64
	BoostCurveK   float64
	StrokeColor   string
}

// FlashConfig is the [Flash] section.
type FlashConfig struct {
	PeriodMs, DurationMs, IdleResumeMs int
	Peak, Radius, Softness             float64
}

// DistortConfig is the [Distort] section.
type DistortConfig struct {
	Size      int
	Decay     float64
	Radius    float64
	Amplitude float64
	Strength  float64
	Image     string
}

// AuroraConfig is the [Aurora] section.
type AuroraConfig struct {
	Intensity     float64
	GridOpacity   float64
	LightColor    string
	DarkColor     string
	PeriodSec     float64
	ReducedMotion bool
}

// File mirrors the layout of the configuration file.
type File struct {
	Window  WindowConfig
	Grid    GridConfig
	Flash   FlashConfig
	Distort DistortConfig
	Aurora  AuroraConfig
}

// Effect names accepted in Window.Effects.
const (
	EffectGrid    = "grid"
	EffectDistort = "distort"
	EffectAurora  = "aurora"
)

const (
	DefaultWidth     = 1280
	DefaultHeight    = 800
	DefaultTitle     = "backdrop"
	DefaultTPS       = 60
	DefaultStroke    = "white"
	DefaultStrength  = 0.05
	maxTPS           = 240
	maxWindowExtent  = 16384
	defaultEffectStr = EffectGrid
)

// Default returns the configuration used when no file is given.
func Default() File {
	wc := wave.DefaultConfig()
	dc := displace.DefaultConfig()
	ao := aurora.DefaultOptions()
	return File{
		Window: WindowConfig{
			Width:   DefaultWidth,
			Height:  DefaultHeight,
			Title:   DefaultTitle,
			Effects: defaultEffectStr,
			TPS:     DefaultTPS,
		},
		Grid: GridConfig{
			CellSize:      wc.CellSize,
			BaseAlpha:     wc.BaseAlpha,
			MaxBoost:      wc.MaxBoost,
			Damping:       wave.DefaultDamping,
			WaveSpeedSq:   wave.DefaultWaveSpeedSq,
			BrushRadius:   wc.BrushRadius,
			BrushStrength: wc.BrushStrength,
			BoostCurveK:   wc.BoostCurveK,
			StrokeColor:   DefaultStroke,
		},
		Flash: FlashConfig{
			PeriodMs:     int(wc.Flash.Period / time.Millisecond),
			DurationMs:   int(wc.Flash.Duration / time.Millisecond),
			IdleResumeMs: int(wc.Flash.IdleResume / time.Millisecond),
			Peak:         wc.Flash.Peak,
			Radius:       wc.Flash.Radius,
			Softness:     wc.Flash.Softness,
		},
		Distort: DistortConfig{
			Size:      dc.Size,
			Decay:     displace.DefaultDecay,
			Radius:    dc.Radius,
			Amplitude: dc.Amplitude,
			Strength:  DefaultStrength,
		},
		Aurora: AuroraConfig{
			Intensity:     ao.Intensity,
			GridOpacity:   ao.GridOpacity,
			LightColor:    ao.LightColor,
			DarkColor:     ao.DarkColor,
			PeriodSec:     ao.Period.Seconds(),
			ReducedMotion: ao.ReducedMotion,
		},
	}
}

// Load reads fname over the defaults and validates the result. Variables
// missing from the file keep their default values.
func Load(fname string) (File, error) {
	f := Default()
	if err := gcfg.ReadFileInto(&f, fname); err != nil {
		return File{}, fmt.Errorf("reading config %s: %w", fname, err)
	}
	if err := f.CheckInit(); err != nil {
		return File{}, fmt.Errorf("config %s: %w", fname, err)
	}
	return f, nil
}

// Parse is Load for in-memory configuration text.
func Parse(text string) (File, error) {
	f := Default()
	if err := gcfg.ReadStringInto(&f, text); err != nil {
		return File{}, err
	}
	if err := f.CheckInit(); err != nil {
		return File{}, err
	}
	return f, nil
}

// CheckInit validates every section.
func (f *File) CheckInit() error {
	if err := f.Window.CheckInit(); err != nil {
		return err
	}
	if _, err := f.WaveConfig(); err != nil {
		return fmt.Errorf("[Grid]/[Flash]: %w", err)
	}
	if _, err := f.DisplaceConfig(); err != nil {
		return fmt.Errorf("[Distort]: %w", err)
	}
	if f.Distort.Strength < 0 {
		return fmt.Errorf("[Distort]: Strength must not be negative, got %g", f.Distort.Strength)
	}
	if _, err := aurora.NewBackground(f.AuroraOptions()); err != nil {
		return fmt.Errorf("[Aurora]: %w", err)
	}
	return nil
}

// CheckInit validates the [Window] section.
func (w *WindowConfig) CheckInit() error {
	if w.Width <= 0 || w.Height <= 0 || w.Width > maxWindowExtent || w.Height > maxWindowExtent {
		return fmt.Errorf("[Window]: size %dx%d out of range", w.Width, w.Height)
	}
	if w.TPS <= 0 || w.TPS > maxTPS {
		return fmt.Errorf("[Window]: TPS must be in (0, %d], got %g", maxTPS, w.TPS)
	}
	if _, err := ParseEffects(w.Effects); err != nil {
		return fmt.Errorf("[Window]: %w", err)
	}
	return nil
}

// ParseEffects splits a comma separated effect list, rejecting unknown and
// repeated names.
func ParseEffects(s string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		switch name {
		case EffectGrid, EffectDistort, EffectAurora:
		default:
			return nil, fmt.Errorf("unknown effect %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("effect %q listed twice", name)
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no effects in %q", s)
	}
	return out, nil
}

// WaveConfig converts the [Grid] and [Flash] sections.
func (f *File) WaveConfig() (wave.Config, error) {
	g, fl := f.Grid, f.Flash
	cfg := wave.Config{
		CellSize:      g.CellSize,
		BaseAlpha:     g.BaseAlpha,
		MaxBoost:      g.MaxBoost,
		Damping:       float32(g.Damping),
		WaveSpeedSq:   float32(g.WaveSpeedSq),
		BrushRadius:   g.BrushRadius,
		BrushStrength: g.BrushStrength,
		BoostCurveK:   g.BoostCurveK,
		Flash: wave.FlashConfig{
			Period:     time.Duration(fl.PeriodMs) * time.Millisecond,
			Duration:   time.Duration(fl.DurationMs) * time.Millisecond,
			IdleResume: time.Duration(fl.IdleResumeMs) * time.Millisecond,
			Peak:       fl.Peak,
			Radius:     fl.Radius,
			Softness:   fl.Softness,
		},
	}
	return cfg, cfg.Validate()
}

// DisplaceConfig converts the [Distort] section.
func (f *File) DisplaceConfig() (displace.Config, error) {
	d := f.Distort
	cfg := displace.Config{
		Size:      d.Size,
		Decay:     float32(d.Decay),
		Radius:    d.Radius,
		Amplitude: d.Amplitude,
	}
	return cfg, cfg.Validate()
}

// AuroraOptions converts the [Aurora] section.
func (f *File) AuroraOptions() aurora.Options {
	a := f.Aurora
	return aurora.Options{
		Intensity:     a.Intensity,
		GridOpacity:   a.GridOpacity,
		ReducedMotion: a.ReducedMotion,
		LightColor:    a.LightColor,
		DarkColor:     a.DarkColor,
		Period:        time.Duration(a.PeriodSec * float64(time.Second)),
	}
}
