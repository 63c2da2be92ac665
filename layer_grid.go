package main

import (
	"fmt"
	"log"
	"time"

	"backdrop/frame"
	"backdrop/settings"
	"backdrop/wave"

	"github.com/hajimehoshi/ebiten/v2"
)

// gridLayer draws the rippling wave grid.
type gridLayer struct {
	grid    *wave.Grid
	surface ebitenSurface
	release func()
}

func newGridLayer(cfg settings.File) (*gridLayer, error) {
	wc, err := cfg.WaveConfig()
	if err != nil {
		return nil, err
	}
	stroke, err := frame.ParseColor(cfg.Grid.StrokeColor)
	if err != nil {
		return nil, fmt.Errorf("stroke colour: %w", err)
	}
	grid, err := wave.NewGrid(wc)
	if err != nil {
		return nil, err
	}
	l := &gridLayer{grid: grid, surface: ebitenSurface{stroke: stroke}}
	l.release = installStepper(grid)
	grid.Flash().Start(0)
	return l, nil
}

// installStepper picks the solver requested on the command line and returns
// the function that releases it.
func installStepper(grid *wave.Grid) func() {
	if *openCLFlag {
		s, err := newOpenCLStepper()
		if err == nil {
			log.Printf("OpenCL stepper enabled (device: %s)", s.DeviceName())
			grid.SetStepper(s)
			return s.Close
		}
		log.Printf("OpenCL stepper unavailable, stepping on the CPU: %v", err)
	}
	if *workersFlag > 1 {
		s := wave.NewParallelStepper(*workersFlag)
		grid.SetStepper(s)
		return s.Close
	}
	return func() {}
}

func (l *gridLayer) Name() string { return settings.EffectGrid }

func (l *gridLayer) Resize(w, h float64) { l.grid.Resize(w, h) }

func (l *gridLayer) Update(p pointerState, now time.Duration) error {
	if p.Engaged() {
		l.grid.Pointer(p.X, p.Y, now)
	}
	return l.grid.Step()
}

func (l *gridLayer) Draw(screen *ebiten.Image, dpr float64, now time.Duration) {
	l.surface.dst = screen
	l.surface.dpr = float32(dpr)
	l.grid.Render(&l.surface, now)
	l.surface.dst = nil
}

func (l *gridLayer) Close() {
	if l.release != nil {
		l.release()
		l.release = nil
	}
}
