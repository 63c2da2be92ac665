package main

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"backdrop/frame"
	"backdrop/framedump"
	"backdrop/settings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
)

// layer is one stacked effect. Sizes are logical pixels; Draw receives the
// device pixel ratio the screen was laid out with.
type layer interface {
	Name() string
	Resize(w, h float64)
	Update(p pointerState, now time.Duration) error
	Draw(screen *ebiten.Image, dpr float64, now time.Duration)
	Close()
}

// Game hosts the stacked layers and the optional extras.
type Game struct {
	clock  *frame.TickClock
	layers []layer

	// Typed views of layers that the host drives directly; nil when absent.
	grid   *gridLayer
	aurora *auroraLayer

	width, height int
	dpr           float64

	pointer     pointerState
	pointerSeen bool
	touchIDs    []ebiten.TouchID
	x11         *x11Pointer

	debug           bool
	lastSimDuration time.Duration
	lastDebugLog    time.Time

	dump   *framedump.Writer
	frames uint64

	audioCtx    *audio.Context
	audioStream *energyHum
	audioPlayer *audio.Player

	closeOnce sync.Once
}

// newGame builds the layers named in cfg.
func newGame(cfg settings.File) (*Game, error) {
	g := &Game{
		clock: frame.NewTickClock(cfg.Window.TPS),
		dpr:   1,
		debug: *debugFlag,
	}
	effects, err := settings.ParseEffects(cfg.Window.Effects)
	if err != nil {
		return nil, err
	}
	for _, name := range effects {
		l, err := g.newLayer(name, cfg)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("creating %s layer: %w", name, err)
		}
		g.layers = append(g.layers, l)
	}

	if *x11PointerFlag {
		if p, err := newX11Pointer(); err != nil {
			log.Printf("X11 pointer unavailable, using window input: %v", err)
		} else {
			g.x11 = p
		}
	}
	if *dumpFlag != "" && g.grid != nil {
		w, err := framedump.Create(*dumpFlag)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("opening frame dump: %w", err)
		}
		g.dump = w
	}
	if *enableAudioFlag && g.grid != nil {
		g.startAudio()
	}
	return g, nil
}

func (g *Game) newLayer(name string, cfg settings.File) (layer, error) {
	switch name {
	case settings.EffectGrid:
		l, err := newGridLayer(cfg)
		if err != nil {
			return nil, err
		}
		g.grid = l
		return l, nil
	case settings.EffectDistort:
		return newDistortLayer(cfg)
	case settings.EffectAurora:
		l, err := newAuroraLayer(cfg)
		if err != nil {
			return nil, err
		}
		g.aurora = l
		return l, nil
	}
	return nil, fmt.Errorf("unknown effect %q", name)
}

func (g *Game) startAudio() {
	ctx := audio.NewContext(audioSampleRate)
	stream := newEnergyHum()
	player, err := ctx.NewPlayer(stream)
	if err != nil {
		log.Printf("Audio player creation failed: %v", err)
		return
	}
	player.SetBufferSize(audioBufferLatency)
	player.Play()
	g.audioCtx, g.audioStream, g.audioPlayer = ctx, stream, player
}

// Update samples input and advances every layer by one tick.
func (g *Game) Update() error {
	if g.handleDebugControls() {
		return ebiten.Termination
	}

	g.clock.Tick()
	now := g.clock.Now()
	g.pointer = g.samplePointer()

	simStart := time.Now()
	for _, l := range g.layers {
		if err := l.Update(g.pointer, now); err != nil {
			return fmt.Errorf("%s: %w", l.Name(), err)
		}
	}
	g.lastSimDuration = time.Since(simStart)
	g.frames++

	if g.grid != nil {
		if g.audioStream != nil {
			g.audioStream.SetEnergy(g.grid.grid.Energy())
		}
		if g.dump != nil {
			f := g.grid.grid.Field()
			if err := g.dump.WriteFrame(g.frames, f.Cols(), f.Rows(), f.Current()); err != nil {
				return err
			}
		}
	}
	if g.debug {
		g.logStats()
	}
	return nil
}

// Layout resizes the layers when the window changes and lays the screen out
// in device pixels so strokes stay crisp on high density displays.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	dpr := frame.ClampDPR(ebiten.Monitor().DeviceScaleFactor())
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		for _, l := range g.layers {
			l.Resize(float64(outsideWidth), float64(outsideHeight))
		}
	}
	g.dpr = dpr
	return int(math.Ceil(float64(outsideWidth) * dpr)), int(math.Ceil(float64(outsideHeight) * dpr))
}

func (g *Game) logStats() {
	now := time.Now()
	if now.Sub(g.lastDebugLog) < debugLogInterval {
		return
	}
	g.lastDebugLog = now
	if g.grid != nil {
		log.Printf("Grid %dx%d energy %.4f flash %s (sim %.2f ms)",
			g.grid.grid.Cols(), g.grid.grid.Rows(), g.grid.grid.Energy(),
			g.grid.grid.Flash().State(), g.lastSimDuration.Seconds()*1000)
	}
}

// Close releases every layer and extra. It is safe to call more than once.
func (g *Game) Close() {
	g.closeOnce.Do(func() {
		for i := len(g.layers) - 1; i >= 0; i-- {
			g.layers[i].Close()
		}
		if g.audioPlayer != nil {
			_ = g.audioPlayer.Close()
		}
		if g.dump != nil {
			if err := g.dump.Close(); err != nil {
				log.Printf("Closing frame dump: %v", err)
			} else {
				log.Printf("Wrote %d frames to %s", g.dump.Frames(), *dumpFlag)
			}
		}
		if g.x11 != nil {
			g.x11.Close()
		}
	})
}
