package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"backdrop/frame"
	"backdrop/framedump"
	"backdrop/settings"
	"backdrop/termview"
	"backdrop/wave"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"
)

func main() {
	flag.Parse()

	if *printConfigFlag {
		fmt.Println(settings.ExampleFile)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if *cpuProfileFlag != "" {
		stop, err := startCPUProfile(*cpuProfileFlag)
		if err != nil {
			log.Fatalf("Failed to start CPU profile: %v", err)
		}
		defer stop()
		log.Printf("Writing CPU profile to %s", *cpuProfileFlag)
	}

	if *termFlag {
		if err := runTerminal(cfg); err != nil {
			log.Fatalf("Terminal preview failed: %v", err)
		}
		return
	}

	game, err := newGame(cfg)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}
	defer game.Close()

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)
	ebiten.SetTPS(int(cfg.Window.TPS))
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		game.Close()
		log.Fatal(err)
	}
}

// runTerminal previews the wave grid in the terminal until the user quits.
func runTerminal(cfg settings.File) error {
	wc, err := cfg.WaveConfig()
	if err != nil {
		return err
	}
	grid, err := wave.NewGrid(wc)
	if err != nil {
		return err
	}
	defer installStepper(grid)()
	stroke, err := frame.ParseColor(cfg.Grid.StrokeColor)
	if err != nil {
		return fmt.Errorf("stroke colour: %w", err)
	}

	opts := termview.Options{TPS: cfg.Window.TPS, Stroke: stroke}
	if *dumpFlag != "" {
		dump, err := framedump.Create(*dumpFlag)
		if err != nil {
			return fmt.Errorf("opening frame dump: %w", err)
		}
		defer func() {
			if err := dump.Close(); err != nil {
				log.Printf("Closing frame dump: %v", err)
			}
		}()
		opts.OnFrame = func(index uint64, g *wave.Grid) error {
			f := g.Field()
			return dump.WriteFrame(index, f.Cols(), f.Rows(), f.Current())
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return termview.New(screen, grid, opts).Run(ctx)
}
