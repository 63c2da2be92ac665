package main

import (
	"flag"
	"fmt"
	"time"

	"backdrop/settings"
)

// Host constants that are not worth exposing in the config file.
const (
	audioSampleRate    = 48000
	audioBufferLatency = 80 * time.Millisecond
	humFrequency       = 110.0
	humGain            = 0.2
	humSmoothing       = 0.002
	humEnergyScale     = 0.5
	pcm16MaxValue      = 32767
	auroraSpriteSize   = 256
	debugLogInterval   = 5 * time.Second
)

// loadConfig reads the config file, if any, and applies explicitly set flags
// on top of it.
func loadConfig() (settings.File, error) {
	cfg := settings.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = settings.Load(*configFlag); err != nil {
			return settings.File{}, err
		}
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["effects"] {
		cfg.Window.Effects = *effectsFlag
	}
	if set["width"] {
		cfg.Window.Width = *widthFlag
	}
	if set["height"] {
		cfg.Window.Height = *heightFlag
	}
	if set["fullscreen"] {
		cfg.Window.Fullscreen = *fullscreenFlag
	}
	if set["image"] {
		cfg.Distort.Image = *imageFlag
	}
	if set["reduced-motion"] {
		cfg.Aurora.ReducedMotion = *reducedMotionFlag
	}
	if err := cfg.CheckInit(); err != nil {
		return settings.File{}, fmt.Errorf("after flags: %w", err)
	}
	return cfg, nil
}
