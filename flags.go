package main

import "flag"

// Command-line flags. Window and effect flags override the config file when
// set explicitly.
var (
	// configFlag names an optional INI file.
	configFlag = flag.String("config", "", "path to an INI config file (see -print-config)")

	// printConfigFlag writes an example config to stdout and exits.
	printConfigFlag = flag.Bool("print-config", false, "print an example config file and exit")

	// effectsFlag selects the layers to draw, bottom first.
	effectsFlag = flag.String("effects", "", "comma separated effects to stack, bottom first: aurora, grid, distort")

	// imageFlag is the source image warped by the distort effect.
	imageFlag = flag.String("image", "", "image warped by the distort effect (1x1 white when unset or unreadable)")

	widthFlag      = flag.Int("width", 0, "window width in logical pixels")
	heightFlag     = flag.Int("height", 0, "window height in logical pixels")
	fullscreenFlag = flag.Bool("fullscreen", false, "start fullscreen")

	// reducedMotionFlag pauses the aurora drift.
	reducedMotionFlag = flag.Bool("reduced-motion", false, "pause aurora drift")

	// termFlag previews the wave grid in the terminal instead of a window.
	termFlag = flag.Bool("term", false, "preview the wave grid in the terminal")

	// x11PointerFlag reads the global pointer from X11, for wallpaper use
	// where the window never receives input.
	x11PointerFlag = flag.Bool("x11-pointer", false, "track the global X11 pointer instead of window input")

	// openCLFlag steps the wave grid on an OpenCL device (requires -tags opencl).
	openCLFlag = flag.Bool("opencl", false, "step the wave grid with OpenCL")

	// workersFlag spreads CPU wave steps across goroutines.
	workersFlag = flag.Int("workers", 1, "goroutines used to step the wave grid on the CPU")

	// dumpFlag records wave field frames to an lz4 file.
	dumpFlag = flag.String("dump", "", "write wave field frames to this lz4 file")

	// debugFlag enables the FPS and simulation overlay.
	debugFlag = flag.Bool("debug", false, "show FPS and simulation overlay")

	// enableAudioFlag plays a hum that follows the wave energy.
	enableAudioFlag = flag.Bool("enable-audio", false, "play a hum that follows wave energy")

	// cpuProfileFlag writes a CPU profile for the whole session.
	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to this file")
)
