// Package termview previews the wave grid in a terminal. Each grid cell
// takes two terminal columns and one row so cells look roughly square.
package termview

import (
	"context"
	"image/color"
	"time"

	"backdrop/frame"
	"backdrop/wave"

	"github.com/gdamore/tcell/v2"
)

const (
	columnsPerCell = 2
	eventBuffer    = 100
	defaultTPS     = 30

	wheelMask = tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight
)

// Surface draws stroked squares into a tcell screen.
type Surface struct {
	screen   tcell.Screen
	cellSize float64
	stroke   color.NRGBA
	bg       color.NRGBA
}

// NewSurface maps grid cells of cellSize pixels onto screen.
func NewSurface(screen tcell.Screen, cellSize float64, stroke color.NRGBA) *Surface {
	return &Surface{
		screen:   screen,
		cellSize: cellSize,
		stroke:   stroke,
		bg:       color.NRGBA{A: 255},
	}
}

// StrokeSquare implements wave.Surface. Brightness follows alpha over a
// black background.
func (s *Surface) StrokeSquare(x, y, size, alpha float32) {
	col := int(float64(x) / s.cellSize)
	row := int(float64(y) / s.cellSize)
	c := frame.Mix(s.bg, s.stroke, float64(alpha))
	style := tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
	tx := col * columnsPerCell
	s.screen.SetContent(tx, row, '[', nil, style)
	s.screen.SetContent(tx+1, row, ']', nil, style)
}

// Options tune a Preview.
type Options struct {
	TPS    float64
	Stroke color.NRGBA
	// OnFrame runs after every rendered frame.
	OnFrame func(index uint64, g *wave.Grid) error
}

// Preview runs the grid against a terminal screen.
type Preview struct {
	screen  tcell.Screen
	grid    *wave.Grid
	clock   *frame.TickClock
	surface *Surface
	opts    Options
	frames  uint64

	// Last mouse report, so only moves and new presses splash.
	mouseX, mouseY int
	buttons        tcell.ButtonMask
	mouseSeen      bool
}

// New binds grid to an initialised screen. The caller keeps ownership of
// the screen and calls Fini once Run returns.
func New(screen tcell.Screen, grid *wave.Grid, opts Options) *Preview {
	if opts.TPS <= 0 {
		opts.TPS = defaultTPS
	}
	if opts.Stroke == (color.NRGBA{}) {
		opts.Stroke = color.NRGBA{255, 255, 255, 255}
	}
	return &Preview{
		screen:  screen,
		grid:    grid,
		clock:   frame.NewTickClock(opts.TPS),
		surface: NewSurface(screen, grid.Config().CellSize, opts.Stroke),
		opts:    opts,
	}
}

// Frames reports how many frames have been rendered.
func (p *Preview) Frames() uint64 { return p.frames }

// Run drives the preview until ctx is cancelled, the user quits, or a frame
// hook fails.
func (p *Preview) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.screen.EnableMouse(tcell.MouseMotionEvents)
	p.screen.HideCursor()
	p.resize()
	p.grid.Flash().Start(p.clock.Now())

	events := make(chan tcell.Event, eventBuffer)
	go p.pump(ctx, events)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / p.opts.TPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !p.handle(ev) {
				return nil
			}
		case <-ticker.C:
			if err := p.tick(); err != nil {
				return err
			}
		}
	}
}

// pump forwards screen events until the screen is finalised or ctx ends.
func (p *Preview) pump(ctx context.Context, events chan<- tcell.Event) {
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Preview) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return false
			}
		}
	case *tcell.EventMouse:
		if p.pointerChanged(ev) {
			px, py := p.CellCentre(p.mouseX, p.mouseY)
			p.grid.Pointer(px, py, p.clock.Now())
		}
	case *tcell.EventResize:
		p.resize()
	}
	return true
}

// pointerChanged records ev and reports whether it is a move or a new button
// press. Wheel events and releases in place are ignored.
func (p *Preview) pointerChanged(ev *tcell.EventMouse) bool {
	buttons := ev.Buttons()
	if buttons&wheelMask != 0 {
		return false
	}
	x, y := ev.Position()
	moved := !p.mouseSeen || x != p.mouseX || y != p.mouseY
	pressed := buttons&^p.buttons != 0
	p.mouseX, p.mouseY, p.buttons, p.mouseSeen = x, y, buttons, true
	return moved || pressed
}

// CellCentre converts a terminal position to the centre of the grid cell
// under it, in grid pixels.
func (p *Preview) CellCentre(x, y int) (float64, float64) {
	s := p.surface.cellSize
	return (float64(x/columnsPerCell) + 0.5) * s, (float64(y) + 0.5) * s
}

func (p *Preview) resize() {
	w, h := p.screen.Size()
	s := p.surface.cellSize
	p.grid.Resize(float64(w/columnsPerCell)*s, float64(h)*s)
	p.screen.Clear()
}

func (p *Preview) tick() error {
	p.clock.Tick()
	if err := p.grid.Step(); err != nil {
		return err
	}
	p.grid.Render(p.surface, p.clock.Now())
	p.screen.Show()
	p.frames++
	if p.opts.OnFrame != nil {
		return p.opts.OnFrame(p.frames, p.grid)
	}
	return nil
}
