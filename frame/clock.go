// Package frame holds the render clock and the small numeric helpers shared by
// the simulation packages.
package frame

import "time"

// Clock reports the time elapsed since the render loop started. Every
// simulation reads time through a Clock so it can be driven headlessly.
type Clock interface {
	Now() time.Duration
}

// TickClock advances by a fixed interval each time Tick is called. The host
// calls Tick once per Update, mirroring a display frame callback.
type TickClock struct {
	now      time.Duration
	interval time.Duration
}

// NewTickClock returns a clock advancing 1/tps seconds per tick.
func NewTickClock(tps float64) *TickClock {
	if tps <= 0 {
		tps = 60
	}
	return &TickClock{interval: time.Duration(float64(time.Second) / tps)}
}

// Tick advances the clock by one frame.
func (c *TickClock) Tick() { c.now += c.interval }

// Now implements Clock.
func (c *TickClock) Now() time.Duration { return c.now }

// ManualClock is set explicitly, mostly from tests.
type ManualClock struct {
	T time.Duration
}

// Now implements Clock.
func (c *ManualClock) Now() time.Duration { return c.T }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.T += d }

// WallClock measures real elapsed time from its creation.
type WallClock struct {
	start time.Time
}

// NewWallClock starts a wall clock at the current instant.
func NewWallClock() *WallClock { return &WallClock{start: time.Now()} }

// Now implements Clock.
func (c *WallClock) Now() time.Duration { return time.Since(c.start) }
