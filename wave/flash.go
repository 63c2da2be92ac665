package wave

import "time"

// FlashState is the scheduling state of the radial flash.
type FlashState int

const (
	// FlashArmed means periodic flashing is running and no flash is visible.
	FlashArmed FlashState = iota
	// FlashFlashing means periodic flashing is running and a flash is fading.
	FlashFlashing
	// FlashSuppressed means pointer activity paused periodic flashing.
	FlashSuppressed
)

func (s FlashState) String() string {
	switch s {
	case FlashArmed:
		return "armed"
	case FlashFlashing:
		return "flashing"
	case FlashSuppressed:
		return "suppressed"
	}
	return "unknown"
}

// FlashScheduler decides when the radial flash fires. It replaces interval
// and timeout handles with explicit deadlines evaluated on every Advance, so
// there is nothing to cancel on teardown.
type FlashScheduler struct {
	cfg FlashConfig

	state   FlashState
	running bool
	fired   bool

	flashStart time.Duration
	nextFlash  time.Duration
	resumeAt   time.Duration
}

// NewFlashScheduler returns a scheduler that stays dark until Start or the
// first pointer activity.
func NewFlashScheduler(cfg FlashConfig) *FlashScheduler {
	return &FlashScheduler{cfg: cfg}
}

// State reports the current scheduling state.
func (s *FlashScheduler) State() FlashState { return s.state }

// FlashStart returns the start of the most recent flash and whether any flash
// has fired yet.
func (s *FlashScheduler) FlashStart() (time.Duration, bool) { return s.flashStart, s.fired }

// Start fires a flash immediately and arms periodic firing.
func (s *FlashScheduler) Start(now time.Duration) {
	s.running = true
	s.fire(now)
	s.nextFlash = now + s.cfg.Period
	s.state = FlashFlashing
}

// Activity records pointer movement: periodic firing stops and resumes once
// the pointer has been quiet for IdleResume. A flash already fading keeps
// fading.
func (s *FlashScheduler) Activity(now time.Duration) {
	s.running = true
	s.state = FlashSuppressed
	s.resumeAt = now + s.cfg.IdleResume
}

// Advance evaluates deadlines up to now. Missed periods collapse into a single
// flash at the latest deadline.
func (s *FlashScheduler) Advance(now time.Duration) {
	if !s.running {
		return
	}
	if s.state == FlashSuppressed {
		if now < s.resumeAt {
			return
		}
		s.fire(s.resumeAt)
		s.nextFlash = s.resumeAt + s.cfg.Period
	}
	if now >= s.nextFlash {
		missed := (now - s.nextFlash) / s.cfg.Period
		s.fire(s.nextFlash + missed*s.cfg.Period)
		s.nextFlash += (missed + 1) * s.cfg.Period
	}
	if now-s.flashStart < s.cfg.Duration {
		s.state = FlashFlashing
	} else {
		s.state = FlashArmed
	}
}

// Fade returns the ease-out factor (1-t)² of the latest flash, where t is the
// elapsed fraction of its duration. It is 0 before the first flash and once
// the flash has run its course.
func (s *FlashScheduler) Fade(now time.Duration) float64 {
	if !s.fired {
		return 0
	}
	t := float64(now-s.flashStart) / float64(s.cfg.Duration)
	if t < 0 || t >= 1 {
		return 0
	}
	return (1 - t) * (1 - t)
}

func (s *FlashScheduler) fire(at time.Duration) {
	s.flashStart = at
	s.fired = true
}
