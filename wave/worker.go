package wave

import (
	"errors"
	"sync"
)

// ErrStepperClosed is returned by a ParallelStepper after Close.
var ErrStepperClosed = errors.New("wave: stepper closed")

// ParallelStepper spreads interior rows round robin across a fixed pool of
// goroutines. StepField returns only after every worker has finished, so the
// field is never touched concurrently with its caller.
type ParallelStepper struct {
	workers int

	mu      sync.Mutex
	cond    *sync.Cond
	step    int
	pending int
	closed  bool
	field   *Field
	params  Params
}

// NewParallelStepper starts workers goroutines (at least one).
func NewParallelStepper(workers int) *ParallelStepper {
	if workers < 1 {
		workers = 1
	}
	s := &ParallelStepper{workers: workers}
	s.cond = sync.NewCond(&s.mu)
	for i := 0; i < workers; i++ {
		go s.loop(i)
	}
	return s
}

// Workers returns the pool size.
func (s *ParallelStepper) Workers() int { return s.workers }

// StepField implements Stepper.
func (s *ParallelStepper) StepField(f *Field, p Params) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStepperClosed
	}
	if f.Len() == 0 {
		s.mu.Unlock()
		return nil
	}
	decayEdges(f, p)
	s.field, s.params = f, p
	s.pending = s.workers
	s.step++
	s.cond.Broadcast()
	for s.pending > 0 {
		s.cond.Wait()
	}
	s.field = nil
	s.mu.Unlock()
	f.Rotate()
	return nil
}

func (s *ParallelStepper) loop(index int) {
	last := 0
	s.mu.Lock()
	for {
		for s.step == last && !s.closed {
			s.cond.Wait()
		}
		if s.step == last {
			s.mu.Unlock()
			return
		}
		last = s.step
		f, p := s.field, s.params
		s.mu.Unlock()

		for y := 1 + index; y < f.rows-1; y += s.workers {
			stepRow(f, p, y)
		}

		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			s.cond.Broadcast()
		}
	}
}

// Close stops the workers once any step in flight completes.
func (s *ParallelStepper) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}
