package main

import (
	"math"
	"sync"
)

// energyHum is a stereo 16-bit PCM stream: a soft sine whose loudness
// follows the wave grid energy.
type energyHum struct {
	mu     sync.Mutex
	target float32
	level  float32
	phase  float64
	step   float64
}

func newEnergyHum() *energyHum {
	return &energyHum{step: 2 * math.Pi * humFrequency / audioSampleRate}
}

// SetEnergy maps a field energy to a target level in [0, 1).
func (s *energyHum) SetEnergy(e float64) {
	v := float32(math.Tanh(e * humEnergyScale))
	s.mu.Lock()
	s.target = v
	s.mu.Unlock()
}

func (s *energyHum) Read(p []byte) (int, error) {
	// Whole stereo frames only (4 bytes per frame).
	frameBytes := len(p) - len(p)%4
	if frameBytes == 0 {
		return 0, nil
	}
	s.mu.Lock()
	target := s.target
	s.mu.Unlock()

	for i := 0; i < frameBytes; i += 4 {
		// One-pole smoothing keeps level changes click free.
		s.level += humSmoothing * (target - s.level)
		v := int16(math.Sin(s.phase) * float64(s.level) * humGain * pcm16MaxValue)
		s.phase += s.step
		if s.phase > 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
		p[i] = byte(v)
		p[i+1] = byte(v >> 8)
		p[i+2] = p[i]
		p[i+3] = p[i+1]
	}
	return frameBytes, nil
}

func (s *energyHum) Close() error {
	return nil
}
