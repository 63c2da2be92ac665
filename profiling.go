package main

import (
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"sync"
)

// startCPUProfile writes a CPU profile of the session to path. The returned
// stop function flushes the profile and may be called more than once.
func startCPUProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("starting profile: %w", err)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			pprof.StopCPUProfile()
			if err := f.Close(); err != nil {
				log.Printf("Closing CPU profile: %v", err)
			}
		})
	}, nil
}
