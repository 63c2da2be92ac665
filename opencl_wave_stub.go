//go:build !opencl

package main

import (
	"errors"

	"backdrop/wave"
)

type openCLStepper struct{}

func newOpenCLStepper() (*openCLStepper, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (s *openCLStepper) StepField(*wave.Field, wave.Params) error {
	return errors.New("OpenCL stepper unavailable")
}

func (s *openCLStepper) Close() {}

func (s *openCLStepper) DeviceName() string { return "" }
