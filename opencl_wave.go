//go:build opencl

package main

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"backdrop/wave"

	"github.com/jgillich/go-opencl/cl"
)

// openCLStepper advances the wave grid on an OpenCL device. The host field
// stays authoritative: impulses land in host memory, so both input buffers
// are uploaded each step and the result is read back into the next buffer.
type openCLStepper struct {
	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	kernel     *cl.Kernel
	edgeKernel *cl.Kernel
	currBuf    *cl.MemObject
	prevBuf    *cl.MemObject
	nextBuf    *cl.MemObject
	cols       int
	rows       int
	deviceName string
}

const waveKernelSource = `__kernel void wave_step(
    const int width,
    const int height,
    const float damp,
    const float speed,
    __global const float* curr,
    __global const float* prev,
    __global float* next_buffer)
{
    int idx = get_global_id(0);
    int size = width * height;
    if (idx >= size) {
        return;
    }
    int x = idx % width;
    int y = idx / width;
    if (x <= 0 || x >= width - 1 || y <= 0 || y >= height - 1) {
        return;
    }
    float center = curr[idx];
    float laplacian = curr[idx - 1] + curr[idx + 1] + curr[idx - width] + curr[idx + width] - 4.0f * center;
    float v = ((2.0f * center - prev[idx]) + speed * laplacian) * damp;
    if (fabs(v) < 1e-20f) {
        v = 0.0f;
    }
    next_buffer[idx] = v;
}

__kernel void decay_edges(
    const int width,
    const int height,
    const float damp,
    __global const float* curr,
    __global float* next_buffer)
{
    int idx = get_global_id(0);
    int size = width * height;
    if (idx >= size) {
        return;
    }
    int x = idx % width;
    int y = idx / width;
    if (x > 0 && x < width - 1 && y > 0 && y < height - 1) {
        return;
    }
    float v = curr[idx] * damp;
    if (fabs(v) < 1e-20f) {
        v = 0.0f;
    }
    next_buffer[idx] = v;
}`

func newOpenCLStepper() (*openCLStepper, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	device := pickDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = pickDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	s := &openCLStepper{deviceName: device.Name()}
	if s.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	if s.queue, err = s.context.CreateCommandQueue(device, 0); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if s.program, err = s.context.CreateProgramWithSource([]string{waveKernelSource}); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		s.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if s.kernel, err = s.program.CreateKernel("wave_step"); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	if s.edgeKernel, err = s.program.CreateKernel("decay_edges"); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating edge kernel: %w", err)
	}
	return s, nil
}

func pickDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

// ensureBuffers reallocates device memory when the grid dimensions change.
func (s *openCLStepper) ensureBuffers(cols, rows int) error {
	if s.currBuf != nil && cols == s.cols && rows == s.rows {
		return nil
	}
	s.releaseBuffers()
	byteSize := cols * rows * int(unsafe.Sizeof(float32(0)))
	var err error
	if s.currBuf, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize); err != nil {
		return fmt.Errorf("allocating current buffer: %w", err)
	}
	if s.prevBuf, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize); err != nil {
		s.releaseBuffers()
		return fmt.Errorf("allocating previous buffer: %w", err)
	}
	if s.nextBuf, err = s.context.CreateEmptyBuffer(cl.MemWriteOnly, byteSize); err != nil {
		s.releaseBuffers()
		return fmt.Errorf("allocating next buffer: %w", err)
	}
	s.cols, s.rows = cols, rows
	return nil
}

// StepField implements wave.Stepper.
func (s *openCLStepper) StepField(f *wave.Field, p wave.Params) error {
	size := f.Len()
	if size == 0 {
		return nil
	}
	if err := s.ensureBuffers(f.Cols(), f.Rows()); err != nil {
		return err
	}
	if err := s.kernel.SetArgs(
		int32(f.Cols()),
		int32(f.Rows()),
		p.Damping,
		p.SpeedSq,
		s.currBuf,
		s.prevBuf,
		s.nextBuf,
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	if err := s.edgeKernel.SetArgs(
		int32(f.Cols()),
		int32(f.Rows()),
		p.Damping,
		s.currBuf,
		s.nextBuf,
	); err != nil {
		return fmt.Errorf("setting edge kernel arguments: %w", err)
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.currBuf, false, 0, f.Current(), nil); err != nil {
		return fmt.Errorf("writing current buffer: %w", err)
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.prevBuf, false, 0, f.Previous(), nil); err != nil {
		return fmt.Errorf("writing previous buffer: %w", err)
	}
	global := []int{size}
	if _, err := s.queue.EnqueueNDRangeKernel(s.kernel, nil, global, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.edgeKernel, nil, global, nil, nil); err != nil {
		return fmt.Errorf("decaying edges: %w", err)
	}
	if _, err := s.queue.EnqueueReadBufferFloat32(s.nextBuf, true, 0, f.Next(), nil); err != nil {
		return fmt.Errorf("reading next buffer: %w", err)
	}
	f.Rotate()
	return nil
}

func (s *openCLStepper) releaseBuffers() {
	for _, b := range []**cl.MemObject{&s.currBuf, &s.prevBuf, &s.nextBuf} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
	s.cols, s.rows = 0, 0
}

func (s *openCLStepper) Close() {
	s.releaseBuffers()
	if s.edgeKernel != nil {
		s.edgeKernel.Release()
		s.edgeKernel = nil
	}
	if s.kernel != nil {
		s.kernel.Release()
		s.kernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}

func (s *openCLStepper) DeviceName() string {
	return s.deviceName
}
