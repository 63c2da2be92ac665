package wave

// Params are the solver coefficients handed to a Stepper.
type Params struct {
	Damping float32
	SpeedSq float32
}

// Stepper advances a field by one step and rotates it. The CPU stepper is the
// default; a GPU stepper may be installed by the host.
type Stepper interface {
	StepField(f *Field, p Params) error
}

// flushBelow is the magnitude under which a damped value is stored as zero.
// Without it float32 subnormals stop shrinking and the field never settles.
const flushBelow = 1e-20

func flush(v float32) float32 {
	if v > -flushBelow && v < flushBelow {
		return 0
	}
	return v
}

// CPUStepper runs the finite difference update on the calling goroutine.
type CPUStepper struct{}

// StepField implements Stepper.
func (CPUStepper) StepField(f *Field, p Params) error {
	stepCPU(f, p)
	return nil
}

// stepCPU writes the damped leapfrog update into Next and rotates the ring.
// Interior cells propagate; edge cells only decay so they stay governed by
// direct impulses.
func stepCPU(f *Field, p Params) {
	if f.cols == 0 || f.rows == 0 {
		return
	}
	decayEdges(f, p)
	for y := 1; y < f.rows-1; y++ {
		stepRow(f, p, y)
	}
	f.Rotate()
}

// decayEdges writes next = damping*current, flushed, for every boundary cell.
func decayEdges(f *Field, p Params) {
	cols, rows := f.cols, f.rows
	curr := f.Current()
	next := f.Next()
	wd := p.Damping
	for x := 0; x < cols; x++ {
		next[x] = flush(curr[x] * wd)
		last := (rows-1)*cols + x
		next[last] = flush(curr[last] * wd)
	}
	for y := 1; y < rows-1; y++ {
		base := y * cols
		next[base] = flush(curr[base] * wd)
		next[base+cols-1] = flush(curr[base+cols-1] * wd)
	}
}

// stepRow updates the interior cells of row y, which must not be an edge row.
func stepRow(f *Field, p Params, y int) {
	cols := f.cols
	curr := f.Current()
	wd := p.Damping
	ws := p.SpeedSq

	rowBase := y * cols
	center := curr[rowBase : rowBase+cols]
	top := curr[rowBase-cols : rowBase]
	bottom := curr[rowBase+cols : rowBase+2*cols]
	prevRow := f.Previous()[rowBase : rowBase+cols]
	nextRow := f.Next()[rowBase : rowBase+cols]
	for x := 1; x < cols-1; x++ {
		c := center[x]
		lap := center[x-1] + center[x+1] + top[x] + bottom[x] - 4*c
		nextRow[x] = flush(wd * (2*c - prevRow[x] + ws*lap))
	}
}
