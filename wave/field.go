package wave

// Field stores the three wave buffers required by the leapfrog solver as a
// ring. Rotating the ring changes which buffer plays which role; no buffer is
// reallocated between resizes.
type Field struct {
	cols, rows int
	bufs       [3][]float32
	cur        int
}

// newField allocates a zeroed field with cols*rows cells per buffer.
func newField(cols, rows int) *Field {
	n := cols * rows
	return &Field{
		cols: cols, rows: rows,
		bufs: [3][]float32{make([]float32, n), make([]float32, n), make([]float32, n)},
	}
}

// Cols returns the number of columns.
func (f *Field) Cols() int { return f.cols }

// Rows returns the number of rows.
func (f *Field) Rows() int { return f.rows }

// Len returns the buffer length, cols*rows.
func (f *Field) Len() int { return f.cols * f.rows }

// Current is the state being displayed.
func (f *Field) Current() []float32 { return f.bufs[f.cur] }

// Previous is the state one step behind Current.
func (f *Field) Previous() []float32 { return f.bufs[(f.cur+2)%3] }

// Next is the scratch buffer a step writes into.
func (f *Field) Next() []float32 { return f.bufs[(f.cur+1)%3] }

// Rotate makes next the current state and current the previous one.
func (f *Field) Rotate() { f.cur = (f.cur + 1) % 3 }

// Index returns the buffer offset of cell (x, y).
func (f *Field) Index(x, y int) int { return y*f.cols + x }

// At reads the current value of cell (x, y).
func (f *Field) At(x, y int) float32 { return f.Current()[y*f.cols+x] }

// Energy returns the sum of squared current values.
func (f *Field) Energy() float64 {
	var e float64
	for _, v := range f.Current() {
		e += float64(v) * float64(v)
	}
	return e
}
