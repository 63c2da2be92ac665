// Package framedump records wave field snapshots to an lz4-compressed
// stream for offline inspection.
package framedump

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pierrec/lz4/v4"
)

const magic = "WGF1"

// headerSize is index (8) + cols (4) + rows (4).
const headerSize = 16

// maxCells bounds the cells per frame accepted by Reader.
const maxCells = 1 << 24

// Frame is one field snapshot.
type Frame struct {
	Index  uint64
	Cols   int
	Rows   int
	Values []float32
}

// Writer streams frames into an lz4 frame.
type Writer struct {
	zw     *lz4.Writer
	closer io.Closer
	buf    []byte
	frames int
}

// Create opens path for writing and returns a Writer that owns the file.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := newWriter(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// NewWriter wraps dst. Closing the Writer flushes but does not close dst.
func NewWriter(dst io.Writer) (*Writer, error) {
	return newWriter(dst, nil)
}

func newWriter(dst io.Writer, closer io.Closer) (*Writer, error) {
	zw := lz4.NewWriter(dst)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4.Fast)); err != nil {
		return nil, fmt.Errorf("configuring lz4 writer: %w", err)
	}
	if _, err := io.WriteString(zw, magic); err != nil {
		return nil, fmt.Errorf("writing dump header: %w", err)
	}
	return &Writer{zw: zw, closer: closer}, nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// WriteFrame appends one snapshot. values must hold cols*rows entries.
func (w *Writer) WriteFrame(index uint64, cols, rows int, values []float32) error {
	if cols < 0 || rows < 0 || len(values) != cols*rows {
		return fmt.Errorf("frame %d: %d values for a %dx%d grid", index, len(values), cols, rows)
	}
	n := headerSize + 4*len(values)
	if cap(w.buf) < n {
		w.buf = make([]byte, n)
	}
	buf := w.buf[:n]
	binary.LittleEndian.PutUint64(buf[0:], index)
	binary.LittleEndian.PutUint32(buf[8:], uint32(cols))
	binary.LittleEndian.PutUint32(buf[12:], uint32(rows))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[headerSize+4*i:], math.Float32bits(v))
	}
	if _, err := w.zw.Write(buf); err != nil {
		return fmt.Errorf("writing frame %d: %w", index, err)
	}
	w.frames++
	return nil
}

// Close flushes the lz4 stream and closes the file if the Writer owns one.
func (w *Writer) Close() error {
	err := w.zw.Close()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Reader decodes a dump produced by Writer.
type Reader struct {
	zr     *lz4.Reader
	header [headerSize]byte
	primed bool
}

// NewReader wraps src.
func NewReader(src io.Reader) *Reader {
	return &Reader{zr: lz4.NewReader(src)}
}

// ErrBadMagic reports a stream that is not a frame dump.
var ErrBadMagic = errors.New("framedump: not a wave field dump")

// Next returns the next frame, or io.EOF after the last one.
func (r *Reader) Next() (Frame, error) {
	if !r.primed {
		var m [len(magic)]byte
		if _, err := io.ReadFull(r.zr, m[:]); err != nil {
			return Frame{}, fmt.Errorf("reading dump header: %w", err)
		}
		if string(m[:]) != magic {
			return Frame{}, ErrBadMagic
		}
		r.primed = true
	}
	if _, err := io.ReadFull(r.zr, r.header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Frame{}, fmt.Errorf("truncated frame header: %w", err)
		}
		return Frame{}, err
	}
	f := Frame{
		Index: binary.LittleEndian.Uint64(r.header[0:]),
		Cols:  int(binary.LittleEndian.Uint32(r.header[8:])),
		Rows:  int(binary.LittleEndian.Uint32(r.header[12:])),
	}
	cells := f.Cols * f.Rows
	if cells < 0 || cells > maxCells {
		return Frame{}, fmt.Errorf("frame %d: implausible %dx%d grid", f.Index, f.Cols, f.Rows)
	}
	raw := make([]byte, 4*cells)
	if _, err := io.ReadFull(r.zr, raw); err != nil {
		return Frame{}, fmt.Errorf("reading frame %d: %w", f.Index, err)
	}
	f.Values = make([]float32, cells)
	for i := range f.Values {
		f.Values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return f, nil
}
