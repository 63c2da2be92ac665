package framedump

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	first := []float32{0, 0.25, -1.5, 3, 0, 0}
	require.NoError(t, w.WriteFrame(7, 3, 2, first))
	require.NoError(t, w.WriteFrame(8, 0, 0, nil))
	assert.Equal(t, 2, w.Frames())
	require.NoError(t, w.Close())

	r := NewReader(&buf)
	f, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, Frame{Index: 7, Cols: 3, Rows: 2, Values: first}, f)

	f, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(8), f.Index)
	assert.Empty(t, f.Values)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestWriteFrameRejectsMismatchedLength(t *testing.T) {
	w, err := NewWriter(io.Discard)
	require.NoError(t, err)
	assert.Error(t, w.WriteFrame(0, 4, 4, make([]float32, 15)))
	assert.Zero(t, w.Frames())
}

func TestCreateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waves.lz4")
	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteFrame(1, 2, 1, []float32{1, 2}))
	require.NoError(t, w.Close())
}

func TestReaderRejectsForeignStream(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := NewReader(&buf)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)

	r = NewReader(bytes.NewReader([]byte("definitely not lz4")))
	_, err = r.Next()
	assert.Error(t, err)
}
