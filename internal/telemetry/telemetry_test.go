package telemetry

import (
	"os"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorClosesWindow(t *testing.T) {
	c := NewCollector(1, nil)

	now := 0.0
	var (
		w      Window
		closed bool
	)
	for i := 0; i < 10 && !closed; i++ {
		now += 0.25
		w, closed = c.Record(Sample{Now: now, Dt: 0.25, Redrawn: i%2 == 0, Loaded: i, Changes: i / 2})
	}

	require.True(t, closed)
	assert.InDelta(t, 0.25, w.Start, 1e-9)
	assert.InDelta(t, 1.25, w.End, 1e-9)
	assert.Equal(t, 5, w.Frames)
	assert.InDelta(t, 5.0, w.FPS, 1e-9)
	assert.InDelta(t, 250.0, w.FrameMeanMS, 1e-9)
	assert.InDelta(t, 0.0, w.FrameStdMS, 1e-9)
	assert.InDelta(t, 250.0, w.FrameMaxMS, 1e-9)
	assert.Equal(t, 3, w.Redraws)
	assert.Equal(t, 4, w.LoadedTextures)
	assert.Equal(t, 2, w.SelectionChanges)
}

func TestCollectorFrameStats(t *testing.T) {
	c := NewCollector(10, nil)
	c.Record(Sample{Now: 0, Dt: 0.010})
	c.Record(Sample{Now: 5, Dt: 0.020})
	w, closed := c.Record(Sample{Now: 10, Dt: 0.030})

	require.True(t, closed)
	assert.InDelta(t, 20.0, w.FrameMeanMS, 1e-9)
	assert.InDelta(t, 10.0, w.FrameStdMS, 1e-9)
	assert.InDelta(t, 30.0, w.FrameMaxMS, 1e-9)
}

func TestCollectorResetsBetweenWindows(t *testing.T) {
	c := NewCollector(1, nil)
	c.Record(Sample{Now: 0, Dt: 0.5, Redrawn: true})
	_, closed := c.Record(Sample{Now: 1, Dt: 0.5, Redrawn: true, Changes: 3})
	require.True(t, closed)

	_, closed = c.Record(Sample{Now: 1.5, Dt: 0.5, Changes: 3})
	assert.False(t, closed)
	w, closed := c.Record(Sample{Now: 2, Dt: 0.5, Changes: 4})
	require.True(t, closed)
	assert.Equal(t, 0, w.Redraws)
	assert.Equal(t, 1, w.SelectionChanges)
	assert.Equal(t, 2, w.Frames)
}

func TestNilOutputIsDisabled(t *testing.T) {
	out, err := NewOutput("")
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.NoError(t, out.Write(Window{}))
	assert.NoError(t, out.Close())
	assert.Empty(t, out.Path())
}

func TestOutputWritesCSV(t *testing.T) {
	out, err := NewOutput(t.TempDir())
	require.NoError(t, err)

	c := NewCollector(1, out)
	c.Record(Sample{Now: 0, Dt: 0.1})
	c.Record(Sample{Now: 1, Dt: 0.1, Loaded: 7})
	c.Record(Sample{Now: 2, Dt: 0.1, Loaded: 9})
	require.NoError(t, out.Close())

	f, err := os.Open(out.Path())
	require.NoError(t, err)
	defer f.Close()

	var rows []Window
	require.NoError(t, gocsv.UnmarshalFile(f, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 7, rows[0].LoadedTextures)
	assert.Equal(t, 9, rows[1].LoadedTextures)
}
