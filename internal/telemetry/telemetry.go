// Package telemetry aggregates frame timing into fixed windows and
// optionally appends them to a CSV file.
package telemetry

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/Faultbox/snowglobe/internal/logger"
)

// Window is the summary of one aggregation window.
type Window struct {
	Start            float64 `csv:"start_s"`
	End              float64 `csv:"end_s"`
	Frames           int     `csv:"frames"`
	FPS              float64 `csv:"fps"`
	FrameMeanMS      float64 `csv:"frame_mean_ms"`
	FrameStdMS       float64 `csv:"frame_std_ms"`
	FrameMaxMS       float64 `csv:"frame_max_ms"`
	Redraws          int     `csv:"background_redraws"`
	LoadedTextures   int     `csv:"loaded_textures"`
	SelectionChanges int     `csv:"selection_changes"`
}

// Sample is what the frame loop reports once per frame.
type Sample struct {
	Now     float64 // seconds since start
	Dt      float64 // seconds since the previous frame
	Redrawn bool    // background canvas was redrawn
	Loaded  int     // textures loaded so far
	Changes int     // selection changes so far
}

// Collector accumulates samples until a window closes.
type Collector struct {
	length float64
	out    *Output
	log    *zap.Logger

	start       float64
	started     bool
	frameMS     []float64
	redraws     int
	baseChanges int
}

// NewCollector creates a collector with windows of the given length in
// seconds. out may be nil.
func NewCollector(windowSeconds float64, out *Output) *Collector {
	if windowSeconds <= 0 {
		windowSeconds = 5
	}
	return &Collector{
		length:  windowSeconds,
		out:     out,
		log:     logger.Named("telemetry"),
		frameMS: make([]float64, 0, 512),
	}
}

// Record adds one frame. When the sample closes a window it returns the
// summary and true.
func (c *Collector) Record(s Sample) (Window, bool) {
	if !c.started {
		c.start = s.Now
		c.baseChanges = s.Changes
		c.started = true
	}
	if s.Dt > 0 {
		c.frameMS = append(c.frameMS, s.Dt*1000)
	}
	if s.Redrawn {
		c.redraws++
	}
	if s.Now-c.start < c.length {
		return Window{}, false
	}

	w := c.summarize(s)
	c.start = s.Now
	c.baseChanges = s.Changes
	c.frameMS = c.frameMS[:0]
	c.redraws = 0

	c.log.Info("frame window",
		zap.Float64("fps", w.FPS),
		zap.Float64("frame_mean_ms", w.FrameMeanMS),
		zap.Float64("frame_std_ms", w.FrameStdMS),
		zap.Int("redraws", w.Redraws),
		zap.Int("loaded", w.LoadedTextures),
		zap.Int("changes", w.SelectionChanges),
	)
	if err := c.out.Write(w); err != nil {
		c.log.Warn("telemetry write failed", zap.Error(err))
	}
	return w, true
}

func (c *Collector) summarize(s Sample) Window {
	w := Window{
		Start:            c.start,
		End:              s.Now,
		Frames:           len(c.frameMS),
		Redraws:          c.redraws,
		LoadedTextures:   s.Loaded,
		SelectionChanges: s.Changes - c.baseChanges,
	}
	if span := s.Now - c.start; span > 0 {
		w.FPS = float64(w.Frames) / span
	}
	switch len(c.frameMS) {
	case 0:
	case 1:
		w.FrameMeanMS = c.frameMS[0]
		w.FrameMaxMS = c.frameMS[0]
	default:
		w.FrameMeanMS, w.FrameStdMS = stat.MeanStdDev(c.frameMS, nil)
		w.FrameMaxMS = c.frameMS[0]
		for _, v := range c.frameMS[1:] {
			w.FrameMaxMS = math.Max(w.FrameMaxMS, v)
		}
	}
	return w
}
