// Package audio plays the music-box loop behind the globe.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/snowglobe/internal/logger"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNotInitialized is returned when playback is requested before Init.
var ErrNotInitialized = errors.New("audio not initialized")

// Manager owns the speaker and the looping track.
type Manager struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate
	log         *zap.Logger

	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	track    string

	level float64 // 0.0 to 1.0
	muted bool
}

// New creates a manager with the given volume level and mute state.
func New(level float64, muted bool) *Manager {
	return &Manager{
		level: clamp(level, 0, 1),
		muted: muted,
		log:   logger.Named("audio"),
	}
}

// Init opens the speaker.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	m.sampleRate = DefaultSampleRate
	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	m.initialized = true
	return nil
}

// Close stops playback and releases the speaker.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	m.stopLocked()
	speaker.Close()
	m.initialized = false
}

// PlayLoop decodes WAV data and plays it forever, replacing any current track.
func (m *Manager) PlayLoop(name string, data []byte) error {
	streamer, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		streamer.Close()
		return ErrNotInitialized
	}
	m.stopLocked()

	var out beep.Streamer = &loopStreamer{streamer: streamer}
	if format.SampleRate != m.sampleRate {
		out = beep.Resample(4, format.SampleRate, m.sampleRate, out)
	}

	m.ctrl = &beep.Ctrl{Streamer: out}
	m.volume = &effects.Volume{Streamer: m.ctrl, Base: 2}
	m.applyVolume()
	m.streamer = streamer
	m.track = name

	speaker.Play(m.volume)
	m.log.Info("music started",
		zap.String("track", name),
		zap.Int("sample_rate", int(format.SampleRate)),
	)
	return nil
}

// Stop stops the current track.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.streamer == nil {
		return
	}
	speaker.Clear()
	m.streamer.Close()
	m.streamer = nil
	m.ctrl = nil
	m.volume = nil
	m.track = ""
}

// SetVolume sets the volume level (0.0 to 1.0).
func (m *Manager) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = clamp(level, 0, 1)
	m.applyVolume()
}

// Volume returns the volume level.
func (m *Manager) Volume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.level
}

// ToggleMute flips the mute state and returns the new one.
func (m *Manager) ToggleMute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = !m.muted
	m.applyVolume()
	return m.muted
}

// Muted reports whether output is muted.
func (m *Manager) Muted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.muted
}

// Playing returns the current track name, or "" when silent.
func (m *Manager) Playing() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.track
}

// applyVolume pushes the level into the volume effect. Caller holds mu.
func (m *Manager) applyVolume() {
	if m.volume == nil {
		return
	}
	silent, exp := m.muted || m.level <= 0, volumeExponent(m.level)
	speaker.Lock()
	m.volume.Silent = silent
	m.volume.Volume = exp
	speaker.Unlock()
}

// volumeExponent converts a 0-1 level to the exponent used by
// effects.Volume with base 2: vol=1 -> 0, vol=0.5 -> -1.
func volumeExponent(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return math.Log2(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// loopStreamer rewinds its source whenever it runs dry.
type loopStreamer struct {
	streamer beep.StreamSeekCloser
}

func (l *loopStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	filled := 0
	rewound := false
	for filled < len(samples) {
		n, ok := l.streamer.Stream(samples[filled:])
		filled += n
		if n > 0 {
			rewound = false
		}
		if !ok {
			// An empty source would spin forever.
			if rewound {
				return filled, filled > 0
			}
			if err := l.streamer.Seek(0); err != nil {
				return filled, filled > 0
			}
			rewound = true
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.streamer.Err()
}
