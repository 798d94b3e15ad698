// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Config holds all viewer settings.
type Config struct {
	Graphics   GraphicsConfig   `yaml:"graphics"`
	Scene      SceneConfig      `yaml:"scene"`
	Background BackgroundConfig `yaml:"background"`
	Controls   ControlsConfig   `yaml:"controls"`
	Billboard  BillboardConfig  `yaml:"billboard"`
	Audio      AudioConfig      `yaml:"audio"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	PixelSize  int  `yaml:"pixel_size"` // 1 disables the pixelated pass
}

// SceneConfig holds the globe geometry and snow settings.
type SceneConfig struct {
	SphereRadius float64 `yaml:"sphere_radius"`
	SphereY      float64 `yaml:"sphere_y"`
	SnowCount    int     `yaml:"snow_count"`
	Seed         int64   `yaml:"seed"` // 0 seeds from the clock
}

// BackgroundConfig holds the tile animator settings.
type BackgroundConfig struct {
	Scale        float64  `yaml:"scale"`
	HalfWidth    float64  `yaml:"half_width"`
	HalfHeight   float64  `yaml:"half_height"`
	BlinkSpeed   float64  `yaml:"blink_speed"`
	BlinksPerSec float64  `yaml:"blinks_per_sec"`
	Palette      []string `yaml:"palette"` // hex colors, at least two
}

// ControlsConfig holds the drag/inertia tuning.
type ControlsConfig struct {
	Damping         float64 `yaml:"damping"`
	ReverseBrake    float64 `yaml:"reverse_brake"`
	ForceScaleYaw   float64 `yaml:"force_scale_yaw"`
	ForceScalePitch float64 `yaml:"force_scale_pitch"`
	MaxSpeedYaw     float64 `yaml:"max_speed_yaw"`
	MaxSpeedPitch   float64 `yaml:"max_speed_pitch"`
	MaxPitch        float64 `yaml:"max_pitch"`
}

// BillboardConfig holds the still-image layout and crossfade settings.
type BillboardConfig struct {
	AssetRoots     []string `yaml:"asset_roots"` // searched last to first
	StillsDir      string   `yaml:"stills_dir"`
	VideoIDs       []int    `yaml:"video_ids"`
	FramesPerVideo int      `yaml:"frames_per_video"`
	PoleVideoID    int      `yaml:"pole_video_id"`
	FadeSpeed      float64  `yaml:"fade_speed"` // blend units per second
	LoadWorkers    int      `yaml:"load_workers"`
}

// AudioConfig holds the music-box settings.
type AudioConfig struct {
	Music  string  `yaml:"music"` // WAV path inside the asset roots; empty disables
	Volume float64 `yaml:"volume"`
	Muted  bool    `yaml:"muted"`
}

// TelemetryConfig holds frame statistics output settings.
type TelemetryConfig struct {
	Dir           string  `yaml:"dir"` // empty disables CSV output
	WindowSeconds float64 `yaml:"window_seconds"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ErrPaletteTooSmall is returned when fewer than two palette colors are configured.
var ErrPaletteTooSmall = errors.New("background palette needs at least two colors")

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			PixelSize:  4,
		},
		Scene: SceneConfig{
			SphereRadius: 1.5,
			SphereY:      1.2,
			SnowCount:    20,
		},
		Background: BackgroundConfig{
			Scale:        0.5,
			HalfWidth:    45,
			HalfHeight:   30,
			BlinkSpeed:   0.25,
			BlinksPerSec: 3,
			Palette: []string{
				"#fac8d2", // pink
				"#c8dcf5", // blue
				"#cdf0cd", // green
				"#faf8d2", // yellow
				"#e1d2f5", // lavender
				"#fae1cd", // peach
				"#cdf0e6", // mint
			},
		},
		Controls: ControlsConfig{
			Damping:         0.92,
			ReverseBrake:    0.8,
			ForceScaleYaw:   0.002,
			ForceScalePitch: 0.001,
			MaxSpeedYaw:     0.05,
			MaxSpeedPitch:   0.025,
			MaxPitch:        math.Pi/2 - 0.01,
		},
		Billboard: BillboardConfig{
			AssetRoots:     []string{"."},
			StillsDir:      "stills",
			VideoIDs:       []int{0, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
			FramesPerVideo: 10,
			PoleVideoID:    0,
			FadeSpeed:      8,
			LoadWorkers:    8,
		},
		Audio: AudioConfig{
			Volume: 0.6,
		},
		Telemetry: TelemetryConfig{
			WindowSeconds: 5,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks settings the simulations cannot recover from at runtime.
func (c *Config) Validate() error {
	if _, err := c.Background.ParsePalette(); err != nil {
		return err
	}
	if c.Background.HalfWidth <= 0 || c.Background.HalfHeight <= 0 {
		return fmt.Errorf("background tile size must be positive, got %gx%g",
			c.Background.HalfWidth, c.Background.HalfHeight)
	}
	if c.Background.BlinkSpeed <= 0 {
		return fmt.Errorf("background blink_speed must be positive, got %g", c.Background.BlinkSpeed)
	}
	if c.Background.BlinksPerSec < 0 {
		return fmt.Errorf("background blinks_per_sec must not be negative, got %g", c.Background.BlinksPerSec)
	}
	if c.Billboard.FadeSpeed <= 0 {
		return fmt.Errorf("billboard fade_speed must be positive, got %g", c.Billboard.FadeSpeed)
	}
	// The billboard disc is inset 0.1 from the glass.
	if c.Scene.SphereRadius <= 0.1 {
		return fmt.Errorf("scene sphere_radius must exceed 0.1, got %g", c.Scene.SphereRadius)
	}
	if c.Billboard.FramesPerVideo < 2 {
		return fmt.Errorf("billboard frames_per_video must be at least 2, got %d", c.Billboard.FramesPerVideo)
	}
	if len(c.Billboard.VideoIDs) == 0 {
		return errors.New("billboard video_ids is empty")
	}
	if c.Controls.Damping < 0 || c.Controls.Damping >= 1 {
		return fmt.Errorf("controls damping must be in [0,1), got %g", c.Controls.Damping)
	}
	if c.Scene.SnowCount < 0 {
		return fmt.Errorf("scene snow_count must not be negative, got %d", c.Scene.SnowCount)
	}
	return nil
}

// ParsePalette converts the hex palette into 8-bit RGB triples.
func (b BackgroundConfig) ParsePalette() ([][3]uint8, error) {
	if len(b.Palette) < 2 {
		return nil, ErrPaletteTooSmall
	}
	out := make([][3]uint8, 0, len(b.Palette))
	for _, hex := range b.Palette {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("palette color %q: %w", hex, err)
		}
		r, g, bl := c.RGB255()
		out = append(out, [3]uint8{r, g, bl})
	}
	return out, nil
}
