package globe

import (
	"github.com/Faultbox/snowglobe/internal/background"
	"github.com/Faultbox/snowglobe/internal/config"
	"github.com/Faultbox/snowglobe/pkg/math"
)

// FromConfig maps the viewer settings onto component settings.
func FromConfig(c *config.Config) (Config, error) {
	cfg := DefaultConfig()

	palette, err := c.Background.ParsePalette()
	if err != nil {
		return cfg, err
	}
	cfg.Background.Palette = make([]background.RGB, len(palette))
	for i, p := range palette {
		cfg.Background.Palette[i] = background.RGB(p)
	}
	cfg.Background.Scale = c.Background.Scale
	cfg.Background.HalfWidth = c.Background.HalfWidth
	cfg.Background.HalfHeight = c.Background.HalfHeight
	cfg.Background.BlinkSpeed = c.Background.BlinkSpeed
	cfg.Background.BlinksPerSec = c.Background.BlinksPerSec

	cfg.SphereY = c.Scene.SphereY
	cfg.Snow.Count = c.Scene.SnowCount
	cfg.Snow.SphereRadius = c.Scene.SphereRadius

	ctl := c.Controls
	cfg.Orient.Damping = ctl.Damping
	cfg.Orient.ReverseBrake = ctl.ReverseBrake
	cfg.Orient.ForceScaleYaw = ctl.ForceScaleYaw
	cfg.Orient.ForceScalePitch = ctl.ForceScalePitch
	cfg.Orient.MaxSpeedYaw = ctl.MaxSpeedYaw
	cfg.Orient.MaxSpeedPitch = ctl.MaxSpeedPitch
	cfg.Orient.MaxPitch = ctl.MaxPitch

	bb := c.Billboard
	cfg.Billboard.SphereRadius = c.Scene.SphereRadius
	cfg.Billboard.FadeSpeed = bb.FadeSpeed
	cfg.Billboard.Center = math.Vec3{Y: float32(c.Scene.SphereY)}
	cfg.Layout.StillsDir = bb.StillsDir
	cfg.Layout.VideoIDs = append([]int(nil), bb.VideoIDs...)
	cfg.Layout.FramesPerVideo = bb.FramesPerVideo
	cfg.Layout.PoleVideoID = bb.PoleVideoID

	return cfg, nil
}
