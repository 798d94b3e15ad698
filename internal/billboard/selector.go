package billboard

import (
	"go.uber.org/zap"

	"github.com/Faultbox/snowglobe/internal/logger"
	"github.com/Faultbox/snowglobe/pkg/math"
)

// Texture is a GPU texture handle with the source image size.
type Texture struct {
	ID     uint32
	Width  int
	Height int
}

// Loaded is a finished texture upload for a point.
type Loaded struct {
	Index   int
	Texture *Texture
}

// Config holds the display plane and fade settings.
type Config struct {
	SphereRadius  float64
	EdgeInset     float64 // plane radius = SphereRadius - EdgeInset
	DefaultAspect float64 // used until the first texture arrives
	FadeSpeed     float64 // blend units per second
	Center        math.Vec3
}

// DefaultConfig returns the stock display settings.
func DefaultConfig() Config {
	return Config{
		SphereRadius:  1.5,
		EdgeInset:     0.1,
		DefaultAspect: 16.0 / 9.0,
		FadeSpeed:     8,
		Center:        math.Vec3{Y: 1.2},
	}
}

// Crossfade is the pair of textures being blended.
// Blend goes from 0 (all Prev) to 1 (all Cur).
type Crossfade struct {
	Current int
	Blend   float64
	Prev    *Texture
	Cur     *Texture
}

// Uniforms is everything the billboard shader needs for a frame.
type Uniforms struct {
	Prev       *Texture
	Cur        *Texture
	Blend      float32
	PlaneW     float32
	PlaneH     float32
	EdgeRadius float32
	Model      math.Mat4
}

// Selector tracks the nearest loaded point and the crossfade toward it.
type Selector struct {
	cfg    Config
	points []Point
	pole   int

	fade      Crossfade
	aspect    float64
	aspectSet bool
	model     math.Mat4
	changes   int
	loaded    int
	log       *zap.Logger
}

// NewSelector creates a selector over points. The last point is the pole.
func NewSelector(points []Point, cfg Config) *Selector {
	return &Selector{
		cfg:    cfg,
		points: points,
		pole:   len(points) - 1,
		fade:   Crossfade{Current: -1, Blend: 1},
		aspect: cfg.DefaultAspect,
		model:  math.Translate(cfg.Center.X, cfg.Center.Y, cfg.Center.Z),
		log:    logger.Named("billboard"),
	}
}

// Apply attaches an uploaded texture to its point. The first texture with a
// known size fixes the plane aspect for good.
func (s *Selector) Apply(l Loaded) bool {
	if l.Index < 0 || l.Index >= len(s.points) || l.Texture == nil {
		return false
	}
	p := &s.points[l.Index]
	if p.Texture == nil {
		s.loaded++
	}
	p.Texture = l.Texture

	if !s.aspectSet && l.Texture.Width > 0 && l.Texture.Height > 0 {
		s.aspect = float64(l.Texture.Width) / float64(l.Texture.Height)
		s.aspectSet = true
		s.log.Debug("plane aspect fixed",
			zap.String("path", p.Path),
			zap.Int("width", l.Texture.Width),
			zap.Int("height", l.Texture.Height))
	}
	return true
}

// Nearest returns the loaded point closest to dir, or -1 if none is loaded.
// Ties keep the earlier point.
func (s *Selector) Nearest(dir math.Vec3) int {
	best := -1
	var bestDot float32
	for i := range s.points {
		if s.points[i].Texture == nil {
			continue
		}
		d := s.points[i].Dir.Dot(dir)
		if best < 0 || d > bestDot {
			best = i
			bestDot = d
		}
	}
	return best
}

// Tick updates the selection for the globe orientation, advances the fade and
// turns the plane toward the camera.
func (s *Selector) Tick(pitch, yaw, dt float64, camera math.Vec3) {
	best := s.Nearest(Forward(pitch, yaw))
	if best >= 0 && best != s.fade.Current {
		tex := s.points[best].Texture
		if s.fade.Cur != nil {
			s.fade.Prev = s.fade.Cur
		} else {
			s.fade.Prev = tex
		}
		s.fade.Cur = tex
		s.fade.Current = best
		s.fade.Blend = 0
		s.changes++
	}

	if dt > 0 && s.fade.Blend < 1 {
		s.fade.Blend = min(1, s.fade.Blend+s.cfg.FadeSpeed*dt)
	}

	s.model = math.FaceTowards(s.cfg.Center, camera)
	if s.fade.Current == s.pole {
		// The top-down still spins with the globe.
		s.model = s.model.Mul(math.RotateZ(float32(yaw)))
	}
}

// Current returns the selected point index, or -1 before the first load.
func (s *Selector) Current() int {
	return s.fade.Current
}

// Crossfade returns the current fade state.
func (s *Selector) Crossfade() Crossfade {
	return s.fade
}

// Model returns the plane transform computed by the last Tick.
func (s *Selector) Model() math.Mat4 {
	return s.model
}

// Aspect returns the plane width/height ratio.
func (s *Selector) Aspect() float64 {
	return s.aspect
}

// EdgeRadius is the radius of the circular plane.
func (s *Selector) EdgeRadius() float64 {
	return s.cfg.SphereRadius - s.cfg.EdgeInset
}

// PlaneSize returns the size of the image rectangle the circle is cut from.
func (s *Selector) PlaneSize() (w, h float64) {
	h = 2 * s.EdgeRadius()
	return h * s.aspect, h
}

// Uniforms returns the shader inputs for the current frame.
func (s *Selector) Uniforms() Uniforms {
	w, h := s.PlaneSize()
	return Uniforms{
		Prev:       s.fade.Prev,
		Cur:        s.fade.Cur,
		Blend:      float32(s.fade.Blend),
		PlaneW:     float32(w),
		PlaneH:     float32(h),
		EdgeRadius: float32(s.EdgeRadius()),
		Model:      s.model,
	}
}

// Points returns the capture points. Textures are written only by Apply.
func (s *Selector) Points() []Point {
	return s.points
}

// PoleIndex returns the index of the straight-up point.
func (s *Selector) PoleIndex() int {
	return s.pole
}

// Changes returns how many times the selection has switched.
func (s *Selector) Changes() int {
	return s.changes
}

// LoadedCount returns how many points have a texture.
func (s *Selector) LoadedCount() int {
	return s.loaded
}
