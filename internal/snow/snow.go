// Package snow simulates the flakes drifting inside the globe.
//
// Flakes fall at a constant per-flake speed with a small sinusoidal sideways
// drift. A flake that leaves the inner sphere or sinks to the ground is
// respawned near the top, so the snowfall never stops.
package snow

import (
	gomath "math"
	"math/rand"

	"github.com/Faultbox/snowglobe/pkg/math"
)

// Config holds the globe geometry and flake tuning.
type Config struct {
	Count          int
	SphereRadius   float64 // glass sphere radius
	DomeTheta      float64 // polar angle where the dome is cut
	InnerScale     float64 // flakes stay within SphereRadius*InnerScale
	GroundOffset   float64 // ground height above the cut
	Margin         float64 // minimum flake height above the ground
	MinSpeed       float64 // fall per tick
	SpeedRange     float64
	DriftAmplitude float64
	DriftFrequency float64 // radians per second
	MaxAttempts    int     // rejection sampling bound
}

// DefaultConfig returns the stock globe.
func DefaultConfig() Config {
	return Config{
		Count:          20,
		SphereRadius:   1.5,
		DomeTheta:      gomath.Pi * 0.7,
		InnerScale:     0.85,
		GroundOffset:   0.05,
		Margin:         0.05,
		MinSpeed:       0.002,
		SpeedRange:     0.004,
		DriftAmplitude: 0.0004,
		DriftFrequency: 0.5,
		MaxAttempts:    64,
	}
}

// InnerRadius is the radius of the sphere flakes live in.
func (c Config) InnerRadius() float64 {
	return c.SphereRadius * c.InnerScale
}

// CutY is the height where the dome meets the base.
func (c Config) CutY() float64 {
	return c.SphereRadius * gomath.Cos(c.DomeTheta)
}

// GroundY is the height of the snow floor inside the dome.
func (c Config) GroundY() float64 {
	return c.CutY() + c.GroundOffset
}

// Floor is the lowest height a flake may occupy after a tick.
func (c Config) Floor() float64 {
	return c.GroundY() + c.Margin
}

// Particle is a single flake.
type Particle struct {
	Pos    math.Vec3
	Speed  float64
	DriftA float64
	DriftB float64
}

// Simulator owns the flakes and the position buffer handed to the renderer.
type Simulator struct {
	cfg       Config
	rng       *rand.Rand
	particles []Particle
	positions []float32
}

// New scatters cfg.Count flakes uniformly through the valid volume.
func New(cfg Config, rng *rand.Rand) *Simulator {
	s := &Simulator{
		cfg:       cfg,
		rng:       rng,
		particles: make([]Particle, cfg.Count),
		positions: make([]float32, cfg.Count*3),
	}
	for i := range s.particles {
		p := &s.particles[i]
		p.Pos = s.randomInside()
		p.Speed = cfg.MinSpeed + rng.Float64()*cfg.SpeedRange
		p.DriftA = rng.Float64() * 2 * gomath.Pi
		p.DriftB = rng.Float64() * 2 * gomath.Pi
	}
	s.syncPositions()
	return s
}

// Tick advances every flake. t is the elapsed time since start, not a delta:
// drift phase is continuous in absolute time.
func (s *Simulator) Tick(t float64) {
	w := t * s.cfg.DriftFrequency
	amp := s.cfg.DriftAmplitude
	for i := range s.particles {
		p := &s.particles[i]
		p.Pos.Y -= float32(p.Speed)
		p.Pos.X += float32(gomath.Sin(w+p.DriftA) * amp)
		p.Pos.Z += float32(gomath.Cos(w+p.DriftB) * amp)

		if !s.Contains(p.Pos) {
			p.Pos = s.respawn()
		}
	}
	s.syncPositions()
}

// Contains reports whether pos lies inside the inner sphere and above the floor.
func (s *Simulator) Contains(pos math.Vec3) bool {
	r := s.cfg.InnerRadius()
	x, y, z := float64(pos.X), float64(pos.Y), float64(pos.Z)
	return x*x+y*y+z*z <= r*r && y >= s.cfg.Floor()
}

// randomInside rejection-samples the sphere above the floor.
func (s *Simulator) randomInside() math.Vec3 {
	r := s.cfg.InnerRadius()
	floor := s.cfg.Floor()
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		p := math.Vec3{
			X: float32((s.rng.Float64()*2 - 1) * r),
			Y: float32((s.rng.Float64()*2 - 1) * r),
			Z: float32((s.rng.Float64()*2 - 1) * r),
		}
		if s.Contains(p) && float64(p.Y) > floor {
			return p
		}
	}
	return s.respawn()
}

// respawn places a flake near the top of the globe. The draw is repeated
// until it lands inside the sphere; the last resort is the vertical axis.
func (s *Simulator) respawn() math.Vec3 {
	r := s.cfg.InnerRadius()
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		angle := s.rng.Float64() * 2 * gomath.Pi
		rad := s.rng.Float64() * r * 0.6
		p := math.Vec3{
			X: float32(gomath.Cos(angle) * rad),
			Y: float32(r * (0.5 + s.rng.Float64()*0.4)),
			Z: float32(gomath.Sin(angle) * rad),
		}
		if s.Contains(p) {
			return p
		}
	}
	return math.Vec3{Y: float32(r * 0.5)}
}

func (s *Simulator) syncPositions() {
	for i, p := range s.particles {
		s.positions[i*3] = p.Pos.X
		s.positions[i*3+1] = p.Pos.Y
		s.positions[i*3+2] = p.Pos.Z
	}
}

// Positions returns the interleaved xyz buffer, refreshed by every Tick.
func (s *Simulator) Positions() []float32 {
	return s.positions
}

// Particles returns the flakes. The slice is owned by the simulator.
func (s *Simulator) Particles() []Particle {
	return s.particles
}

// Config returns the simulator's configuration.
func (s *Simulator) Config() Config {
	return s.cfg
}
