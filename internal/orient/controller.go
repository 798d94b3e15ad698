// Package orient turns pointer drags into a yaw/pitch orientation with
// inertia.
package orient

import "math"

// StepRate is the integration frequency of Tick. The tuning constants are
// per-step values at this rate.
const StepRate = 60

// Config holds the drag tuning.
type Config struct {
	Damping         float64 // velocity multiplier after every step
	ReverseBrake    float64 // applied when the force opposes the velocity
	ForceScaleYaw   float64 // per pixel of horizontal drag
	ForceScalePitch float64 // per pixel of vertical drag
	MaxSpeedYaw     float64
	MaxSpeedPitch   float64
	MaxPitch        float64
	MaxSteps        int // catch-up bound for a single Tick
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Damping:         0.92,
		ReverseBrake:    0.8,
		ForceScaleYaw:   0.002,
		ForceScalePitch: 0.001,
		MaxSpeedYaw:     0.05,
		MaxSpeedPitch:   0.025,
		MaxPitch:        math.Pi/2 - 0.01,
		MaxSteps:        5,
	}
}

// Controller integrates pointer forces into yaw and pitch.
// Pitch is kept in [0, MaxPitch]; yaw is unbounded.
type Controller struct {
	cfg Config

	yaw, pitch       float64
	velYaw, velPitch float64
	forceYaw         float64
	forcePitch       float64

	dragging     bool
	prevX, prevY float64
	acc          float64
}

// New creates a controller at rest facing yaw 0, pitch 0.
func New(cfg Config) *Controller {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 1
	}
	return &Controller{cfg: cfg}
}

// PointerDown starts a drag at (x, y).
func (c *Controller) PointerDown(x, y float64) {
	c.dragging = true
	c.prevX = x
	c.prevY = y
}

// PointerMove accumulates force from the motion since the previous event.
// Moves outside a drag are ignored.
func (c *Controller) PointerMove(x, y float64) {
	if !c.dragging {
		return
	}
	c.forceYaw += (x - c.prevX) * c.cfg.ForceScaleYaw
	c.forcePitch += (y - c.prevY) * c.cfg.ForceScalePitch
	c.prevX = x
	c.prevY = y
}

// PointerUp ends the drag. Velocity is kept and decays over later steps.
func (c *Controller) PointerUp() {
	c.dragging = false
}

// Step runs one integration. The order matters: the brake looks at the
// velocity before the new force lands, and damping applies after movement.
func (c *Controller) Step() {
	if c.forceYaw*c.velYaw < 0 {
		c.velYaw *= c.cfg.ReverseBrake
	}
	if c.forcePitch*c.velPitch < 0 {
		c.velPitch *= c.cfg.ReverseBrake
	}

	c.velYaw += c.forceYaw
	c.velPitch += c.forcePitch
	c.forceYaw = 0
	c.forcePitch = 0

	c.velYaw = clamp(c.velYaw, -c.cfg.MaxSpeedYaw, c.cfg.MaxSpeedYaw)
	c.velPitch = clamp(c.velPitch, -c.cfg.MaxSpeedPitch, c.cfg.MaxSpeedPitch)

	c.yaw += c.velYaw
	c.pitch = clamp(c.pitch+c.velPitch, 0, c.cfg.MaxPitch)

	c.velYaw *= c.cfg.Damping
	c.velPitch *= c.cfg.Damping
}

// Tick advances by dt seconds in whole steps of 1/StepRate. Leftover time
// carries to the next call; at most MaxSteps run per call.
//
// Released velocity strictly decreases on every Step. A Tick shorter than
// one step runs no Step and leaves velocity unchanged, so above 60 Hz the
// decay shows on some frames only.
func (c *Controller) Tick(dt float64) int {
	if dt <= 0 {
		return 0
	}
	const step = 1.0 / StepRate
	c.acc += dt
	n := 0
	for c.acc >= step && n < c.cfg.MaxSteps {
		c.Step()
		c.acc -= step
		n++
	}
	if n == c.cfg.MaxSteps && c.acc >= step {
		// Drop the backlog after a stall instead of spinning it out later.
		c.acc = 0
	}
	return n
}

// Angles returns the current yaw and pitch in radians.
func (c *Controller) Angles() (yaw, pitch float64) {
	return c.yaw, c.pitch
}

// Velocity returns the current yaw and pitch velocities per step.
func (c *Controller) Velocity() (yaw, pitch float64) {
	return c.velYaw, c.velPitch
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	return c.dragging
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
