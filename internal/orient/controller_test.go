package orient

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveWithoutDragIgnored(t *testing.T) {
	c := New(DefaultConfig())
	c.PointerMove(100, 100)
	c.Step()

	yaw, pitch := c.Angles()
	assert.Zero(t, yaw)
	assert.Zero(t, pitch)
	assert.False(t, c.Dragging())
}

func TestHorizontalDragDrivesYaw(t *testing.T) {
	c := New(DefaultConfig())
	c.PointerDown(0, 0)
	c.PointerMove(10, 0)
	require.True(t, c.Dragging())

	c.Step()

	// force 10*0.002 = 0.02, under the yaw cap
	yaw, pitch := c.Angles()
	assert.InDelta(t, 0.02, yaw, 1e-12)
	assert.Zero(t, pitch)
	vy, _ := c.Velocity()
	assert.InDelta(t, 0.02*0.92, vy, 1e-12)
}

func TestVerticalDragDrivesPitch(t *testing.T) {
	c := New(DefaultConfig())
	c.PointerDown(0, 0)
	c.PointerMove(0, 10)
	c.Step()

	yaw, pitch := c.Angles()
	assert.Zero(t, yaw)
	assert.InDelta(t, 0.01, pitch, 1e-12)
}

func TestVelocityClamped(t *testing.T) {
	cfg := DefaultConfig()
	c := New(cfg)
	c.PointerDown(0, 0)
	c.PointerMove(10000, 10000)
	c.Step()

	yaw, pitch := c.Angles()
	assert.InDelta(t, cfg.MaxSpeedYaw, yaw, 1e-12)
	assert.InDelta(t, cfg.MaxSpeedPitch, pitch, 1e-12)
	vy, vp := c.Velocity()
	assert.InDelta(t, cfg.MaxSpeedYaw*cfg.Damping, vy, 1e-12)
	assert.InDelta(t, cfg.MaxSpeedPitch*cfg.Damping, vp, 1e-12)
}

func TestPitchClampedToRange(t *testing.T) {
	cfg := DefaultConfig()
	c := New(cfg)
	c.PointerDown(0, 0)

	y := 0.0
	for i := 0; i < 500; i++ {
		y += 50
		c.PointerMove(0, y)
		c.Step()
		_, pitch := c.Angles()
		require.GreaterOrEqual(t, pitch, 0.0)
		require.LessOrEqual(t, pitch, cfg.MaxPitch)
	}
	_, pitch := c.Angles()
	assert.InDelta(t, cfg.MaxPitch, pitch, 1e-12)

	for i := 0; i < 500; i++ {
		y -= 50
		c.PointerMove(0, y)
		c.Step()
		_, pitch := c.Angles()
		require.GreaterOrEqual(t, pitch, 0.0)
	}
	_, pitch = c.Angles()
	assert.Zero(t, pitch)
}

func TestVelocityDecaysAfterRelease(t *testing.T) {
	cfg := DefaultConfig()
	c := New(cfg)
	c.PointerDown(0, 0)
	c.PointerMove(20, 0)
	c.Step()
	c.PointerUp()

	v0, _ := c.Velocity()
	for k := 1; k <= 50; k++ {
		c.Step()
		vk, _ := c.Velocity()
		assert.InDelta(t, v0*math.Pow(cfg.Damping, float64(k)), vk, 1e-12)
	}
}

func TestReverseBrake(t *testing.T) {
	cfg := DefaultConfig()
	c := New(cfg)
	c.PointerDown(0, 0)
	c.PointerMove(10, 0)
	c.Step()
	v0, _ := c.Velocity()

	// Small push in the opposite direction: brake, then add the force.
	c.PointerMove(9, 0)
	c.Step()
	v1, _ := c.Velocity()
	assert.InDelta(t, (v0*cfg.ReverseBrake-cfg.ForceScaleYaw)*cfg.Damping, v1, 1e-12)
}

func TestForceIsConsumedOnce(t *testing.T) {
	c := New(DefaultConfig())
	c.PointerDown(0, 0)
	c.PointerMove(5, 0)
	c.PointerMove(10, 0)
	c.Step()
	yaw1, _ := c.Angles()
	assert.InDelta(t, 0.02, yaw1, 1e-12)

	c.Step()
	yaw2, _ := c.Angles()
	assert.InDelta(t, 0.02+0.02*0.92, yaw2, 1e-12)
}

func TestTickRunsFixedSteps(t *testing.T) {
	c := New(DefaultConfig())

	assert.Equal(t, 0, c.Tick(0))
	assert.Equal(t, 0, c.Tick(-1))
	assert.Equal(t, 0, c.Tick(0.01))
	assert.Equal(t, 1, c.Tick(0.01))  // 0.02 accumulated
	assert.Equal(t, 2, c.Tick(1.0/30)) // 0.00333 + 0.0333
}

func TestTickCapsCatchUp(t *testing.T) {
	cfg := DefaultConfig()
	c := New(cfg)
	assert.Equal(t, cfg.MaxSteps, c.Tick(10))
	assert.Equal(t, 0, c.Tick(0.001))
}

func TestTickMatchesSteps(t *testing.T) {
	a := New(DefaultConfig())
	b := New(DefaultConfig())
	for _, c := range []*Controller{a, b} {
		c.PointerDown(0, 0)
		c.PointerMove(15, 8)
		c.PointerUp()
	}

	for i := 0; i < 30; i++ {
		a.Step()
	}
	// 30 steps delivered as 15 frames at 30 Hz.
	n := 0
	for i := 0; i < 15; i++ {
		n += b.Tick(1.0 / 30)
	}
	require.Equal(t, 30, n)

	ya, pa := a.Angles()
	yb, pb := b.Angles()
	assert.InDelta(t, ya, yb, 1e-12)
	assert.InDelta(t, pa, pb, 1e-12)
}

func TestTickDecayHappensPerStep(t *testing.T) {
	c := New(DefaultConfig())
	c.PointerDown(0, 0)
	c.PointerMove(10, 0)
	c.PointerUp()
	require.Equal(t, 1, c.Tick(1.0/60))
	v0, _ := c.Velocity()

	// 144 Hz frames: only frames that complete a step decay the velocity.
	prev := v0
	steps := 0
	for i := 0; i < 13; i++ {
		n := c.Tick(1.0 / 144)
		v, _ := c.Velocity()
		if n == 0 {
			assert.Equal(t, prev, v)
		} else {
			assert.Less(t, math.Abs(v), math.Abs(prev))
		}
		steps += n
		prev = v
	}
	assert.Equal(t, 5, steps)
	assert.InDelta(t, v0*math.Pow(0.92, 5), prev, 1e-12)
}
