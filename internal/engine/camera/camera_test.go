package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/snowglobe/pkg/math"
)

func TestCameraLooksAtTarget(t *testing.T) {
	c := Default(1.2)
	vp := c.ViewProj(16.0 / 9.0)

	// The target projects to the centre of the screen.
	p := vp.TransformPoint(c.Target)
	if gomath.Abs(float64(p.X)) > 1e-5 || gomath.Abs(float64(p.Y)) > 1e-5 {
		t.Errorf("expected target at screen centre, got %v", p)
	}
	if p.Z <= -1 || p.Z >= 1 {
		t.Errorf("expected target inside the depth range, got z=%f", p.Z)
	}
}

func TestCameraSeesWholeGlobe(t *testing.T) {
	c := Default(1.2)
	vp := c.ViewProj(16.0 / 9.0)

	for _, pt := range []math.Vec3{
		{X: 1.5, Y: 1.2}, {X: -1.5, Y: 1.2}, {Y: 2.7}, {Y: 1.2 - 1.5},
	} {
		p := vp.TransformPoint(pt)
		if gomath.Abs(float64(p.X)) > 1 || gomath.Abs(float64(p.Y)) > 1 {
			t.Errorf("point %v projects off screen: %v", pt, p)
		}
	}
}

func TestProjectionGuardsAspect(t *testing.T) {
	c := Default(1.2)
	if c.Projection(0) != c.Projection(1) {
		t.Error("expected zero aspect to fall back to 1")
	}
}

func TestGlobeTransform(t *testing.T) {
	m := GlobeTransform(1.2, 0, 0)
	p := m.TransformPoint(math.Vec3{})
	if p != (math.Vec3{Y: 1.2}) {
		t.Errorf("expected globe centre at y=1.2, got %v", p)
	}

	// Yaw spins the globe about its own vertical axis.
	m = GlobeTransform(0, 0, gomath.Pi/2)
	d := m.TransformDirection(math.Vec3{X: 1})
	if gomath.Abs(float64(d.Z)+1) > 1e-6 {
		t.Errorf("expected +X to turn to -Z, got %v", d)
	}

	// Pitch tips the top of the globe toward the camera.
	m = GlobeTransform(0, gomath.Pi/2, 0)
	d = m.TransformDirection(math.Up)
	if gomath.Abs(float64(d.Z)-1) > 1e-6 {
		t.Errorf("expected +Y to turn to +Z, got %v", d)
	}
}
