// Package camera provides the fixed scene camera.
package camera

import (
	gomath "math"

	"github.com/Faultbox/snowglobe/pkg/math"
)

// Camera is the fixed viewpoint of the scene.
type Camera struct {
	Eye    math.Vec3
	Target math.Vec3
	FovY   float32 // degrees
	Near   float32
	Far    float32
}

// Default frames a globe centred at sphereY.
func Default(sphereY float32) Camera {
	return Camera{
		Eye:    math.Vec3{X: 0, Y: 1.5, Z: 7.5},
		Target: math.Vec3{X: 0, Y: sphereY + 0.2, Z: 0},
		FovY:   40,
		Near:   0.1,
		Far:    100,
	}
}

// View returns the view matrix.
func (c Camera) View() math.Mat4 {
	return math.LookAt(c.Eye, c.Target, math.Up)
}

// Projection returns the projection matrix for a viewport aspect ratio.
func (c Camera) Projection(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(c.FovY*gomath.Pi/180, aspect, c.Near, c.Far)
}

// ViewProj returns projection * view.
func (c Camera) ViewProj(aspect float32) math.Mat4 {
	return c.Projection(aspect).Mul(c.View())
}

// GlobeTransform places the globe at height y rotated by pitch about X then
// yaw about Y in its own frame (R = Rx(pitch) * Ry(yaw)).
func GlobeTransform(y float32, pitch, yaw float64) math.Mat4 {
	return math.Translate(0, y, 0).
		Mul(math.RotateX(float32(pitch))).
		Mul(math.RotateY(float32(yaw)))
}
