package math

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Aspect returns X/Y, or 0 when Y is zero.
func (v Vec2) Aspect() float32 {
	if v.Y == 0 {
		return 0
	}
	return v.X / v.Y
}
