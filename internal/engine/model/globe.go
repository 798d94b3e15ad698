package model

import (
	gomath "math"

	"github.com/Faultbox/snowglobe/pkg/math"
)

// GlobeShape describes the snowglobe in its local frame, centred on the
// sphere.
type GlobeShape struct {
	SphereRadius float64
	DomeTheta    float64 // polar angle where the glass is cut
	GroundOffset float64 // snow floor height above the cut
	BaseHeight   float64
}

// DefaultGlobeShape returns the stock globe proportions.
func DefaultGlobeShape() GlobeShape {
	return GlobeShape{
		SphereRadius: 1.5,
		DomeTheta:    gomath.Pi * 0.7,
		GroundOffset: 0.05,
		BaseHeight:   0.5,
	}
}

// CutY is the height of the glass rim.
func (g GlobeShape) CutY() float32 {
	return float32(g.SphereRadius * gomath.Cos(g.DomeTheta))
}

// CutRadius is the radius of the glass rim.
func (g GlobeShape) CutRadius() float32 {
	return float32(g.SphereRadius * gomath.Sin(g.DomeTheta))
}

// Glass builds the dome.
func (g GlobeShape) Glass() *Mesh {
	return Dome(float32(g.SphereRadius), g.DomeTheta, 64, 64)
}

// Base builds the stem and foot under the rim.
func (g GlobeShape) Base() *Mesh {
	cutY, cutR := g.CutY(), g.CutRadius()
	h := float32(g.BaseHeight)

	stem := Frustum(cutR, cutR*0.35, h, 32).Transform(math.Translate(0, cutY-h/2, 0))
	foot := Frustum(cutR*0.35, cutR*0.48, 0.1, 32).Transform(math.Translate(0, cutY-h-0.05, 0))
	return stem.Append(foot)
}

// Ground builds the snow floor inside the dome.
func (g GlobeShape) Ground() *Mesh {
	y := g.CutY() + float32(g.GroundOffset)
	t := math.Translate(0, y, 0).Mul(math.RotateX(-gomath.Pi / 2))
	return Disc(g.CutRadius()*0.88, 64).Transform(t)
}
