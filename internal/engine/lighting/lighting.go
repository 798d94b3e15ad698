// Package lighting describes the fixed light rig of the scene.
package lighting

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxPointLights is the maximum number of point lights supported in shaders.
const MaxPointLights = 4

// PointLight represents a point light source for GPU upload.
type PointLight struct {
	Position  [3]float32 // World position, or globe-local if Local
	Color     [3]float32 // RGB color (0-1 range)
	Range     float32    // Light cut-off distance; 0 means unlimited
	Intensity float32
	Decay     float32
	Local     bool // moves with the globe
}

// Attenuation returns the light falloff at distance d: inverse power decay
// with a smooth window that reaches zero at Range.
func (p PointLight) Attenuation(d float32) float32 {
	falloff := 1 / float32(math.Max(math.Pow(float64(d), float64(p.Decay)), 0.01))
	if p.Range > 0 {
		r := d / p.Range
		w := clamp01(1 - r*r*r*r)
		falloff *= w * w
	}
	return falloff
}

// Rig is the full light setup.
type Rig struct {
	Ambient  [3]float32 // color premultiplied by intensity
	SunDir   [3]float32 // normalized, pointing toward the light
	SunColor [3]float32 // color premultiplied by intensity
	Points   []PointLight
}

// Default returns the snowglobe rig: a cool ambient, a key light from the
// upper right, a bluish side light and a warm light inside the globe.
func Default() Rig {
	return Rig{
		Ambient:  Scaled(Hex("#8090b0"), 0.7),
		SunDir:   Direction(4, 6, 3),
		SunColor: Scaled(Hex("#ffffff"), 1.8),
		Points: []PointLight{
			{
				Position:  [3]float32{-2.5, 0.3, 2.5},
				Color:     Hex("#ddeeff"),
				Range:     15,
				Intensity: 40,
				Decay:     2,
			},
			{
				Position:  [3]float32{0, 0.08, 0},
				Color:     Hex("#ffeedd"),
				Range:     8,
				Intensity: 0.5,
				Decay:     2,
				Local:     true,
			},
		},
	}
}

// Hex parses a #rrggbb color. Malformed input yields white.
func Hex(s string) [3]float32 {
	c, err := colorful.Hex(s)
	if err != nil {
		return [3]float32{1, 1, 1}
	}
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}
}

// Scaled multiplies a color by an intensity.
func Scaled(c [3]float32, k float32) [3]float32 {
	return [3]float32{c[0] * k, c[1] * k, c[2] * k}
}

// Direction returns the normalized direction toward a light at (x, y, z).
func Direction(x, y, z float64) [3]float32 {
	l := math.Sqrt(x*x + y*y + z*z)
	if l == 0 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{float32(x / l), float32(y / l), float32(z / l)}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
