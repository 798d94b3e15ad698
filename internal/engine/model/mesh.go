package model

import (
	gomath "math"

	"github.com/Faultbox/snowglobe/pkg/math"
)

// Dome builds a sphere cap around +Y covering polar angles [0, thetaLength].
// widthSegments run around Y, heightSegments from the pole down.
func Dome(radius float32, thetaLength float64, widthSegments, heightSegments int) *Mesh {
	m := &Mesh{Bounds: emptyBounds()}
	grid := make([][]uint32, heightSegments+1)

	for iy := 0; iy <= heightSegments; iy++ {
		v := float32(iy) / float32(heightSegments)
		st, ct := sincos(float64(v) * thetaLength)
		grid[iy] = make([]uint32, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)
			sp, cp := sincos(float64(u) * 2 * gomath.Pi)
			n := [3]float32{-cp * st, ct, sp * st}
			grid[iy][ix] = m.add(Vertex{
				Position: [3]float32{n[0] * radius, n[1] * radius, n[2] * radius},
				Normal:   n,
				TexCoord: [2]float32{u, 1 - v},
			})
		}
	}

	thetaEnd := thetaLength >= gomath.Pi
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				m.Indices = append(m.Indices, a, b, d)
			}
			if iy != heightSegments-1 || !thetaEnd {
				m.Indices = append(m.Indices, b, c, d)
			}
		}
	}
	return m
}

// Frustum builds a closed truncated cone around Y centred at the origin,
// radiusTop at +height/2 and radiusBottom at -height/2.
func Frustum(radiusTop, radiusBottom, height float32, segments int) *Mesh {
	m := &Mesh{Bounds: emptyBounds()}
	half := height / 2
	slope := (radiusBottom - radiusTop) / height

	var top, bottom []uint32
	for y := 0; y <= 1; y++ {
		r := radiusTop
		py := half
		if y == 1 {
			r, py = radiusBottom, -half
		}
		row := make([]uint32, segments+1)
		for x := 0; x <= segments; x++ {
			u := float32(x) / float32(segments)
			s, c := sincos(float64(u) * 2 * gomath.Pi)
			row[x] = m.add(Vertex{
				Position: [3]float32{r * s, py, r * c},
				Normal:   Normalize([3]float32{s, slope, c}),
				TexCoord: [2]float32{u, 1 - float32(y)},
			})
		}
		if y == 0 {
			top = row
		} else {
			bottom = row
		}
	}
	for x := 0; x < segments; x++ {
		a, b, c, d := top[x], bottom[x], bottom[x+1], top[x+1]
		m.Indices = append(m.Indices, a, b, d, b, c, d)
	}

	m.cap(radiusTop, half, segments, true)
	m.cap(radiusBottom, -half, segments, false)
	return m
}

func (m *Mesh) cap(radius, y float32, segments int, top bool) {
	ny := float32(1)
	if !top {
		ny = -1
	}
	center := m.add(Vertex{
		Position: [3]float32{0, y, 0},
		Normal:   [3]float32{0, ny, 0},
		TexCoord: [2]float32{0.5, 0.5},
	})
	ring := make([]uint32, segments+1)
	for x := 0; x <= segments; x++ {
		s, c := sincos(float64(x) / float64(segments) * 2 * gomath.Pi)
		ring[x] = m.add(Vertex{
			Position: [3]float32{radius * s, y, radius * c},
			Normal:   [3]float32{0, ny, 0},
			TexCoord: [2]float32{s*0.5 + 0.5, c*0.5 + 0.5},
		})
	}
	for x := 0; x < segments; x++ {
		if top {
			m.Indices = append(m.Indices, center, ring[x], ring[x+1])
		} else {
			m.Indices = append(m.Indices, center, ring[x+1], ring[x])
		}
	}
}

// Disc builds a flat circle in the XY plane facing +Z.
func Disc(radius float32, segments int) *Mesh {
	m := &Mesh{Bounds: emptyBounds()}
	center := m.add(Vertex{Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0.5, 0.5}})
	first := uint32(len(m.Vertices))
	for i := 0; i <= segments; i++ {
		s, c := sincos(float64(i) / float64(segments) * 2 * gomath.Pi)
		m.add(Vertex{
			Position: [3]float32{radius * c, radius * s, 0},
			Normal:   [3]float32{0, 0, 1},
			TexCoord: [2]float32{c*0.5 + 0.5, s*0.5 + 0.5},
		})
	}
	for i := uint32(0); i < uint32(segments); i++ {
		m.Indices = append(m.Indices, center, first+i, first+i+1)
	}
	return m
}

// Transform applies a rigid transform to the mesh in place.
func (m *Mesh) Transform(t math.Mat4) *Mesh {
	m.Bounds = emptyBounds()
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = TransformPoint(t, v.Position)
		v.Normal = transformNormal(t, v.Normal)
		updateBounds(&m.Bounds, v.Position)
	}
	return m
}

// Append merges other into m.
func (m *Mesh) Append(other *Mesh) *Mesh {
	base := uint32(len(m.Vertices))
	for _, v := range other.Vertices {
		m.add(v)
	}
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
	return m
}

func (m *Mesh) add(v Vertex) uint32 {
	m.Vertices = append(m.Vertices, v)
	updateBounds(&m.Bounds, v.Position)
	return uint32(len(m.Vertices) - 1)
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
