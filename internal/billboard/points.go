// Package billboard picks the still image whose capture direction best
// matches the globe's orientation and crossfades between picks.
package billboard

import (
	"fmt"
	gomath "math"
	"path"

	"github.com/Faultbox/snowglobe/pkg/math"
)

// Layout describes how stills are named and spread over the hemisphere.
// Each video id is one longitude; frame f of a video is latitude
// f/(FramesPerVideo-1) * pi/2. The top frame is only used once, for the pole.
type Layout struct {
	StillsDir      string
	VideoIDs       []int
	FramesPerVideo int
	PoleVideoID    int
	Ext            string
}

// DefaultLayout returns the stock still set: 11 longitudes of 9 latitudes
// plus the pole.
func DefaultLayout() Layout {
	return Layout{
		StillsDir:      "stills",
		VideoIDs:       []int{0, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		FramesPerVideo: 10,
		PoleVideoID:    0,
		Ext:            "png",
	}
}

// Point is a capture direction and the still taken from it.
type Point struct {
	Dir     math.Vec3
	Path    string
	Texture *Texture
}

// Loaded reports whether the point has a texture.
func (p *Point) Loaded() bool {
	return p.Texture != nil
}

// StillPath returns the asset path of frame f of a video.
func (l Layout) StillPath(videoID, frame int) string {
	ext := l.Ext
	if ext == "" {
		ext = "png"
	}
	return path.Join(l.StillsDir, fmt.Sprintf("video%d_%04d.%s", videoID, frame, ext))
}

// BuildPoints enumerates the capture points, pole last.
func BuildPoints(l Layout) []Point {
	n := len(l.VideoIDs)
	lat := l.FramesPerVideo - 1
	if lat < 1 {
		lat = 1
	}
	points := make([]Point, 0, n*lat+1)
	for vi, id := range l.VideoIDs {
		theta := float64(vi) / float64(n) * 2 * gomath.Pi
		for f := 0; f < l.FramesPerVideo-1; f++ {
			phi := float64(f) / float64(lat) * gomath.Pi / 2
			points = append(points, Point{
				Dir:  math.Spherical(theta, phi),
				Path: l.StillPath(id, f),
			})
		}
	}
	points = append(points, Point{
		Dir:  math.Up,
		Path: l.StillPath(l.PoleVideoID, l.FramesPerVideo-1),
	})
	return points
}

// Forward returns the direction the camera sees in globe-local space for a
// globe rotated by Rx(pitch)*Ry(yaw): the inverse rotation applied to +Z.
func Forward(pitch, yaw float64) math.Vec3 {
	sp, cp := gomath.Sincos(pitch)
	sy, cy := gomath.Sincos(yaw)
	return math.Vec3{
		X: float32(-cp * sy),
		Y: float32(sp),
		Z: float32(cp * cy),
	}
}
