package billboard

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	gomath "math"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/snowglobe/internal/assets"
	"github.com/Faultbox/snowglobe/pkg/math"
)

var camera = math.Vec3{X: 0, Y: 1.5, Z: 7.5}

func loadAll(s *Selector) {
	for i := range s.Points() {
		s.Apply(Loaded{Index: i, Texture: &Texture{ID: uint32(i + 1), Width: 16, Height: 9}})
	}
}

func TestBuildPointsDefaultLayout(t *testing.T) {
	points := BuildPoints(DefaultLayout())
	require.Len(t, points, 100)

	assert.Equal(t, "stills/video0_0000.png", points[0].Path)
	assert.Equal(t, "stills/video0_0008.png", points[8].Path)
	assert.Equal(t, "stills/video2_0000.png", points[9].Path)
	assert.Equal(t, "stills/video11_0008.png", points[98].Path)

	pole := points[99]
	assert.Equal(t, "stills/video0_0009.png", pole.Path)
	assert.Equal(t, math.Up, pole.Dir)

	for i, p := range points {
		assert.InDelta(t, 1, float64(p.Dir.Length()), 1e-6, "point %d", i)
		assert.GreaterOrEqual(t, p.Dir.Y, float32(0), "point %d", i)
		assert.False(t, p.Loaded())
	}

	// Equator of the first longitude looks down +Z; frame 8 is 80 degrees up.
	assert.InDelta(t, 1, float64(points[0].Dir.Z), 1e-6)
	assert.InDelta(t, gomath.Sin(8.0/9*gomath.Pi/2), float64(points[8].Dir.Y), 1e-6)
}

func TestStillPathExtension(t *testing.T) {
	l := DefaultLayout()
	l.Ext = "webp"
	assert.Equal(t, "stills/video3_0012.webp", l.StillPath(3, 12))
	l.Ext = ""
	assert.Equal(t, "stills/video3_0012.png", l.StillPath(3, 12))
}

func TestForward(t *testing.T) {
	tests := []struct {
		name       string
		pitch, yaw float64
		want       math.Vec3
	}{
		{"rest", 0, 0, math.Vec3{Z: 1}},
		{"quarter yaw", 0, gomath.Pi / 2, math.Vec3{X: -1}},
		{"top", gomath.Pi / 2, 0, math.Vec3{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Forward(tt.pitch, tt.yaw)
			assert.InDelta(t, tt.want.X, got.X, 1e-6)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-6)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-6)
		})
	}

	// The forward vector is the globe's inverse rotation applied to +Z.
	pitch, yaw := 0.4, -1.1
	r := math.RotateX(float32(pitch)).Mul(math.RotateY(float32(yaw)))
	back := r.TransformDirection(Forward(pitch, yaw))
	assert.InDelta(t, 0, back.X, 1e-5)
	assert.InDelta(t, 0, back.Y, 1e-5)
	assert.InDelta(t, 1, back.Z, 1e-5)
}

func TestSelectorEmptyKeepsState(t *testing.T) {
	s := NewSelector(BuildPoints(DefaultLayout()), DefaultConfig())
	for i := 0; i < 10; i++ {
		s.Tick(0.3, 1.2, 1.0/60, camera)
	}

	assert.Equal(t, -1, s.Current())
	fade := s.Crossfade()
	assert.Equal(t, 1.0, fade.Blend)
	assert.Nil(t, fade.Cur)
	assert.Nil(t, fade.Prev)
	assert.Zero(t, s.Changes())
}

func TestSelectorPicksPole(t *testing.T) {
	s := NewSelector(BuildPoints(DefaultLayout()), DefaultConfig())
	loadAll(s)

	s.Tick(gomath.Pi/2-0.01, 0.7, 1.0/60, camera)
	assert.Equal(t, s.PoleIndex(), s.Current())
	assert.Equal(t, 99, s.Current())

	want := math.FaceTowards(DefaultConfig().Center, camera).Mul(math.RotateZ(0.7))
	assert.Equal(t, want, s.Model())
}

func TestNearestStraightUpIsPole(t *testing.T) {
	s := NewSelector(BuildPoints(DefaultLayout()), DefaultConfig())
	loadAll(s)
	require.Len(t, s.Points(), 100)

	assert.Equal(t, 99, s.Nearest(math.Up))
	assert.Equal(t, 99, s.Nearest(Forward(gomath.Pi/2, 0)))

	s.Tick(gomath.Pi/2, 0, 1.0/60, camera)
	assert.Equal(t, 99, s.Current())
}

func TestSelectorFacesCamera(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSelector(BuildPoints(DefaultLayout()), cfg)
	loadAll(s)
	s.Tick(0, 0.5, 1.0/60, camera)

	require.NotEqual(t, s.PoleIndex(), s.Current())
	z := s.Model().TransformDirection(math.Vec3{Z: 1})
	want := camera.Sub(cfg.Center).Normalize()
	assert.InDelta(t, want.X, z.X, 1e-5)
	assert.InDelta(t, want.Y, z.Y, 1e-5)
	assert.InDelta(t, want.Z, z.Z, 1e-5)

	origin := s.Model().TransformPoint(math.Vec3{})
	assert.Equal(t, cfg.Center, origin)
}

func TestSelectorDeterministic(t *testing.T) {
	a := NewSelector(BuildPoints(DefaultLayout()), DefaultConfig())
	b := NewSelector(BuildPoints(DefaultLayout()), DefaultConfig())
	loadAll(a)
	loadAll(b)

	for i := 0; i < 200; i++ {
		pitch := float64(i%50) / 50 * gomath.Pi / 2
		yaw := float64(i) * 0.07
		a.Tick(pitch, yaw, 1.0/60, camera)
		b.Tick(pitch, yaw, 1.0/60, camera)
		require.Equal(t, a.Crossfade(), b.Crossfade())
		require.Equal(t, a.Uniforms(), b.Uniforms())
	}
}

func TestSelectorSkipsUnloaded(t *testing.T) {
	s := NewSelector(BuildPoints(DefaultLayout()), DefaultConfig())
	// Only the equator frame of the second longitude is available.
	tex := &Texture{ID: 7}
	require.True(t, s.Apply(Loaded{Index: 9, Texture: tex}))

	s.Tick(0, 0, 1.0/60, camera)
	assert.Equal(t, 9, s.Current())
	assert.Same(t, tex, s.Crossfade().Cur)
	assert.Same(t, tex, s.Crossfade().Prev)
}

func TestSelectorTieKeepsFirst(t *testing.T) {
	points := []Point{
		{Dir: math.Vec3{Z: 1}, Path: "a"},
		{Dir: math.Vec3{Z: 1}, Path: "b"},
		{Dir: math.Up, Path: "pole"},
	}
	s := NewSelector(points, DefaultConfig())
	s.Apply(Loaded{Index: 1, Texture: &Texture{ID: 2}})
	s.Apply(Loaded{Index: 0, Texture: &Texture{ID: 1}})

	s.Tick(0, 0, 0, camera)
	assert.Equal(t, 0, s.Current())
}

func TestCrossfade(t *testing.T) {
	layout := DefaultLayout()
	s := NewSelector(BuildPoints(layout), DefaultConfig())
	tex0 := &Texture{ID: 1}
	tex9 := &Texture{ID: 2}
	s.Apply(Loaded{Index: 0, Texture: tex0})

	const dt = 1.0 / 60
	s.Tick(0, 0, dt, camera)
	fade := s.Crossfade()
	assert.Equal(t, 0, fade.Current)
	assert.Same(t, tex0, fade.Prev)
	assert.Same(t, tex0, fade.Cur)
	assert.InDelta(t, 8*dt, fade.Blend, 1e-12)

	last := fade.Blend
	for i := 0; i < 20; i++ {
		s.Tick(0, 0, dt, camera)
		b := s.Crossfade().Blend
		require.GreaterOrEqual(t, b, last)
		require.LessOrEqual(t, b, 1.0)
		last = b
	}
	assert.Equal(t, 1.0, last)

	// Turn to the second longitude once its still arrives.
	s.Apply(Loaded{Index: 9, Texture: tex9})
	theta := 1.0 / float64(len(layout.VideoIDs)) * 2 * gomath.Pi
	s.Tick(0, -theta, dt, camera)

	fade = s.Crossfade()
	assert.Equal(t, 9, fade.Current)
	assert.Same(t, tex0, fade.Prev)
	assert.Same(t, tex9, fade.Cur)
	assert.InDelta(t, 8*dt, fade.Blend, 1e-12)
	assert.Equal(t, 2, s.Changes())

	// Big frame gaps clamp at 1.
	s.Tick(0, -theta, 5, camera)
	assert.Equal(t, 1.0, s.Crossfade().Blend)
}

func TestApplyFixesAspectOnce(t *testing.T) {
	s := NewSelector(BuildPoints(DefaultLayout()), DefaultConfig())
	assert.InDelta(t, 16.0/9.0, s.Aspect(), 1e-12)

	assert.False(t, s.Apply(Loaded{Index: -1, Texture: &Texture{}}))
	assert.False(t, s.Apply(Loaded{Index: 100, Texture: &Texture{}}))
	assert.False(t, s.Apply(Loaded{Index: 3}))

	// Unknown size does not fix the aspect.
	assert.True(t, s.Apply(Loaded{Index: 3, Texture: &Texture{ID: 1}}))
	assert.InDelta(t, 16.0/9.0, s.Aspect(), 1e-12)

	assert.True(t, s.Apply(Loaded{Index: 4, Texture: &Texture{ID: 2, Width: 100, Height: 50}}))
	assert.True(t, s.Apply(Loaded{Index: 5, Texture: &Texture{ID: 3, Width: 16, Height: 9}}))
	assert.InDelta(t, 2.0, s.Aspect(), 1e-12)
	assert.Equal(t, 3, s.LoadedCount())

	w, h := s.PlaneSize()
	assert.InDelta(t, 2.8, h, 1e-12)
	assert.InDelta(t, 5.6, w, 1e-12)

	u := s.Uniforms()
	assert.InDelta(t, 1.4, float64(u.EdgeRadius), 1e-6)
	assert.InDelta(t, 5.6, float64(u.PlaneW), 1e-6)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func smallLayout() Layout {
	return Layout{StillsDir: "stills", VideoIDs: []int{0, 1}, FramesPerVideo: 3, Ext: "png"}
}

func TestLoaderAppliesOutOfOrder(t *testing.T) {
	points := BuildPoints(smallLayout())
	require.Len(t, points, 5)

	files := fstest.MapFS{}
	for i, p := range points {
		// Width encodes the index so each texture can be traced back.
		files[p.Path] = &fstest.MapFile{Data: encodePNG(t, 10+i, 5)}
	}
	delete(files, points[2].Path)
	files[points[3].Path] = &fstest.MapFile{Data: []byte("garbage")}

	mgr := assets.NewManager()
	mgr.AddFS("test", files)

	s := NewSelector(points, DefaultConfig())
	l := NewLoader(mgr, s, LoaderConfig{Workers: 3})
	l.Start(context.Background(), points)
	require.NoError(t, l.Wait())

	next := uint32(0)
	applied := l.Poll(func(d Decoded) (*Texture, error) {
		next++
		b := d.Image.Bounds()
		return &Texture{ID: next, Width: b.Dx(), Height: b.Dy()}, nil
	})

	assert.Equal(t, 3, applied)
	assert.Equal(t, 2, l.Failed())
	assert.Equal(t, 0, l.Pending())
	assert.Equal(t, 3, s.LoadedCount())

	for _, i := range []int{0, 1, 4} {
		require.True(t, points[i].Loaded(), "point %d", i)
		assert.Equal(t, 10+i, points[i].Texture.Width)
	}
	assert.False(t, points[2].Loaded())
	assert.False(t, points[3].Loaded())

	// Drained and closed: further polls are no-ops.
	assert.Zero(t, l.Poll(func(Decoded) (*Texture, error) { t.Fatal("unexpected upload"); return nil, nil }))
}

func TestLoaderUploadFailure(t *testing.T) {
	points := BuildPoints(smallLayout())
	files := fstest.MapFS{}
	for _, p := range points {
		files[p.Path] = &fstest.MapFile{Data: encodePNG(t, 4, 4)}
	}
	mgr := assets.NewManager()
	mgr.AddFS("test", files)

	s := NewSelector(points, DefaultConfig())
	l := NewLoader(mgr, s, LoaderConfig{Workers: 2})
	l.Start(context.Background(), points)
	require.NoError(t, l.Wait())

	applied := l.Poll(func(d Decoded) (*Texture, error) {
		if d.Index == 0 {
			return nil, errors.New("out of texture memory")
		}
		return &Texture{ID: uint32(d.Index + 1), Width: 4, Height: 4}, nil
	})
	assert.Equal(t, len(points)-1, applied)
	assert.Equal(t, 1, l.Failed())
	assert.False(t, points[0].Loaded())
}

func TestLoaderDownscales(t *testing.T) {
	points := BuildPoints(Layout{StillsDir: "s", VideoIDs: []int{0}, FramesPerVideo: 2})
	files := fstest.MapFS{}
	for _, p := range points {
		files[p.Path] = &fstest.MapFile{Data: encodePNG(t, 64, 32)}
	}
	mgr := assets.NewManager()
	mgr.AddFS("test", files)

	s := NewSelector(points, DefaultConfig())
	l := NewLoader(mgr, s, LoaderConfig{Workers: 1, MaxTextureSide: 16})
	l.Start(context.Background(), points)
	require.NoError(t, l.Wait())

	l.Poll(func(d Decoded) (*Texture, error) {
		assert.Equal(t, image.Rect(0, 0, 16, 8), d.Image.Bounds())
		return &Texture{ID: 1, Width: 16, Height: 8}, nil
	})
	assert.InDelta(t, 2.0, s.Aspect(), 1e-12)
}

func TestLoaderCancelled(t *testing.T) {
	points := BuildPoints(DefaultLayout())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSelector(points, DefaultConfig())
	l := NewLoader(assets.NewManager(), s, LoaderConfig{Workers: 4})
	l.Start(ctx, points)

	assert.ErrorIs(t, l.Wait(), context.Canceled)
	assert.Zero(t, l.Poll(func(Decoded) (*Texture, error) { return &Texture{}, nil }))
	assert.Zero(t, s.LoadedCount())
	assert.Zero(t, l.Pending())
	assert.Zero(t, l.Failed())
}

func TestPollBeforeStart(t *testing.T) {
	l := NewLoader(assets.NewManager(), NewSelector(nil, DefaultConfig()), LoaderConfig{})
	assert.Zero(t, l.Poll(nil))
	assert.NoError(t, l.Wait())
}
