// Package globe drives one snowglobe scene: it owns the simulations, feeds
// them the frame clock and pointer input, and hands the renderer a snapshot
// of their state.
package globe

import (
	"context"
	"fmt"
	"image"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Faultbox/snowglobe/internal/background"
	"github.com/Faultbox/snowglobe/internal/billboard"
	"github.com/Faultbox/snowglobe/internal/engine/camera"
	"github.com/Faultbox/snowglobe/internal/logger"
	"github.com/Faultbox/snowglobe/internal/orient"
	"github.com/Faultbox/snowglobe/internal/snow"
	"github.com/Faultbox/snowglobe/pkg/math"
)

// Config holds the settings of every component.
type Config struct {
	SphereY    float64 // height of the globe centre
	Background background.Config
	Snow       snow.Config
	Orient     orient.Config
	Billboard  billboard.Config
	Layout     billboard.Layout
}

// DefaultConfig returns the stock scene.
func DefaultConfig() Config {
	return Config{
		SphereY:    1.2,
		Background: background.DefaultConfig(),
		Snow:       snow.DefaultConfig(),
		Orient:     orient.DefaultConfig(),
		Billboard:  billboard.DefaultConfig(),
		Layout:     billboard.DefaultLayout(),
	}
}

// Frame is a snapshot of everything the renderer draws.
type Frame struct {
	Globe      math.Mat4 // globe group transform
	Snow       []float32 // globe-local flake positions, xyz
	Billboard  billboard.Uniforms
	Background *image.RGBA // nil unless the canvas changed since the last Frame
}

// Globe owns the component instances of one scene.
type Globe struct {
	cfg    Config
	camera math.Vec3

	bg     *background.Animator
	snow   *snow.Simulator
	orient *orient.Controller
	sel    *billboard.Selector
	loader *billboard.Loader
	loaded bool // all stills settled

	dirty   bool
	redraws int
	log     *zap.Logger
}

// New creates a scene viewed from camera. rng seeds the background and the
// snow; pass a fixed source for reproducible runs.
func New(cfg Config, camera math.Vec3, rng *rand.Rand) (*Globe, error) {
	bg, err := background.New(cfg.Background, rng)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	points := billboard.BuildPoints(cfg.Layout)
	g := &Globe{
		cfg:    cfg,
		camera: camera,
		bg:     bg,
		snow:   snow.New(cfg.Snow, rng),
		orient: orient.New(cfg.Orient),
		sel:    billboard.NewSelector(points, cfg.Billboard),
		log:    logger.Named("globe"),
	}
	g.log.Debug("scene created",
		zap.Int("points", len(points)),
		zap.Int("flakes", cfg.Snow.Count),
	)
	return g, nil
}

// StartLoading begins decoding every still from src. Completions are applied
// by Update.
func (g *Globe) StartLoading(ctx context.Context, src billboard.Source, cfg billboard.LoaderConfig) *billboard.Loader {
	g.loader = billboard.NewLoader(src, g.sel, cfg)
	g.loaded = false
	g.loader.Start(ctx, g.sel.Points())
	return g.loader
}

// Resize rebuilds the background for a new viewport size.
func (g *Globe) Resize(width, height int) {
	g.bg.Build(width, height)
	g.bg.Draw()
	g.dirty = true
	g.redraws++
	w, h := g.bg.Size()
	g.log.Debug("background rebuilt",
		zap.Int("viewport_width", width),
		zap.Int("viewport_height", height),
		zap.Int("canvas_width", w),
		zap.Int("canvas_height", h),
		zap.Int("tiles", len(g.bg.Tiles())),
	)
}

// PointerDown starts a drag.
func (g *Globe) PointerDown(x, y float64) {
	g.orient.PointerDown(x, y)
}

// PointerMove feeds drag motion to the orientation.
func (g *Globe) PointerMove(x, y float64) {
	g.orient.PointerMove(x, y)
}

// PointerUp ends a drag.
func (g *Globe) PointerUp() {
	g.orient.PointerUp()
}

// Update advances the scene by dt seconds; t is the time since start. Loaded
// stills are uploaded with upload before the selector runs. It reports
// whether the background was redrawn.
func (g *Globe) Update(dt, t float64, upload billboard.UploadFunc) bool {
	if dt < 0 {
		dt = 0
	}

	g.orient.Tick(dt)

	if g.loader != nil && upload != nil {
		g.loader.Poll(upload)
		if !g.loaded && g.loader.Pending() == 0 {
			g.loaded = true
			g.log.Info("stills loaded",
				zap.Int("loaded", g.sel.LoadedCount()),
				zap.Int("failed", g.loader.Failed()),
			)
		}
	}
	yaw, pitch := g.orient.Angles()
	g.sel.Tick(pitch, yaw, dt, g.camera)

	redrawn := false
	if g.bg.Tick(dt) {
		g.bg.Draw()
		g.dirty = true
		g.redraws++
		redrawn = true
	}

	g.snow.Tick(t)
	return redrawn
}

// Frame returns the current snapshot. The background canvas is included
// only once per change.
func (g *Globe) Frame() Frame {
	yaw, pitch := g.orient.Angles()
	f := Frame{
		Globe:     camera.GlobeTransform(float32(g.cfg.SphereY), pitch, yaw),
		Snow:      g.snow.Positions(),
		Billboard: g.sel.Uniforms(),
	}
	if g.dirty {
		f.Background = g.bg.Canvas()
		g.dirty = false
	}
	return f
}

// Angles returns the globe yaw and pitch in radians.
func (g *Globe) Angles() (yaw, pitch float64) {
	return g.orient.Angles()
}

// Selector returns the billboard selector.
func (g *Globe) Selector() *billboard.Selector {
	return g.sel
}

// Loaded reports whether every still has been applied or has failed.
func (g *Globe) Loaded() bool {
	return g.loaded
}

// Redraws returns how many times the background canvas was redrawn.
func (g *Globe) Redraws() int {
	return g.redraws
}
