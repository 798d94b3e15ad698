// Package game runs the snowglobe viewer: window, frame loop and the
// services around the scene.
package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/snowglobe/internal/assets"
	"github.com/Faultbox/snowglobe/internal/billboard"
	"github.com/Faultbox/snowglobe/internal/config"
	"github.com/Faultbox/snowglobe/internal/engine/audio"
	"github.com/Faultbox/snowglobe/internal/engine/camera"
	"github.com/Faultbox/snowglobe/internal/engine/debug"
	"github.com/Faultbox/snowglobe/internal/engine/input"
	"github.com/Faultbox/snowglobe/internal/engine/model"
	"github.com/Faultbox/snowglobe/internal/engine/renderer"
	"github.com/Faultbox/snowglobe/internal/engine/window"
	"github.com/Faultbox/snowglobe/internal/globe"
	"github.com/Faultbox/snowglobe/internal/logger"
	"github.com/Faultbox/snowglobe/internal/telemetry"
)

// Title is the window title.
const Title = "Snowglobe"

// maxTextureSide caps decoded stills before upload.
const maxTextureSide = 2048

// Game is the viewer instance.
type Game struct {
	config  *config.Config
	running bool
	log     *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	assets      *assets.Manager
	scene       *globe.Globe
	loader      *billboard.Loader
	cancelLoads context.CancelFunc

	audio       *audio.Manager
	screenshots *debug.Screenshots
	stats       *telemetry.Collector
	statsOut    *telemetry.Output
}

// New creates the window, renderer and scene and starts loading stills.
func New(cfg *config.Config) (*Game, error) {
	log := logger.Named("game")
	log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Bool("fullscreen", cfg.Graphics.Fullscreen),
		zap.Int("pixel_size", cfg.Graphics.PixelSize),
	)

	sceneCfg, err := globe.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid scene config: %w", err)
	}

	g := &Game{
		config:      cfg,
		log:         log,
		assets:      assets.NewManager(),
		screenshots: debug.NewScreenshots("screenshots", "snowglobe"),
	}
	for _, root := range cfg.Billboard.AssetRoots {
		if err := g.assets.AddRoot(root); err != nil {
			log.Warn("skipping asset root", zap.String("root", root), zap.Error(err))
		}
	}

	// Create window (this also creates OpenGL context)
	g.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	winW, winH := g.window.GetSize()
	drawW, drawH := g.window.DrawableSize()

	seed := cfg.Scene.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cam := camera.Default(float32(sceneCfg.SphereY))
	g.scene, err = globe.New(sceneCfg, cam.Eye, rand.New(rand.NewSource(seed)))
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	shape := model.DefaultGlobeShape()
	shape.SphereRadius = cfg.Scene.SphereRadius
	rcfg := renderer.DefaultConfig()
	rcfg.Width, rcfg.Height = drawW, drawH
	rcfg.PixelSize = cfg.Graphics.PixelSize
	g.renderer, err = renderer.New(rcfg, cam, shape, float32(g.scene.Selector().EdgeRadius()))
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.input = input.New(winW, winH)
	g.scene.Resize(winW, winH)

	ctx, cancel := context.WithCancel(context.Background())
	g.cancelLoads = cancel
	g.loader = g.scene.StartLoading(ctx, g.assets, billboard.LoaderConfig{
		Workers:        cfg.Billboard.LoadWorkers,
		MaxTextureSide: maxTextureSide,
	})

	g.statsOut, err = telemetry.NewOutput(cfg.Telemetry.Dir)
	if err != nil {
		log.Warn("telemetry disabled", zap.Error(err))
	}
	g.stats = telemetry.NewCollector(cfg.Telemetry.WindowSeconds, g.statsOut)

	g.startMusic()

	log.Info("viewer initialized",
		zap.Int64("seed", seed),
		zap.Strings("asset_roots", g.assets.Roots()),
		zap.Int("stills", len(g.scene.Selector().Points())),
	)
	return g, nil
}

func (g *Game) startMusic() {
	track := g.config.Audio.Music
	if track == "" {
		return
	}
	data, err := g.assets.Load(track)
	if err != nil {
		g.log.Warn("music not found", zap.String("track", track), zap.Error(err))
		return
	}
	g.audio = audio.New(g.config.Audio.Volume, g.config.Audio.Muted)
	if err := g.audio.Init(); err != nil {
		g.log.Warn("audio unavailable", zap.Error(err))
		g.audio = nil
		return
	}
	if err := g.audio.PlayLoop(track, data); err != nil {
		g.log.Warn("music playback failed", zap.String("track", track), zap.Error(err))
	}
}

// Run starts the frame loop and returns when the window is closed.
func (g *Game) Run() error {
	g.running = true

	start := time.Now()
	lastTime := start

	g.log.Info("starting frame loop")

	for g.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Process input
		if g.input.Update() {
			g.running = false
			break
		}
		if err := g.handleEvents(); err != nil {
			return err
		}

		// 2. Advance the scene
		redrawn := g.scene.Update(dt, now.Sub(start).Seconds(), g.upload)

		// 3. Render
		f := g.scene.Frame()
		g.renderer.Render(renderer.Frame{
			Globe:      f.Globe,
			Snow:       f.Snow,
			Billboard:  f.Billboard,
			Background: f.Background,
		})

		// 4. Present (swap buffers)
		g.window.SwapBuffers()

		sel := g.scene.Selector()
		g.stats.Record(telemetry.Sample{
			Now:     now.Sub(start).Seconds(),
			Dt:      dt,
			Redrawn: redrawn,
			Loaded:  sel.LoadedCount(),
			Changes: sel.Changes(),
		})
	}

	return nil
}

func (g *Game) handleEvents() error {
	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			if err := g.resize(event.Width, event.Height); err != nil {
				return fmt.Errorf("resize: %w", err)
			}
		case input.EventKeyDown:
			g.handleKey(event.Key)
		case input.EventPointerDown:
			g.scene.PointerDown(event.X, event.Y)
		case input.EventPointerMove:
			g.scene.PointerMove(event.X, event.Y)
		case input.EventPointerUp:
			g.scene.PointerUp()
		}
	}
	return nil
}

func (g *Game) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		g.running = false
	case sdl.SCANCODE_F12:
		g.screenshot()
	case sdl.SCANCODE_M:
		if g.audio != nil {
			g.log.Info("music muted", zap.Bool("muted", g.audio.ToggleMute()))
		}
	}
}

// resize rebuilds the background for the new window size and resizes the
// render targets to the drawable size.
func (g *Game) resize(width, height int) error {
	drawW, drawH := g.window.DrawableSize()
	g.log.Debug("window resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("drawable_width", drawW),
		zap.Int("drawable_height", drawH),
	)
	g.scene.Resize(width, height)
	return g.renderer.Resize(drawW, drawH)
}

func (g *Game) upload(d billboard.Decoded) (*billboard.Texture, error) {
	return g.renderer.UploadTexture(d.Image)
}

func (g *Game) screenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.screenshots.Capture(pixels, w, h)
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up viewer resources.
func (g *Game) Close() {
	g.log.Info("closing viewer")

	if g.cancelLoads != nil {
		g.cancelLoads()
	}
	if g.loader != nil {
		if err := g.loader.Wait(); err != nil {
			g.log.Debug("still loading cancelled", zap.Error(err))
		}
	}
	if g.audio != nil {
		g.audio.Close()
	}
	if err := g.statsOut.Close(); err != nil {
		g.log.Warn("closing telemetry", zap.Error(err))
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
	g.assets.Close()
}
