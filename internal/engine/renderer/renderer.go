// Package renderer draws the snowglobe scene with OpenGL.
package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/snowglobe/internal/billboard"
	"github.com/Faultbox/snowglobe/internal/engine/camera"
	"github.com/Faultbox/snowglobe/internal/engine/framebuffer"
	"github.com/Faultbox/snowglobe/internal/engine/lighting"
	"github.com/Faultbox/snowglobe/internal/engine/model"
	"github.com/Faultbox/snowglobe/internal/logger"
	"github.com/Faultbox/snowglobe/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int // drawable size in pixels
	Height     int
	PixelSize  int // 1 draws at full resolution
	ClearColor [3]float32
	Exposure   float32
}

// DefaultConfig returns the stock renderer settings.
func DefaultConfig() Config {
	return Config{
		Width:      1280,
		Height:     720,
		PixelSize:  4,
		ClearColor: lighting.Hex("#f5f5f5"),
		Exposure:   1.2,
	}
}

// Frame is everything the scene needs to draw one frame.
type Frame struct {
	Globe      math.Mat4 // globe model transform
	Snow       []float32 // globe-local xyz per flake
	Billboard  billboard.Uniforms
	Background *image.RGBA // non-nil when the canvas changed
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	camera camera.Camera
	rig    lighting.Rig
	log    *zap.Logger

	pixel *framebuffer.Framebuffer

	background backgroundPass
	lit        litPass
	snow       snowPass
	board      billboardPass

	textures []uint32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, cam camera.Camera, shape model.GlobeShape, boardRadius float32) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		camera: cam,
		rig:    lighting.Default(),
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	if err := r.background.init(); err != nil {
		r.Close()
		return nil, err
	}
	if err := r.lit.init(shape); err != nil {
		r.Close()
		return nil, err
	}
	if err := r.snow.init(); err != nil {
		r.Close()
		return nil, err
	}
	if err := r.board.init(boardRadius); err != nil {
		r.Close()
		return nil, err
	}

	if err := r.resizeTarget(); err != nil {
		r.Close()
		return nil, err
	}
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Debug("closing renderer")
	r.background.destroy()
	r.lit.destroy()
	r.snow.destroy()
	r.board.destroy()
	if len(r.textures) > 0 {
		gl.DeleteTextures(int32(len(r.textures)), &r.textures[0])
		r.textures = nil
	}
	if r.pixel != nil {
		r.pixel.Destroy()
		r.pixel = nil
	}
}

// Resize handles drawable size changes.
func (r *Renderer) Resize(width, height int) error {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return r.resizeTarget()
}

func (r *Renderer) resizeTarget() error {
	if r.config.PixelSize <= 1 {
		if r.pixel != nil {
			r.pixel.Destroy()
			r.pixel = nil
		}
		return nil
	}
	w, h := framebuffer.LowRes(r.config.Width, r.config.Height, r.config.PixelSize)
	if r.pixel != nil {
		r.pixel.Resize(w, h)
		return nil
	}
	fb, err := framebuffer.New(w, h)
	if err != nil {
		return fmt.Errorf("pixelated pass: %w", err)
	}
	r.pixel = fb
	return nil
}

// targetSize returns the size of the buffer the scene is drawn into.
func (r *Renderer) targetSize() (int32, int32) {
	if r.pixel != nil {
		return r.pixel.Size()
	}
	return int32(r.config.Width), int32(r.config.Height)
}

// Render draws one frame. Order: background, opaque base, billboard, snow,
// then the glass on top.
func (r *Renderer) Render(f Frame) {
	if f.Background != nil {
		r.background.upload(f.Background)
	}

	if r.pixel != nil {
		r.pixel.Bind()
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, int32(r.config.Width), int32(r.config.Height))
	}
	c := r.config.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	tw, th := r.targetSize()
	viewProj := r.camera.ViewProj(float32(tw) / float32(th))

	r.background.draw()

	lights := r.lightsFor(f.Globe)
	r.lit.drawOpaque(viewProj, f.Globe, r.camera.Eye, r.rig, lights, r.config.Exposure)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)

	r.board.draw(viewProj, f.Billboard)
	r.snow.draw(viewProj, f.Globe, f.Snow, float32(th)/2)
	r.lit.drawGlass(viewProj, f.Globe, r.camera.Eye, r.rig, lights, r.config.Exposure)

	gl.DepthMask(true)
	gl.Disable(gl.BLEND)

	if r.pixel != nil {
		r.pixel.BlitToScreen(int32(r.config.Width), int32(r.config.Height))
	}
}

// lightsFor resolves globe-local lights into world space.
func (r *Renderer) lightsFor(globe math.Mat4) []lighting.PointLight {
	out := make([]lighting.PointLight, 0, len(r.rig.Points))
	for _, p := range r.rig.Points {
		if p.Local {
			w := globe.TransformPoint(math.Vec3{X: p.Position[0], Y: p.Position[1], Z: p.Position[2]})
			p.Position = [3]float32{w.X, w.Y, w.Z}
		}
		out = append(out, p)
		if len(out) == lighting.MaxPointLights {
			break
		}
	}
	return out
}

// UploadTexture creates a mipmapped texture from a decoded still. It must be
// called on the GL thread.
func (r *Renderer) UploadTexture(img *image.RGBA) (*billboard.Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		gl.DeleteTextures(1, &id)
		return nil, fmt.Errorf("texture upload failed: 0x%x", errCode)
	}

	r.textures = append(r.textures, id)
	return &billboard.Texture{ID: id, Width: b.Dx(), Height: b.Dy()}, nil
}

// ReadPixels returns the last presented frame as RGBA, bottom row first.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	w, h := int32(r.config.Width), int32(r.config.Height)
	return framebuffer.ReadScreen(w, h), int(w), int(h)
}
