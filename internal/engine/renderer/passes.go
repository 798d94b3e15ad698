package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/snowglobe/internal/billboard"
	"github.com/Faultbox/snowglobe/internal/engine/lighting"
	"github.com/Faultbox/snowglobe/internal/engine/model"
	"github.com/Faultbox/snowglobe/internal/engine/shader"
	"github.com/Faultbox/snowglobe/pkg/math"
)

// meshBuffer is an uploaded indexed mesh.
type meshBuffer struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

func (mb *meshBuffer) upload(m *model.Mesh) {
	gl.GenVertexArrays(1, &mb.vao)
	gl.BindVertexArray(mb.vao)

	gl.GenBuffers(1, &mb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	vertexSize := int(unsafe.Sizeof(model.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*vertexSize, unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &mb.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	mb.indexCount = int32(len(m.Indices))
	gl.BindVertexArray(0)
}

func (mb *meshBuffer) draw() {
	gl.BindVertexArray(mb.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, mb.indexCount, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (mb *meshBuffer) destroy() {
	if mb.vao != 0 {
		gl.DeleteVertexArrays(1, &mb.vao)
		mb.vao = 0
	}
	if mb.vbo != 0 {
		gl.DeleteBuffers(1, &mb.vbo)
		mb.vbo = 0
	}
	if mb.ebo != 0 {
		gl.DeleteBuffers(1, &mb.ebo)
		mb.ebo = 0
	}
}

// backgroundPass draws the tile canvas behind everything.
type backgroundPass struct {
	program *shader.Program
	vao     uint32
	texture uint32
	w, h    int
}

func (p *backgroundPass) init() error {
	prog, err := shader.Compile("background", backgroundVertexShader, backgroundFragmentShader)
	if err != nil {
		return err
	}
	p.program = prog
	// Core profile needs a bound VAO even for attribute-less draws.
	gl.GenVertexArrays(1, &p.vao)
	gl.GenTextures(1, &p.texture)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// upload re-sends the canvas, reallocating only when its size changed.
func (p *backgroundPass) upload(img *image.RGBA) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	if b.Dx() != p.w || b.Dy() != p.h {
		p.w, p.h = b.Dx(), b.Dy()
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(p.w), int32(p.h), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(p.w), int32(p.h),
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (p *backgroundPass) draw() {
	if p.w == 0 {
		return
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.DepthMask(false)
	p.program.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	p.program.SetInt("uTexture", 0)
	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.DepthMask(true)
	gl.Enable(gl.DEPTH_TEST)
}

func (p *backgroundPass) destroy() {
	if p.program != nil {
		p.program.Delete()
	}
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.texture != 0 {
		gl.DeleteTextures(1, &p.texture)
		p.texture = 0
	}
}

// material is a flat-colored lit surface.
type material struct {
	color     [3]float32
	opacity   float32
	shininess float32
	fresnel   float32
}

var (
	baseMaterial   = material{color: lighting.Hex("#e8e8f0"), opacity: 1, shininess: 48}
	groundMaterial = material{color: lighting.Hex("#e8e8f0"), opacity: 1, shininess: 2}
	glassMaterial  = material{color: lighting.Hex("#ffffff"), opacity: 0.08, shininess: 256, fresnel: 0.6}
)

// litPass draws the globe meshes.
type litPass struct {
	program *shader.Program
	base    meshBuffer
	ground  meshBuffer
	glass   meshBuffer
}

func (p *litPass) init(shape model.GlobeShape) error {
	prog, err := shader.Compile("lit", litVertexShader, litFragmentShader)
	if err != nil {
		return err
	}
	p.program = prog
	p.base.upload(shape.Base())
	p.ground.upload(shape.Ground())
	p.glass.upload(shape.Glass())
	return nil
}

func (p *litPass) setup(viewProj, globe math.Mat4, eye math.Vec3, rig lighting.Rig, lights []lighting.PointLight, exposure float32) {
	prog := p.program
	prog.Use()
	prog.SetMat4("uViewProj", viewProj)
	prog.SetMat4("uModel", globe)
	prog.SetVec3("uCameraPos", eye.X, eye.Y, eye.Z)
	prog.SetVec3("uAmbient", rig.Ambient[0], rig.Ambient[1], rig.Ambient[2])
	prog.SetVec3("uSunDir", rig.SunDir[0], rig.SunDir[1], rig.SunDir[2])
	prog.SetVec3("uSunColor", rig.SunColor[0], rig.SunColor[1], rig.SunColor[2])
	prog.SetFloat("uExposure", exposure)

	n := len(lights)
	prog.SetInt("uPointCount", int32(n))
	if n == 0 {
		return
	}
	pos := make([]float32, 0, n*3)
	col := make([]float32, 0, n*3)
	rng := make([]float32, 0, n)
	dec := make([]float32, 0, n)
	for _, l := range lights {
		pos = append(pos, l.Position[:]...)
		col = append(col, l.Color[0]*l.Intensity, l.Color[1]*l.Intensity, l.Color[2]*l.Intensity)
		rng = append(rng, l.Range)
		dec = append(dec, l.Decay)
	}
	gl.Uniform3fv(prog.Uniform("uPointPos"), int32(n), &pos[0])
	gl.Uniform3fv(prog.Uniform("uPointColor"), int32(n), &col[0])
	gl.Uniform1fv(prog.Uniform("uPointRange"), int32(n), &rng[0])
	gl.Uniform1fv(prog.Uniform("uPointDecay"), int32(n), &dec[0])
}

func (p *litPass) material(m material) {
	p.program.SetVec3("uColor", m.color[0], m.color[1], m.color[2])
	p.program.SetFloat("uOpacity", m.opacity)
	p.program.SetFloat("uShininess", m.shininess)
	p.program.SetFloat("uFresnel", m.fresnel)
}

func (p *litPass) drawOpaque(viewProj, globe math.Mat4, eye math.Vec3, rig lighting.Rig, lights []lighting.PointLight, exposure float32) {
	p.setup(viewProj, globe, eye, rig, lights, exposure)
	p.material(baseMaterial)
	p.base.draw()
	p.material(groundMaterial)
	p.ground.draw()
}

func (p *litPass) drawGlass(viewProj, globe math.Mat4, eye math.Vec3, rig lighting.Rig, lights []lighting.PointLight, exposure float32) {
	p.setup(viewProj, globe, eye, rig, lights, exposure)
	p.material(glassMaterial)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	p.glass.draw()
	gl.Disable(gl.CULL_FACE)
}

func (p *litPass) destroy() {
	if p.program != nil {
		p.program.Delete()
	}
	p.base.destroy()
	p.ground.destroy()
	p.glass.destroy()
}

// snowPass draws the flakes as attenuated points.
type snowPass struct {
	program  *shader.Program
	vao, vbo uint32
	capacity int
}

// Flake appearance.
const (
	snowSize    = 0.035
	snowOpacity = 0.85
)

func (p *snowPass) init() error {
	prog, err := shader.Compile("snow", snowVertexShader, snowFragmentShader)
	if err != nil {
		return err
	}
	p.program = prog
	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
	return nil
}

func (p *snowPass) draw(viewProj, globe math.Mat4, positions []float32, scale float32) {
	n := len(positions) / 3
	if n == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	if len(positions) > p.capacity {
		p.capacity = len(positions)
		gl.BufferData(gl.ARRAY_BUFFER, p.capacity*4, gl.Ptr(positions), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(positions)*4, gl.Ptr(positions))
	}

	p.program.Use()
	p.program.SetMat4("uViewProj", viewProj)
	p.program.SetMat4("uModel", globe)
	p.program.SetFloat("uSize", snowSize)
	p.program.SetFloat("uScale", scale)
	gl.Uniform4f(p.program.Uniform("uColor"), 1, 1, 1, snowOpacity)

	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.POINTS, 0, int32(n))
	gl.BindVertexArray(0)
}

func (p *snowPass) destroy() {
	if p.program != nil {
		p.program.Delete()
	}
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.vbo != 0 {
		gl.DeleteBuffers(1, &p.vbo)
		p.vbo = 0
	}
}

// billboardPass draws the crossfading still on a camera-facing disc.
type billboardPass struct {
	program *shader.Program
	disc    meshBuffer
}

func (p *billboardPass) init(radius float32) error {
	if radius <= 0 {
		return fmt.Errorf("billboard radius must be positive, got %f", radius)
	}
	prog, err := shader.Compile("billboard", billboardVertexShader, billboardFragmentShader)
	if err != nil {
		return err
	}
	p.program = prog
	p.disc.upload(model.Disc(radius, 64))
	return nil
}

func (p *billboardPass) draw(viewProj math.Mat4, u billboard.Uniforms) {
	if u.Cur == nil {
		return
	}
	prev := u.Prev
	if prev == nil {
		prev = u.Cur
	}

	p.program.Use()
	p.program.SetMat4("uViewProj", viewProj)
	p.program.SetMat4("uModel", u.Model)
	p.program.SetVec2("uPlaneSize", u.PlaneW, u.PlaneH)
	p.program.SetFloat("uBlend", u.Blend)
	p.program.SetFloat("uEdgeRadius", u.EdgeRadius)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, u.Cur.ID)
	p.program.SetInt("uMap", 0)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, prev.ID)
	p.program.SetInt("uMapPrev", 1)

	p.disc.draw()

	gl.ActiveTexture(gl.TEXTURE0)
}

func (p *billboardPass) destroy() {
	if p.program != nil {
		p.program.Delete()
	}
	p.disc.destroy()
}
