// Package opengl is the OpenGL 3.3 core rasterizer. Every call must come
// from the thread the GL context is current on.
package opengl

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type geometryData struct {
	vao uint32
	vbo uint32
}

type Backend struct {
	width   uint32
	height  uint32
	program uint32

	samplerLoc    int32
	resolutionLoc int32

	textures   map[uint32]*metadata.Texture
	geometries map[uint32]*metadata.Geometry
}

func New() *Backend {
	return &Backend{
		textures:   make(map[uint32]*metadata.Texture),
		geometries: make(map[uint32]*metadata.Geometry),
	}
}

func (b *Backend) Initialize(width, height uint32) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("could not initialise OpenGL context: %w", err)
	}
	core.LogInfo("OpenGL version '%s', renderer '%s'", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	program, err := createProgram()
	if err != nil {
		return err
	}
	b.program = program
	b.samplerLoc = gl.GetUniformLocation(program, gl.Str("textureSampler\x00"))
	b.resolutionLoc = gl.GetUniformLocation(program, gl.Str("resolution\x00"))

	gl.UseProgram(program)
	gl.Uniform1i(b.samplerLoc, 0)
	return b.Resized(width, height)
}

func (b *Backend) Shutdown() error {
	for _, g := range b.geometries {
		_ = b.DestroyGeometry(g)
	}
	for _, t := range b.textures {
		_ = b.TextureDestroy(t)
	}
	if b.program != 0 {
		gl.DeleteProgram(b.program)
		b.program = 0
	}
	return checkError("shutdown")
}

func (b *Backend) Resized(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	b.width, b.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.UseProgram(b.program)
	gl.Uniform2f(b.resolutionLoc, float32(width), float32(height))
	return checkError("resize")
}

// NativeHandles reports the context current on the calling thread.
func (b *Backend) NativeHandles() (metadata.NativeHandles, error) {
	h := currentHandles()
	if h.Context == 0 {
		return h, fmt.Errorf("no current OpenGL context")
	}
	return h, nil
}

func (b *Backend) TextureCreate() (*metadata.Texture, error) {
	var name uint32
	gl.GenTextures(1, &name)
	if name == 0 {
		return nil, fmt.Errorf("glGenTextures returned no name")
	}
	t := &metadata.Texture{ID: name}
	b.textures[name] = t
	return t, checkError("glGenTextures")
}

func (b *Backend) TextureSpecify(texture *metadata.Texture, width, height uint32, format metadata.TextureFormat, filter metadata.TextureFilter) error {
	if err := b.owns(texture); err != nil {
		return err
	}
	if format != metadata.TextureFormatRGBA8 {
		return fmt.Errorf("unsupported texture format %s", format)
	}
	glFilter := int32(gl.NEAREST)
	if filter == metadata.TextureFilterModeLinear {
		glFilter = gl.LINEAR
	}

	gl.BindTexture(gl.TEXTURE_2D, texture.ID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := checkError("glTexImage2D"); err != nil {
		return err
	}

	texture.Width = width
	texture.Height = height
	texture.Format = format
	texture.Filter = filter
	return nil
}

func (b *Backend) TextureWriteData(texture *metadata.Texture, pixels []uint8) error {
	if err := b.owns(texture); err != nil {
		return err
	}
	if len(pixels) != texture.ByteSize() {
		return fmt.Errorf("texture %d expects %d bytes, got %d", texture.ID, texture.ByteSize(), len(pixels))
	}
	gl.BindTexture(gl.TEXTURE_2D, texture.ID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(texture.Width), int32(texture.Height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := checkError("glTexSubImage2D"); err != nil {
		return err
	}
	texture.Generation++
	return nil
}

// TextureRead returns the texture with texture row 0 as image row 0.
func (b *Backend) TextureRead(texture *metadata.Texture) (*image.RGBA, error) {
	if err := b.owns(texture); err != nil {
		return nil, err
	}
	if !texture.IsSpecified() {
		return nil, fmt.Errorf("texture %d has no storage", texture.ID)
	}
	img := image.NewRGBA(image.Rect(0, 0, int(texture.Width), int(texture.Height)))
	gl.BindTexture(gl.TEXTURE_2D, texture.ID)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return img, checkError("glGetTexImage")
}

func (b *Backend) TextureDestroy(texture *metadata.Texture) error {
	if err := b.owns(texture); err != nil {
		return err
	}
	name := texture.ID
	gl.DeleteTextures(1, &name)
	delete(b.textures, texture.ID)
	return checkError("glDeleteTextures")
}

func (b *Backend) CreateGeometry(vertices []float32) (*metadata.Geometry, error) {
	if len(vertices) == 0 || len(vertices)%(metadata.VertexComponents*3) != 0 {
		return nil, fmt.Errorf("vertex data must hold whole triangles, got %d floats", len(vertices))
	}
	data := &geometryData{}
	gl.GenVertexArrays(1, &data.vao)
	gl.BindVertexArray(data.vao)

	gl.GenBuffers(1, &data.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, data.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, metadata.VertexComponents, gl.FLOAT, false, metadata.VertexComponents*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	if err := checkError("create geometry"); err != nil {
		return nil, err
	}

	g := &metadata.Geometry{
		ID:           data.vao,
		VertexCount:  uint32(len(vertices) / metadata.VertexComponents),
		Vertices:     append([]float32(nil), vertices...),
		InternalData: data,
	}
	b.geometries[g.ID] = g
	return g, nil
}

func (b *Backend) DestroyGeometry(geometry *metadata.Geometry) error {
	if geometry == nil || b.geometries[geometry.ID] != geometry {
		return fmt.Errorf("unknown geometry")
	}
	data := geometry.InternalData.(*geometryData)
	gl.DeleteBuffers(1, &data.vbo)
	gl.DeleteVertexArrays(1, &data.vao)
	delete(b.geometries, geometry.ID)
	return checkError("destroy geometry")
}

func (b *Backend) Clear(c color.RGBA) error {
	gl.ClearColor(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	return checkError("glClear")
}

func (b *Backend) BindGeometry(geometry *metadata.Geometry) error {
	if geometry == nil || b.geometries[geometry.ID] != geometry {
		return fmt.Errorf("unknown geometry")
	}
	gl.BindVertexArray(geometry.ID)
	return checkError("glBindVertexArray")
}

func (b *Backend) BindTexture(texture *metadata.Texture) error {
	if texture == nil {
		return b.UnbindTexture()
	}
	if err := b.owns(texture); err != nil {
		return err
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, texture.ID)
	return checkError("glBindTexture")
}

func (b *Backend) UnbindTexture() error {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return checkError("glBindTexture")
}

func (b *Backend) DrawGeometry(geometry *metadata.Geometry) error {
	gl.UseProgram(b.program)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(geometry.VertexCount))
	return checkError("glDrawArrays")
}

func (b *Backend) Finish() error {
	gl.Finish()
	return checkError("glFinish")
}

func (b *Backend) owns(texture *metadata.Texture) error {
	if texture == nil || b.textures[texture.ID] != texture {
		return fmt.Errorf("unknown texture")
	}
	return nil
}
