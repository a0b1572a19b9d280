// Package software is a CPU rasterizer with the same observable behavior as
// the OpenGL backend: nearest-filtered textures sampled at the fragment's
// window position, bottom-left origin.
package software

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

var (
	errNotInitialized = errors.New("software rasterizer not initialized")
	errUnknownObject  = errors.New("unknown object")
)

type Backend struct {
	width       uint32
	height      uint32
	framebuffer *image.RGBA

	nextID     uint32
	textures   map[uint32]*metadata.Texture
	geometries map[uint32]*metadata.Geometry

	boundGeometry *metadata.Geometry
	boundTexture  *metadata.Texture
}

func New() *Backend {
	return &Backend{
		textures:   make(map[uint32]*metadata.Texture),
		geometries: make(map[uint32]*metadata.Geometry),
	}
}

func (b *Backend) Initialize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	b.width = width
	b.height = height
	b.framebuffer = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	return nil
}

func (b *Backend) Shutdown() error {
	b.textures = make(map[uint32]*metadata.Texture)
	b.geometries = make(map[uint32]*metadata.Geometry)
	b.boundGeometry = nil
	b.boundTexture = nil
	b.framebuffer = nil
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	return b.Initialize(width, height)
}

func (b *Backend) NativeHandles() (metadata.NativeHandles, error) {
	return metadata.NativeHandles{API: "software"}, nil
}

// Framebuffer returns a copy of the color buffer, top row first.
func (b *Backend) Framebuffer() *image.RGBA {
	if b.framebuffer == nil {
		return nil
	}
	return cloneRGBA(b.framebuffer)
}

// TexturePixels exposes the live storage of a specified texture so a
// software compute context can write into it without a copy.
func TexturePixels(texture *metadata.Texture) (*image.RGBA, bool) {
	if texture == nil {
		return nil, false
	}
	img, ok := texture.InternalData.(*image.RGBA)
	return img, ok
}

func (b *Backend) TextureCreate() (*metadata.Texture, error) {
	b.nextID++
	t := &metadata.Texture{ID: b.nextID}
	b.textures[t.ID] = t
	return t, nil
}

func (b *Backend) TextureSpecify(texture *metadata.Texture, width, height uint32, format metadata.TextureFormat, filter metadata.TextureFilter) error {
	if err := b.owns(texture); err != nil {
		return err
	}
	if format != metadata.TextureFormatRGBA8 {
		return fmt.Errorf("unsupported texture format %s", format)
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("invalid texture size %dx%d", width, height)
	}
	texture.Width = width
	texture.Height = height
	texture.Format = format
	texture.Filter = filter
	texture.InternalData = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	return nil
}

func (b *Backend) TextureWriteData(texture *metadata.Texture, pixels []uint8) error {
	if err := b.owns(texture); err != nil {
		return err
	}
	img, ok := TexturePixels(texture)
	if !ok {
		return fmt.Errorf("texture %d has no storage", texture.ID)
	}
	if len(pixels) != len(img.Pix) {
		return fmt.Errorf("texture %d expects %d bytes, got %d", texture.ID, len(img.Pix), len(pixels))
	}
	copy(img.Pix, pixels)
	texture.Generation++
	return nil
}

func (b *Backend) TextureRead(texture *metadata.Texture) (*image.RGBA, error) {
	if err := b.owns(texture); err != nil {
		return nil, err
	}
	img, ok := TexturePixels(texture)
	if !ok {
		return nil, fmt.Errorf("texture %d has no storage", texture.ID)
	}
	return cloneRGBA(img), nil
}

func (b *Backend) TextureDestroy(texture *metadata.Texture) error {
	if err := b.owns(texture); err != nil {
		return err
	}
	if b.boundTexture == texture {
		b.boundTexture = nil
	}
	delete(b.textures, texture.ID)
	texture.InternalData = nil
	return nil
}

func (b *Backend) CreateGeometry(vertices []float32) (*metadata.Geometry, error) {
	if len(vertices) == 0 || len(vertices)%(metadata.VertexComponents*3) != 0 {
		return nil, fmt.Errorf("vertex data must hold whole triangles, got %d floats", len(vertices))
	}
	b.nextID++
	g := &metadata.Geometry{
		ID:          b.nextID,
		VertexCount: uint32(len(vertices) / metadata.VertexComponents),
		Vertices:    append([]float32(nil), vertices...),
	}
	b.geometries[g.ID] = g
	return g, nil
}

func (b *Backend) DestroyGeometry(geometry *metadata.Geometry) error {
	if geometry == nil || b.geometries[geometry.ID] != geometry {
		return errUnknownObject
	}
	if b.boundGeometry == geometry {
		b.boundGeometry = nil
	}
	delete(b.geometries, geometry.ID)
	return nil
}

func (b *Backend) Clear(c color.RGBA) error {
	if b.framebuffer == nil {
		return errNotInitialized
	}
	draw.Draw(b.framebuffer, b.framebuffer.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return nil
}

func (b *Backend) BindGeometry(geometry *metadata.Geometry) error {
	if geometry == nil || b.geometries[geometry.ID] != geometry {
		return errUnknownObject
	}
	b.boundGeometry = geometry
	return nil
}

func (b *Backend) BindTexture(texture *metadata.Texture) error {
	if texture == nil {
		return b.UnbindTexture()
	}
	if err := b.owns(texture); err != nil {
		return err
	}
	if !texture.IsSpecified() {
		return fmt.Errorf("texture %d is incomplete", texture.ID)
	}
	b.boundTexture = texture
	return nil
}

func (b *Backend) UnbindTexture() error {
	b.boundTexture = nil
	return nil
}

func (b *Backend) Finish() error {
	return nil
}

// DrawGeometry fills every triangle of the bound geometry with the bound
// texture sampled at the fragment position divided by the framebuffer size.
func (b *Backend) DrawGeometry(geometry *metadata.Geometry) error {
	if b.framebuffer == nil {
		return errNotInitialized
	}
	if geometry == nil || geometry != b.boundGeometry {
		return fmt.Errorf("geometry is not bound")
	}

	src := b.fragmentSource()
	w, h := float32(b.width), float32(b.height)

	z := vector.NewRasterizer(int(b.width), int(b.height))
	// fragments outside the geometry keep the clear color
	z.DrawOp = draw.Over
	v := geometry.Vertices
	for i := 0; i+8 < len(v); i += 9 {
		z.MoveTo(toWindow(v[i], v[i+1], w, h))
		z.LineTo(toWindow(v[i+3], v[i+4], w, h))
		z.LineTo(toWindow(v[i+6], v[i+7], w, h))
		z.ClosePath()
	}
	z.Draw(b.framebuffer, b.framebuffer.Bounds(), src, image.Point{})
	return nil
}

// fragmentSource builds the per-pixel color the fragment stage would emit,
// in framebuffer (top-down) row order.
func (b *Backend) fragmentSource() image.Image {
	bounds := b.framebuffer.Bounds()
	tex, ok := TexturePixels(b.boundTexture)
	if !ok {
		// incomplete texture samples as opaque black
		return image.NewUniform(color.RGBA{A: 255})
	}

	scaled := image.NewRGBA(bounds)
	draw.NearestNeighbor.Scale(scaled, bounds, tex, tex.Bounds(), draw.Src, nil)

	// texture row 0 sits at the bottom of the window
	flipped := image.NewRGBA(bounds)
	rows := bounds.Dy()
	for y := 0; y < rows; y++ {
		copy(flipped.Pix[y*flipped.Stride:(y+1)*flipped.Stride], scaled.Pix[(rows-1-y)*scaled.Stride:(rows-y)*scaled.Stride])
	}
	return flipped
}

func (b *Backend) owns(texture *metadata.Texture) error {
	if texture == nil || b.textures[texture.ID] != texture {
		return errUnknownObject
	}
	return nil
}

func toWindow(x, y, w, h float32) (float32, float32) {
	return (x + 1) / 2 * w, (1 - y) / 2 * h
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
