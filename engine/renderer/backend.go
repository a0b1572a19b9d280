package renderer

import (
	"image"
	"image/color"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// RendererBackend is the raster side of the interop pair. Every method is
// called from the render thread.
type RendererBackend interface {
	Initialize(width, height uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	NativeHandles() (metadata.NativeHandles, error)

	TextureCreate() (*metadata.Texture, error)
	TextureSpecify(texture *metadata.Texture, width, height uint32, format metadata.TextureFormat, filter metadata.TextureFilter) error
	TextureWriteData(texture *metadata.Texture, pixels []uint8) error
	TextureRead(texture *metadata.Texture) (*image.RGBA, error)
	TextureDestroy(texture *metadata.Texture) error

	CreateGeometry(vertices []float32) (*metadata.Geometry, error)
	DestroyGeometry(geometry *metadata.Geometry) error

	Clear(c color.RGBA) error
	BindGeometry(geometry *metadata.Geometry) error
	BindTexture(texture *metadata.Texture) error
	UnbindTexture() error
	DrawGeometry(geometry *metadata.Geometry) error
	// Finish blocks until every issued raster command has completed.
	Finish() error
}
