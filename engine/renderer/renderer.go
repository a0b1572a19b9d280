package renderer

import (
	"fmt"
	"image"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type RendererType uint8

const (
	OpenGL RendererType = iota
	Software
)

func ParseRendererType(name string) (RendererType, error) {
	switch name {
	case "opengl":
		return OpenGL, nil
	case "software":
		return Software, nil
	}
	return 0, fmt.Errorf("unknown renderer backend %q", name)
}

func (t RendererType) String() string {
	if t == Software {
		return "software"
	}
	return "opengl"
}

// Renderer is the frontend the frame loop talks to. Any backend error is
// wrapped with core.ErrRasterizer.
type Renderer struct {
	backend RendererBackend
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

func (r *Renderer) Initialize(width, height uint32) error {
	if err := r.backend.Initialize(width, height); err != nil {
		return fmt.Errorf("%w: initialize: %w", core.ErrRasterizer, err)
	}
	return nil
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *Renderer) OnResize(width, height uint32) error {
	return r.backend.Resized(width, height)
}

// DrawFrame clears the color buffer, binds the packet geometry and texture
// and issues one draw call covering the whole geometry.
func (r *Renderer) DrawFrame(packet *metadata.RenderPacket) error {
	if err := r.backend.Clear(packet.ClearColor); err != nil {
		return fmt.Errorf("%w: clear: %w", core.ErrRasterizer, err)
	}
	if err := r.backend.BindGeometry(packet.Geometry); err != nil {
		return fmt.Errorf("%w: bind geometry: %w", core.ErrRasterizer, err)
	}
	if err := r.backend.BindTexture(packet.Texture); err != nil {
		return fmt.Errorf("%w: bind texture: %w", core.ErrRasterizer, err)
	}
	if err := r.backend.DrawGeometry(packet.Geometry); err != nil {
		return fmt.Errorf("%w: draw: %w", core.ErrRasterizer, err)
	}
	return nil
}

func (r *Renderer) CreateGeometry(kind metadata.GeometryKind) (*metadata.Geometry, error) {
	g, err := r.backend.CreateGeometry(kind.Vertices())
	if err != nil {
		return nil, fmt.Errorf("%w: create geometry: %w", core.ErrRasterizer, err)
	}
	return g, nil
}

func (r *Renderer) DestroyGeometry(geometry *metadata.Geometry) error {
	return r.backend.DestroyGeometry(geometry)
}

// Snapshot reads the texture back into host memory.
func (r *Renderer) Snapshot(texture *metadata.Texture) (*image.RGBA, error) {
	img, err := r.backend.TextureRead(texture)
	if err != nil {
		return nil, fmt.Errorf("%w: read texture: %w", core.ErrRasterizer, err)
	}
	return img, nil
}
