package software

import (
	"errors"
	"fmt"
	"image"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	softraster "github.com/spaghettifunk/prism/engine/renderer/software"
	"github.com/spaghettifunk/prism/engine/systems"
)

var errReleased = errors.New("object released")

type Context struct {
	id     core.Identifier
	device compute.DeviceInfo
	shared bool
	jobs   *systems.JobSystem
}

func newContext(device compute.DeviceInfo, workers int, shared bool) (*Context, error) {
	jobs, err := systems.NewJobSystem(workers, workers*4)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrContextCreation, err)
	}
	c := &Context{
		id:     core.NewIdentifier("context"),
		device: device,
		shared: shared,
		jobs:   jobs,
	}
	core.LogDebug("software context %s created (shared=%t, workers=%d)", c.id, shared, workers)
	return c, nil
}

func (c *Context) Device() compute.DeviceInfo {
	return c.device
}

func (c *Context) Shared() bool {
	return c.shared
}

func (c *Context) NewQueue() (compute.Queue, error) {
	if c.jobs == nil {
		return nil, errReleased
	}
	return &Queue{ctx: c}, nil
}

func (c *Context) CreateImageFromTexture(texture *metadata.Texture, mode compute.AccessMode) (compute.Image, error) {
	if !c.shared {
		return nil, fmt.Errorf("%w: context was created without sharing", core.ErrInteropUnsupported)
	}
	if !texture.IsSpecified() {
		return nil, fmt.Errorf("texture storage is not specified")
	}
	pixels, ok := softraster.TexturePixels(texture)
	if !ok {
		return nil, fmt.Errorf("texture %d is not owned by the software rasterizer", texture.ID)
	}
	return newImage(pixels, mode, texture), nil
}

func (c *Context) CreateImage(width, height uint32, mode compute.AccessMode) (compute.Image, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	return newImage(image.NewRGBA(image.Rect(0, 0, int(width), int(height))), mode, nil), nil
}

func (c *Context) CreateBuffer(size int, mode compute.AccessMode) (compute.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d", size)
	}
	return &Buffer{data: make([]byte, size), mode: mode}, nil
}

func (c *Context) Release() error {
	if c.jobs == nil {
		return nil
	}
	err := c.jobs.Shutdown()
	c.jobs = nil
	core.LogDebug("software context %s released", c.id)
	return err
}

type Image struct {
	pixels   *image.RGBA
	width    uint32
	height   uint32
	mode     compute.AccessMode
	texture  *metadata.Texture
	acquired bool
	released bool
}

func newImage(pixels *image.RGBA, mode compute.AccessMode, texture *metadata.Texture) *Image {
	return &Image{
		pixels:  pixels,
		width:   uint32(pixels.Rect.Dx()),
		height:  uint32(pixels.Rect.Dy()),
		mode:    mode,
		texture: texture,
	}
}

func (i *Image) Mode() compute.AccessMode { return i.mode }
func (i *Image) Width() uint32            { return i.width }
func (i *Image) Height() uint32           { return i.height }
func (i *Image) SharesTexture() bool      { return i.texture != nil }

func (i *Image) Release() error {
	if i.released {
		return errReleased
	}
	i.released = true
	i.pixels = nil
	return nil
}

type Buffer struct {
	data     []byte
	mode     compute.AccessMode
	released bool
}

func (b *Buffer) Mode() compute.AccessMode { return b.mode }
func (b *Buffer) Size() int                { return len(b.data) }

func (b *Buffer) Release() error {
	if b.released {
		return errReleased
	}
	b.released = true
	b.data = nil
	return nil
}
