// Package texture implements the texture shared between the rasterizer and
// the compute engine. Ownership is time-sliced: the rasterizer owns it
// except between AcquireForCompute and ReleaseToRasterizer.
package texture

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type State uint8

const (
	// Name allocated, no storage yet.
	StateUnspecified State = iota
	// Storage defined, owned by the rasterizer, not visible to compute.
	StateSpecified
	// Bound into a compute context, owned by the rasterizer.
	StateRegistered
	// Handed to the compute queue.
	StateAcquired
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateUnspecified:
		return "unspecified"
	case StateSpecified:
		return "specified"
	case StateRegistered:
		return "registered"
	case StateAcquired:
		return "acquired"
	default:
		return "released"
	}
}

type SharedTexture struct {
	ID core.Identifier

	backend renderer.RendererBackend
	texture *metadata.Texture
	image   compute.Image
	state   State
	// host copy used when the compute context cannot alias the texture
	staging []byte
}

// New allocates the rasterizer-side texture name without storage.
func New(backend renderer.RendererBackend) (*SharedTexture, error) {
	tex, err := backend.TextureCreate()
	if err != nil {
		return nil, fmt.Errorf("%w: create texture: %w", core.ErrRasterizer, err)
	}
	return &SharedTexture{
		ID:      core.NewIdentifier("texture"),
		backend: backend,
		texture: tex,
		state:   StateUnspecified,
	}, nil
}

// Create allocates a texture and defines its storage with nearest filtering.
// Initial contents are undefined.
func Create(backend renderer.RendererBackend, width, height uint32, format metadata.TextureFormat) (*SharedTexture, error) {
	t, err := New(backend)
	if err != nil {
		return nil, err
	}
	if err := t.Specify(width, height, format); err != nil {
		_ = backend.TextureDestroy(t.texture)
		return nil, err
	}
	return t, nil
}

func (t *SharedTexture) Specify(width, height uint32, format metadata.TextureFormat) error {
	if t.state != StateUnspecified && t.state != StateSpecified {
		return fmt.Errorf("cannot respecify %s texture %s", t.state, t.ID)
	}
	if err := t.backend.TextureSpecify(t.texture, width, height, format, metadata.TextureFilterModeNearest); err != nil {
		return fmt.Errorf("%w: specify texture: %w", core.ErrRasterizer, err)
	}
	t.state = StateSpecified
	core.LogDebug("texture %s specified as %dx%d %s", t.ID, width, height, format)
	return nil
}

func (t *SharedTexture) Texture() *metadata.Texture {
	return t.texture
}

func (t *SharedTexture) Image() compute.Image {
	return t.image
}

func (t *SharedTexture) State() State {
	return t.state
}

// Shared reports whether the compute image aliases the texture. False for
// the copy fallback.
func (t *SharedTexture) Shared() bool {
	return t.image != nil && t.image.SharesTexture()
}

// RegisterForCompute binds the texture into ctx. A context without sharing
// gets a host-side image of the same size; ReleaseToRasterizer then copies
// it into the texture.
func (t *SharedTexture) RegisterForCompute(ctx compute.Context, mode compute.AccessMode) error {
	switch t.state {
	case StateUnspecified:
		return fmt.Errorf("%w: texture %s storage is not specified", core.ErrTextureRegistration, t.ID)
	case StateRegistered, StateAcquired:
		return fmt.Errorf("%w: texture %s is already registered", core.ErrTextureRegistration, t.ID)
	case StateReleased:
		return fmt.Errorf("%w: texture %s was released", core.ErrTextureRegistration, t.ID)
	}
	if !mode.CanWrite() {
		return fmt.Errorf("%w: texture %s must be registered writable, got %s", core.ErrTextureRegistration, t.ID, mode)
	}

	var (
		img compute.Image
		err error
	)
	if ctx.Shared() {
		img, err = ctx.CreateImageFromTexture(t.texture, mode)
	} else {
		img, err = ctx.CreateImage(t.texture.Width, t.texture.Height, mode)
		t.staging = make([]byte, t.texture.ByteSize())
	}
	if err != nil {
		t.staging = nil
		return fmt.Errorf("%w: texture %s: %w", core.ErrTextureRegistration, t.ID, err)
	}
	t.image = img
	t.state = StateRegistered
	core.LogInfo("texture %s registered for compute (%s, shared=%t)", t.ID, mode, img.SharesTexture())
	return nil
}

// AcquireForCompute unbinds the texture, waits for the rasterizer and hands
// the texture to q.
func (t *SharedTexture) AcquireForCompute(q compute.Queue) error {
	if t.state != StateRegistered {
		return fmt.Errorf("%w: acquire %s texture %s", core.ErrDispatch, t.state, t.ID)
	}
	if err := t.backend.UnbindTexture(); err != nil {
		return fmt.Errorf("%w: unbind texture: %w", core.ErrRasterizer, err)
	}
	if err := t.backend.Finish(); err != nil {
		return fmt.Errorf("%w: finish: %w", core.ErrRasterizer, err)
	}
	if t.Shared() {
		if err := q.AcquireTextures(t.image); err != nil {
			return fmt.Errorf("%w: acquire texture %s: %w", core.ErrDispatch, t.ID, err)
		}
	}
	t.state = StateAcquired
	return nil
}

// ReleaseToRasterizer waits for q and returns the texture to the
// rasterizer, ready for sampling.
func (t *SharedTexture) ReleaseToRasterizer(q compute.Queue) error {
	if t.state != StateAcquired {
		return fmt.Errorf("%w: release %s texture %s", core.ErrDispatch, t.state, t.ID)
	}
	if t.Shared() {
		if err := q.ReleaseTextures(t.image); err != nil {
			return fmt.Errorf("%w: release texture %s: %w", core.ErrDispatch, t.ID, err)
		}
		if err := q.Finish(); err != nil {
			return fmt.Errorf("%w: finish: %w", core.ErrDispatch, err)
		}
		t.state = StateRegistered
		return nil
	}

	if err := q.ReadImage(t.image, t.staging); err != nil {
		return fmt.Errorf("%w: read back texture %s: %w", core.ErrDispatch, t.ID, err)
	}
	t.state = StateRegistered
	return t.Upload(t.staging)
}

// Upload replaces the texture contents from host memory.
func (t *SharedTexture) Upload(pixels []byte) error {
	if t.state == StateUnspecified || t.state == StateAcquired || t.state == StateReleased {
		return fmt.Errorf("%w: upload to %s texture %s", core.ErrRasterizer, t.state, t.ID)
	}
	if err := t.backend.TextureWriteData(t.texture, pixels); err != nil {
		return fmt.Errorf("%w: upload texture %s: %w", core.ErrRasterizer, t.ID, err)
	}
	return nil
}

// Unregister drops the compute registration; the texture stays usable by
// the rasterizer.
func (t *SharedTexture) Unregister() error {
	if t.state != StateRegistered && t.state != StateAcquired {
		return nil
	}
	err := t.image.Release()
	t.image = nil
	t.staging = nil
	t.state = StateSpecified
	return err
}

// Release unregisters from compute, then frees the rasterizer texture.
func (t *SharedTexture) Release() error {
	if t.state == StateReleased {
		return nil
	}
	var errs []error
	if t.state == StateAcquired {
		errs = append(errs, fmt.Errorf("texture %s released while owned by compute", t.ID))
	}
	errs = append(errs, t.Unregister())
	errs = append(errs, t.backend.TextureDestroy(t.texture))
	t.state = StateReleased
	core.LogDebug("texture %s released", t.ID)
	return errors.Join(errs...)
}
