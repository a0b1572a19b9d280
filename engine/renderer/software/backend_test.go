package software

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func newTexture(t *testing.T, b *Backend, w, h uint32) *metadata.Texture {
	t.Helper()
	tex, err := b.TextureCreate()
	require.NoError(t, err)
	require.NoError(t, b.TextureSpecify(tex, w, h, metadata.TextureFormatRGBA8, metadata.TextureFilterModeNearest))
	return tex
}

// fill paints texel (x, y) with (x, y, 7, 255).
func fill(w, h uint32) []uint8 {
	pix := make([]uint8, 0, w*h*4)
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			pix = append(pix, uint8(x), uint8(y), 7, 255)
		}
	}
	return pix
}

func TestDrawSamplesTextureWithBottomLeftOrigin(t *testing.T) {
	b := New()
	require.NoError(t, b.Initialize(64, 48))

	tex := newTexture(t, b, 64, 48)
	require.NoError(t, b.TextureWriteData(tex, fill(64, 48)))
	quad, err := b.CreateGeometry(metadata.GeometryQuad.Vertices())
	require.NoError(t, err)

	require.NoError(t, b.Clear(color.RGBA{R: 9, A: 255}))
	require.NoError(t, b.BindGeometry(quad))
	require.NoError(t, b.BindTexture(tex))
	require.NoError(t, b.DrawGeometry(quad))

	fb := b.Framebuffer()
	// top-left window pixel shows the last texture row
	assert.Equal(t, color.RGBA{0, 47, 7, 255}, fb.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{63, 0, 7, 255}, fb.RGBAAt(63, 47))
	assert.Equal(t, color.RGBA{10, 37, 7, 255}, fb.RGBAAt(10, 10))
}

func TestDrawTriangleLeavesOutsideCleared(t *testing.T) {
	b := New()
	require.NoError(t, b.Initialize(80, 60))
	tex := newTexture(t, b, 80, 60)
	require.NoError(t, b.TextureWriteData(tex, fill(80, 60)))
	tri, err := b.CreateGeometry(metadata.GeometryTriangle.Vertices())
	require.NoError(t, err)

	clear := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	require.NoError(t, b.Clear(clear))
	require.NoError(t, b.BindGeometry(tri))
	require.NoError(t, b.BindTexture(tex))
	require.NoError(t, b.DrawGeometry(tri))

	fb := b.Framebuffer()
	assert.Equal(t, clear, fb.RGBAAt(0, 0))
	assert.Equal(t, clear, fb.RGBAAt(79, 0))
	// window center is inside the triangle
	assert.Equal(t, color.RGBA{40, 29, 7, 255}, fb.RGBAAt(40, 30))
}

func TestDrawWithoutTextureKeepsClearColor(t *testing.T) {
	b := New()
	require.NoError(t, b.Initialize(40, 30))
	tri, err := b.CreateGeometry(metadata.GeometryTriangle.Vertices())
	require.NoError(t, err)

	clear := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	require.NoError(t, b.Clear(clear))
	require.NoError(t, b.BindGeometry(tri))
	require.NoError(t, b.DrawGeometry(tri))

	fb := b.Framebuffer()
	assert.Equal(t, clear, fb.RGBAAt(0, 0))
	assert.Equal(t, clear, fb.RGBAAt(39, 0))
	assert.Equal(t, color.RGBA{A: 255}, fb.RGBAAt(20, 15))
}

func TestDrawIsIdempotentAcrossFrames(t *testing.T) {
	b := New()
	require.NoError(t, b.Initialize(32, 32))
	tex := newTexture(t, b, 16, 16)
	require.NoError(t, b.TextureWriteData(tex, fill(16, 16)))
	tri, err := b.CreateGeometry(metadata.GeometryTriangle.Vertices())
	require.NoError(t, err)

	frame := func() []uint8 {
		require.NoError(t, b.Clear(color.RGBA{A: 255}))
		require.NoError(t, b.BindGeometry(tri))
		require.NoError(t, b.BindTexture(tex))
		require.NoError(t, b.DrawGeometry(tri))
		return b.Framebuffer().Pix
	}
	first := frame()
	second := frame()
	assert.Equal(t, first, second)
}

func TestTextureErrors(t *testing.T) {
	b := New()
	require.NoError(t, b.Initialize(8, 8))

	tex, err := b.TextureCreate()
	require.NoError(t, err)
	assert.Error(t, b.BindTexture(tex), "incomplete texture")
	assert.Error(t, b.TextureSpecify(tex, 8, 8, metadata.TextureFormatUndefined, metadata.TextureFilterModeNearest))
	require.NoError(t, b.TextureSpecify(tex, 8, 8, metadata.TextureFormatRGBA8, metadata.TextureFilterModeNearest))
	assert.Error(t, b.TextureWriteData(tex, make([]uint8, 3)))

	require.NoError(t, b.TextureDestroy(tex))
	assert.Error(t, b.TextureDestroy(tex))

	_, err = b.CreateGeometry([]float32{0, 0, 0})
	assert.Error(t, err)
}
