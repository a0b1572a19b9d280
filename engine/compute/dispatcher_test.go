package compute_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/compute/software"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/kernels"
)

func newContext(t *testing.T) compute.Context {
	t.Helper()
	p := software.NewProvider(4)
	platform, device, err := p.Enumerate()
	require.NoError(t, err)
	ctx, err := p.CreateContext(platform, device)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Release() })
	return ctx
}

func TestCompileSurfacesBuildLog(t *testing.T) {
	ctx := newContext(t)
	compiler := compute.NewKernelCompiler(ctx)

	_, err := compiler.Compile("__kernel void generateColors(__write_only image2d_t texture) {", "generateColors")
	require.ErrorIs(t, err, core.ErrCompile)
	var ce *core.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "generateColors", ce.Entry)
	assert.Equal(t, "software", ce.Device)
	assert.Contains(t, ce.Log, "unclosed '{'")

	_, err = compiler.Compile(kernels.Gradient.Source, "missingEntry")
	require.ErrorIs(t, err, core.ErrCompile)
	assert.Contains(t, err.Error(), "missingEntry")
}

func TestSetArgumentValidatesAgainstSignature(t *testing.T) {
	ctx := newContext(t)
	k, err := compute.NewKernelCompiler(ctx).Compile(kernels.Random.Source, kernels.Random.Entry)
	require.NoError(t, err)
	defer k.Release()

	d := compute.NewDispatcher()
	img, err := ctx.CreateImage(8, 8, compute.AccessWriteOnly)
	require.NoError(t, err)
	readOnly, err := ctx.CreateImage(8, 8, compute.AccessReadOnly)
	require.NoError(t, err)

	assert.ErrorIs(t, d.SetArgument(k, 2, compute.ScalarArg(uint32(1))), core.ErrDispatch, "index out of range")
	assert.ErrorIs(t, d.SetArgument(k, -1, compute.ImageArg(img)), core.ErrDispatch)
	assert.ErrorIs(t, d.SetArgument(k, 0, compute.ScalarArg(uint32(1))), core.ErrDispatch, "kind mismatch")
	assert.ErrorIs(t, d.SetArgument(k, 1, compute.ScalarArg(float32(1))), core.ErrDispatch, "scalar type mismatch")
	assert.ErrorIs(t, d.SetArgument(k, 0, compute.ImageArg(readOnly)), core.ErrDispatch, "access mismatch")

	q, err := ctx.NewQueue()
	require.NoError(t, err)
	defer q.Release()

	require.NoError(t, d.SetArgument(k, 0, compute.ImageArg(img)))
	assert.ErrorIs(t, d.Dispatch(k, q, [2]int{8, 8}), core.ErrDispatch, "seed still unbound")
	require.NoError(t, d.SetArgument(k, 1, compute.ScalarArg(uint32(7))))
	assert.ErrorIs(t, d.Dispatch(k, q, [2]int{0, 8}), core.ErrDispatch)
	require.NoError(t, d.Dispatch(k, q, [2]int{8, 8}))
	require.NoError(t, d.Await(q))
	assert.Equal(t, uint64(1), d.Dispatches())

	require.NoError(t, k.Release())
	assert.ErrorIs(t, d.SetArgument(k, 0, compute.ImageArg(img)), core.ErrDispatch)
}

func TestAwaitReturnsWithEveryRowWritten(t *testing.T) {
	const w, h = 800, 600
	ctx := newContext(t)
	k, err := compute.NewKernelCompiler(ctx).Compile(kernels.Gradient.Source, kernels.Gradient.Entry)
	require.NoError(t, err)
	defer k.Release()

	img, err := ctx.CreateImage(w, h, compute.AccessWriteOnly)
	require.NoError(t, err)
	q, err := ctx.NewQueue()
	require.NoError(t, err)
	defer q.Release()

	d := compute.NewDispatcher()
	require.NoError(t, d.SetArgument(k, 0, compute.ImageArg(img)))
	require.NoError(t, d.Dispatch(k, q, [2]int{w, h}))
	require.NoError(t, d.Await(q))

	pix := make([]byte, w*h*4)
	require.NoError(t, q.ReadImage(img, pix))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			got := color.RGBA{pix[o], pix[o+1], pix[o+2], pix[o+3]}
			if want := kernels.GradientColor(x, y, w, h); got != want {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestBufferKernel(t *testing.T) {
	const w, h = 40, 30
	ctx := newContext(t)
	k, err := compute.NewKernelCompiler(ctx).Compile(kernels.Buffer.Source, kernels.Buffer.Entry)
	require.NoError(t, err)
	defer k.Release()

	buf, err := ctx.CreateBuffer(w*h*4, compute.AccessWriteOnly)
	require.NoError(t, err)
	q, err := ctx.NewQueue()
	require.NoError(t, err)
	defer q.Release()

	d := compute.NewDispatcher()
	require.NoError(t, d.SetArgument(k, 0, compute.BufferArg(buf)))
	require.NoError(t, d.SetArgument(k, 1, compute.ScalarArg(uint32(w))))
	require.NoError(t, d.SetArgument(k, 2, compute.ScalarArg(uint32(h))))
	require.NoError(t, d.Dispatch(k, q, [2]int{w, h}))
	require.NoError(t, d.Await(q))

	pix := make([]byte, w*h*4)
	require.NoError(t, q.ReadBuffer(buf, pix))
	o := ((h-1)*w + (w - 1)) * 4
	assert.Equal(t, kernels.GradientColor(w-1, h-1, w, h), color.RGBA{pix[o], pix[o+1], pix[o+2], pix[o+3]})
	assert.Equal(t, []byte{0, 0, 0, 255}, pix[:4])
}
