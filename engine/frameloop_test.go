package engine

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/platform/headless"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	softraster "github.com/spaghettifunk/prism/engine/renderer/software"
)

// countingBackend records rasterizer calls and can fail a draw.
type countingBackend struct {
	*softraster.Backend
	clears     int
	draws      int
	failDrawAt int
}

func (b *countingBackend) Clear(c color.RGBA) error {
	b.clears++
	return b.Backend.Clear(c)
}

func (b *countingBackend) DrawGeometry(g *metadata.Geometry) error {
	b.draws++
	if b.failDrawAt > 0 && b.draws >= b.failDrawAt {
		return errors.New("device lost")
	}
	return b.Backend.DrawGeometry(g)
}

// scriptedWindow presses Escape right after presenting frame escapeAt.
type scriptedWindow struct {
	*headless.Window
	escapeAt int
}

func (w *scriptedWindow) SwapBuffers() {
	w.Window.SwapBuffers()
	if w.Swaps() == w.escapeAt {
		w.PressKey(core.KEY_ESCAPE)
	}
}

type loopFixture struct {
	backend *countingBackend
	window  *scriptedWindow
	loop    *FrameLoop
}

func newLoopFixture(t *testing.T, escapeAt int, maxFrames uint64) *loopFixture {
	t.Helper()
	backend := &countingBackend{Backend: softraster.New()}
	require.NoError(t, backend.Initialize(32, 24))

	r := renderer.New(backend)
	geometry, err := r.CreateGeometry(metadata.GeometryQuad)
	require.NoError(t, err)
	tex, err := backend.TextureCreate()
	require.NoError(t, err)
	require.NoError(t, backend.TextureSpecify(tex, 32, 24, metadata.TextureFormatRGBA8, metadata.TextureFilterModeNearest))

	events := core.NewEventBus(16)
	input := core.NewInput(events)
	window := &scriptedWindow{
		Window:   headless.New(platform.WindowConfig{Width: 32, Height: 24}, input),
		escapeAt: escapeAt,
	}
	loop := NewFrameLoop(window, r, events, input, metadata.RenderPacket{
		ClearColor: color.RGBA{A: 255},
		Geometry:   geometry,
		Texture:    tex,
	}, maxFrames)
	return &loopFixture{backend: backend, window: window, loop: loop}
}

func TestEscapeTerminatesWithinOneIteration(t *testing.T) {
	f := newLoopFixture(t, 3, 0)

	require.NoError(t, f.loop.Run(context.Background()))
	assert.Equal(t, LoopTerminated, f.loop.State())
	assert.Equal(t, 3, f.backend.draws, "no draw after the escape frame")
	assert.Equal(t, 3, f.backend.clears)
	assert.Equal(t, 3, f.window.Swaps(), "no present after the escape frame")
	assert.Equal(t, uint64(3), f.loop.Frames())
	assert.True(t, f.window.ShouldClose())
}

func TestWindowCloseTerminates(t *testing.T) {
	f := newLoopFixture(t, 0, 0)
	f.window.CloseAfter(2)

	require.NoError(t, f.loop.Run(context.Background()))
	assert.Equal(t, 2, f.backend.draws)
	assert.Equal(t, 2, f.window.Swaps())
}

func TestCancelledContextDrawsNothing(t *testing.T) {
	f := newLoopFixture(t, 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, f.loop.Run(ctx))
	assert.Equal(t, LoopTerminated, f.loop.State())
	assert.Zero(t, f.backend.draws)
	assert.Zero(t, f.window.Swaps())
}

func TestFrameLimit(t *testing.T) {
	f := newLoopFixture(t, 0, 5)

	require.NoError(t, f.loop.Run(context.Background()))
	assert.Equal(t, 5, f.backend.draws)
	assert.Equal(t, uint64(5), f.loop.Metrics().Frames())
}

func TestQuitEventTerminates(t *testing.T) {
	f := newLoopFixture(t, 0, 0)
	require.NoError(t, f.loop.events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT}))
	f.window.CloseAfter(10)

	require.NoError(t, f.loop.Run(context.Background()))
	assert.Equal(t, 1, f.backend.draws, "quit is dispatched after the first frame")
}

func TestRasterizerErrorEndsLoop(t *testing.T) {
	f := newLoopFixture(t, 0, 10)
	f.backend.failDrawAt = 2

	err := f.loop.Run(context.Background())
	require.ErrorIs(t, err, core.ErrRasterizer)
	assert.Equal(t, LoopTerminated, f.loop.State())
	assert.Equal(t, 1, f.window.Swaps(), "the failed frame is not presented")
}

func TestReloadErrorsKeepLoopRunning(t *testing.T) {
	f := newLoopFixture(t, 0, 3)
	changes := make(chan string, 4)
	changes <- "a.cl"
	changes <- "b.cl"

	var seen []string
	f.loop.WatchReloads(changes, func(path string) error {
		seen = append(seen, path)
		return fmt.Errorf("%w: broken", core.ErrCompile)
	})

	require.NoError(t, f.loop.Run(context.Background()))
	assert.Equal(t, []string{"a.cl", "b.cl"}, seen)
	assert.Equal(t, 3, f.backend.draws)
}

func TestEscapeSurvivesFullEventQueue(t *testing.T) {
	f := newLoopFixture(t, 0, 6)
	for i := 0; i < 16; i++ {
		require.NoError(t, f.loop.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: &core.SystemEvent{WindowWidth: 32, WindowHeight: 24},
		}))
	}
	require.Error(t, f.loop.events.Fire(core.EventContext{Type: core.EVENT_CODE_RESIZED}))
	f.window.PressKey(core.KEY_ESCAPE)

	require.NoError(t, f.loop.Run(context.Background()))
	assert.Equal(t, 1, f.backend.draws)
	assert.Equal(t, 1, f.window.Swaps())
	assert.True(t, f.window.ShouldClose())
}

func TestNoReloadAfterEscape(t *testing.T) {
	f := newLoopFixture(t, 1, 10)
	changes := make(chan string, 1)
	changes <- "a.cl"

	reloads := 0
	f.loop.WatchReloads(changes, func(string) error {
		reloads++
		return nil
	})

	require.NoError(t, f.loop.Run(context.Background()))
	assert.Equal(t, 1, f.backend.draws)
	assert.Zero(t, reloads, "the pending reload is dropped once closing")
}

func TestReloadRasterizerErrorIsFatal(t *testing.T) {
	f := newLoopFixture(t, 0, 10)
	changes := make(chan string, 1)
	changes <- "a.cl"
	f.loop.WatchReloads(changes, func(string) error {
		return fmt.Errorf("%w: upload failed", core.ErrRasterizer)
	})

	require.ErrorIs(t, f.loop.Run(context.Background()), core.ErrRasterizer)
	assert.Equal(t, 1, f.backend.draws)
}
