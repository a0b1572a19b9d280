package engine

import (
	"context"
	"errors"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type LoopState uint8

const (
	LoopRunning LoopState = iota
	LoopTerminated
)

func (s LoopState) String() string {
	if s == LoopTerminated {
		return "terminated"
	}
	return "running"
}

// ReloadFunc regenerates the texture after the kernel source changed.
type ReloadFunc func(path string) error

// FrameLoop draws the geometry sampling the shared texture once per
// iteration until a close signal arrives: Escape, a window close request,
// an application quit event, a cancelled context or the frame limit.
type FrameLoop struct {
	window   platform.Window
	renderer *renderer.Renderer
	events   *core.EventBus
	input    *core.Input

	packet    metadata.RenderPacket
	maxFrames uint64
	frames    uint64
	state     LoopState
	quit      bool

	reload   <-chan string
	onReload ReloadFunc

	clock   *core.Clock
	metrics *core.Metrics
}

func NewFrameLoop(window platform.Window, r *renderer.Renderer, events *core.EventBus, input *core.Input, packet metadata.RenderPacket, maxFrames uint64) *FrameLoop {
	l := &FrameLoop{
		window:    window,
		renderer:  r,
		events:    events,
		input:     input,
		packet:    packet,
		maxFrames: maxFrames,
		state:     LoopRunning,
		clock:     core.NewClock(),
		metrics:   core.NewMetrics(),
	}
	events.Register(core.EVENT_CODE_KEY_PRESSED, l.onKey)
	events.Register(core.EVENT_CODE_APPLICATION_QUIT, l.onQuit)
	return l
}

// WatchReloads makes the loop call fn for every path received on changes,
// between iterations.
func (l *FrameLoop) WatchReloads(changes <-chan string, fn ReloadFunc) {
	l.reload = changes
	l.onReload = fn
}

func (l *FrameLoop) State() LoopState {
	return l.state
}

// Frames returns how many frames were drawn.
func (l *FrameLoop) Frames() uint64 {
	return l.frames
}

func (l *FrameLoop) Metrics() *core.Metrics {
	return l.metrics
}

// Run iterates until Terminated. A rasterizer error ends the loop and is
// returned; a close signal returns nil.
func (l *FrameLoop) Run(ctx context.Context) error {
	l.clock.Start()
	last := l.clock.Elapsed()
	for l.state == LoopRunning {
		if l.closeRequested(ctx) {
			l.state = LoopTerminated
			break
		}

		l.clock.Update()
		now := l.clock.Elapsed()
		delta := now - last
		last = now

		if err := l.frame(delta.Seconds()); err != nil {
			l.state = LoopTerminated
			return err
		}
		l.metrics.Update(delta)

		if l.closing() {
			continue
		}
		if err := l.drainReloads(); err != nil {
			l.state = LoopTerminated
			return err
		}
	}
	l.clock.Stop()
	core.LogInfo("frame loop terminated after %d frame(s), %.1f fps, %.3f ms/frame", l.frames, l.metrics.FPS(), l.metrics.FrameTime())
	return nil
}

func (l *FrameLoop) closeRequested(ctx context.Context) bool {
	if ctx.Err() != nil || l.closing() {
		return true
	}
	return l.maxFrames > 0 && l.frames >= l.maxFrames
}

// closing reports a close signal observed while processing input.
func (l *FrameLoop) closing() bool {
	return l.quit || l.window.ShouldClose() || l.input.IsKeyDown(core.KEY_ESCAPE)
}

func (l *FrameLoop) frame(delta float64) error {
	l.packet.DeltaTime = delta
	if err := l.renderer.DrawFrame(&l.packet); err != nil {
		return err
	}
	l.frames++

	l.window.SwapBuffers()
	l.window.PollEvents()
	l.events.Dispatch()

	// NOTE: input state is copied last, after every event of the frame
	// has been recorded.
	l.input.Update()
	return nil
}

// drainReloads handles pending reload requests without blocking. Only
// rasterizer failures are fatal; anything else keeps the current texture.
func (l *FrameLoop) drainReloads() error {
	if l.reload == nil {
		return nil
	}
	for {
		select {
		case path, ok := <-l.reload:
			if !ok {
				l.reload = nil
				return nil
			}
			if err := l.onReload(path); err != nil {
				if errors.Is(err, core.ErrRasterizer) {
					return err
				}
				core.LogError("kernel reload failed, keeping the previous texture: %s", err)
			}
		default:
			return nil
		}
	}
}

func (l *FrameLoop) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		core.LogDebug("escape pressed, closing")
		l.quit = true
		l.window.SetShouldClose(true)
		return true
	}
	return false
}

func (l *FrameLoop) onQuit(context core.EventContext) bool {
	l.quit = true
	return true
}
