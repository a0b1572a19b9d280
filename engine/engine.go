package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/kernels"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/texture"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const eventQueueCapacity = 64

// WindowFactory opens the window. It runs first during Initialize so the
// rendering context is current before the rasterizer starts.
type WindowFactory func(cfg platform.WindowConfig, input *core.Input, events *core.EventBus) (platform.Window, error)

type Backends struct {
	Window     WindowFactory
	Rasterizer renderer.RendererBackend
	Compute    compute.Provider
}

type Engine struct {
	currentStage Stage
	cfg          Config
	backends     Backends

	events   *core.EventBus
	input    *core.Input
	window   platform.Window
	renderer *renderer.Renderer

	variant  kernels.Variant
	source   string
	geometry *metadata.Geometry
	texture  *texture.SharedTexture

	context    compute.Context
	queue      compute.Queue
	compiler   *compute.KernelCompiler
	dispatcher *compute.Dispatcher

	watcher *assets.KernelWatcher
	loop    *FrameLoop
}

func New(cfg Config, backends Backends) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backends.Window == nil || backends.Rasterizer == nil || backends.Compute == nil {
		return nil, fmt.Errorf("window, rasterizer and compute backends are all required")
	}
	variant, err := kernels.Lookup(cfg.Kernel.Variant)
	if err != nil {
		return nil, err
	}
	if cfg.Kernel.Entry != "" {
		variant.Entry = cfg.Kernel.Entry
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		cfg:          cfg,
		backends:     backends,
		variant:      variant,
		source:       variant.Source,
		renderer:     renderer.New(backends.Rasterizer),
	}, nil
}

// Initialize performs the whole setup: window, rasterizer, geometry, the
// shared texture, the compute context and one generation pass. Every
// failure is fatal and comes back wrapped in one of the core sentinels.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	level, _ := core.ParseLogLevel(e.cfg.Log.Level)
	core.SetLogLevel(level)

	e.events = core.NewEventBus(eventQueueCapacity)
	e.input = core.NewInput(e.events)
	e.events.Register(core.EVENT_CODE_RESIZED, e.onResized)

	window, err := e.backends.Window(platform.WindowConfig{
		Title:  e.cfg.Window.Title,
		X:      e.cfg.Window.PosX,
		Y:      e.cfg.Window.PosY,
		Width:  e.cfg.Window.Width,
		Height: e.cfg.Window.Height,
		VSync:  e.cfg.Window.VSync,
	}, e.input, e.events)
	if err != nil {
		return fmt.Errorf("%w: window: %w", core.ErrRasterizer, err)
	}
	e.window = window

	width, height := window.FramebufferSize()
	if err := e.renderer.Initialize(width, height); err != nil {
		return err
	}

	kind, _ := metadata.ParseGeometryKind(e.cfg.Render.Geometry)
	if e.geometry, err = e.renderer.CreateGeometry(kind); err != nil {
		return err
	}

	if e.texture, err = texture.Create(e.renderer.Backend(), e.cfg.Window.Width, e.cfg.Window.Height, metadata.TextureFormatRGBA8); err != nil {
		return err
	}

	if err := e.setupCompute(); err != nil {
		return err
	}

	if e.cfg.Kernel.Source != "" {
		src, err := assets.LoadKernelSource(e.cfg.Kernel.Source)
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrCompile, err)
		}
		e.source = src.Source
	}
	if err := e.generate(e.source); err != nil {
		return err
	}

	if e.cfg.Snapshot != "" {
		if err := e.Snapshot(e.cfg.Snapshot); err != nil {
			return err
		}
	}

	e.loop = NewFrameLoop(e.window, e.renderer, e.events, e.input, metadata.RenderPacket{
		ClearColor: e.cfg.Render.Clear(),
		Geometry:   e.geometry,
		Texture:    e.texture.Texture(),
	}, e.cfg.Render.MaxFrames)

	if e.cfg.Kernel.Watch {
		if e.watcher, err = assets.NewKernelWatcher(e.cfg.Kernel.Source); err != nil {
			return fmt.Errorf("watch kernel source: %w", err)
		}
		e.loop.WatchReloads(e.watcher.Changes(), e.reload)
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized: %s kernel %q, %s geometry, %dx%d texture", e.variant.Name, e.variant.Entry, kind, e.cfg.Window.Width, e.cfg.Window.Height)
	return nil
}

// setupCompute picks a device and builds the compute context according to
// the interop policy.
func (e *Engine) setupCompute() error {
	provider := e.backends.Compute
	platformInfo, device, err := provider.Enumerate()
	if err != nil {
		if errors.Is(err, core.ErrPlatformEnumeration) {
			return err
		}
		return fmt.Errorf("%w: %w", core.ErrPlatformEnumeration, err)
	}
	core.LogInfo("compute device %q on %q via %s", device.Name, platformInfo.Name, provider.Name())

	policy := e.cfg.Compute.Interop
	if policy != InteropOff {
		e.context, err = e.sharedContext(provider, platformInfo, device)
		if err != nil {
			if policy == InteropRequire || !errors.Is(err, core.ErrInteropUnsupported) {
				return wrapContextError(err)
			}
			core.LogWarn("texture sharing unavailable, falling back to copy upload: %s", err)
		}
	}
	if e.context == nil {
		if e.context, err = provider.CreateContext(platformInfo, device); err != nil {
			return wrapContextError(err)
		}
	}

	if e.queue, err = e.context.NewQueue(); err != nil {
		return wrapContextError(err)
	}
	e.compiler = compute.NewKernelCompiler(e.context)
	e.dispatcher = compute.NewDispatcher()

	return e.texture.RegisterForCompute(e.context, compute.AccessWriteOnly)
}

func (e *Engine) sharedContext(provider compute.Provider, platformInfo compute.PlatformInfo, device compute.DeviceInfo) (compute.Context, error) {
	handles, err := e.renderer.Backend().NativeHandles()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInteropUnsupported, err)
	}
	return provider.CreateSharedContext(platformInfo, device, handles)
}

func wrapContextError(err error) error {
	if errors.Is(err, core.ErrContextCreation) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrContextCreation, err)
}

// generate compiles source, runs it once over the texture and hands the
// texture back to the rasterizer.
func (e *Engine) generate(source string) (err error) {
	k, err := e.compiler.Compile(source, e.variant.Entry)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := k.Release(); rerr != nil {
			core.LogWarn("release kernel %s: %s", k.ID, rerr)
		}
	}()

	width, height := e.cfg.Window.Width, e.cfg.Window.Height
	var (
		buffer    compute.Buffer
		usesImage bool
	)
	for i, p := range k.Params {
		usesImage = usesImage || p.Kind == compute.ArgImage
		if p.Kind == compute.ArgBuffer && buffer == nil {
			if buffer, err = e.context.CreateBuffer(int(width)*int(height)*4, compute.AccessWriteOnly); err != nil {
				return fmt.Errorf("%w: create buffer: %w", core.ErrDispatch, err)
			}
			defer func() {
				if rerr := buffer.Release(); rerr != nil {
					core.LogWarn("release staging buffer: %s", rerr)
				}
			}()
		}
		arg, err := e.argumentFor(p, buffer)
		if err != nil {
			return err
		}
		if err := e.dispatcher.SetArgument(k, i, arg); err != nil {
			return err
		}
	}

	if usesImage {
		if err := e.texture.AcquireForCompute(e.queue); err != nil {
			return err
		}
	}
	err = e.dispatcher.Dispatch(k, e.queue, [2]int{int(width), int(height)})
	if err == nil {
		err = e.dispatcher.Await(e.queue)
	}
	if usesImage {
		// hand the texture back even when the dispatch failed
		err = errors.Join(err, e.texture.ReleaseToRasterizer(e.queue))
	}
	if err != nil {
		return err
	}

	if buffer != nil {
		pixels := make([]byte, int(width)*int(height)*4)
		if err := e.queue.ReadBuffer(buffer, pixels); err != nil {
			return fmt.Errorf("%w: read buffer: %w", core.ErrDispatch, err)
		}
		if err := e.texture.Upload(pixels); err != nil {
			return err
		}
	}
	core.LogDebug("texture %s generated by %s (generation %d)", e.texture.ID, k.Entry, e.texture.Texture().Generation)
	return nil
}

// argumentFor binds a kernel parameter: images to the shared texture,
// buffers to the staging buffer, and the scalars width, height and seed
// by name.
func (e *Engine) argumentFor(p compute.Param, buffer compute.Buffer) (compute.Arg, error) {
	switch p.Kind {
	case compute.ArgImage:
		return compute.ImageArg(e.texture.Image()), nil
	case compute.ArgBuffer:
		return compute.BufferArg(buffer), nil
	}

	var v uint32
	switch p.Name {
	case "width":
		v = e.cfg.Window.Width
	case "height":
		v = e.cfg.Window.Height
	case "seed":
		v = e.cfg.Kernel.Seed
	default:
		return compute.Arg{}, fmt.Errorf("%w: no value for kernel parameter %s", core.ErrDispatch, p)
	}
	switch p.Type {
	case "int":
		return compute.ScalarArg(int32(v)), nil
	case "float":
		return compute.ScalarArg(float32(v)), nil
	default:
		return compute.ScalarArg(v), nil
	}
}

func (e *Engine) reload(path string) error {
	src, err := assets.LoadKernelSource(path)
	if err != nil {
		return err
	}
	if err := e.generate(src.Source); err != nil {
		return err
	}
	e.source = src.Source
	core.LogInfo("kernel %s reloaded from %s", e.variant.Entry, path)
	return nil
}

// Snapshot writes the current texture contents to path.
func (e *Engine) Snapshot(path string) error {
	img, err := e.renderer.Snapshot(e.texture.Texture())
	if err != nil {
		return err
	}
	return WriteSnapshot(path, img)
}

// Run blocks in the frame loop until a close signal or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	err := e.loop.Run(ctx)
	e.currentStage = EngineStageInitialized
	return err
}

// Shutdown releases compute objects before the rasterizer and the window
// that own the rendering context. It is safe after a failed Initialize.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageUninitialized {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
		e.watcher = nil
	}
	if e.texture != nil {
		errs = append(errs, e.texture.Release())
		e.texture = nil
	}
	if e.queue != nil {
		errs = append(errs, e.queue.Release())
		e.queue = nil
	}
	if e.context != nil {
		errs = append(errs, e.context.Release())
		e.context = nil
	}
	if e.geometry != nil {
		errs = append(errs, e.renderer.DestroyGeometry(e.geometry))
		e.geometry = nil
	}
	if e.window != nil {
		errs = append(errs, e.renderer.Shutdown())
		errs = append(errs, e.window.Shutdown())
		e.window = nil
	}

	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Texture() *texture.SharedTexture {
	return e.texture
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) Loop() *FrameLoop {
	return e.loop
}

func (e *Engine) Events() *core.EventBus {
	return e.events
}

// SharesTexture reports whether the compute side writes the texture in
// place rather than through the copy fallback.
func (e *Engine) SharesTexture() bool {
	return e.texture != nil && e.texture.Shared()
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok || se.WindowWidth == 0 || se.WindowHeight == 0 {
		return false
	}
	if err := e.renderer.OnResize(se.WindowWidth, se.WindowHeight); err != nil {
		core.LogError("resize to %dx%d failed: %s", se.WindowWidth, se.WindowHeight, err)
	}
	return false
}
