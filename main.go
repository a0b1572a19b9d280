/*
Prism opens a window, paints a texture once with a compute kernel that
shares it with the rasterizer, and draws it until the window is closed or
Escape is pressed.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/compute/opencl"
	softcompute "github.com/spaghettifunk/prism/engine/compute/software"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/platform/glfw"
	"github.com/spaghettifunk/prism/engine/platform/headless"
	"github.com/spaghettifunk/prism/engine/renderer/opengl"
	softraster "github.com/spaghettifunk/prism/engine/renderer/software"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	flag.Parse()

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = engine.LoadConfig(*configPath); err != nil {
			core.LogFatal("invalid configuration: %s", err)
		}
	}
	if level, err := core.ParseLogLevel(cfg.Log.Level); err == nil {
		core.SetLogLevel(level)
	}

	backends, err := selectBackends(cfg)
	if err != nil {
		core.LogFatal("%s", err)
	}

	e, err := engine.New(cfg, backends)
	if err != nil {
		core.LogFatal("%s", err)
	}
	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal("initialization failed: %s", err)
	}

	// capture sigterm and other system calls here
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		core.LogFatal("frame loop failed: %s", runErr)
	}
}

func selectBackends(cfg engine.Config) (engine.Backends, error) {
	var b engine.Backends
	switch cfg.Render.Backend {
	case "software":
		b.Rasterizer = softraster.New()
		b.Window = func(wc platform.WindowConfig, input *core.Input, _ *core.EventBus) (platform.Window, error) {
			if cfg.Render.MaxFrames == 0 {
				core.LogInfo("software rasterizer has no display; stop with Ctrl-C or set render.max_frames")
			}
			return headless.New(wc, input), nil
		}
	default:
		b.Rasterizer = opengl.New()
		b.Window = func(wc platform.WindowConfig, input *core.Input, events *core.EventBus) (platform.Window, error) {
			w, err := glfw.New(wc, input, events)
			if err != nil {
				return nil, err
			}
			return w, nil
		}
	}

	switch cfg.Compute.Backend {
	case "software":
		b.Compute = softcompute.NewProvider(cfg.Compute.Workers)
	default:
		deviceType, _ := compute.ParseDeviceType(cfg.Compute.DeviceType)
		p, err := opencl.NewProvider(deviceType)
		if err != nil {
			if cfg.Compute.Interop == engine.InteropRequire {
				return b, err
			}
			core.LogWarn("%s, using the software compute device", err)
			b.Compute = softcompute.NewProvider(cfg.Compute.Workers)
		} else {
			b.Compute = p
		}
	}
	return b, nil
}
