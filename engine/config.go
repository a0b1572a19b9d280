package engine

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/kernels"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// InteropPolicy decides what happens when the compute device cannot share
// textures with the rasterizer.
type InteropPolicy string

const (
	// Fall back to reading the image back and uploading it, with a warning.
	InteropAuto InteropPolicy = "auto"
	// Unsupported interop is a fatal setup error.
	InteropRequire InteropPolicy = "require"
	// Never share; always copy.
	InteropOff InteropPolicy = "off"
)

// MaxTextureSize bounds each side of the window and therefore the texture.
const MaxTextureSize = 16384

type WindowConfig struct {
	// The application name used in windowing.
	Title string `toml:"title"`
	// Window starting width.
	Width uint32 `toml:"width"`
	// Window starting height.
	Height uint32 `toml:"height"`
	// Window starting position x axis.
	PosX int `toml:"pos_x"`
	// Window starting position y axis.
	PosY  int  `toml:"pos_y"`
	VSync bool `toml:"vsync"`
}

type RenderConfig struct {
	// opengl or software
	Backend string `toml:"backend"`
	// triangle or quad
	Geometry   string   `toml:"geometry"`
	ClearColor [4]uint8 `toml:"clear_color"`
	// Stop after this many frames; 0 runs until closed.
	MaxFrames uint64 `toml:"max_frames"`
}

type ComputeConfig struct {
	// opencl or software
	Backend    string        `toml:"backend"`
	Interop    InteropPolicy `toml:"interop"`
	DeviceType string        `toml:"device_type"`
	// Worker goroutines of the software device; 0 means one per CPU.
	Workers int `toml:"workers"`
}

type KernelConfig struct {
	// gradient, random or buffer
	Variant string `toml:"variant"`
	// Optional kernel file replacing the embedded source.
	Source string `toml:"source"`
	// Optional entry point overriding the variant's.
	Entry string `toml:"entry"`
	Seed  uint32 `toml:"seed"`
	// Recompile when Source changes on disk.
	Watch bool `toml:"watch"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Window  WindowConfig  `toml:"window"`
	Render  RenderConfig  `toml:"render"`
	Compute ComputeConfig `toml:"compute"`
	Kernel  KernelConfig  `toml:"kernel"`
	Log     LogConfig     `toml:"log"`
	// Write the generated texture to this file (.png, .bmp, .tif, .tiff).
	Snapshot string `toml:"snapshot"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:  "OpenGL-OpenCL Interoperability",
			Width:  800,
			Height: 600,
			PosX:   100,
			PosY:   100,
			VSync:  true,
		},
		Render: RenderConfig{
			Backend:    renderer.OpenGL.String(),
			Geometry:   metadata.GeometryTriangle.String(),
			ClearColor: [4]uint8{0, 0, 0, 255},
		},
		Compute: ComputeConfig{
			Backend:    "opencl",
			Interop:    InteropAuto,
			DeviceType: "gpu",
		},
		Kernel: KernelConfig{
			Variant: kernels.Gradient.Name,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig overlays the TOML file at path on DefaultConfig. Unknown keys
// are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("%s: %s", path, strict.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			return cfg, fmt.Errorf("%s: %s", path, decodeErr.String())
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width == 0 || c.Window.Height == 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Window.Width > MaxTextureSize || c.Window.Height > MaxTextureSize {
		errs = append(errs, fmt.Errorf("window size %dx%d exceeds the %d texel texture limit", c.Window.Width, c.Window.Height, MaxTextureSize))
	}
	if _, err := renderer.ParseRendererType(c.Render.Backend); err != nil {
		errs = append(errs, err)
	}
	if _, ok := metadata.ParseGeometryKind(c.Render.Geometry); !ok {
		errs = append(errs, fmt.Errorf("unknown geometry %q", c.Render.Geometry))
	}
	switch c.Compute.Backend {
	case "opencl", "software":
	default:
		errs = append(errs, fmt.Errorf("unknown compute backend %q", c.Compute.Backend))
	}
	switch c.Compute.Interop {
	case InteropAuto, InteropRequire, InteropOff:
	default:
		errs = append(errs, fmt.Errorf("unknown interop policy %q", c.Compute.Interop))
	}
	if _, err := compute.ParseDeviceType(c.Compute.DeviceType); err != nil {
		errs = append(errs, err)
	}
	if c.Compute.Workers < 0 {
		errs = append(errs, fmt.Errorf("compute workers must not be negative, got %d", c.Compute.Workers))
	}
	if _, err := kernels.Lookup(c.Kernel.Variant); err != nil {
		errs = append(errs, err)
	}
	if c.Kernel.Watch && c.Kernel.Source == "" {
		errs = append(errs, fmt.Errorf("kernel watch needs a kernel source file"))
	}
	if _, err := core.ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Snapshot != "" {
		if _, ok := snapshotEncoders[strings.ToLower(filepath.Ext(c.Snapshot))]; !ok {
			errs = append(errs, fmt.Errorf("unsupported snapshot format %q", filepath.Ext(c.Snapshot)))
		}
	}
	return errors.Join(errs...)
}

func (c RenderConfig) Clear() color.RGBA {
	return color.RGBA{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3]}
}
