// Package compute is the compute half of the interop pair: providers that
// enumerate a device and build contexts, the kernel compiler and the
// dispatcher that runs kernels over a pixel grid.
package compute

import (
	"fmt"
	"slices"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Device extensions that allow sharing objects with an OpenGL context.
const (
	ExtensionKHRGLSharing   = "cl_khr_gl_sharing"
	ExtensionAppleGLSharing = "cl_APPLE_gl_sharing"
)

type AccessMode uint8

const (
	AccessReadOnly AccessMode = iota
	AccessWriteOnly
	AccessReadWrite
)

func (m AccessMode) String() string {
	switch m {
	case AccessWriteOnly:
		return "write_only"
	case AccessReadWrite:
		return "read_write"
	default:
		return "read_only"
	}
}

// CanWrite reports whether a kernel may write through an object opened with m.
func (m AccessMode) CanWrite() bool {
	return m == AccessWriteOnly || m == AccessReadWrite
}

// CanRead reports whether a kernel may read through an object opened with m.
func (m AccessMode) CanRead() bool {
	return m == AccessReadOnly || m == AccessReadWrite
}

// DeviceType describes the class of a compute device.
type DeviceType string

const (
	DeviceTypeGPU         DeviceType = "GPU"
	DeviceTypeCPU         DeviceType = "CPU"
	DeviceTypeAccelerator DeviceType = "Accelerator"
	DeviceTypeDefault     DeviceType = "Default"
	DeviceTypeAll         DeviceType = "All"
	DeviceTypeUnknown     DeviceType = "Unknown"
)

// ParseDeviceType maps the config names gpu, cpu and all.
func ParseDeviceType(name string) (DeviceType, error) {
	switch name {
	case "gpu", "":
		return DeviceTypeGPU, nil
	case "cpu":
		return DeviceTypeCPU, nil
	case "all":
		return DeviceTypeAll, nil
	}
	return DeviceTypeUnknown, fmt.Errorf("unknown device type %q", name)
}

// PlatformInfo captures metadata about a compute platform.
type PlatformInfo struct {
	ID      uintptr
	Name    string
	Vendor  string
	Version string
}

// DeviceInfo captures metadata about a compute device.
type DeviceInfo struct {
	ID              uintptr
	Name            string
	Vendor          string
	Version         string
	Type            DeviceType
	MaxComputeUnits uint32
	Extensions      []string
}

// SupportsGLSharing reports whether the device advertises one of the GL
// sharing extensions.
func (d DeviceInfo) SupportsGLSharing() bool {
	return slices.Contains(d.Extensions, ExtensionKHRGLSharing) || slices.Contains(d.Extensions, ExtensionAppleGLSharing)
}

// Provider creates compute contexts. CreateSharedContext builds a context
// valid for both the rasterizer owning handles and the compute device, and
// fails with core.ErrInteropUnsupported when the two cannot share objects.
type Provider interface {
	Name() string
	Enumerate() (PlatformInfo, DeviceInfo, error)
	CreateSharedContext(platform PlatformInfo, device DeviceInfo, handles metadata.NativeHandles) (Context, error)
	CreateContext(platform PlatformInfo, device DeviceInfo) (Context, error)
}

type Context interface {
	Device() DeviceInfo
	// Shared reports whether rasterizer textures can be bound directly.
	Shared() bool
	NewQueue() (Queue, error)
	// BuildProgram compiles source for the context device. Failures are
	// reported as *core.CompileError carrying the build log.
	BuildProgram(source string) (Program, error)
	CreateImageFromTexture(texture *metadata.Texture, mode AccessMode) (Image, error)
	CreateImage(width, height uint32, mode AccessMode) (Image, error)
	CreateBuffer(size int, mode AccessMode) (Buffer, error)
	Release() error
}

type Program interface {
	CreateKernel(entry string) (Kernel, error)
	BuildLog() string
	Release() error
}

type Kernel interface {
	Name() string
	SetArg(index int, arg Arg) error
	Release() error
}

// Queue is an in-order command queue. Enqueue calls return once the
// command is queued; Finish blocks until all of them have completed.
type Queue interface {
	EnqueueNDRange(kernel Kernel, global [2]int) error
	// AcquireTextures hands shared images to the compute side. The
	// rasterizer must have finished all work touching them.
	AcquireTextures(images ...Image) error
	ReleaseTextures(images ...Image) error
	ReadImage(image Image, dst []byte) error
	ReadBuffer(buffer Buffer, dst []byte) error
	Finish() error
	Release() error
}

type MemObject interface {
	Mode() AccessMode
	Release() error
}

type Image interface {
	MemObject
	Width() uint32
	Height() uint32
	// SharesTexture reports whether the image aliases a rasterizer texture.
	SharesTexture() bool
}

type Buffer interface {
	MemObject
	Size() int
}
