//go:build opencl

// Package opencl binds the OpenCL 1.2 API through cgo. It is only built
// with the opencl tag; without it NewProvider reports
// core.ErrBackendUnavailable.
package opencl

/*
#cgo CFLAGS: -DCL_TARGET_OPENCL_VERSION=120 -DCL_USE_DEPRECATED_OPENCL_1_2_APIS
#cgo !darwin LDFLAGS: -lOpenCL
#cgo darwin LDFLAGS: -framework OpenCL

#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#include <CL/cl_gl.h>
#endif
*/
import "C"

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type Provider struct {
	deviceType compute.DeviceType
	platform   C.cl_platform_id
	device     C.cl_device_id
}

// NewProvider returns a provider selecting the first device of deviceType
// on the first platform that has one.
func NewProvider(deviceType compute.DeviceType) (*Provider, error) {
	return &Provider{deviceType: deviceType}, nil
}

func (p *Provider) Name() string {
	return "opencl"
}

func (p *Provider) Enumerate() (compute.PlatformInfo, compute.DeviceInfo, error) {
	var count C.cl_uint
	if code := C.clGetPlatformIDs(0, nil, &count); code != C.CL_SUCCESS {
		return compute.PlatformInfo{}, compute.DeviceInfo{}, fmt.Errorf("%w: clGetPlatformIDs: %w", core.ErrPlatformEnumeration, Status(code))
	}
	if count == 0 {
		return compute.PlatformInfo{}, compute.DeviceInfo{}, fmt.Errorf("%w: no OpenCL platform installed", core.ErrPlatformEnumeration)
	}
	platforms := make([]C.cl_platform_id, count)
	if code := C.clGetPlatformIDs(count, &platforms[0], nil); code != C.CL_SUCCESS {
		return compute.PlatformInfo{}, compute.DeviceInfo{}, fmt.Errorf("%w: clGetPlatformIDs: %w", core.ErrPlatformEnumeration, Status(code))
	}

	for _, platform := range platforms {
		var device C.cl_device_id
		var n C.cl_uint
		code := C.clGetDeviceIDs(platform, clDeviceType(p.deviceType), 1, &device, &n)
		if code == C.CL_DEVICE_NOT_FOUND || n == 0 {
			continue
		}
		if code != C.CL_SUCCESS {
			return compute.PlatformInfo{}, compute.DeviceInfo{}, fmt.Errorf("%w: clGetDeviceIDs: %w", core.ErrPlatformEnumeration, Status(code))
		}
		p.platform = platform
		p.device = device

		pi := compute.PlatformInfo{
			ID:      uintptr(unsafe.Pointer(platform)),
			Name:    platformString(platform, C.CL_PLATFORM_NAME),
			Vendor:  platformString(platform, C.CL_PLATFORM_VENDOR),
			Version: platformString(platform, C.CL_PLATFORM_VERSION),
		}
		di := compute.DeviceInfo{
			ID:              uintptr(unsafe.Pointer(device)),
			Name:            deviceString(device, C.CL_DEVICE_NAME),
			Vendor:          deviceString(device, C.CL_DEVICE_VENDOR),
			Version:         deviceString(device, C.CL_DEVICE_VERSION),
			Type:            deviceTypeOf(device),
			MaxComputeUnits: deviceUint(device, C.CL_DEVICE_MAX_COMPUTE_UNITS),
			Extensions:      strings.Fields(deviceString(device, C.CL_DEVICE_EXTENSIONS)),
		}
		core.LogInfo("OpenCL platform %q (%s), device %q (%s, %d compute units)", pi.Name, pi.Version, di.Name, di.Type, di.MaxComputeUnits)
		return pi, di, nil
	}
	return compute.PlatformInfo{}, compute.DeviceInfo{}, fmt.Errorf("%w: no %s device on %d platform(s)", core.ErrPlatformEnumeration, p.deviceType, count)
}

// CreateSharedContext builds a context sharing objects with the OpenGL
// context described by handles.
func (p *Provider) CreateSharedContext(platform compute.PlatformInfo, device compute.DeviceInfo, handles metadata.NativeHandles) (compute.Context, error) {
	if err := p.check(platform, device); err != nil {
		return nil, err
	}
	if handles.API != "opengl" {
		return nil, fmt.Errorf("%w: cannot share with %q objects", core.ErrInteropUnsupported, handles.API)
	}
	if !device.SupportsGLSharing() {
		return nil, fmt.Errorf("%w: device %q has neither %s nor %s", core.ErrInteropUnsupported, device.Name, compute.ExtensionKHRGLSharing, compute.ExtensionAppleGLSharing)
	}
	props, err := sharedProperties(platform.ID, handles)
	if err != nil {
		return nil, err
	}
	return p.createContext(device, props, true)
}

func (p *Provider) CreateContext(platform compute.PlatformInfo, device compute.DeviceInfo) (compute.Context, error) {
	if err := p.check(platform, device); err != nil {
		return nil, err
	}
	return p.createContext(device, []uintptr{propContextPlatform, platform.ID, 0}, false)
}

func (p *Provider) check(platform compute.PlatformInfo, device compute.DeviceInfo) error {
	if p.device == nil {
		return fmt.Errorf("%w: no device enumerated", core.ErrContextCreation)
	}
	if platform.ID != uintptr(unsafe.Pointer(p.platform)) || device.ID != uintptr(unsafe.Pointer(p.device)) {
		return fmt.Errorf("%w: device %q was not enumerated by this provider", core.ErrContextCreation, device.Name)
	}
	return nil
}

func (p *Provider) createContext(info compute.DeviceInfo, props []uintptr, shared bool) (*Context, error) {
	cprops := make([]C.cl_context_properties, len(props))
	for i, v := range props {
		cprops[i] = C.cl_context_properties(v)
	}

	var code C.cl_int
	ctx := C.clCreateContext(&cprops[0], 1, &p.device, nil, nil, &code)
	if code != C.CL_SUCCESS {
		return nil, fmt.Errorf("%w: clCreateContext: %w", core.ErrContextCreation, Status(code))
	}
	c := &Context{
		id:     core.NewIdentifier("context"),
		ctx:    ctx,
		device: p.device,
		info:   info,
		shared: shared,
	}
	core.LogDebug("OpenCL context %s created (shared=%t)", c.id, shared)
	return c, nil
}

func clDeviceType(t compute.DeviceType) C.cl_device_type {
	switch t {
	case compute.DeviceTypeCPU:
		return C.CL_DEVICE_TYPE_CPU
	case compute.DeviceTypeAccelerator:
		return C.CL_DEVICE_TYPE_ACCELERATOR
	case compute.DeviceTypeAll:
		return C.CL_DEVICE_TYPE_ALL
	case compute.DeviceTypeDefault:
		return C.CL_DEVICE_TYPE_DEFAULT
	default:
		return C.CL_DEVICE_TYPE_GPU
	}
}

func deviceTypeOf(device C.cl_device_id) compute.DeviceType {
	var t C.cl_device_type
	if C.clGetDeviceInfo(device, C.CL_DEVICE_TYPE, C.size_t(unsafe.Sizeof(t)), unsafe.Pointer(&t), nil) != C.CL_SUCCESS {
		return compute.DeviceTypeUnknown
	}
	switch {
	case t&C.CL_DEVICE_TYPE_GPU != 0:
		return compute.DeviceTypeGPU
	case t&C.CL_DEVICE_TYPE_CPU != 0:
		return compute.DeviceTypeCPU
	case t&C.CL_DEVICE_TYPE_ACCELERATOR != 0:
		return compute.DeviceTypeAccelerator
	}
	return compute.DeviceTypeUnknown
}

func platformString(platform C.cl_platform_id, param C.cl_platform_info) string {
	var size C.size_t
	if C.clGetPlatformInfo(platform, param, 0, nil, &size) != C.CL_SUCCESS || size == 0 {
		return ""
	}
	buf := make([]byte, size)
	if C.clGetPlatformInfo(platform, param, size, unsafe.Pointer(&buf[0]), nil) != C.CL_SUCCESS {
		return ""
	}
	return strings.TrimRight(string(buf), "\x00")
}

func deviceString(device C.cl_device_id, param C.cl_device_info) string {
	var size C.size_t
	if C.clGetDeviceInfo(device, param, 0, nil, &size) != C.CL_SUCCESS || size == 0 {
		return ""
	}
	buf := make([]byte, size)
	if C.clGetDeviceInfo(device, param, size, unsafe.Pointer(&buf[0]), nil) != C.CL_SUCCESS {
		return ""
	}
	return strings.TrimRight(string(buf), "\x00")
}

func deviceUint(device C.cl_device_id, param C.cl_device_info) uint32 {
	var v C.cl_uint
	if C.clGetDeviceInfo(device, param, C.size_t(unsafe.Sizeof(v)), unsafe.Pointer(&v), nil) != C.CL_SUCCESS {
		return 0
	}
	return uint32(v)
}
