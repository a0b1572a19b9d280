// Package software is a compute device emulated on the CPU. It runs the
// shipped kernels by entry point, with work-groups spread over a worker
// pool, and shares textures with the software rasterizer.
package software

import (
	"fmt"
	"runtime"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type Provider struct {
	workers int
}

// NewProvider returns a provider whose contexts run on workers goroutines;
// workers <= 0 means one per CPU.
func NewProvider(workers int) *Provider {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Provider{workers: workers}
}

func (p *Provider) Name() string {
	return "software"
}

func (p *Provider) Enumerate() (compute.PlatformInfo, compute.DeviceInfo, error) {
	platform := compute.PlatformInfo{
		ID:      1,
		Name:    "Prism Software Platform",
		Vendor:  "prism",
		Version: "OpenCL 1.2 emulation",
	}
	device := compute.DeviceInfo{
		ID:              1,
		Name:            "software",
		Vendor:          "prism",
		Version:         "OpenCL 1.2 emulation",
		Type:            compute.DeviceTypeCPU,
		MaxComputeUnits: uint32(p.workers),
		Extensions:      []string{compute.ExtensionKHRGLSharing},
	}
	return platform, device, nil
}

// CreateSharedContext only shares with the software rasterizer.
func (p *Provider) CreateSharedContext(platform compute.PlatformInfo, device compute.DeviceInfo, handles metadata.NativeHandles) (compute.Context, error) {
	if handles.API != "software" {
		return nil, fmt.Errorf("%w: software device cannot share %q objects", core.ErrInteropUnsupported, handles.API)
	}
	return newContext(device, p.workers, true)
}

func (p *Provider) CreateContext(platform compute.PlatformInfo, device compute.DeviceInfo) (compute.Context, error) {
	return newContext(device, p.workers, false)
}
