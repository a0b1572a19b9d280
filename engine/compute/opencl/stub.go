//go:build !opencl

package opencl

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Provider stands in for the cgo binding in builds without the opencl tag.
type Provider struct{}

func NewProvider(_ compute.DeviceType) (*Provider, error) {
	return nil, fmt.Errorf("%w: built without the opencl tag", core.ErrBackendUnavailable)
}

func (p *Provider) Name() string {
	return "opencl"
}

func (p *Provider) Enumerate() (compute.PlatformInfo, compute.DeviceInfo, error) {
	return compute.PlatformInfo{}, compute.DeviceInfo{}, fmt.Errorf("%w: %w", core.ErrPlatformEnumeration, core.ErrBackendUnavailable)
}

func (p *Provider) CreateSharedContext(_ compute.PlatformInfo, _ compute.DeviceInfo, _ metadata.NativeHandles) (compute.Context, error) {
	return nil, fmt.Errorf("%w: %w", core.ErrContextCreation, core.ErrBackendUnavailable)
}

func (p *Provider) CreateContext(_ compute.PlatformInfo, _ compute.DeviceInfo) (compute.Context, error) {
	return nil, fmt.Errorf("%w: %w", core.ErrContextCreation, core.ErrBackendUnavailable)
}
