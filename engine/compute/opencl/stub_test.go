//go:build !opencl

package opencl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/core"
)

func TestProviderUnavailableWithoutTag(t *testing.T) {
	p, err := NewProvider(compute.DeviceTypeGPU)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, core.ErrBackendUnavailable)
}
