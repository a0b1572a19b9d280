//go:build !linux && !windows && !darwin

package opencl

import (
	"fmt"
	"runtime"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func sharedProperties(_ uintptr, _ metadata.NativeHandles) ([]uintptr, error) {
	return nil, fmt.Errorf("%w: no GL sharing properties for %s", core.ErrInteropUnsupported, runtime.GOOS)
}
