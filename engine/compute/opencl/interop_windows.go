package opencl

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// sharedProperties returns the zero-terminated context properties binding
// a compute context to the current WGL context and its device context.
func sharedProperties(platform uintptr, handles metadata.NativeHandles) ([]uintptr, error) {
	if handles.Context == 0 || handles.Display == 0 {
		return nil, fmt.Errorf("%w: no current WGL context", core.ErrInteropUnsupported)
	}
	return []uintptr{
		propGLContextKHR, handles.Context,
		propWGLHDCKHR, handles.Display,
		propContextPlatform, platform,
		0,
	}, nil
}
