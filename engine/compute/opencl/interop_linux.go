package opencl

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// sharedProperties returns the zero-terminated context properties binding
// a compute context to the current GLX context.
func sharedProperties(platform uintptr, handles metadata.NativeHandles) ([]uintptr, error) {
	if handles.Context == 0 || handles.Display == 0 {
		return nil, fmt.Errorf("%w: no current GLX context", core.ErrInteropUnsupported)
	}
	return []uintptr{
		propGLContextKHR, handles.Context,
		propGLXDisplayKHR, handles.Display,
		propContextPlatform, platform,
		0,
	}, nil
}
