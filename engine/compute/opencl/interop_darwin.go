package opencl

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// sharedProperties returns the zero-terminated context properties binding
// a compute context to the CGL share group of the current context. The
// platform is implied by the share group.
func sharedProperties(_ uintptr, handles metadata.NativeHandles) ([]uintptr, error) {
	if handles.Context == 0 {
		return nil, fmt.Errorf("%w: no current CGL share group", core.ErrInteropUnsupported)
	}
	return []uintptr{
		propCGLShareGroupApple, handles.Context,
		0,
	}, nil
}
