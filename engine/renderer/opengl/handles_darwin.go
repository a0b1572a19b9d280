package opengl

/*
#cgo CFLAGS: -DGL_SILENCE_DEPRECATION
#cgo LDFLAGS: -framework OpenGL
#include <stdint.h>
#include <OpenGL/OpenGL.h>

static uintptr_t currentShareGroup() {
	CGLContextObj ctx = CGLGetCurrentContext();
	if (ctx == NULL) {
		return 0;
	}
	return (uintptr_t)CGLGetShareGroup(ctx);
}
*/
import "C"

import "github.com/spaghettifunk/prism/engine/renderer/metadata"

// On darwin the share group stands in for the context.
func currentHandles() metadata.NativeHandles {
	return metadata.NativeHandles{
		API:     "opengl",
		Context: uintptr(C.currentShareGroup()),
	}
}
