package opengl

/*
#cgo LDFLAGS: -lGL
#include <stdint.h>
#include <GL/glx.h>

static uintptr_t currentDisplay() { return (uintptr_t)glXGetCurrentDisplay(); }
static uintptr_t currentContext() { return (uintptr_t)glXGetCurrentContext(); }
*/
import "C"

import "github.com/spaghettifunk/prism/engine/renderer/metadata"

func currentHandles() metadata.NativeHandles {
	return metadata.NativeHandles{
		API:     "opengl",
		Display: uintptr(C.currentDisplay()),
		Context: uintptr(C.currentContext()),
	}
}
