package opengl

/*
#cgo LDFLAGS: -lopengl32
#include <stdint.h>
#include <windows.h>

static uintptr_t currentDC() { return (uintptr_t)wglGetCurrentDC(); }
static uintptr_t currentContext() { return (uintptr_t)wglGetCurrentContext(); }
*/
import "C"

import "github.com/spaghettifunk/prism/engine/renderer/metadata"

func currentHandles() metadata.NativeHandles {
	return metadata.NativeHandles{
		API:     "opengl",
		Display: uintptr(C.currentDC()),
		Context: uintptr(C.currentContext()),
	}
}
